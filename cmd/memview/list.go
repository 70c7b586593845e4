package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/memmachine/memview/internal/tree"
)

func init() {
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print both memory panels once, without the TUI",
	Long: `Fetch episodic and profile memories and print the two trees to
stdout. Useful for scripting and quick checks.

Examples:
  memview list
  memview list | grep -i preferences`,
	RunE: runList,
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := newApp(false)
	if err != nil {
		return err
	}
	defer func() { _ = a.logger.Sync() }()

	a.episodic.Refresh(cmd.Context())
	a.profile.Refresh(cmd.Context())

	fmt.Println("Episodic Memories")
	printTree(a.episodic, nil, 1)
	fmt.Println()
	fmt.Println("Profile Memories")
	printTree(a.profile, nil, 1)
	return nil
}

// printTree walks the provider depth-first, skipping the sentinel row.
func printTree(p tree.Provider, node *tree.Node, depth int) {
	for _, child := range p.Children(node) {
		if child.Sentinel() {
			continue
		}
		fmt.Printf("%s%s\n", strings.Repeat("  ", depth), child.Label)
		if !child.Detail {
			printTree(p, child, depth+1)
		}
	}
}
