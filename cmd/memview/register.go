// Package main implements MCP registration commands.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var registerName string

func init() {
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(unregisterCmd)

	registerCmd.Flags().StringVar(&registerName, "name", "", "name to register the server under (default from config)")
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Register the MemMachine MCP endpoint",
	Long: `Register the MemMachine MCP endpoint with the available host
integration. Without a host capability this writes the endpoint into
the MCP settings document.

Examples:
  memview register
  memview register --name memmachine-staging`,
	RunE: runRegister,
}

var unregisterCmd = &cobra.Command{
	Use:   "unregister [name]",
	Short: "Unregister a previously registered MCP server",
	Long: `Remove a server registration. Without an argument the configured
default server name is removed.

Examples:
  memview unregister
  memview unregister memmachine-staging`,
	Args: cobra.MaximumNArgs(1),
	RunE: runUnregister,
}

func runRegister(cmd *cobra.Command, args []string) error {
	a, err := newApp(false)
	if err != nil {
		return err
	}
	defer func() { _ = a.logger.Sync() }()

	if err := a.manager.RegisterMemMachineServer(cmd.Context(), a.cfg.Registration, registerName); err != nil {
		return err
	}

	name := registerName
	if name == "" {
		name = a.cfg.Registration.ServerName
	}
	fmt.Printf("Registered %q -> %s (%s environment)\n", name, a.cfg.Registration.BaseURL, a.manager.Environment())
	return nil
}

func runUnregister(cmd *cobra.Command, args []string) error {
	a, err := newApp(false)
	if err != nil {
		return err
	}
	defer func() { _ = a.logger.Sync() }()

	name := a.cfg.Registration.ServerName
	if len(args) == 1 {
		name = args[0]
	}

	if err := a.manager.UnregisterServer(cmd.Context(), name); err != nil {
		return err
	}
	fmt.Printf("Unregistered %q (%s environment)\n", name, a.manager.Environment())
	return nil
}
