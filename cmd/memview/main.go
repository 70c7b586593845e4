// Package main implements the memview CLI: terminal panels for
// MemMachine memories plus MCP endpoint registration.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/memmachine/memview/internal/client"
	"github.com/memmachine/memview/internal/config"
	"github.com/memmachine/memview/internal/logging"
	"github.com/memmachine/memview/internal/registration"
	"github.com/memmachine/memview/internal/tree"
	"github.com/memmachine/memview/internal/tui"
)

var (
	// cfgFile is the --config override.
	cfgFile string
	// version is set at build time.
	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "memview",
	Short: "Browse MemMachine memories and manage MCP registration",
	Long: `memview renders episodic and profile memories from a MemMachine
backend in two hierarchical panels, and registers the MemMachine MCP
endpoint with the available host integration.

Running memview with no subcommand opens the interactive panels.

Examples:
  # Open the panels against the default backend
  memview

  # Point at a different backend
  MEMVIEW_MEMORY_BASE_URL=http://mem.example.com:8080 memview

  # Register the MCP endpoint and exit
  memview register --name memmachine`,
	Version: version,
	RunE:    runTUI,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.config/memview/config.yaml)")
}

// app bundles the wired components behind every command.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	episodic *tree.Model
	profile  *tree.Model
	manager  *registration.Manager
}

// newApp loads config and wires the client, tree models, and
// registration manager. Interactive commands force file logging so log
// lines do not tear the panels.
func newApp(interactive bool) (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	if interactive && cfg.Log.File == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		cfg.Log.File = filepath.Join(home, ".config", "memview", "memview.log")
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}

	httpClient := client.New(cfg.Memory.BaseURL,
		client.WithTimeout(cfg.Memory.Timeout),
		client.WithHeader("X-Session-Id", uuid.NewString()),
	)

	settingsPath := cfg.Registration.SettingsPath
	if settingsPath == "" {
		settingsPath, err = config.DefaultSettingsPath()
		if err != nil {
			return nil, err
		}
	}

	var preflight registration.PreflightFunc
	if cfg.Registration.Preflight {
		preflight = registration.VerifyEndpoint
	}

	// The CLI embedding offers no host capability, so the manager
	// always detects the settings environment here. Embedders with a
	// registration API pass it via Options.Global or Options.Workspace.
	manager, err := registration.NewManager(registration.Options{
		Settings:  registration.NewFileSettings(settingsPath),
		Preflight: preflight,
		Logger:    logger,
	})
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:      cfg,
		logger:   logger,
		episodic: tree.NewEpisodic(fetchFunc(httpClient, cfg.Memory.EpisodicPath), logger),
		profile:  tree.NewProfile(fetchFunc(httpClient, cfg.Memory.ProfilePath), logger),
		manager:  manager,
	}, nil
}

// fetchFunc adapts the HTTP client to a tree fetch.
func fetchFunc(c *client.Client, path string) tree.FetchFunc {
	return func(ctx context.Context) ([]byte, error) {
		resp, err := c.Get(ctx, path)
		if err != nil {
			return nil, err
		}
		return resp.Data, nil
	}
}

// runTUI opens the interactive panels.
func runTUI(cmd *cobra.Command, args []string) error {
	a, err := newApp(true)
	if err != nil {
		return err
	}
	defer func() { _ = a.logger.Sync() }()

	program := tea.NewProgram(
		tui.New(a.cfg, a.logger, a.episodic, a.profile, a.manager),
		tea.WithAltScreen(),
	)
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("TUI failed: %w", err)
	}

	// Teardown: unregister everything registered during this session.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.manager.Close(ctx); err != nil {
		a.logger.Warn("teardown left servers registered", zap.Error(err))
	}
	return nil
}
