// Package registration manages registering the MemMachine MCP endpoint
// with whichever host integration is available.
//
// Two mutually exclusive host capabilities are supported, plus a
// settings-document fallback when neither offers a registration call.
// The environment is probed once at construction; every register and
// unregister call dispatches through the resulting strategy. The
// in-memory registry of registered servers is never persisted.
package registration

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/memmachine/memview/internal/config"
	"github.com/memmachine/memview/internal/logging"
)

// ErrNoBackend is returned when neither capability nor a settings
// document is available.
var ErrNoBackend = errors.New("no registration capability or settings document available")

// ServerConfig describes one MCP server registration.
type ServerConfig struct {
	Name    string            `json:"name"`
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers,omitempty"`
}

// Registrar is the shared register/unregister contract. Host
// capabilities and the settings fallback all satisfy it.
type Registrar interface {
	RegisterServer(ctx context.Context, cfg ServerConfig) error
	UnregisterServer(ctx context.Context, name string) error
}

// Environment identifies which strategy was selected at construction.
type Environment int

const (
	// EnvGlobal is the host's global registration capability. It takes
	// priority when both capabilities appear present.
	EnvGlobal Environment = iota
	// EnvWorkspace is the host's workspace-scoped capability.
	EnvWorkspace
	// EnvSettings is the settings-document fallback.
	EnvSettings
)

func (e Environment) String() string {
	switch e {
	case EnvGlobal:
		return "global"
	case EnvWorkspace:
		return "workspace"
	case EnvSettings:
		return "settings"
	default:
		return fmt.Sprintf("environment(%d)", int(e))
	}
}

// PreflightFunc verifies an endpoint before registration. Failures are
// logged as warnings and do not block the registration.
type PreflightFunc func(ctx context.Context, url string, headers map[string]string) error

// Options configure a Manager.
type Options struct {
	// Global and Workspace are the two host capabilities; either or
	// both may be nil.
	Global    Registrar
	Workspace Registrar

	// Settings backs the fallback strategy when no capability is
	// present.
	Settings Settings

	// Preflight, when non-nil, is invoked before each registration.
	Preflight PreflightFunc

	Logger *zap.Logger
}

// Manager dispatches register/unregister calls to the detected
// environment and tracks successful registrations in memory.
type Manager struct {
	env       Environment
	registrar Registrar
	preflight PreflightFunc
	logger    *zap.Logger

	mu      sync.Mutex
	servers map[string]ServerConfig
}

// NewManager probes the available capabilities once and fixes the
// dispatch strategy for the manager's lifetime.
func NewManager(opts Options) (*Manager, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var env Environment
	var registrar Registrar
	switch {
	case opts.Global != nil:
		env, registrar = EnvGlobal, opts.Global
	case opts.Workspace != nil:
		env, registrar = EnvWorkspace, opts.Workspace
	case opts.Settings != nil:
		env, registrar = EnvSettings, &settingsRegistrar{settings: opts.Settings}
	default:
		return nil, ErrNoBackend
	}

	logger.Info("registration environment detected", zap.Stringer("environment", env))

	return &Manager{
		env:       env,
		registrar: registrar,
		preflight: opts.Preflight,
		logger:    logger,
		servers:   make(map[string]ServerConfig),
	}, nil
}

// Environment returns the strategy selected at construction.
func (m *Manager) Environment() Environment {
	return m.env
}

// RegisterServer registers cfg through the active strategy. Each call
// issues an underlying registration even when the name is already
// registered; the registry simply reflects the latest config. The
// returned error is already logged; callers surface it, never re-raise.
func (m *Manager) RegisterServer(ctx context.Context, cfg ServerConfig) error {
	if cfg.Name == "" {
		err := errors.New("server name must not be empty")
		m.logger.Warn("register rejected", zap.Error(err))
		return err
	}

	if m.preflight != nil {
		if err := m.preflight(ctx, cfg.URL, cfg.Headers); err != nil {
			m.logger.Warn("endpoint preflight failed, registering anyway",
				zap.String("name", cfg.Name),
				zap.String("url", cfg.URL),
				zap.Error(err))
		}
	}

	if err := m.registrar.RegisterServer(ctx, cfg); err != nil {
		m.logger.Error("failed to register server",
			zap.Stringer("environment", m.env),
			zap.String("name", cfg.Name),
			zap.Error(err))
		return fmt.Errorf("failed to register %q: %w", cfg.Name, err)
	}

	m.mu.Lock()
	m.servers[cfg.Name] = cfg
	m.mu.Unlock()

	m.logger.Info("registered MCP server",
		zap.Stringer("environment", m.env),
		zap.String("name", cfg.Name),
		zap.String("url", cfg.URL),
		logging.Headers("headers", cfg.Headers))
	return nil
}

// UnregisterServer removes the named server through the active strategy
// and drops it from the registry on success.
func (m *Manager) UnregisterServer(ctx context.Context, name string) error {
	if err := m.registrar.UnregisterServer(ctx, name); err != nil {
		m.logger.Error("failed to unregister server",
			zap.Stringer("environment", m.env),
			zap.String("name", name),
			zap.Error(err))
		return fmt.Errorf("failed to unregister %q: %w", name, err)
	}

	m.mu.Lock()
	delete(m.servers, name)
	m.mu.Unlock()

	m.logger.Info("unregistered MCP server",
		zap.Stringer("environment", m.env),
		zap.String("name", name))
	return nil
}

// Servers returns the current registry entries, sorted by name.
func (m *Manager) Servers() []ServerConfig {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]ServerConfig, 0, len(m.servers))
	for _, cfg := range m.servers {
		out = append(out, cfg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// MemMachineServer builds the ServerConfig for the MemMachine endpoint
// from configuration. An empty name keeps the configured default.
func MemMachineServer(rc config.RegistrationConfig, name string) ServerConfig {
	if name == "" {
		name = rc.ServerName
	}
	var headers map[string]string
	if rc.Token != "" {
		headers = map[string]string{"Authorization": "Bearer " + rc.Token}
	}
	return ServerConfig{Name: name, URL: rc.BaseURL, Headers: headers}
}

// RegisterMemMachineServer registers the MemMachine endpoint using the
// configured name, url, and bearer token.
func (m *Manager) RegisterMemMachineServer(ctx context.Context, rc config.RegistrationConfig, name string) error {
	return m.RegisterServer(ctx, MemMachineServer(rc, name))
}

// Close unregisters every entry currently in the registry. Individual
// failures are logged and do not stop the rest from being attempted.
func (m *Manager) Close(ctx context.Context) error {
	var errs []error
	for _, cfg := range m.Servers() {
		if err := m.UnregisterServer(ctx, cfg.Name); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
