package registration

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// SettingsKey is the settings-document key holding registered MCP
// servers. The value is a mapping of server name to {url, headers},
// the shape most MCP-aware hosts read.
const SettingsKey = "mcpServers"

// Settings is a key-value settings document.
type Settings interface {
	Get(key string) (any, bool)
	Update(key string, value any) error
}

// settingsRegistrar implements Registrar by upserting and deleting
// entries under SettingsKey. Write failures propagate: there is no
// further degradation below the settings fallback.
type settingsRegistrar struct {
	settings Settings
}

// serverEntry is the persisted per-server shape.
type serverEntry struct {
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers,omitempty"`
}

func (r *settingsRegistrar) RegisterServer(_ context.Context, cfg ServerConfig) error {
	servers := r.serversMap()
	servers[cfg.Name] = serverEntry{URL: cfg.URL, Headers: cfg.Headers}
	if err := r.settings.Update(SettingsKey, servers); err != nil {
		return fmt.Errorf("settings write failed: %w", err)
	}
	return nil
}

func (r *settingsRegistrar) UnregisterServer(_ context.Context, name string) error {
	servers := r.serversMap()
	if _, ok := servers[name]; !ok {
		// Nothing to remove; deletion is idempotent at this layer.
		return nil
	}
	delete(servers, name)
	if err := r.settings.Update(SettingsKey, servers); err != nil {
		return fmt.Errorf("settings write failed: %w", err)
	}
	return nil
}

// serversMap reads the current entries, tolerating an absent or
// foreign-shaped value.
func (r *settingsRegistrar) serversMap() map[string]any {
	servers := make(map[string]any)
	raw, ok := r.settings.Get(SettingsKey)
	if !ok {
		return servers
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return servers
	}
	for k, v := range m {
		servers[k] = v
	}
	return servers
}

// FileSettings is a JSON-file-backed settings document. The file is
// re-read on every access and written atomically, so external edits by
// the host are picked up and never clobbered wholesale.
type FileSettings struct {
	mu   sync.Mutex
	path string
}

var _ Settings = (*FileSettings)(nil)

// NewFileSettings creates a settings document at path. The file is
// created on first Update.
func NewFileSettings(path string) *FileSettings {
	return &FileSettings{path: path}
}

// Get returns the value under key, or false when the file or key is
// absent or unreadable.
func (s *FileSettings) Get(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return nil, false
	}
	v, ok := doc[key]
	return v, ok
}

// Update sets key in the document and writes it back.
func (s *FileSettings) Update(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	if doc == nil {
		doc = make(map[string]any)
	}
	doc[key] = value

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to rename settings: %w", err)
	}
	return nil
}

func (s *FileSettings) load() (map[string]any, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid JSON in settings file %s: %w", s.path, err)
	}
	return doc, nil
}
