package registration

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSettings_GetMissing(t *testing.T) {
	s := NewFileSettings(filepath.Join(t.TempDir(), "mcp.json"))

	_, ok := s.Get(SettingsKey)
	assert.False(t, ok)
}

func TestFileSettings_UpdateCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "mcp.json")
	s := NewFileSettings(path)

	require.NoError(t, s.Update(SettingsKey, map[string]any{
		"memmachine": map[string]any{"url": "http://localhost:8001/mcp"},
	}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	v, ok := s.Get(SettingsKey)
	require.True(t, ok)
	servers := v.(map[string]any)
	assert.Contains(t, servers, "memmachine")
}

func TestFileSettings_PreservesOtherKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mcp.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"theme":"dark","mcpServers":{"other":{"url":"http://o"}}}`), 0o600))

	s := NewFileSettings(path)
	require.NoError(t, s.Update(SettingsKey, map[string]any{
		"memmachine": map[string]any{"url": "http://m"},
	}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "dark", doc["theme"], "unrelated settings keys survive updates")
}

func TestFileSettings_CorruptFileFailsUpdate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mcp.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o600))

	s := NewFileSettings(path)

	_, ok := s.Get(SettingsKey)
	assert.False(t, ok)

	// Refuse to clobber a file we cannot parse.
	require.Error(t, s.Update(SettingsKey, map[string]any{}))
}

func TestFileSettings_EndToEndWithRegistrar(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mcp.json")
	m, err := NewManager(Options{Settings: NewFileSettings(path)})
	require.NoError(t, err)

	cfg := ServerConfig{
		Name:    "memmachine",
		URL:     "http://localhost:8001/mcp",
		Headers: map[string]string{"Authorization": "Bearer tok"},
	}
	require.NoError(t, m.RegisterServer(t.Context(), cfg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc map[string]map[string]serverEntry
	require.NoError(t, json.Unmarshal(data, &doc))
	entry := doc[SettingsKey]["memmachine"]
	assert.Equal(t, "http://localhost:8001/mcp", entry.URL)
	assert.Equal(t, "Bearer tok", entry.Headers["Authorization"])

	require.NoError(t, m.UnregisterServer(t.Context(), "memmachine"))

	data, err = os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.NotContains(t, doc[SettingsKey], "memmachine")
}
