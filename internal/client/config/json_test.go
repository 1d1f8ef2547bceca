package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, data map[string]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.json")
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson(t *testing.T) {
	t.Run("overlays present keys", func(t *testing.T) {
		path := writeTempJSON(t, map[string]any{"server_url": "http://example:9000"})

		cfg := &Config{ServerURL: "http://defaults", RequestTimeout: 42 * time.Second}
		require.NoError(t, parseJson(cfg, []string{"-config", path}))

		assert.Equal(t, "http://example:9000", cfg.ServerURL)
		assert.Equal(t, 42*time.Second, cfg.RequestTimeout)
	})

	t.Run("no flag leaves config alone", func(t *testing.T) {
		cfg := &Config{ServerURL: "http://defaults"}
		require.NoError(t, parseJson(cfg, nil))
		assert.Equal(t, "http://defaults", cfg.ServerURL)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		require.Error(t, parseJson(&Config{}, []string{"-c", bad}))
	})
}
