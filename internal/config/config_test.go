package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chTempDir(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
}

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	chTempDir(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, "http://localhost:8000", cfg.Client.ServerURL)
	assert.Equal(t, "https://api.baubuddy.de", cfg.Baubuddy.BaseURL)
	assert.Equal(t, "365", cfg.Baubuddy.Username)
	assert.Equal(t, 10, cfg.Baubuddy.LabelRate)
	assert.Equal(t, ";", cfg.CSV.Delimiter)
	assert.Equal(t, "utf-8", cfg.CSV.Charset)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	chTempDir(t)

	yaml := `
server:
  port: 9000
csv:
  delimiter: ","
  charset: iso-8859-1
log:
  level: debug
  format: console
`
	wd, _ := os.Getwd()
	require.NoError(t, os.WriteFile(filepath.Join(wd, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, ",", cfg.CSV.Delimiter)
	assert.Equal(t, "iso-8859-1", cfg.CSV.Charset)
	assert.Equal(t, "debug", cfg.Log.Level)
	// Untouched keys keep their defaults.
	assert.Equal(t, "https://api.baubuddy.de", cfg.Baubuddy.BaseURL)
}

func TestLoadFromEnv(t *testing.T) {
	chTempDir(t)
	t.Setenv("FLEET_SERVER_PORT", "9001")
	t.Setenv("FLEET_BAUBUDDY_USERNAME", "demo")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9001, cfg.Server.Port)
	assert.Equal(t, "demo", cfg.Baubuddy.Username)
}

func TestDelimiterRune(t *testing.T) {
	assert.Equal(t, ';', CSVConfig{}.DelimiterRune())
	assert.Equal(t, ',', CSVConfig{Delimiter: ","}.DelimiterRune())
	assert.Equal(t, '\t', CSVConfig{Delimiter: "\t"}.DelimiterRune())
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))
	require.Error(t, InitLogger(LogConfig{Level: "nope", Format: "json"}))
}
