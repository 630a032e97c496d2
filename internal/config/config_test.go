package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, 5, cfg.Import.BatchSize)
	assert.Equal(t, 2, cfg.Import.BatchDelaySecs)
	assert.Equal(t, 6, cfg.Import.CodeWidth)
	assert.Equal(t, "Estabelecimento sem nome", cfg.Import.DefaultName)
	assert.Equal(t, "https://viacep.com.br/ws", cfg.CEP.ViaCEPBaseURL)
	assert.Equal(t, "https://brasilapi.com.br/api/cep/v1", cfg.CEP.BrasilAPIBaseURL)
	assert.Equal(t, 500, cfg.Sweep.Limit)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	raw, err := yaml.Marshal(map[string]any{
		"store": map[string]any{
			"driver": "sqlite",
			"path":   "test.db",
		},
		"import": map[string]any{
			"batch_size":       3,
			"batch_delay_secs": 0,
		},
		"log": map[string]any{"level": "debug", "format": "console"},
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), raw, 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "test.db", cfg.Store.Path)
	assert.Equal(t, 3, cfg.Import.BatchSize)
	assert.Zero(t, cfg.Import.BatchDelay())
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_EnvOverride(t *testing.T) {
	chdir(t, t.TempDir())

	t.Setenv("PARTNERS_STORE_DRIVER", "sqlite")
	t.Setenv("PARTNERS_GEOCODE_GOOGLE_KEY", "env-key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "env-key", cfg.Geocode.GoogleKey)
}

func TestInitLogger_BadLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "nope", Format: "json"})
	assert.Error(t, err)
}

func TestInitLogger_Console(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	assert.NoError(t, err)
}
