package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	config := DefaultConfig
	require.NoError(t, config.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"negative budget", func(c *Config) { c.SearchBudgetMs = -1 }},
		{"budget too large", func(c *Config) { c.SearchBudgetMs = MaxSearchBudgetMs + 1 }},
		{"zero grace", func(c *Config) { c.GraceMs = 0 }},
		{"negative tree size", func(c *Config) { c.MaxTreeMb = -3 }},
		{"log level", func(c *Config) { c.LogLevel = "loud" }},
		{"empty addr", func(c *Config) { c.Server.Addr = "" }},
		{"progress interval", func(c *Config) { c.Server.ProgressInterval = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig
			tt.modify(&config)

			var invalid *InvalidConfig
			require.ErrorAs(t, config.Validate(), &invalid)
		})
	}

	config := DefaultConfig
	config.SearchBudgetMs = 0
	require.NoError(t, config.Validate(), "zero budget runs a single iteration")
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	config := DefaultConfig
	config.SearchBudgetMs = 350
	config.Seed = 99
	config.Server.Addr = "127.0.0.1:9000"
	require.NoError(t, config.SaveTo(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, config, *loaded)
}

func TestLoadPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"search_budget_ms": 500}`), 0o644))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 500, loaded.SearchBudgetMs)
	require.Equal(t, DefaultConfig.GraceMs, loaded.GraceMs)
	require.Equal(t, DefaultConfig.Server, loaded.Server)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.json"))
	require.ErrorIs(t, err, os.ErrNotExist)

	broken := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(broken, []byte(`{"search_budget_ms": `), 0o644))
	_, err = Load(broken)
	var invalid *InvalidConfig
	require.ErrorAs(t, err, &invalid)

	outOfRange := filepath.Join(dir, "range.json")
	require.NoError(t, os.WriteFile(outOfRange, []byte(`{"search_budget_ms": 120000}`), 0o644))
	_, err = Load(outOfRange)
	require.ErrorAs(t, err, &invalid)
}
