package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, "target/classes", cfg.Classes)
	assert.Equal(t, "package", cfg.Verbose)
	assert.Equal(t, "archive", cfg.Filter)
	assert.Equal(t, ModeCycles, cfg.Mode)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 500*time.Millisecond, cfg.QuietPeriod)
	assert.True(t, cfg.Color)
	assert.False(t, cfg.IgnoreMissing)
}

func TestLoad_Flags(t *testing.T) {
	f := NewFlagSet("test")
	require.NoError(t, f.Parse([]string{
		"--verbose", "class",
		"--ignore-missing",
		"--limit-packages", "com.acme.a,com.acme.b",
		"--port", "9191",
		"--quiet-period", "2s",
		"build/classes",
	}))

	cfg, err := Load(f)
	require.NoError(t, err)

	assert.Equal(t, "class", cfg.Verbose)
	assert.True(t, cfg.IgnoreMissing)
	assert.Equal(t, []string{"com.acme.a", "com.acme.b"}, cfg.LimitPackages)
	assert.Equal(t, 9191, cfg.Port)
	assert.Equal(t, 2*time.Second, cfg.QuietPeriod)
	assert.Equal(t, "build/classes", cfg.Classes)
	// untouched flags keep the defaults
	assert.Equal(t, "archive", cfg.Filter)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("JDEPS_CYCLES_LOG_LEVEL", "debug")
	t.Setenv("JDEPS_CYCLES_FAIL_ON_CYCLES", "true")

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.FailOnCycles)
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
filter = "package"
log-level = "warn"
port = 7000
`), 0o644))

	t.Setenv("JDEPS_CYCLES_PORT", "7001")

	f := NewFlagSet("test")
	require.NoError(t, f.Parse([]string{"--config", path, "--log-level", "error"}))

	cfg, err := Load(f)
	require.NoError(t, err)

	assert.Equal(t, "package", cfg.Filter, "file overrides default")
	assert.Equal(t, 7001, cfg.Port, "env overrides file")
	assert.Equal(t, "error", cfg.LogLevel, "flag overrides file")
}

func TestLoad_MissingExplicitConfig(t *testing.T) {
	f := NewFlagSet("test")
	require.NoError(t, f.Parse([]string{"--config", filepath.Join(t.TempDir(), "nope.toml")}))

	_, err := Load(f)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "report mode", mutate: func(c *Config) { c.Mode = ModeReport }},
		{name: "summary", mutate: func(c *Config) { c.Verbose = "summary" }},
		{name: "bad mode", mutate: func(c *Config) { c.Mode = "graph" }, wantErr: true},
		{name: "bad verbose", mutate: func(c *Config) { c.Verbose = "loud" }, wantErr: true},
		{name: "bad port", mutate: func(c *Config) { c.Port = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Mode: ModeCycles, Verbose: "package", Port: 8080}
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
