package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jarredhawkins/goblock-lsp/internal/lang"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv(EnvPath, "")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 100*time.Millisecond, cfg.Debounce())
}

func TestLoad(t *testing.T) {
	t.Setenv(EnvPath, "")
	dir := t.TempDir()
	writeConfig(t, dir, `
extensions:
  .m: octave
  inc: pascal
disabled: [vhdl]
exclude: [build, "*.tmp"]
debounce_ms: 250
workers: 3
`)

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{".m": "octave", "inc": "pascal"}, cfg.Extensions)
	assert.Equal(t, []string{"vhdl"}, cfg.Disabled)
	assert.Equal(t, []string{"build", "*.tmp"}, cfg.Exclude)
	assert.Equal(t, 250*time.Millisecond, cfg.Debounce())
	assert.Equal(t, 3, cfg.Workers)
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "workers: 7\n")
	t.Setenv(EnvPath, path)

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Workers)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{"bad yaml", "workers: [", "parse config"},
		{"negative debounce", "debounce_ms: -1", "debounce_ms"},
		{"negative workers", "workers: -2", "workers"},
		{"bad pattern", "exclude: ['[']", "exclude pattern"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), tt.content)
			_, err := LoadFile(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestZeroWorkersUsesCPUs(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "workers: 0\n")
	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, runtime.NumCPU(), cfg.Workers)
}

func TestApply(t *testing.T) {
	r := lang.NewRegistry()
	cfg := Default()
	cfg.Extensions = map[string]string{".m": "Octave"}
	cfg.Disabled = []string{"vhdl", "vhdl"}

	require.NoError(t, cfg.Apply(r))

	p, ok := r.ForPath("a.m")
	require.True(t, ok)
	assert.Equal(t, "octave", p.Name())
	assert.False(t, r.Supports("a.vhd"))
}

func TestApplyUnknownLanguage(t *testing.T) {
	cfg := Default()
	cfg.Extensions = map[string]string{".x": "cobra"}
	assert.ErrorContains(t, cfg.Apply(lang.NewRegistry()), "unknown language")

	cfg = Default()
	cfg.Disabled = []string{"klingon"}
	assert.ErrorContains(t, cfg.Apply(lang.NewRegistry()), "unknown language")
}

func TestSkipDir(t *testing.T) {
	cfg := Default()
	cfg.Exclude = append(cfg.Exclude, "build*")

	for _, name := range []string{".git", ".cache", "vendor", "node_modules", "build", "build-out"} {
		assert.True(t, cfg.SkipDir(name), name)
	}
	for _, name := range []string{"src", ".", "rebuild"} {
		assert.False(t, cfg.SkipDir(name), name)
	}
}
