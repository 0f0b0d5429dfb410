// Package config loads the optional .goblock.yaml workspace settings.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jarredhawkins/goblock-lsp/internal/parser"
)

// FileName is the config file looked up at the workspace root
const FileName = ".goblock.yaml"

// EnvPath overrides the config file location
const EnvPath = "GOBLOCK_CONFIG"

// Config holds the workspace settings
type Config struct {
	// Extensions routes file extensions to language ids, e.g. ".m": octave
	Extensions map[string]string `yaml:"extensions"`

	// Disabled language ids are never used
	Disabled []string `yaml:"disabled"`

	// Exclude lists directory names or glob patterns skipped when walking
	Exclude []string `yaml:"exclude"`

	DebounceMs int `yaml:"debounce_ms"`
	Workers    int `yaml:"workers"`
}

// Default returns the settings used when no file exists
func Default() *Config {
	return &Config{
		Extensions: map[string]string{},
		Exclude:    []string{"vendor", "node_modules"},
		DebounceMs: 100,
		Workers:    runtime.NumCPU(),
	}
}

// Load reads the config for the workspace at root. GOBLOCK_CONFIG takes
// precedence over root/.goblock.yaml. A missing file yields the defaults.
func Load(root string) (*Config, error) {
	path := os.Getenv(EnvPath)
	if path == "" {
		path = filepath.Join(root, FileName)
	}
	return LoadFile(path)
}

// LoadFile reads the config at path, falling back to the defaults when it
// does not exist
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.DebounceMs < 0 {
		return fmt.Errorf("debounce_ms must not be negative, got %d", c.DebounceMs)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	if c.Workers == 0 {
		c.Workers = runtime.NumCPU()
	}
	for _, pattern := range c.Exclude {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return fmt.Errorf("exclude pattern %q: %w", pattern, err)
		}
	}
	return nil
}

// Apply installs the extension overrides and disabled languages into r.
// Unknown language ids are an error.
func (c *Config) Apply(r *parser.Registry) error {
	known := make(map[string]bool)
	for _, name := range r.Names() {
		known[name] = true
	}
	for ext, name := range c.Extensions {
		name = strings.ToLower(name)
		if !known[name] {
			return fmt.Errorf("extension %s: unknown language %q", ext, name)
		}
		r.MapExtension(ext, name)
	}
	for _, name := range c.Disabled {
		name = strings.ToLower(name)
		if !known[name] {
			return fmt.Errorf("disabled: unknown language %q", name)
		}
		r.Disable(name)
	}
	return nil
}

// Debounce returns the watcher debounce interval
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.DebounceMs) * time.Millisecond
}

// SkipDir reports whether a directory named name is left out of workspace
// walks. Hidden directories are always skipped.
func (c *Config) SkipDir(name string) bool {
	if len(name) > 1 && strings.HasPrefix(name, ".") {
		return true
	}
	for _, pattern := range c.Exclude {
		if ok, _ := filepath.Match(pattern, name); ok {
			return true
		}
	}
	return false
}
