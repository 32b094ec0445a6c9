// Package config loads and saves jackc's TOML-backed configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/nand2tetris-go/jackc/token"
)

// Config holds the compiler-wide options that aren't worth a CLI flag
// each.
type Config struct {
	Compiler struct {
		OutputExt string   `toml:"output_ext"`
		OSClasses []string `toml:"os_classes"`
		FailFast  bool     `toml:"fail_fast"`
	} `toml:"compiler"`

	Diagnostics struct {
		Verbose bool `toml:"verbose"`
		Color   bool `toml:"color"`
	} `toml:"diagnostics"`
}

// DefaultConfig returns the built-in defaults: the eight standard
// library classes, ".vm" output, fail-fast within a file, and plain
// non-verbose diagnostics.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Compiler.OutputExt = ".vm"
	cfg.Compiler.OSClasses = defaultOSClasses()
	cfg.Compiler.FailFast = true

	cfg.Diagnostics.Verbose = false
	cfg.Diagnostics.Color = false

	return cfg
}

func defaultOSClasses() []string {
	names := make([]string, 0, len(token.OSClasses))
	for name := range token.OSClasses {
		names = append(names, name)
	}
	return names
}

// OSClassSet turns Compiler.OSClasses into the map shape
// compiler.Options.OSClasses expects.
func (c *Config) OSClassSet() map[string]bool {
	set := make(map[string]bool, len(c.Compiler.OSClasses))
	for _, name := range c.Compiler.OSClasses {
		set[name] = true
	}
	return set
}

// LoadFrom reads a TOML config file at path. A missing file is not an
// error — it yields the defaults — but malformed TOML is.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// SaveTo writes cfg to path as TOML, creating its parent directory if
// needed.
func (c *Config) SaveTo(path string) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path) // #nosec G304 -- user-provided config file path
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close config file: %w", closeErr)
		}
	}()

	if encErr := toml.NewEncoder(f).Encode(c); encErr != nil {
		return fmt.Errorf("failed to encode config: %w", encErr)
	}

	return nil
}
