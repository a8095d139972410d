// Package config loads the optional treecopy configuration file.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/bamsammich/treecopy/internal/engine"
	"github.com/bamsammich/treecopy/internal/filter"
)

// Config represents the optional treecopy configuration file.
type Config struct {
	Defaults DefaultsConfig `toml:"defaults"`
	Theme    ThemeConfig    `toml:"theme"`
}

// DefaultsConfig holds persistent flag defaults. Nil means unset, so an
// explicit false in the file can still override a flag default.
type DefaultsConfig struct {
	Policy         *string  `toml:"policy"`
	Verify         *bool    `toml:"verify"`
	Archive        *bool    `toml:"archive"`
	FollowSymlinks *bool    `toml:"follow_symlinks"`
	BWLimit        *string  `toml:"bwlimit"`
	Exclude        []string `toml:"exclude"`
}

// ThemeConfig holds optional color overrides.
type ThemeConfig struct {
	Green  *string `toml:"green"`
	Red    *string `toml:"red"`
	Yellow *string `toml:"yellow"`
	Muted  *string `toml:"muted"`
}

// Path returns the resolved path to the config file.
func Path() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "treecopy", "config.toml")
}

// Load reads the config file from the XDG path. A missing file yields a
// zero Config and no error.
func Load() (Config, error) {
	path := Path()
	if path == "" {
		return Config{}, nil
	}
	return LoadFile(path)
}

// LoadFile reads and validates the config file at path. A missing file
// yields a zero Config and no error.
func LoadFile(path string) (Config, error) {
	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("config %s: unknown key %q", path, undecoded[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks values that would otherwise only fail when used.
func (c Config) Validate() error {
	d := c.Defaults
	if d.Policy != nil {
		if _, err := ParsePolicy(*d.Policy); err != nil {
			return fmt.Errorf("defaults.policy: %w", err)
		}
	}
	if d.BWLimit != nil {
		if _, err := filter.ParseSize(*d.BWLimit); err != nil {
			return fmt.Errorf("defaults.bwlimit: %w", err)
		}
	}
	chain := filter.NewChain()
	for _, pattern := range d.Exclude {
		if err := chain.AddExclude(pattern); err != nil {
			return fmt.Errorf("defaults.exclude: %w", err)
		}
	}
	return nil
}

// ParsePolicy maps "abort", "skip" or "overwrite" to a conflict policy.
func ParsePolicy(s string) (engine.ConflictPolicy, error) {
	return engine.ParseConflictPolicy(s)
}

// Encode writes cfg as TOML.
func Encode(w io.Writer, cfg Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}
