// Package config loads user defaults from a YAML file. Command-line flags
// override anything set here.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"

	"github.com/sadopc/heft/internal/scanner"
	"github.com/sadopc/heft/internal/util"
)

// DefaultThreshold is used when neither the file nor a flag sets one.
const DefaultThreshold = "10KiB"

// Config mirrors the YAML file.
type Config struct {
	Threshold          string   `yaml:"threshold"`
	FollowSymlinks     bool     `yaml:"follow_symlinks"`
	IncludeDirectories *bool    `yaml:"include_directories"`
	MaxDepth           int      `yaml:"max_depth"`
	Concurrency        int      `yaml:"concurrency"`
	Exclude            []string `yaml:"exclude"`
	ShowHidden         *bool    `yaml:"show_hidden"`
	CacheDir           string   `yaml:"cache_dir"`
	// CacheKeep is how many reports per root the cache retains.
	CacheKeep int `yaml:"cache_keep"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{Threshold: DefaultThreshold, CacheKeep: 5}
}

// DefaultPath returns $XDG_CONFIG_HOME/heft/config.yaml or its platform
// equivalent.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "heft", "config.yaml")
}

// Load reads path over the defaults. A missing file is not an error when
// optional is set, which is how the default location is read.
func Load(path string, optional bool) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if optional && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("cannot read config: %w", err)
	}
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if _, err := util.ParseSize(c.Threshold); err != nil {
		return fmt.Errorf("threshold: %w", err)
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("max_depth must not be negative, got %d", c.MaxDepth)
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("concurrency must not be negative, got %d", c.Concurrency)
	}
	if c.CacheKeep < 0 {
		return fmt.Errorf("cache_keep must not be negative, got %d", c.CacheKeep)
	}
	return nil
}

// ThresholdBytes returns the parsed threshold.
func (c Config) ThresholdBytes() (uint64, error) {
	return util.ParseSize(c.Threshold)
}

// ScanOptions converts the file settings to scanner options.
func (c Config) ScanOptions() scanner.Options {
	opts := scanner.DefaultOptions()
	opts.FollowSymlinks = c.FollowSymlinks
	opts.MaxDepth = c.MaxDepth
	opts.Concurrency = c.Concurrency
	if c.IncludeDirectories != nil {
		opts.IncludeDirectories = *c.IncludeDirectories
	}
	if c.ShowHidden != nil {
		opts.ShowHidden = *c.ShowHidden
	}
	if len(c.Exclude) > 0 {
		opts.ExcludePatterns = append([]string(nil), c.Exclude...)
	}
	return opts
}
