package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds the startup settings of a pager session. File values override
// the defaults and command-line flags override both.
type Config struct {
	Height      int
	TabWidth    int
	StartLine   int
	LineNumbers bool
	Follow      bool
	WrapScan    bool
}

const (
	defaultConfigPath = "~/.config/peek/config.toml"
	defaultHeight     = 10
	defaultTabWidth   = 4
)

func Default() Config {
	return Config{Height: defaultHeight, TabWidth: defaultTabWidth}
}

// Load locates and parses the config file, falling back to defaults when it
// is missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	bytes, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		Lines       *int  `toml:"lines"`
		TabWidth    *int  `toml:"tab_width"`
		LineNumbers *bool `toml:"line_numbers"`
		Follow      *bool `toml:"follow"`
		WrapScan    *bool `toml:"wrap_scan"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if raw.Lines != nil {
		cfg.Height = *raw.Lines
	}
	if raw.TabWidth != nil {
		cfg.TabWidth = *raw.TabWidth
	}
	if raw.LineNumbers != nil {
		cfg.LineNumbers = *raw.LineNumbers
	}
	if raw.Follow != nil {
		cfg.Follow = *raw.Follow
	}
	if raw.WrapScan != nil {
		cfg.WrapScan = *raw.WrapScan
	}

	return cfg.validated(), nil
}

func (c Config) validated() Config {
	if c.Height < 1 {
		c.Height = defaultHeight
	}
	if c.TabWidth < 1 {
		c.TabWidth = defaultTabWidth
	}
	if c.StartLine < 0 {
		c.StartLine = 0
	}
	return c
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
	}
	return path, nil
}
