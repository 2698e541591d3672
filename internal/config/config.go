// Package config loads grape.toml (or an explicit path), the CLI and
// server's shared source of default pruning/sampling parameters, using
// github.com/BurntSushi/toml.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config holds every setting a grape.toml file may override. Zero-valued
// fields are filled by FillDefaults.
type Config struct {
	// DefaultSize is the max program size used when --size is not given.
	DefaultSize int `toml:"default_size"`
	// DefaultSamples is the sample count used when --samples is not given.
	DefaultSamples int `toml:"default_samples"`
	// DefaultSeed seeds every PRNG the Evaluator and commutativity detector
	// use when --seed is not given.
	DefaultSeed int64 `toml:"default_seed"`
	// DefaultFormat is the automaton emission format (native/ebnf/lark)
	// used when --output's extension doesn't disambiguate it.
	DefaultFormat string `toml:"default_format"`
	// ServerListenAddr is the address server/ binds to by default.
	ServerListenAddr string `toml:"server_listen_addr"`
}

// FillDefaults returns a copy of cfg with every zero-valued field replaced
// by its built-in default.
func (cfg Config) FillDefaults() Config {
	out := cfg
	if out.DefaultSize == 0 {
		out.DefaultSize = 10
	}
	if out.DefaultSamples == 0 {
		out.DefaultSamples = 50
	}
	if out.DefaultSeed == 0 {
		out.DefaultSeed = 1
	}
	if out.DefaultFormat == "" {
		out.DefaultFormat = "native"
	}
	if out.ServerListenAddr == "" {
		out.ServerListenAddr = ":8080"
	}
	return out
}

// Validate reports whether cfg (after FillDefaults) has legal values.
func (cfg Config) Validate() error {
	if cfg.DefaultSize < 1 {
		return fmt.Errorf("default_size: must be at least 1, but is %d", cfg.DefaultSize)
	}
	if cfg.DefaultSamples < 1 {
		return fmt.Errorf("default_samples: must be at least 1, but is %d", cfg.DefaultSamples)
	}
	switch cfg.DefaultFormat {
	case "native", "ebnf", "lark":
	default:
		return fmt.Errorf("default_format: must be one of native, ebnf, lark, but is %q", cfg.DefaultFormat)
	}
	return nil
}

// Load reads and decodes the TOML config at path. A missing file is not an
// error: Load returns a zero Config so the caller can FillDefaults over it.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Config{}, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// DefaultPath returns the config path Load should be called with when the
// user did not pass --config: $XDG_CONFIG_HOME/grape/config.toml, falling
// back to $HOME/.config/grape/config.toml.
func DefaultPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return xdg + "/grape/config.toml"
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "grape.toml"
	}
	return home + "/.config/grape/config.toml"
}
