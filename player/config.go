// Package player wires the two script engines, the shared object space,
// and the persistence layers into a frame-driven runtime.
package player

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config represents a lantern.toml player configuration.
type Config struct {
	Movie   MovieConfig   `toml:"movie"`
	Runtime RuntimeConfig `toml:"runtime"`
	Storage StorageConfig `toml:"storage"`
}

// MovieConfig describes the loaded movie.
type MovieConfig struct {
	Name       string  `toml:"name"`
	SwfVersion int     `toml:"swf-version"`
	Width      int     `toml:"width"`
	Height     int     `toml:"height"`
	FrameRate  float64 `toml:"frame-rate"`
}

// RuntimeConfig tunes the script engines.
type RuntimeConfig struct {
	MaxRecursion int `toml:"max-recursion"`
	GCThreshold  int `toml:"gc-threshold"`
}

// StorageConfig configures shared object persistence. An empty database
// path disables persistence.
type StorageConfig struct {
	Database string `toml:"database"`
}

// DefaultConfig returns the configuration used when no lantern.toml is
// present.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// LoadConfig parses a lantern.toml file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Movie.Name == "" {
		cfg.Movie.Name = "untitled"
	}
	if cfg.Movie.SwfVersion == 0 {
		cfg.Movie.SwfVersion = 32
	}
	if cfg.Movie.Width == 0 {
		cfg.Movie.Width = 550
	}
	if cfg.Movie.Height == 0 {
		cfg.Movie.Height = 400
	}
	if cfg.Movie.FrameRate == 0 {
		cfg.Movie.FrameRate = 24
	}
	if cfg.Runtime.MaxRecursion == 0 {
		cfg.Runtime.MaxRecursion = 255
	}
}
