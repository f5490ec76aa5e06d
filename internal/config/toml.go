// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Play   PlayConfig    `toml:"play"`
	Levels []LevelConfig `toml:"level"`
}

// PlayConfig maps session settings. Pointer fields distinguish "absent"
// from a zero value so CLI flags can take precedence.
type PlayConfig struct {
	Mode          *string  `toml:"mode"`
	Players       *int     `toml:"players"`
	Lang          *string  `toml:"lang"`
	Levels        *int     `toml:"levels"`
	UnitsPerLevel *int     `toml:"units"`
	CapsPct       *float64 `toml:"caps"`
	PunctPct      *float64 `toml:"punct"`
	PunctSet      *string  `toml:"punct-set"`
	SetupTimeout  *string  `toml:"setup-timeout"`
	Record        *bool    `toml:"record"`
	LogFile       *string  `toml:"log-file"`
	LogLevel      *string  `toml:"log-level"`
}

// LevelConfig is one hand-written level. When any [[level]] blocks are
// present they replace the generated sequence entirely.
type LevelConfig struct {
	Name  string   `toml:"name"`
	Units []string `toml:"units"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}
