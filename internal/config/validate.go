package config

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/verte-zerg/typeduel/internal/model"
)

// ErrInvalid marks configuration that must stop the session before setup.
var ErrInvalid = errors.New("invalid configuration")

// Validate checks a merged session config. Level counts are only relevant
// when the level sequence is generated, so customLevels skips them.
func Validate(cfg model.Config, customLevels bool) error {
	if cfg.Mode != model.ModeLetters && cfg.Mode != model.ModeWords {
		return fmt.Errorf("%w: unknown mode %q", ErrInvalid, cfg.Mode)
	}
	if cfg.Players < 1 || cfg.Players > model.MaxPlayers {
		return fmt.Errorf("%w: players must be between 1 and %d", ErrInvalid, model.MaxPlayers)
	}
	if strings.TrimSpace(cfg.Lang) == "" {
		return fmt.Errorf("%w: lang must not be empty", ErrInvalid)
	}
	if !customLevels {
		if cfg.Levels <= 0 {
			return fmt.Errorf("%w: levels must be > 0", ErrInvalid)
		}
		if cfg.UnitsPerLevel <= 0 {
			return fmt.Errorf("%w: units must be > 0", ErrInvalid)
		}
	}
	if cfg.CapsPct < 0 || cfg.CapsPct > 1 {
		return fmt.Errorf("%w: caps must be between 0 and 1", ErrInvalid)
	}
	if cfg.PunctPct < 0 || cfg.PunctPct > 1 {
		return fmt.Errorf("%w: punct must be between 0 and 1", ErrInvalid)
	}
	if cfg.PunctPct > 0 && cfg.PunctSet == "" {
		return fmt.Errorf("%w: punct-set must not be empty when punct > 0", ErrInvalid)
	}
	if cfg.SetupTimeout < 0 {
		return fmt.Errorf("%w: setup-timeout must not be negative", ErrInvalid)
	}
	return nil
}

// ValidateLevels checks hand-written [[level]] blocks against the mode:
// letters mode prompts single characters, words mode whole tokens.
func ValidateLevels(mode model.Mode, levels []LevelConfig) error {
	if len(levels) == 0 {
		return fmt.Errorf("%w: no levels defined", ErrInvalid)
	}
	for i, l := range levels {
		if len(l.Units) == 0 {
			return fmt.Errorf("%w: level %d (%s) has no units", ErrInvalid, i+1, l.Name)
		}
		for _, u := range l.Units {
			if u == "" {
				return fmt.Errorf("%w: level %d (%s) contains an empty unit", ErrInvalid, i+1, l.Name)
			}
			if mode == model.ModeLetters && utf8.RuneCountInString(u) != 1 {
				return fmt.Errorf("%w: level %d (%s): unit %q is not a single character", ErrInvalid, i+1, l.Name, u)
			}
			if mode == model.ModeWords && strings.ContainsAny(u, " \t\n") {
				return fmt.Errorf("%w: level %d (%s): unit %q contains whitespace", ErrInvalid, i+1, l.Name, u)
			}
		}
	}
	return nil
}
