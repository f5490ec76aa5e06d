// Package model defines shared data structures.
package model

import (
	"fmt"
	"time"
)

// Slot identifies a player position for the duration of a session. Slots are
// assigned to keyboards in first-press order and never reassigned.
type Slot int

// Defined slots. SlotNone is the zero value and never carries input.
const (
	SlotNone Slot = 0
	Player1  Slot = 1
	Player2  Slot = 2
)

// MaxPlayers is the number of simultaneous keyboards a session supports.
const MaxPlayers = 2

func (s Slot) String() string {
	if s == SlotNone {
		return "unbound"
	}
	return fmt.Sprintf("player %d", int(s))
}

// ActiveSlots returns the slots in play for the given player count.
func ActiveSlots(players int) []Slot {
	slots := make([]Slot, 0, players)
	for i := 1; i <= players; i++ {
		slots = append(slots, Slot(i))
	}
	return slots
}

// Mode selects how prompt units are compared against keystrokes.
type Mode string

// Recognized modes. Letters compares a single rune per unit; Words
// accumulates typed runes and compares whole tokens.
const (
	ModeLetters Mode = "letters"
	ModeWords   Mode = "words"
)

// ParseMode validates a mode string from flags or config.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeLetters, ModeWords:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown mode %q (expected %q or %q)", s, ModeLetters, ModeWords)
}

// Config defines the settings for one play session.
type Config struct {
	Mode          Mode
	Players       int
	Lang          string
	Levels        int           // generated level count (ignored when levels come from the config file)
	UnitsPerLevel int           // prompt units per generated level
	CapsPct       float64       // probability of a capitalized first letter (words mode)
	PunctPct      float64       // punctuation probability per word (words mode)
	PunctSet      string        // punctuation characters appended by the generator
	SetupTimeout  time.Duration // 0 disables the binding timeout
}

// PlayerResult captures one player's totals for a completed session.
type PlayerResult struct {
	Slot       Slot
	Device     string
	Correct    int
	Incorrect  int
	UnitsDone  int
	DurationMs int64
}

// UnitResult stores per-unit totals for one player in a completed session.
type UnitResult struct {
	Slot         Slot
	Unit         string
	Correct      int
	Incorrect    int
	LatencySumMs int64
	LatencyCount int64
}

// SessionRecord is the durable form of a completed session.
type SessionRecord struct {
	ID        string
	StartedAt time.Time
	EndedAt   time.Time
	Mode      Mode
	Lang      string
	Levels    int
	Players   []PlayerResult
	Units     []UnitResult
}

// ResultsFilter selects stored session records for display.
type ResultsFilter struct {
	Mode  string
	Since *time.Time
	Last  int
}

// ResultRow is one player's row of a stored session, as listed by the
// results store.
type ResultRow struct {
	RecordID   string
	EndedAt    time.Time
	Mode       Mode
	Lang       string
	Levels     int
	Slot       Slot
	Device     string
	Correct    int
	Incorrect  int
	UnitsDone  int
	DurationMs int64
}
