// Package level holds the ordered prompt levels of a session and tracks
// each player's position through them independently.
package level

import (
	"fmt"

	"github.com/verte-zerg/typeduel/internal/model"
)

// Level is an ordered list of prompt units. In letters mode each unit is a
// single character, in words mode a whole word; the sequencer does not care.
type Level struct {
	Name  string
	Units []string
}

// AdvanceKind describes what an advance crossed.
type AdvanceKind int

const (
	// NextUnit moved the cursor within the current level.
	NextUnit AdvanceKind = iota
	// LevelComplete finished a level and entered the next one.
	LevelComplete
	// AllComplete finished the final level. Advancing a finished player
	// keeps reporting AllComplete without moving anything.
	AllComplete
)

func (k AdvanceKind) String() string {
	switch k {
	case NextUnit:
		return "next-unit"
	case LevelComplete:
		return "level-complete"
	case AllComplete:
		return "all-complete"
	}
	return "unknown"
}

type cursor struct {
	level int
	unit  int
	done  bool
}

// Sequencer serves the same level sequence to every player while keeping a
// separate cursor per slot, so a fast player never drags a slow one along.
type Sequencer struct {
	levels  []Level
	total   int
	cursors map[model.Slot]*cursor
}

// New validates the level set and creates a cursor for each active player.
func New(levels []Level, players int) (*Sequencer, error) {
	if len(levels) == 0 {
		return nil, fmt.Errorf("no levels to play")
	}
	total := 0
	for i, l := range levels {
		if len(l.Units) == 0 {
			return nil, fmt.Errorf("level %d (%s) has no units", i+1, l.Name)
		}
		total += len(l.Units)
	}
	s := &Sequencer{
		levels:  levels,
		total:   total,
		cursors: make(map[model.Slot]*cursor, players),
	}
	for _, slot := range model.ActiveSlots(players) {
		s.cursors[slot] = &cursor{}
	}
	return s, nil
}

// Levels returns the shared level sequence.
func (s *Sequencer) Levels() []Level {
	return s.levels
}

// Total returns the number of units across all levels.
func (s *Sequencer) Total() int {
	return s.total
}

// Current returns the unit the player must type next, false once the player
// has finished every level.
func (s *Sequencer) Current(slot model.Slot) (string, bool) {
	c, ok := s.cursors[slot]
	if !ok || c.done {
		return "", false
	}
	return s.levels[c.level].Units[c.unit], true
}

// Position returns the player's level and unit indexes, both zero-based.
func (s *Sequencer) Position(slot model.Slot) (level, unit int) {
	c, ok := s.cursors[slot]
	if !ok {
		return 0, 0
	}
	return c.level, c.unit
}

// Completed returns how many units the player has passed in total.
func (s *Sequencer) Completed(slot model.Slot) int {
	c, ok := s.cursors[slot]
	if !ok {
		return 0
	}
	n := c.unit
	for i := 0; i < c.level; i++ {
		n += len(s.levels[i].Units)
	}
	return n
}

// Advance moves the player past the current unit and reports what the move
// crossed. A finished player stays finished.
func (s *Sequencer) Advance(slot model.Slot) AdvanceKind {
	c, ok := s.cursors[slot]
	if !ok || c.done {
		return AllComplete
	}
	c.unit++
	if c.unit < len(s.levels[c.level].Units) {
		return NextUnit
	}
	if c.level+1 < len(s.levels) {
		c.level++
		c.unit = 0
		return LevelComplete
	}
	c.done = true
	return AllComplete
}

// Done reports whether the player has finished every level.
func (s *Sequencer) Done(slot model.Slot) bool {
	c, ok := s.cursors[slot]
	return ok && c.done
}

// AllDone reports whether every player has finished.
func (s *Sequencer) AllDone() bool {
	for _, c := range s.cursors {
		if !c.done {
			return false
		}
	}
	return len(s.cursors) > 0
}
