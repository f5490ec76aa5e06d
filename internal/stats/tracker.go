package stats

import (
	"sort"

	"github.com/verte-zerg/typeduel/internal/model"
)

type tally struct {
	correct   int
	incorrect int
	unitsDone int
}

// Tracker accumulates per-player and per-unit tallies while a session runs.
// The session loop is the only writer, so no locking here.
type Tracker struct {
	players map[model.Slot]*tally
	units   map[model.Slot]map[string]*model.UnitResult
}

func NewTracker(players int) *Tracker {
	t := &Tracker{
		players: make(map[model.Slot]*tally, players),
		units:   make(map[model.Slot]map[string]*model.UnitResult, players),
	}
	for _, slot := range model.ActiveSlots(players) {
		t.players[slot] = &tally{}
		t.units[slot] = make(map[string]*model.UnitResult)
	}
	return t
}

func (t *Tracker) unit(slot model.Slot, unit string) *model.UnitResult {
	m, ok := t.units[slot]
	if !ok {
		return nil
	}
	u, ok := m[unit]
	if !ok {
		u = &model.UnitResult{Slot: slot, Unit: unit}
		m[unit] = u
	}
	return u
}

// RecordCorrect counts a correct press against unit. latencyMs is the time
// since the player's previous press, negative when there is none to measure.
func (t *Tracker) RecordCorrect(slot model.Slot, unit string, latencyMs int64) {
	p, ok := t.players[slot]
	if !ok {
		return
	}
	p.correct++
	u := t.unit(slot, unit)
	u.Correct++
	if latencyMs >= 0 {
		u.LatencySumMs += latencyMs
		u.LatencyCount++
	}
}

// RecordIncorrect counts a wrong press against unit.
func (t *Tracker) RecordIncorrect(slot model.Slot, unit string) {
	p, ok := t.players[slot]
	if !ok {
		return
	}
	p.incorrect++
	t.unit(slot, unit).Incorrect++
}

// UnitDone counts a finished prompt unit.
func (t *Tracker) UnitDone(slot model.Slot) {
	if p, ok := t.players[slot]; ok {
		p.unitsDone++
	}
}

// Counts returns the player's running totals.
func (t *Tracker) Counts(slot model.Slot) (correct, incorrect, unitsDone int) {
	p, ok := t.players[slot]
	if !ok {
		return 0, 0, 0
	}
	return p.correct, p.incorrect, p.unitsDone
}

// PlayerResults builds the per-player rows of a finished session. devices
// and durations are keyed by slot; missing entries leave the zero value.
func (t *Tracker) PlayerResults(devices map[model.Slot]string, durations map[model.Slot]int64) []model.PlayerResult {
	slots := make([]model.Slot, 0, len(t.players))
	for slot := range t.players {
		slots = append(slots, slot)
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i] < slots[j] })

	out := make([]model.PlayerResult, 0, len(slots))
	for _, slot := range slots {
		p := t.players[slot]
		out = append(out, model.PlayerResult{
			Slot:       slot,
			Device:     devices[slot],
			Correct:    p.correct,
			Incorrect:  p.incorrect,
			UnitsDone:  p.unitsDone,
			DurationMs: durations[slot],
		})
	}
	return out
}

// UnitResults flattens the per-unit aggregates, ordered by slot then unit.
func (t *Tracker) UnitResults() []model.UnitResult {
	var out []model.UnitResult
	for _, m := range t.units {
		for _, u := range m {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Slot != out[j].Slot {
			return out[i].Slot < out[j].Slot
		}
		return out[i].Unit < out[j].Unit
	})
	return out
}
