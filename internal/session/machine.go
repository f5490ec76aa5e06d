// Package session evaluates keystrokes against prompts and drives the
// lifecycle of a duel: setup, play, pause, completion.
package session

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/verte-zerg/typeduel/internal/binding"
	"github.com/verte-zerg/typeduel/internal/keyboard"
	"github.com/verte-zerg/typeduel/internal/level"
	"github.com/verte-zerg/typeduel/internal/model"
	"github.com/verte-zerg/typeduel/internal/stats"
)

// State of a session.
type State int

const (
	// Setup waits for every player to claim a keyboard.
	Setup State = iota
	// InProgress evaluates keystrokes.
	InProgress
	// Paused ignores keystrokes until resumed.
	Paused
	// Complete is terminal.
	Complete
)

func (s State) String() string {
	switch s {
	case Setup:
		return "setup"
	case InProgress:
		return "in-progress"
	case Paused:
		return "paused"
	case Complete:
		return "complete"
	}
	return "unknown"
}

// Outcome classifies one evaluated keystroke.
type Outcome int

const (
	// Ignored did not change anything: releases, repeats, modifiers,
	// keystrokes outside InProgress, input from unbound keyboards, and
	// word-buffer editing.
	Ignored Outcome = iota
	// Correct matched the prompt and advanced within the level.
	Correct
	// Incorrect missed the prompt. The prompt does not move.
	Incorrect
	// LevelAdvanced matched and finished a level for that player.
	LevelAdvanced
	// SessionComplete matched, and with it every player finished.
	SessionComplete
)

func (o Outcome) String() string {
	switch o {
	case Ignored:
		return "ignored"
	case Correct:
		return "correct"
	case Incorrect:
		return "incorrect"
	case LevelAdvanced:
		return "level-advanced"
	case SessionComplete:
		return "session-complete"
	}
	return "unknown"
}

type finishMark struct {
	at     time.Time
	paused time.Duration
}

// Machine holds all mutable session state. It is not safe for concurrent
// use; the runner goroutine is its only caller.
type Machine struct {
	log   zerolog.Logger
	cfg   model.Config
	seq   *level.Sequencer
	track *stats.Tracker

	state   State
	devices map[model.Slot]keyboard.DeviceID

	start       time.Time
	end         time.Time
	pauseStart  time.Time
	pausedTotal time.Duration
	finished    map[model.Slot]finishMark

	buffers     map[model.Slot][]rune
	lastPress   map[model.Slot]time.Time
	lastOutcome map[model.Slot]Outcome
}

// NewMachine builds a machine in Setup state over a prepared sequencer.
func NewMachine(log zerolog.Logger, cfg model.Config, seq *level.Sequencer) *Machine {
	return &Machine{
		log:         log,
		cfg:         cfg,
		seq:         seq,
		track:       stats.NewTracker(cfg.Players),
		state:       Setup,
		devices:     make(map[model.Slot]keyboard.DeviceID, cfg.Players),
		finished:    make(map[model.Slot]finishMark, cfg.Players),
		buffers:     make(map[model.Slot][]rune, cfg.Players),
		lastPress:   make(map[model.Slot]time.Time, cfg.Players),
		lastOutcome: make(map[model.Slot]Outcome, cfg.Players),
	}
}

// State returns the current lifecycle state.
func (m *Machine) State() State {
	return m.state
}

// Start moves Setup to InProgress once every slot has a keyboard.
func (m *Machine) Start(now time.Time, bound []binding.Binding) {
	if m.state != Setup {
		return
	}
	for _, b := range bound {
		m.devices[b.Slot] = b.Device
	}
	m.start = now
	m.state = InProgress
	m.log.Info().Int("players", len(bound)).Msg("session started")
}

// Pause suspends evaluation. Only valid while InProgress.
func (m *Machine) Pause(now time.Time) {
	if m.state != InProgress {
		return
	}
	m.state = Paused
	m.pauseStart = now
	m.log.Info().Msg("session paused")
}

// Resume continues a paused session. The pause span is excluded from every
// duration and the latency chain restarts.
func (m *Machine) Resume(now time.Time) {
	if m.state != Paused {
		return
	}
	m.pausedTotal += now.Sub(m.pauseStart)
	m.pauseStart = time.Time{}
	m.state = InProgress
	for slot := range m.lastPress {
		delete(m.lastPress, slot)
	}
	m.log.Info().Msg("session resumed")
}

// Stop ends the session early, keeping whatever progress was made.
func (m *Machine) Stop(now time.Time) {
	if m.state == Complete {
		return
	}
	if m.state == Paused {
		m.pausedTotal += now.Sub(m.pauseStart)
		m.pauseStart = time.Time{}
	}
	m.complete(now)
	m.log.Info().Msg("session stopped")
}

func (m *Machine) complete(now time.Time) {
	m.state = Complete
	m.end = now
}

// Submit evaluates one keystroke from the player bound to slot. Exactly one
// outcome is returned per event; events that cannot be evaluated come back
// Ignored.
func (m *Machine) Submit(slot model.Slot, ev keyboard.Event) Outcome {
	if m.state != InProgress {
		return Ignored
	}
	if slot == model.SlotNone {
		return Ignored
	}
	if ev.Kind != keyboard.Press || ev.Modifier || ev.Ctrl {
		return Ignored
	}
	if m.seq.Done(slot) {
		return Ignored
	}

	latency := m.pressLatency(slot, ev.When)

	var out Outcome
	if m.cfg.Mode == model.ModeWords {
		out = m.submitWord(slot, ev, latency)
	} else {
		out = m.submitLetter(slot, ev, latency)
	}
	if out != Ignored {
		m.lastOutcome[slot] = out
	}
	return out
}

// pressLatency returns milliseconds since the player's previous press and
// records this press as the new reference point. Negative means no previous
// press to measure against.
func (m *Machine) pressLatency(slot model.Slot, when time.Time) int64 {
	prev, ok := m.lastPress[slot]
	m.lastPress[slot] = when
	if !ok || when.Before(prev) {
		return -1
	}
	return when.Sub(prev).Milliseconds()
}

func (m *Machine) submitLetter(slot model.Slot, ev keyboard.Event, latencyMs int64) Outcome {
	expected, ok := m.seq.Current(slot)
	if !ok {
		return Ignored
	}
	if ev.Rune == 0 || string(ev.Rune) != expected {
		m.track.RecordIncorrect(slot, expected)
		return Incorrect
	}
	m.track.RecordCorrect(slot, expected, latencyMs)
	m.track.UnitDone(slot)
	return m.advance(slot, ev.When)
}

func (m *Machine) submitWord(slot model.Slot, ev keyboard.Event, latencyMs int64) Outcome {
	expected, ok := m.seq.Current(slot)
	if !ok {
		return Ignored
	}
	switch ev.Rune {
	case 0:
		return Ignored
	case '\b':
		if buf := m.buffers[slot]; len(buf) > 0 {
			m.buffers[slot] = buf[:len(buf)-1]
		}
		return Ignored
	case ' ', '\n':
		typed := string(m.buffers[slot])
		if typed == "" {
			return Ignored
		}
		m.buffers[slot] = m.buffers[slot][:0]
		if typed != expected {
			m.track.RecordIncorrect(slot, expected)
			return Incorrect
		}
		m.track.RecordCorrect(slot, expected, latencyMs)
		m.track.UnitDone(slot)
		return m.advance(slot, ev.When)
	default:
		m.buffers[slot] = append(m.buffers[slot], ev.Rune)
		return Ignored
	}
}

// advance moves the player's cursor after a correct evaluation and maps the
// crossing onto an outcome. Completing the final level marks the player
// finished; the session completes when the last player does.
func (m *Machine) advance(slot model.Slot, when time.Time) Outcome {
	switch m.seq.Advance(slot) {
	case level.NextUnit:
		return Correct
	case level.LevelComplete:
		m.log.Debug().Stringer("slot", slot).Msg("level complete")
		return LevelAdvanced
	default:
		m.finished[slot] = finishMark{at: when, paused: m.pausedTotal}
		m.log.Info().Stringer("slot", slot).Msg("player finished")
		if m.seq.AllDone() {
			m.complete(when)
			return SessionComplete
		}
		return LevelAdvanced
	}
}

// activeMs returns the player's active play time in milliseconds at now,
// excluding pauses, frozen at the moment the player finished.
func (m *Machine) activeMs(slot model.Slot, now time.Time) int64 {
	if m.start.IsZero() {
		return 0
	}
	if f, ok := m.finished[slot]; ok {
		return maxMs(f.at.Sub(m.start) - f.paused)
	}
	end := now
	paused := m.pausedTotal
	switch {
	case m.state == Paused:
		paused += now.Sub(m.pauseStart)
	case m.state == Complete:
		end = m.end
	}
	return maxMs(end.Sub(m.start) - paused)
}

func maxMs(d time.Duration) int64 {
	if d < 0 {
		return 0
	}
	return d.Milliseconds()
}

// Record assembles the durable form of the session. Valid once Complete.
func (m *Machine) Record() (model.SessionRecord, bool) {
	if m.state != Complete {
		return model.SessionRecord{}, false
	}
	devices := make(map[model.Slot]string, len(m.devices))
	durations := make(map[model.Slot]int64, len(m.devices))
	for slot, id := range m.devices {
		devices[slot] = string(id)
		durations[slot] = m.activeMs(slot, m.end)
	}
	return model.SessionRecord{
		ID:        uuid.NewString(),
		StartedAt: m.start,
		EndedAt:   m.end,
		Mode:      m.cfg.Mode,
		Lang:      m.cfg.Lang,
		Levels:    len(m.seq.Levels()),
		Players:   m.track.PlayerResults(devices, durations),
		Units:     m.track.UnitResults(),
	}, true
}

// PlayerView is a presentation snapshot of one player.
type PlayerView struct {
	Slot       model.Slot
	Device     keyboard.DeviceID
	LevelIndex int
	LevelName  string
	LevelSize  int
	UnitIndex  int
	Unit       string
	Buffer     string
	Last       Outcome
	Correct    int
	Incorrect  int
	UnitsDone  int
	Completed  int
	Total      int
	WPM        float64
	Accuracy   float64
	Done       bool
}

// Players builds snapshots for every slot, in slot order.
func (m *Machine) Players(now time.Time) []PlayerView {
	slots := model.ActiveSlots(m.cfg.Players)
	views := make([]PlayerView, 0, len(slots))
	for _, slot := range slots {
		correct, incorrect, unitsDone := m.track.Counts(slot)
		ms := m.activeMs(slot, now)
		_, _, acc := stats.SessionMetrics(correct, incorrect, ms)
		v := PlayerView{
			Slot:      slot,
			Device:    m.devices[slot],
			Last:      m.lastOutcome[slot],
			Correct:   correct,
			Incorrect: incorrect,
			UnitsDone: unitsDone,
			Completed: m.seq.Completed(slot),
			Total:     m.seq.Total(),
			WPM:       stats.WPM(m.cfg.Mode, correct, unitsDone, ms),
			Accuracy:  acc,
			Buffer:    string(m.buffers[slot]),
			Done:      m.seq.Done(slot),
		}
		li, ui := m.seq.Position(slot)
		lv := m.seq.Levels()[li]
		v.LevelIndex = li
		v.LevelName = lv.Name
		v.LevelSize = len(lv.Units)
		v.UnitIndex = ui
		if unit, ok := m.seq.Current(slot); ok {
			v.Unit = unit
		}
		views = append(views, v)
	}
	return views
}
