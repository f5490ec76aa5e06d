package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/typeduel/internal/keyboard"
	"github.com/verte-zerg/typeduel/internal/level"
	"github.com/verte-zerg/typeduel/internal/model"
	"github.com/verte-zerg/typeduel/internal/session"
)

func duelModel() *Model {
	cfg := model.Config{Mode: model.ModeLetters, Players: 2, Lang: "en"}
	levels := []level.Level{
		{Name: "home-row", Units: []string{"a", "s", "d"}},
		{Name: "top-row", Units: []string{"q", "w"}},
	}
	return NewModel(cfg, levels)
}

func TestUpdateAppliesNotifications(t *testing.T) {
	m := duelModel()
	note := NoteMsg{
		State: session.InProgress,
		Players: []session.PlayerView{
			{Slot: model.Player1, LevelName: "home-row", Unit: "a", Total: 5},
			{Slot: model.Player2, LevelName: "home-row", Unit: "a", Total: 5},
		},
	}
	updated, cmd := m.Update(note)
	if cmd != nil {
		t.Fatalf("expected no command from a snapshot")
	}
	m = updated.(*Model)
	if m.state != session.InProgress || len(m.players) != 2 {
		t.Fatalf("snapshot not applied: state=%v players=%d", m.state, len(m.players))
	}
}

func TestUpdateQuitsOnDone(t *testing.T) {
	m := duelModel()
	_, cmd := m.Update(DoneMsg{})
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected quit message, got %T", cmd())
	}
}

func TestUpdateQuitsOnCtrlC(t *testing.T) {
	m := duelModel()
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected quit message, got %T", cmd())
	}
}

func TestViewSetupListsKeyboards(t *testing.T) {
	m := duelModel()
	updated, _ := m.Update(NoteMsg{
		State: session.Setup,
		Devices: []keyboard.Device{
			{ID: "kbd-left", Path: "/dev/input/event3", Name: "Left Keyboard"},
			{ID: "kbd-right", Path: "/dev/input/event4", Name: "Right Keyboard"},
		},
		Bound: []session.BoundDevice{{Slot: model.Player1, Device: "kbd-left"}},
	})
	out := updated.View()
	for _, want := range []string{"Left Keyboard", "Right Keyboard", "player 1", "Waiting for 1 more player."} {
		if !strings.Contains(out, want) {
			t.Fatalf("setup view missing %q:\n%s", want, out)
		}
	}
}

func TestViewPlayShowsBothPanes(t *testing.T) {
	m := duelModel()
	updated, _ := m.Update(NoteMsg{
		State: session.InProgress,
		Players: []session.PlayerView{
			{Slot: model.Player1, LevelIndex: 0, LevelName: "home-row", UnitIndex: 1, Unit: "s", WPM: 42.1, Accuracy: 0.963, Completed: 1, Total: 5},
			{Slot: model.Player2, LevelIndex: 1, LevelName: "top-row", UnitIndex: 0, Unit: "q", WPM: 38.0, Accuracy: 0.9, Completed: 3, Total: 5},
		},
	})
	out := updated.View()
	for _, want := range []string{"player 1", "player 2", "home-row", "top-row", "WPM 42.1", "WPM 38.0", "esc pauses"} {
		if !strings.Contains(out, want) {
			t.Fatalf("play view missing %q:\n%s", want, out)
		}
	}
}

func TestViewPausedBanner(t *testing.T) {
	m := duelModel()
	updated, _ := m.Update(NoteMsg{
		State: session.Paused,
		Players: []session.PlayerView{
			{Slot: model.Player1, LevelIndex: 0, LevelName: "home-row", Total: 5},
			{Slot: model.Player2, LevelIndex: 0, LevelName: "home-row", Total: 5},
		},
	})
	out := updated.View()
	if !strings.Contains(out, "PAUSED") {
		t.Fatalf("expected pause banner:\n%s", out)
	}
}

func TestViewCompleteShowsWinner(t *testing.T) {
	m := duelModel()
	rec := &model.SessionRecord{
		Mode: model.ModeLetters,
		Players: []model.PlayerResult{
			{Slot: model.Player1, Correct: 30, UnitsDone: 5, DurationMs: 60000},
			{Slot: model.Player2, Correct: 20, UnitsDone: 4, DurationMs: 60000},
		},
	}
	updated, _ := m.Update(NoteMsg{State: session.Complete, Record: rec})
	out := updated.View()
	if !strings.Contains(out, "Session complete") {
		t.Fatalf("expected completion heading:\n%s", out)
	}
	if !strings.Contains(out, "Winner: player 1") {
		t.Fatalf("expected winner line:\n%s", out)
	}
}

func TestViewDonePaneWaitsForOpponent(t *testing.T) {
	m := duelModel()
	updated, _ := m.Update(NoteMsg{
		State: session.InProgress,
		Players: []session.PlayerView{
			{Slot: model.Player1, LevelIndex: 1, LevelName: "top-row", Done: true, Total: 5, Completed: 5},
			{Slot: model.Player2, LevelIndex: 0, LevelName: "home-row", Total: 5},
		},
	})
	out := updated.View()
	if !strings.Contains(out, "Finished!") {
		t.Fatalf("expected finished marker for the done player:\n%s", out)
	}
}
