package stats

import (
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/typeduel/internal/model"
)

func TestWinner(t *testing.T) {
	players := []model.PlayerResult{
		{Slot: model.Player1, UnitsDone: 10, DurationMs: 60000, Correct: 50, Incorrect: 5},
		{Slot: model.Player2, UnitsDone: 10, DurationMs: 45000, Correct: 50, Incorrect: 10},
	}
	slot, ok := Winner(players)
	if !ok || slot != model.Player2 {
		t.Fatalf("expected player 2 to win on duration, got %v %v", slot, ok)
	}

	players[0].UnitsDone = 12
	slot, ok = Winner(players)
	if !ok || slot != model.Player1 {
		t.Fatalf("expected player 1 to win on units, got %v %v", slot, ok)
	}
}

func TestWinnerSinglePlayerAndTie(t *testing.T) {
	single := []model.PlayerResult{{Slot: model.Player1, UnitsDone: 5}}
	if _, ok := Winner(single); ok {
		t.Fatal("expected no winner for a single player")
	}

	tie := []model.PlayerResult{
		{Slot: model.Player1, UnitsDone: 10, DurationMs: 60000, Correct: 50, Incorrect: 5},
		{Slot: model.Player2, UnitsDone: 10, DurationMs: 60000, Correct: 50, Incorrect: 5},
	}
	if _, ok := Winner(tie); ok {
		t.Fatal("expected no winner for a dead tie")
	}
}

func TestRenderSessionSummary(t *testing.T) {
	rec := model.SessionRecord{
		ID:        "0f9c2a1b-3c4d-5e6f-7a8b-9c0d1e2f3a4b",
		StartedAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		EndedAt:   time.Date(2024, 5, 1, 10, 2, 0, 0, time.UTC),
		Mode:      "letters",
		Lang:      "en",
		Levels:    3,
		Players: []model.PlayerResult{
			{Slot: model.Player1, Device: "kbd-left", Correct: 40, Incorrect: 2, UnitsDone: 30, DurationMs: 90000},
			{Slot: model.Player2, Device: "kbd-right", Correct: 38, Incorrect: 6, UnitsDone: 28, DurationMs: 120000},
		},
		Units: []model.UnitResult{
			{Slot: model.Player1, Unit: "a", Correct: 10, Incorrect: 1},
			{Slot: model.Player2, Unit: "a", Correct: 9, Incorrect: 2},
		},
	}
	var b strings.Builder
	if err := RenderSessionSummary(&b, rec); err != nil {
		t.Fatalf("render summary: %v", err)
	}
	out := b.String()
	for _, want := range []string{"player 1", "kbd-left", "Winner: player 1", "Weakest Units"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected output to contain %q, got:\n%s", want, out)
		}
	}
	if !strings.Contains(out, "Mode: letters") {
		t.Fatalf("expected mode line, got:\n%s", out)
	}
}

func TestRenderHistoryEmpty(t *testing.T) {
	var b strings.Builder
	if err := RenderHistory(&b, nil); err != nil {
		t.Fatalf("render history: %v", err)
	}
	if !strings.Contains(b.String(), "No sessions recorded.") {
		t.Fatalf("expected empty notice, got %q", b.String())
	}
}

func TestRenderHistoryRows(t *testing.T) {
	rows := []model.ResultRow{
		{
			RecordID:   "0f9c2a1b-3c4d-5e6f-7a8b-9c0d1e2f3a4b",
			EndedAt:    time.Date(2024, 5, 1, 10, 2, 0, 0, time.UTC),
			Mode:       "words",
			Lang:       "en",
			Slot:       model.Player1,
			Device:     "kbd-left",
			Correct:    100,
			Incorrect:  4,
			UnitsDone:  20,
			DurationMs: 60000,
		},
	}
	var b strings.Builder
	if err := RenderHistory(&b, rows); err != nil {
		t.Fatalf("render history: %v", err)
	}
	out := b.String()
	if !strings.Contains(out, "0f9c2a1b") {
		t.Fatalf("expected short record id, got:\n%s", out)
	}
	if strings.Contains(out, "0f9c2a1b-3c4d") {
		t.Fatalf("expected id to be truncated, got:\n%s", out)
	}
	if !strings.Contains(out, "20.0") {
		t.Fatalf("expected wpm column, got:\n%s", out)
	}
}
