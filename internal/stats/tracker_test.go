package stats

import (
	"testing"

	"github.com/verte-zerg/typeduel/internal/model"
)

func TestTrackerCounts(t *testing.T) {
	tr := NewTracker(2)

	tr.RecordCorrect(model.Player1, "a", 120)
	tr.RecordCorrect(model.Player1, "a", 80)
	tr.RecordIncorrect(model.Player1, "b")
	tr.UnitDone(model.Player1)
	tr.RecordCorrect(model.Player2, "a", -1)

	c, i, d := tr.Counts(model.Player1)
	if c != 2 || i != 1 || d != 1 {
		t.Fatalf("expected 2/1/1 for player 1, got %d/%d/%d", c, i, d)
	}
	c, i, d = tr.Counts(model.Player2)
	if c != 1 || i != 0 || d != 0 {
		t.Fatalf("expected 1/0/0 for player 2, got %d/%d/%d", c, i, d)
	}
}

func TestTrackerUnitResults(t *testing.T) {
	tr := NewTracker(2)
	tr.RecordCorrect(model.Player2, "b", 50)
	tr.RecordCorrect(model.Player1, "b", 100)
	tr.RecordIncorrect(model.Player1, "b")
	tr.RecordCorrect(model.Player1, "a", -1)

	units := tr.UnitResults()
	if len(units) != 3 {
		t.Fatalf("expected 3 unit rows, got %d", len(units))
	}
	if units[0].Slot != model.Player1 || units[0].Unit != "a" {
		t.Fatalf("unexpected first row: %+v", units[0])
	}
	if units[0].LatencyCount != 0 {
		t.Fatalf("expected no latency sample for a, got %d", units[0].LatencyCount)
	}
	if units[1].Unit != "b" || units[1].Correct != 1 || units[1].Incorrect != 1 {
		t.Fatalf("unexpected second row: %+v", units[1])
	}
	if units[1].LatencySumMs != 100 || units[1].LatencyCount != 1 {
		t.Fatalf("unexpected latency for player 1 b: %+v", units[1])
	}
	if units[2].Slot != model.Player2 {
		t.Fatalf("expected player 2 row last, got %+v", units[2])
	}
}

func TestTrackerPlayerResults(t *testing.T) {
	tr := NewTracker(2)
	tr.RecordCorrect(model.Player1, "a", 10)
	tr.UnitDone(model.Player1)
	tr.RecordIncorrect(model.Player2, "a")

	devices := map[model.Slot]string{
		model.Player1: "kbd-left",
		model.Player2: "kbd-right",
	}
	durations := map[model.Slot]int64{
		model.Player1: 6000,
		model.Player2: 9000,
	}
	players := tr.PlayerResults(devices, durations)
	if len(players) != 2 {
		t.Fatalf("expected 2 players, got %d", len(players))
	}
	p1 := players[0]
	if p1.Slot != model.Player1 || p1.Device != "kbd-left" || p1.Correct != 1 || p1.UnitsDone != 1 || p1.DurationMs != 6000 {
		t.Fatalf("unexpected player 1 result: %+v", p1)
	}
	p2 := players[1]
	if p2.Slot != model.Player2 || p2.Incorrect != 1 || p2.DurationMs != 9000 {
		t.Fatalf("unexpected player 2 result: %+v", p2)
	}
}
