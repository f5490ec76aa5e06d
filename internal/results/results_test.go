package results

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/verte-zerg/typeduel/internal/model"
	"github.com/verte-zerg/typeduel/internal/session"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "results.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return store
}

func testRecord(id string, endedAt time.Time, mode model.Mode) model.SessionRecord {
	return model.SessionRecord{
		ID:        id,
		StartedAt: endedAt.Add(-time.Minute),
		EndedAt:   endedAt,
		Mode:      mode,
		Lang:      "en",
		Levels:    3,
		Players: []model.PlayerResult{
			{Slot: model.Player1, Device: "kbd-left", Correct: 30, Incorrect: 2, UnitsDone: 30, DurationMs: 60000},
			{Slot: model.Player2, Device: "kbd-right", Correct: 28, Incorrect: 5, UnitsDone: 28, DurationMs: 60000},
		},
		Units: []model.UnitResult{
			{Slot: model.Player1, Unit: "a", Correct: 10, Incorrect: 1, LatencySumMs: 2400, LatencyCount: 11},
			{Slot: model.Player2, Unit: "a", Correct: 9, Incorrect: 2, LatencySumMs: 3100, LatencyCount: 11},
		},
	}
}

func TestInsertAndListRows(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	first := testRecord("rec-1", time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC), model.ModeLetters)
	second := testRecord("rec-2", time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC), model.ModeWords)
	for _, rec := range []model.SessionRecord{first, second} {
		if err := store.InsertRecord(ctx, rec); err != nil {
			t.Fatalf("InsertRecord(%s): %v", rec.ID, err)
		}
	}

	rows, err := store.ListRows(ctx, model.ResultsFilter{})
	if err != nil {
		t.Fatalf("ListRows: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(rows))
	}
	if rows[0].RecordID != "rec-1" || rows[0].Slot != model.Player1 {
		t.Errorf("expected rec-1 player 1 first, got %s slot %d", rows[0].RecordID, rows[0].Slot)
	}
	if rows[3].RecordID != "rec-2" || rows[3].Slot != model.Player2 {
		t.Errorf("expected rec-2 player 2 last, got %s slot %d", rows[3].RecordID, rows[3].Slot)
	}
	if !rows[0].EndedAt.Equal(first.EndedAt) {
		t.Errorf("expected ended at %v, got %v", first.EndedAt, rows[0].EndedAt)
	}
	if rows[0].Device != "kbd-left" || rows[0].Correct != 30 || rows[0].DurationMs != 60000 {
		t.Errorf("unexpected first row: %+v", rows[0])
	}
}

func TestListRowsFilters(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	times := []time.Time{
		time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC),
	}
	modes := []model.Mode{model.ModeLetters, model.ModeWords, model.ModeLetters}
	ids := []string{"rec-1", "rec-2", "rec-3"}
	for i := range ids {
		if err := store.InsertRecord(ctx, testRecord(ids[i], times[i], modes[i])); err != nil {
			t.Fatalf("InsertRecord(%s): %v", ids[i], err)
		}
	}

	t.Run("mode", func(t *testing.T) {
		rows, err := store.ListRows(ctx, model.ResultsFilter{Mode: "words"})
		if err != nil {
			t.Fatalf("ListRows: %v", err)
		}
		if len(rows) != 2 {
			t.Fatalf("expected 2 rows, got %d", len(rows))
		}
		for _, r := range rows {
			if r.RecordID != "rec-2" {
				t.Errorf("expected only rec-2, got %s", r.RecordID)
			}
		}
	})

	t.Run("since", func(t *testing.T) {
		since := times[1]
		rows, err := store.ListRows(ctx, model.ResultsFilter{Since: &since})
		if err != nil {
			t.Fatalf("ListRows: %v", err)
		}
		if len(rows) != 4 {
			t.Fatalf("expected 4 rows, got %d", len(rows))
		}
		if rows[0].RecordID != "rec-2" {
			t.Errorf("expected rec-2 first, got %s", rows[0].RecordID)
		}
	})

	t.Run("last counts sessions not rows", func(t *testing.T) {
		rows, err := store.ListRows(ctx, model.ResultsFilter{Last: 2})
		if err != nil {
			t.Fatalf("ListRows: %v", err)
		}
		if len(rows) != 4 {
			t.Fatalf("expected 4 rows across 2 sessions, got %d", len(rows))
		}
		if rows[0].RecordID != "rec-2" || rows[3].RecordID != "rec-3" {
			t.Errorf("expected rec-2 through rec-3, got %s..%s", rows[0].RecordID, rows[3].RecordID)
		}
	})
}

func TestGetRecordRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	want := testRecord("rec-1", time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC), model.ModeWords)
	if err := store.InsertRecord(ctx, want); err != nil {
		t.Fatalf("InsertRecord: %v", err)
	}

	got, ok, err := store.GetRecord(ctx, "rec-1")
	if err != nil {
		t.Fatalf("GetRecord: %v", err)
	}
	if !ok {
		t.Fatal("expected record to exist")
	}
	if got.ID != want.ID || got.Mode != want.Mode || got.Lang != want.Lang || got.Levels != want.Levels {
		t.Errorf("header mismatch: got %+v", got)
	}
	if !got.StartedAt.Equal(want.StartedAt) || !got.EndedAt.Equal(want.EndedAt) {
		t.Errorf("time mismatch: got %v..%v", got.StartedAt, got.EndedAt)
	}
	if len(got.Players) != 2 || got.Players[1] != want.Players[1] {
		t.Errorf("players mismatch: got %+v", got.Players)
	}
	if len(got.Units) != 2 || got.Units[0] != want.Units[0] {
		t.Errorf("units mismatch: got %+v", got.Units)
	}

	_, ok, err = store.GetRecord(ctx, "missing")
	if err != nil {
		t.Fatalf("GetRecord(missing): %v", err)
	}
	if ok {
		t.Error("expected missing record to report not found")
	}
}

func TestRecorderStoresFinalRecord(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	notifier := session.NewNotifier()
	notes := notifier.Subscribe()
	rec := testRecord("rec-1", time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC), model.ModeLetters)

	done := make(chan error, 1)
	go func() {
		done <- NewRecorder(zerolog.Nop(), store).Run(ctx, notes)
	}()

	notifier.Publish(session.Notification{State: session.InProgress})
	notifier.Publish(session.Notification{State: session.Complete, Record: &rec})
	notifier.Close()

	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}
	_, ok, err := store.GetRecord(ctx, "rec-1")
	if err != nil {
		t.Fatalf("GetRecord: %v", err)
	}
	if !ok {
		t.Error("expected recorder to store the final record")
	}
}
