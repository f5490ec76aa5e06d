package level

import (
	"testing"

	"github.com/verte-zerg/typeduel/internal/model"
)

func twoLevels() []Level {
	return []Level{
		{Name: "one", Units: []string{"a", "b"}},
		{Name: "two", Units: []string{"c"}},
	}
}

func TestNewRejectsEmptyInput(t *testing.T) {
	if _, err := New(nil, 1); err == nil {
		t.Fatal("expected error for empty level set")
	}
	levels := []Level{{Name: "empty"}}
	if _, err := New(levels, 1); err == nil {
		t.Fatal("expected error for level without units")
	}
}

func TestAdvanceWalksLevels(t *testing.T) {
	s, err := New(twoLevels(), 1)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if s.Total() != 3 {
		t.Fatalf("expected 3 units total, got %d", s.Total())
	}

	unit, ok := s.Current(model.Player1)
	if !ok || unit != "a" {
		t.Fatalf("expected first unit a, got %q %v", unit, ok)
	}
	if kind := s.Advance(model.Player1); kind != NextUnit {
		t.Fatalf("expected NextUnit, got %v", kind)
	}
	unit, _ = s.Current(model.Player1)
	if unit != "b" {
		t.Fatalf("expected unit b, got %q", unit)
	}
	if kind := s.Advance(model.Player1); kind != LevelComplete {
		t.Fatalf("expected LevelComplete, got %v", kind)
	}
	unit, _ = s.Current(model.Player1)
	if unit != "c" {
		t.Fatalf("expected unit c, got %q", unit)
	}
	if kind := s.Advance(model.Player1); kind != AllComplete {
		t.Fatalf("expected AllComplete, got %v", kind)
	}
	if _, ok := s.Current(model.Player1); ok {
		t.Fatal("expected no current unit after completion")
	}
	if !s.Done(model.Player1) {
		t.Fatal("expected player done")
	}
}

func TestAdvanceAfterCompleteStaysComplete(t *testing.T) {
	s, err := New([]Level{{Name: "one", Units: []string{"a"}}}, 1)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if kind := s.Advance(model.Player1); kind != AllComplete {
		t.Fatalf("expected AllComplete, got %v", kind)
	}
	for i := 0; i < 3; i++ {
		if kind := s.Advance(model.Player1); kind != AllComplete {
			t.Fatalf("expected AllComplete on repeat advance, got %v", kind)
		}
	}
	if s.Completed(model.Player1) != 1 {
		t.Fatalf("expected 1 completed unit, got %d", s.Completed(model.Player1))
	}
}

func TestCursorsAreIndependent(t *testing.T) {
	s, err := New(twoLevels(), 2)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	s.Advance(model.Player1)
	s.Advance(model.Player1)

	u1, _ := s.Current(model.Player1)
	u2, _ := s.Current(model.Player2)
	if u1 != "c" {
		t.Fatalf("expected player 1 at c, got %q", u1)
	}
	if u2 != "a" {
		t.Fatalf("expected player 2 still at a, got %q", u2)
	}

	l1, _ := s.Position(model.Player1)
	l2, _ := s.Position(model.Player2)
	if l1 != 1 || l2 != 0 {
		t.Fatalf("expected levels 1 and 0, got %d and %d", l1, l2)
	}
	if s.Completed(model.Player1) != 2 || s.Completed(model.Player2) != 0 {
		t.Fatalf("unexpected completed counts: %d, %d",
			s.Completed(model.Player1), s.Completed(model.Player2))
	}

	if s.AllDone() {
		t.Fatal("expected session not done")
	}
	s.Advance(model.Player1)
	if !s.Done(model.Player1) || s.AllDone() {
		t.Fatal("expected only player 1 done")
	}
	for i := 0; i < 3; i++ {
		s.Advance(model.Player2)
	}
	if !s.AllDone() {
		t.Fatal("expected everyone done")
	}
}

func TestUnknownSlotIsInert(t *testing.T) {
	s, err := New(twoLevels(), 1)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, ok := s.Current(model.Player2); ok {
		t.Fatal("expected no unit for unbound slot")
	}
	if kind := s.Advance(model.Player2); kind != AllComplete {
		t.Fatalf("expected inert advance, got %v", kind)
	}
}
