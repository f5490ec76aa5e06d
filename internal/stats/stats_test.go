package stats

import (
	"testing"

	"github.com/verte-zerg/typeduel/internal/model"
)

func TestSessionMetrics(t *testing.T) {
	wpm, cpm, acc := SessionMetrics(100, 10, 60000)
	if wpm != 20 {
		t.Fatalf("expected 20 wpm, got %f", wpm)
	}
	if cpm != 100 {
		t.Fatalf("expected 100 cpm, got %f", cpm)
	}
	if acc < 0.9 || acc > 0.91 {
		t.Fatalf("expected ~0.909 accuracy, got %f", acc)
	}

	wpm, cpm, acc = SessionMetrics(10, 0, 0)
	if wpm != 0 || cpm != 0 || acc != 0 {
		t.Fatalf("expected zeros for zero duration, got %f %f %f", wpm, cpm, acc)
	}
}

func TestWPMByMode(t *testing.T) {
	if got := WPM(model.ModeLetters, 100, 100, 60000); got != 20 {
		t.Fatalf("expected 20 wpm in letters mode, got %f", got)
	}
	if got := WPM(model.ModeWords, 100, 15, 60000); got != 15 {
		t.Fatalf("expected 15 wpm in words mode, got %f", got)
	}
	if got := WPM(model.ModeWords, 100, 15, 0); got != 0 {
		t.Fatalf("expected 0 wpm for zero duration, got %f", got)
	}
}

func TestMovingAverage(t *testing.T) {
	out := MovingAverage([]float64{2, 4, 6, 8}, 2)
	want := []float64{2, 3, 5, 7}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, out)
		}
	}
}

func TestSparkline(t *testing.T) {
	if s := Sparkline(nil); s != "" {
		t.Fatalf("expected empty sparkline, got %q", s)
	}
	s := Sparkline([]float64{0, 5, 10})
	if len(s) != 3 {
		t.Fatalf("expected 3 cells, got %q", s)
	}
	if s[0] != ' ' || s[2] != '@' {
		t.Fatalf("expected full range, got %q", s)
	}
}
