package stats

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/verte-zerg/typeduel/internal/model"
)

func TestPlotSeries(t *testing.T) {
	var buf bytes.Buffer
	err := PlotSeries(&buf, "Test Plot", []Series{
		{Name: "A", Values: []float64{10, 20, 30, 20, 10}},
		{Name: "B", Values: []float64{10, 10, 20, 30, 30}},
	}, 5, 4)
	if err != nil {
		t.Fatalf("PlotSeries failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Test Plot") {
		t.Fatalf("expected title in output")
	}
	if !strings.Contains(out, "Legend:") {
		t.Fatalf("expected legend in output")
	}
	if !strings.Contains(out, "30") || !strings.Contains(out, "10") {
		t.Fatalf("expected shared-scale axis labels in output:\n%s", out)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	expectedMin := 1 + 4 + 1
	if len(lines) < expectedMin {
		t.Fatalf("expected at least %d lines of output, got %d", expectedMin, len(lines))
	}
}

func TestProgressSeriesGroupsByDevice(t *testing.T) {
	rows := []model.ResultRow{
		{Device: "kbd-left", Mode: model.ModeLetters, Correct: 100, UnitsDone: 100, DurationMs: 60000},
		{Device: "kbd-right", Mode: model.ModeLetters, Correct: 150, UnitsDone: 150, DurationMs: 60000},
		{Device: "kbd-left", Mode: model.ModeLetters, Correct: 125, UnitsDone: 125, DurationMs: 60000},
	}
	series := ProgressSeries(rows)
	if len(series) != 2 {
		t.Fatalf("expected 2 series, got %d", len(series))
	}
	if series[0].Name != "kbd-left" || series[1].Name != "kbd-right" {
		t.Fatalf("expected first-seen device order, got %q then %q", series[0].Name, series[1].Name)
	}
	if len(series[0].Values) != 2 || series[0].Values[0] != 20 || series[0].Values[1] != 25 {
		t.Fatalf("unexpected kbd-left values: %v", series[0].Values)
	}
	if len(series[1].Values) != 1 || series[1].Values[0] != 30 {
		t.Fatalf("unexpected kbd-right values: %v", series[1].Values)
	}
}

func TestRenderProgress(t *testing.T) {
	rows := []model.ResultRow{
		{Device: "kbd-left", Mode: model.ModeLetters, Correct: 100, UnitsDone: 100, DurationMs: 60000},
		{Device: "kbd-right", Mode: model.ModeLetters, Correct: 150, UnitsDone: 150, DurationMs: 60000},
	}
	var buf bytes.Buffer
	if err := RenderProgress(&buf, rows, 20, 4); err != nil {
		t.Fatalf("RenderProgress failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "WPM over sessions") {
		t.Fatalf("expected title in output")
	}
	if !strings.Contains(out, "kbd-left") || !strings.Contains(out, "kbd-right") {
		t.Fatalf("expected both keyboards in legend:\n%s", out)
	}

	buf.Reset()
	if err := RenderProgress(&buf, nil, 20, 4); err != nil {
		t.Fatalf("RenderProgress on empty history failed: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no output for empty history, got %q", buf.String())
	}
}

func TestPlotWidthFor(t *testing.T) {
	axisWidth := axisLabelBudget + utf8.RuneCountInString(axisSeparator)
	total := 80
	expected := total - axisWidth
	if expected < minPlotWidth {
		expected = minPlotWidth
	}
	if got := PlotWidthFor(total); got != expected {
		t.Fatalf("expected width %d, got %d", expected, got)
	}
	if got := PlotWidthFor(0); got != minPlotWidth {
		t.Fatalf("expected min width %d, got %d", minPlotWidth, got)
	}
}
