package stats

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/verte-zerg/typeduel/internal/model"
)

// Winner picks the leading player of a finished session: most units done,
// then the shorter active duration, then the better accuracy. The second
// return is false for a single-player session or a dead tie.
func Winner(players []model.PlayerResult) (model.Slot, bool) {
	if len(players) < 2 {
		return model.SlotNone, false
	}
	best := players[0]
	tied := false
	for _, p := range players[1:] {
		switch {
		case p.UnitsDone != best.UnitsDone:
			if p.UnitsDone > best.UnitsDone {
				best = p
				tied = false
			}
		case p.DurationMs != best.DurationMs:
			if p.DurationMs < best.DurationMs {
				best = p
				tied = false
			}
		default:
			_, _, accP := SessionMetrics(p.Correct, p.Incorrect, p.DurationMs)
			_, _, accB := SessionMetrics(best.Correct, best.Incorrect, best.DurationMs)
			if accP > accB {
				best = p
				tied = false
			} else if accP == accB {
				tied = true
			}
		}
	}
	if tied {
		return model.SlotNone, false
	}
	return best.Slot, true
}

// RenderSessionSummary prints the end-of-session report for one record.
func RenderSessionSummary(w io.Writer, rec model.SessionRecord) error {
	if _, err := fmt.Fprintf(w, "Session %s\n", rec.ID); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Mode: %s  Lang: %s  Levels: %d  Played: %s\n",
		rec.Mode, rec.Lang, rec.Levels, rec.StartedAt.Format("2006-01-02 15:04")); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}

	headers := []string{"Player", "Keyboard", "WPM", "Accuracy", "Units", "Duration"}
	rows := make([][]string, 0, len(rec.Players))
	for _, p := range rec.Players {
		wpm := WPM(rec.Mode, p.Correct, p.UnitsDone, p.DurationMs)
		_, _, acc := SessionMetrics(p.Correct, p.Incorrect, p.DurationMs)
		rows = append(rows, []string{
			p.Slot.String(),
			p.Device,
			fmt.Sprintf("%.1f", wpm),
			fmt.Sprintf("%.1f%%", acc*100),
			fmt.Sprintf("%d", p.UnitsDone),
			fmtDuration(p.DurationMs),
		})
	}
	rightAlign := map[int]bool{2: true, 3: true, 4: true, 5: true}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if slot, ok := Winner(rec.Players); ok {
		if _, err := fmt.Fprintf(w, "\nWinner: %s\n", slot); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	if err := RenderUnitTable(w, rec.Units, 10); err != nil {
		return err
	}
	if tops := TopUnitsByFrequency(rec.Units, 5); len(tops) > 0 {
		if _, err := fmt.Fprintf(w, "\nMost practiced: %s\n", strings.Join(tops, " ")); err != nil {
			return err
		}
	}
	return nil
}

// RenderUnitTable prints the weakest units across all players, at most top
// rows.
func RenderUnitTable(w io.Writer, units []model.UnitResult, top int) error {
	weakest := WeakestUnits(units, top)
	if len(weakest) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "Weakest Units"); err != nil {
		return err
	}
	headers := []string{"Unit", "Accuracy", "Avg Latency (ms)", "Correct", "Incorrect"}
	rows := make([][]string, 0, len(weakest))
	for _, u := range weakest {
		label := u.Unit
		if label == " " {
			label = "<space>"
		}
		rows = append(rows, []string{
			label,
			fmt.Sprintf("%.1f%%", u.Accuracy*100),
			fmt.Sprintf("%.1f", u.LatencyMs),
			fmt.Sprintf("%d", u.Correct),
			fmt.Sprintf("%d", u.Incorrect),
		})
	}
	rightAlign := map[int]bool{1: true, 2: true, 3: true, 4: true}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderHistory prints one row per player per recorded session, oldest
// first as delivered by the store, so the latest session lands next to
// the shell prompt.
func RenderHistory(w io.Writer, rows []model.ResultRow) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No sessions recorded.")
		return err
	}
	headers := []string{"Ended", "ID", "Mode", "Lang", "Player", "WPM", "Accuracy", "Units"}
	table := make([][]string, 0, len(rows))
	for _, r := range rows {
		wpm := WPM(r.Mode, r.Correct, r.UnitsDone, r.DurationMs)
		_, _, acc := SessionMetrics(r.Correct, r.Incorrect, r.DurationMs)
		table = append(table, []string{
			r.EndedAt.Format("2006-01-02 15:04"),
			shortID(r.RecordID),
			string(r.Mode),
			r.Lang,
			r.Slot.String(),
			fmt.Sprintf("%.1f", wpm),
			fmt.Sprintf("%.1f%%", acc*100),
			fmt.Sprintf("%d", r.UnitsDone),
		})
	}
	rightAlign := map[int]bool{5: true, 6: true, 7: true}
	for _, line := range formatTable(headers, table, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func fmtDuration(ms int64) string {
	d := time.Duration(ms) * time.Millisecond
	return d.Truncate(100 * time.Millisecond).String()
}
