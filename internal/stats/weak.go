package stats

import (
	"sort"

	"github.com/verte-zerg/typeduel/internal/model"
)

// UnitAccuracy is one prompt unit with its merged accuracy and latency.
type UnitAccuracy struct {
	Unit      string
	Correct   int
	Incorrect int
	Accuracy  float64
	LatencyMs float64
}

// WeakestUnits merges the per-player aggregates by unit and returns the
// lowest-accuracy units first, at most top of them.
func WeakestUnits(units []model.UnitResult, top int) []UnitAccuracy {
	if len(units) == 0 {
		return nil
	}
	merged := make(map[string]*UnitAccuracy)
	latSum := make(map[string]int64)
	latCount := make(map[string]int64)
	for _, u := range units {
		m, ok := merged[u.Unit]
		if !ok {
			m = &UnitAccuracy{Unit: u.Unit}
			merged[u.Unit] = m
		}
		m.Correct += u.Correct
		m.Incorrect += u.Incorrect
		latSum[u.Unit] += u.LatencySumMs
		latCount[u.Unit] += u.LatencyCount
	}

	out := make([]UnitAccuracy, 0, len(merged))
	for unit, m := range merged {
		total := m.Correct + m.Incorrect
		if total > 0 {
			m.Accuracy = float64(m.Correct) / float64(total)
		} else {
			m.Accuracy = 1.0
		}
		if latCount[unit] > 0 {
			m.LatencyMs = float64(latSum[unit]) / float64(latCount[unit])
		}
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Accuracy == out[j].Accuracy {
			return out[i].Unit < out[j].Unit
		}
		return out[i].Accuracy < out[j].Accuracy
	})
	if top > 0 && top < len(out) {
		out = out[:top]
	}
	return out
}
