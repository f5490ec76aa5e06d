package stats

import (
	"sort"

	"github.com/verte-zerg/typeduel/internal/model"
)

// TopUnitsByFrequency returns the n most typed units across all players.
func TopUnitsByFrequency(units []model.UnitResult, n int) []string {
	if n <= 0 || len(units) == 0 {
		return nil
	}
	totals := make(map[string]int)
	for _, u := range units {
		totals[u.Unit] += u.Correct + u.Incorrect
	}
	type item struct {
		unit  string
		total int
	}
	items := make([]item, 0, len(totals))
	for unit, total := range totals {
		items = append(items, item{unit: unit, total: total})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].total == items[j].total {
			return items[i].unit < items[j].unit
		}
		return items[i].total > items[j].total
	})
	if n > len(items) {
		n = len(items)
	}
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, items[i].unit)
	}
	return out
}
