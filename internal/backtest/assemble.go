package backtest

import (
	"sort"

	"playbook-lab/internal/domain"
)

// Assemble sets the intra-month running total of every row and returns
// the table in display order, most recent first.
// The running total is accumulated in ascending (date, time) order and
// restarts at each calendar month. The input slice is not modified.
func Assemble(rows []domain.DayResult) []domain.DayResult {
	out := make([]domain.DayResult, len(rows))
	copy(out, rows)

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp().Before(out[j].Timestamp())
	})

	var (
		running    float64
		curY, curM int
	)
	for i := range out {
		y, m, _ := out[i].Date.Date()
		if i == 0 || y != curY || int(m) != curM {
			running = 0
			curY, curM = y, int(m)
		}
		running += out[i].Total
		out[i].Running = running
	}

	// Display order
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}
