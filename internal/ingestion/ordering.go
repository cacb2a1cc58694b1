package ingestion

import (
	"errors"
	"fmt"
	"sort"

	"playbook-lab/internal/domain"
)

// ErrInvalidOrdering is returned when records are not strictly ordered.
var ErrInvalidOrdering = errors.New("records are not in deterministic order")

// SortBars orders bars by (day ASC, box ASC).
func SortBars(bars []*domain.Bar) {
	sort.SliceStable(bars, func(i, j int) bool {
		return compareBars(bars[i], bars[j]) < 0
	})
}

// SortIndicators orders indicators by day ASC.
func SortIndicators(inds []*domain.DailyIndicators) {
	sort.SliceStable(inds, func(i, j int) bool {
		return inds[i].Day.Before(inds[j].Day)
	})
}

// ValidateBarOrdering checks that bars are strictly ordered by (day, box),
// which also rules out duplicate boxes within a day.
func ValidateBarOrdering(bars []*domain.Bar) error {
	for i := 1; i < len(bars); i++ {
		if compareBars(bars[i-1], bars[i]) >= 0 {
			return fmt.Errorf("%w: %s box %d", ErrInvalidOrdering,
				bars[i].Day.Format("2006-01-02"), bars[i].Box)
		}
	}
	return nil
}

// ValidateIndicatorOrdering checks that indicator days are strictly increasing.
func ValidateIndicatorOrdering(inds []*domain.DailyIndicators) error {
	for i := 1; i < len(inds); i++ {
		if !inds[i-1].Day.Before(inds[i].Day) {
			return fmt.Errorf("%w: %s", ErrInvalidOrdering, inds[i].Day.Format("2006-01-02"))
		}
	}
	return nil
}

// compareBars returns:
//   - negative if a < b
//   - zero if a == b
//   - positive if a > b
//
// Order: (day ASC, box ASC)
func compareBars(a, b *domain.Bar) int {
	if !a.Day.Equal(b.Day) {
		if a.Day.Before(b.Day) {
			return -1
		}
		return 1
	}
	return a.Box - b.Box
}
