package lookup

import (
	"errors"

	"playbook-lab/internal/domain"
)

// ErrNoBars is returned when a lookup needs at least one bar.
var ErrNoBars = errors.New("no bars available")

// FirstIndex returns the index of the first bar satisfying match, or -1.
// bars must be ordered by box.
func FirstIndex(bars []*domain.Bar, match func(*domain.Bar) bool) int {
	for i, b := range bars {
		if match(b) {
			return i
		}
	}
	return -1
}

// FirstBox returns the box of the first bar satisfying match, or 0 if none does.
func FirstBox(bars []*domain.Bar, match func(*domain.Bar) bool) int {
	if i := FirstIndex(bars, match); i >= 0 {
		return bars[i].Box
	}
	return 0
}

// After returns the bars with box strictly greater than box.
// The result shares the backing array with bars.
func After(bars []*domain.Bar, box int) []*domain.Bar {
	for i, b := range bars {
		if b.Box > box {
			return bars[i:]
		}
	}
	return nil
}

// ByBox returns the bar with the given box.
func ByBox(bars []*domain.Bar, box int) (*domain.Bar, bool) {
	for _, b := range bars {
		if b.Box == box {
			return b, true
		}
	}
	return nil, false
}

// Last returns the day's last bar.
// Returns ErrNoBars if bars is empty.
func Last(bars []*domain.Bar) (*domain.Bar, error) {
	if len(bars) == 0 {
		return nil, ErrNoBars
	}
	return bars[len(bars)-1], nil
}
