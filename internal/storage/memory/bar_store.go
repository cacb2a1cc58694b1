package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"playbook-lab/internal/domain"
	"playbook-lab/internal/storage"
)

// BarStore is an in-memory implementation of storage.BarStore.
type BarStore struct {
	mu   sync.RWMutex
	data map[barKey]*domain.Bar
}

type barKey struct {
	day int64 // unix seconds of the trading day
	box int
}

// NewBarStore creates a new in-memory bar store.
func NewBarStore() *BarStore {
	return &BarStore{
		data: make(map[barKey]*domain.Bar),
	}
}

func keyOf(b *domain.Bar) barKey {
	return barKey{day: domain.TruncateDay(b.Day).Unix(), box: b.Box}
}

// InsertBulk adds multiple bars. Fails entire batch on duplicate.
func (s *BarStore) InsertBulk(_ context.Context, bars []*domain.Bar) error {
	if len(bars) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Track keys in this batch to detect intra-batch duplicates
	batchKeys := make(map[barKey]struct{}, len(bars))

	// First pass: validate and check duplicates (existing + intra-batch)
	for _, b := range bars {
		if b == nil || b.Day.IsZero() || b.Box < 1 {
			return storage.ErrInvalidInput
		}
		key := keyOf(b)

		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	// Second pass: insert all
	for _, b := range bars {
		barCopy := *b
		barCopy.Day = domain.TruncateDay(b.Day)
		s.data[keyOf(b)] = &barCopy
	}

	return nil
}

// GetByDayRange retrieves bars for days within [start, end] (inclusive), ordered by (day, box).
func (s *BarStore) GetByDayRange(_ context.Context, start, end time.Time) ([]*domain.Bar, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Bar
	for _, b := range s.data {
		if !start.IsZero() && b.Day.Before(domain.TruncateDay(start)) {
			continue
		}
		if !end.IsZero() && b.Day.After(domain.TruncateDay(end)) {
			continue
		}
		barCopy := *b
		result = append(result, &barCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].Day.Equal(result[j].Day) {
			return result[i].Day.Before(result[j].Day)
		}
		return result[i].Box < result[j].Box
	})

	return result, nil
}

// GetDayRange returns the first and last trading day stored.
func (s *BarStore) GetDayRange(_ context.Context) (first, last time.Time, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.data) == 0 {
		return time.Time{}, time.Time{}, storage.ErrNotFound
	}

	for _, b := range s.data {
		if first.IsZero() || b.Day.Before(first) {
			first = b.Day
		}
		if last.IsZero() || b.Day.After(last) {
			last = b.Day
		}
	}

	return first, last, nil
}

var _ storage.BarStore = (*BarStore)(nil)
