package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"playbook-lab/internal/domain"
	"playbook-lab/internal/storage"
)

// IndicatorStore is an in-memory implementation of storage.IndicatorStore.
type IndicatorStore struct {
	mu   sync.RWMutex
	data map[int64]*domain.DailyIndicators // keyed by unix seconds of the day
}

// NewIndicatorStore creates a new in-memory indicator store.
func NewIndicatorStore() *IndicatorStore {
	return &IndicatorStore{
		data: make(map[int64]*domain.DailyIndicators),
	}
}

// InsertBulk adds multiple records atomically. Fails entire batch on any duplicate.
func (s *IndicatorStore) InsertBulk(_ context.Context, indicators []*domain.DailyIndicators) error {
	if len(indicators) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[int64]struct{}, len(indicators))
	for _, ind := range indicators {
		if ind == nil || ind.Day.IsZero() {
			return storage.ErrInvalidInput
		}
		key := domain.TruncateDay(ind.Day).Unix()
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, ind := range indicators {
		indCopy := *ind
		indCopy.Day = domain.TruncateDay(ind.Day)
		s.data[indCopy.Day.Unix()] = &indCopy
	}

	return nil
}

// GetByDay retrieves the indicators of a day.
func (s *IndicatorStore) GetByDay(_ context.Context, day time.Time) (*domain.DailyIndicators, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ind, ok := s.data[domain.TruncateDay(day).Unix()]
	if !ok {
		return nil, storage.ErrNotFound
	}
	indCopy := *ind
	return &indCopy, nil
}

// GetByDayRange retrieves indicators within [start, end] (inclusive), ordered by day.
func (s *IndicatorStore) GetByDayRange(_ context.Context, start, end time.Time) ([]*domain.DailyIndicators, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.DailyIndicators
	for _, ind := range s.data {
		if !start.IsZero() && ind.Day.Before(domain.TruncateDay(start)) {
			continue
		}
		if !end.IsZero() && ind.Day.After(domain.TruncateDay(end)) {
			continue
		}
		indCopy := *ind
		result = append(result, &indCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Day.Before(result[j].Day)
	})

	return result, nil
}

var _ storage.IndicatorStore = (*IndicatorStore)(nil)
