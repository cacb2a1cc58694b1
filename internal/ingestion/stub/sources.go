package stub

import (
	"context"

	"playbook-lab/internal/domain"
)

// StubBarSource returns fixed in-memory bars for testing.
// Bars can be intentionally unordered to test sorting.
// Implements ingestion.BarSource interface.
type StubBarSource struct {
	bars []*domain.Bar
	err  error
}

// NewStubBarSource creates a new stub bar source with the given bars.
func NewStubBarSource(bars []*domain.Bar) *StubBarSource {
	return &StubBarSource{bars: bars}
}

// NewFailingBarSource creates a stub bar source whose Fetch returns err.
func NewFailingBarSource(err error) *StubBarSource {
	return &StubBarSource{err: err}
}

// Fetch returns copies of the configured bars to prevent mutation.
func (s *StubBarSource) Fetch(_ context.Context) ([]*domain.Bar, error) {
	if s.err != nil {
		return nil, s.err
	}
	result := make([]*domain.Bar, len(s.bars))
	for i, b := range s.bars {
		copy := *b
		result[i] = &copy
	}
	return result, nil
}

// StubIndicatorSource returns fixed in-memory indicators for testing.
// Implements ingestion.IndicatorSource interface.
type StubIndicatorSource struct {
	inds []*domain.DailyIndicators
}

// NewStubIndicatorSource creates a new stub indicator source.
func NewStubIndicatorSource(inds []*domain.DailyIndicators) *StubIndicatorSource {
	return &StubIndicatorSource{inds: inds}
}

// Fetch returns copies of the configured indicators.
func (s *StubIndicatorSource) Fetch(_ context.Context) ([]*domain.DailyIndicators, error) {
	result := make([]*domain.DailyIndicators, len(s.inds))
	for i, ind := range s.inds {
		copy := *ind
		result[i] = &copy
	}
	return result, nil
}
