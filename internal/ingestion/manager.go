package ingestion

import (
	"context"
	"fmt"

	"playbook-lab/internal/observability"
	"playbook-lab/internal/storage"
)

// DefaultBatchSize bounds the rows sent in one InsertBulk call.
const DefaultBatchSize = 5000

// Manager orchestrates ingestion from sources to storage.
// It enforces deterministic ordering and uses storage layer for duplicate rejection.
type Manager struct {
	barSource       BarSource
	indicatorSource IndicatorSource

	barStore       storage.BarStore
	indicatorStore storage.IndicatorStore

	metrics   *observability.Metrics
	batchSize int
}

// ManagerOptions contains configuration for creating a Manager.
type ManagerOptions struct {
	BarSource       BarSource
	IndicatorSource IndicatorSource

	BarStore       storage.BarStore
	IndicatorStore storage.IndicatorStore

	Metrics   *observability.Metrics
	BatchSize int // Default: DefaultBatchSize
}

// NewManager creates a new ingestion manager with the provided sources and stores.
func NewManager(opts ManagerOptions) *Manager {
	batch := opts.BatchSize
	if batch <= 0 {
		batch = DefaultBatchSize
	}
	return &Manager{
		barSource:       opts.BarSource,
		indicatorSource: opts.IndicatorSource,
		barStore:        opts.BarStore,
		indicatorStore:  opts.IndicatorStore,
		metrics:         opts.Metrics,
		batchSize:       batch,
	}
}

// IngestBars fetches bars from source and stores them.
// Enforces (day, box) ordering and rejects duplicate boxes before touching storage.
// Returns count of ingested bars and any error.
func (m *Manager) IngestBars(ctx context.Context) (int, error) {
	if m.barSource == nil || m.barStore == nil {
		return 0, nil
	}

	bars, err := m.barSource.Fetch(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch bars: %w", err)
	}
	if len(bars) == 0 {
		return 0, nil
	}

	// Enforce deterministic ordering
	SortBars(bars)
	if err := ValidateBarOrdering(bars); err != nil {
		return 0, err
	}

	n := 0
	for start := 0; start < len(bars); start += m.batchSize {
		end := min(start+m.batchSize, len(bars))
		if err := m.barStore.InsertBulk(ctx, bars[start:end]); err != nil {
			m.metrics.RecordIngested("bars", n)
			return n, fmt.Errorf("insert bars: %w", err)
		}
		n = end
	}
	m.metrics.RecordIngested("bars", n)
	return n, nil
}

// IngestIndicators fetches daily indicators from source and stores them.
func (m *Manager) IngestIndicators(ctx context.Context) (int, error) {
	if m.indicatorSource == nil || m.indicatorStore == nil {
		return 0, nil
	}

	inds, err := m.indicatorSource.Fetch(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch indicators: %w", err)
	}
	if len(inds) == 0 {
		return 0, nil
	}

	SortIndicators(inds)
	if err := ValidateIndicatorOrdering(inds); err != nil {
		return 0, err
	}

	n := 0
	for start := 0; start < len(inds); start += m.batchSize {
		end := min(start+m.batchSize, len(inds))
		if err := m.indicatorStore.InsertBulk(ctx, inds[start:end]); err != nil {
			m.metrics.RecordIngested("daily_indicators", n)
			return n, fmt.Errorf("insert indicators: %w", err)
		}
		n = end
	}
	m.metrics.RecordIngested("daily_indicators", n)
	return n, nil
}

// Stats reports the rows stored by IngestAll.
type Stats struct {
	Bars       int
	Indicators int
}

// IngestAll loads bars then indicators.
func (m *Manager) IngestAll(ctx context.Context) (Stats, error) {
	var stats Stats
	var err error
	if stats.Bars, err = m.IngestBars(ctx); err != nil {
		return stats, err
	}
	if stats.Indicators, err = m.IngestIndicators(ctx); err != nil {
		return stats, err
	}
	return stats, nil
}
