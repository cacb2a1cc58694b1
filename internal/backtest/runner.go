package backtest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"playbook-lab/internal/domain"
	"playbook-lab/internal/idhash"
	"playbook-lab/internal/metrics"
	"playbook-lab/internal/observability"
	"playbook-lab/internal/storage"
)

// ErrDataNotFound is returned when the input bars or indicators are missing
// or cannot be read. No partial result is returned with it.
var ErrDataNotFound = errors.New("data not found")

// Result is the output of one run. Results may be shared through the cache
// and must be treated as read-only.
type Result struct {
	ConfigID string
	ModelID  string
	Config   domain.BacktestConfig
	Targets  []domain.TargetSpec // effective targets, one column group each
	Rows     []domain.DayResult  // most recent first
	Summary  *metrics.Summary
}

// Runner loads input snapshots from the stores and runs the engine.
type Runner struct {
	bars       storage.BarStore
	indicators storage.IndicatorStore
	cache      *ResultCache
	metrics    *observability.Metrics
	now        func() time.Time
}

// Option configures a Runner.
type Option func(*Runner)

// WithCache enables result memoization.
func WithCache(c *ResultCache) Option {
	return func(r *Runner) { r.cache = c }
}

// WithMetrics records run metrics on m.
func WithMetrics(m *observability.Metrics) Option {
	return func(r *Runner) { r.metrics = m }
}

// NewRunner creates a new backtest runner.
func NewRunner(bars storage.BarStore, indicators storage.IndicatorStore, opts ...Option) *Runner {
	r := &Runner{
		bars:       bars,
		indicators: indicators,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes the playbook for cfg over the stored bars and indicators.
// Returns ErrDataNotFound if the bar store is empty or unreadable.
// A config whose filters leave no bars yields a result with no rows.
func (r *Runner) Run(ctx context.Context, cfg domain.BacktestConfig) (*Result, error) {
	started := r.now()

	engine, err := NewEngine(cfg)
	if err != nil {
		r.metrics.RecordRun("invalid", r.now().Sub(started), 0)
		return nil, err
	}

	configID := idhash.ComputeConfigID(cfg)
	if cached, ok := r.cache.Get(configID); ok {
		r.metrics.RecordCache(true)
		return cached, nil
	}
	if r.cache != nil {
		r.metrics.RecordCache(false)
	}

	bars, indicators, err := r.load(ctx, cfg)
	if err != nil {
		r.metrics.RecordRun("error", r.now().Sub(started), 0)
		return nil, err
	}

	days := BuildDays(bars, indicators, cfg)
	rows := Assemble(engine.Simulate(days))

	result := &Result{
		ConfigID: configID,
		ModelID:  engine.ModelID(),
		Config:   cfg,
		Targets:  engine.Targets(),
		Rows:     rows,
		Summary:  metrics.Summarize(rows),
	}

	r.cache.Set(configID, result)
	r.metrics.RecordRun("success", r.now().Sub(started), len(rows))
	return result, nil
}

// load reads the input snapshot for cfg's date range.
func (r *Runner) load(ctx context.Context, cfg domain.BacktestConfig) ([]*domain.Bar, []*domain.DailyIndicators, error) {
	begin := r.now()
	_, _, err := r.bars.GetDayRange(ctx)
	r.metrics.RecordDBQuery("bar_store", "get_day_range", r.now().Sub(begin), ignoreNotFound(err))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: bar table is empty", ErrDataNotFound)
		}
		return nil, nil, fmt.Errorf("%w: read bars: %w", ErrDataNotFound, err)
	}

	begin = r.now()
	bars, err := r.bars.GetByDayRange(ctx, cfg.StartDate, cfg.EndDate)
	r.metrics.RecordDBQuery("bar_store", "get_by_day_range", r.now().Sub(begin), err)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: read bars: %w", ErrDataNotFound, err)
	}

	begin = r.now()
	indicators, err := r.indicators.GetByDayRange(ctx, cfg.StartDate, cfg.EndDate)
	r.metrics.RecordDBQuery("indicator_store", "get_by_day_range", r.now().Sub(begin), err)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: read indicators: %w", ErrDataNotFound, err)
	}

	return bars, indicators, nil
}

func ignoreNotFound(err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	return err
}
