package storage

import (
	"context"
	"time"

	"playbook-lab/internal/domain"
)

// BarStore provides access to bars storage.
// Bars are input data: loaded once, read by every backtest run.
type BarStore interface {
	// InsertBulk adds multiple bars. Fails entire batch on duplicate (day, box).
	InsertBulk(ctx context.Context, bars []*domain.Bar) error

	// GetByDayRange retrieves bars for days within [start, end] (inclusive),
	// ordered by (day, box) ASC. Zero start or end leaves that side unbounded.
	GetByDayRange(ctx context.Context, start, end time.Time) ([]*domain.Bar, error)

	// GetDayRange returns the first and last trading day stored.
	// Returns ErrNotFound if the store is empty.
	GetDayRange(ctx context.Context) (first, last time.Time, err error)
}

// IndicatorStore provides access to daily_indicators storage.
type IndicatorStore interface {
	// InsertBulk adds multiple records. Fails entire batch on duplicate day.
	InsertBulk(ctx context.Context, indicators []*domain.DailyIndicators) error

	// GetByDay retrieves the indicators of a day. Returns ErrNotFound if not exists.
	GetByDay(ctx context.Context, day time.Time) (*domain.DailyIndicators, error)

	// GetByDayRange retrieves indicators for days within [start, end] (inclusive),
	// ordered by day ASC. Zero start or end leaves that side unbounded.
	GetByDayRange(ctx context.Context, start, end time.Time) ([]*domain.DailyIndicators, error)
}
