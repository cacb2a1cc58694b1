package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"playbook-lab/internal/domain"
	"playbook-lab/internal/storage"
)

// IndicatorStore implements storage.IndicatorStore using PostgreSQL.
type IndicatorStore struct {
	pool *Pool
}

// NewIndicatorStore creates a new IndicatorStore.
func NewIndicatorStore(pool *Pool) *IndicatorStore {
	return &IndicatorStore{pool: pool}
}

// Compile-time interface check.
var _ storage.IndicatorStore = (*IndicatorStore)(nil)

const insertIndicatorQuery = `
	INSERT INTO daily_indicators (day, vah, val, unjust_min, unjust_max)
	VALUES ($1, $2, $3, $4, $5)
`

// InsertBulk adds multiple records atomically. Fails entire batch on any duplicate.
func (s *IndicatorStore) InsertBulk(ctx context.Context, indicators []*domain.DailyIndicators) error {
	if len(indicators) == 0 {
		return nil
	}
	for _, ind := range indicators {
		if ind == nil || ind.Day.IsZero() {
			return storage.ErrInvalidInput
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, ind := range indicators {
		_, err := tx.Exec(ctx, insertIndicatorQuery,
			dayBound(ind.Day),
			nullableLevel(ind.VAH), nullableLevel(ind.VAL),
			nullableLevel(ind.UnjustMin), nullableLevel(ind.UnjustMax),
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert daily indicators in bulk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// GetByDay retrieves the indicators of a day. Returns ErrNotFound if not exists.
func (s *IndicatorStore) GetByDay(ctx context.Context, day time.Time) (*domain.DailyIndicators, error) {
	query := `
		SELECT day, vah, val, unjust_min, unjust_max
		FROM daily_indicators
		WHERE day = $1
	`

	row := s.pool.QueryRow(ctx, query, dayBound(day))
	ind, err := scanIndicators(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get daily indicators by day: %w", err)
	}
	return ind, nil
}

// GetByDayRange retrieves indicators within [start, end] (inclusive), ordered by day.
func (s *IndicatorStore) GetByDayRange(ctx context.Context, start, end time.Time) ([]*domain.DailyIndicators, error) {
	query := `
		SELECT day, vah, val, unjust_min, unjust_max
		FROM daily_indicators
		WHERE ($1::date IS NULL OR day >= $1::date)
		  AND ($2::date IS NULL OR day <= $2::date)
		ORDER BY day ASC
	`

	rows, err := s.pool.Query(ctx, query, dayBound(start), dayBound(end))
	if err != nil {
		return nil, fmt.Errorf("get daily indicators by day range: %w", err)
	}
	defer rows.Close()

	var result []*domain.DailyIndicators
	for rows.Next() {
		ind, err := scanIndicators(rows)
		if err != nil {
			return nil, fmt.Errorf("scan daily indicators row: %w", err)
		}
		result = append(result, ind)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate daily indicators rows: %w", err)
	}

	return result, nil
}

// scanIndicators scans a single row, mapping NULL levels to NaN.
func scanIndicators(row pgx.Row) (*domain.DailyIndicators, error) {
	var day time.Time
	var vah, val, unjustMin, unjustMax *float64
	if err := row.Scan(&day, &vah, &val, &unjustMin, &unjustMax); err != nil {
		return nil, err
	}

	return &domain.DailyIndicators{
		Day:       domain.TruncateDay(day),
		VAH:       levelOrNaN(vah),
		VAL:       levelOrNaN(val),
		UnjustMin: levelOrNaN(unjustMin),
		UnjustMax: levelOrNaN(unjustMax),
	}, nil
}
