package clickhouse

import (
	"context"
	"fmt"
	"strings"
	"time"

	"playbook-lab/internal/domain"
	"playbook-lab/internal/storage"
)

// BarStore implements storage.BarStore using ClickHouse.
type BarStore struct {
	conn *Conn
}

// NewBarStore creates a new BarStore.
func NewBarStore(conn *Conn) *BarStore {
	return &BarStore{conn: conn}
}

// Compile-time interface check.
var _ storage.BarStore = (*BarStore)(nil)

// InsertBulk adds multiple bars. Fails entire batch on duplicate (day, box).
// MergeTree does not enforce uniqueness, so duplicates are checked before the batch is sent.
func (s *BarStore) InsertBulk(ctx context.Context, bars []*domain.Bar) error {
	if len(bars) == 0 {
		return nil
	}

	type key struct {
		day int64
		box int
	}
	seen := make(map[key]struct{}, len(bars))
	for _, b := range bars {
		if b == nil || b.Day.IsZero() || b.Box < 1 {
			return storage.ErrInvalidInput
		}
		k := key{domain.TruncateDay(b.Day).Unix(), b.Box}
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}

	for _, b := range bars {
		exists, err := s.exists(ctx, domain.TruncateDay(b.Day), b.Box)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO bars (
			day, box, clock_ms, open, high, low, close
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, b := range bars {
		err = batch.Append(
			domain.TruncateDay(b.Day), uint32(b.Box), uint32(b.Clock.Milliseconds()),
			b.Open, b.High, b.Low, b.Close,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByDayRange retrieves bars for days within [start, end] (inclusive), ordered by (day, box).
func (s *BarStore) GetByDayRange(ctx context.Context, start, end time.Time) ([]*domain.Bar, error) {
	var conds []string
	var args []interface{}
	if !start.IsZero() {
		conds = append(conds, "day >= ?")
		args = append(args, domain.TruncateDay(start))
	}
	if !end.IsZero() {
		conds = append(conds, "day <= ?")
		args = append(args, domain.TruncateDay(end))
	}

	query := `
		SELECT day, box, clock_ms, open, high, low, close
		FROM bars
	`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY day ASC, box ASC"

	rows, err := s.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query by day range: %w", err)
	}
	defer rows.Close()

	return scanBars(rows)
}

// GetDayRange returns the first and last trading day stored.
func (s *BarStore) GetDayRange(ctx context.Context) (first, last time.Time, err error) {
	var count uint64
	row := s.conn.QueryRow(ctx, `SELECT min(day), max(day), count() FROM bars`)
	if err := row.Scan(&first, &last, &count); err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("query day range: %w", err)
	}
	if count == 0 {
		return time.Time{}, time.Time{}, storage.ErrNotFound
	}
	return domain.TruncateDay(first), domain.TruncateDay(last), nil
}

// exists checks if a bar with the given key exists.
func (s *BarStore) exists(ctx context.Context, day time.Time, box int) (bool, error) {
	query := `
		SELECT count(*) FROM bars
		WHERE day = ? AND box = ?
	`

	var count uint64
	err := s.conn.QueryRow(ctx, query, day, uint32(box)).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// scanBars scans multiple rows.
func scanBars(rows chRows) ([]*domain.Bar, error) {
	var bars []*domain.Bar

	for rows.Next() {
		var b domain.Bar
		var box, clockMs uint32

		err := rows.Scan(
			&b.Day, &box, &clockMs,
			&b.Open, &b.High, &b.Low, &b.Close,
		)
		if err != nil {
			return nil, fmt.Errorf("scan bar row: %w", err)
		}

		b.Day = domain.TruncateDay(b.Day)
		b.Box = int(box)
		b.Clock = time.Duration(clockMs) * time.Millisecond
		bars = append(bars, &b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bar rows: %w", err)
	}

	return bars, nil
}
