package clickhouse

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"playbook-lab/internal/domain"
	"playbook-lab/internal/storage"
)

func tradingDay(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestBarStore_InsertBulkAndGet(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewBarStore(conn)
	ctx := context.Background()

	bars := []*domain.Bar{
		{Day: tradingDay(2024, 3, 4), Box: 2, Clock: 9*time.Hour + 5*time.Minute, Open: 128010, High: 128100, Low: 127950, Close: 128050},
		{Day: tradingDay(2024, 3, 4), Box: 1, Clock: 9 * time.Hour, Open: 128000, High: 128040, Low: 127900, Close: 128010},
		{Day: tradingDay(2024, 3, 1), Box: 1, Clock: 9 * time.Hour, Open: 127000, High: 127100, Low: 126900, Close: 127050},
	}

	err := store.InsertBulk(ctx, bars)
	require.NoError(t, err)

	result, err := store.GetByDayRange(ctx, time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, result, 3)

	assert.True(t, result[0].Day.Equal(tradingDay(2024, 3, 1)))
	assert.Equal(t, 1, result[1].Box)
	assert.Equal(t, 2, result[2].Box)
	assert.Equal(t, 9*time.Hour+5*time.Minute, result[2].Clock)
	assert.Equal(t, 128100.0, result[2].High)
}

func TestBarStore_DuplicateKey(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewBarStore(conn)
	ctx := context.Background()

	bars := []*domain.Bar{{Day: tradingDay(2024, 3, 4), Box: 1, Open: 100}}
	require.NoError(t, store.InsertBulk(ctx, bars))

	err := store.InsertBulk(ctx, bars)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestBarStore_IntraBatchDuplicate(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewBarStore(conn)
	ctx := context.Background()

	bars := []*domain.Bar{
		{Day: tradingDay(2024, 3, 4), Box: 1},
		{Day: tradingDay(2024, 3, 4), Box: 1},
	}
	err := store.InsertBulk(ctx, bars)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	result, err := store.GetByDayRange(ctx, time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Empty(t, result)
}

func TestBarStore_GetByDayRange(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewBarStore(conn)
	ctx := context.Background()

	bars := []*domain.Bar{
		{Day: tradingDay(2024, 3, 1), Box: 1},
		{Day: tradingDay(2024, 3, 4), Box: 1},
		{Day: tradingDay(2024, 3, 5), Box: 1},
	}
	require.NoError(t, store.InsertBulk(ctx, bars))

	result, err := store.GetByDayRange(ctx, tradingDay(2024, 3, 4), time.Time{})
	require.NoError(t, err)
	assert.Len(t, result, 2)

	result, err = store.GetByDayRange(ctx, tradingDay(2024, 3, 1), tradingDay(2024, 3, 1))
	require.NoError(t, err)
	assert.Len(t, result, 1)
}

func TestBarStore_GetDayRange(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewBarStore(conn)
	ctx := context.Background()

	_, _, err := store.GetDayRange(ctx)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	bars := []*domain.Bar{
		{Day: tradingDay(2024, 3, 5), Box: 1},
		{Day: tradingDay(2024, 3, 1), Box: 1},
	}
	require.NoError(t, store.InsertBulk(ctx, bars))

	first, last, err := store.GetDayRange(ctx)
	require.NoError(t, err)
	assert.True(t, first.Equal(tradingDay(2024, 3, 1)))
	assert.True(t, last.Equal(tradingDay(2024, 3, 5)))
}
