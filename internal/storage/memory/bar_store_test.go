package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"playbook-lab/internal/domain"
	"playbook-lab/internal/storage"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestBarStore_InsertBulkAndGet(t *testing.T) {
	store := NewBarStore()
	ctx := context.Background()

	bars := []*domain.Bar{
		{Day: day(2024, 3, 4), Box: 2, Clock: 9*time.Hour + 5*time.Minute, Open: 101, High: 103, Low: 100, Close: 102},
		{Day: day(2024, 3, 4), Box: 1, Clock: 9 * time.Hour, Open: 100, High: 102, Low: 99, Close: 101},
		{Day: day(2024, 3, 1), Box: 1, Clock: 9 * time.Hour, Open: 90, High: 92, Low: 89, Close: 91},
	}

	if err := store.InsertBulk(ctx, bars); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	result, err := store.GetByDayRange(ctx, time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("GetByDayRange failed: %v", err)
	}

	if len(result) != 3 {
		t.Fatalf("Expected 3 bars, got %d", len(result))
	}
	if !result[0].Day.Equal(day(2024, 3, 1)) {
		t.Errorf("Expected first bar on 2024-03-01, got %v", result[0].Day)
	}
	if result[1].Box != 1 || result[2].Box != 2 {
		t.Errorf("Expected boxes ordered within day, got %d, %d", result[1].Box, result[2].Box)
	}
}

func TestBarStore_DuplicateKey(t *testing.T) {
	store := NewBarStore()
	ctx := context.Background()

	bars := []*domain.Bar{{Day: day(2024, 3, 4), Box: 1, Open: 100}}

	if err := store.InsertBulk(ctx, bars); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}

	err := store.InsertBulk(ctx, bars)
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
}

func TestBarStore_IntraBatchDuplicate(t *testing.T) {
	store := NewBarStore()
	ctx := context.Background()

	bars := []*domain.Bar{
		{Day: day(2024, 3, 4), Box: 1, Open: 100},
		{Day: day(2024, 3, 4).Add(10 * time.Hour), Box: 1, Open: 101}, // same trading day
	}

	err := store.InsertBulk(ctx, bars)
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey for intra-batch duplicate, got %v", err)
	}

	result, _ := store.GetByDayRange(ctx, time.Time{}, time.Time{})
	if len(result) != 0 {
		t.Errorf("Expected 0 bars (rollback), got %d", len(result))
	}
}

func TestBarStore_InvalidInput(t *testing.T) {
	store := NewBarStore()
	ctx := context.Background()

	cases := []*domain.Bar{
		nil,
		{Box: 1},
		{Day: day(2024, 3, 4), Box: 0},
	}
	for i, b := range cases {
		err := store.InsertBulk(ctx, []*domain.Bar{b})
		if !errors.Is(err, storage.ErrInvalidInput) {
			t.Errorf("case %d: expected ErrInvalidInput, got %v", i, err)
		}
	}
}

func TestBarStore_GetByDayRange(t *testing.T) {
	store := NewBarStore()
	ctx := context.Background()

	bars := []*domain.Bar{
		{Day: day(2024, 3, 1), Box: 1},
		{Day: day(2024, 3, 4), Box: 1},
		{Day: day(2024, 3, 5), Box: 1},
		{Day: day(2024, 3, 6), Box: 1},
	}
	if err := store.InsertBulk(ctx, bars); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	result, err := store.GetByDayRange(ctx, day(2024, 3, 4), day(2024, 3, 5))
	if err != nil {
		t.Fatalf("GetByDayRange failed: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("Expected 2 bars in range, got %d", len(result))
	}

	result, _ = store.GetByDayRange(ctx, day(2024, 3, 5), time.Time{})
	if len(result) != 2 {
		t.Errorf("Expected 2 bars with open end, got %d", len(result))
	}
}

func TestBarStore_GetDayRange(t *testing.T) {
	store := NewBarStore()
	ctx := context.Background()

	if _, _, err := store.GetDayRange(ctx); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound on empty store, got %v", err)
	}

	bars := []*domain.Bar{
		{Day: day(2024, 3, 5), Box: 1},
		{Day: day(2024, 3, 1), Box: 1},
		{Day: day(2024, 3, 1), Box: 2},
	}
	if err := store.InsertBulk(ctx, bars); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	first, last, err := store.GetDayRange(ctx)
	if err != nil {
		t.Fatalf("GetDayRange failed: %v", err)
	}
	if !first.Equal(day(2024, 3, 1)) || !last.Equal(day(2024, 3, 5)) {
		t.Errorf("Expected range 2024-03-01..2024-03-05, got %v..%v", first, last)
	}
}

func TestBarStore_ReturnsCopies(t *testing.T) {
	store := NewBarStore()
	ctx := context.Background()

	bar := &domain.Bar{Day: day(2024, 3, 4), Box: 1, Open: 100}
	if err := store.InsertBulk(ctx, []*domain.Bar{bar}); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}
	bar.Open = 1

	result, _ := store.GetByDayRange(ctx, time.Time{}, time.Time{})
	result[0].Open = 2

	again, _ := store.GetByDayRange(ctx, time.Time{}, time.Time{})
	if again[0].Open != 100 {
		t.Errorf("Expected stored open 100, got %v", again[0].Open)
	}
}
