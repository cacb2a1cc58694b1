package ingestion

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"playbook-lab/internal/domain"
	"playbook-lab/internal/ingestion/stub"
	"playbook-lab/internal/observability"
	"playbook-lab/internal/storage"
	"playbook-lab/internal/storage/memory"
)

// orderValidatingBarStore wraps a BarStore and validates ordering in InsertBulk.
// Returns ErrInvalidOrdering if bars are not properly ordered.
type orderValidatingBarStore struct {
	storage.BarStore
	batches int
}

func (s *orderValidatingBarStore) InsertBulk(ctx context.Context, bars []*domain.Bar) error {
	s.batches++
	if err := ValidateBarOrdering(bars); err != nil {
		return err
	}
	return s.BarStore.InsertBulk(ctx, bars)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func bar(d time.Time, box int) *domain.Bar {
	return &domain.Bar{Day: d, Clock: 9*time.Hour + time.Duration(box-1)*5*time.Minute, Box: box,
		Open: 100, High: 110, Low: 90, Close: 105}
}

func TestManager_IngestBars_Ordering(t *testing.T) {
	// Unordered input; Manager must sort before InsertBulk
	bars := []*domain.Bar{
		bar(day(2025, 3, 11), 1),
		bar(day(2025, 3, 10), 2),
		bar(day(2025, 3, 10), 1),
	}

	store := &orderValidatingBarStore{BarStore: memory.NewBarStore()}
	mgr := NewManager(ManagerOptions{
		BarSource: stub.NewStubBarSource(bars),
		BarStore:  store,
	})

	ctx := context.Background()
	count, err := mgr.IngestBars(ctx)
	if err != nil {
		t.Fatalf("IngestBars failed: %v (Manager must sort before InsertBulk)", err)
	}
	if count != 3 {
		t.Errorf("expected 3 bars, got %d", count)
	}

	stored, err := store.GetByDayRange(ctx, time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("GetByDayRange failed: %v", err)
	}
	if len(stored) != 3 || stored[0].Box != 1 || !stored[2].Day.Equal(day(2025, 3, 11)) {
		t.Error("stored bars not in (day, box) order")
	}
}

func TestManager_IngestBars_Batches(t *testing.T) {
	var bars []*domain.Bar
	for box := 1; box <= 5; box++ {
		bars = append(bars, bar(day(2025, 3, 10), box))
	}

	reg := prometheus.NewRegistry()
	m := observability.NewMetrics("test", reg)
	store := &orderValidatingBarStore{BarStore: memory.NewBarStore()}
	mgr := NewManager(ManagerOptions{
		BarSource: stub.NewStubBarSource(bars),
		BarStore:  store,
		Metrics:   m,
		BatchSize: 2,
	})

	count, err := mgr.IngestBars(context.Background())
	if err != nil {
		t.Fatalf("IngestBars failed: %v", err)
	}
	if count != 5 || store.batches != 3 {
		t.Errorf("count %d batches %d, want 5 and 3", count, store.batches)
	}
	if got := testutil.ToFloat64(m.RowsIngested.WithLabelValues("bars")); got != 5 {
		t.Errorf("rows ingested = %v, want 5", got)
	}
}

func TestManager_IngestBars_DuplicateBox(t *testing.T) {
	bars := []*domain.Bar{bar(day(2025, 3, 10), 1), bar(day(2025, 3, 10), 1)}
	store := memory.NewBarStore()
	mgr := NewManager(ManagerOptions{BarSource: stub.NewStubBarSource(bars), BarStore: store})

	if _, err := mgr.IngestBars(context.Background()); !errors.Is(err, ErrInvalidOrdering) {
		t.Fatalf("expected ErrInvalidOrdering, got %v", err)
	}
	if _, _, err := store.GetDayRange(context.Background()); !errors.Is(err, storage.ErrNotFound) {
		t.Error("nothing should be stored when validation fails")
	}
}

func TestManager_IngestBars_SourceError(t *testing.T) {
	boom := errors.New("boom")
	mgr := NewManager(ManagerOptions{
		BarSource: stub.NewFailingBarSource(boom),
		BarStore:  memory.NewBarStore(),
	})
	if _, err := mgr.IngestBars(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected source error, got %v", err)
	}
}

func TestManager_IngestAll(t *testing.T) {
	ctx := context.Background()
	barStore := memory.NewBarStore()
	indStore := memory.NewIndicatorStore()

	inds := []*domain.DailyIndicators{
		{Day: day(2025, 3, 11), VAH: 10, VAL: 5, UnjustMin: 1, UnjustMax: 20},
		{Day: day(2025, 3, 10), VAH: 11, VAL: 6, UnjustMin: 2, UnjustMax: 21},
	}
	mgr := NewManager(ManagerOptions{
		BarSource:       stub.NewStubBarSource([]*domain.Bar{bar(day(2025, 3, 10), 1)}),
		IndicatorSource: stub.NewStubIndicatorSource(inds),
		BarStore:        barStore,
		IndicatorStore:  indStore,
	})

	stats, err := mgr.IngestAll(ctx)
	if err != nil {
		t.Fatalf("IngestAll failed: %v", err)
	}
	if stats.Bars != 1 || stats.Indicators != 2 {
		t.Errorf("stats = %+v", stats)
	}

	got, err := indStore.GetByDay(ctx, day(2025, 3, 10))
	if err != nil {
		t.Fatalf("GetByDay failed: %v", err)
	}
	if got.VAH != 11 {
		t.Errorf("VAH = %v, want 11", got.VAH)
	}
}

func TestManager_NilSources(t *testing.T) {
	stats, err := NewManager(ManagerOptions{}).IngestAll(context.Background())
	if err != nil || stats.Bars != 0 || stats.Indicators != 0 {
		t.Errorf("expected a no-op, got %+v, %v", stats, err)
	}
}
