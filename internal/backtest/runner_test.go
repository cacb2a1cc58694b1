package backtest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"playbook-lab/internal/domain"
	"playbook-lab/internal/observability"
	"playbook-lab/internal/storage/memory"
)

// seedStores loads two trading days in March and one in April.
func seedStores(t *testing.T) (*memory.BarStore, *memory.IndicatorStore) {
	t.Helper()
	ctx := context.Background()
	bars := memory.NewBarStore()
	inds := memory.NewIndicatorStore()

	d1 := date(2025, 3, 10)
	d2 := date(2025, 3, 11)
	d3 := date(2025, 4, 1)

	err := bars.InsertBulk(ctx, []*domain.Bar{
		// Scenario 2, target of 200 fills at box 2
		mkBar(d1, 1, 1000, 1010, 990, 1005),
		mkBar(d1, 2, 1005, 1210, 1000, 1205),
		// Scenario 3, static stop closes through 1350 at box 2
		mkBar(d2, 1, 1000, 1000, 990, 995),
		mkBar(d2, 2, 995, 1400, 990, 1360),
		mkBar(d2, 3, 1360, 1370, 1300, 1310),
		// No indicators: scenario 0
		mkBar(d3, 1, 1000, 1000, 1000, 1000),
		mkBar(d3, 2, 1000, 1000, 1000, 1000),
	})
	if err != nil {
		t.Fatalf("seed bars: %v", err)
	}

	err = inds.InsertBulk(ctx, []*domain.DailyIndicators{
		mkLevels(d1, 1100, 1050, 900, 1200),
		mkLevels(d2, 950, 900, 850, 1100),
	})
	if err != nil {
		t.Fatalf("seed indicators: %v", err)
	}
	return bars, inds
}

func singleTarget() domain.BacktestConfig {
	cfg := domain.DefaultBacktestConfig()
	cfg.Targets = []domain.TargetSpec{{Points: 200, Quantity: 1}}
	return cfg
}

func TestRunner_Run(t *testing.T) {
	bars, inds := seedStores(t)
	runner := NewRunner(bars, inds)

	result, err := runner.Run(context.Background(), singleTarget())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(result.Rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(result.Rows))
	}
	// Most recent first
	if !result.Rows[0].Date.Equal(date(2025, 4, 1)) || !result.Rows[2].Date.Equal(date(2025, 3, 10)) {
		t.Error("rows are not in descending date order")
	}

	apr, mar11, mar10 := result.Rows[0], result.Rows[1], result.Rows[2]
	if mar10.Scenario != domain.ScenarioBelowValue || mar10.Total != 40 {
		t.Errorf("2025-03-10: scenario %v total %v, want 2 and 40", mar10.Scenario, mar10.Total)
	}
	if mar11.Scenario != domain.ScenarioAboveValue || mar11.Entry != domain.SideShort {
		t.Errorf("2025-03-11: scenario %v entry %q, want 3 short", mar11.Scenario, mar11.Entry)
	}
	if mar11.StopBox != 2 || mar11.Total != -70 {
		t.Errorf("2025-03-11: stop %d total %v, want stop 2 total -70", mar11.StopBox, mar11.Total)
	}
	if mar11.Running != -30 {
		t.Errorf("2025-03-11 running = %v, want -30", mar11.Running)
	}
	if apr.Scenario != domain.ScenarioUndefined || apr.Running != 0 {
		t.Errorf("2025-04-01: scenario %v running %v, want 0 and 0", apr.Scenario, apr.Running)
	}

	if result.Summary == nil || result.Summary.Period.Total != -30 {
		t.Errorf("summary total = %+v, want -30", result.Summary)
	}
	if result.ModelID != "STATIC_STOP_350" {
		t.Errorf("model id = %q", result.ModelID)
	}
	if result.ConfigID == "" {
		t.Error("config id is empty")
	}
}

func TestRunner_DateRange(t *testing.T) {
	bars, inds := seedStores(t)
	runner := NewRunner(bars, inds)

	cfg := singleTarget()
	cfg.StartDate = date(2025, 3, 11)
	cfg.EndDate = date(2025, 3, 31)

	result, err := runner.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(result.Rows) != 1 || !result.Rows[0].Date.Equal(date(2025, 3, 11)) {
		t.Fatalf("expected only 2025-03-11, got %d rows", len(result.Rows))
	}
}

func TestRunner_FiltersLeaveNothing(t *testing.T) {
	bars, inds := seedStores(t)
	runner := NewRunner(bars, inds)

	cfg := singleTarget()
	cfg.Weekdays = []time.Weekday{time.Sunday}

	result, err := runner.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(result.Rows) != 0 {
		t.Errorf("expected no rows, got %d", len(result.Rows))
	}
}

func TestRunner_DataNotFound(t *testing.T) {
	runner := NewRunner(memory.NewBarStore(), memory.NewIndicatorStore())

	result, err := runner.Run(context.Background(), singleTarget())
	if !errors.Is(err, ErrDataNotFound) {
		t.Fatalf("expected ErrDataNotFound, got %v", err)
	}
	if result != nil {
		t.Error("expected no partial result")
	}
}

func TestRunner_InvalidConfig(t *testing.T) {
	bars, inds := seedStores(t)
	runner := NewRunner(bars, inds)

	cfg := singleTarget()
	cfg.StopPoints = -5
	if _, err := runner.Run(context.Background(), cfg); err == nil {
		t.Error("expected error for invalid config")
	}
}

func TestRunner_Cache(t *testing.T) {
	bars, inds := seedStores(t)
	reg := prometheus.NewRegistry()
	m := observability.NewMetrics("test", reg)
	cache := NewResultCache(0)
	runner := NewRunner(bars, inds, WithCache(cache), WithMetrics(m))

	first, err := runner.Run(context.Background(), singleTarget())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	second, err := runner.Run(context.Background(), singleTarget())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if first != second {
		t.Error("expected the cached result on the second run")
	}
	if cache.Len() != 1 {
		t.Errorf("cache entries = %d, want 1", cache.Len())
	}
	if got := testutil.ToFloat64(m.CacheLookups.WithLabelValues("hit")); got != 1 {
		t.Errorf("cache hits = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.BacktestRunsTotal.WithLabelValues("success")); got != 1 {
		t.Errorf("successful runs = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.DaysSimulated); got != 3 {
		t.Errorf("days simulated = %v, want 3", got)
	}

	cfg := singleTarget()
	cfg.Trailing.Enabled = true
	third, err := runner.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if third == first {
		t.Error("a different config must not hit the cache")
	}
}

func TestResultCache_Expiry(t *testing.T) {
	cache := NewResultCache(time.Minute)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	cache.Set("k", &Result{ConfigID: "k"})
	if _, ok := cache.Get("k"); !ok {
		t.Fatal("expected a fresh entry")
	}

	now = now.Add(2 * time.Minute)
	if _, ok := cache.Get("k"); ok {
		t.Error("expected the entry to expire")
	}

	cache.Clear()
	if cache.Len() != 0 {
		t.Error("Clear left entries behind")
	}
}

func TestResultCache_NilDisabled(t *testing.T) {
	var cache *ResultCache
	cache.Set("k", &Result{})
	if _, ok := cache.Get("k"); ok {
		t.Error("nil cache must never hit")
	}
}
