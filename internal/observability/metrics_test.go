package observability

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_RecordRun(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics("test", reg)

	m.RecordRun("success", 20*time.Millisecond, 12)
	m.RecordRun("error", time.Millisecond, 0)

	if got := testutil.ToFloat64(m.BacktestRunsTotal.WithLabelValues("success")); got != 1 {
		t.Errorf("success runs = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.BacktestRunsTotal.WithLabelValues("error")); got != 1 {
		t.Errorf("error runs = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.DaysSimulated); got != 12 {
		t.Errorf("days simulated = %v, want 12", got)
	}
	if got := testutil.ToFloat64(m.LastSuccessfulRun); got <= 0 {
		t.Errorf("last successful run = %v, want a timestamp", got)
	}
}

func TestMetrics_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics("test", reg)

	m.RecordCache(true)
	m.RecordCache(false)
	m.RecordCache(false)
	m.RecordIngested("bars", 40)
	m.RecordReport()
	m.RecordStreamMessage()
	m.RecordHTTP("POST", "/api/v1/backtests", 200, time.Millisecond)
	m.RecordDBQuery("bar_store", "get_by_day_range", time.Millisecond, errors.New("boom"))

	if got := testutil.ToFloat64(m.CacheLookups.WithLabelValues("hit")); got != 1 {
		t.Errorf("cache hits = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.CacheLookups.WithLabelValues("miss")); got != 2 {
		t.Errorf("cache misses = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.RowsIngested.WithLabelValues("bars")); got != 40 {
		t.Errorf("rows ingested = %v, want 40", got)
	}
	if got := testutil.ToFloat64(m.ReportsGenerated); got != 1 {
		t.Errorf("reports = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.HTTPRequests.WithLabelValues("POST", "/api/v1/backtests", "200")); got != 1 {
		t.Errorf("http requests = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.DBQueryErrors.WithLabelValues("bar_store", "get_by_day_range")); got != 1 {
		t.Errorf("db errors = %v, want 1", got)
	}
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	m.RecordRun("success", time.Second, 1)
	m.RecordCache(true)
	m.RecordIngested("bars", 1)
	m.RecordReport()
	m.RecordStreamMessage()
	m.RecordHTTP("GET", "/health", 200, time.Millisecond)
	m.RecordDBQuery("x", "y", time.Millisecond, nil)
}

func TestHandlerFor(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics("test", reg)
	m.RecordReport()

	rec := httptest.NewRecorder()
	HandlerFor(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "test_backtest_reports_generated_total 1") {
		t.Errorf("metrics output missing reports counter:\n%s", rec.Body.String())
	}
}
