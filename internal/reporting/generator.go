package reporting

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"playbook-lab/internal/backtest"
	"playbook-lab/internal/domain"
	"playbook-lab/internal/metrics"
	"playbook-lab/internal/observability"
)

// BacktestRunner runs one playbook configuration.
type BacktestRunner interface {
	Run(ctx context.Context, cfg domain.BacktestConfig) (*backtest.Result, error)
}

// Generator produces reports from backtest runs.
type Generator struct {
	runner  BacktestRunner
	metrics *observability.Metrics
	now     func() time.Time // Injectable clock for deterministic output
	newID   func() string
}

// NewGenerator creates a new report generator.
func NewGenerator(runner BacktestRunner) *Generator {
	return &Generator{
		runner: runner,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  func() string { return uuid.NewString() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// WithMetrics records generated reports on m.
func (g *Generator) WithMetrics(m *observability.Metrics) *Generator {
	g.metrics = m
	return g
}

// Generate runs cfg and wraps the result in a Report.
func (g *Generator) Generate(ctx context.Context, cfg domain.BacktestConfig) (*Report, error) {
	result, err := g.runner.Run(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("run backtest: %w", err)
	}

	report := FromResult(result, g.now())
	report.ReportID = g.newID()
	g.metrics.RecordReport()
	return report, nil
}

// FromResult builds a report from an existing run.
func FromResult(result *backtest.Result, generatedAt time.Time) *Report {
	summary := result.Summary
	if summary == nil {
		summary = metrics.Summarize(result.Rows)
	}
	return &Report{
		GeneratedAt: generatedAt,
		ConfigID:    result.ConfigID,
		ModelID:     result.ModelID,
		Config:      result.Config,
		Targets:     result.Targets,
		Rows:        result.Rows,
		Summary:     summary,
	}
}
