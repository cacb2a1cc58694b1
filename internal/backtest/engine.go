package backtest

import (
	"fmt"

	"playbook-lab/internal/domain"
	"playbook-lab/internal/strategy"
)

// Engine simulates trading days under one configuration.
// It holds no per-day state and can be reused across runs of the same config.
type Engine struct {
	model   strategy.ExitModel
	targets []domain.TargetSpec
}

// NewEngine creates a new backtest engine for cfg.
func NewEngine(cfg domain.BacktestConfig) (*Engine, error) {
	model, err := strategy.FromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("exit model: %w", err)
	}
	return &Engine{
		model:   model,
		targets: cfg.EffectiveTargets(),
	}, nil
}

// ModelID returns the exit model identifier.
func (e *Engine) ModelID() string {
	return e.model.ID()
}

// Targets returns the effective targets, one result column each.
func (e *Engine) Targets() []domain.TargetSpec {
	out := make([]domain.TargetSpec, len(e.targets))
	copy(out, e.targets)
	return out
}

// SimulateDay classifies the day, resolves its entry and exits and builds its row.
// Running is left at zero; it is set by Assemble.
func (e *Engine) SimulateDay(dc DayContext) domain.DayResult {
	ind := dc.Indicators
	scenario := strategy.Classify(dc.First.Open, ind)
	entry := strategy.ResolveEntry(scenario, ind, dc.First, dc.Bars)
	trade := strategy.NewTrade(entry, dc.Bars)
	outcomes, stopBox := strategy.ResolveTargets(e.model, trade, e.targets)

	bar := entry.Bar
	if bar == nil {
		bar = dc.First
	}

	row := domain.DayResult{
		Date:  dc.Day,
		Clock: bar.Clock,
		Open:  bar.Open,
		High:  bar.High,
		Low:   bar.Low,
		Close: bar.Close,
		Box:   bar.Box,

		DayOpen:   dc.DayOpen,
		VAH:       ind.VAH,
		VAL:       ind.VAL,
		UnjustMax: ind.UnjustMax,
		UnjustMin: ind.UnjustMin,
		Candle:    bar.Direction(),

		Scenario:   scenario,
		Entry:      entry.Side,
		EntryPrice: entry.Price,

		Targets: outcomes,
		StopBox: stopBox,
	}
	for _, o := range outcomes {
		row.Total += o.Result
	}
	return row
}

// Simulate runs every day and returns the rows in day order.
func (e *Engine) Simulate(days []DayContext) []domain.DayResult {
	rows := make([]domain.DayResult, 0, len(days))
	for _, dc := range days {
		rows = append(rows, e.SimulateDay(dc))
	}
	return rows
}
