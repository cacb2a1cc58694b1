package domain

import (
	"time"
)

// PointValue converts index points into currency per contract.
const PointValue = 0.2

// Defaults used by the playbook when a value is not configured.
const (
	DefaultStopPoints      = 350.0
	DefaultTrailingTrigger = 300.0
	DefaultTrailingDist    = 300.0
	DefaultTargetPoints    = 700.0
	DefaultCutoff          = 17*time.Hour + 45*time.Minute
	MaxTargets             = 10
)

// TargetSpec is one profit target of the day's position.
type TargetSpec struct {
	Index    int     // 1-based column index (Alvo-i, Add-i, Res-i)
	Points   float64 // distance from entry in points, <= 0 disables the target
	Quantity int     // contracts
}

// TrailingConfig controls the dynamic stop.
type TrailingConfig struct {
	Enabled  bool
	Trigger  float64 // favourable excursion that arms the trail
	Distance float64 // gap kept between the extreme and the stop
}

// BacktestConfig is the full parameter set of one playbook run.
// Identical configs over identical inputs produce identical tables.
type BacktestConfig struct {
	StartDate  time.Time      // inclusive, zero means unbounded
	EndDate    time.Time      // inclusive, zero means unbounded
	Cutoff     time.Duration  // keep bars with clock <= cutoff, zero disables
	Weekdays   []time.Weekday // included weekdays, empty means all
	Targets    []TargetSpec
	StopPoints float64
	Trailing   TrailingConfig
}

// DefaultBacktestConfig returns the playbook defaults:
// one 700 point target, 350 point stop, trailing 300/300 disabled, Mon-Fri until 17:45.
func DefaultBacktestConfig() BacktestConfig {
	return BacktestConfig{
		Cutoff: DefaultCutoff,
		Weekdays: []time.Weekday{
			time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday,
		},
		Targets:    []TargetSpec{{Index: 1, Points: DefaultTargetPoints, Quantity: 1}},
		StopPoints: DefaultStopPoints,
		Trailing: TrailingConfig{
			Trigger:  DefaultTrailingTrigger,
			Distance: DefaultTrailingDist,
		},
	}
}

// EffectiveTargets returns the configured targets with 1-based indices.
// An empty list yields a single disabled target so every row keeps one result column.
func (c *BacktestConfig) EffectiveTargets() []TargetSpec {
	if len(c.Targets) == 0 {
		return []TargetSpec{{Index: 1, Points: 0, Quantity: 1}}
	}
	out := make([]TargetSpec, len(c.Targets))
	for i, t := range c.Targets {
		t.Index = i + 1
		out[i] = t
	}
	return out
}

// IncludesWeekday reports whether days falling on wd are simulated.
func (c *BacktestConfig) IncludesWeekday(wd time.Weekday) bool {
	if len(c.Weekdays) == 0 {
		return true
	}
	for _, w := range c.Weekdays {
		if w == wd {
			return true
		}
	}
	return false
}

// IncludesDay reports whether day falls inside the configured date range.
func (c *BacktestConfig) IncludesDay(day time.Time) bool {
	if !c.StartDate.IsZero() && day.Before(TruncateDay(c.StartDate)) {
		return false
	}
	if !c.EndDate.IsZero() && day.After(TruncateDay(c.EndDate)) {
		return false
	}
	return true
}
