package reporting

import (
	"time"

	"playbook-lab/internal/domain"
	"playbook-lab/internal/metrics"
)

// Report is a rendered-ready snapshot of one playbook run.
type Report struct {
	ReportID    string
	GeneratedAt time.Time
	ConfigID    string
	ModelID     string
	Config      domain.BacktestConfig
	Targets     []domain.TargetSpec
	Rows        []domain.DayResult // most recent first
	Summary     *metrics.Summary
}

// TargetCount returns the number of target column groups in the day table.
func (r *Report) TargetCount() int {
	if len(r.Targets) == 0 {
		return 1
	}
	return len(r.Targets)
}
