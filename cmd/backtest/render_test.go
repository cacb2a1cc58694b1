package main

import (
	"strings"
	"testing"
	"time"

	"playbook-lab/internal/backtest"
	"playbook-lab/internal/domain"
	"playbook-lab/internal/metrics"
)

func TestRender(t *testing.T) {
	rows := []domain.DayResult{
		{
			Date:     time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC),
			Clock:    9 * time.Hour,
			Box:      1,
			Scenario: domain.ScenarioAboveValue,
			Entry:    domain.SideShort,
			StopBox:  2,
			Total:    -70,
			Running:  -30,
		},
		{
			Date:     time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
			Clock:    9 * time.Hour,
			Box:      1,
			Scenario: domain.ScenarioBelowValue,
			Entry:    domain.SideLong,
			Total:    40,
			Running:  40,
		},
	}
	out := render(&backtest.Result{
		ConfigID: "abc",
		ModelID:  "STATIC_STOP_350",
		Rows:     rows,
		Summary:  metrics.Summarize(rows),
	})

	for _, want := range []string{
		"config abc | model STATIC_STOP_350",
		"Estatísticas",
		"Março 2025",
		"10-03-2025",
		"70,00",
		string(domain.SideShort),
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output is missing %q", want)
		}
	}
}

func TestRender_Empty(t *testing.T) {
	out := render(&backtest.Result{ConfigID: "abc"})
	if !strings.Contains(out, "No trading days matched the configuration.") {
		t.Errorf("unexpected output:\n%s", out)
	}
}
