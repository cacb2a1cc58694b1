package domain

import "time"

// TargetOutcome is the per-target part of a day's row.
type TargetOutcome struct {
	Index    int     // matches TargetSpec.Index
	ExitBox  int     // box where the target filled, 0 if it never did (Alvo-i)
	Quantity int     // contracts carried, 0 without a long/short entry (Add-i)
	Result   float64 // currency result (Res-i)
}

// DayResult is one output row of the playbook table.
// Built once per trading day and never modified after the running total is set.
type DayResult struct {
	// Entry bar
	Date  time.Time
	Clock time.Duration
	Open  float64
	High  float64
	Low   float64
	Close float64
	Box   int

	// Day context
	DayOpen   float64 // "Abert. Dia"
	VAH       float64
	VAL       float64
	UnjustMax float64 // "Max Inj"
	UnjustMin float64 // "Min Inj"
	Candle    CandleDirection

	Scenario   Scenario
	Entry      Side
	EntryPrice float64 // NaN without an entry bar price

	Targets []TargetOutcome
	StopBox int // 0 when no stop was hit

	Total   float64 // "Resultado Total", sum of Targets[i].Result
	Running float64 // "Dia-Dia", cumulative Total within the calendar month
}

// Timestamp returns the entry bar's instant.
func (r *DayResult) Timestamp() time.Time {
	return r.Date.Add(r.Clock)
}
