package metrics

import (
	"sort"
	"strconv"
	"time"

	"playbook-lab/internal/domain"
)

// VolatilityBand is the qualitative reading of the volatility ratio.
type VolatilityBand string

// Volatility bands.
const (
	VolatilityControlled VolatilityBand = "controlled" // ratio <= 1
	VolatilityModerate   VolatilityBand = "moderate"   // ratio <= 2
	VolatilityHigh       VolatilityBand = "high"
)

// PeriodLabel is the label of the whole-table statistics.
const PeriodLabel = "Período"

// MonthlyResult is one row of the monthly table.
type MonthlyResult struct {
	Year        int
	Month       time.Month
	Total       float64
	ExpMaxNeg   float64 // minimum of the month's running total
	TradingDays int
}

// WeekdayResult is one column of the weekday table.
type WeekdayResult struct {
	Weekday time.Weekday
	Total   float64
	Days    int
}

// YearlyResult is one row of the per-year totals.
type YearlyResult struct {
	Year  int
	Total float64
}

// Streak is a run of consecutive days with the same result sign.
type Streak struct {
	Length int
	Start  time.Time // zero when Length is 0
}

// PeriodStats are the statistics of a set of days.
type PeriodStats struct {
	Label string
	Start time.Time
	End   time.Time

	// Counts
	Days              int
	ProfitableDays    int // result > 0
	NonProfitableDays int // result <= 0
	Months            int

	// Sums
	Total       float64
	GrossGains  float64
	GrossLosses float64 // <= 0

	HitRate      float64
	ProfitFactor float64 // 0 when there are no losses

	LongestWin  Streak
	LongestLoss Streak

	// Averages
	AvgWin   float64
	AvgLoss  float64
	AvgDay   float64
	AvgMonth float64

	StdDev          float64
	VolatilityRatio float64 // StdDev / AvgWin
	Volatility      VolatilityBand

	MaxDrawdown    float64 // <= 0
	RecoveryFactor float64
	Payoff         float64
}

// Summary holds every derived table of a result table.
type Summary struct {
	Monthly []MonthlyResult // most recent first
	Weekday []WeekdayResult // Monday to Friday
	Yearly  []YearlyResult  // ascending
	Annual  []PeriodStats   // one per calendar year, ascending
	Period  PeriodStats     // whole table
}

// Summarize computes all summary tables.
// rows may be in any order. The input is not modified.
func Summarize(rows []domain.DayResult) *Summary {
	sorted := sortAscending(rows)
	return &Summary{
		Monthly: monthly(sorted),
		Weekday: weekday(sorted),
		Yearly:  yearly(sorted),
		Annual:  annual(sorted),
		Period:  computeStats(PeriodLabel, sorted),
	}
}

// Monthly returns the monthly table, most recent month first.
func Monthly(rows []domain.DayResult) []MonthlyResult {
	return monthly(sortAscending(rows))
}

// Weekday returns totals for Monday to Friday, zero filled.
func Weekday(rows []domain.DayResult) []WeekdayResult {
	return weekday(rows)
}

// Yearly returns per-year totals in ascending year order.
func Yearly(rows []domain.DayResult) []YearlyResult {
	return yearly(sortAscending(rows))
}

// Annual returns statistics per calendar year in ascending order.
func Annual(rows []domain.DayResult) []PeriodStats {
	return annual(sortAscending(rows))
}

// ComputeStats returns statistics over all rows.
func ComputeStats(label string, rows []domain.DayResult) PeriodStats {
	return computeStats(label, sortAscending(rows))
}

func monthly(sorted []domain.DayResult) []MonthlyResult {
	var out []MonthlyResult
	for _, r := range sorted {
		y, m, _ := r.Date.Date()
		n := len(out)
		if n == 0 || out[n-1].Year != y || out[n-1].Month != m {
			out = append(out, MonthlyResult{Year: y, Month: m, ExpMaxNeg: r.Running})
			n++
		}
		cur := &out[n-1]
		cur.Total += r.Total
		cur.TradingDays++
		if r.Running < cur.ExpMaxNeg {
			cur.ExpMaxNeg = r.Running
		}
	}

	// Most recent first
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

func weekday(rows []domain.DayResult) []WeekdayResult {
	out := []WeekdayResult{
		{Weekday: time.Monday},
		{Weekday: time.Tuesday},
		{Weekday: time.Wednesday},
		{Weekday: time.Thursday},
		{Weekday: time.Friday},
	}
	for _, r := range rows {
		wd := r.Date.Weekday()
		if wd < time.Monday || wd > time.Friday {
			continue
		}
		out[wd-time.Monday].Total += r.Total
		out[wd-time.Monday].Days++
	}
	return out
}

func yearly(sorted []domain.DayResult) []YearlyResult {
	var out []YearlyResult
	for _, r := range sorted {
		y := r.Date.Year()
		n := len(out)
		if n == 0 || out[n-1].Year != y {
			out = append(out, YearlyResult{Year: y})
			n++
		}
		out[n-1].Total += r.Total
	}
	return out
}

func annual(sorted []domain.DayResult) []PeriodStats {
	var out []PeriodStats
	start := 0
	for i := 1; i <= len(sorted); i++ {
		if i < len(sorted) && sorted[i].Date.Year() == sorted[start].Date.Year() {
			continue
		}
		year := sorted[start].Date.Year()
		out = append(out, computeStats(strconv.Itoa(year), sorted[start:i]))
		start = i
	}
	return out
}

// computeStats calculates all statistics of rows in ascending date order.
func computeStats(label string, sorted []domain.DayResult) PeriodStats {
	stats := PeriodStats{Label: label}
	n := len(sorted)
	if n == 0 {
		stats.Volatility = VolatilityHigh
		return stats
	}

	stats.Start = sorted[0].Date
	stats.End = sorted[n-1].Date
	stats.Days = n

	results := make([]float64, n)
	dates := make([]time.Time, n)
	var wins, losses []float64
	months := make(map[[2]int]bool)

	for i, r := range sorted {
		results[i] = r.Total
		dates[i] = r.Date
		stats.Total += r.Total

		switch {
		case r.Total > 0:
			wins = append(wins, r.Total)
			stats.GrossGains += r.Total
		case r.Total < 0:
			losses = append(losses, r.Total)
			stats.GrossLosses += r.Total
		}

		y, m, _ := r.Date.Date()
		months[[2]int{y, int(m)}] = true
	}

	stats.ProfitableDays = len(wins)
	stats.NonProfitableDays = n - len(wins)
	stats.Months = len(months)
	stats.HitRate = computeRatio(float64(stats.ProfitableDays), float64(n))
	stats.ProfitFactor = computeProfitFactor(stats.GrossGains, stats.GrossLosses)

	stats.LongestWin, stats.LongestLoss = computeStreaks(dates, results)

	stats.AvgWin = computeMean(wins)
	stats.AvgLoss = computeMean(losses)
	stats.AvgDay = computeMean(results)
	stats.AvgMonth = computeRatio(stats.Total, float64(stats.Months))

	stats.StdDev = computeStddev(results, stats.AvgDay)
	stats.VolatilityRatio = computeRatio(stats.StdDev, stats.AvgWin)
	stats.Volatility = classifyVolatility(stats.VolatilityRatio, len(wins) > 0)

	stats.MaxDrawdown = computeMaxDrawdown(computeCumulative(results))
	stats.RecoveryFactor = computeRatio(stats.Total, -stats.MaxDrawdown)
	stats.Payoff = computePayoff(stats.AvgWin, stats.AvgLoss)

	return stats
}

// sortAscending returns a copy of rows ordered by (date, clock).
func sortAscending(rows []domain.DayResult) []domain.DayResult {
	out := make([]domain.DayResult, len(rows))
	copy(out, rows)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp().Before(out[j].Timestamp())
	})
	return out
}
