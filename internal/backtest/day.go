package backtest

import (
	"sort"
	"time"

	"playbook-lab/internal/domain"
	"playbook-lab/internal/lookup"
)

// DayContext is everything the engine needs to simulate one trading day.
type DayContext struct {
	Day        time.Time
	Bars       []*domain.Bar // filtered, in box order, never empty
	First      *domain.Bar   // box 1, or the first bar when box 1 was filtered out or missing
	DayOpen    float64       // open of the first bar after filtering
	Indicators domain.DailyIndicators
}

// BuildDays filters bars by cfg, groups them per day and joins the day's
// indicators. Days left without bars are skipped. Days without indicators
// get undefined levels. Output is in ascending day order.
func BuildDays(bars []*domain.Bar, indicators []*domain.DailyIndicators, cfg domain.BacktestConfig) []DayContext {
	levels := make(map[int64]domain.DailyIndicators, len(indicators))
	for _, ind := range indicators {
		if ind == nil {
			continue
		}
		levels[domain.TruncateDay(ind.Day).Unix()] = *ind
	}

	kept := make([]*domain.Bar, 0, len(bars))
	for _, b := range bars {
		if b != nil && keepBar(b, cfg) {
			kept = append(kept, b)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		if !kept[i].Day.Equal(kept[j].Day) {
			return kept[i].Day.Before(kept[j].Day)
		}
		return kept[i].Box < kept[j].Box
	})

	var days []DayContext
	start := 0
	for i := 1; i <= len(kept); i++ {
		if i < len(kept) && kept[i].Day.Equal(kept[start].Day) {
			continue
		}
		days = append(days, newDayContext(kept[start:i], levels))
		start = i
	}
	return days
}

func newDayContext(bars []*domain.Bar, levels map[int64]domain.DailyIndicators) DayContext {
	day := domain.TruncateDay(bars[0].Day)

	first, ok := lookup.ByBox(bars, 1)
	if !ok {
		first = bars[0]
	}

	ind, ok := levels[day.Unix()]
	if !ok {
		ind = domain.UndefinedIndicators(day)
	}

	return DayContext{
		Day:        day,
		Bars:       bars,
		First:      first,
		DayOpen:    bars[0].Open,
		Indicators: ind,
	}
}

// keepBar applies the date range, weekday and cutoff filters.
func keepBar(b *domain.Bar, cfg domain.BacktestConfig) bool {
	day := domain.TruncateDay(b.Day)
	if !cfg.IncludesDay(day) || !cfg.IncludesWeekday(day.Weekday()) {
		return false
	}
	return cfg.Cutoff == 0 || b.Clock <= cfg.Cutoff
}
