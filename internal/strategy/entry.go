package strategy

import (
	"math"

	"playbook-lab/internal/domain"
	"playbook-lab/internal/lookup"
)

// Entry is the day's entry decision.
type Entry struct {
	Side  domain.Side
	Box   int
	Price float64 // open of the entry bar at box 1, close otherwise
	Bar   *domain.Bar
}

// ResolveEntry decides side, box and price for a classified day.
// first is the day's box-1 bar (or its first bar when box 1 is missing),
// bars are all the day's bars in box order.
// Days without a decision still get an entry at first so a neutral row can be built.
func ResolveEntry(scenario domain.Scenario, ind domain.DailyIndicators, first *domain.Bar, bars []*domain.Bar) Entry {
	switch scenario {
	case domain.ScenarioBelowValue, domain.ScenarioAboveUnjust:
		return entryAt(domain.SideLong, first)
	case domain.ScenarioAboveValue, domain.ScenarioBelowUnjust:
		return entryAt(domain.SideShort, first)
	case domain.ScenarioInsideValue:
		return resolveInsideValue(ind, first, bars)
	default:
		return entryAt(domain.SideNone, first)
	}
}

// resolveInsideValue fades whichever value-area edge is touched first.
// A touch of both edges in the same box is not a decision.
func resolveInsideValue(ind domain.DailyIndicators, first *domain.Bar, bars []*domain.Bar) Entry {
	later := lookup.After(bars, first.Box)

	var valBox, vahBox int
	if defined(ind.VAL) {
		valBox = lookup.FirstBox(later, func(b *domain.Bar) bool { return b.Low <= ind.VAL })
	}
	if defined(ind.VAH) {
		vahBox = lookup.FirstBox(later, func(b *domain.Bar) bool { return b.High >= ind.VAH })
	}

	switch {
	case valBox > 0 && (vahBox == 0 || valBox < vahBox):
		return entryAtBox(domain.SideLong, later, valBox, first)
	case vahBox > 0 && (valBox == 0 || vahBox < valBox):
		return entryAtBox(domain.SideShort, later, vahBox, first)
	default:
		return entryAt(domain.SideNotFound, first)
	}
}

func entryAtBox(side domain.Side, bars []*domain.Bar, box int, fallback *domain.Bar) Entry {
	bar, ok := lookup.ByBox(bars, box)
	if !ok {
		return entryAt(domain.SideNotFound, fallback)
	}
	return entryAt(side, bar)
}

func entryAt(side domain.Side, bar *domain.Bar) Entry {
	if bar == nil {
		return Entry{Side: side, Price: math.NaN()}
	}
	return Entry{
		Side:  side,
		Box:   bar.Box,
		Price: entryPrice(bar),
		Bar:   bar,
	}
}

func entryPrice(bar *domain.Bar) float64 {
	if bar.Box == 1 {
		return bar.Open
	}
	return bar.Close
}

func afterEntry(entry Entry, day []*domain.Bar) []*domain.Bar {
	if entry.Box == 0 {
		return nil
	}
	return lookup.After(day, entry.Box)
}
