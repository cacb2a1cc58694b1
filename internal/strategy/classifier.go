package strategy

import (
	"math"

	"playbook-lab/internal/domain"
)

// Classify maps the opening price against the day's levels to a scenario.
// Rules are checked in order and the first match wins, so an open sitting
// exactly on an unjust boundary is 4 or 5 even when it is also inside the value area.
func Classify(open float64, ind domain.DailyIndicators) domain.Scenario {
	lo, hi := ind.UnjustMin, ind.UnjustMax
	val, vah := ind.VAL, ind.VAH

	switch {
	case defined(lo) && open <= lo:
		return domain.ScenarioBelowUnjust
	case defined(hi) && open >= hi:
		return domain.ScenarioAboveUnjust
	case defined(val) && defined(vah) && val <= open && open <= vah:
		return domain.ScenarioInsideValue
	case defined(val) && defined(lo) && lo < open && open < val:
		return domain.ScenarioBelowValue
	case defined(vah) && defined(hi) && vah < open && open < hi:
		return domain.ScenarioAboveValue
	default:
		return domain.ScenarioUndefined
	}
}

func defined(level float64) bool {
	return !math.IsNaN(level)
}
