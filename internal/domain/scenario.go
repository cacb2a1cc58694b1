package domain

import "strconv"

// Scenario classifies a day's opening price against its reference levels.
type Scenario int

// Scenario codes. Order of evaluation lives in strategy.Classify.
const (
	ScenarioUndefined   Scenario = 0 // no entry taken
	ScenarioInsideValue Scenario = 1 // VAL <= open <= VAH, fade the first level touched
	ScenarioBelowValue  Scenario = 2 // unjust min < open < VAL, buy at market
	ScenarioAboveValue  Scenario = 3 // VAH < open < unjust max, sell at market
	ScenarioBelowUnjust Scenario = 4 // open <= unjust min, sell at market
	ScenarioAboveUnjust Scenario = 5 // open >= unjust max, buy at market
)

// String returns the numeric code, as shown in the "Cenário" column.
func (s Scenario) String() string {
	return strconv.Itoa(int(s))
}

// Side is the entry decision for a day.
type Side string

// Entry sides, labelled as in the result table.
const (
	SideNone     Side = ""               // scenario 0
	SideLong     Side = "Compra"         // buy
	SideShort    Side = "Venda"          // sell short
	SideNotFound Side = "Não encontrado" // scenario 1 with no decisive touch
)

// Tradable reports whether the side opens a position.
func (s Side) Tradable() bool {
	return s == SideLong || s == SideShort
}

// Sign returns +1 for long, -1 for short and 0 otherwise.
func (s Side) Sign() float64 {
	switch s {
	case SideLong:
		return 1
	case SideShort:
		return -1
	default:
		return 0
	}
}
