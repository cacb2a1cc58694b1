package strategy

import (
	"playbook-lab/internal/domain"
)

// ExitModel resolves the exit of one target of a day's position.
type ExitModel interface {
	// Simulate replays the post-entry bars for a single target.
	// It holds no state between calls, so targets sharing one entry never interfere.
	Simulate(trade *Trade, target domain.TargetSpec) Exit

	// StopBox returns the box shown in the "Stop" column for the day,
	// given the exits produced for each target.
	StopBox(trade *Trade, exits []Exit) int

	// ID returns model identifier (includes parameters).
	ID() string
}

// Trade is the open position the exits are resolved against.
type Trade struct {
	Side      domain.Side
	Price     float64
	After     []*domain.Bar // bars strictly after the entry box, in box order
	LastClose float64       // close of the day's last bar, used to mark to close
}

// NewTrade builds the trade for an entry over the day's bars.
func NewTrade(entry Entry, day []*domain.Bar) *Trade {
	t := &Trade{
		Side:  entry.Side,
		Price: entry.Price,
		After: afterEntry(entry, day),
	}
	if n := len(day); n > 0 {
		t.LastClose = day[n-1].Close
	}
	return t
}

// Open reports whether the trade carries a long or short position.
func (t *Trade) Open() bool {
	return t != nil && t.Side.Tradable()
}

// Exit is the outcome of one target.
type Exit struct {
	TargetBox int     // box where the target filled, 0 if it did not
	StopBox   int     // box where the stop filled, 0 if it did not
	Result    float64 // currency
}

// ResolveTargets runs model once per target and assembles the row's target columns.
// Targets with non-positive points and days without a position yield a zero result.
func ResolveTargets(model ExitModel, trade *Trade, targets []domain.TargetSpec) ([]domain.TargetOutcome, int) {
	outcomes := make([]domain.TargetOutcome, len(targets))
	exits := make([]Exit, len(targets))

	for i, target := range targets {
		outcomes[i] = domain.TargetOutcome{Index: target.Index}
		if !trade.Open() {
			continue
		}
		outcomes[i].Quantity = target.Quantity
		if target.Points <= 0 {
			continue
		}
		exits[i] = model.Simulate(trade, target)
		outcomes[i].ExitBox = exits[i].TargetBox
		outcomes[i].Result = exits[i].Result
	}

	if !trade.Open() {
		return outcomes, 0
	}
	return outcomes, model.StopBox(trade, exits)
}
