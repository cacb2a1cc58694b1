package strategy

import (
	"fmt"

	"playbook-lab/internal/domain"
	"playbook-lab/internal/lookup"
)

// StaticStop resolves targets against a fixed stop.
// Levels are considered crossed when a bar closes through them.
type StaticStop struct {
	StopPoints float64
}

// NewStaticStop creates a new StaticStop.
func NewStaticStop(stopPoints float64) *StaticStop {
	return &StaticStop{StopPoints: stopPoints}
}

// ID returns the model identifier including parameters.
func (s *StaticStop) ID() string {
	return fmt.Sprintf("STATIC_STOP_%.0f", s.StopPoints)
}

// Simulate resolves one target:
//   - neither stop nor target crossed: mark to the last close
//   - target crossed and (no stop, or target box before stop box): full target
//   - otherwise the full stop is paid
func (s *StaticStop) Simulate(trade *Trade, target domain.TargetSpec) Exit {
	if !trade.Open() || target.Points <= 0 {
		return Exit{}
	}

	stopBox := s.stopBox(trade)

	level := targetPrice(trade, target.Points)
	hit := closeAtOrAbove(level)
	if trade.Side == domain.SideShort {
		hit = closeAtOrBelow(level)
	}
	targetBox := lookup.FirstBox(trade.After, hit)

	exit := Exit{TargetBox: targetBox, StopBox: stopBox}
	switch {
	case targetBox == 0 && stopBox == 0:
		exit.Result = markToClose(trade, target.Quantity)
	case targetBox > 0 && (stopBox == 0 || targetBox < stopBox):
		exit.Result = toMoney(target.Points, target.Quantity)
	default:
		exit.Result = toMoney(-s.StopPoints, target.Quantity)
	}
	return exit
}

// StopBox returns the static stop box, independent of the targets.
func (s *StaticStop) StopBox(trade *Trade, _ []Exit) int {
	if !trade.Open() {
		return 0
	}
	return s.stopBox(trade)
}

func (s *StaticStop) stopBox(trade *Trade) int {
	level := initialStop(trade, s.StopPoints)
	hit := closeAtOrBelow(level)
	if trade.Side == domain.SideShort {
		hit = closeAtOrAbove(level)
	}
	return lookup.FirstBox(trade.After, hit)
}

// Ensure StaticStop implements ExitModel
var _ ExitModel = (*StaticStop)(nil)
