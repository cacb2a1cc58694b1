package strategy

import (
	"fmt"

	"playbook-lab/internal/domain"
)

// TrailingStop resolves targets candle by candle with a stop that follows price.
type TrailingStop struct {
	StopPoints float64 // initial stop distance from entry
	Trigger    float64 // favourable excursion that arms the trail
	Distance   float64 // gap kept between the bar extreme and the stop
}

// NewTrailingStop creates a new TrailingStop.
func NewTrailingStop(stopPoints, trigger, distance float64) *TrailingStop {
	return &TrailingStop{
		StopPoints: stopPoints,
		Trigger:    trigger,
		Distance:   distance,
	}
}

// ID returns the model identifier including parameters.
func (s *TrailingStop) ID() string {
	return fmt.Sprintf("TRAILING_STOP_%.0f_trig%.0f_dist%.0f",
		s.StopPoints,
		s.Trigger,
		s.Distance)
}

// Simulate replays the bars after entry. For each bar, in order:
//   - the intrabar extreme against the stop closes at the stop level
//   - the opposite extreme against the target pays the full target
//   - otherwise the stop is tightened once the excursion reaches the trigger
//
// If the day ends first, the trade is marked to the last close.
func (s *TrailingStop) Simulate(trade *Trade, target domain.TargetSpec) Exit {
	if !trade.Open() || target.Points <= 0 {
		return Exit{}
	}

	long := trade.Side == domain.SideLong
	stop := initialStop(trade, s.StopPoints)
	goal := targetPrice(trade, target.Points)

	for _, bar := range trade.After {
		// Check exit conditions (order matters: stop first)
		if (long && bar.Low <= stop) || (!long && bar.High >= stop) {
			return Exit{
				StopBox: bar.Box,
				Result:  toMoney((stop-trade.Price)*trade.Side.Sign(), target.Quantity),
			}
		}

		if (long && bar.High >= goal) || (!long && bar.Low <= goal) {
			return Exit{
				TargetBox: bar.Box,
				Result:    toMoney(target.Points, target.Quantity),
			}
		}

		stop = s.trail(trade, bar, stop)
	}

	return Exit{Result: markToClose(trade, target.Quantity)}
}

// trail returns the stop after bar, never loosening it.
func (s *TrailingStop) trail(trade *Trade, bar *domain.Bar, stop float64) float64 {
	if trade.Side == domain.SideLong {
		if bar.High-trade.Price >= s.Trigger {
			if next := bar.High - s.Distance; next > stop {
				return next
			}
		}
		return stop
	}

	if trade.Price-bar.Low >= s.Trigger {
		if next := bar.Low + s.Distance; next < stop {
			return next
		}
	}
	return stop
}

// StopBox returns the stop box of the last target that was stopped out.
func (s *TrailingStop) StopBox(_ *Trade, exits []Exit) int {
	box := 0
	for _, e := range exits {
		if e.StopBox > 0 {
			box = e.StopBox
		}
	}
	return box
}

// Ensure TrailingStop implements ExitModel
var _ ExitModel = (*TrailingStop)(nil)
