package strategy

import (
	"playbook-lab/internal/domain"
)

// toMoney converts a point distance into currency for qty contracts.
func toMoney(points float64, qty int) float64 {
	return points * domain.PointValue * float64(qty)
}

// markToClose closes the trade at the day's last close.
func markToClose(trade *Trade, qty int) float64 {
	return toMoney((trade.LastClose-trade.Price)*trade.Side.Sign(), qty)
}

// initialStop returns the static stop level: entry minus stop points for a long, plus for a short.
func initialStop(trade *Trade, stopPoints float64) float64 {
	return trade.Price - trade.Side.Sign()*stopPoints
}

// targetPrice returns the level where a target of points fills.
func targetPrice(trade *Trade, points float64) float64 {
	return trade.Price + trade.Side.Sign()*points
}

// closeAtOrBelow and closeAtOrAbove are the close-crossing tests of the static model.
func closeAtOrBelow(level float64) func(*domain.Bar) bool {
	return func(b *domain.Bar) bool { return b.Close <= level }
}

func closeAtOrAbove(level float64) func(*domain.Bar) bool {
	return func(b *domain.Bar) bool { return b.Close >= level }
}
