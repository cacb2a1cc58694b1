package metrics

import (
	"math"
	"time"
)

// computeMean calculates arithmetic mean of values.
func computeMean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// computeStddev calculates sample standard deviation (n-1 denominator).
func computeStddev(values []float64, mean float64) float64 {
	n := len(values)
	if n < 2 {
		return 0 // Need at least 2 samples for sample stddev
	}
	sumSq := 0.0
	for _, v := range values {
		diff := v - mean
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq / float64(n-1))
}

// computeCumulative returns the running sum of values.
func computeCumulative(values []float64) []float64 {
	out := make([]float64, len(values))
	sum := 0.0
	for i, v := range values {
		sum += v
		out[i] = sum
	}
	return out
}

// computeMaxDrawdown returns min(cumulative - running peak), a value <= 0.
// The peak starts at the first cumulative value.
func computeMaxDrawdown(cumulative []float64) float64 {
	if len(cumulative) == 0 {
		return 0
	}

	peak := cumulative[0]
	maxDrawdown := 0.0
	for _, c := range cumulative {
		if c > peak {
			peak = c
		}
		if dd := c - peak; dd < maxDrawdown {
			maxDrawdown = dd
		}
	}
	return maxDrawdown
}

// computeProfitFactor returns gains / |losses|, 0 when there are no losses.
func computeProfitFactor(gains, losses float64) float64 {
	if losses == 0 {
		return 0
	}
	return gains / math.Abs(losses)
}

// computeRatio returns num / den, 0 when den is 0.
func computeRatio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

// computePayoff returns |avgWin| / |avgLoss|, 0 when either side is missing.
func computePayoff(avgWin, avgLoss float64) float64 {
	if avgWin == 0 || avgLoss == 0 {
		return 0
	}
	return math.Abs(avgWin) / math.Abs(avgLoss)
}

// computeStreaks finds the longest run of strictly positive and strictly
// negative values. Zero breaks both. Ties keep the earliest run.
// dates and values must be parallel and in chronological order.
func computeStreaks(dates []time.Time, values []float64) (win, loss Streak) {
	var cur Streak
	curSign := 0

	for i, v := range values {
		sign := 0
		switch {
		case v > 0:
			sign = 1
		case v < 0:
			sign = -1
		}

		if sign != curSign || sign == 0 {
			cur = Streak{Start: dates[i]}
			curSign = sign
		}
		if sign == 0 {
			continue
		}
		cur.Length++

		if sign > 0 && cur.Length > win.Length {
			win = cur
		}
		if sign < 0 && cur.Length > loss.Length {
			loss = cur
		}
	}
	return win, loss
}

// classifyVolatility buckets the volatility / average gain ratio.
func classifyVolatility(ratio float64, hasWins bool) VolatilityBand {
	switch {
	case !hasWins:
		return VolatilityHigh
	case ratio <= 1.0:
		return VolatilityControlled
	case ratio <= 2.0:
		return VolatilityModerate
	default:
		return VolatilityHigh
	}
}
