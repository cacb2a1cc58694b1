package domain

import (
	"math"
	"time"
)

// Bar represents one intraday price observation.
// Corresponds to the bars table in ClickHouse.
type Bar struct {
	Day   time.Time     // trading day, midnight UTC
	Clock time.Duration // wall-clock offset from midnight
	Box   int           // 1-based sequence within the day
	Open  float64
	High  float64
	Low   float64
	Close float64
}

// Timestamp returns the bar's wall-clock instant.
func (b *Bar) Timestamp() time.Time {
	return b.Day.Add(b.Clock)
}

// Direction classifies the candle body.
func (b *Bar) Direction() CandleDirection {
	switch {
	case b.Close > b.Open:
		return CandleUp
	case b.Close < b.Open:
		return CandleDown
	default:
		return CandleFlat
	}
}

// CandleDirection is the informative "Lado" label of a bar.
type CandleDirection string

// Candle direction labels.
const (
	CandleUp   CandleDirection = "Alta"
	CandleDown CandleDirection = "Baixa"
	CandleFlat CandleDirection = "Neutro"
)

// DailyIndicators holds the reference levels of one trading day.
// Corresponds to the daily_indicators table in PostgreSQL.
// Undefined levels are NaN.
type DailyIndicators struct {
	Day       time.Time // trading day, midnight UTC
	VAH       float64   // value-area high
	VAL       float64   // value-area low
	UnjustMin float64   // "Mínima Injusta", lower boundary
	UnjustMax float64   // "Máxima Injusta", upper boundary
}

// UndefinedIndicators returns a record with every level undefined.
// Used for days missing from the indicator table.
func UndefinedIndicators(day time.Time) DailyIndicators {
	nan := math.NaN()
	return DailyIndicators{Day: day, VAH: nan, VAL: nan, UnjustMin: nan, UnjustMax: nan}
}

// TruncateDay normalizes t to midnight UTC of its calendar date.
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ClockOf returns the offset of t from its own midnight.
func ClockOf(t time.Time) time.Duration {
	h, m, s := t.Clock()
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute +
		time.Duration(s)*time.Second + time.Duration(t.Nanosecond())
}
