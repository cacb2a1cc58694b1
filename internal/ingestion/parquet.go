package ingestion

import (
	"fmt"
	"math"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"

	"playbook-lab/internal/domain"
)

const (
	parquetDate  = "2006-01-02"
	parquetClock = "15:04:05"
)

// barRecord is the Parquet row layout of the bar table.
type barRecord struct {
	Date  string  `parquet:"date"`
	Time  string  `parquet:"time"`
	Box   int64   `parquet:"box"`
	Open  float64 `parquet:"open"`
	High  float64 `parquet:"high"`
	Low   float64 `parquet:"low"`
	Close float64 `parquet:"close"`
}

// indicatorRecord is the Parquet row layout of the indicator table.
// Null levels are undefined.
type indicatorRecord struct {
	Date      string   `parquet:"date"`
	VAH       *float64 `parquet:"vah,optional"`
	VAL       *float64 `parquet:"val,optional"`
	UnjustMin *float64 `parquet:"unjust_min,optional"`
	UnjustMax *float64 `parquet:"unjust_max,optional"`
}

// ReadBarsParquet reads the bar table from a Parquet file.
func ReadBarsParquet(path string) ([]*domain.Bar, error) {
	if err := statInput(path); err != nil {
		return nil, err
	}
	rows, err := parquet.ReadFile[barRecord](path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	bars := make([]*domain.Bar, 0, len(rows))
	for i, r := range rows {
		day, err := time.Parse(parquetDate, r.Date)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w: date %q", i, ErrInvalidRecord, r.Date)
		}
		clock, err := parseClock(r.Time)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		if r.Box < 1 {
			return nil, fmt.Errorf("row %d: %w: box %d", i, ErrInvalidRecord, r.Box)
		}
		bars = append(bars, &domain.Bar{
			Day:   day,
			Clock: clock,
			Box:   int(r.Box),
			Open:  r.Open,
			High:  r.High,
			Low:   r.Low,
			Close: r.Close,
		})
	}
	return bars, nil
}

// ReadIndicatorsParquet reads the daily indicator table from a Parquet file.
func ReadIndicatorsParquet(path string) ([]*domain.DailyIndicators, error) {
	if err := statInput(path); err != nil {
		return nil, err
	}
	rows, err := parquet.ReadFile[indicatorRecord](path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	out := make([]*domain.DailyIndicators, 0, len(rows))
	for i, r := range rows {
		day, err := time.Parse(parquetDate, r.Date)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w: date %q", i, ErrInvalidRecord, r.Date)
		}
		out = append(out, &domain.DailyIndicators{
			Day:       day,
			VAH:       fromNullable(r.VAH),
			VAL:       fromNullable(r.VAL),
			UnjustMin: fromNullable(r.UnjustMin),
			UnjustMax: fromNullable(r.UnjustMax),
		})
	}
	return out, nil
}

// WriteBarsParquet writes bars in the layout ReadBarsParquet expects.
func WriteBarsParquet(path string, bars []*domain.Bar) error {
	rows := make([]barRecord, len(bars))
	for i, b := range bars {
		rows[i] = barRecord{
			Date:  b.Day.Format(parquetDate),
			Time:  formatClock(b.Clock),
			Box:   int64(b.Box),
			Open:  b.Open,
			High:  b.High,
			Low:   b.Low,
			Close: b.Close,
		}
	}
	return parquet.WriteFile(path, rows)
}

// WriteIndicatorsParquet writes indicators in the layout ReadIndicatorsParquet expects.
func WriteIndicatorsParquet(path string, inds []*domain.DailyIndicators) error {
	rows := make([]indicatorRecord, len(inds))
	for i, ind := range inds {
		rows[i] = indicatorRecord{
			Date:      ind.Day.Format(parquetDate),
			VAH:       toNullable(ind.VAH),
			VAL:       toNullable(ind.VAL),
			UnjustMin: toNullable(ind.UnjustMin),
			UnjustMax: toNullable(ind.UnjustMax),
		}
	}
	return parquet.WriteFile(path, rows)
}

func statInput(path string) error {
	if _, err := os.Stat(path); err != nil {
		return openError(path, err)
	}
	return nil
}

func fromNullable(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}

func toNullable(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

func formatClock(d time.Duration) string {
	return time.Time{}.Add(d).Format(parquetClock)
}
