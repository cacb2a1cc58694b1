package api

import (
	"math"
	"time"

	"playbook-lab/internal/backtest"
	"playbook-lab/internal/domain"
	"playbook-lab/internal/idhash"
	"playbook-lab/internal/metrics"
	"playbook-lab/internal/reporting"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes a failure.
type ErrorDetail struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// BacktestResponse is the result of POST /api/v1/backtests.
type BacktestResponse struct {
	ConfigID string       `json:"config_id"`
	ModelID  string       `json:"model_id"`
	Days     int          `json:"days"`
	Rows     []DayRow     `json:"rows"`
	Summary  *SummaryView `json:"summary"`
}

// DayRow is one row of the day table. Undefined levels are null.
type DayRow struct {
	ID         string       `json:"id"`
	Date       string       `json:"date"`
	Time       string       `json:"time"`
	Open       float64      `json:"open"`
	High       float64      `json:"high"`
	Low        float64      `json:"low"`
	Close      float64      `json:"close"`
	Box        int          `json:"box"`
	DayOpen    *float64     `json:"day_open"`
	VAH        *float64     `json:"vah"`
	VAL        *float64     `json:"val"`
	UnjustMax  *float64     `json:"unjust_max"`
	UnjustMin  *float64     `json:"unjust_min"`
	Candle     string       `json:"candle"`
	Scenario   int          `json:"scenario"`
	Entry      string       `json:"entry"`
	EntryPrice *float64     `json:"entry_price"`
	Targets    []TargetView `json:"targets"`
	StopBox    int          `json:"stop_box,omitempty"`
	Total      float64      `json:"total"`
	Running    float64      `json:"running"`
}

// TargetView is the outcome of one target.
type TargetView struct {
	Index    int     `json:"index"`
	ExitBox  int     `json:"exit_box,omitempty"`
	Quantity int     `json:"quantity"`
	Result   float64 `json:"result"`
}

// SummaryView carries the derived tables.
type SummaryView struct {
	Monthly []MonthView   `json:"monthly"`
	Weekday []WeekdayView `json:"weekday"`
	Yearly  []YearView    `json:"yearly"`
	Annual  []StatsView   `json:"annual"`
	Period  StatsView     `json:"period"`
}

// MonthView is one row of the monthly table.
type MonthView struct {
	Label     string  `json:"label"`
	Year      int     `json:"year"`
	Month     int     `json:"month"`
	Total     float64 `json:"total"`
	ExpMaxNeg float64 `json:"exp_max_neg"`
	Days      int     `json:"days"`
}

// WeekdayView is one column of the weekday table.
type WeekdayView struct {
	Weekday string  `json:"weekday"`
	Total   float64 `json:"total"`
	Days    int     `json:"days"`
}

// YearView is one per-year total.
type YearView struct {
	Year  int     `json:"year"`
	Total float64 `json:"total"`
}

// StatsView are the statistics of a period.
type StatsView struct {
	Label             string  `json:"label"`
	Start             string  `json:"start,omitempty"`
	End               string  `json:"end,omitempty"`
	Days              int     `json:"days"`
	ProfitableDays    int     `json:"profitable_days"`
	NonProfitableDays int     `json:"non_profitable_days"`
	Total             float64 `json:"total"`
	GrossGains        float64 `json:"gross_gains"`
	GrossLosses       float64 `json:"gross_losses"`
	HitRate           float64 `json:"hit_rate"`
	ProfitFactor      float64 `json:"profit_factor"`
	Payoff            float64 `json:"payoff"`
	AvgDay            float64 `json:"avg_day"`
	AvgMonth          float64 `json:"avg_month"`
	AvgWin            float64 `json:"avg_win"`
	AvgLoss           float64 `json:"avg_loss"`
	StdDev            float64 `json:"std_dev"`
	VolatilityRatio   float64 `json:"volatility_ratio"`
	Volatility        string  `json:"volatility"`
	MaxDrawdown       float64 `json:"max_drawdown"`
	RecoveryFactor    float64 `json:"recovery_factor"`
	LongestWin        int     `json:"longest_win"`
	LongestWinStart   string  `json:"longest_win_start,omitempty"`
	LongestLoss       int     `json:"longest_loss"`
	LongestLossStart  string  `json:"longest_loss_start,omitempty"`
}

// NewBacktestResponse converts a run result into its JSON shape.
func NewBacktestResponse(res *backtest.Result) BacktestResponse {
	rows := make([]DayRow, len(res.Rows))
	for i := range res.Rows {
		rows[i] = NewDayRow(res.ConfigID, &res.Rows[i])
	}
	summary := res.Summary
	if summary == nil {
		summary = metrics.Summarize(res.Rows)
	}
	return BacktestResponse{
		ConfigID: res.ConfigID,
		ModelID:  res.ModelID,
		Days:     len(rows),
		Rows:     rows,
		Summary:  NewSummaryView(summary),
	}
}

// NewDayRow converts one table row. The id is stable for a config, day and entry box.
func NewDayRow(configID string, r *domain.DayResult) DayRow {
	targets := make([]TargetView, len(r.Targets))
	for i, t := range r.Targets {
		targets[i] = TargetView{Index: t.Index, ExitBox: t.ExitBox, Quantity: t.Quantity, Result: t.Result}
	}
	return DayRow{
		ID:         idhash.ComputeRowID(configID, r.Date, r.Box),
		Date:       r.Date.Format("2006-01-02"),
		Time:       reporting.FormatClock(r.Clock),
		Open:       r.Open,
		High:       r.High,
		Low:        r.Low,
		Close:      r.Close,
		Box:        r.Box,
		DayOpen:    nullable(r.DayOpen),
		VAH:        nullable(r.VAH),
		VAL:        nullable(r.VAL),
		UnjustMax:  nullable(r.UnjustMax),
		UnjustMin:  nullable(r.UnjustMin),
		Candle:     string(r.Candle),
		Scenario:   int(r.Scenario),
		Entry:      string(r.Entry),
		EntryPrice: nullable(r.EntryPrice),
		Targets:    targets,
		StopBox:    r.StopBox,
		Total:      r.Total,
		Running:    r.Running,
	}
}

// NewSummaryView converts the derived tables.
func NewSummaryView(s *metrics.Summary) *SummaryView {
	out := &SummaryView{
		Monthly: make([]MonthView, len(s.Monthly)),
		Weekday: make([]WeekdayView, len(s.Weekday)),
		Yearly:  make([]YearView, len(s.Yearly)),
		Annual:  make([]StatsView, len(s.Annual)),
		Period:  newStatsView(&s.Period),
	}
	for i, m := range s.Monthly {
		out.Monthly[i] = MonthView{
			Label:     reporting.MonthLabel(m.Year, m.Month),
			Year:      m.Year,
			Month:     int(m.Month),
			Total:     m.Total,
			ExpMaxNeg: m.ExpMaxNeg,
			Days:      m.TradingDays,
		}
	}
	for i, w := range s.Weekday {
		out.Weekday[i] = WeekdayView{Weekday: reporting.WeekdayLabel(w.Weekday), Total: w.Total, Days: w.Days}
	}
	for i, y := range s.Yearly {
		out.Yearly[i] = YearView{Year: y.Year, Total: y.Total}
	}
	for i := range s.Annual {
		out.Annual[i] = newStatsView(&s.Annual[i])
	}
	return out
}

func newStatsView(p *metrics.PeriodStats) StatsView {
	return StatsView{
		Label:             p.Label,
		Start:             isoDate(p.Start),
		End:               isoDate(p.End),
		Days:              p.Days,
		ProfitableDays:    p.ProfitableDays,
		NonProfitableDays: p.NonProfitableDays,
		Total:             finite(p.Total),
		GrossGains:        finite(p.GrossGains),
		GrossLosses:       finite(p.GrossLosses),
		HitRate:           finite(p.HitRate),
		ProfitFactor:      finite(p.ProfitFactor),
		Payoff:            finite(p.Payoff),
		AvgDay:            finite(p.AvgDay),
		AvgMonth:          finite(p.AvgMonth),
		AvgWin:            finite(p.AvgWin),
		AvgLoss:           finite(p.AvgLoss),
		StdDev:            finite(p.StdDev),
		VolatilityRatio:   finite(p.VolatilityRatio),
		Volatility:        string(p.Volatility),
		MaxDrawdown:       finite(p.MaxDrawdown),
		RecoveryFactor:    finite(p.RecoveryFactor),
		LongestWin:        p.LongestWin.Length,
		LongestWinStart:   isoDate(p.LongestWin.Start),
		LongestLoss:       p.LongestLoss.Length,
		LongestLossStart:  isoDate(p.LongestLoss.Start),
	}
}

func nullable(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// finite maps values JSON cannot carry to 0.
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func isoDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
