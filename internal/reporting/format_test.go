package reporting

import (
	"math"
	"testing"
	"time"

	"playbook-lab/internal/metrics"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{12345, "R$ 12.345,00"},
		{1234567.5, "R$ 1.234.567,50"},
		{0, "R$ 0,00"},
		{math.NaN(), ""},
		{math.Inf(1), ""},
	}
	for _, tt := range tests {
		if got := FormatMoney(tt.in); got != tt.want {
			t.Errorf("FormatMoney(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatPrice(t *testing.T) {
	if got := FormatPrice(150590); got != "150.590" {
		t.Errorf("FormatPrice(150590) = %q, want 150.590", got)
	}
	if got := FormatPrice(math.NaN()); got != "" {
		t.Errorf("FormatPrice(NaN) = %q, want empty", got)
	}
}

func TestFormatDateAndClock(t *testing.T) {
	d := time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC)
	if got := FormatDate(d); got != "07-03-2025" {
		t.Errorf("FormatDate = %q", got)
	}
	if got := FormatDate(time.Time{}); got != "" {
		t.Errorf("zero date = %q, want empty", got)
	}
	if got := FormatClock(9*time.Hour + 5*time.Minute + 3*time.Second); got != "09:05:03" {
		t.Errorf("FormatClock = %q", got)
	}
}

func TestFormatBox(t *testing.T) {
	if got := FormatBox(0); got != "" {
		t.Errorf("FormatBox(0) = %q, want empty", got)
	}
	if got := FormatBox(12); got != "12" {
		t.Errorf("FormatBox(12) = %q", got)
	}
}

func TestLabels(t *testing.T) {
	if got := MonthLabel(2025, time.March); got != "Março 2025" {
		t.Errorf("MonthLabel = %q", got)
	}
	if got := WeekdayLabel(time.Monday); got != "Seg" {
		t.Errorf("WeekdayLabel = %q", got)
	}
	if got := VolatilityLabel(metrics.VolatilityModerate); got != "Moderada" {
		t.Errorf("VolatilityLabel = %q", got)
	}
	s := metrics.Streak{Length: 3, Start: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)}
	if got := StreakLabel(s); got != "3 (10-03-2025)" {
		t.Errorf("StreakLabel = %q", got)
	}
	if got := StreakLabel(metrics.Streak{}); got != "" {
		t.Errorf("empty streak = %q", got)
	}
}
