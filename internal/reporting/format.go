package reporting

import (
	"fmt"
	"math"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"playbook-lab/internal/domain"
	"playbook-lab/internal/metrics"
)

// Display helpers never fail: undefined values render as "".

var printer = message.NewPrinter(language.BrazilianPortuguese)

var monthNames = [...]string{
	"Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho",
	"Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro",
}

var weekdayNames = [...]string{"Dom", "Seg", "Ter", "Qua", "Qui", "Sex", "Sáb"}

// FormatMoney renders a currency value as "R$ 1.234,00".
func FormatMoney(v float64) string {
	if !finite(v) {
		return ""
	}
	return "R$ " + printer.Sprint(number.Decimal(v, number.Scale(2)))
}

// FormatPrice renders a price with thousands grouping and no decimals: 150590 -> "150.590".
func FormatPrice(v float64) string {
	if !finite(v) {
		return ""
	}
	return printer.Sprint(number.Decimal(v, number.Scale(0)))
}

// FormatNumber renders v with the given number of decimals.
func FormatNumber(v float64, decimals int) string {
	if !finite(v) {
		return ""
	}
	return printer.Sprint(number.Decimal(v, number.Scale(decimals)))
}

// FormatPercent renders a ratio as a percentage with one decimal: 0.5 -> "50,0%".
func FormatPercent(ratio float64) string {
	if !finite(ratio) {
		return ""
	}
	return FormatNumber(ratio*100, 1) + "%"
}

// FormatDate renders a day as "dd-mm-YYYY".
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02-01-2006")
}

// FormatClock renders a wall-clock offset as "HH:MM:SS".
func FormatClock(d time.Duration) string {
	if d < 0 {
		return ""
	}
	d = d.Round(time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", int(d.Hours()), int(d.Minutes())%60, int(d.Seconds())%60)
}

// FormatBox renders a box number, "" for no box.
func FormatBox(box int) string {
	if box <= 0 {
		return ""
	}
	return fmt.Sprintf("%d", box)
}

// MonthLabel returns the month label, e.g. "Março 2025".
func MonthLabel(year int, month time.Month) string {
	if month < time.January || month > time.December {
		return ""
	}
	return fmt.Sprintf("%s %d", monthNames[month-1], year)
}

// WeekdayLabel returns the short weekday name, e.g. "Seg".
func WeekdayLabel(wd time.Weekday) string {
	if wd < time.Sunday || wd > time.Saturday {
		return ""
	}
	return weekdayNames[wd]
}

// VolatilityLabel returns the display name of a volatility band.
func VolatilityLabel(band metrics.VolatilityBand) string {
	switch band {
	case metrics.VolatilityControlled:
		return "Controlada"
	case metrics.VolatilityModerate:
		return "Moderada"
	case metrics.VolatilityHigh:
		return "Alta"
	default:
		return ""
	}
}

// SideLabel returns the entry label of the "Entrada" column.
func SideLabel(s domain.Side) string {
	return string(s)
}

// StreakLabel renders a streak as "3 (10-03-2025)", "" when empty.
func StreakLabel(s metrics.Streak) string {
	if s.Length == 0 {
		return ""
	}
	return fmt.Sprintf("%d (%s)", s.Length, FormatDate(s.Start))
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
