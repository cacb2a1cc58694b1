package main

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"playbook-lab/internal/backtest"
	"playbook-lab/internal/domain"
	"playbook-lab/internal/metrics"
	"playbook-lab/internal/reporting"
)

var (
	gainColor  = lipgloss.Color("#00FF87")
	lossColor  = lipgloss.Color("#FF5555")
	mutedColor = lipgloss.Color("#6272A4")

	titleStyle  = lipgloss.NewStyle().Bold(true).MarginTop(1)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	gainStyle   = cellStyle.Foreground(gainColor)
	lossStyle   = cellStyle.Foreground(lossColor)
	mutedStyle  = cellStyle.Foreground(mutedColor)
)

// render draws the summary and day tables for a terminal.
func render(res *backtest.Result) string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Playbook") + "\n")
	sb.WriteString(mutedStyle.Render("config "+res.ConfigID+" | model "+res.ModelID) + "\n")

	if len(res.Rows) == 0 || res.Summary == nil {
		sb.WriteString("\nNo trading days matched the configuration.\n")
		return sb.String()
	}

	sb.WriteString(titleStyle.Render("Estatísticas") + "\n")
	sb.WriteString(statsTable(&res.Summary.Period) + "\n")
	sb.WriteString(titleStyle.Render("Resultado Mensal") + "\n")
	sb.WriteString(monthlyTable(res.Summary.Monthly) + "\n")
	sb.WriteString(titleStyle.Render("Resultado por Dia da Semana") + "\n")
	sb.WriteString(weekdayTable(res.Summary.Weekday) + "\n")
	sb.WriteString(titleStyle.Render("Operações") + "\n")
	sb.WriteString(daysTable(res.Rows) + "\n")
	return sb.String()
}

// newTable colors the money columns by the sign of the matching value in signs.
func newTable(headers []string, rows [][]string, money map[int]bool, signs [][]float64) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(mutedColor)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if !money[col] || row >= len(signs) {
				return cellStyle
			}
			return signStyle(signs[row][col])
		})
}

func signStyle(v float64) lipgloss.Style {
	switch {
	case v > 0:
		return gainStyle
	case v < 0:
		return lossStyle
	default:
		return cellStyle
	}
}

func statsTable(p *metrics.PeriodStats) string {
	rows := [][]string{
		{"Dias operados", reporting.FormatNumber(float64(p.Days), 0)},
		{"Resultado", reporting.FormatMoney(p.Total)},
		{"Taxa de acerto", reporting.FormatPercent(p.HitRate)},
		{"Fator de lucro", reporting.FormatNumber(p.ProfitFactor, 2)},
		{"Payoff", reporting.FormatNumber(p.Payoff, 2)},
		{"Drawdown máximo", reporting.FormatMoney(p.MaxDrawdown)},
		{"Volatilidade", reporting.VolatilityLabel(p.Volatility)},
	}
	signs := make([][]float64, len(rows))
	for i := range signs {
		signs[i] = []float64{0, 0}
	}
	signs[1][1] = p.Total
	return newTable([]string{"Métrica", "Valor"}, rows, map[int]bool{1: true}, signs).String()
}

func monthlyTable(months []metrics.MonthlyResult) string {
	rows := make([][]string, len(months))
	signs := make([][]float64, len(months))
	for i, m := range months {
		rows[i] = []string{
			reporting.MonthLabel(m.Year, m.Month),
			reporting.FormatMoney(m.Total),
			reporting.FormatMoney(m.ExpMaxNeg),
			reporting.FormatNumber(float64(m.TradingDays), 0),
		}
		signs[i] = []float64{0, m.Total, m.ExpMaxNeg, 0}
	}
	return newTable([]string{"Mês", "Resultado", "Exp Max Neg", "Dias"}, rows, map[int]bool{1: true, 2: true}, signs).String()
}

func weekdayTable(days []metrics.WeekdayResult) string {
	rows := make([][]string, len(days))
	signs := make([][]float64, len(days))
	for i, d := range days {
		rows[i] = []string{reporting.WeekdayLabel(d.Weekday), reporting.FormatMoney(d.Total)}
		signs[i] = []float64{0, d.Total}
	}
	return newTable([]string{"Dia", "Resultado"}, rows, map[int]bool{1: true}, signs).String()
}

func daysTable(days []domain.DayResult) string {
	rows := make([][]string, len(days))
	signs := make([][]float64, len(days))
	for i := range days {
		r := &days[i]
		rows[i] = []string{
			reporting.FormatDate(r.Date),
			reporting.FormatClock(r.Clock),
			reporting.FormatBox(r.Box),
			r.Scenario.String(),
			reporting.SideLabel(r.Entry),
			reporting.FormatPrice(r.EntryPrice),
			reporting.FormatBox(r.StopBox),
			reporting.FormatMoney(r.Total),
			reporting.FormatMoney(r.Running),
		}
		signs[i] = []float64{0, 0, 0, 0, 0, 0, 0, r.Total, r.Running}
	}
	headers := []string{"Data", "Hora", "Box", "Cenário", "Lado", "Entrada", "Stop", "Resultado", "Dia-Dia"}
	return newTable(headers, rows, map[int]bool{7: true, 8: true}, signs).String()
}
