package reporting

import (
	"fmt"
	"strings"
	"time"

	"playbook-lab/internal/domain"
	"playbook-lab/internal/metrics"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Playbook Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	if r.ReportID != "" {
		sb.WriteString(fmt.Sprintf("Report: `%s`\n\n", r.ReportID))
	}
	sb.WriteString(fmt.Sprintf("Config: `%s` | Model: `%s` | Days: %d\n\n", r.ConfigID, r.ModelID, len(r.Rows)))

	writeConfig(&sb, r)

	if r.Summary == nil || len(r.Rows) == 0 {
		sb.WriteString("## Resultados\n\n")
		sb.WriteString("No trading days matched the configuration.\n")
		return sb.String()
	}

	writeStats(&sb, r.Summary)
	writeMonthly(&sb, r.Summary.Monthly)
	writeWeekday(&sb, r.Summary.Weekday)
	writeYearly(&sb, r.Summary.Yearly)
	writeDays(&sb, r.Rows, r.TargetCount())

	return sb.String()
}

func writeConfig(sb *strings.Builder, r *Report) {
	cfg := r.Config

	sb.WriteString("## Configuração\n\n")
	sb.WriteString("| Parâmetro | Valor |\n")
	sb.WriteString("|-----------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Início | %s |\n", orDash(FormatDate(cfg.StartDate))))
	sb.WriteString(fmt.Sprintf("| Fim | %s |\n", orDash(FormatDate(cfg.EndDate))))
	if cfg.Cutoff > 0 {
		sb.WriteString(fmt.Sprintf("| Hora limite | %s |\n", FormatClock(cfg.Cutoff)))
	} else {
		sb.WriteString("| Hora limite | - |\n")
	}
	sb.WriteString(fmt.Sprintf("| Dias da semana | %s |\n", weekdayList(cfg.Weekdays)))
	sb.WriteString(fmt.Sprintf("| Stop (pts) | %s |\n", FormatNumber(cfg.StopPoints, 0)))
	if cfg.Trailing.Enabled {
		sb.WriteString(fmt.Sprintf("| Trailing stop | gatilho %s / distância %s |\n",
			FormatNumber(cfg.Trailing.Trigger, 0), FormatNumber(cfg.Trailing.Distance, 0)))
	} else {
		sb.WriteString("| Trailing stop | desligado |\n")
	}
	for _, t := range r.Targets {
		sb.WriteString(fmt.Sprintf("| Alvo-%d | %s pts x %d |\n", t.Index, FormatNumber(t.Points, 0), t.Quantity))
	}
	sb.WriteString("\n")
}

// writeStats renders the whole period next to each calendar year.
func writeStats(sb *strings.Builder, s *metrics.Summary) {
	cols := append([]metrics.PeriodStats{s.Period}, s.Annual...)

	sb.WriteString("## Estatísticas\n\n")
	sb.WriteString("| Métrica |")
	for _, c := range cols {
		sb.WriteString(" " + c.Label + " |")
	}
	sb.WriteString("\n|---------|")
	for range cols {
		sb.WriteString("------|")
	}
	sb.WriteString("\n")

	statRows := []struct {
		name  string
		value func(p *metrics.PeriodStats) string
	}{
		{"Dias operados", func(p *metrics.PeriodStats) string { return fmt.Sprintf("%d", p.Days) }},
		{"Dias positivos", func(p *metrics.PeriodStats) string { return fmt.Sprintf("%d", p.ProfitableDays) }},
		{"Dias não positivos", func(p *metrics.PeriodStats) string { return fmt.Sprintf("%d", p.NonProfitableDays) }},
		{"Resultado", func(p *metrics.PeriodStats) string { return FormatMoney(p.Total) }},
		{"Ganhos brutos", func(p *metrics.PeriodStats) string { return FormatMoney(p.GrossGains) }},
		{"Perdas brutas", func(p *metrics.PeriodStats) string { return FormatMoney(p.GrossLosses) }},
		{"Taxa de acerto", func(p *metrics.PeriodStats) string { return FormatPercent(p.HitRate) }},
		{"Fator de lucro", func(p *metrics.PeriodStats) string { return FormatNumber(p.ProfitFactor, 2) }},
		{"Payoff", func(p *metrics.PeriodStats) string { return FormatNumber(p.Payoff, 2) }},
		{"Média dia", func(p *metrics.PeriodStats) string { return FormatMoney(p.AvgDay) }},
		{"Média mês", func(p *metrics.PeriodStats) string { return FormatMoney(p.AvgMonth) }},
		{"Média ganho", func(p *metrics.PeriodStats) string { return FormatMoney(p.AvgWin) }},
		{"Média perda", func(p *metrics.PeriodStats) string { return FormatMoney(p.AvgLoss) }},
		{"Desvio padrão", func(p *metrics.PeriodStats) string { return FormatMoney(p.StdDev) }},
		{"Volatilidade", func(p *metrics.PeriodStats) string {
			return fmt.Sprintf("%s (%s)", VolatilityLabel(p.Volatility), FormatNumber(p.VolatilityRatio, 2))
		}},
		{"Drawdown máximo", func(p *metrics.PeriodStats) string { return FormatMoney(p.MaxDrawdown) }},
		{"Fator de recuperação", func(p *metrics.PeriodStats) string { return FormatNumber(p.RecoveryFactor, 2) }},
		{"Maior sequência de ganhos", func(p *metrics.PeriodStats) string { return orDash(StreakLabel(p.LongestWin)) }},
		{"Maior sequência de perdas", func(p *metrics.PeriodStats) string { return orDash(StreakLabel(p.LongestLoss)) }},
	}

	for _, row := range statRows {
		sb.WriteString("| " + row.name + " |")
		for i := range cols {
			sb.WriteString(" " + row.value(&cols[i]) + " |")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
}

func writeMonthly(sb *strings.Builder, months []metrics.MonthlyResult) {
	sb.WriteString("## Resultado Mensal\n\n")
	sb.WriteString("| Mês | Resultado | Exp Max Neg | Dias |\n")
	sb.WriteString("|-----|-----------|-------------|------|\n")
	for _, m := range months {
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %d |\n",
			MonthLabel(m.Year, m.Month), FormatMoney(m.Total), FormatMoney(m.ExpMaxNeg), m.TradingDays))
	}
	sb.WriteString("\n")
}

func writeWeekday(sb *strings.Builder, days []metrics.WeekdayResult) {
	sb.WriteString("## Resultado por Dia da Semana\n\n")
	var head, sep, vals strings.Builder
	head.WriteString("|")
	sep.WriteString("|")
	vals.WriteString("|")
	for _, d := range days {
		head.WriteString(" " + WeekdayLabel(d.Weekday) + " |")
		sep.WriteString("-----|")
		vals.WriteString(" " + FormatMoney(d.Total) + " |")
	}
	sb.WriteString(head.String() + "\n" + sep.String() + "\n" + vals.String() + "\n\n")
}

func writeYearly(sb *strings.Builder, years []metrics.YearlyResult) {
	sb.WriteString("## Resultado Anual\n\n")
	sb.WriteString("| Ano | Resultado |\n")
	sb.WriteString("|-----|-----------|\n")
	for _, y := range years {
		sb.WriteString(fmt.Sprintf("| %d | %s |\n", y.Year, FormatMoney(y.Total)))
	}
	sb.WriteString("\n")
}

// writeDays renders the day table with display formatting.
func writeDays(sb *strings.Builder, rows []domain.DayResult, n int) {
	sb.WriteString("## Operações\n\n")

	header := []string{
		"Data", "Hora", "Abert", "Máxima", "Mínima", "Fech", "Box", "Abert. Dia",
		"VAH", "VAL", "Max Inj", "Min Inj", "Lado", "Cenário", "Entrada",
	}
	for i := 1; i <= n; i++ {
		header = append(header, fmt.Sprintf("Alvo-%d", i))
	}
	header = append(header, "Stop")
	for i := 1; i <= n; i++ {
		header = append(header, fmt.Sprintf("Add-%d", i), fmt.Sprintf("Res-%d", i))
	}
	header = append(header, "Resultado Total", "Dia-Dia")

	sb.WriteString("| " + strings.Join(header, " | ") + " |\n")
	sb.WriteString("|" + strings.Repeat("---|", len(header)) + "\n")

	for i := range rows {
		r := &rows[i]
		cells := []string{
			FormatDate(r.Date), FormatClock(r.Clock),
			FormatPrice(r.Open), FormatPrice(r.High), FormatPrice(r.Low), FormatPrice(r.Close),
			FormatBox(r.Box), FormatPrice(r.DayOpen),
			FormatPrice(r.VAH), FormatPrice(r.VAL), FormatPrice(r.UnjustMax), FormatPrice(r.UnjustMin),
			string(r.Candle), r.Scenario.String(), SideLabel(r.Entry),
		}
		for j := 0; j < n; j++ {
			cells = append(cells, FormatBox(target(r, j).ExitBox))
		}
		cells = append(cells, FormatBox(r.StopBox))
		for j := 0; j < n; j++ {
			t := target(r, j)
			cells = append(cells, fmt.Sprintf("%d", t.Quantity), FormatMoney(t.Result))
		}
		cells = append(cells, FormatMoney(r.Total), FormatMoney(r.Running))
		sb.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
	sb.WriteString("\n")
}

func weekdayList(days []time.Weekday) string {
	if len(days) == 0 {
		return "todos"
	}
	names := make([]string, len(days))
	for i, d := range days {
		names[i] = WeekdayLabel(d)
	}
	return strings.Join(names, ", ")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
