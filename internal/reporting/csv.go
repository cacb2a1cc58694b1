package reporting

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"playbook-lab/internal/domain"
)

// CSVDelimiter separates fields; the decimal separator is a comma.
const CSVDelimiter = ';'

// CSVHeader returns the column names of the day table for n targets.
func CSVHeader(n int) []string {
	header := []string{
		"Data", "Hora", "Abert", "Máxima", "Mínima", "Fech", "Box",
		"Abert. Dia", "VAH", "VAL", "Max Inj", "Min Inj",
		"Lado", "Cenário", "Entrada",
	}
	for i := 1; i <= n; i++ {
		header = append(header, fmt.Sprintf("Alvo-%d", i))
	}
	header = append(header, "Stop")
	for i := 1; i <= n; i++ {
		header = append(header, fmt.Sprintf("Add-%d", i))
	}
	for i := 1; i <= n; i++ {
		header = append(header, fmt.Sprintf("Res-%d", i))
	}
	return append(header, "Resultado Total", "Dia-Dia")
}

// WriteCSV writes the day table in the given row order.
// n is the number of target column groups.
func WriteCSV(w io.Writer, rows []domain.DayResult, n int) error {
	cw := csv.NewWriter(w)
	cw.Comma = CSVDelimiter

	if err := cw.Write(CSVHeader(n)); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i := range rows {
		if err := cw.Write(csvRecord(&rows[i], n)); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// RenderCSV renders the day table as a CSV string.
func RenderCSV(rows []domain.DayResult, n int) (string, error) {
	var sb strings.Builder
	if err := WriteCSV(&sb, rows, n); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func csvRecord(r *domain.DayResult, n int) []string {
	rec := []string{
		FormatDate(r.Date),
		FormatClock(r.Clock),
		decimalField(r.Open),
		decimalField(r.High),
		decimalField(r.Low),
		decimalField(r.Close),
		FormatBox(r.Box),
		decimalField(r.DayOpen),
		decimalField(r.VAH),
		decimalField(r.VAL),
		decimalField(r.UnjustMax),
		decimalField(r.UnjustMin),
		string(r.Candle),
		r.Scenario.String(),
		SideLabel(r.Entry),
	}

	for i := 0; i < n; i++ {
		rec = append(rec, FormatBox(target(r, i).ExitBox))
	}
	rec = append(rec, FormatBox(r.StopBox))
	for i := 0; i < n; i++ {
		rec = append(rec, fmt.Sprintf("%d", target(r, i).Quantity))
	}
	for i := 0; i < n; i++ {
		rec = append(rec, moneyField(target(r, i).Result))
	}
	return append(rec, moneyField(r.Total), moneyField(r.Running))
}

func target(r *domain.DayResult, i int) domain.TargetOutcome {
	if i < len(r.Targets) {
		return r.Targets[i]
	}
	return domain.TargetOutcome{Index: i + 1}
}

// decimalField renders v exactly with a decimal comma, "" when undefined.
func decimalField(v float64) string {
	if !finite(v) {
		return ""
	}
	return strings.Replace(decimal.NewFromFloat(v).String(), ".", ",", 1)
}

// moneyField renders v with two decimals and a decimal comma.
func moneyField(v float64) string {
	if !finite(v) {
		return ""
	}
	return strings.Replace(decimal.NewFromFloat(v).StringFixed(2), ".", ",", 1)
}
