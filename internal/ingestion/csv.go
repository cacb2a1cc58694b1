package ingestion

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode"

	xunicode "golang.org/x/text/encoding/unicode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"playbook-lab/internal/backtest"
	"playbook-lab/internal/domain"
)

// ErrInvalidRecord is returned for rows that cannot be decoded.
var ErrInvalidRecord = errors.New("invalid record")

// Column aliases, matched after lowercasing and stripping accents.
var (
	colDate      = []string{"data", "dia", "date"}
	colClock     = []string{"hora", "time"}
	colBox       = []string{"box"}
	colOpen      = []string{"abert", "abertura", "open"}
	colHigh      = []string{"maxima", "high"}
	colLow       = []string{"minima", "low"}
	colClose     = []string{"fec", "fech", "fechamento", "close"}
	colVAH       = []string{"vah"}
	colVAL       = []string{"val"}
	colUnjustMin = []string{"minima injusta", "min inj", "unjust_min"}
	colUnjustMax = []string{"maxima injusta", "max inj", "unjust_max"}
)

var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"02-01-2006",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
}

var clockLayouts = []string{
	"15:04:05",
	"15:04",
	"15:04:05.000",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"02/01/2006 15:04:05",
}

// ReadBarsCSV reads the bar table from a CSV export.
// A missing file yields backtest.ErrDataNotFound.
func ReadBarsCSV(path string) ([]*domain.Bar, error) {
	records, err := readTable(path)
	if err != nil {
		return nil, err
	}
	return parseBars(records)
}

// DecodeBarsCSV reads the bar table from r.
func DecodeBarsCSV(r io.Reader) ([]*domain.Bar, error) {
	records, err := decodeTable(r)
	if err != nil {
		return nil, err
	}
	return parseBars(records)
}

// ReadIndicatorsCSV reads the daily indicator table from a CSV export.
// Empty level cells are undefined (NaN).
func ReadIndicatorsCSV(path string) ([]*domain.DailyIndicators, error) {
	records, err := readTable(path)
	if err != nil {
		return nil, err
	}
	return parseIndicators(records)
}

// DecodeIndicatorsCSV reads the daily indicator table from r.
func DecodeIndicatorsCSV(r io.Reader) ([]*domain.DailyIndicators, error) {
	records, err := decodeTable(r)
	if err != nil {
		return nil, err
	}
	return parseIndicators(records)
}

func parseBars(records [][]string) ([]*domain.Bar, error) {
	if len(records) == 0 {
		return nil, nil
	}
	cols := newColumns(records[0])
	iDate, err := cols.require(colDate)
	if err != nil {
		return nil, err
	}
	iBox, err := cols.require(colBox)
	if err != nil {
		return nil, err
	}
	iOpen, err := cols.require(colOpen)
	if err != nil {
		return nil, err
	}
	iHigh, err := cols.require(colHigh)
	if err != nil {
		return nil, err
	}
	iLow, err := cols.require(colLow)
	if err != nil {
		return nil, err
	}
	iClose, err := cols.require(colClose)
	if err != nil {
		return nil, err
	}
	iClock := cols.find(colClock)

	bars := make([]*domain.Bar, 0, len(records)-1)
	for n, rec := range records[1:] {
		line := n + 2
		day, dayClock, err := parseDate(field(rec, iDate))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		clock := dayClock
		if iClock >= 0 {
			if clock, err = parseClock(field(rec, iClock)); err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
		}
		box, err := parseNumber(field(rec, iBox))
		if err != nil || math.IsNaN(box) || box < 1 {
			return nil, fmt.Errorf("line %d: %w: box %q", line, ErrInvalidRecord, field(rec, iBox))
		}

		bar := &domain.Bar{Day: day, Clock: clock, Box: int(box)}
		for _, p := range []struct {
			dst *float64
			idx int
		}{
			{&bar.Open, iOpen}, {&bar.High, iHigh}, {&bar.Low, iLow}, {&bar.Close, iClose},
		} {
			v, err := parseNumber(field(rec, p.idx))
			if err != nil || math.IsNaN(v) {
				return nil, fmt.Errorf("line %d: %w: price %q", line, ErrInvalidRecord, field(rec, p.idx))
			}
			*p.dst = v
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

func parseIndicators(records [][]string) ([]*domain.DailyIndicators, error) {
	if len(records) == 0 {
		return nil, nil
	}
	cols := newColumns(records[0])
	iDate, err := cols.require(colDate)
	if err != nil {
		return nil, err
	}
	// Level columns are optional; a missing column leaves the level undefined.
	iVAH := cols.find(colVAH)
	iVAL := cols.find(colVAL)
	iMin := cols.find(colUnjustMin)
	iMax := cols.find(colUnjustMax)

	out := make([]*domain.DailyIndicators, 0, len(records)-1)
	for n, rec := range records[1:] {
		line := n + 2
		day, _, err := parseDate(field(rec, iDate))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		ind := domain.UndefinedIndicators(day)
		for _, p := range []struct {
			dst *float64
			idx int
		}{
			{&ind.VAH, iVAH}, {&ind.VAL, iVAL}, {&ind.UnjustMin, iMin}, {&ind.UnjustMax, iMax},
		} {
			v, err := parseNumber(field(rec, p.idx))
			if err != nil {
				return nil, fmt.Errorf("line %d: %w: level %q", line, ErrInvalidRecord, field(rec, p.idx))
			}
			*p.dst = v
		}
		out = append(out, &ind)
	}
	return out, nil
}

// readTable opens path and decodes all CSV records.
func readTable(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, openError(path, err)
	}
	defer f.Close()

	records, err := decodeTable(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// decodeTable converts UTF-8 or UTF-16 (BOM) input to UTF-8 and parses it
// with the delimiter found on the header line.
func decodeTable(r io.Reader) ([][]string, error) {
	raw, err := io.ReadAll(transform.NewReader(r, xunicode.BOMOverride(xunicode.UTF8.NewDecoder())))
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	cr := csv.NewReader(bytes.NewReader(raw))
	cr.Comma = detectDelimiter(raw)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	return records, nil
}

// detectDelimiter prefers ';' when the header line has at least as many
// semicolons as commas.
func detectDelimiter(data []byte) rune {
	header := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		header = data[:i]
	}
	semi := bytes.Count(header, []byte{';'})
	if semi > 0 && semi >= bytes.Count(header, []byte{','}) {
		return ';'
	}
	return ','
}

func openError(path string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", backtest.ErrDataNotFound, path)
	}
	return fmt.Errorf("open %s: %w", path, err)
}

type columns map[string]int

func newColumns(header []string) columns {
	cols := make(columns, len(header))
	for i, name := range header {
		key := normalizeHeader(name)
		if _, dup := cols[key]; !dup {
			cols[key] = i
		}
	}
	return cols
}

func (c columns) find(aliases []string) int {
	for _, a := range aliases {
		if i, ok := c[a]; ok {
			return i
		}
	}
	return -1
}

func (c columns) require(aliases []string) (int, error) {
	if i := c.find(aliases); i >= 0 {
		return i, nil
	}
	return -1, fmt.Errorf("%w: missing column %q", ErrInvalidRecord, aliases[0])
}

// normalizeHeader lowercases s and strips accents: "Máxima Injusta" -> "maxima injusta".
func normalizeHeader(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	out = strings.TrimSuffix(strings.TrimSpace(out), ".")
	return strings.ToLower(strings.Join(strings.Fields(out), " "))
}

func field(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(strings.Trim(rec[i], `"`))
}

// parseDate returns the trading day and any clock carried by the cell.
func parseDate(s string) (time.Time, time.Duration, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return domain.TruncateDay(t), domain.ClockOf(t), nil
		}
	}
	return time.Time{}, 0, fmt.Errorf("%w: date %q", ErrInvalidRecord, s)
}

func parseClock(s string) (time.Duration, error) {
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return domain.ClockOf(t), nil
		}
	}
	return 0, fmt.Errorf("%w: time %q", ErrInvalidRecord, s)
}

// parseNumber accepts "150590", "150590.5", "150590,5" and "150.590,5".
// An empty cell is NaN.
func parseNumber(s string) (float64, error) {
	if s == "" {
		return math.NaN(), nil
	}
	dot := strings.LastIndexByte(s, '.')
	comma := strings.LastIndexByte(s, ',')
	switch {
	case comma >= 0 && dot >= 0 && comma > dot:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case comma >= 0 && dot >= 0:
		s = strings.ReplaceAll(s, ",", "")
	case comma >= 0:
		s = strings.Replace(s, ",", ".", 1)
	}
	return strconv.ParseFloat(s, 64)
}
