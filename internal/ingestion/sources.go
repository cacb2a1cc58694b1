package ingestion

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"playbook-lab/internal/domain"
)

// ErrUnsupportedFormat is returned for input files that are neither CSV nor Parquet.
var ErrUnsupportedFormat = errors.New("unsupported input format")

// BarSource provides intraday bars from an external source.
type BarSource interface {
	// Fetch returns every bar of the source. Bars may be unordered;
	// Manager enforces (day, box) ordering.
	Fetch(ctx context.Context) ([]*domain.Bar, error)
}

// IndicatorSource provides daily reference levels from an external source.
type IndicatorSource interface {
	Fetch(ctx context.Context) ([]*domain.DailyIndicators, error)
}

// Format is an input file encoding.
type Format string

// Supported formats.
const (
	FormatCSV     Format = "csv"
	FormatParquet Format = "parquet"
)

// DetectFormat picks the decoder from the file extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		return FormatCSV, nil
	case ".parquet":
		return FormatParquet, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// FileBarSource reads bars from a CSV or Parquet file.
type FileBarSource struct {
	Path string
}

// Fetch implements BarSource.
func (s FileBarSource) Fetch(_ context.Context) ([]*domain.Bar, error) {
	format, err := DetectFormat(s.Path)
	if err != nil {
		return nil, err
	}
	if format == FormatParquet {
		return ReadBarsParquet(s.Path)
	}
	return ReadBarsCSV(s.Path)
}

// FileIndicatorSource reads daily indicators from a CSV or Parquet file.
type FileIndicatorSource struct {
	Path string
}

// Fetch implements IndicatorSource.
func (s FileIndicatorSource) Fetch(_ context.Context) ([]*domain.DailyIndicators, error) {
	format, err := DetectFormat(s.Path)
	if err != nil {
		return nil, err
	}
	if format == FormatParquet {
		return ReadIndicatorsParquet(s.Path)
	}
	return ReadIndicatorsCSV(s.Path)
}

var (
	_ BarSource       = FileBarSource{}
	_ IndicatorSource = FileIndicatorSource{}
)
