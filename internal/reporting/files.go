package reporting

import (
	"fmt"
	"os"
	"path/filepath"
)

// Output file names written by WriteFiles.
const (
	MarkdownFile = "PLAYBOOK_REPORT.md"
	CSVFile      = "playbook.csv"
)

// WriteFiles writes the Markdown report and the day table CSV into dir,
// creating it if needed. Returns the written paths.
func WriteFiles(dir string, r *Report) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	mdPath := filepath.Join(dir, MarkdownFile)
	if err := os.WriteFile(mdPath, []byte(RenderMarkdown(r)), 0o644); err != nil {
		return nil, fmt.Errorf("write %s: %w", MarkdownFile, err)
	}

	csvPath := filepath.Join(dir, CSVFile)
	f, err := os.Create(csvPath)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", CSVFile, err)
	}
	if err := WriteCSV(f, r.Rows, r.TargetCount()); err != nil {
		f.Close()
		return nil, fmt.Errorf("write %s: %w", CSVFile, err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("close %s: %w", CSVFile, err)
	}

	return []string{mdPath, csvPath}, nil
}
