// Package report renders scan reports in the service's formatter set:
// json, markdown, table, and csv. Writers take an io.Writer so the CLI,
// the HTTP API, and tests all share one rendering path.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/koopa0/codescope/internal/analysis"
)

// Format selects an output renderer.
type Format string

const (
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatTable    Format = "table"
	FormatCSV      Format = "csv"
)

// DefaultFormat is used when the caller provides no format.
const DefaultFormat = FormatTable

// ParseFormat validates a format name. An empty name selects the
// default.
func ParseFormat(name string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(name))) {
	case "":
		return DefaultFormat, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatMarkdown:
		return FormatMarkdown, nil
	case FormatTable:
		return FormatTable, nil
	case FormatCSV:
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("unknown format %q (json|markdown|table|csv)", name)
	}
}

// Write renders the report in the given format.
func Write(w io.Writer, format Format, r *analysis.Report) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, r)
	case FormatMarkdown:
		return writeMarkdown(w, r)
	case FormatCSV:
		return writeCSV(w, r)
	case FormatTable, "":
		return writeTable(w, r)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func writeJSON(w io.Writer, r *analysis.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

func writeMarkdown(w io.Writer, r *analysis.Report) error {
	var b strings.Builder
	fmt.Fprintf(&b, "# Scan report: %s\n\n", r.Root)
	fmt.Fprintf(&b, "%d files, %d lines (%d code) in %s\n\n", r.Files, r.Lines, r.CodeLines, r.Duration.Round(displayPrecision))
	b.WriteString("| Language | Files | Lines |\n")
	b.WriteString("|----------|------:|------:|\n")
	for _, name := range r.LanguageNames() {
		count := r.Languages[name]
		fmt.Fprintf(&b, "| %s | %d | %d |\n", name, count.Files, count.Lines)
	}
	if r.Skipped > 0 || r.Failed > 0 {
		fmt.Fprintf(&b, "\n%d skipped, %d failed\n", r.Skipped, r.Failed)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeCSV(w io.Writer, r *analysis.Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"language", "files", "lines"}); err != nil {
		return err
	}
	for _, name := range r.LanguageNames() {
		count := r.Languages[name]
		record := []string{name, strconv.Itoa(count.Files), strconv.Itoa(count.Lines)}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
