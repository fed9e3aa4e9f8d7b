package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"charm.land/lipgloss/v2"

	"github.com/koopa0/codescope/internal/analysis"
)

// displayPrecision rounds durations for human-facing output.
const displayPrecision = time.Millisecond

// tableStyles holds the terminal styles for the table renderer.
type tableStyles struct {
	Header  lipgloss.Style
	Row     lipgloss.Style
	Summary lipgloss.Style
	Rule    lipgloss.Style
}

func defaultTableStyles() tableStyles {
	return tableStyles{
		Header:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")),
		Row:     lipgloss.NewStyle(),
		Summary: lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		Rule:    lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	}
}

func writeTable(w io.Writer, r *analysis.Report) error {
	styles := defaultTableStyles()

	header := []string{"Language", "Files", "Lines"}
	rows := make([][]string, 0, len(r.Languages))
	for _, name := range r.LanguageNames() {
		count := r.Languages[name]
		rows = append(rows, []string{name, strconv.Itoa(count.Files), strconv.Itoa(count.Lines)})
	}

	widths := columnWidths(header, rows)
	var b strings.Builder

	b.WriteString(styles.Header.Render(formatRow(header, widths)))
	b.WriteString("\n")
	b.WriteString(styles.Rule.Render(strings.Repeat("─", rowWidth(widths))))
	b.WriteString("\n")
	for _, row := range rows {
		b.WriteString(styles.Row.Render(formatRow(row, widths)))
		b.WriteString("\n")
	}

	summary := fmt.Sprintf("%d files, %d lines (%d code) in %s",
		r.Files, r.Lines, r.CodeLines, r.Duration.Round(displayPrecision))
	if r.Skipped > 0 || r.Failed > 0 {
		summary += fmt.Sprintf(", %d skipped, %d failed", r.Skipped, r.Failed)
	}
	b.WriteString(styles.Summary.Render(summary))
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// formatRow left-aligns the first column and right-aligns the numeric
// rest.
func formatRow(cells []string, widths []int) string {
	parts := make([]string, len(cells))
	for i, cell := range cells {
		if i == 0 {
			parts[i] = fmt.Sprintf("%-*s", widths[i], cell)
		} else {
			parts[i] = fmt.Sprintf("%*s", widths[i], cell)
		}
	}
	return strings.Join(parts, "  ")
}

func columnWidths(header []string, rows [][]string) []int {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}
	return widths
}

func rowWidth(widths []int) int {
	total := 2 * (len(widths) - 1)
	for _, w := range widths {
		total += w
	}
	return total
}
