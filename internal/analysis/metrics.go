package analysis

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// FileMetrics holds the line and byte counts for a single file.
type FileMetrics struct {
	Path         string `json:"path"`
	Language     string `json:"language,omitempty"`
	TotalLines   int    `json:"total_lines"`
	CodeLines    int    `json:"code_lines"`
	CommentLines int    `json:"comment_lines"`
	BlankLines   int    `json:"blank_lines"`
	Bytes        int64  `json:"bytes"`
}

// maxLineBytes bounds the scanner buffer; minified or generated files
// can carry very long single lines.
const maxLineBytes = 1 << 20

// FileMetrics computes line metrics for one file. The path must pass
// validation first; results are cached per path in the shared store.
func (a *Analyzer) FileMetrics(path string) (FileMetrics, error) {
	if verdict := a.validator.ValidateFilePath(path); !verdict.Allowed {
		return FileMetrics{}, fmt.Errorf("%w: %s", ErrPathRejected, verdict.Reason)
	}

	if a.store != nil {
		if cached, ok := a.store.Metrics(path, a.root); ok {
			if m, ok := cached.(FileMetrics); ok {
				return m, nil
			}
		}
	}

	resolved, err := a.validator.Resolver().Resolve(path)
	if err != nil {
		return FileMetrics{}, fmt.Errorf("resolving path: %w", err)
	}

	m, err := countLines(resolved, a.Meta(path))
	if err != nil {
		return FileMetrics{}, err
	}
	m.Path = path
	m.Language = a.DetectLanguage(path)

	if a.store != nil {
		a.store.SetMetrics(path, m, a.root)
	}
	return m, nil
}

// countLines classifies each line as code, comment, or blank using the
// language's comment markers. A line that mixes code and a trailing
// comment counts as code. Languages without markers count every
// non-blank line as code.
func countLines(path string, meta Meta) (FileMetrics, error) {
	f, err := os.Open(path)
	if err != nil {
		return FileMetrics{}, fmt.Errorf("opening file: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	info, err := f.Stat()
	if err != nil {
		return FileMetrics{}, fmt.Errorf("stating file: %w", err)
	}

	m := FileMetrics{Bytes: info.Size()}
	inBlock := false

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		m.TotalLines++
		line := strings.TrimSpace(scanner.Text())

		switch {
		case inBlock:
			m.CommentLines++
			if meta.BlockClose != "" && strings.Contains(line, meta.BlockClose) {
				inBlock = false
			}
		case line == "":
			m.BlankLines++
		case meta.LineMarker != "" && strings.HasPrefix(line, meta.LineMarker):
			m.CommentLines++
		case meta.BlockOpen != "" && strings.HasPrefix(line, meta.BlockOpen):
			m.CommentLines++
			rest := line[len(meta.BlockOpen):]
			if meta.BlockClose == "" || !strings.Contains(rest, meta.BlockClose) {
				inBlock = true
			}
		default:
			m.CodeLines++
		}
	}
	if err := scanner.Err(); err != nil {
		return FileMetrics{}, fmt.Errorf("reading file: %w", err)
	}
	return m, nil
}
