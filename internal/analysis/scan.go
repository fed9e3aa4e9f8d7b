package analysis

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// skipDirs are directory names never descended into during a scan.
var skipDirs = map[string]struct{}{
	".git":         {},
	".hg":          {},
	".svn":         {},
	".idea":        {},
	".vscode":      {},
	"node_modules": {},
	"vendor":       {},
	"dist":         {},
	"build":        {},
	"target":       {},
	"__pycache__":  {},
	".venv":        {},
	"venv":         {},
}

// SkippedDir reports whether a directory name is on the scan skip list.
func SkippedDir(name string) bool {
	_, ok := skipDirs[name]
	return ok
}

// LanguageCount aggregates files and lines for one language.
type LanguageCount struct {
	Files int `json:"files"`
	Lines int `json:"lines"`
}

// Report is the result of scanning a directory tree.
type Report struct {
	Root      string                   `json:"root"`
	Files     int                      `json:"files"`
	Lines     int                      `json:"lines"`
	CodeLines int                      `json:"code_lines"`
	Languages map[string]LanguageCount `json:"languages"`
	Skipped   int                      `json:"skipped"`
	Failed    int                      `json:"failed"`
	StartedAt time.Time                `json:"started_at"`
	Duration  time.Duration            `json:"duration"`
}

// LanguageNames returns the report's language names sorted by line count
// descending, ties broken alphabetically.
func (r *Report) LanguageNames() []string {
	names := make([]string, 0, len(r.Languages))
	for name := range r.Languages {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		li, lj := r.Languages[names[i]].Lines, r.Languages[names[j]].Lines
		if li != lj {
			return li > lj
		}
		return names[i] < names[j]
	})
	return names
}

// Scan walks a directory tree and aggregates per-language metrics.
// Directories on the skip list are not descended into; files with an
// unrecognized extension are counted as skipped. Per-file counting fans
// out on a bounded errgroup.
func (a *Analyzer) Scan(ctx context.Context, dir string) (*Report, error) {
	if verdict := a.validator.ValidateDirPath(dir, true); !verdict.Allowed {
		return nil, fmt.Errorf("%w: %s", ErrPathRejected, verdict.Reason)
	}
	resolved, err := a.validator.Resolver().Resolve(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving directory: %w", err)
	}

	report := &Report{
		Root:      resolved,
		Languages: make(map[string]LanguageCount),
		StartedAt: time.Now(),
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)

	walkErr := filepath.WalkDir(resolved, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			mu.Lock()
			report.Failed++
			mu.Unlock()
			return nil
		}
		if gctx.Err() != nil {
			return gctx.Err()
		}
		if d.IsDir() {
			if _, skip := skipDirs[d.Name()]; skip && path != resolved {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		lang := a.DetectLanguage(path)
		if lang == "" {
			mu.Lock()
			report.Skipped++
			mu.Unlock()
			return nil
		}

		g.Go(func() error {
			m, err := a.FileMetrics(path)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.Failed++
				a.logger.Debug("file metrics failed", "path", path, "error", err)
				return nil
			}
			report.Files++
			report.Lines += m.TotalLines
			report.CodeLines += m.CodeLines
			count := report.Languages[lang]
			count.Files++
			count.Lines += m.TotalLines
			report.Languages[lang] = count
			return nil
		})
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if walkErr != nil {
		return nil, fmt.Errorf("walking directory: %w", walkErr)
	}

	report.Duration = time.Since(report.StartedAt)
	a.logger.Info("scan complete",
		"root", resolved,
		"files", report.Files,
		"lines", report.Lines,
		"duration", report.Duration,
	)
	return report, nil
}
