package tools

import (
	"bufio"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/koopa0/codescope/internal/analysis"
)

// GlobFilesInput defines input for the globFiles tool.
type GlobFilesInput struct {
	Pattern string `json:"pattern" jsonschema:"the glob pattern to match, relative to the project root (doublestar syntax)"`
	Path    string `json:"path,omitempty" jsonschema:"optional base directory, defaults to the project root"`
}

// SearchContentInput defines input for the searchContent tool.
type SearchContentInput struct {
	Pattern string `json:"pattern" jsonschema:"the regular expression to search for"`
	Path    string `json:"path,omitempty" jsonschema:"optional base directory, defaults to the project root"`
}

// Match is one search hit.
type Match struct {
	Path string `json:"path"`
	Line int    `json:"line"`
	Text string `json:"text"`
}

// maxMatchedLine truncates very long matched lines in results.
const maxMatchedLine = 512

// GlobFiles matches a validated glob pattern against the project tree
// and returns only paths inside the boundary.
func (k *Kit) GlobFiles(input GlobFilesInput) Result {
	k.logger.Debug("GlobFiles called", "pattern", input.Pattern)

	if verdict := k.validator.ValidateGlobPattern(input.Pattern); !verdict.Allowed {
		return securityResult(verdict)
	}
	base, result := k.resolveBase(input.Path)
	if result != nil {
		return *result
	}

	matches, err := doublestar.Glob(os.DirFS(base), input.Pattern)
	if err != nil {
		return ioResult("match pattern", err)
	}

	paths := make([]string, 0, len(matches))
	for _, m := range matches {
		full := filepath.Join(base, m)
		if verdict := k.validator.ValidateFilePath(full); verdict.Allowed {
			paths = append(paths, full)
		}
	}

	return successResult(fmt.Sprintf("Matched %d paths", len(paths)), map[string]any{
		"pattern": input.Pattern,
		"paths":   paths,
		"count":   len(paths),
	})
}

// SearchContent runs a validated regex over the tree under the base
// directory. Results are capped; truncation is flagged rather than
// silent. The wall-clock budget is the caller's context.
func (k *Kit) SearchContent(ctx context.Context, input SearchContentInput) Result {
	k.logger.Debug("SearchContent called", "pattern", input.Pattern)

	if verdict := k.validator.ValidateRegexPattern(input.Pattern); !verdict.Allowed {
		return securityResult(verdict)
	}
	re, err := regexp.Compile(input.Pattern)
	if err != nil {
		// Validation already compiled the pattern once.
		return internalResult(err)
	}
	base, result := k.resolveBase(input.Path)
	if result != nil {
		return *result
	}

	var (
		matches   []Match
		truncated bool
	)
	walkErr := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if analysis.SkippedDir(d.Name()) && path != base {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		// Only recognized source files are worth grepping; this also
		// keeps binaries out of the scan.
		if k.analyzer.DetectLanguage(path) == "" {
			return nil
		}
		if verdict := k.validator.ValidateFilePath(path); !verdict.Allowed {
			return nil
		}

		found, err := searchFile(path, re, k.maxMatches-len(matches))
		if err != nil {
			return nil
		}
		matches = append(matches, found...)
		if len(matches) >= k.maxMatches {
			truncated = true
			return filepath.SkipAll
		}
		return nil
	})
	if walkErr != nil {
		if ctx.Err() != nil {
			return validationResult("search canceled: " + ctx.Err().Error())
		}
		return ioResult("walk directory", walkErr)
	}

	return successResult(fmt.Sprintf("Found %d matches", len(matches)), map[string]any{
		"pattern":   input.Pattern,
		"matches":   matches,
		"count":     len(matches),
		"truncated": truncated,
	})
}

// resolveBase validates and resolves the optional base directory,
// defaulting to the project root. The second return value is non-nil on
// failure.
func (k *Kit) resolveBase(path string) (string, *Result) {
	if path == "" {
		root := k.validator.Root()
		if root == "" {
			r := validationResult("no project root configured and no path given")
			return "", &r
		}
		return root, nil
	}
	if verdict := k.validator.ValidateDirPath(path, true); !verdict.Allowed {
		r := securityResult(verdict)
		return "", &r
	}
	resolved, err := k.validator.Resolver().Resolve(path)
	if err != nil {
		r := internalResult(err)
		return "", &r
	}
	return resolved, nil
}

// searchFile scans one file line by line, returning at most limit
// matches.
func searchFile(path string, re *regexp.Regexp, limit int) ([]Match, error) {
	if limit <= 0 {
		return nil, nil
	}

	f, err := os.Open(path) // #nosec G304 -- path validated by the caller
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var matches []Match
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if !re.MatchString(text) {
			continue
		}
		if len(text) > maxMatchedLine {
			text = text[:maxMatchedLine]
		}
		matches = append(matches, Match{Path: path, Line: line, Text: strings.TrimSpace(text)})
		if len(matches) >= limit {
			break
		}
	}
	return matches, scanner.Err()
}
