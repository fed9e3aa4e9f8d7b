package tools

import (
	"context"
	"strings"
	"testing"
)

func TestGlobFiles(t *testing.T) {
	kit, root := newTestKit(t, map[string]string{
		"main.go":     "package main\n",
		"src/util.go": "package src\n",
		"src/app.py":  "x = 1\n",
	})

	result := kit.GlobFiles(GlobFilesInput{Pattern: "**/*.go"})
	if result.Status != StatusSuccess {
		t.Fatalf("result = %+v", result)
	}
	paths, ok := result.Data["paths"].([]string)
	if !ok {
		t.Fatalf("paths = %T", result.Data["paths"])
	}
	if len(paths) != 2 {
		t.Fatalf("paths = %v", paths)
	}
	for _, p := range paths {
		if !strings.HasPrefix(p, root) {
			t.Errorf("match outside root: %q", p)
		}
	}
}

func TestGlobFilesTraversalRejected(t *testing.T) {
	kit, _ := newTestKit(t, nil)

	result := kit.GlobFiles(GlobFilesInput{Pattern: "../*.py"})
	assertSecurityError(t, result, "")
	if result.Error.Message != "glob pattern contains parent-directory traversal" {
		t.Errorf("reason = %q", result.Error.Message)
	}
}

func TestGlobFilesOverLengthRejected(t *testing.T) {
	kit, _ := newTestKit(t, nil)

	result := kit.GlobFiles(GlobFilesInput{Pattern: strings.Repeat("a", 600)})
	assertSecurityError(t, result, "")
}

func TestGlobFilesExplicitBase(t *testing.T) {
	kit, _ := newTestKit(t, map[string]string{
		"src/util.go": "package src\n",
		"main.go":     "package main\n",
	})

	result := kit.GlobFiles(GlobFilesInput{Pattern: "*.go", Path: "src"})
	if result.Status != StatusSuccess {
		t.Fatalf("result = %+v", result)
	}
	if result.Data["count"] != 1 {
		t.Errorf("count = %v", result.Data["count"])
	}
}

func TestSearchContent(t *testing.T) {
	kit, _ := newTestKit(t, map[string]string{
		"a.go":     "package main\n// TODO refactor\n",
		"b.go":     "package main\n",
		"c.py":     "# TODO cleanup\n",
		"data.bin": "TODO not scanned",
	})

	result := kit.SearchContent(context.Background(), SearchContentInput{Pattern: "TODO"})
	if result.Status != StatusSuccess {
		t.Fatalf("result = %+v", result)
	}
	matches, ok := result.Data["matches"].([]Match)
	if !ok {
		t.Fatalf("matches = %T", result.Data["matches"])
	}
	if len(matches) != 2 {
		t.Fatalf("matches = %+v", matches)
	}
	if result.Data["truncated"] != false {
		t.Errorf("truncated = %v", result.Data["truncated"])
	}
}

func TestSearchContentUnsafePattern(t *testing.T) {
	kit, _ := newTestKit(t, map[string]string{"a.go": "aaaa\n"})

	result := kit.SearchContent(context.Background(), SearchContentInput{Pattern: "(a+)+"})
	assertSecurityError(t, result, "")
	if !strings.Contains(result.Error.Message, "backtracking") {
		t.Errorf("reason = %q", result.Error.Message)
	}
}

func TestSearchContentInvalidPattern(t *testing.T) {
	kit, _ := newTestKit(t, nil)

	result := kit.SearchContent(context.Background(), SearchContentInput{Pattern: "[unclosed"})
	assertSecurityError(t, result, "")
}

func TestSearchContentMatchCap(t *testing.T) {
	lines := strings.Repeat("match me\n", 10)
	kit, _ := newTestKit(t, map[string]string{
		"a.go": lines,
		"b.go": lines,
	}, WithMaxMatches(5))

	result := kit.SearchContent(context.Background(), SearchContentInput{Pattern: "match"})
	if result.Status != StatusSuccess {
		t.Fatalf("result = %+v", result)
	}
	if result.Data["count"] != 5 {
		t.Errorf("count = %v", result.Data["count"])
	}
	if result.Data["truncated"] != true {
		t.Errorf("truncated = %v", result.Data["truncated"])
	}
}

func TestSearchContentCanceled(t *testing.T) {
	kit, _ := newTestKit(t, map[string]string{"a.go": "x\n"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := kit.SearchContent(ctx, SearchContentInput{Pattern: "x"})
	if result.Status != StatusError {
		t.Errorf("result = %+v", result)
	}
}

func TestSearchContentSkipsVendoredDirs(t *testing.T) {
	kit, _ := newTestKit(t, map[string]string{
		"a.go":                "needle\n",
		"vendor/dep/v.go":     "needle\n",
		"node_modules/m/x.js": "needle\n",
	})

	result := kit.SearchContent(context.Background(), SearchContentInput{Pattern: "needle"})
	if result.Status != StatusSuccess {
		t.Fatalf("result = %+v", result)
	}
	if result.Data["count"] != 1 {
		t.Errorf("count = %v (vendored dirs searched)", result.Data["count"])
	}
}
