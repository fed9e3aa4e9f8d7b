package tools

import (
	"context"
	"testing"

	"github.com/koopa0/codescope/internal/analysis"
)

func TestLanguageStats(t *testing.T) {
	kit, _ := newTestKit(t, map[string]string{
		"main.go":    "package main\nfunc main() {}\n",
		"src/app.py": "x = 1\n",
	})

	result := kit.LanguageStats(context.Background(), LanguageStatsInput{})
	if result.Status != StatusSuccess {
		t.Fatalf("result = %+v", result)
	}

	report, ok := result.Data["report"].(*analysis.Report)
	if !ok {
		t.Fatalf("report = %T", result.Data["report"])
	}
	if report.Files != 2 {
		t.Errorf("Files = %d", report.Files)
	}
	if report.Languages["Go"].Files != 1 || report.Languages["Python"].Files != 1 {
		t.Errorf("Languages = %+v", report.Languages)
	}
}

func TestLanguageStatsOutsideRoot(t *testing.T) {
	kit, _ := newTestKit(t, nil)

	result := kit.LanguageStats(context.Background(), LanguageStatsInput{Path: "/etc"})
	assertSecurityError(t, result, "/etc")
}

func TestFileMetricsTool(t *testing.T) {
	kit, _ := newTestKit(t, map[string]string{
		"main.go": "package main\n\n// comment\n",
	})

	result := kit.FileMetrics(FileMetricsInput{Path: "main.go"})
	if result.Status != StatusSuccess {
		t.Fatalf("result = %+v", result)
	}
	m, ok := result.Data["metrics"].(analysis.FileMetrics)
	if !ok {
		t.Fatalf("metrics = %T", result.Data["metrics"])
	}
	if m.TotalLines != 3 || m.CommentLines != 1 || m.BlankLines != 1 {
		t.Errorf("metrics = %+v", m)
	}
}

func TestFileMetricsToolRejected(t *testing.T) {
	kit, _ := newTestKit(t, nil)

	result := kit.FileMetrics(FileMetricsInput{Path: "../../x"})
	assertSecurityError(t, result, "")
}

func TestValidatePathTool(t *testing.T) {
	kit, _ := newTestKit(t, map[string]string{"main.go": "package main\n"})

	result := kit.ValidatePath(ValidatePathInput{Path: "main.go"})
	if result.Status != StatusSuccess {
		t.Fatalf("result = %+v", result)
	}
	if result.Data["allowed"] != true {
		t.Errorf("allowed = %v", result.Data["allowed"])
	}

	// A denial is still a successful tool call; the verdict is data.
	result = kit.ValidatePath(ValidatePathInput{Path: "../../etc/passwd"})
	if result.Status != StatusSuccess {
		t.Fatalf("result = %+v", result)
	}
	if result.Data["allowed"] != false {
		t.Errorf("allowed = %v", result.Data["allowed"])
	}
	if result.Data["reason"] == "" {
		t.Error("reason is empty for a denial")
	}
}
