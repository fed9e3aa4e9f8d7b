package mcp

import (
	"strings"
	"testing"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/goleak"

	"github.com/koopa0/codescope/internal/analysis"
	"github.com/koopa0/codescope/internal/cache"
	"github.com/koopa0/codescope/internal/security"
	"github.com/koopa0/codescope/internal/testutil"
	"github.com/koopa0/codescope/internal/tools"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestKit(t *testing.T) (*tools.Kit, string) {
	t.Helper()

	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{
		"main.go":    "package main\n\nfunc main() {}\n",
		"src/app.py": "x = 1\n",
	})

	store := cache.New(100)
	validator, err := security.NewValidator(security.Config{Root: root, Store: store})
	if err != nil {
		t.Fatal(err)
	}
	analyzer, err := analysis.New(analysis.Config{Validator: validator, Store: store})
	if err != nil {
		t.Fatal(err)
	}
	kit, err := tools.NewKit(tools.KitConfig{Validator: validator, Analyzer: analyzer})
	if err != nil {
		t.Fatal(err)
	}
	return kit, root
}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	kit, _ := newTestKit(t)
	s, err := NewServer(Config{Name: "codescope-test", Version: "0.0.1", Kit: kit})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return s
}

func TestNewServerValidatesConfig(t *testing.T) {
	kit, _ := newTestKit(t)

	cases := []struct {
		name string
		cfg  Config
	}{
		{"missing name", Config{Version: "1.0.0", Kit: kit}},
		{"missing version", Config{Name: "codescope", Kit: kit}},
		{"missing kit", Config{Name: "codescope", Version: "1.0.0"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewServer(tc.cfg); err == nil {
				t.Error("NewServer should fail")
			}
		})
	}
}

func TestReadFileTool(t *testing.T) {
	s := newTestServer(t)

	result, _, err := s.ReadFile(t.Context(), nil, tools.ReadFileInput{Path: "main.go"})
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if result.IsError {
		t.Fatalf("ReadFile should succeed: %v", result.Content)
	}
	text := textOf(t, result)
	if !strings.Contains(text, "package main") {
		t.Errorf("content missing file body: %s", text)
	}
}

func TestReadFileToolRejectsTraversal(t *testing.T) {
	s := newTestServer(t)

	result, _, err := s.ReadFile(t.Context(), nil, tools.ReadFileInput{Path: "../../etc/passwd"})
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !result.IsError {
		t.Fatal("traversal should be rejected")
	}
	text := textOf(t, result)
	if !strings.Contains(text, tools.ErrCodeSecurity) {
		t.Errorf("error text should carry the security code: %s", text)
	}
	if strings.Contains(text, "passwd") {
		t.Errorf("error text must not echo the rejected path: %s", text)
	}
}

func TestListFilesTool(t *testing.T) {
	s := newTestServer(t)

	result, _, err := s.ListFiles(t.Context(), nil, tools.ListFilesInput{Path: "src"})
	if err != nil {
		t.Fatalf("ListFiles: %v", err)
	}
	if result.IsError {
		t.Fatalf("ListFiles should succeed: %v", result.Content)
	}
	if text := textOf(t, result); !strings.Contains(text, "app.py") {
		t.Errorf("listing missing entries: %s", text)
	}
}

func TestGetFileInfoTool(t *testing.T) {
	s := newTestServer(t)

	result, _, err := s.GetFileInfo(t.Context(), nil, tools.FileInfoInput{Path: "main.go"})
	if err != nil {
		t.Fatalf("GetFileInfo: %v", err)
	}
	if result.IsError {
		t.Fatalf("GetFileInfo should succeed: %v", result.Content)
	}
	text := textOf(t, result)
	if !strings.Contains(text, `"language":"Go"`) {
		t.Errorf("info missing language: %s", text)
	}
}

func TestGlobFilesTool(t *testing.T) {
	s := newTestServer(t)

	result, _, err := s.GlobFiles(t.Context(), nil, tools.GlobFilesInput{Pattern: "**/*.py"})
	if err != nil {
		t.Fatalf("GlobFiles: %v", err)
	}
	if result.IsError {
		t.Fatalf("GlobFiles should succeed: %v", result.Content)
	}
	if text := textOf(t, result); !strings.Contains(text, "app.py") {
		t.Errorf("glob missing match: %s", text)
	}
}

func TestSearchContentTool(t *testing.T) {
	s := newTestServer(t)

	result, _, err := s.SearchContent(t.Context(), nil, tools.SearchContentInput{Pattern: "func main"})
	if err != nil {
		t.Fatalf("SearchContent: %v", err)
	}
	if result.IsError {
		t.Fatalf("SearchContent should succeed: %v", result.Content)
	}
	if text := textOf(t, result); !strings.Contains(text, "main.go") {
		t.Errorf("search missing match: %s", text)
	}
}

func TestSearchContentToolRejectsUnsafePattern(t *testing.T) {
	s := newTestServer(t)

	result, _, err := s.SearchContent(t.Context(), nil, tools.SearchContentInput{Pattern: "(a+)+$"})
	if err != nil {
		t.Fatalf("SearchContent: %v", err)
	}
	if !result.IsError {
		t.Fatal("catastrophic pattern should be rejected")
	}
}

func TestLanguageStatsTool(t *testing.T) {
	s := newTestServer(t)

	result, _, err := s.LanguageStats(t.Context(), nil, tools.LanguageStatsInput{})
	if err != nil {
		t.Fatalf("LanguageStats: %v", err)
	}
	if result.IsError {
		t.Fatalf("LanguageStats should succeed: %v", result.Content)
	}
	text := textOf(t, result)
	if !strings.Contains(text, "Go") || !strings.Contains(text, "Python") {
		t.Errorf("report missing languages: %s", text)
	}
}

func TestValidatePathTool(t *testing.T) {
	s := newTestServer(t)

	result, _, err := s.ValidatePath(t.Context(), nil, tools.ValidatePathInput{Path: "main.go"})
	if err != nil {
		t.Fatalf("ValidatePath: %v", err)
	}
	if result.IsError {
		t.Fatal("verdict is a payload, not a tool error")
	}
	if text := textOf(t, result); !strings.Contains(text, `"allowed":true`) {
		t.Errorf("verdict missing allowed flag: %s", text)
	}

	result, _, err = s.ValidatePath(t.Context(), nil, tools.ValidatePathInput{Path: "/etc/passwd"})
	if err != nil {
		t.Fatalf("ValidatePath: %v", err)
	}
	if result.IsError {
		t.Fatal("denial is still a successful tool call")
	}
	if text := textOf(t, result); !strings.Contains(text, `"allowed":false`) {
		t.Errorf("verdict missing denial: %s", text)
	}
}

func textOf(t *testing.T, result *sdk.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("result has no content")
	}
	text, ok := result.Content[0].(*sdk.TextContent)
	if !ok {
		t.Fatalf("content is not TextContent: %T", result.Content[0])
	}
	return text.Text
}
