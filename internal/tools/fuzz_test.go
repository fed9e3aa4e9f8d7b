package tools

import (
	"strings"
	"testing"

	"github.com/koopa0/codescope/internal/analysis"
	"github.com/koopa0/codescope/internal/security"
)

// FuzzReadFile tests that arbitrary paths never panic the kit, never
// read outside the root, and never leak the input into error messages.
func FuzzReadFile(f *testing.F) {
	seeds := []string{
		"main.go",
		"../../etc/passwd",
		"/etc/shadow",
		"a\x00b",
		"a．．／b",
		`C:\Windows\System32`,
		"",
		strings.Repeat("../", 50) + "etc/passwd",
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	root := f.TempDir()
	validator, err := security.NewValidator(security.Config{Root: root})
	if err != nil {
		f.Fatal(err)
	}
	analyzer, err := analysis.New(analysis.Config{Validator: validator})
	if err != nil {
		f.Fatal(err)
	}
	kit, err := NewKit(KitConfig{Validator: validator, Analyzer: analyzer})
	if err != nil {
		f.Fatal(err)
	}

	f.Fuzz(func(t *testing.T, path string) {
		result := kit.ReadFile(ReadFileInput{Path: path})

		switch result.Status {
		case StatusSuccess:
			got, ok := result.Data["path"].(string)
			if !ok || !strings.HasPrefix(got, root) {
				t.Errorf("read outside root: input=%q path=%v", path, result.Data["path"])
			}
		case StatusError:
			if result.Error == nil {
				t.Fatalf("error status without error: %+v", result)
			}
			if result.Error.Code == ErrCodeSecurity && len(path) > 3 &&
				strings.Contains(result.Error.Message, path) {
				t.Errorf("security message echoes input: %q", result.Error.Message)
			}
		default:
			t.Fatalf("unknown status %q", result.Status)
		}
	})
}
