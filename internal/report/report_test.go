package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/koopa0/codescope/internal/analysis"
)

func sampleReport() *analysis.Report {
	return &analysis.Report{
		Root:      "/proj",
		Files:     3,
		Lines:     420,
		CodeLines: 300,
		Languages: map[string]analysis.LanguageCount{
			"Go":     {Files: 2, Lines: 400},
			"Python": {Files: 1, Lines: 20},
		},
		Duration: 125 * time.Millisecond,
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"json", FormatJSON, false},
		{"JSON", FormatJSON, false},
		{" table ", FormatTable, false},
		{"markdown", FormatMarkdown, false},
		{"csv", FormatCSV, false},
		{"", DefaultFormat, false},
		{"xml", "", true},
		{"yaml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, FormatJSON, sampleReport()); err != nil {
		t.Fatal(err)
	}

	var decoded analysis.Report
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Files != 3 || decoded.Languages["Go"].Lines != 400 {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestWriteMarkdown(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, FormatMarkdown, sampleReport()); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	if !strings.Contains(out, "| Language | Files | Lines |") {
		t.Errorf("missing table header:\n%s", out)
	}
	if !strings.Contains(out, "| Go | 2 | 400 |") {
		t.Errorf("missing Go row:\n%s", out)
	}
	// Higher line count sorts first.
	if strings.Index(out, "| Go |") > strings.Index(out, "| Python |") {
		t.Errorf("rows out of order:\n%s", out)
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, FormatCSV, sampleReport()); err != nil {
		t.Fatal(err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("records = %d, want 3", len(records))
	}
	if records[0][0] != "language" {
		t.Errorf("header = %v", records[0])
	}
	if records[1][0] != "Go" || records[1][2] != "400" {
		t.Errorf("first row = %v", records[1])
	}
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, FormatTable, sampleReport()); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	for _, want := range []string{"Language", "Go", "Python", "3 files", "420 lines"} {
		if !strings.Contains(out, want) {
			t.Errorf("table output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, Format("xml"), sampleReport()); err == nil {
		t.Error("unknown format accepted")
	}
}

func TestWriteEmptyReport(t *testing.T) {
	empty := &analysis.Report{Root: "/proj", Languages: map[string]analysis.LanguageCount{}}
	for _, format := range []Format{FormatJSON, FormatMarkdown, FormatTable, FormatCSV} {
		var buf bytes.Buffer
		if err := Write(&buf, format, empty); err != nil {
			t.Errorf("Write(%s, empty) = %v", format, err)
		}
	}
}
