package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/koopa0/codescope/internal/analysis"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "data", "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return store
}

func sampleReport(root string) *analysis.Report {
	return &analysis.Report{
		Root:  root,
		Files: 5,
		Lines: 1200,
		Languages: map[string]analysis.LanguageCount{
			"Go":   {Files: 4, Lines: 1100},
			"YAML": {Files: 1, Lines: 100},
		},
		Duration:  87 * time.Millisecond,
		StartedAt: time.Now().UTC().Truncate(time.Second),
	}
}

func TestRecordAndRecentScans(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	recorded, err := store.RecordScan(ctx, sampleReport("/proj"))
	if err != nil {
		t.Fatalf("RecordScan: %v", err)
	}
	if recorded.ID == "" {
		t.Error("recorded scan has no ID")
	}

	scans, err := store.RecentScans(ctx, 1)
	if err != nil {
		t.Fatalf("RecentScans: %v", err)
	}
	if len(scans) != 1 {
		t.Fatalf("len(scans) = %d, want 1", len(scans))
	}

	got := scans[0]
	if got.ID != recorded.ID {
		t.Errorf("ID = %q, want %q", got.ID, recorded.ID)
	}
	if got.Root != "/proj" || got.Files != 5 || got.Lines != 1200 {
		t.Errorf("scan = %+v", got)
	}
	if got.Duration != 87*time.Millisecond {
		t.Errorf("Duration = %v", got.Duration)
	}
	if got.Languages["Go"].Lines != 1100 || got.Languages["YAML"].Files != 1 {
		t.Errorf("Languages = %+v", got.Languages)
	}
}

func TestRecentScansOrderAndLimit(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)
	for i := range 5 {
		r := sampleReport("/proj")
		r.StartedAt = base.Add(time.Duration(i) * time.Minute)
		r.Files = i
		if _, err := store.RecordScan(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	scans, err := store.RecentScans(ctx, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(scans) != 3 {
		t.Fatalf("len(scans) = %d, want 3", len(scans))
	}
	// Newest first.
	if scans[0].Files != 4 || scans[2].Files != 2 {
		t.Errorf("order: got files %d, %d, %d", scans[0].Files, scans[1].Files, scans[2].Files)
	}
}

func TestRecentScansDefaultLimit(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for range DefaultLimit + 5 {
		if _, err := store.RecordScan(ctx, sampleReport("/proj")); err != nil {
			t.Fatal(err)
		}
	}

	scans, err := store.RecentScans(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(scans) != DefaultLimit {
		t.Errorf("len(scans) = %d, want %d", len(scans), DefaultLimit)
	}
}

func TestRecentScansEmpty(t *testing.T) {
	store := openTestStore(t)

	scans, err := store.RecentScans(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(scans) != 0 {
		t.Errorf("len(scans) = %d, want 0", len(scans))
	}
}

func TestOpenTwiceIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	first, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := first.RecordScan(context.Background(), sampleReport("/a")); err != nil {
		t.Fatal(err)
	}
	if err := first.Close(); err != nil {
		t.Fatal(err)
	}

	second, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() {
		_ = second.Close()
	}()

	scans, err := second.RecentScans(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(scans) != 1 {
		t.Errorf("len(scans) = %d after reopen, want 1", len(scans))
	}
}
