package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/goleak"

	"github.com/koopa0/codescope/internal/analysis"
	"github.com/koopa0/codescope/internal/cache"
	"github.com/koopa0/codescope/internal/history"
	"github.com/koopa0/codescope/internal/security"
	"github.com/koopa0/codescope/internal/testutil"
	"github.com/koopa0/codescope/internal/tools"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type testServer struct {
	handler http.Handler
	root    string
	store   *cache.Store
	history *history.Store
}

func newTestServer(t *testing.T, cfg ServerConfig) *testServer {
	t.Helper()

	root := t.TempDir()
	files := map[string]string{
		"main.go":    "package main\n\nfunc main() {}\n",
		"src/app.py": "x = 1\n",
	}
	for name, content := range files {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}

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
	hist, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = hist.Close() })

	cfg.Kit = kit
	cfg.Store = store
	cfg.History = hist
	if cfg.Logger == nil {
		cfg.Logger = testutil.DiscardLogger()
	}

	srv, err := NewServer(cfg)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return &testServer{handler: srv.Handler(), root: root, store: store, history: hist}
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body == nil {
		reader = bytes.NewReader(nil)
	} else {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decoding response %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestNewServerRequiresKit(t *testing.T) {
	if _, err := NewServer(ServerConfig{}); err == nil {
		t.Error("NewServer without kit succeeded")
	}
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, ServerConfig{})

	rec := ts.do(t, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decode[map[string]string](t, rec)
	if body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
}

func TestReady(t *testing.T) {
	ts := newTestServer(t, ServerConfig{})

	rec := ts.do(t, http.MethodGet, "/ready", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decode[map[string]any](t, rec)
	if body["cache_namespaces"] != float64(5) {
		t.Errorf("cache_namespaces = %v", body["cache_namespaces"])
	}
}

func TestValidatePathEndpoint(t *testing.T) {
	ts := newTestServer(t, ServerConfig{})

	rec := ts.do(t, http.MethodPost, "/api/v1/validate/path", map[string]string{"path": "main.go"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	verdict := decode[security.Verdict](t, rec)
	if !verdict.Allowed {
		t.Errorf("verdict = %+v", verdict)
	}

	// A denial is still HTTP 200: the verdict is the payload. The
	// reason must not echo the rejected path.
	rec = ts.do(t, http.MethodPost, "/api/v1/validate/path", map[string]string{"path": "/etc/passwd"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	verdict = decode[security.Verdict](t, rec)
	if verdict.Allowed {
		t.Error("verdict allowed /etc/passwd")
	}
	if strings.Contains(verdict.Reason, "/etc/passwd") {
		t.Errorf("reason leaks path: %q", verdict.Reason)
	}
}

func TestValidateRegexEndpoint(t *testing.T) {
	ts := newTestServer(t, ServerConfig{})

	rec := ts.do(t, http.MethodPost, "/api/v1/validate/regex", map[string]string{"pattern": "(a+)+"})
	verdict := decode[security.Verdict](t, rec)
	if rec.Code != http.StatusOK || verdict.Allowed {
		t.Errorf("code = %d, verdict = %+v", rec.Code, verdict)
	}

	rec = ts.do(t, http.MethodPost, "/api/v1/validate/regex", map[string]string{"pattern": "^[a-z]+$"})
	verdict = decode[security.Verdict](t, rec)
	if !verdict.Allowed {
		t.Errorf("verdict = %+v", verdict)
	}
}

func TestValidateGlobEndpoint(t *testing.T) {
	ts := newTestServer(t, ServerConfig{})

	rec := ts.do(t, http.MethodPost, "/api/v1/validate/glob", map[string]string{"pattern": "../*.py"})
	verdict := decode[security.Verdict](t, rec)
	if rec.Code != http.StatusOK || verdict.Allowed {
		t.Errorf("code = %d, verdict = %+v", rec.Code, verdict)
	}
}

func TestScanEndpoint(t *testing.T) {
	ts := newTestServer(t, ServerConfig{})

	rec := ts.do(t, http.MethodPost, "/api/v1/scan", map[string]string{})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	result := decode[tools.Result](t, rec)
	if result.Status != tools.StatusSuccess {
		t.Fatalf("result = %+v", result)
	}

	// The scan was recorded.
	scans, err := ts.history.RecentScans(t.Context(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(scans) != 1 || scans[0].Files != 2 {
		t.Errorf("scans = %+v", scans)
	}
}

func TestScanEndpointMarkdownFormat(t *testing.T) {
	ts := newTestServer(t, ServerConfig{})

	rec := ts.do(t, http.MethodPost, "/api/v1/scan", map[string]string{"format": "markdown"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "| Language | Files | Lines |") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestScanEndpointBadFormat(t *testing.T) {
	ts := newTestServer(t, ServerConfig{})

	rec := ts.do(t, http.MethodPost, "/api/v1/scan", map[string]string{"format": "xml"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestScanEndpointOutsideRoot(t *testing.T) {
	ts := newTestServer(t, ServerConfig{})

	rec := ts.do(t, http.MethodPost, "/api/v1/scan", map[string]string{"path": "/etc"})
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d body = %s", rec.Code, rec.Body.String())
	}
}

func TestSearchEndpoint(t *testing.T) {
	ts := newTestServer(t, ServerConfig{})

	rec := ts.do(t, http.MethodPost, "/api/v1/search", map[string]string{"pattern": "func main"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	result := decode[tools.Result](t, rec)
	if result.Status != tools.StatusSuccess {
		t.Fatalf("result = %+v", result)
	}

	// Unsafe pattern comes back as a security rejection.
	rec = ts.do(t, http.MethodPost, "/api/v1/search", map[string]string{"pattern": "(a+)+"})
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestFilesEndpoint(t *testing.T) {
	ts := newTestServer(t, ServerConfig{})

	rec := ts.do(t, http.MethodGet, "/api/v1/files?path=src", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}

	rec = ts.do(t, http.MethodGet, "/api/v1/files", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestHistoryEndpoint(t *testing.T) {
	ts := newTestServer(t, ServerConfig{})

	// Seed one scan.
	if rec := ts.do(t, http.MethodPost, "/api/v1/scan", map[string]string{}); rec.Code != http.StatusOK {
		t.Fatalf("seed scan status = %d", rec.Code)
	}

	rec := ts.do(t, http.MethodGet, "/api/v1/history?limit=5", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decode[map[string]any](t, rec)
	if body["count"] != float64(1) {
		t.Errorf("count = %v", body["count"])
	}

	rec = ts.do(t, http.MethodGet, "/api/v1/history?limit=bogus", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestCacheStatsEndpoint(t *testing.T) {
	ts := newTestServer(t, ServerConfig{})

	// Populate the cache with one repeated validation.
	ts.do(t, http.MethodPost, "/api/v1/validate/path", map[string]string{"path": "main.go"})
	ts.do(t, http.MethodPost, "/api/v1/validate/path", map[string]string{"path": "main.go"})

	rec := ts.do(t, http.MethodGet, "/api/v1/cache/stats", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Namespaces map[string]cache.NamespaceStats `json:"namespaces"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body.Namespaces) != 5 {
		t.Fatalf("namespaces = %v", body.Namespaces)
	}
	if body.Namespaces["security"].Hits == 0 {
		t.Errorf("security namespace hits = 0: %+v", body.Namespaces["security"])
	}
}

func TestInvalidBody(t *testing.T) {
	ts := newTestServer(t, ServerConfig{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/validate/path", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d", rec.Code)
	}

	// Unknown fields are rejected.
	rec = ts.do(t, http.MethodPost, "/api/v1/validate/path", map[string]string{"path": "x", "bogus": "y"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestRateLimit(t *testing.T) {
	ts := newTestServer(t, ServerConfig{RateBurst: 2})

	paths := []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}
	for i, want := range paths {
		rec := ts.do(t, http.MethodGet, "/api/v1/cache/stats", nil)
		if rec.Code != want {
			t.Errorf("request %d: status = %d, want %d", i+1, rec.Code, want)
		}
	}
}

func TestRequestIDHeader(t *testing.T) {
	ts := newTestServer(t, ServerConfig{})

	rec := ts.do(t, http.MethodGet, "/api/v1/cache/stats", nil)
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header missing")
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("security headers missing")
	}
}
