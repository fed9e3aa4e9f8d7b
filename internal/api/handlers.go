package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/koopa0/codescope/internal/cache"
	"github.com/koopa0/codescope/internal/history"
	"github.com/koopa0/codescope/internal/log"
	"github.com/koopa0/codescope/internal/report"
	"github.com/koopa0/codescope/internal/tools"
)

// maxBodyBytes caps request bodies; validation inputs are small.
const maxBodyBytes = 1 << 20

type handler struct {
	kit     *tools.Kit
	store   *cache.Store
	history *history.Store
	logger  log.Logger
}

type validatePathRequest struct {
	Path string `json:"path"`
	Base string `json:"base,omitempty"`
}

type patternRequest struct {
	Pattern string `json:"pattern"`
}

type scanRequest struct {
	Path   string `json:"path,omitempty"`
	Format string `json:"format,omitempty"`
}

type searchRequest struct {
	Pattern string `json:"pattern"`
	Path    string `json:"path,omitempty"`
}

// decodeBody decodes a bounded JSON body. A false return means the
// error response has already been written.
func (h *handler) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "body_too_large", "request body too large", h.logger)
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid_body", "invalid request body", h.logger)
		return false
	}
	return true
}

// writeResult maps a tool Result onto an HTTP response.
func (h *handler) writeResult(w http.ResponseWriter, result tools.Result) {
	status := http.StatusOK
	if result.Error != nil {
		switch result.Error.Code {
		case tools.ErrCodeSecurity:
			status = http.StatusForbidden
		case tools.ErrCodeNotFound:
			status = http.StatusNotFound
		case tools.ErrCodeValidation:
			status = http.StatusBadRequest
		default:
			status = http.StatusInternalServerError
		}
	}
	writeJSON(w, status, result, h.logger)
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, h.logger)
}

func (h *handler) ready(w http.ResponseWriter, _ *http.Request) {
	body := map[string]any{"status": "ready"}
	if h.store != nil {
		body["cache_namespaces"] = len(h.store.Stats())
	}
	writeJSON(w, http.StatusOK, body, h.logger)
}

func (h *handler) validatePath(w http.ResponseWriter, r *http.Request) {
	var req validatePathRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	verdict := h.kit.Validator().ValidateFilePathIn(req.Base, req.Path)
	writeJSON(w, http.StatusOK, verdict, h.logger)
}

func (h *handler) validateRegex(w http.ResponseWriter, r *http.Request) {
	var req patternRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	verdict := h.kit.Validator().ValidateRegexPattern(req.Pattern)
	writeJSON(w, http.StatusOK, verdict, h.logger)
}

func (h *handler) validateGlob(w http.ResponseWriter, r *http.Request) {
	var req patternRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	verdict := h.kit.Validator().ValidateGlobPattern(req.Pattern)
	writeJSON(w, http.StatusOK, verdict, h.logger)
}

func (h *handler) scan(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	format, err := report.ParseFormat(req.Format)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_format", err.Error(), h.logger)
		return
	}

	result := h.kit.LanguageStats(r.Context(), tools.LanguageStatsInput{Path: req.Path})
	if result.Status != tools.StatusSuccess {
		h.writeResult(w, result)
		return
	}
	if h.history != nil {
		h.recordScan(r, result)
	}

	// The JSON envelope is the API default; other formats return the
	// rendered report as plain text.
	if req.Format == "" || format == report.FormatJSON {
		h.writeResult(w, result)
		return
	}
	scanReport, ok := tools.ReportFromResult(result)
	if !ok {
		writeError(w, http.StatusInternalServerError, "internal_error", "scan produced no report", h.logger)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err := report.Write(w, format, scanReport); err != nil {
		h.logger.Error("failed to render report", "error", err)
	}
}

// recordScan persists a successful scan. Persistence failures are logged
// and do not fail the request.
func (h *handler) recordScan(r *http.Request, result tools.Result) {
	scanReport, ok := tools.ReportFromResult(result)
	if !ok {
		return
	}
	if _, err := h.history.RecordScan(r.Context(), scanReport); err != nil {
		h.logger.Warn("failed to record scan", "error", err)
	}
}

func (h *handler) search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	result := h.kit.SearchContent(r.Context(), tools.SearchContentInput{
		Pattern: req.Pattern,
		Path:    req.Path,
	})
	h.writeResult(w, result)
}

func (h *handler) files(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		writeError(w, http.StatusBadRequest, "missing_path", "path query parameter is required", h.logger)
		return
	}
	h.writeResult(w, h.kit.ListFiles(tools.ListFilesInput{Path: path}))
}

func (h *handler) listHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "invalid_limit", "limit must be a non-negative integer", h.logger)
			return
		}
		limit = parsed
	}

	scans, err := h.history.RecentScans(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list history", "error", err)
		writeError(w, http.StatusInternalServerError, "history_failed", "failed to list scan history", h.logger)
		return
	}
	if scans == nil {
		scans = []*history.Scan{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"scans": scans, "count": len(scans)}, h.logger)
}

func (h *handler) cacheStats(w http.ResponseWriter, _ *http.Request) {
	if h.store == nil {
		writeJSON(w, http.StatusOK, map[string]any{"namespaces": map[string]cache.NamespaceStats{}}, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"namespaces": h.store.Stats()}, h.logger)
}
