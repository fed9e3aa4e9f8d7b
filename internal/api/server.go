package api

import (
	"errors"
	"net/http"

	"github.com/koopa0/codescope/internal/cache"
	"github.com/koopa0/codescope/internal/history"
	"github.com/koopa0/codescope/internal/log"
	"github.com/koopa0/codescope/internal/tools"
)

// ServerConfig contains configuration for creating the API server.
type ServerConfig struct {
	Logger      log.Logger
	Kit         *tools.Kit     // Required
	Store       *cache.Store   // Optional: nil disables /cache/stats data
	History     *history.Store // Optional: nil disables /history
	CORSOrigins []string       // Allowed origins for CORS
	TrustProxy  bool           // Trust X-Real-IP/X-Forwarded-For headers
	RateBurst   int            // Rate limiter burst size per IP (0 = default 60)
}

// Server is the JSON API HTTP server.
type Server struct {
	mux *http.ServeMux
}

// NewServer creates a new API server with all routes configured.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Kit == nil {
		return nil, errors.New("tool kit is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.NewNop()
	}

	h := &handler{
		kit:     cfg.Kit,
		store:   cfg.Store,
		history: cfg.History,
		logger:  logger,
	}

	mux := http.NewServeMux()

	// Validation: the verdict is the payload, always 200 on a decided
	// input.
	mux.HandleFunc("POST /api/v1/validate/path", h.validatePath)
	mux.HandleFunc("POST /api/v1/validate/regex", h.validateRegex)
	mux.HandleFunc("POST /api/v1/validate/glob", h.validateGlob)

	// Analysis
	mux.HandleFunc("POST /api/v1/scan", h.scan)
	mux.HandleFunc("POST /api/v1/search", h.search)
	mux.HandleFunc("GET /api/v1/files", h.files)

	// History (optional)
	if cfg.History != nil {
		mux.HandleFunc("GET /api/v1/history", h.listHistory)
	}

	mux.HandleFunc("GET /api/v1/cache/stats", h.cacheStats)

	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 60
	}
	rl := newRateLimiter(1.0, burst)

	// Build middleware stack (outermost first):
	//   Recovery → RequestID → Logging → Tracing → CORS → RateLimit → Routes
	var wrapped http.Handler = mux
	wrapped = rateLimitMiddleware(rl, cfg.TrustProxy, logger)(wrapped)
	wrapped = corsMiddleware(cfg.CORSOrigins)(wrapped)
	wrapped = tracingMiddleware()(wrapped)
	wrapped = loggingMiddleware(logger)(wrapped)
	wrapped = requestIDMiddleware()(wrapped)
	wrapped = recoveryMiddleware(logger)(wrapped)

	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		setSecurityHeaders(w)
		wrapped.ServeHTTP(w, r)
	})

	// Health probes bypass the middleware stack.
	topMux := http.NewServeMux()
	topMux.HandleFunc("GET /health", h.health)
	topMux.HandleFunc("GET /ready", h.ready)
	topMux.Handle("/", final)

	return &Server{mux: topMux}, nil
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}
