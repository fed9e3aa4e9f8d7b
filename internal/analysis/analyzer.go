package analysis

import (
	"errors"
	"runtime"

	"github.com/koopa0/codescope/internal/cache"
	"github.com/koopa0/codescope/internal/log"
	"github.com/koopa0/codescope/internal/security"
)

// ErrPathRejected reports that the security validator refused a path.
// The wrapped message carries the static rejection reason.
var ErrPathRejected = errors.New("path rejected")

// Config holds the dependencies for an Analyzer.
type Config struct {
	// Validator gates every filesystem access. Required.
	Validator *security.Validator

	// Store receives language, metadata, and metrics caching. Nil
	// disables caching.
	Store *cache.Store

	// Logger receives scan diagnostics. Nil discards them.
	Logger log.Logger

	// Workers bounds the per-file fan-out during Scan. Defaults to
	// GOMAXPROCS when zero.
	Workers int
}

// Analyzer computes language statistics and line metrics for validated
// paths.
type Analyzer struct {
	validator *security.Validator
	store     *cache.Store
	logger    log.Logger
	root      string
	workers   int
}

// New creates an Analyzer.
func New(cfg Config) (*Analyzer, error) {
	if cfg.Validator == nil {
		return nil, errors.New("analysis: validator is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewNop()
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Analyzer{
		validator: cfg.Validator,
		store:     cfg.Store,
		logger:    logger,
		root:      cfg.Validator.Root(),
		workers:   workers,
	}, nil
}
