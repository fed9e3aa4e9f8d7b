// Package tools exposes the read-only analysis operations the CLI, the
// HTTP API, and the MCP server all share. Every operation validates its
// inputs through the security engine before touching the filesystem and
// returns the Result envelope instead of raising on untrusted input.
package tools

import (
	"fmt"

	"github.com/koopa0/codescope/internal/analysis"
	"github.com/koopa0/codescope/internal/log"
	"github.com/koopa0/codescope/internal/security"
)

// Defaults for the tunable limits.
const (
	// DefaultMaxFileSize caps ReadFile (10 MB).
	DefaultMaxFileSize = 10 * 1024 * 1024

	// DefaultMaxMatches caps SearchContent results.
	DefaultMaxMatches = 100
)

// KitConfig holds all required dependencies for a Kit.
type KitConfig struct {
	Validator *security.Validator
	Analyzer  *analysis.Analyzer
}

// Kit provides the file, search, and analyze toolsets.
type Kit struct {
	validator   *security.Validator
	analyzer    *analysis.Analyzer
	logger      log.Logger
	maxFileSize int64
	maxMatches  int
}

// Option is a functional option for configuring optional Kit features.
type Option func(*Kit) error

// WithLogger sets an optional logger.
func WithLogger(logger log.Logger) Option {
	return func(k *Kit) error {
		if logger == nil {
			return fmt.Errorf("logger must not be nil")
		}
		k.logger = logger
		return nil
	}
}

// WithMaxFileSize overrides the ReadFile size cap.
func WithMaxFileSize(limit int64) Option {
	return func(k *Kit) error {
		if limit <= 0 {
			return fmt.Errorf("max file size must be positive")
		}
		k.maxFileSize = limit
		return nil
	}
}

// WithMaxMatches overrides the SearchContent match cap.
func WithMaxMatches(limit int) Option {
	return func(k *Kit) error {
		if limit <= 0 {
			return fmt.Errorf("max matches must be positive")
		}
		k.maxMatches = limit
		return nil
	}
}

// NewKit creates a tool kit with all required dependencies.
func NewKit(cfg KitConfig, opts ...Option) (*Kit, error) {
	if cfg.Validator == nil {
		return nil, fmt.Errorf("KitConfig.Validator is required")
	}
	if cfg.Analyzer == nil {
		return nil, fmt.Errorf("KitConfig.Analyzer is required")
	}

	kit := &Kit{
		validator:   cfg.Validator,
		analyzer:    cfg.Analyzer,
		logger:      log.NewNop(),
		maxFileSize: DefaultMaxFileSize,
		maxMatches:  DefaultMaxMatches,
	}

	for _, opt := range opts {
		if err := opt(kit); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}
	return kit, nil
}

// Validator exposes the kit's validator for callers that surface raw
// verdicts (the validate endpoints and CLI subcommand).
func (k *Kit) Validator() *security.Validator {
	return k.validator
}

// Analyzer exposes the kit's analyzer.
func (k *Kit) Analyzer() *analysis.Analyzer {
	return k.analyzer
}
