package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/koopa0/codescope/internal/analysis"
	"github.com/koopa0/codescope/internal/cache"
	"github.com/koopa0/codescope/internal/config"
	"github.com/koopa0/codescope/internal/history"
	"github.com/koopa0/codescope/internal/log"
	"github.com/koopa0/codescope/internal/observability"
	"github.com/koopa0/codescope/internal/security"
	"github.com/koopa0/codescope/internal/tools"
)

// Options tweak Setup behavior per command.
type Options struct {
	// Tracing enables OTLP trace export. Off for one-shot CLI
	// commands, on for serve mode.
	Tracing bool
}

// Setup creates and initializes the application.
// Returns an App with embedded cleanup. Call Close() to release.
func Setup(ctx context.Context, cfg *config.Config, opts Options) (_ *App, retErr error) {
	if cfg == nil {
		return nil, config.ErrConfigNil
	}

	a := &App{Config: cfg}

	// On error, clean up everything already initialized
	defer func() {
		if retErr != nil {
			if err := a.Close(); err != nil {
				slog.Warn("cleanup during setup failure", "error", err)
			}
		}
	}()

	a.Logger = provideLogger(cfg)

	if opts.Tracing {
		a.otelCleanup = provideOtelShutdown(ctx, cfg, a.Logger)
	}

	a.Cache = cache.New(cfg.CacheCapacity)

	validator, err := security.NewValidator(security.Config{
		Root:         cfg.ProjectRoot,
		AllowedRoots: cfg.AllowedRoots,
		Store:        a.Cache,
		Logger:       a.Logger.With("component", "security"),
	})
	if err != nil {
		return nil, fmt.Errorf("creating validator: %w", err)
	}
	a.Validator = validator

	analyzer, err := analysis.New(analysis.Config{
		Validator: validator,
		Store:     a.Cache,
		Logger:    a.Logger.With("component", "analysis"),
	})
	if err != nil {
		return nil, fmt.Errorf("creating analyzer: %w", err)
	}
	a.Analyzer = analyzer

	kit, err := tools.NewKit(tools.KitConfig{
		Validator: validator,
		Analyzer:  analyzer,
	},
		tools.WithLogger(a.Logger.With("component", "tools")),
		tools.WithMaxFileSize(cfg.MaxFileSize),
	)
	if err != nil {
		return nil, fmt.Errorf("creating tool kit: %w", err)
	}
	a.Kit = kit

	if cfg.History.Enabled {
		hist, err := provideHistory(cfg)
		if err != nil {
			return nil, err
		}
		a.History = hist
	}

	return a, nil
}

// provideLogger builds the root logger from config.
func provideLogger(cfg *config.Config) log.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
		level = slog.LevelInfo
	}
	return log.New(log.Config{Level: level, JSON: cfg.Log.JSON})
}

// provideOtelShutdown sets up trace export and returns a teardown that
// flushes pending spans.
func provideOtelShutdown(ctx context.Context, cfg *config.Config, logger log.Logger) func() {
	shutdown, err := observability.Setup(ctx, observability.Config{
		Endpoint:    cfg.Observability.Endpoint,
		Environment: cfg.Observability.Environment,
		ServiceName: cfg.Observability.ServiceName,
	}, logger.With("component", "observability"))
	if err != nil {
		logger.Warn("setting up tracing", "error", err)
		return func() {}
	}

	//nolint:contextcheck // Independent context: shutdown runs during teardown when parent is canceled
	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			logger.Warn("shutting down tracer provider", "error", err)
		}
	}
}

// provideHistory opens the scan history store.
func provideHistory(cfg *config.Config) (*history.Store, error) {
	path := cfg.History.Path
	if path == "" {
		var err error
		path, err = history.DefaultPath()
		if err != nil {
			return nil, fmt.Errorf("resolving history path: %w", err)
		}
	}
	store, err := history.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening history store: %w", err)
	}
	return store, nil
}
