// Package app provides application initialization and dependency wiring.
//
// App is the core container that builds the component graph: the shared
// verdict cache, the security validator, the analyzer, the tool kit,
// and the optional scan history store. Setup wires them in dependency
// order; Close releases them in reverse.
package app

import (
	"log/slog"

	"github.com/koopa0/codescope/internal/analysis"
	"github.com/koopa0/codescope/internal/cache"
	"github.com/koopa0/codescope/internal/config"
	"github.com/koopa0/codescope/internal/history"
	"github.com/koopa0/codescope/internal/log"
	"github.com/koopa0/codescope/internal/security"
	"github.com/koopa0/codescope/internal/tools"
)

// App is the core application container.
type App struct {
	Config *config.Config
	Logger log.Logger

	// Core services
	Cache     *cache.Store
	Validator *security.Validator
	Analyzer  *analysis.Analyzer
	Kit       *tools.Kit

	// History is nil when history.enabled is false.
	History *history.Store

	otelCleanup func()
}

// Close gracefully shuts down all resources in reverse setup order.
func (a *App) Close() error {
	logger := a.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("shutting down application")

	var firstErr error

	if a.History != nil {
		if err := a.History.Close(); err != nil {
			logger.Warn("closing history store", "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
		a.History = nil
	}

	if a.otelCleanup != nil {
		a.otelCleanup()
		a.otelCleanup = nil
	}

	return firstErr
}
