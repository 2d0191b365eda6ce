// Package di wires the concept map service together. wire.go declares the
// graph; wire_gen.go is the generated injector.
package di

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"brain2-conceptmap/internal/config"
	"brain2-conceptmap/internal/infrastructure/observability"
	"brain2-conceptmap/internal/repository"
	"brain2-conceptmap/internal/service/conceptmap"
)

// App is the assembled service.
type App struct {
	Config  *config.Config
	Logger  *zap.Logger
	Metrics *observability.Collector
	Session *conceptmap.Session
	Handler http.Handler

	// Watchable is set when the note source can report changes.
	Watchable repository.Watchable
}

// WatchNotes refreshes the session whenever the note source changes. It
// blocks until ctx is done and returns immediately for sources that cannot
// be watched.
func (a *App) WatchNotes(ctx context.Context) error {
	if a.Watchable == nil || !a.Config.Notes.Watch {
		return nil
	}
	return a.Watchable.Watch(ctx, func() {
		if _, err := a.Session.Refresh(ctx); err != nil {
			a.Logger.Warn("Refresh after note change failed", zap.Error(err))
		}
	})
}

// ApplyConfig pushes hot-reloadable settings into the running session.
func (a *App) ApplyConfig(cfg *config.Config) {
	a.Session.Reconfigure(cfg.LayoutConfig(), cfg.ViewSettings())
}
