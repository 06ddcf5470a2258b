package ui

import (
	"context"
	"errors"
	"log/slog"

	"tableflip.dev/tmpl/pkg/app"
	"tableflip.dev/tmpl/pkg/client"
	"tableflip.dev/tmpl/pkg/logging"
	tuiapp "tableflip.dev/tmpl/pkg/tui/app"
)

// UI runs the full screen template manager.
type UI struct {
	Transport client.Transport
	// Logger must not write to the terminal the UI draws on.
	Logger *slog.Logger
}

func (u *UI) Do(ctx context.Context) error {
	if u.Transport == nil {
		return errors.New("can not start ui, no transport")
	}
	logger := u.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	o := app.NewOrchestrator(u.Transport, app.WithLogger(logger))
	return tuiapp.Run(ctx, o, logger)
}
