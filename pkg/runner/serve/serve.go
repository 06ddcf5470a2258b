package serve

import (
	"context"
	"log/slog"

	"tableflip.dev/tmpl/pkg/config"
	"tableflip.dev/tmpl/pkg/logging"
	"tableflip.dev/tmpl/pkg/server"
	"tableflip.dev/tmpl/pkg/store"
)

// Serve runs the persistence service until ctx is done.
type Serve struct {
	Config config.ServeConfig
	Logger *slog.Logger
}

func (s *Serve) Do(ctx context.Context) error {
	logger := s.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	p, err := store.Open(s.Config, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := p.Close(); err != nil {
			logger.Warn("closing store", "err", err)
		}
	}()

	logger.Info("store opened", "backend", s.Config.Backend, "path", s.Config.Path)
	if w, ok := p.(store.Watcher); ok {
		s.watch(ctx, w, logger)
	}
	srv := server.New(p,
		server.WithLogger(logger),
		server.WithAllowOrigins(s.Config.AllowOrigins...),
	)
	return srv.Run(ctx, s.Config.Addr)
}

// watch keeps reads fresh when another process writes to the same store.
func (s *Serve) watch(ctx context.Context, w store.Watcher, logger *slog.Logger) {
	events, err := w.Watch(ctx, logger.With("component", "store-watcher"))
	if err != nil {
		logger.Warn("store changes made by other processes will not be seen", "err", err)
		return
	}
	go func() {
		for ev := range events {
			logger.Debug("store changed on disk", "event", ev.Type.String(), "id", ev.ID)
		}
	}()
}
