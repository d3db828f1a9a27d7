package app

import (
	"context"
	stdhttp "net/http"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/msgboard/internal/config"
	"github.com/vovakirdan/msgboard/internal/relay"
	transporthttp "github.com/vovakirdan/msgboard/internal/transport/http"
)

// Web runs the static/form HTTP server.
type Web struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	log             *zerolog.Logger
}

// NewWeb constructs the HTTP service. It keeps no state between requests.
func NewWeb(cfg config.Config, logger *zerolog.Logger) *Web {
	if info, err := os.Stat(cfg.Web.StaticDir); err != nil || !info.IsDir() {
		logger.Warn().Str("static_dir", cfg.Web.StaticDir).Msg("static directory not found, pages will 404")
	}

	sender := relay.NewClient(cfg.Web.IngestAddr, cfg.Web.DialTimeout, logger)
	server := transporthttp.NewServer(cfg.Web, sender, os.DirFS(cfg.Web.StaticDir), logger)

	return &Web{
		server:          server,
		shutdownTimeout: cfg.Web.ShutdownTimeout,
		log:             logger,
	}
}

// Run starts the HTTP server and blocks until context cancellation or fatal error.
func (a *Web) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go func() {
		a.log.Info().Str("addr", a.server.Addr).Msg("http server listening")
		if err := a.server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return <-serverErr
	}
}
