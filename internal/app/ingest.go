package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/msgboard/internal/config"
	"github.com/vovakirdan/msgboard/internal/ingest"
	"github.com/vovakirdan/msgboard/internal/store"
)

// storeCloseTimeout bounds disconnecting from the datastore on shutdown.
const storeCloseTimeout = 5 * time.Second

// Ingest runs the TCP ingest server behind the datastore startup gate.
type Ingest struct {
	cfg      config.Config
	open     store.Opener
	sleep    func(ctx context.Context, d time.Duration) error
	listener net.Listener
	log      *zerolog.Logger
}

// IngestOption customizes an Ingest service.
type IngestOption func(*Ingest)

// WithStoreOpener replaces the configured datastore driver.
func WithStoreOpener(open store.Opener) IngestOption {
	return func(a *Ingest) { a.open = open }
}

// WithSleep replaces the wait between datastore connection attempts.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) IngestOption {
	return func(a *Ingest) { a.sleep = sleep }
}

// WithListener serves on an already bound listener instead of cfg.Ingest.Addr.
func WithListener(ln net.Listener) IngestOption {
	return func(a *Ingest) { a.listener = ln }
}

// NewIngest constructs the ingest service.
func NewIngest(cfg config.Config, logger *zerolog.Logger, opts ...IngestOption) *Ingest {
	a := &Ingest{
		cfg: cfg,
		log: logger,
	}
	a.open = func(ctx context.Context) (store.Store, error) {
		return OpenStore(ctx, a.cfg.Store)
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run connects to the datastore, then serves until ctx is cancelled. If the
// datastore stays unreachable for the whole retry window, Run returns an
// error wrapping store.ErrUnavailable without binding the port. Cancelling
// ctx during that wait is a clean stop.
func (a *Ingest) Run(ctx context.Context) error {
	st, err := store.ConnectWithRetry(ctx, a.open, store.RetryPolicy{
		Attempts: a.cfg.Store.ConnectAttempts,
		Delay:    a.cfg.Store.ConnectDelay,
		Sleep:    a.sleep,
	}, a.log)
	if err != nil {
		if a.listener != nil {
			a.listener.Close()
		}
		if ctx.Err() != nil {
			a.log.Info().Msg("stopped while waiting for datastore")
			return nil
		}
		return err
	}
	defer a.closeStore(st)

	a.log.Info().Str("driver", a.cfg.Store.Driver).Str("target", storeTarget(a.cfg.Store)).Msg("connected to datastore")

	ln := a.listener
	if ln == nil {
		ln, err = net.Listen("tcp", a.cfg.Ingest.Addr)
		if err != nil {
			return fmt.Errorf("listen %s: %w", a.cfg.Ingest.Addr, err)
		}
	}

	srv := ingest.NewServer(st, ingest.Options{
		ReadTimeout:     a.cfg.Ingest.ReadTimeout,
		MaxPayloadBytes: a.cfg.Ingest.MaxPayloadBytes,
	}, a.log)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Serve(ln)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		a.log.Info().Msg("shutting down ingest server")
		if err := srv.Shutdown(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close listener")
		}
		if err := <-serverErr; !errors.Is(err, ingest.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (a *Ingest) closeStore(st store.Store) {
	ctx, cancel := context.WithTimeout(context.Background(), storeCloseTimeout)
	defer cancel()
	if err := st.Close(ctx); err != nil {
		a.log.Warn().Err(err).Msg("failed to close store")
	} else {
		a.log.Info().Msg("store closed")
	}
}
