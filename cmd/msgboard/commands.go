package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vovakirdan/msgboard/internal/app"
	"github.com/vovakirdan/msgboard/internal/config"
	applog "github.com/vovakirdan/msgboard/internal/log"
)

type rootOptions struct {
	configPath string
	logLevel   string

	cfg    config.Config
	logger *zerolog.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "msgboard",
		Short:         "Static message board: HTTP front end and TCP ingest server",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.load(cmd)
		},
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to config.yaml (default ./config.yaml)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(newWebCmd(opts), newIngestCmd(opts), newAllCmd(opts), newListCmd(opts))
	return root
}

func (o *rootOptions) load(cmd *cobra.Command) error {
	bootstrap := applog.New(o.logLevel)

	cfg, path, err := config.Load(bootstrap, o.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config %s: %w", path, err)
	}

	o.cfg = cfg
	o.logger = applog.New(cfg.LogLevel)
	o.logger.Debug().Str("path", path).Msg("configuration loaded")
	return nil
}

func newWebCmd(opts *rootOptions) *cobra.Command {
	var addr, staticDir, ingestAddr string

	cmd := &cobra.Command{
		Use:   "web",
		Short: "Serve static pages and forward form submissions to the ingest server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr != "" {
				opts.cfg.Web.Addr = addr
			}
			if staticDir != "" {
				opts.cfg.Web.StaticDir = staticDir
			}
			if ingestAddr != "" {
				opts.cfg.Web.IngestAddr = ingestAddr
			}

			ctx, stop := signalContext(cmd.Context())
			defer stop()

			logger := applog.Service(opts.logger, "web")
			if err := app.NewWeb(opts.cfg, logger).Run(ctx); err != nil {
				return fmt.Errorf("http server: %w", err)
			}
			logger.Info().Msg("http server stopped")
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address")
	cmd.Flags().StringVar(&staticDir, "static-dir", "", "directory with index.html, message.html, style.css, logo.png, error.html")
	cmd.Flags().StringVar(&ingestAddr, "ingest-addr", "", "ingest server host:port")
	return cmd
}

func newIngestCmd(opts *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Accept JSON messages over TCP and store them",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr != "" {
				opts.cfg.Ingest.Addr = addr
			}

			ctx, stop := signalContext(cmd.Context())
			defer stop()

			logger := applog.Service(opts.logger, "ingest")
			if err := app.NewIngest(opts.cfg, logger).Run(ctx); err != nil {
				return fmt.Errorf("ingest server: %w", err)
			}
			logger.Info().Msg("ingest server stopped")
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "TCP listen address")
	return cmd
}

// newAllCmd runs both services in one process. An ingest startup failure is
// logged but leaves the web server running.
func newAllCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "all",
		Short: "Run the web and ingest servers together",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signalContext(cmd.Context())
			defer stop()

			webLog := applog.Service(opts.logger, "web")
			ingestLog := applog.Service(opts.logger, "ingest")

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				if err := app.NewWeb(opts.cfg, webLog).Run(gctx); err != nil {
					return fmt.Errorf("http server: %w", err)
				}
				return nil
			})
			g.Go(func() error {
				if err := app.NewIngest(opts.cfg, ingestLog).Run(gctx); err != nil {
					ingestLog.Error().Err(err).Msg("ingest server exited")
				}
				return nil
			})
			return g.Wait()
		},
	}
}

func newListCmd(opts *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print stored messages, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signalContext(cmd.Context())
			defer stop()

			records, err := app.ListRecords(ctx, opts.cfg.Store, limit)
			if err != nil {
				return fmt.Errorf("list records: %w", err)
			}
			out := cmd.OutOrStdout()
			for _, rec := range records {
				fmt.Fprintf(out, "%s  %v: %v\n", rec.Date, rec.Username, rec.Message)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of messages, 0 for all")
	return cmd
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
