package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"explorer/internal/api"
	"explorer/internal/config"
	"explorer/internal/engine"
	"explorer/internal/observability"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var debug, reload bool

	cmd := &cobra.Command{
		Use:           "explorer",
		Short:         "Serve the vaccination and income explorer dashboard",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), debug, reload)
		},
	}
	cmd.Flags().BoolVar(&debug, "debug", false, "debug logging and echo debug mode")
	cmd.Flags().BoolVar(&reload, "reload", false, "re-fetch both datasets on SIGHUP")
	return cmd
}

func newLogger(appEnv string, debug bool, level string) zerolog.Logger {
	var logger zerolog.Logger
	if appEnv == "local" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
	} else {
		logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	if debug {
		lvl = zerolog.DebugLevel
	}
	return logger.Level(lvl)
}

func run(parent context.Context, debug, reload bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger(cfg.AppEnv, debug, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	buckets, err := engine.DefaultBuckets()
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid bucket map")
	}
	src := engine.NewHTTPSource(cfg.FetchTimeout)
	urls := engine.URLs{Timeseries: cfg.TimeseriesURL, Demographics: cfg.DemographicsURL}

	// The API is live immediately and answers 503 until the datasets are published.
	h := api.NewHandler(nil, cfg.DefaultPageLimit, &logger)
	e := api.NewServer(h, api.ServerOptions{Debug: debug, RateLimitRPS: cfg.RateLimitRPS}, &logger)

	go func() {
		logger.Info().Msg("loading datasets")
		t0 := time.Now()

		ds, err := engine.LoadDatasets(ctx, src, urls, buckets, &logger)
		if err != nil {
			observability.DatasetReloads.WithLabelValues(observability.StatusFailed).Inc()
			if errors.Is(err, context.Canceled) {
				return
			}
			// No partial dataset is ever served.
			logger.Fatal().Err(err).Msg("failed to load datasets")
		}
		observability.DatasetReloads.WithLabelValues(observability.StatusOK).Inc()
		h.SetData(ds)

		logger.Info().
			Int("locations", len(ds.Locations)).
			Int("dates", len(ds.Axis)).
			Dur("took", time.Since(t0)).
			Msg("datasets ready")
	}()

	if reload {
		go reloadOnHangup(ctx, h, src, urls, buckets, &logger)
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		_ = e.Shutdown(shutdownCtx)
	}()

	logger.Info().Str("addr", cfg.HTTPAddr).Msg("server starting")
	if err := e.Start(cfg.HTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("http server error")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}

// reloadOnHangup rebuilds the dataset context on SIGHUP. A failed reload
// keeps serving the previous context.
func reloadOnHangup(ctx context.Context, h *api.Handler, src engine.Source, urls engine.URLs, buckets engine.BucketMap, logger *zerolog.Logger) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			logger.Info().Msg("reloading datasets")
			ds, err := engine.LoadDatasets(ctx, src, urls, buckets, logger)
			if err != nil {
				observability.DatasetReloads.WithLabelValues(observability.StatusFailed).Inc()
				logger.Error().Err(err).Msg("reload failed, keeping previous datasets")
				continue
			}
			observability.DatasetReloads.WithLabelValues(observability.StatusOK).Inc()
			h.SetData(ds)
			logger.Info().Int("locations", len(ds.Locations)).Msg("datasets reloaded")
		}
	}
}
