package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/nikolayk812/storefront/internal/app"
	"github.com/nikolayk812/storefront/internal/config"
	"github.com/nikolayk812/storefront/internal/notify"
	"github.com/nikolayk812/storefront/internal/obs"
	"github.com/nikolayk812/storefront/internal/shell"
)

func main() {
	cfg := config.MustLoad()

	logger := obs.NewLogger(cfg.LogFormat, cfg.LogLevel, os.Stderr).With().Str("backend", cfg.BackendURL.Host).Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.TracingEnabled {
		shutdown, err := obs.InitTracer(ctx, obs.TracingConfig{
			ServiceName:   "storefront",
			Endpoint:      cfg.TracingEndpoint,
			SamplingRatio: cfg.TracingSampleRatio,
		})
		if err != nil {
			logger.Error().Err(err).Msg("initialise tracing")
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logger.Error().Err(err).Msg("shutdown tracer")
				}
			}()
		}
	}

	a, err := app.New(cfg, logger, app.WithNotifier(notify.NewWriter(os.Stdout, logger)))
	if err != nil {
		logger.Fatal().Err(err).Msg("app_init_failed")
	}

	viewDone := make(chan error, 1)
	go func() {
		viewDone <- a.Run(ctx)
	}()

	if err := shell.New(a, os.Stdout).Run(ctx, os.Stdin); err != nil {
		logger.Error().Err(err).Msg("shell_failed")
	}

	stop()
	if err := <-viewDone; err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("cart_view_failed")
	}
}
