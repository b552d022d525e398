// Command server runs the sticker backend as a long-lived HTTP server.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmorgan81/stickerbot/internal/config"
	"github.com/dmorgan81/stickerbot/internal/inject"
	"github.com/dmorgan81/stickerbot/internal/log"
	"github.com/samber/do"
	"golang.org/x/sync/errgroup"
)

func main() {
	configPath := flag.String("config", os.Getenv("STICKERBOT_CONFIG"), "path to an optional YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.New(os.Stderr, nil).Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := log.New(os.Stderr, log.ParseLevel(cfg.Server.LogLevel))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = log.NewContext(ctx, logger)

	if err := run(ctx, cfg); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	log := log.FromContextOrDiscard(ctx)
	injector := inject.Setup(ctx, cfg)
	defer func() { _ = injector.Shutdown() }()

	if err := do.MustInvoke[*config.Config](injector).Credentials().Validate(); err != nil {
		log.Warn("starting without usable api keys, /generate will fail until they are set", "error", err)
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      do.MustInvoke[http.Handler](injector),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
