package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/guileen/gridsource/datasource"
	"github.com/guileen/gridsource/engine/config"
	"github.com/guileen/gridsource/logger"
	"github.com/guileen/gridsource/metrics"
	"github.com/guileen/gridsource/protocol/api"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Load every configured dataset and serve block requests over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", os.Getenv("GRIDSOURCE_CONFIG"), "path to the YAML configuration file")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	startTime := time.Now()
	log := logger.With(logger.Component("http"))
	m := metrics.New()

	registry, err := datasource.LoadRegistry(ctx, cfg, m)
	if err != nil {
		return err
	}
	defer registry.Close()

	router, err := api.NewRouter(api.NewRESTHandler(registry, m), cfg.Server, m)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening",
			logger.String("addr", cfg.Server.Addr),
			logger.Int("datasets", len(cfg.Datasets)),
			logger.Duration("init_duration", time.Since(startTime)))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error("HTTP server failed", logger.ErrorField(err))
		}
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown failed", logger.ErrorField(err))
		return err
	}
	log.Info("HTTP server shutdown complete")
	return nil
}
