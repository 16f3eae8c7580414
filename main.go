package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"sales_view/api"
	"sales_view/internal/config"
	"sales_view/internal/logger"
	"sales_view/internal/sales"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.New(cfg.Log.Env, cfg.Log.Level)
	if err != nil {
		return err
	}
	defer log.Sync()

	if cfg.Log.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	client := sales.NewClient(cfg.Backend.URL, cfg.Backend.Timeout, log.Named("backend"))
	defer client.Close()

	sessions := api.NewSessions(client, cfg.Server.SessionIdle, log.Named("controller"))

	r := gin.New()
	r.Use(gin.Recovery())
	api.InitRoutes(r, sessions, log.Named("http"))

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           r,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting server", zap.String("addr", cfg.Server.Addr), zap.String("backend", cfg.Backend.URL))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("error trying to start server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return sessions.Run(gctx, time.Minute)
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
