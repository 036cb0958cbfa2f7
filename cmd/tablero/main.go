package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tablero/internal/board"
	"tablero/internal/config"
	"tablero/internal/server"
	"tablero/internal/storage/sqlite"
	"tablero/internal/util"
)

func main() {
	configFlag := flag.String("config", util.EnvOrDefault("TABLERO_CONFIG", "config.yaml"), "Path to yaml configuration file")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load(*configFlag)
	if err != nil {
		logger.Error("unable to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	store, err := sqlite.Open(cfg.Storage.Path, logger)
	if err != nil {
		logger.Error("unable to open database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer store.Close()

	b, err := board.New(context.Background(), store, logger)
	if err != nil {
		logger.Error("unable to load board state", slog.String("error", err.Error()))
		os.Exit(1)
	}

	srv := server.New(b, logger, cfg.Server.StaticDir)

	httpServer := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: srv.Engine(),
	}

	go func() {
		logger.Info("starting server", slog.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped unexpectedly", slog.String("error", err.Error()))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("failed to shutdown server", slog.String("error", err.Error()))
	}

	logger.Info("server stopped")
}
