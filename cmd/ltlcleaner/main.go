package main

import (
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"ltlcleaner/infrastructure/cache"
	"ltlcleaner/infrastructure/config"
	httpserver "ltlcleaner/infrastructure/http"
	"ltlcleaner/infrastructure/logging"
	"ltlcleaner/infrastructure/reference"
)

func main() {
	cfg := config.Load()
	logging.Setup(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	cfg.LogWarnings()

	ref := reference.NewLoader(cfg.ReferencePath)
	if _, err := ref.Load(); err != nil {
		log.Fatalf("load ltl reference: %v", err)
	}

	runs := cache.NewRunCache(cfg.RunTTL, cfg.RunCapacity)

	server := httpserver.NewServer(cfg.Addr, ref, runs, httpserver.Options{
		MaxUploadBytes: cfg.MaxUploadBytes(),
		PreviewRows:    cfg.PreviewRows,
	})
	if err := server.Start(); err != nil {
		log.Fatalf("start server: %v", err)
	}
	slog.Info("ltlcleaner listening", slog.String("addr", cfg.Addr), slog.String("reference", cfg.ReferencePath))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	if err := server.Stop(); err != nil {
		slog.Error("graceful shutdown error", slog.Any("err", err))
	}
}
