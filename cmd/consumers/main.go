package main

import (
	"os"
	"os/signal"
	"syscall"

	"eventtix/internal/config"
	"eventtix/internal/consumers"
	"eventtix/internal/logger"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	worker, err := consumers.NewService(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize consumer worker", "error", err)
	}

	if err := worker.Start(); err != nil {
		worker.Stop()
		logger.Fatal("Failed to start consumer worker", "error", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Get().Info("Shutting down")
	worker.Stop()
}
