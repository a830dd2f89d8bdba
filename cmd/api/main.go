package main

import (
	"os"
	"os/signal"
	"syscall"

	"eventtix/internal/api"
	"eventtix/internal/config"
	"eventtix/internal/logger"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	server, err := api.NewServer(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize server", "error", err)
	}
	defer server.Cleanup()

	go func() {
		if err := server.Run(); err != nil {
			logger.Fatal("Server stopped", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Get().Info("Shutting down")
}
