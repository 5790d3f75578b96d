package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"kadupul/config"
	"kadupul/inference"
	"kadupul/logging"
	"kadupul/ml"
	"kadupul/web"
)

func main() {
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Path)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	// The model is load-bearing: without it there is nothing to serve.
	models, err := ml.NewReloader(cfg.Inference.ModelPath, cfg.Inference.ConfigPath, logger)
	if err != nil {
		logger.Fatal("failed to load model artifact",
			zap.String("model", cfg.Inference.ModelPath),
			zap.String("config", cfg.Inference.ConfigPath),
			zap.Error(err))
	}
	_, modelConfig := models.Model()
	logger.Info("model loaded",
		zap.String("name", modelConfig.ModelName),
		zap.Int("n_neighbors", modelConfig.NNeighbors))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		if err := models.Watch(ctx); err != nil && err != context.Canceled {
			logger.Warn("model watcher stopped", zap.Error(err))
		}
	}()

	service := inference.NewService(models, logger)
	mux := http.NewServeMux()
	service.Register(mux)

	serverConfig := web.DefaultServerConfig()
	serverConfig.Port = cfg.Inference.Port
	server := web.NewServer(serverConfig, mux, logger)

	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	cancel()
	if err := server.Stop(); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
}
