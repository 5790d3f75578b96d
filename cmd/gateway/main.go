package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"kadupul/cache"
	"kadupul/config"
	"kadupul/db"
	"kadupul/gateway"
	"kadupul/logging"
	"kadupul/ml"
	"kadupul/mlclient"
	"kadupul/monitoring"
	"kadupul/pipeline"
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

	ttl := time.Duration(cfg.Redis.ExpireSeconds) * time.Second

	// Degraded mode: a store that fails to open still leaves the
	// predict path serviceable, so keep going with a stub that
	// reports the failure on every call.
	var store gatewayStore
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		logger.Error("failed to create database directory", zap.Error(err))
	}
	sqlite, err := db.Open(cfg.Database.Path)
	if err != nil {
		logger.Error("persistence unavailable, starting degraded", zap.Error(err))
		store = &unavailableStore{err: err}
	} else {
		store = sqlite
		defer sqlite.Close()
		logger.Info("database initialized", zap.String("path", cfg.Database.Path))
	}

	var cacheStore cache.Store
	if cfg.Redis.Host == "" || cfg.Redis.Host == "memory" {
		cacheStore = cache.NewMemory(1024, ttl)
		logger.Info("using in-memory cache", zap.Duration("ttl", ttl))
	} else {
		cacheStore = cache.NewRedis(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.DB)
		logger.Info("using redis cache",
			zap.String("host", cfg.Redis.Host), zap.Int("port", cfg.Redis.Port))
	}
	defer cacheStore.Close()

	inference := mlclient.New(cfg.MLServiceURL)

	feed := monitoring.NewFeed(logger)
	go feed.Run()
	defer feed.Close()

	predictor := pipeline.New(cacheStore, store, inference, ttl, logger)
	api := gateway.NewAPI(predictor, store, cacheStore, inference, feed, logger)

	mux := http.NewServeMux()
	api.Register(mux)

	serverConfig := web.DefaultServerConfig()
	serverConfig.Port = cfg.Gateway.Port
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

	if err := server.Stop(); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
}

// gatewayStore is the union of what the pipeline and the handlers need
// from the persistence layer.
type gatewayStore interface {
	Insert(ctx context.Context, p *ml.Prediction) (string, error)
	Recent(ctx context.Context, limit int) ([]db.Record, error)
	Get(ctx context.Context, id string) (*db.Record, error)
	Stats(ctx context.Context) (*db.Snapshot, error)
	Ping(ctx context.Context) error
}

// unavailableStore keeps the gateway serving when the database could not
// be opened; every call reports the original failure.
type unavailableStore struct {
	err error
}

func (u *unavailableStore) Insert(ctx context.Context, p *ml.Prediction) (string, error) {
	return "", u.err
}

func (u *unavailableStore) Recent(ctx context.Context, limit int) ([]db.Record, error) {
	return nil, u.err
}

func (u *unavailableStore) Get(ctx context.Context, id string) (*db.Record, error) {
	return nil, u.err
}

func (u *unavailableStore) Stats(ctx context.Context) (*db.Snapshot, error) {
	return nil, u.err
}

func (u *unavailableStore) Ping(ctx context.Context) error {
	return u.err
}
