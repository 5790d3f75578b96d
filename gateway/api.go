// Package gateway exposes the public prediction API: predict with
// cache/persistence orchestration, history, stats and composite health.
package gateway

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"kadupul/db"
	"kadupul/mlclient"
	"kadupul/monitoring"
	"kadupul/pipeline"
)

const version = "1.0.0"

type predictor interface {
	Predict(ctx context.Context, features []float64) (*pipeline.Response, error)
}

type recordStore interface {
	Recent(ctx context.Context, limit int) ([]db.Record, error)
	Get(ctx context.Context, id string) (*db.Record, error)
	Stats(ctx context.Context) (*db.Snapshot, error)
	Ping(ctx context.Context) error
}

type cachePinger interface {
	Ping(ctx context.Context) error
}

type inferenceClient interface {
	Health(ctx context.Context) error
	ModelInfo(ctx context.Context) (*mlclient.ModelInfo, error)
}

// API holds the gateway's injected dependencies.
type API struct {
	predictor predictor
	store     recordStore
	cache     cachePinger
	inference inferenceClient
	feed      *monitoring.Feed
	log       *zap.Logger
}

func NewAPI(p predictor, store recordStore, cache cachePinger, inference inferenceClient, feed *monitoring.Feed, log *zap.Logger) *API {
	return &API{
		predictor: p,
		store:     store,
		cache:     cache,
		inference: inference,
		feed:      feed,
		log:       log,
	}
}

// Register wires all gateway routes onto mux.
func (a *API) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", a.handleHealth)
	mux.HandleFunc("POST /api/predict", a.handlePredict)
	mux.HandleFunc("GET /api/predictions", a.handlePredictions)
	mux.HandleFunc("GET /api/predictions/{id}", a.handlePrediction)
	mux.HandleFunc("GET /api/stats", a.handleStats)
	mux.HandleFunc("GET /api/model-info", a.handleModelInfo)
	if a.feed != nil {
		mux.HandleFunc("GET /api/ws/predictions", a.feed.ServeWS)
	}
	mux.HandleFunc("/", a.handleIndex)
}
