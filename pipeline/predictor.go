// Package pipeline orchestrates the prediction flow: fingerprint the
// input, probe the cache, fall back to the inference service, persist
// the computed result and repopulate the cache.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"kadupul/ml"
)

const (
	cacheKeyPrefix = "prediction:"
	counterKey     = "prediction_count"
)

// Cache is the subset of the cache store the pipeline needs.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Increment(ctx context.Context, key string) (int64, error)
}

// Store persists computed predictions.
type Store interface {
	Insert(ctx context.Context, p *ml.Prediction) (string, error)
}

// Inferencer invokes the model with a validated feature vector.
type Inferencer interface {
	Predict(ctx context.Context, features []float64) (*ml.Prediction, error)
}

// Response is the gateway-facing prediction outcome. Source is "cache"
// when the result was served without invoking the model, "model"
// otherwise; PredictionID is set only when persistence succeeded.
type Response struct {
	Result       *ml.Prediction `json:"result"`
	Source       string         `json:"source"`
	PredictionID string         `json:"prediction_id,omitempty"`
}

// Predictor wires the three stores together. All dependencies are
// injected; the pipeline itself holds no mutable state.
type Predictor struct {
	cache Cache
	store Store
	model Inferencer
	ttl   time.Duration
	log   *zap.Logger
}

func New(cache Cache, store Store, model Inferencer, ttl time.Duration, log *zap.Logger) *Predictor {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Predictor{cache: cache, store: store, model: model, ttl: ttl, log: log}
}

// Predict runs the full pipeline for an already validated feature
// vector. Cache, persistence and counter failures are logged and
// swallowed; only an inference failure aborts the request.
func (p *Predictor) Predict(ctx context.Context, features []float64) (*Response, error) {
	key := cacheKeyPrefix + Fingerprint(features)

	if cached, ok := p.lookup(ctx, key); ok {
		p.bumpCounter(ctx)
		return &Response{Result: cached, Source: "cache"}, nil
	}

	result, err := p.model.Predict(ctx, features)
	if err != nil {
		return nil, fmt.Errorf("model prediction failed: %w", err)
	}

	// Persist before repopulating the cache so a cache failure can
	// never hide a lost record. Neither step rolls back the other.
	id, err := p.store.Insert(ctx, result)
	if err != nil {
		p.log.Warn("failed to persist prediction", zap.Error(err))
		id = ""
	}

	if payload, err := json.Marshal(result); err == nil {
		if err := p.cache.Set(ctx, key, payload, p.ttl); err != nil {
			p.log.Warn("failed to cache prediction", zap.String("key", key), zap.Error(err))
		}
	}

	p.bumpCounter(ctx)

	return &Response{Result: result, Source: "model", PredictionID: id}, nil
}

func (p *Predictor) lookup(ctx context.Context, key string) (*ml.Prediction, bool) {
	payload, ok, err := p.cache.Get(ctx, key)
	if err != nil {
		p.log.Warn("cache lookup failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var result ml.Prediction
	if err := json.Unmarshal(payload, &result); err != nil {
		p.log.Warn("discarding undecodable cache entry", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return &result, true
}

func (p *Predictor) bumpCounter(ctx context.Context) {
	if _, err := p.cache.Increment(ctx, counterKey); err != nil {
		p.log.Warn("failed to increment prediction counter", zap.Error(err))
	}
}
