package gateway

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"kadupul/db"
	"kadupul/ml"
	"kadupul/web"
)

const (
	defaultListLimit = 10
	maxListLimit     = 100
)

func (a *API) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		web.RespondError(w, http.StatusNotFound, "endpoint not found")
		return
	}
	web.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"service": "Kadupul API",
		"version": version,
		"endpoints": map[string]string{
			"health":            "/health",
			"predict":           "/api/predict",
			"predictions":       "/api/predictions",
			"prediction_detail": "/api/predictions/{id}",
			"stats":             "/api/stats",
			"model_info":        "/api/model-info",
			"live_feed":         "/api/ws/predictions",
		},
	})
}

func (a *API) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Features json.RawMessage `json:"features"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		web.RespondError(w, http.StatusBadRequest, "request body must be valid JSON")
		return
	}
	if len(req.Features) == 0 {
		web.RespondError(w, http.StatusBadRequest, "features field is required")
		return
	}

	var raw []interface{}
	if err := json.Unmarshal(req.Features, &raw); err != nil {
		web.RespondError(w, http.StatusBadRequest, "features must be a list of exactly 4 numeric values")
		return
	}
	features, err := ml.ParseFeatures(raw, ml.FeatureCount)
	if err != nil {
		web.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	response, err := a.predictor.Predict(r.Context(), features)
	if err != nil {
		a.log.Error("prediction failed", zap.Error(err))
		web.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if a.feed != nil {
		a.feed.Publish("prediction", response)
	}
	web.RespondJSON(w, http.StatusOK, response)
}

func (a *API) handlePredictions(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	predictions, err := a.store.Recent(r.Context(), limit)
	if err != nil {
		a.log.Error("failed to list predictions", zap.Error(err))
		web.RespondError(w, http.StatusInternalServerError, "failed to list predictions")
		return
	}

	web.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"predictions": predictions,
		"count":       len(predictions),
	})
}

func (a *API) handlePrediction(w http.ResponseWriter, r *http.Request) {
	record, err := a.store.Get(r.Context(), r.PathValue("id"))
	if errors.Is(err, db.ErrNotFound) {
		web.RespondError(w, http.StatusNotFound, "prediction not found")
		return
	}
	if err != nil {
		a.log.Error("failed to load prediction", zap.Error(err))
		web.RespondError(w, http.StatusInternalServerError, "failed to load prediction")
		return
	}
	web.RespondJSON(w, http.StatusOK, record)
}

func (a *API) handleStats(w http.ResponseWriter, r *http.Request) {
	snapshot, err := a.store.Stats(r.Context())
	if err != nil {
		a.log.Error("failed to compute stats", zap.Error(err))
		web.RespondError(w, http.StatusInternalServerError, "failed to compute statistics")
		return
	}
	web.RespondJSON(w, http.StatusOK, snapshot)
}

func (a *API) handleModelInfo(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := contextWithTimeout(r, 5*time.Second)
	defer cancel()

	info, err := a.inference.ModelInfo(ctx)
	if err != nil {
		a.log.Warn("model info unavailable", zap.Error(err))
		web.RespondError(w, http.StatusBadGateway, "model info unavailable")
		return
	}
	web.RespondJSON(w, http.StatusOK, info)
}
