// Package inference exposes the classifier over HTTP: /predict,
// /model-info and /health.
package inference

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"kadupul/ml"
	"kadupul/web"
)

// modelSource yields the currently served model and its sidecar config.
// Satisfied by *ml.Reloader.
type modelSource interface {
	Model() (*ml.Model, *ml.ModelConfig)
}

// Service holds the inference service's dependencies.
type Service struct {
	models modelSource
	log    *zap.Logger
}

func NewService(models modelSource, log *zap.Logger) *Service {
	return &Service{models: models, log: log}
}

// Register wires the inference routes onto mux.
func (s *Service) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /model-info", s.handleModelInfo)
	mux.HandleFunc("POST /predict", s.handlePredict)
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	_, config := s.models.Model()
	web.RespondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "ML Inference Service",
		"model":   config.ModelName,
	})
}

func (s *Service) handleModelInfo(w http.ResponseWriter, r *http.Request) {
	_, config := s.models.Model()
	web.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"model_name":    config.ModelName,
		"algorithm":     "KNN",
		"n_neighbors":   config.NNeighbors,
		"feature_names": config.FeatureNames,
		"target_names":  config.TargetNames,
	})
}

func (s *Service) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Features json.RawMessage `json:"features"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		web.RespondError(w, http.StatusBadRequest, "expected a JSON body with a features key")
		return
	}
	if len(req.Features) == 0 {
		web.RespondError(w, http.StatusBadRequest, "expected a JSON body with a features key")
		return
	}

	model, config := s.models.Model()

	var raw []interface{}
	if err := json.Unmarshal(req.Features, &raw); err != nil {
		web.RespondError(w, http.StatusBadRequest, "features must be a list")
		return
	}
	features, err := ml.ParseFeatures(raw, len(config.FeatureNames))
	if err != nil {
		web.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := model.Classify(features, config)
	if err != nil {
		s.log.Error("classification failed", zap.Error(err))
		web.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.log.Debug("prediction served", zap.String("class", result.Name))
	web.RespondJSON(w, http.StatusOK, result)
}
