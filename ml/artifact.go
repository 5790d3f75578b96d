package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Model is a fitted scaler + classifier pipeline, serialized as a single
// JSON artifact by the offline trainer.
type Model struct {
	Scaler *StandardScaler `json:"scaler"`
	KNN    *KNN            `json:"knn"`
}

// ModelConfig is the sidecar document written next to the artifact.
type ModelConfig struct {
	ModelName    string   `json:"model_name"`
	FeatureNames []string `json:"feature_names"`
	TargetNames  []string `json:"target_names"`
	NNeighbors   int      `json:"n_neighbors"`
	TestSize     float64  `json:"test_size"`
	RandomState  int64    `json:"random_state"`
}

// Classify runs the full pipeline on a raw feature vector and shapes the
// result with the class and feature names from the sidecar config.
func (m *Model) Classify(features []float64, config *ModelConfig) (*Prediction, error) {
	if m == nil || m.Scaler == nil || m.KNN == nil {
		return nil, errors.New("model not loaded")
	}
	if len(features) != len(config.FeatureNames) {
		return nil, fmt.Errorf("expected %d features, got %d", len(config.FeatureNames), len(features))
	}

	scaled, err := m.Scaler.Transform(features)
	if err != nil {
		return nil, err
	}
	index, votes, err := m.KNN.Predict(scaled)
	if err != nil {
		return nil, err
	}
	if index >= len(config.TargetNames) {
		return nil, fmt.Errorf("class index %d outside configured target names", index)
	}

	probabilities := make(map[string]float64, len(votes))
	for i, v := range votes {
		if i < len(config.TargetNames) {
			probabilities[config.TargetNames[i]] = v
		}
	}
	named := make(map[string]float64, len(features))
	for i, v := range features {
		named[config.FeatureNames[i]] = v
	}

	return &Prediction{
		Index:         index,
		Name:          config.TargetNames[index],
		Probabilities: probabilities,
		Features:      named,
	}, nil
}

func (m *Model) Save(path string) error {
	if m.Scaler == nil || m.KNN == nil {
		return errors.New("model not trained")
	}
	payload, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o600)
}

func LoadModel(path string) (*Model, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var model Model
	if err := json.Unmarshal(payload, &model); err != nil {
		return nil, err
	}
	if model.Scaler == nil || model.KNN == nil {
		return nil, errors.New("model artifact incomplete")
	}
	return &model, nil
}

func (c *ModelConfig) Save(path string) error {
	payload, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o600)
}

func LoadModelConfig(path string) (*ModelConfig, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var config ModelConfig
	if err := json.Unmarshal(payload, &config); err != nil {
		return nil, err
	}
	if len(config.FeatureNames) == 0 || len(config.TargetNames) == 0 {
		return nil, errors.New("model config missing feature or target names")
	}
	return &config, nil
}
