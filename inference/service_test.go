package inference

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"kadupul/ml"
)

type staticModels struct {
	model  *ml.Model
	config *ml.ModelConfig
}

func (s *staticModels) Model() (*ml.Model, *ml.ModelConfig) { return s.model, s.config }

// trainTestModel builds a tiny two-feature classifier with clearly
// separated classes so predictions are deterministic.
func trainTestModel(t *testing.T) *staticModels {
	t.Helper()

	samples := [][]float64{
		{1.0, 1.1}, {1.1, 0.9}, {0.9, 1.0},
		{9.0, 9.1}, {9.1, 8.9}, {8.9, 9.0},
	}
	labels := []int{0, 0, 0, 1, 1, 1}

	scaler := &ml.StandardScaler{}
	if err := scaler.Fit(samples); err != nil {
		t.Fatalf("failed to fit scaler: %v", err)
	}
	scaled := make([][]float64, len(samples))
	for i, s := range samples {
		scaled[i], _ = scaler.Transform(s)
	}
	knn := &ml.KNN{}
	if err := knn.Train(scaled, labels, 3); err != nil {
		t.Fatalf("failed to train model: %v", err)
	}

	return &staticModels{
		model: &ml.Model{Scaler: scaler, KNN: knn},
		config: &ml.ModelConfig{
			ModelName:    "toy_knn",
			FeatureNames: []string{"width", "height"},
			TargetNames:  []string{"small", "large"},
			NNeighbors:   3,
		},
	}
}

func newTestService(t *testing.T) *http.ServeMux {
	t.Helper()
	mux := http.NewServeMux()
	NewService(trainTestModel(t), zap.NewNop()).Register(mux)
	return mux
}

func post(mux *http.ServeMux, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func get(mux *http.ServeMux, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestPredict(t *testing.T) {
	mux := newTestService(t)

	w := post(mux, "/predict", `{"features": [1.0, 1.0]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var result ml.Prediction
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if result.Name != "small" || result.Index != 0 {
		t.Fatalf("unexpected prediction: %+v", result)
	}
	if result.Probabilities["small"] != 1 {
		t.Fatalf("expected unanimous vote, got %v", result.Probabilities)
	}
	if result.Features["width"] != 1.0 || result.Features["height"] != 1.0 {
		t.Fatalf("expected echoed features, got %v", result.Features)
	}

	w = post(mux, "/predict", `{"features": [9.0, 9.0]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if result.Name != "large" {
		t.Fatalf("expected large, got %q", result.Name)
	}
}

func TestPredictRejectsBadInput(t *testing.T) {
	mux := newTestService(t)

	cases := []struct {
		name string
		body string
	}{
		{"malformed json", `{"features": [1.0`},
		{"missing features", `{}`},
		{"wrong length", `{"features": [1.0, 2.0, 3.0]}`},
		{"not a list", `{"features": 1.0}`},
		{"non-numeric", `{"features": [1.0, "wide"]}`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := post(mux, "/predict", c.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
			}
			var payload map[string]string
			if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil || payload["error"] == "" {
				t.Fatalf("expected a JSON error body, got %s", w.Body.String())
			}
		})
	}
}

func TestHealth(t *testing.T) {
	mux := newTestService(t)

	w := get(mux, "/health")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var payload map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if payload["status"] != "healthy" || payload["model"] != "toy_knn" {
		t.Fatalf("unexpected health payload: %v", payload)
	}
}

func TestModelInfo(t *testing.T) {
	mux := newTestService(t)

	w := get(mux, "/model-info")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var payload struct {
		ModelName    string   `json:"model_name"`
		Algorithm    string   `json:"algorithm"`
		NNeighbors   int      `json:"n_neighbors"`
		FeatureNames []string `json:"feature_names"`
		TargetNames  []string `json:"target_names"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if payload.ModelName != "toy_knn" || payload.Algorithm != "KNN" || payload.NNeighbors != 3 {
		t.Fatalf("unexpected model info: %+v", payload)
	}
	if len(payload.FeatureNames) != 2 || len(payload.TargetNames) != 2 {
		t.Fatalf("unexpected model info: %+v", payload)
	}
}
