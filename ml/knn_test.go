package ml

import (
	"math"
	"path/filepath"
	"testing"
)

func TestKNNTrainPredict(t *testing.T) {
	samples := [][]float64{
		{0.1, 0.2},
		{0.2, 0.1},
		{0.9, 0.8},
		{0.8, 0.9},
	}
	labels := []int{0, 0, 1, 1}

	knn := &KNN{}
	if err := knn.Train(samples, labels, 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	label, votes, err := knn.Predict([]float64{0.15, 0.15})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if label != 0 {
		t.Fatalf("expected label 0, got %d", label)
	}
	if votes[0] <= votes[1] {
		t.Fatalf("expected class 0 to dominate votes: %v", votes)
	}
}

func TestStandardScaler(t *testing.T) {
	scaler := &StandardScaler{}
	if err := scaler.Fit([][]float64{{1, 10}, {3, 10}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	scaled, err := scaler.Transform([]float64{3, 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(scaled[0]-1) > 1e-9 {
		t.Fatalf("expected unit deviation, got %v", scaled[0])
	}
	// Constant columns fall back to std 1 instead of dividing by zero.
	if scaled[1] != 0 {
		t.Fatalf("expected constant column to scale to zero, got %v", scaled[1])
	}
}

func TestModelSaveLoadRoundTrip(t *testing.T) {
	scaler := &StandardScaler{}
	samples := [][]float64{{1, 2}, {2, 3}, {8, 9}, {9, 8}}
	labels := []int{0, 0, 1, 1}
	if err := scaler.Fit(samples); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	scaled := make([][]float64, len(samples))
	for i, s := range samples {
		scaled[i], _ = scaler.Transform(s)
	}
	knn := &KNN{}
	if err := knn.Train(scaled, labels, 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	path := filepath.Join(t.TempDir(), "model.json")
	model := &Model{Scaler: scaler, KNN: knn}
	if err := model.Save(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	loaded, err := LoadModel(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	in, _ := loaded.Scaler.Transform([]float64{8.5, 8.5})
	label, _, err := loaded.KNN.Predict(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if label != 1 {
		t.Fatalf("expected label 1 after reload, got %d", label)
	}
}

// Trains on the reference iris dataset and checks the documented
// vector classifies as the third target class.
func TestIrisScenario(t *testing.T) {
	dataset, err := LoadCSV(filepath.Join("..", "data", "iris.csv"))
	if err != nil {
		t.Fatalf("failed to load dataset: %v", err)
	}
	if len(dataset.Samples) != 150 || len(dataset.TargetNames) != 3 {
		t.Fatalf("unexpected dataset shape: %d samples, %d classes",
			len(dataset.Samples), len(dataset.TargetNames))
	}

	scaler := &StandardScaler{}
	if err := scaler.Fit(dataset.Samples); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	scaled := make([][]float64, len(dataset.Samples))
	for i, s := range dataset.Samples {
		scaled[i], _ = scaler.Transform(s)
	}
	knn := &KNN{}
	if err := knn.Train(scaled, dataset.Labels, 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	model := &Model{Scaler: scaler, KNN: knn}
	config := &ModelConfig{
		ModelName:    "iris_knn",
		FeatureNames: dataset.FeatureNames,
		TargetNames:  dataset.TargetNames,
		NNeighbors:   3,
	}
	result, err := model.Classify([]float64{6.4, 3.7, 4.1, 3.3}, config)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Index != 2 {
		t.Fatalf("expected class index 2, got %d (%s)", result.Index, result.Name)
	}
	if result.Name != dataset.TargetNames[2] {
		t.Fatalf("expected class %q, got %q", dataset.TargetNames[2], result.Name)
	}
	sum := 0.0
	for _, p := range result.Probabilities {
		if p < 0 || p > 1 {
			t.Fatalf("probability out of range: %v", result.Probabilities)
		}
		sum += p
	}
	if math.Abs(sum-1) > 1e-6 {
		t.Fatalf("expected probabilities to sum to 1, got %v", sum)
	}
}
