package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"
	"path/filepath"

	"kadupul/ml"
)

func main() {
	dataPath := flag.String("data", "./data/iris.csv", "training dataset (CSV, label in last column)")
	modelPath := flag.String("model_path", "./models/iris_knn.json", "model artifact output path")
	configPath := flag.String("config_path", "./models/config.json", "model config output path")
	modelName := flag.String("model_name", "iris_knn", "model name written to the config")
	neighbors := flag.Int("neighbors", 3, "number of neighbors")
	testRatio := flag.Float64("test_ratio", 0.2, "holdout ratio for evaluation")
	seed := flag.Int64("seed", 42, "random seed for the train/test split")
	flag.Parse()

	dataset, err := ml.LoadCSV(*dataPath)
	if err != nil {
		log.Fatalf("failed to load dataset: %v", err)
	}
	log.Printf("loaded %d samples, %d classes", len(dataset.Samples), len(dataset.TargetNames))

	trainX, trainY, testX, testY := splitDataset(dataset.Samples, dataset.Labels, *testRatio, *seed)

	scaler := &ml.StandardScaler{}
	if err := scaler.Fit(trainX); err != nil {
		log.Fatalf("failed to fit scaler: %v", err)
	}
	scaled := make([][]float64, len(trainX))
	for i, sample := range trainX {
		scaled[i], _ = scaler.Transform(sample)
	}

	knn := &ml.KNN{}
	if err := knn.Train(scaled, trainY, *neighbors); err != nil {
		log.Fatalf("failed to train model: %v", err)
	}

	model := &ml.Model{Scaler: scaler, KNN: knn}
	accuracy := evaluate(model, testX, testY)
	log.Printf("holdout accuracy=%.3f (%d test samples)", accuracy, len(testX))

	if err := os.MkdirAll(filepath.Dir(*modelPath), 0o755); err != nil {
		log.Fatalf("failed to create model dir: %v", err)
	}
	if err := model.Save(*modelPath); err != nil {
		log.Fatalf("failed to save model: %v", err)
	}

	config := &ml.ModelConfig{
		ModelName:    *modelName,
		FeatureNames: dataset.FeatureNames,
		TargetNames:  dataset.TargetNames,
		NNeighbors:   *neighbors,
		TestSize:     *testRatio,
		RandomState:  *seed,
	}
	if err := config.Save(*configPath); err != nil {
		log.Fatalf("failed to save model config: %v", err)
	}

	fmt.Printf("model saved to %s, config to %s\n", *modelPath, *configPath)
}

func splitDataset(samples [][]float64, labels []int, testRatio float64, seed int64) (trainX [][]float64, trainY []int, testX [][]float64, testY []int) {
	if testRatio <= 0 || testRatio >= 1 {
		testRatio = 0.2
	}
	rnd := rand.New(rand.NewSource(seed))
	indices := rnd.Perm(len(samples))

	split := int(math.Round(float64(len(samples)) * (1 - testRatio)))
	for i, idx := range indices {
		if i < split {
			trainX = append(trainX, samples[idx])
			trainY = append(trainY, labels[idx])
		} else {
			testX = append(testX, samples[idx])
			testY = append(testY, labels[idx])
		}
	}
	return trainX, trainY, testX, testY
}

func evaluate(model *ml.Model, testX [][]float64, testY []int) float64 {
	if len(testX) == 0 {
		return 0
	}
	correct := 0
	for i, sample := range testX {
		scaled, err := model.Scaler.Transform(sample)
		if err != nil {
			continue
		}
		label, _, err := model.KNN.Predict(scaled)
		if err != nil {
			continue
		}
		if label == testY[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(testX))
}
