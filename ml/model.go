// Package ml implements the classifier served by the inference service:
// a standardizing scaler feeding a k-nearest-neighbors vote, fitted
// offline and loaded from a JSON artifact.
package ml

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

// FeatureCount is the fixed input width of the model.
const FeatureCount = 4

// Prediction is the classification result exchanged between the
// inference service, the gateway and the persistence store.
type Prediction struct {
	Index         int                `json:"prediction_index"`
	Name          string             `json:"prediction_name"`
	Probabilities map[string]float64 `json:"probabilities"`
	Features      map[string]float64 `json:"features"`
}

// ParseFeatures validates a decoded JSON features value and coerces it
// into a vector of want floats. Numeric strings are accepted, anything
// non-finite is rejected.
func ParseFeatures(raw []interface{}, want int) ([]float64, error) {
	if len(raw) != want {
		return nil, fmt.Errorf("features must be a list of exactly %d numeric values", want)
	}
	features := make([]float64, len(raw))
	for i, v := range raw {
		var f float64
		switch value := v.(type) {
		case float64:
			f = value
		case string:
			parsed, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return nil, errors.New("all features must be numbers")
			}
			f = parsed
		default:
			return nil, errors.New("all features must be numbers")
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, errors.New("all features must be finite numbers")
		}
		features[i] = f
	}
	return features, nil
}
