package ml

import (
	"errors"
	"math"
)

// StandardScaler centers each feature to zero mean and unit variance,
// mirroring the preprocessing the model was fitted with.
type StandardScaler struct {
	Means []float64 `json:"means"`
	Stds  []float64 `json:"stds"`
}

func (s *StandardScaler) Fit(samples [][]float64) error {
	if len(samples) == 0 {
		return errors.New("no samples to fit")
	}
	width := len(samples[0])
	s.Means = make([]float64, width)
	s.Stds = make([]float64, width)

	for _, sample := range samples {
		if len(sample) != width {
			return errors.New("inconsistent sample width")
		}
		for j, v := range sample {
			s.Means[j] += v
		}
	}
	n := float64(len(samples))
	for j := range s.Means {
		s.Means[j] /= n
	}
	for _, sample := range samples {
		for j, v := range sample {
			d := v - s.Means[j]
			s.Stds[j] += d * d
		}
	}
	for j := range s.Stds {
		s.Stds[j] = math.Sqrt(s.Stds[j] / n)
		if s.Stds[j] == 0 {
			s.Stds[j] = 1
		}
	}
	return nil
}

func (s *StandardScaler) Transform(features []float64) ([]float64, error) {
	if len(features) != len(s.Means) {
		return nil, errors.New("feature width does not match fitted scaler")
	}
	scaled := make([]float64, len(features))
	for j, v := range features {
		scaled[j] = (v - s.Means[j]) / s.Stds[j]
	}
	return scaled, nil
}
