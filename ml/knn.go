package ml

import "errors"

// KNN is a k-nearest-neighbors classifier over pre-scaled samples.
// Probabilities are the vote fractions among the k closest neighbors.
type KNN struct {
	K       int         `json:"k"`
	Samples [][]float64 `json:"samples"`
	Labels  []int       `json:"labels"`
	Classes int         `json:"classes"`
}

type neighbor struct {
	distance float64
	label    int
}

func (k *KNN) Train(samples [][]float64, labels []int, neighbors int) error {
	if len(samples) == 0 || len(labels) == 0 {
		return errors.New("samples or labels empty")
	}
	if len(samples) != len(labels) {
		return errors.New("samples and labels size mismatch")
	}
	if neighbors <= 0 {
		neighbors = 3
	}
	if neighbors > len(samples) {
		neighbors = len(samples)
	}

	classes := 0
	for _, label := range labels {
		if label < 0 {
			return errors.New("labels must be non-negative")
		}
		if label+1 > classes {
			classes = label + 1
		}
	}

	k.K = neighbors
	k.Samples = samples
	k.Labels = labels
	k.Classes = classes
	return nil
}

// Predict returns the winning class index and the per-class vote
// fractions for an already scaled feature vector. Squared distances are
// compared directly since the root does not change the ordering.
func (k *KNN) Predict(features []float64) (int, []float64, error) {
	if len(k.Samples) == 0 {
		return 0, nil, errors.New("model not trained")
	}
	if len(features) != len(k.Samples[0]) {
		return 0, nil, errors.New("feature width does not match training data")
	}

	nearest := make([]neighbor, 0, k.K)
	for i, sample := range k.Samples {
		d := squaredDistance(features, sample)
		if len(nearest) < k.K {
			nearest = append(nearest, neighbor{d, k.Labels[i]})
			sortNeighbors(nearest)
			continue
		}
		if d < nearest[len(nearest)-1].distance {
			nearest[len(nearest)-1] = neighbor{d, k.Labels[i]}
			sortNeighbors(nearest)
		}
	}

	votes := make([]float64, k.Classes)
	for _, n := range nearest {
		votes[n.label]++
	}
	best := 0
	for i := range votes {
		votes[i] /= float64(len(nearest))
		if votes[i] > votes[best] {
			best = i
		}
	}
	return best, votes, nil
}

func squaredDistance(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

func sortNeighbors(neighbors []neighbor) {
	for i := 1; i < len(neighbors); i++ {
		j := i
		for j > 0 && neighbors[j-1].distance > neighbors[j].distance {
			neighbors[j-1], neighbors[j] = neighbors[j], neighbors[j-1]
			j--
		}
	}
}
