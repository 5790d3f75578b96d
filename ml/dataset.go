package ml

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strconv"
)

// Dataset is a labeled training set read from CSV. Labels are encoded in
// order of first appearance, so TargetNames[label] recovers the class name.
type Dataset struct {
	FeatureNames []string
	TargetNames  []string
	Samples      [][]float64
	Labels       []int
}

// LoadCSV reads a dataset whose header names the feature columns and
// whose last column holds the class name.
func LoadCSV(path string) (*Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, errors.New("dataset has no data rows")
	}

	header := rows[0]
	if len(header) < 2 {
		return nil, errors.New("dataset needs at least one feature column and a label column")
	}
	ds := &Dataset{FeatureNames: header[:len(header)-1]}

	classIndex := make(map[string]int)
	for i, row := range rows[1:] {
		if len(row) != len(header) {
			return nil, fmt.Errorf("row %d has %d columns, want %d", i+2, len(row), len(header))
		}
		sample := make([]float64, len(row)-1)
		for j, cell := range row[:len(row)-1] {
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d column %q: %w", i+2, header[j], err)
			}
			sample[j] = v
		}
		name := row[len(row)-1]
		label, ok := classIndex[name]
		if !ok {
			label = len(ds.TargetNames)
			classIndex[name] = label
			ds.TargetNames = append(ds.TargetNames, name)
		}
		ds.Samples = append(ds.Samples, sample)
		ds.Labels = append(ds.Labels, label)
	}
	return ds, nil
}
