package db

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"kadupul/ml"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func prediction(name string, index int) *ml.Prediction {
	return &ml.Prediction{
		Index:         index,
		Name:          name,
		Probabilities: map[string]float64{name: 1},
		Features: map[string]float64{
			"sepal_length": 5.1, "sepal_width": 3.5,
			"petal_length": 1.4, "petal_width": 0.2,
		},
	}
}

func TestInsertAndGet(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	id, err := store.Insert(ctx, prediction("setosa", 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id == "" {
		t.Fatal("expected an assigned id")
	}

	record, err := store.Get(ctx, id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record.PredictionName != "setosa" || record.PredictionIndex != 0 {
		t.Fatalf("unexpected record: %+v", record)
	}
	if record.Features["petal_width"] != 0.2 {
		t.Fatalf("expected features round trip, got %v", record.Features)
	}
	if record.Timestamp.IsZero() {
		t.Fatal("expected a timestamp")
	}
}

func TestGetUnknownID(t *testing.T) {
	store := openTestStore(t)
	for _, id := range []string{"missing", "", "not-a-uuid-at-all"} {
		if _, err := store.Get(context.Background(), id); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound for %q, got %v", id, err)
		}
	}
}

func TestRecentOrderingAndLimit(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"setosa", "versicolor", "virginica"} {
		if _, err := store.Insert(ctx, prediction(name, 0)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	records, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].PredictionName != "virginica" {
		t.Fatalf("expected newest record first, got %q", records[0].PredictionName)
	}

	// Reads are idempotent.
	again, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(again) != 2 || again[0].ID != records[0].ID {
		t.Fatal("expected stable results on repeated reads")
	}
}

func TestStats(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	snapshot, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snapshot.TotalPredictions != 0 || len(snapshot.ByClass) != 0 {
		t.Fatalf("expected empty snapshot, got %+v", snapshot)
	}

	for _, name := range []string{"setosa", "setosa", "virginica"} {
		if _, err := store.Insert(ctx, prediction(name, 0)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	snapshot, err = store.Stats(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snapshot.TotalPredictions != 3 {
		t.Fatalf("expected 3 predictions, got %d", snapshot.TotalPredictions)
	}
	if snapshot.ByClass["setosa"] != 2 || snapshot.ByClass["virginica"] != 1 {
		t.Fatalf("unexpected by_class: %v", snapshot.ByClass)
	}
}
