// Package db persists prediction records in SQLite.
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"kadupul/ml"
)

// ErrNotFound is returned when no record matches the requested id.
var ErrNotFound = errors.New("prediction not found")

// Record is a persisted prediction: the inference result plus the input
// features, an identifier assigned at insert time and a UTC timestamp.
// Records are never updated or deleted.
type Record struct {
	ID              string             `json:"id"`
	Features        map[string]float64 `json:"features"`
	PredictionIndex int                `json:"prediction_index"`
	PredictionName  string             `json:"prediction_name"`
	Probabilities   map[string]float64 `json:"probabilities"`
	Timestamp       time.Time          `json:"timestamp"`
}

// Snapshot aggregates the full store at call time.
type Snapshot struct {
	TotalPredictions int            `json:"total_predictions"`
	ByClass          map[string]int `json:"by_class"`
}

// Store wraps the SQLite handle. It is safe for concurrent use and is
// meant to be created once at startup and injected where needed.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and ensures the
// schema exists.
func Open(path string) (*Store, error) {
	database, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	query := `
    CREATE TABLE IF NOT EXISTS predictions (
        id TEXT PRIMARY KEY,
        prediction_index INTEGER NOT NULL,
        prediction_name TEXT NOT NULL,
        features TEXT NOT NULL,
        probabilities TEXT NOT NULL,
        created_at DATETIME NOT NULL
    );
    CREATE INDEX IF NOT EXISTS idx_predictions_created_at ON predictions(created_at);
    CREATE INDEX IF NOT EXISTS idx_predictions_name ON predictions(prediction_name);
    `
	if _, err := database.Exec(query); err != nil {
		database.Close()
		return nil, err
	}
	return &Store{db: database}, nil
}

// Insert stores a newly computed prediction and returns its assigned id.
func (s *Store) Insert(ctx context.Context, p *ml.Prediction) (string, error) {
	features, err := json.Marshal(p.Features)
	if err != nil {
		return "", err
	}
	probabilities, err := json.Marshal(p.Probabilities)
	if err != nil {
		return "", err
	}

	id := uuid.NewString()
	_, err = s.db.ExecContext(ctx, `
        INSERT INTO predictions (id, prediction_index, prediction_name, features, probabilities, created_at)
        VALUES (?, ?, ?, ?, ?, ?)`,
		id, p.Index, p.Name, string(features), string(probabilities), time.Now().UTC())
	if err != nil {
		return "", err
	}
	return id, nil
}

// Recent returns up to limit records ordered by creation time descending.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, prediction_index, prediction_name, features, probabilities, created_at
        FROM predictions
        ORDER BY created_at DESC, id
        LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]Record, 0)
	for rows.Next() {
		record, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}
	return records, rows.Err()
}

// Get returns the record with the given id, or ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `
        SELECT id, prediction_index, prediction_name, features, probabilities, created_at
        FROM predictions
        WHERE id = ?`, id)
	record, err := scanRecord(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}

// Stats aggregates the whole table. Zero rows is a valid snapshot, not
// an error.
func (s *Store) Stats(ctx context.Context) (*Snapshot, error) {
	snapshot := &Snapshot{ByClass: make(map[string]int)}

	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM predictions`).Scan(&snapshot.TotalPredictions); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
        SELECT prediction_name, COUNT(*)
        FROM predictions
        GROUP BY prediction_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		var count int
		if err := rows.Scan(&name, &count); err != nil {
			return nil, err
		}
		snapshot.ByClass[name] = count
	}
	return snapshot, rows.Err()
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}

func scanRecord(scan func(dest ...interface{}) error) (*Record, error) {
	var record Record
	var features, probabilities string
	if err := scan(&record.ID, &record.PredictionIndex, &record.PredictionName,
		&features, &probabilities, &record.Timestamp); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(features), &record.Features); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(probabilities), &record.Probabilities); err != nil {
		return nil, err
	}
	record.Timestamp = record.Timestamp.UTC()
	return &record, nil
}
