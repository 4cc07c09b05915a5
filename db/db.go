package db

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/repwise-data/repwise/internal/timeutil"
	"github.com/repwise-data/repwise/internal/worker"
)

type DB struct {
	*sql.DB
	clock timeutil.Clock
}

func NewDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS attempts (
			attempt_id TEXT PRIMARY KEY,
			family TEXT NOT NULL,
			rep_count INTEGER NOT NULL,
			form_quality DOUBLE NOT NULL,
			symmetry DOUBLE NOT NULL,
			range_of_motion DOUBLE NOT NULL,
			posture DOUBLE NOT NULL,
			feedback TEXT,
			created_at TIMESTAMP NOT NULL
		);
	`)
	if err != nil {
		return nil, err
	}

	return &DB{DB: db, clock: timeutil.RealClock{}}, nil
}

// SetClock replaces the timestamp source. Tests use a MockClock.
func (db *DB) SetClock(c timeutil.Clock) {
	db.clock = c
}

// RecordAttempt persists a finalized attempt result.
func (db *DB) RecordAttempt(res *worker.Result) error {
	feedback, err := json.Marshal(res.Feedback)
	if err != nil {
		return fmt.Errorf("encode feedback: %w", err)
	}
	_, err = db.Exec(
		`INSERT INTO attempts
			(attempt_id, family, rep_count, form_quality, symmetry, range_of_motion, posture, feedback, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		res.AttemptID, string(res.Family), res.RepetitionCount, res.FormQuality,
		res.Summary.Symmetry, res.Summary.RangeOfMotion, res.Summary.Posture,
		string(feedback), db.clock.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	return nil
}

// AttemptRecord is one stored attempt, as returned by Attempts.
type AttemptRecord struct {
	AttemptID     string  `json:"attempt_id"`
	Family        string  `json:"family"`
	RepCount      int     `json:"rep_count"`
	FormQuality   float64 `json:"form_quality"`
	Symmetry      float64 `json:"symmetry"`
	RangeOfMotion float64 `json:"range_of_motion"`
	Posture       float64 `json:"posture"`
	Feedback      string  `json:"feedback"`
	CreatedAt     string  `json:"created_at"`
}

func (r *AttemptRecord) String() string {
	return fmt.Sprintf("Attempt: %s, Family: %s, Reps: %d, Form: %.1f", r.AttemptID, r.Family, r.RepCount, r.FormQuality)
}

// Attempts returns the most recent attempts, newest first.
func (db *DB) Attempts(limit int) ([]AttemptRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := db.Query(
		`SELECT attempt_id, family, rep_count, form_quality, symmetry, range_of_motion, posture, feedback, created_at
		FROM attempts ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []AttemptRecord
	for rows.Next() {
		var r AttemptRecord
		if err := rows.Scan(&r.AttemptID, &r.Family, &r.RepCount, &r.FormQuality,
			&r.Symmetry, &r.RangeOfMotion, &r.Posture, &r.Feedback, &r.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}
