package db

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repwise-data/repwise/internal/attempt"
	"github.com/repwise-data/repwise/internal/exercise"
	"github.com/repwise-data/repwise/internal/reps"
	"github.com/repwise-data/repwise/internal/timeutil"
	"github.com/repwise-data/repwise/internal/worker"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "attempts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleResult(id string, count int) *worker.Result {
	return &worker.Result{
		AttemptID:       id,
		Family:          exercise.Situp,
		RepetitionCount: count,
		FormQuality:     82.5,
		Feedback: []attempt.Feedback{
			{Message: "great form", Severity: attempt.SeveritySuccess},
		},
		Summary: reps.Summary{
			Family:        exercise.Situp,
			RepCount:      count,
			FormQuality:   82.5,
			Symmetry:      0.9,
			RangeOfMotion: 0.85,
			Posture:       0.8,
		},
	}
}

func TestRecordAndListAttempts(t *testing.T) {
	db := openTestDB(t)
	clock := timeutil.NewMockClock(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	db.SetClock(clock)

	require.NoError(t, db.RecordAttempt(sampleResult("a-1", 12)))
	clock.Advance(time.Minute)
	require.NoError(t, db.RecordAttempt(sampleResult("a-2", 20)))

	records, err := db.Attempts(10)
	require.NoError(t, err)
	require.Len(t, records, 2)

	// Newest first.
	assert.Equal(t, "a-2", records[0].AttemptID)
	assert.Equal(t, "a-1", records[1].AttemptID)
	assert.Equal(t, string(exercise.Situp), records[0].Family)
	assert.Equal(t, 20, records[0].RepCount)
	assert.InDelta(t, 82.5, records[0].FormQuality, 0.001)
	assert.Contains(t, records[0].Feedback, "great form")
}

func TestAttemptsLimit(t *testing.T) {
	db := openTestDB(t)
	clock := timeutil.NewMockClock(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	db.SetClock(clock)

	for i := 0; i < 5; i++ {
		require.NoError(t, db.RecordAttempt(sampleResult(string(rune('a'+i)), i)))
		clock.Advance(time.Second)
	}

	records, err := db.Attempts(3)
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestDuplicateAttemptRejected(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.RecordAttempt(sampleResult("dup", 5)))
	assert.Error(t, db.RecordAttempt(sampleResult("dup", 5)))
}

func TestAttemptsEmpty(t *testing.T) {
	db := openTestDB(t)

	records, err := db.Attempts(10)
	require.NoError(t, err)
	assert.Empty(t, records)
}
