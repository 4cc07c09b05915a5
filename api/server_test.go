package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repwise-data/repwise/db"
	"github.com/repwise-data/repwise/internal/attempt"
	"github.com/repwise-data/repwise/internal/config"
	"github.com/repwise-data/repwise/internal/exercise"
	"github.com/repwise-data/repwise/internal/pose"
	"github.com/repwise-data/repwise/internal/testutil"
	"github.com/repwise-data/repwise/internal/worker"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	// Default tuning config: the analyze path must count correctly with the
	// stock frame buffer, not a test-sized one.
	cfg := config.EmptyTuningConfig()

	w := worker.New(cfg, attempt.NewGate(cfg, nil))
	t.Cleanup(w.Close)

	database, err := db.NewDB(filepath.Join(t.TempDir(), "attempts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	return NewServer(w, database, cfg)
}

func postAnalyze(t *testing.T, s *Server, declared exercise.Family, frames []pose.Frame) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(analyzeRequest{Declared: declared, Frames: frames})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/attempts/analyze", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.ServeMux().ServeHTTP(rec, req)
	return rec
}

func TestAnalyzeSitupAttempt(t *testing.T) {
	s := newTestServer(t)

	angles := testutil.OscillateAngles(165, 55, 6, 20)
	h := testutil.TorsoAngleHistory(angles)
	rec := postAnalyze(t, s, exercise.Situp, h.Frames())

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp analyzeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Validation)
	assert.True(t, resp.Validation.Valid)
	require.NotNil(t, resp.Result)
	assert.Equal(t, exercise.Situp, resp.Result.Family)
	assert.Equal(t, 6, resp.Result.RepetitionCount)
	assert.NotEmpty(t, resp.Result.AttemptID)

	// The attempt is persisted.
	records, err := s.db.Attempts(10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, resp.Result.AttemptID, records[0].AttemptID)
	assert.Equal(t, 6, records[0].RepCount)
}

func TestAnalyzeRejectsStaticRecording(t *testing.T) {
	s := newTestServer(t)

	h := testutil.StaticHistory(60)
	rec := postAnalyze(t, s, exercise.Situp, h.Frames())

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())

	var resp struct {
		Kind       attempt.ErrorKind         `json:"kind"`
		Error      string                    `json:"error"`
		Validation *attempt.ValidationResult `json:"validation"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, attempt.InsufficientMovement, resp.Kind)
	require.NotNil(t, resp.Validation)
	assert.False(t, resp.Validation.Valid)

	// Nothing persisted for a rejected attempt.
	records, err := s.db.Attempts(10)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestAnalyzeReportsExerciseMismatch(t *testing.T) {
	s := newTestServer(t)

	h := testutil.VerticalJumpHistory(0.18, 4, 20)
	rec := postAnalyze(t, s, exercise.Situp, h.Frames())

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())

	var resp struct {
		Kind       attempt.ErrorKind         `json:"kind"`
		Validation *attempt.ValidationResult `json:"validation"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, attempt.ExerciseMismatch, resp.Kind)
	require.NotNil(t, resp.Validation)
	require.NotNil(t, resp.Validation.Classification)
	assert.Equal(t, exercise.Jump, resp.Validation.Classification.Detected)
}

func TestAnalyzeRejectsBadRequests(t *testing.T) {
	s := newTestServer(t)
	mux := s.ServeMux()

	// Wrong method.
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/attempts/analyze", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	// Malformed body.
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/attempts/analyze", bytes.NewReader([]byte("{"))))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Unknown family.
	rec = postAnalyze(t, s, exercise.Family("yoga"), testutil.StaticHistory(5).Frames())
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Empty frames.
	rec = postAnalyze(t, s, exercise.Situp, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListAttempts(t *testing.T) {
	s := newTestServer(t)

	angles := testutil.OscillateAngles(165, 55, 4, 20)
	h := testutil.TorsoAngleHistory(angles)
	require.Equal(t, http.StatusOK, postAnalyze(t, s, exercise.Situp, h.Frames()).Code)

	rec := httptest.NewRecorder()
	s.ServeMux().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/attempts?limit=5", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var records []db.AttemptRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	require.Len(t, records, 1)
	assert.Equal(t, 4, records[0].RepCount)

	rec = httptest.NewRecorder()
	s.ServeMux().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/attempts?limit=zero", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestShowConfig(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.ServeMux().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/config", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		ConfidenceFloor float64                        `json:"confidence_floor"`
		RequiredAssets  []string                       `json:"required_assets"`
		Exercises       map[string]exercise.Thresholds `json:"exercises"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.InDelta(t, 0.5, got.ConfidenceFloor, 0.001)
	assert.Contains(t, got.RequiredAssets, "pose_detector.tflite")
	assert.Contains(t, got.Exercises, "situp")
}

func TestShowHealth(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.ServeMux().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "ok", got["status"])
	assert.NotEmpty(t, got["version"])
}
