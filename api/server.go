package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/repwise-data/repwise/db"
	"github.com/repwise-data/repwise/internal/attempt"
	"github.com/repwise-data/repwise/internal/config"
	"github.com/repwise-data/repwise/internal/exercise"
	"github.com/repwise-data/repwise/internal/httputil"
	"github.com/repwise-data/repwise/internal/pose"
	"github.com/repwise-data/repwise/internal/version"
	"github.com/repwise-data/repwise/internal/worker"
)

// ANSI escape codes for cyan and reset
const colorCyan = "\033[36m"
const colorReset = "\033[0m"
const colorYellow = "\033[33m"
const colorBoldGreen = "\033[1;32m"
const colorBoldRed = "\033[1;31m"

// Analyzer is the offload channel surface the server drives. *worker.Worker
// satisfies it.
type Analyzer interface {
	StartAttempt(ctx context.Context, h *pose.History, declared exercise.Family) (*attempt.ValidationResult, error)
	SubmitFrameWait(ctx context.Context, f pose.Frame) error
	Finalize(ctx context.Context) (*worker.Result, error)
	Reset(ctx context.Context) error
}

type Server struct {
	w   Analyzer
	db  *db.DB
	cfg *config.TuningConfig
}

func NewServer(w Analyzer, db *db.DB, cfg *config.TuningConfig) *Server {
	return &Server{
		w:   w,
		db:  db,
		cfg: cfg,
	}
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Flush() {
	if flusher, ok := lrw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 400:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	default:
		return strconv.Itoa(statusCode)
	}
}

// LoggingMiddleware logs method, path, query, status, and duration
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		log.Printf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	})
}

func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/attempts/analyze", s.analyzeAttempt)
	mux.HandleFunc("/api/attempts", s.listAttempts)
	mux.HandleFunc("/api/config", s.showConfig)
	mux.HandleFunc("/api/health", s.showHealth)
	return mux
}

// analyzeRequest carries one recorded attempt: the declared exercise and
// the captured landmark frames in order.
type analyzeRequest struct {
	Declared exercise.Family `json:"declared"`
	Frames   []pose.Frame    `json:"frames"`
}

type analyzeResponse struct {
	Validation *attempt.ValidationResult `json:"validation"`
	Result     *worker.Result            `json:"result,omitempty"`
}

func (s *Server) analyzeAttempt(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}

	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.BadRequest(w, "invalid request body: "+err.Error())
		return
	}
	if !req.Declared.Valid() {
		httputil.BadRequest(w, "unknown exercise family "+strconv.Quote(string(req.Declared)))
		return
	}
	if len(req.Frames) == 0 {
		httputil.BadRequest(w, "no frames supplied")
		return
	}

	history := pose.NewHistory(len(req.Frames))
	for _, f := range req.Frames {
		history.Append(f)
	}

	validation, err := s.w.StartAttempt(r.Context(), history, req.Declared)
	if err != nil {
		s.writeAttemptError(w, validation, err)
		return
	}

	// Replaying a recorded clip is faster than capture cadence; the blocking
	// submit keeps delivery lossless so the rep count is exact.
	for _, f := range req.Frames {
		if err := s.w.SubmitFrameWait(r.Context(), f); err != nil {
			_ = s.w.Reset(r.Context())
			s.writeAttemptError(w, validation, err)
			return
		}
	}

	result, err := s.w.Finalize(r.Context())
	if err != nil {
		s.writeAttemptError(w, validation, err)
		return
	}

	if s.db != nil {
		if err := s.db.RecordAttempt(result); err != nil {
			httputil.InternalServerError(w, "failed to record attempt: "+err.Error())
			return
		}
	}

	httputil.WriteJSON(w, http.StatusOK, analyzeResponse{
		Validation: validation,
		Result:     result,
	})
}

// writeAttemptError maps pipeline errors onto HTTP status codes. Gating
// rejections are client errors and carry the diagnostic payload.
func (s *Server) writeAttemptError(w http.ResponseWriter, validation *attempt.ValidationResult, err error) {
	switch kind := attempt.KindOf(err); kind {
	case attempt.ChannelUnavailable:
		httputil.WriteJSONError(w, http.StatusServiceUnavailable, err.Error())
		return
	case attempt.FullBodyNotVisible, attempt.InsufficientMovement,
		attempt.ExerciseMismatch, attempt.ModelLoadFailure:
		httputil.WriteJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":      err.Error(),
			"kind":       kind,
			"validation": validation,
		})
		return
	}
	if errors.Is(err, worker.ErrAttemptInProgress) {
		httputil.WriteJSONError(w, http.StatusConflict, err.Error())
		return
	}
	httputil.InternalServerError(w, err.Error())
}

func (s *Server) listAttempts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			httputil.BadRequest(w, "limit must be a positive integer")
			return
		}
		limit = n
	}

	records, err := s.db.Attempts(limit)
	if err != nil {
		httputil.InternalServerError(w, "failed to list attempts: "+err.Error())
		return
	}
	if records == nil {
		records = []db.AttemptRecord{}
	}
	httputil.WriteJSON(w, http.StatusOK, records)
}

// showConfig reports the effective tuning values after defaults are applied.
func (s *Server) showConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	exercises := make(map[string]exercise.Thresholds, len(exercise.Families))
	for _, f := range exercise.Families {
		exercises[string(f)] = s.cfg.ThresholdsFor(f)
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"confidence_floor": s.cfg.GetConfidenceFloor(),
		"stream_window":    s.cfg.GetStreamWindow(),
		"frame_buffer":     s.cfg.GetFrameBuffer(),
		"required_assets":  s.cfg.GetRequiredAssets(),
		"exercises":        exercises,
	})
}

func (s *Server) showHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"status":     "ok",
		"version":    version.Version,
		"git_sha":    version.GitSHA,
		"build_time": version.BuildTime,
	})
}
