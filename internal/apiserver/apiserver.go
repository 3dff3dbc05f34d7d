// Package apiserver exposes the AnalysisOrchestrator over HTTP, per
// §8: synchronous and asynchronous analyze endpoints, a progress
// stream for the latter, a health check, and a window into the
// in-memory log buffer. Routing and content negotiation follow the
// teacher's REST controller conventions (gorilla/mux, the shared
// responseformat.Formatter for JSON/MessagePack).
package apiserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/chrissnell/solarengine/internal/log"
	"github.com/chrissnell/solarengine/internal/orchestrator"
	"github.com/chrissnell/solarengine/internal/solarmodel"
	"github.com/chrissnell/solarengine/pkg/responseformat"
)

// Server wires the orchestrator into a gorilla/mux router.
type Server struct {
	Orchestrator *orchestrator.Orchestrator
	Logger       *zap.Logger

	formatter *responseformat.Formatter
	router    *mux.Router

	mu   sync.Mutex
	jobs map[string]*asyncJob
}

// asyncJob tracks one in-flight or completed async analysis.
type asyncJob struct {
	mu       sync.Mutex
	done     bool
	results  []solarmodel.Result
	err      error
	progress []solarmodel.ProgressEvent
	subs     []chan solarmodel.ProgressEvent
}

// NewServer builds a Server with routes registered; call Handler() to
// get the http.Handler to pass to http.ListenAndServe.
func NewServer(o *orchestrator.Orchestrator, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		Orchestrator: o,
		Logger:       logger,
		formatter:    responseformat.NewFormatter(),
		jobs:         make(map[string]*asyncJob),
	}
	s.router = mux.NewRouter()
	s.registerRoutes()
	return s
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) registerRoutes() {
	s.router.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
	s.router.HandleFunc("/api/v1/analyze", s.handleAnalyze).Methods(http.MethodPost)
	s.router.HandleFunc("/api/v1/analyze/{id}/progress", s.handleProgress).Methods(http.MethodGet)
	s.router.HandleFunc("/api/v1/analyze/{id}/result", s.handleResult).Methods(http.MethodGet)
	s.router.HandleFunc("/api/v1/logs", s.handleLogs).Methods(http.MethodGet)
	s.router.Use(s.loggingMiddleware)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.LogHTTPRequest(r.Method, r.URL.Path, rec.status, time.Since(start), rec.size, r.RemoteAddr, r.UserAgent(), "", nil)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	size   int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	n, err := r.ResponseWriter.Write(b)
	r.size += n
	return n, err
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	_ = s.formatter.WriteResponse(w, r, map[string]string{"status": "ok"}, nil)
}

// analyzeRequestBody is the wire shape of POST /api/v1/analyze.
type analyzeRequestBody struct {
	solarmodel.SearchRequest
	K     int  `json:"k,omitempty"`
	Async bool `json:"-"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var body analyzeRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	if body.K <= 0 {
		body.K = 10
	}

	analysisID := uuid.NewString()
	async := r.URL.Query().Get("async") == "true"

	if !async {
		results, err := s.Orchestrator.Analyze(r.Context(), analysisID, body.SearchRequest, body.K, nil)
		if err != nil {
			writeAnalysisError(w, err)
			return
		}
		_ = s.formatter.WriteResponse(w, r, results, nil)
		return
	}

	job := &asyncJob{}
	s.mu.Lock()
	s.jobs[analysisID] = job
	s.mu.Unlock()

	go s.runAsync(analysisID, job, body)

	w.Header().Set("Location", fmt.Sprintf("/api/v1/analyze/%s/progress", analysisID))
	w.WriteHeader(http.StatusAccepted)
	_ = s.formatter.WriteResponse(w, r, map[string]string{"analysis_id": analysisID}, nil)
}

func (s *Server) runAsync(analysisID string, job *asyncJob, body analyzeRequestBody) {
	ctx := context.Background()
	progress := func(e solarmodel.ProgressEvent) {
		job.mu.Lock()
		job.progress = append(job.progress, e)
		subs := append([]chan solarmodel.ProgressEvent(nil), job.subs...)
		job.mu.Unlock()
		for _, ch := range subs {
			select {
			case ch <- e:
			default:
			}
		}
	}

	results, err := s.Orchestrator.Analyze(ctx, analysisID, body.SearchRequest, body.K, progress)

	job.mu.Lock()
	job.done = true
	job.results = results
	job.err = err
	subs := job.subs
	job.subs = nil
	job.mu.Unlock()
	for _, ch := range subs {
		close(ch)
	}
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	s.mu.Lock()
	job, ok := s.jobs[id]
	s.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}

	flusher, canFlush := w.(http.Flusher)
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")

	ch := make(chan solarmodel.ProgressEvent, 16)
	job.mu.Lock()
	for _, e := range job.progress {
		ch <- e
	}
	if job.done {
		close(ch)
	} else {
		job.subs = append(job.subs, ch)
	}
	job.mu.Unlock()

	for e := range ch {
		payload, _ := json.Marshal(e)
		fmt.Fprintf(w, "data: %s\n\n", payload)
		if canFlush {
			flusher.Flush()
		}
	}
}

func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	s.mu.Lock()
	job, ok := s.jobs[id]
	s.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}

	job.mu.Lock()
	done, results, err := job.done, job.results, job.err
	job.mu.Unlock()

	if !done {
		w.WriteHeader(http.StatusAccepted)
		_ = s.formatter.WriteResponse(w, r, map[string]string{"status": "running"}, nil)
		return
	}
	if err != nil {
		writeAnalysisError(w, err)
		return
	}
	_ = s.formatter.WriteResponse(w, r, results, nil)
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	buf := log.GetLogBuffer()
	if buf == nil {
		_ = s.formatter.WriteResponse(w, r, []log.LogEntry{}, nil)
		return
	}
	_ = s.formatter.WriteResponse(w, r, buf.GetLogs(false), nil)
}
