// Package server exposes the analysis pipeline over an HTTP task API:
// submit a site for analysis, poll task status, fetch stored results.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/siteradius/siteradius/internal/pipeline"
	"github.com/siteradius/siteradius/internal/store"
)

// Server handles the HTTP task API. Analyses run in background goroutines;
// clients poll the task endpoint and fetch results once completed.
type Server struct {
	pipeline *pipeline.Pipeline
	store    store.Store
	tasks    *TaskTracker
}

// New creates a Server around the pipeline and the results store.
func New(p *pipeline.Pipeline, st store.Store) *Server {
	return &Server{
		pipeline: p,
		store:    st,
		tasks:    NewTaskTracker(),
	}
}

// Router builds the chi router with all API routes.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Post("/analyze", s.handleAnalyze)
	r.Get("/task/{taskID}", s.handleTask)
	r.Get("/results/{taskID}", s.handleResults)
	r.Get("/health", s.handleHealth)
	return r
}

// Serve runs the HTTP server until the context is cancelled, then shuts
// down gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Router()}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		slog.Info("shutting down HTTP server")
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// analyzeRequest is the body of POST /analyze.
type analyzeRequest struct {
	URL      string `json:"url"`
	MaxPages int    `json:"max_pages"`
	MaxDepth int    `json:"max_depth"`
}

// analyzeResponse acknowledges a submitted analysis.
type analyzeResponse struct {
	TaskID string     `json:"task_id"`
	Status TaskStatus `json:"status"`
}

// handleAnalyze registers an analysis task and launches the pipeline in the
// background. Submitting the same URL and limits again while the task is
// still running returns the existing task unchanged.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var body analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if body.URL == "" {
		http.Error(w, "url is required", http.StatusBadRequest)
		return
	}

	req := pipeline.Request{URL: body.URL, MaxPages: body.MaxPages, MaxDepth: body.MaxDepth}
	taskID := s.pipeline.AnalysisID(req)

	if !s.tasks.Start(taskID) {
		writeJSON(w, http.StatusOK, analyzeResponse{TaskID: taskID, Status: TaskRunning})
		return
	}

	slog.Info("analysis task started", "task_id", taskID, "url", body.URL)
	go s.runTask(taskID, req)

	writeJSON(w, http.StatusAccepted, analyzeResponse{TaskID: taskID, Status: TaskRunning})
}

// runTask executes the pipeline for one task, feeding progress updates into
// the tracker. It deliberately uses a background context: the analysis
// outlives the HTTP request that started it.
func (s *Server) runTask(taskID string, req pipeline.Request) {
	_, err := s.pipeline.Run(context.Background(), req, func(fraction float64, message string) {
		s.tasks.Update(taskID, fraction, message)
	})
	if err != nil {
		slog.Error("analysis task failed", "task_id", taskID, "error", err)
		s.tasks.Fail(taskID, err)
		return
	}
	s.tasks.Complete(taskID)
}

// handleTask reports the status of one task.
func (s *Server) handleTask(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskID")
	task, ok := s.tasks.Get(taskID)
	if !ok {
		http.Error(w, "task not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// handleResults returns the stored result for a completed task.
func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskID")

	result, err := s.store.Load(r.Context(), taskID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "results not found", http.StatusNotFound)
			return
		}
		slog.Error("failed to load results", "task_id", taskID, "error", err)
		http.Error(w, "failed to load results", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
