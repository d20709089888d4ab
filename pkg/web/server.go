package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/ritzau/jdeps-cycles/pkg/logging"
	"github.com/ritzau/jdeps-cycles/pkg/output"
)

// Analyzer runs one cycle analysis
type Analyzer interface {
	FindCycles(ctx context.Context) (*output.Report, error)
}

// Server serves the latest cycle report over HTTP
type Server struct {
	router   *mux.Router
	analyzer Analyzer
	log      *slog.Logger

	mu     sync.RWMutex
	report *output.Report
}

// NewServer creates a new web server. analyzer may be nil, in which case
// on-demand analysis is unavailable.
func NewServer(analyzer Analyzer) *Server {
	s := &Server{
		router:   mux.NewRouter(),
		analyzer: analyzer,
		log:      logging.New("web"),
	}
	s.setupRoutes()
	return s
}

// SetReport replaces the report being served
func (s *Server) SetReport(report *output.Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.report = report
}

// Report returns the report being served, or nil before the first analysis
func (s *Server) Report() *output.Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.report
}

// Handler returns the root handler, request logging included
func (s *Server) Handler() http.Handler {
	return logging.RequestIDMiddleware(s.router)
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/healthz", s.handleHealth).Methods("GET")

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/report", s.handleReport).Methods("GET")
	api.HandleFunc("/cycles", s.handleCycles).Methods("GET")
	api.HandleFunc("/cycles/{n:[0-9]+}", s.handleCycle).Methods("GET")
	api.HandleFunc("/tangles", s.handleTangles).Methods("GET")
	api.HandleFunc("/analyze", s.handleAnalyze).Methods("POST")
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	report := s.Report()
	if report == nil {
		writeError(w, http.StatusNotFound, "no analysis has completed yet")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleCycles(w http.ResponseWriter, r *http.Request) {
	report := s.Report()
	if report == nil {
		writeError(w, http.StatusNotFound, "no analysis has completed yet")
		return
	}
	writeJSON(w, http.StatusOK, report.Cycles)
}

// handleCycle returns a single cycle by its 1-based number
func (s *Server) handleCycle(w http.ResponseWriter, r *http.Request) {
	report := s.Report()
	if report == nil {
		writeError(w, http.StatusNotFound, "no analysis has completed yet")
		return
	}

	n, err := strconv.Atoi(mux.Vars(r)["n"])
	if err != nil || n < 1 || n > len(report.Cycles) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("cycle %s not found", mux.Vars(r)["n"]))
		return
	}
	writeJSON(w, http.StatusOK, report.Cycles[n-1])
}

func (s *Server) handleTangles(w http.ResponseWriter, r *http.Request) {
	report := s.Report()
	if report == nil {
		writeError(w, http.StatusNotFound, "no analysis has completed yet")
		return
	}
	writeJSON(w, http.StatusOK, report.Tangles)
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if s.analyzer == nil {
		writeError(w, http.StatusServiceUnavailable, "analysis is not available")
		return
	}

	report, err := s.analyzer.FindCycles(r.Context())
	if err != nil {
		s.log.ErrorContext(r.Context(), "analysis failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.SetReport(report)
	logging.InfoContext(r.Context(), "analysis finished", "cycles", report.Count)
	writeJSON(w, http.StatusOK, report)
}

// Start serves on the given port until ctx is cancelled
func (s *Server) Start(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("starting web server", "url", fmt.Sprintf("http://localhost:%d", port))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
