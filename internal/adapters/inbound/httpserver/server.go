// Package httpserver exposes the audit pipeline over HTTP for clients that
// capture page snapshots themselves, such as a browser extension.
package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"

	"github.com/liftlens/liftlens/internal/application"
	"github.com/liftlens/liftlens/internal/domain"
)

const maxRequestBytes = 100_000

// Server handles audit requests over HTTP.
type Server struct {
	audits  *application.AuditService
	limiter RateLimiter
	model   string
	logger  *slog.Logger
}

func New(audits *application.AuditService, limiter RateLimiter, model string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{audits: audits, limiter: limiter, model: model, logger: logger}
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /analyze", s.rateLimited(s.handleAnalyze))
	mux.HandleFunc("GET /health", s.handleHealth)
	return mux
}

func (s *Server) rateLimited(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow(clientIP(r)) {
			writeError(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
			return
		}
		next(w, r)
	}
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > maxRequestBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "Request too large")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)

	var snap domain.Snapshot
	if err := json.NewDecoder(r.Body).Decode(&snap); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Request too large")
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid snapshot data")
		return
	}
	if snap.URL == "" && snap.Content == "" {
		writeError(w, http.StatusBadRequest, "Invalid snapshot data")
		return
	}

	s.logger.Info("analysis request", "url", snap.URL)

	doc, err := s.audits.AnalyzeSnapshot(r.Context(), &snap)
	if err != nil {
		s.logger.Error("analysis failed", "url", snap.URL, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"model":  s.model,
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
