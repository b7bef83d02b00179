// Package httpapi exposes on-demand diagnostics over HTTP. Each
// request triggers an independent run; nothing is cached between
// requests, so every response is a fresh snapshot.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"aisdiag/internal/domain"
)

// Diagnoser is the run orchestrator as the API sees it.
type Diagnoser interface {
	Execute(ctx context.Context) (*domain.DiagnosticReport, domain.RunStatus, error)
}

type Server struct {
	Logger *zap.Logger
	Runner Diagnoser
}

func NewServer(l *zap.Logger, r Diagnoser) *Server {
	return &Server{Logger: l, Runner: r}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.AllowAll().Handler)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Post("/api/diagnose", s.handleDiagnose)

	return r
}

func (s *Server) handleDiagnose(w http.ResponseWriter, r *http.Request) {
	rep, status, err := s.Runner.Execute(r.Context())
	if err != nil {
		s.Logger.Error("diagnose_setup_failed", zap.Error(err))
		http.Error(w, "diagnostic setup failed: "+err.Error(), http.StatusServiceUnavailable)
		return
	}

	s.Logger.Info("diagnose_completed",
		zap.String("run_id", rep.RunID),
		zap.String("verdict", string(rep.Verdict)),
	)

	w.Header().Set("Content-Type", "application/json")
	if status == domain.RunIssues {
		// The run worked; the header mirrors the exit-code protocol so
		// scripted callers can branch without parsing the body.
		w.Header().Set("X-Aisdiag-Issues", "true")
	}
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(rep.Clone()); err != nil {
		s.Logger.Warn("diagnose_encode_failed", zap.Error(err))
	}
}
