// Package httpapi serves the read-only dashboard API: session and
// violation snapshots for an external UI to render. It never mutates the
// ledger.
package httpapi

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/jmuhire/parkgate/internal/parking/service"
)

type Dependencies struct {
	Logger *log.Logger
	Addr   string
	Ledger *service.Ledger
}

type Server struct {
	httpServer *http.Server
	logger     *log.Logger
	ledger     *service.Ledger
}

func NewServer(d Dependencies) *Server {
	s := &Server{
		logger: d.Logger,
		ledger: d.Ledger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/sessions", getOnly(s.handleSessions))
	mux.HandleFunc("/v1/violations", getOnly(s.handleViolations))

	handler := loggingMiddleware(d.Logger, mux)

	s.httpServer = &http.Server{
		Addr:              d.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

// getOnly restricts a route to GET and HEAD, matching the behavior of a
// "GET /path" ServeMux pattern on toolchains that predate method patterns
// (Go 1.22): other methods get 405 with an Allow header.
func getOnly(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		h(w, r)
	}
}

func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// handleSessions returns all sessions, most recent first.
func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.ledger.Sessions(r.Context())
	if err != nil {
		s.logger.Printf("sessions query error: %v", err)
		writeError(w, http.StatusInternalServerError, "storage_unavailable", "ledger query failed")
		return
	}

	views := make([]sessionView, 0, len(sessions))
	for i := len(sessions) - 1; i >= 0; i-- {
		views = append(views, sessionToView(sessions[i]))
	}
	writeJSON(w, http.StatusOK, views)
}

// handleViolations returns all unauthorized-attempt records, most recent
// first.
func (s *Server) handleViolations(w http.ResponseWriter, r *http.Request) {
	violations, err := s.ledger.Violations(r.Context())
	if err != nil {
		s.logger.Printf("violations query error: %v", err)
		writeError(w, http.StatusInternalServerError, "storage_unavailable", "ledger query failed")
		return
	}

	views := make([]violationView, 0, len(violations))
	for _, v := range violations {
		views = append(views, violationToView(v))
	}
	writeJSON(w, http.StatusOK, views)
}
