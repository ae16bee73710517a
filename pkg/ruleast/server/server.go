// Package server exposes rule building, evaluation and storage over HTTP.
package server

import (
	"log/slog"
	"net/http"

	"github.com/valyala/fastjson"

	"github.com/randalmurphal/ruleast/pkg/ruleast"
	"github.com/randalmurphal/ruleast/pkg/ruleast/observability"
	"github.com/randalmurphal/ruleast/pkg/ruleast/store"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Server serves the rule API. Create one with New and mount Handler.
type Server struct {
	manager *ruleast.Manager
	store   store.Store
	logger  *slog.Logger
	parsers fastjson.ParserPool
	mux     *http.ServeMux
}

// New creates a Server. A nil logger uses slog.Default().
func New(manager *ruleast.Manager, st store.Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		manager: manager,
		store:   st,
		logger:  logger,
		mux:     http.NewServeMux(),
	}

	s.mux.Handle("POST /create_rule", s.handle(s.handleCreateRule))
	s.mux.Handle("POST /combine_rules", s.handle(s.handleCombineRules))
	s.mux.Handle("POST /evaluate_rule", s.handle(s.handleEvaluateRule))

	s.mux.Handle("POST /rules", s.handle(s.handleSaveRule))
	s.mux.Handle("GET /rules", s.handle(s.handleListRules))
	s.mux.Handle("POST /rules/combine", s.handle(s.handleCombineStored))
	s.mux.Handle("GET /rules/{id}", s.handle(s.handleGetRule))
	s.mux.Handle("DELETE /rules/{id}", s.handle(s.handleDeleteRule))
	s.mux.Handle("POST /rules/{id}/evaluate", s.handle(s.handleEvaluateStored))

	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return s
}

// Handler returns the routed handler wrapped with request logging.
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		done := observability.TimedOperation()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		s.mux.ServeHTTP(rec, r)
		observability.LogRequest(s.logger, r.Method, r.URL.Path, rec.status, done())
	})
}

// statusRecorder remembers the status code written through it.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
