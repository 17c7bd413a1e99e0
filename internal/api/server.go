package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-pkgz/lgr"

	"workforce-mgmt/pkg/activity"
	"workforce-mgmt/pkg/task"
	"workforce-mgmt/pkg/workforce"
)

// Activity is the read side of the activity bus.
type Activity interface {
	Recent(ctx context.Context, limit int) ([]activity.Event, error)
	Subscribe() chan activity.Event
	Unsubscribe(ch chan activity.Event)
}

// Server is the HTTP API server.
type Server struct {
	svc      *workforce.Service
	activity Activity
	log      lgr.L
	mux      *http.ServeMux
}

// New creates a new Server.
func New(svc *workforce.Service, act Activity, log lgr.L) *Server {
	if log == nil {
		log = lgr.Default()
	}
	s := &Server{
		svc:      svc,
		activity: act,
		log:      log,
		mux:      http.NewServeMux(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) routes() {
	// Tasks
	s.mux.HandleFunc("GET /api/tasks/{id}", s.handleTaskGet)
	s.mux.HandleFunc("POST /api/tasks/create", s.handleTaskCreate)
	s.mux.HandleFunc("POST /api/tasks/update", s.handleTaskUpdate)
	s.mux.HandleFunc("POST /api/tasks/assign-by-ref", s.handleAssignByRef)
	s.mux.HandleFunc("POST /api/tasks/fetch-by-date", s.handleFetchByDate)
	s.mux.HandleFunc("GET /api/tasks/priority/{priority}", s.handleByPriority)
	s.mux.HandleFunc("PATCH /api/tasks/{id}/priority", s.handlePriorityUpdate)

	// Comments
	s.mux.HandleFunc("POST /api/tasks/{id}/comments", s.handleCommentAdd)
	s.mux.HandleFunc("GET /api/tasks/{id}/comments", s.handleCommentList)

	// Activity
	s.mux.HandleFunc("GET /api/activity", s.handleActivityList)
	s.mux.HandleFunc("GET /api/activity/stream", s.handleActivityStream)

	// System
	s.mux.HandleFunc("GET /health", s.handleHealth)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		lgr.Printf("[WARN] write json: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps domain errors onto status codes.
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, task.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, task.ErrInvalidTransition):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, task.ErrInvalid):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.log.Logf("[ERROR] request failed: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
