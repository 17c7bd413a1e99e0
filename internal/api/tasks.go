package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"workforce-mgmt/pkg/task"
	"workforce-mgmt/pkg/workforce"
)

// batch is the envelope for multi-item task requests.
type batch[T any] struct {
	Requests []T `json:"requests"`
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid task id %q", r.PathValue("id"))
	}
	return id, nil
}

func (s *Server) handleTaskGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	v, err := s.svc.FindTaskByID(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleTaskCreate(w http.ResponseWriter, r *http.Request) {
	var req batch[workforce.CreateItem]
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	views, err := s.svc.CreateTasks(r.Context(), req.Requests)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, nonNil(views))
}

func (s *Server) handleTaskUpdate(w http.ResponseWriter, r *http.Request) {
	var req batch[workforce.UpdateItem]
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	views, err := s.svc.UpdateTasks(r.Context(), req.Requests)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(views))
}

func (s *Server) handleAssignByRef(w http.ResponseWriter, r *http.Request) {
	var req workforce.AssignRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	msg, err := s.svc.AssignByReference(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": msg})
}

func (s *Server) handleFetchByDate(w http.ResponseWriter, r *http.Request) {
	var req workforce.FetchByDateRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	views, err := s.svc.FetchTasksByDate(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(views))
}

func (s *Server) handleByPriority(w http.ResponseWriter, r *http.Request) {
	p, err := task.ParsePriority(r.PathValue("priority"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	views, err := s.svc.GetByPriority(r.Context(), p)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(views))
}

func (s *Server) handlePriorityUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req struct {
		Priority string `json:"priority"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	p, err := task.ParsePriority(req.Priority)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	v, err := s.svc.UpdateTaskPriority(r.Context(), id, p)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleCommentAdd(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req workforce.AddCommentRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	c, err := s.svc.AddComment(r.Context(), id, req)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleCommentList(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	comments, err := s.svc.ListComments(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

// nonNil keeps empty results encoded as [] rather than null.
func nonNil[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}
