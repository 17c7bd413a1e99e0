package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/coder/websocket"
)

const maxActivityLimit = 500

func (s *Server) handleActivityList(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	if limit <= 0 || limit > maxActivityLimit {
		limit = maxActivityLimit
	}
	events, err := s.activity.Recent(r.Context(), limit)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	if t := r.URL.Query().Get("type"); t != "" {
		filtered := events[:0]
		for _, e := range events {
			if e.Type == t {
				filtered = append(filtered, e)
			}
		}
		events = filtered
	}
	writeJSON(w, http.StatusOK, nonNil(events))
}

// handleActivityStream pushes every new bus event to a websocket client as JSON text frames.
func (s *Server) handleActivityStream(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		s.log.Logf("[WARN] websocket accept: %v", err)
		return
	}
	defer conn.CloseNow()

	ch := s.activity.Subscribe()
	defer s.activity.Unsubscribe(ch)

	// clients only listen; CloseRead cancels ctx when they go away
	ctx := conn.CloseRead(r.Context())
	filter := r.URL.Query().Get("type")

	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case e, ok := <-ch:
			if !ok {
				conn.Close(websocket.StatusGoingAway, "stream closed")
				return
			}
			if filter != "" && e.Type != filter {
				continue
			}
			data, err := json.Marshal(e)
			if err != nil {
				s.log.Logf("[WARN] encode event %s: %v", e.ID, err)
				continue
			}
			if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
				return
			}
		}
	}
}

func queryInt(r *http.Request, key string, defaultVal int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return n
}
