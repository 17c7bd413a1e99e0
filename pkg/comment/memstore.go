package comment

import (
	"context"
	"slices"
	"sync"
)

// MemStore keeps comments in process memory, keyed by task id.
type MemStore struct {
	mu     sync.Mutex
	byTask map[int64][]Comment
	lastID int64
}

func NewMemStore() *MemStore {
	return &MemStore{byTask: make(map[int64][]Comment)}
}

func (s *MemStore) EnsureTable(context.Context) error { return nil }

func (s *MemStore) Append(_ context.Context, taskID int64, text string, createdAt int64) (*Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastID++
	c := Comment{
		ID:          s.lastID,
		TaskID:      taskID,
		CommentText: text,
		CreatedAt:   createdAt,
	}
	s.byTask[taskID] = append(s.byTask[taskID], c)
	return &c, nil
}

func (s *MemStore) ByTask(_ context.Context, taskID int64) ([]Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.byTask[taskID]), nil
}
