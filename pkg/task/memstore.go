package task

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"
)

// MemStore is an in-process task store. Records are copied in and out.
type MemStore struct {
	mu     sync.RWMutex
	tasks  map[int64]Task
	nextID int64
}

// NewMemStore creates an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{tasks: make(map[int64]Task)}
}

// EnsureTable is a no-op for the in-memory store.
func (s *MemStore) EnsureTable(context.Context) error { return nil }

func (s *MemStore) Get(_ context.Context, id int64) (*Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tasks[id]
	if !ok {
		return nil, fmt.Errorf("get task %d: %w", id, ErrNotFound)
	}
	return t.Clone(), nil
}

func (s *MemStore) Save(_ context.Context, t *Task) (*Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().Truncate(time.Microsecond)
	if t.ID == 0 {
		s.nextID++
		t.ID = s.nextID
		t.CreatedAt = now
	} else if prev, ok := s.tasks[t.ID]; ok {
		t.CreatedAt = prev.CreatedAt
	} else {
		return nil, fmt.Errorf("save task %d: %w", t.ID, ErrNotFound)
	}
	t.UpdatedAt = now
	s.tasks[t.ID] = *t.Clone()
	return t.Clone(), nil
}

// FindAll returns every task ordered by id.
func (s *MemStore) FindAll(context.Context) ([]Task, error) {
	return s.filter(func(Task) bool { return true }), nil
}

func (s *MemStore) FindByReference(_ context.Context, referenceID int64, referenceType ReferenceType) ([]Task, error) {
	return s.filter(func(t Task) bool {
		return t.ReferenceID == referenceID && t.ReferenceType == referenceType
	}), nil
}

func (s *MemStore) FindByAssignees(_ context.Context, assigneeIDs []int64) ([]Task, error) {
	return s.filter(func(t Task) bool {
		return slices.Contains(assigneeIDs, t.AssigneeID)
	}), nil
}

func (s *MemStore) filter(keep func(Task) bool) []Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Task
	for _, t := range s.tasks {
		if keep(t) {
			out = append(out, *t.Clone())
		}
	}
	slices.SortFunc(out, func(a, b Task) int { return cmp.Compare(a.ID, b.ID) })
	return out
}
