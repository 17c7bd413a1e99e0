package activity

import (
	"context"
	"sync"
)

// DefaultCapacity is how many events a MemLog keeps when none is given.
const DefaultCapacity = 1000

// MemLog is a bounded in-memory Log. Once full, the oldest event is overwritten.
type MemLog struct {
	mu     sync.Mutex
	events []Event
	next   int
	full   bool
}

func NewMemLog(capacity int) *MemLog {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &MemLog{events: make([]Event, capacity)}
}

func (l *MemLog) EnsureTable(context.Context) error { return nil }

func (l *MemLog) Append(_ context.Context, eventType, source string, taskID int64, content map[string]any) (*Event, error) {
	e := NewEvent(eventType, source, taskID, content)
	l.mu.Lock()
	l.events[l.next] = e
	l.next = (l.next + 1) % len(l.events)
	if l.next == 0 {
		l.full = true
	}
	l.mu.Unlock()
	return &e, nil
}

func (l *MemLog) Recent(_ context.Context, limit int) ([]Event, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	size := l.next
	if l.full {
		size = len(l.events)
	}
	if limit <= 0 || limit > size {
		limit = size
	}
	out := make([]Event, 0, limit)
	for i := 1; i <= limit; i++ {
		idx := (l.next - i + len(l.events)) % len(l.events)
		out = append(out, l.events[idx])
	}
	return out, nil
}
