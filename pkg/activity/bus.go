package activity

import (
	"context"
	"sync"
)

// Bus wraps a Log with in-process fan-out notification.
// When Append is called, all subscribers receive the new event.
type Bus struct {
	Log
	mu   sync.RWMutex
	subs map[chan Event]struct{}
}

// NewBus creates a Bus wrapping the given log.
func NewBus(log Log) *Bus {
	return &Bus{
		Log:  log,
		subs: make(map[chan Event]struct{}),
	}
}

// Append delegates to the underlying log, then fans out to all subscribers.
func (b *Bus) Append(ctx context.Context, eventType, source string, taskID int64, content map[string]any) (*Event, error) {
	e, err := b.Log.Append(ctx, eventType, source, taskID, content)
	if err != nil {
		return nil, err
	}

	b.mu.RLock()
	for ch := range b.subs {
		select {
		case ch <- *e:
		default:
			// subscriber is behind; drop to avoid blocking Append
		}
	}
	b.mu.RUnlock()

	return e, nil
}

// Subscribe returns a buffered channel that receives all new events.
func (b *Bus) Subscribe() chan Event {
	ch := make(chan Event, 64)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *Bus) Unsubscribe(ch chan Event) {
	b.mu.Lock()
	if _, ok := b.subs[ch]; ok {
		delete(b.subs, ch)
		close(ch)
	}
	b.mu.Unlock()
}
