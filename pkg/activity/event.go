// Package activity records what happened to tasks and fans it out to listeners.
package activity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event types emitted by the workforce service.
const (
	TaskCreated         = "task.created"
	TaskUpdated         = "task.updated"
	TaskCancelled       = "task.cancelled"
	TaskAssigned        = "task.assigned"
	TaskPriorityChanged = "task.priority_changed"
	TaskOverdue         = "task.overdue"
	CommentAdded        = "comment.added"
)

// Event is a single entry in the activity log.
type Event struct {
	ID        string         `json:"id"` // UUID v7 (time-ordered)
	Type      string         `json:"type"`
	TaskID    int64          `json:"task_id,omitempty"`
	Source    string         `json:"source"`
	Content   map[string]any `json:"content"`
	Timestamp time.Time      `json:"timestamp"`
}

// NewEvent stamps a fresh id and timestamp.
func NewEvent(eventType, source string, taskID int64, content map[string]any) Event {
	if content == nil {
		content = map[string]any{}
	}
	return Event{
		ID:        uuid.Must(uuid.NewV7()).String(),
		Type:      eventType,
		TaskID:    taskID,
		Source:    source,
		Content:   content,
		Timestamp: time.Now().Truncate(time.Microsecond),
	}
}

// Log is the contract for activity persistence.
type Log interface {
	Append(ctx context.Context, eventType, source string, taskID int64, content map[string]any) (*Event, error)
	// Recent returns up to limit events, newest first.
	Recent(ctx context.Context, limit int) ([]Event, error)
	EnsureTable(ctx context.Context) error
}
