package task

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when a task id does not resolve.
	ErrNotFound = errors.New("task not found")
	// ErrInvalidTransition is returned when a status change is not in the lifecycle table.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrInvalid is returned for malformed enum values or empty references.
	ErrInvalid = errors.New("invalid task field")
)

// Status is the lifecycle state of a task.
type Status string

const (
	StatusAssigned  Status = "ASSIGNED"
	StatusStarted   Status = "STARTED"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// Live reports whether the task still represents outstanding work.
func (s Status) Live() bool {
	return s != StatusCompleted && s != StatusCancelled
}

// Active reports whether the task is assigned or in progress.
func (s Status) Active() bool {
	return s == StatusAssigned || s == StatusStarted
}

func (s Status) Valid() bool {
	switch s {
	case StatusAssigned, StatusStarted, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// ParseStatus converts a case-insensitive name into a Status.
func ParseStatus(v string) (Status, error) {
	s := Status(strings.ToUpper(strings.TrimSpace(v)))
	if !s.Valid() {
		return "", fmt.Errorf("%w: status %q", ErrInvalid, v)
	}
	return s, nil
}

// Priority is an ordered urgency level.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

// Rank returns the sort order of a priority (higher = more urgent), or -1 if unknown.
func (p Priority) Rank() int {
	switch p {
	case PriorityLow:
		return 0
	case PriorityMedium:
		return 1
	case PriorityHigh:
		return 2
	case PriorityUrgent:
		return 3
	}
	return -1
}

func (p Priority) Valid() bool { return p.Rank() >= 0 }

// ParsePriority converts a case-insensitive name into a Priority.
func ParsePriority(v string) (Priority, error) {
	p := Priority(strings.ToUpper(strings.TrimSpace(v)))
	if !p.Valid() {
		return "", fmt.Errorf("%w: priority %q", ErrInvalid, v)
	}
	return p, nil
}

// Task is a unit of work about a reference entity, owned by one assignee.
type Task struct {
	ID            int64         `json:"id"`
	ReferenceID   int64         `json:"reference_id"`
	ReferenceType ReferenceType `json:"reference_type"`
	TaskType      TaskType      `json:"task"`
	AssigneeID    int64         `json:"assignee_id"`
	Status        Status        `json:"status"`
	Priority      Priority      `json:"priority"`
	Deadline      *int64        `json:"task_deadline_time,omitempty"` // epoch millis
	Description   string        `json:"description"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// Clone returns a deep copy of t.
func (t Task) Clone() *Task {
	if t.Deadline != nil {
		d := *t.Deadline
		t.Deadline = &d
	}
	return &t
}

// Overdue reports whether a live task has passed its deadline at nowMs.
// A task without a deadline is always overdue.
func (t Task) Overdue(nowMs int64) bool {
	if !t.Status.Live() {
		return false
	}
	return t.Deadline == nil || *t.Deadline < nowMs
}

// Store is the contract for task persistence.
type Store interface {
	// Get returns ErrNotFound when id does not resolve.
	Get(ctx context.Context, id int64) (*Task, error)
	// Save inserts t when t.ID is zero, otherwise overwrites the stored record.
	Save(ctx context.Context, t *Task) (*Task, error)
	FindAll(ctx context.Context) ([]Task, error)
	FindByReference(ctx context.Context, referenceID int64, referenceType ReferenceType) ([]Task, error)
	FindByAssignees(ctx context.Context, assigneeIDs []int64) ([]Task, error)
	EnsureTable(ctx context.Context) error
}
