// Package workforce implements the task lifecycle, query, and comment rules
// on top of the task and comment stores.
package workforce

import (
	"context"
	"fmt"
	"time"

	"github.com/go-pkgz/lgr"

	"workforce-mgmt/pkg/activity"
	"workforce-mgmt/pkg/comment"
	"workforce-mgmt/pkg/task"
)

const (
	// DefaultCreateDescription is written on every task created through CreateTasks.
	DefaultCreateDescription = "New task created."
	// AssignDescription is written on tasks created by AssignByReference.
	AssignDescription = "Assigned by reference"

	eventSource = "workforce"
)

// Publisher receives activity events for every mutation.
type Publisher interface {
	Append(ctx context.Context, eventType, source string, taskID int64, content map[string]any) (*activity.Event, error)
}

// Service owns the task lifecycle, the query rules, and the comment ledger.
type Service struct {
	tasks    task.Store
	comments comment.Store
	events   Publisher
	log      lgr.L
	now      func() time.Time

	refLocks  *keyedMutex[string]
	taskLocks *keyedMutex[int64]
}

type Option func(*Service)

// WithPublisher sends activity events to p.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.events = p }
}

func WithLogger(l lgr.L) Option {
	return func(s *Service) { s.log = l }
}

// WithClock overrides the time source used for comment timestamps and overdue checks.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New creates a Service.
func New(tasks task.Store, comments comment.Store, opts ...Option) *Service {
	s := &Service{
		tasks:     tasks,
		comments:  comments,
		events:    activity.NewMemLog(activity.DefaultCapacity),
		log:       lgr.Default(),
		now:       time.Now,
		refLocks:  newKeyedMutex[string](),
		taskLocks: newKeyedMutex[int64](),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FindTaskByID returns a task with its comments joined in insertion order.
func (s *Service) FindTaskByID(ctx context.Context, id int64) (TaskView, error) {
	t, err := s.tasks.Get(ctx, id)
	if err != nil {
		return TaskView{}, err
	}
	comments, err := s.comments.ByTask(ctx, id)
	if err != nil {
		return TaskView{}, fmt.Errorf("load comments for task %d: %w", id, err)
	}
	v := toTaskView(t)
	for _, c := range comments {
		v.Comments = append(v.Comments, toCommentView(c))
	}
	return v, nil
}

func (s *Service) publish(ctx context.Context, eventType string, taskID int64, content map[string]any) {
	if _, err := s.events.Append(ctx, eventType, eventSource, taskID, content); err != nil {
		s.log.Logf("[WARN] publish %s for task %d: %v", eventType, taskID, err)
	}
}
