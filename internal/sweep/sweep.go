// Package sweep periodically scans for overdue tasks and records them on the activity bus.
package sweep

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"
	rcron "github.com/robfig/cron/v3"

	"workforce-mgmt/pkg/activity"
	"workforce-mgmt/pkg/workforce"
)

const source = "sweeper"

// OverdueFinder lists overdue tasks at a point in time.
type OverdueFinder interface {
	Overdue(ctx context.Context, now time.Time) ([]workforce.TaskView, error)
	Now() time.Time
}

// Publisher records sweep results.
type Publisher interface {
	Append(ctx context.Context, eventType, source string, taskID int64, content map[string]any) (*activity.Event, error)
}

// Sweeper runs RunOnce on a cron schedule.
type Sweeper struct {
	finder   OverdueFinder
	events   Publisher
	schedule string
	log      lgr.L

	mu     sync.Mutex
	cron   *rcron.Cron
	cancel context.CancelFunc
}

// New creates a Sweeper. schedule is a six-field cron expression.
func New(finder OverdueFinder, events Publisher, schedule string, log lgr.L) *Sweeper {
	if log == nil {
		log = lgr.Default()
	}
	return &Sweeper{finder: finder, events: events, schedule: schedule, log: log}
}

// Start registers the sweep job and starts the scheduler. The sweeper stops
// when ctx is cancelled or Stop is called.
func (s *Sweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		return fmt.Errorf("sweeper already started")
	}

	runCtx, cancel := context.WithCancel(ctx)
	c := rcron.New(rcron.WithSeconds())
	_, err := c.AddFunc(s.schedule, func() {
		n, err := s.RunOnce(runCtx)
		if err != nil {
			s.log.Logf("[WARN] overdue sweep failed: %v", err)
			return
		}
		s.log.Logf("[DEBUG] overdue sweep found %d tasks", n)
	})
	if err != nil {
		cancel()
		return fmt.Errorf("schedule %q: %w", s.schedule, err)
	}
	s.cron = c
	s.cancel = cancel
	c.Start()
	s.log.Logf("[INFO] sweeper started with schedule %q", s.schedule)

	go func() {
		<-runCtx.Done()
		s.Stop()
	}()
	return nil
}

// Stop halts the scheduler and waits up to five seconds for a running sweep.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	c, cancel := s.cron, s.cancel
	s.cron, s.cancel = nil, nil
	s.mu.Unlock()
	if c == nil {
		return
	}
	cancel()

	select {
	case <-c.Stop().Done():
	case <-time.After(5 * time.Second):
		s.log.Logf("[WARN] sweeper stop timeout waiting for running sweep")
	}
	s.log.Logf("[INFO] sweeper stopped")
}

// RunOnce publishes one overdue event per overdue task and returns how many were found.
func (s *Sweeper) RunOnce(ctx context.Context) (int, error) {
	now := s.finder.Now()
	tasks, err := s.finder.Overdue(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("find overdue tasks: %w", err)
	}
	for _, t := range tasks {
		content := map[string]any{
			"assignee_id": t.AssigneeID,
			"status":      string(t.Status),
			"priority":    string(t.Priority),
			"checked_at":  now.UnixMilli(),
		}
		if t.TaskDeadlineTime != nil {
			content["task_deadline_time"] = *t.TaskDeadlineTime
		}
		if _, err := s.events.Append(ctx, activity.TaskOverdue, source, t.ID, content); err != nil {
			return 0, fmt.Errorf("publish overdue task %d: %w", t.ID, err)
		}
	}
	return len(tasks), nil
}
