package workforce

import (
	"context"
	"fmt"
	"time"

	"workforce-mgmt/pkg/activity"
	"workforce-mgmt/pkg/task"
)

// FetchTasksByDate returns the non-cancelled tasks of the given assignees whose
// deadline falls inside the window, plus active tasks that are already overdue
// relative to the window start.
func (s *Service) FetchTasksByDate(ctx context.Context, req FetchByDateRequest) ([]TaskView, error) {
	if req.EndDate < req.StartDate {
		return nil, fmt.Errorf("%w: end date %d before start date %d", task.ErrInvalid, req.EndDate, req.StartDate)
	}
	tasks, err := s.tasks.FindByAssignees(ctx, req.AssigneeIDs)
	if err != nil {
		return nil, fmt.Errorf("load tasks by assignees: %w", err)
	}

	var out []task.Task
	for _, t := range tasks {
		if t.Status == task.StatusCancelled {
			continue
		}
		if matchesWindow(t, req.StartDate, req.EndDate) {
			out = append(out, t)
		}
	}
	return toTaskViews(out), nil
}

func matchesWindow(t task.Task, start, end int64) bool {
	// no deadline: only actionable work is surfaced
	if t.Deadline == nil {
		return t.Status.Active()
	}
	d := *t.Deadline
	if d >= start && d <= end {
		return true
	}
	return d < start && t.Status.Active()
}

// GetByPriority returns every task with the given priority regardless of status.
func (s *Service) GetByPriority(ctx context.Context, p task.Priority) ([]TaskView, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("%w: priority %q", task.ErrInvalid, p)
	}
	all, err := s.tasks.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	var out []task.Task
	for _, t := range all {
		if t.Priority == p {
			out = append(out, t)
		}
	}
	return toTaskViews(out), nil
}

// UpdateTaskPriority overwrites only the priority of a task.
func (s *Service) UpdateTaskPriority(ctx context.Context, id int64, p task.Priority) (TaskView, error) {
	if !p.Valid() {
		return TaskView{}, fmt.Errorf("%w: priority %q", task.ErrInvalid, p)
	}
	unlock := s.taskLocks.Lock(id)
	defer unlock()

	t, err := s.tasks.Get(ctx, id)
	if err != nil {
		return TaskView{}, err
	}
	prev := t.Priority
	t.Priority = p
	saved, err := s.tasks.Save(ctx, t)
	if err != nil {
		return TaskView{}, fmt.Errorf("save task %d: %w", id, err)
	}
	s.publish(ctx, activity.TaskPriorityChanged, id, map[string]any{
		"from": string(prev),
		"to":   string(p),
	})
	return toTaskView(saved), nil
}

// Overdue returns live tasks whose deadline is before now or unset.
func (s *Service) Overdue(ctx context.Context, now time.Time) ([]TaskView, error) {
	all, err := s.tasks.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	nowMs := now.UnixMilli()
	var out []task.Task
	for _, t := range all {
		if t.Overdue(nowMs) {
			out = append(out, t)
		}
	}
	return toTaskViews(out), nil
}

// Now returns the service clock.
func (s *Service) Now() time.Time { return s.now() }
