package workforce

import (
	"context"
	"fmt"

	"workforce-mgmt/pkg/activity"
	"workforce-mgmt/pkg/task"
)

// CreateTasks creates one ASSIGNED task per item, in input order. All items are
// validated before the first write.
func (s *Service) CreateTasks(ctx context.Context, items []CreateItem) ([]TaskView, error) {
	for i, item := range items {
		if err := validateCreate(item); err != nil {
			return nil, fmt.Errorf("create item %d: %w", i, err)
		}
	}

	views := make([]TaskView, 0, len(items))
	for _, item := range items {
		t := &task.Task{
			ReferenceID:   item.ReferenceID,
			ReferenceType: item.ReferenceType,
			TaskType:      item.TaskType,
			AssigneeID:    item.AssigneeID,
			Priority:      item.Priority,
			Status:        task.StatusAssigned,
			Description:   DefaultCreateDescription,
		}
		if item.TaskDeadlineTime != nil {
			d := *item.TaskDeadlineTime
			t.Deadline = &d
		}
		saved, err := s.tasks.Save(ctx, t)
		if err != nil {
			return nil, fmt.Errorf("save task: %w", err)
		}
		s.log.Logf("[DEBUG] created task %d (%s) for reference %d/%s", saved.ID, saved.TaskType, saved.ReferenceID, saved.ReferenceType)
		s.publish(ctx, activity.TaskCreated, saved.ID, map[string]any{
			"assignee_id": saved.AssigneeID,
			"task":        string(saved.TaskType),
		})
		views = append(views, toTaskView(saved))
	}
	return views, nil
}

func validateCreate(item CreateItem) error {
	if !item.ReferenceType.Valid() {
		return fmt.Errorf("%w: reference type %q", task.ErrInvalid, item.ReferenceType)
	}
	if !item.TaskType.Valid() {
		return fmt.Errorf("%w: task type %q", task.ErrInvalid, item.TaskType)
	}
	if item.Priority != "" && !item.Priority.Valid() {
		return fmt.Errorf("%w: priority %q", task.ErrInvalid, item.Priority)
	}
	return nil
}

// UpdateTasks applies partial status/description updates. Every lookup and
// transition check runs before the first write, so a missing task or an
// illegal transition leaves the store untouched.
func (s *Service) UpdateTasks(ctx context.Context, items []UpdateItem) ([]TaskView, error) {
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.TaskID)
	}
	unlock := lockAll(s.taskLocks, ids)
	defer unlock()

	current := make(map[int64]*task.Task, len(items))
	staged := make([]*task.Task, len(items))
	for i, item := range items {
		t, ok := current[item.TaskID]
		if !ok {
			loaded, err := s.tasks.Get(ctx, item.TaskID)
			if err != nil {
				return nil, err
			}
			t = loaded
			current[item.TaskID] = t
		}
		if item.Status != nil {
			if !item.Status.Valid() {
				return nil, fmt.Errorf("update task %d: %w: status %q", item.TaskID, task.ErrInvalid, *item.Status)
			}
			if err := task.CheckTransition(t.Status, *item.Status); err != nil {
				return nil, fmt.Errorf("update task %d: %w", item.TaskID, err)
			}
			t.Status = *item.Status
		}
		if item.Description != nil {
			t.Description = *item.Description
		}
		staged[i] = t.Clone()
	}

	views := make([]TaskView, 0, len(items))
	for _, t := range staged {
		saved, err := s.tasks.Save(ctx, t)
		if err != nil {
			return nil, fmt.Errorf("save task %d: %w", t.ID, err)
		}
		s.publish(ctx, activity.TaskUpdated, saved.ID, map[string]any{
			"status": string(saved.Status),
		})
		views = append(views, toTaskView(saved))
	}
	return views, nil
}

// AssignByReference hands every task type applicable to the reference over to
// a new assignee. Live tasks of each type are cancelled, and one fresh ASSIGNED
// task per type is always created. COMPLETED and CANCELLED tasks are left alone.
func (s *Service) AssignByReference(ctx context.Context, req AssignRequest) (string, error) {
	if !req.ReferenceType.Valid() {
		return "", fmt.Errorf("%w: reference type %q", task.ErrInvalid, req.ReferenceType)
	}
	types := task.ApplicableTaskTypes(req.ReferenceType)

	unlockRef := s.refLocks.Lock(fmt.Sprintf("%d/%s", req.ReferenceID, req.ReferenceType))
	defer unlockRef()

	existing, err := s.tasks.FindByReference(ctx, req.ReferenceID, req.ReferenceType)
	if err != nil {
		return "", fmt.Errorf("load tasks for reference %d: %w", req.ReferenceID, err)
	}

	byType := make(map[task.TaskType][]int64)
	var liveIDs []int64
	for _, t := range existing {
		if t.Status.Live() {
			byType[t.TaskType] = append(byType[t.TaskType], t.ID)
			liveIDs = append(liveIDs, t.ID)
		}
	}
	unlockTasks := lockAll(s.taskLocks, liveIDs)
	defer unlockTasks()

	for _, typ := range types {
		for _, id := range byType[typ] {
			// re-read under the task lock; a concurrent update may have closed it
			t, err := s.tasks.Get(ctx, id)
			if err != nil {
				return "", err
			}
			if !t.Status.Live() {
				continue
			}
			t.Status = task.StatusCancelled
			if _, err := s.tasks.Save(ctx, t); err != nil {
				return "", fmt.Errorf("cancel task %d: %w", id, err)
			}
			s.publish(ctx, activity.TaskCancelled, id, map[string]any{
				"reference_id": req.ReferenceID,
				"assignee_id":  t.AssigneeID,
			})
		}

		created, err := s.tasks.Save(ctx, &task.Task{
			ReferenceID:   req.ReferenceID,
			ReferenceType: req.ReferenceType,
			TaskType:      typ,
			AssigneeID:    req.AssigneeID,
			Status:        task.StatusAssigned,
			Description:   AssignDescription,
		})
		if err != nil {
			return "", fmt.Errorf("create %s task: %w", typ, err)
		}
		s.publish(ctx, activity.TaskAssigned, created.ID, map[string]any{
			"reference_id": req.ReferenceID,
			"assignee_id":  req.AssigneeID,
			"task":         string(typ),
		})
	}

	s.log.Logf("[INFO] reference %d/%s assigned to %d (%d task types)", req.ReferenceID, req.ReferenceType, req.AssigneeID, len(types))
	return fmt.Sprintf("Tasks assigned successfully for reference %d", req.ReferenceID), nil
}
