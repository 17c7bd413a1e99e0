package workforce

import (
	"workforce-mgmt/pkg/comment"
	"workforce-mgmt/pkg/task"
)

// TaskView is the flat projection of a task returned to callers.
type TaskView struct {
	ID               int64              `json:"id"`
	ReferenceID      int64              `json:"reference_id"`
	ReferenceType    task.ReferenceType `json:"reference_type"`
	TaskType         task.TaskType      `json:"task"`
	AssigneeID       int64              `json:"assignee_id"`
	Status           task.Status        `json:"status"`
	Priority         task.Priority      `json:"priority"`
	TaskDeadlineTime *int64             `json:"task_deadline_time,omitempty"`
	Description      string             `json:"description"`
	Comments         []CommentView      `json:"comments,omitempty"`
}

// CommentView is the flat projection of a comment.
type CommentView struct {
	ID          int64  `json:"id"`
	TaskID      int64  `json:"task_id"`
	CommentText string `json:"comment_text"`
	CreatedAt   int64  `json:"created_at"`
}

// CreateItem describes one task to create.
type CreateItem struct {
	ReferenceID      int64              `json:"reference_id"`
	ReferenceType    task.ReferenceType `json:"reference_type"`
	TaskType         task.TaskType      `json:"task"`
	AssigneeID       int64              `json:"assignee_id"`
	Priority         task.Priority      `json:"priority"`
	TaskDeadlineTime *int64             `json:"task_deadline_time"`
}

// UpdateItem is a partial update; nil fields are left unchanged.
type UpdateItem struct {
	TaskID      int64        `json:"task_id"`
	Status      *task.Status `json:"task_status"`
	Description *string      `json:"description"`
}

type AssignRequest struct {
	ReferenceID   int64              `json:"reference_id"`
	ReferenceType task.ReferenceType `json:"reference_type"`
	AssigneeID    int64              `json:"assignee_id"`
}

// FetchByDateRequest selects tasks of the given assignees around an inclusive
// [StartDate, EndDate] window in epoch millis.
type FetchByDateRequest struct {
	AssigneeIDs []int64 `json:"assignee_ids"`
	StartDate   int64   `json:"start_date"`
	EndDate     int64   `json:"end_date"`
}

type AddCommentRequest struct {
	CommentText string `json:"comment_text"`
}

func toTaskView(t *task.Task) TaskView {
	v := TaskView{
		ID:            t.ID,
		ReferenceID:   t.ReferenceID,
		ReferenceType: t.ReferenceType,
		TaskType:      t.TaskType,
		AssigneeID:    t.AssigneeID,
		Status:        t.Status,
		Priority:      t.Priority,
		Description:   t.Description,
	}
	if t.Deadline != nil {
		d := *t.Deadline
		v.TaskDeadlineTime = &d
	}
	return v
}

func toTaskViews(tasks []task.Task) []TaskView {
	views := make([]TaskView, 0, len(tasks))
	for i := range tasks {
		views = append(views, toTaskView(&tasks[i]))
	}
	return views
}

func toCommentView(c comment.Comment) CommentView {
	return CommentView{
		ID:          c.ID,
		TaskID:      c.TaskID,
		CommentText: c.CommentText,
		CreatedAt:   c.CreatedAt,
	}
}
