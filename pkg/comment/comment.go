// Package comment holds the append-only comment ledger attached to tasks.
package comment

import "context"

// Comment is a single note on a task. Comments are never edited or removed.
type Comment struct {
	ID          int64  `json:"id"`
	TaskID      int64  `json:"task_id"`
	CommentText string `json:"comment_text"`
	CreatedAt   int64  `json:"created_at"` // epoch millis
}

// Store is the contract for comment persistence. Ids are allocated from a
// single counter shared by all tasks and are strictly increasing.
type Store interface {
	Append(ctx context.Context, taskID int64, text string, createdAt int64) (*Comment, error)
	// ByTask returns a task's comments in insertion order.
	ByTask(ctx context.Context, taskID int64) ([]Comment, error)
	EnsureTable(ctx context.Context) error
}
