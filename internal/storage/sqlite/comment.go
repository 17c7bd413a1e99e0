package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"workforce-mgmt/pkg/comment"
)

// CommentStorage implements comment.Store on SQLite. AUTOINCREMENT ids never
// repeat, so they form a single increasing sequence across tasks.
type CommentStorage struct {
	db *sql.DB
}

func NewCommentStorage(db *sql.DB) *CommentStorage {
	return &CommentStorage{db: db}
}

func (s *CommentStorage) EnsureTable(context.Context) error {
	return migrate(s.db)
}

func (s *CommentStorage) Append(ctx context.Context, taskID int64, text string, createdAt int64) (*comment.Comment, error) {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO task_comments (task_id, comment_text, created_at) VALUES (?, ?, ?)`,
		taskID, text, createdAt)
	if err != nil {
		return nil, fmt.Errorf("could not append comment: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("could not get last insert id: %w", err)
	}
	return &comment.Comment{ID: id, TaskID: taskID, CommentText: text, CreatedAt: createdAt}, nil
}

func (s *CommentStorage) ByTask(ctx context.Context, taskID int64) ([]comment.Comment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, task_id, comment_text, created_at FROM task_comments WHERE task_id = ? ORDER BY id ASC`, taskID)
	if err != nil {
		return nil, fmt.Errorf("could not query comments: %w", err)
	}
	defer rows.Close()

	var comments []comment.Comment
	for rows.Next() {
		var c comment.Comment
		if err := rows.Scan(&c.ID, &c.TaskID, &c.CommentText, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("could not scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("could not iterate comments: %w", err)
	}
	return comments, nil
}
