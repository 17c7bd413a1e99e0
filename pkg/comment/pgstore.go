package comment

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PgStore is a PostgreSQL-backed comment store. The BIGSERIAL id gives a
// single global sequence across tasks.
type PgStore struct {
	pool *pgxpool.Pool
}

// NewPgStore creates a PgStore.
func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

// EnsureTable creates the task_comments table if it doesn't exist.
func (s *PgStore) EnsureTable(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS task_comments (
			id           BIGSERIAL PRIMARY KEY,
			task_id      BIGINT NOT NULL,
			comment_text TEXT NOT NULL,
			created_at   BIGINT NOT NULL
		)`)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `CREATE INDEX IF NOT EXISTS idx_task_comments_task ON task_comments(task_id, id)`)
	return err
}

// Append inserts a comment and returns it with its allocated id.
func (s *PgStore) Append(ctx context.Context, taskID int64, text string, createdAt int64) (*Comment, error) {
	c := Comment{TaskID: taskID, CommentText: text, CreatedAt: createdAt}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO task_comments (task_id, comment_text, created_at)
		VALUES ($1, $2, $3) RETURNING id`,
		taskID, text, createdAt).Scan(&c.ID)
	if err != nil {
		return nil, fmt.Errorf("append comment to task %d: %w", taskID, err)
	}
	return &c, nil
}

// ByTask returns the comments of a task ordered by id.
func (s *PgStore) ByTask(ctx context.Context, taskID int64) ([]Comment, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, task_id, comment_text, created_at
		FROM task_comments WHERE task_id = $1 ORDER BY id ASC`, taskID)
	if err != nil {
		return nil, fmt.Errorf("comments for task %d: %w", taskID, err)
	}
	defer rows.Close()

	var comments []Comment
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.TaskID, &c.CommentText, &c.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
