package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"workforce-mgmt/pkg/task"
)

const taskColumns = `id, reference_id, reference_type, task_type, assignee_id, status, priority, deadline_ms, description, created_at, updated_at`

// TaskStorage implements task.Store on SQLite.
type TaskStorage struct {
	db *sql.DB
}

func NewTaskStorage(db *sql.DB) *TaskStorage {
	return &TaskStorage{db: db}
}

// EnsureTable applies any pending migrations.
func (s *TaskStorage) EnsureTable(context.Context) error {
	return migrate(s.db)
}

func (s *TaskStorage) Get(ctx context.Context, id int64) (*task.Task, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("get task %d: %w", id, task.ErrNotFound)
		}
		return nil, fmt.Errorf("could not get task: %w", err)
	}
	return t, nil
}

func (s *TaskStorage) Save(ctx context.Context, t *task.Task) (*task.Task, error) {
	now := time.Now().Truncate(time.Microsecond)

	var deadline sql.NullInt64
	if t.Deadline != nil {
		deadline.Int64 = *t.Deadline
		deadline.Valid = true
	}

	if t.ID == 0 {
		result, err := s.db.ExecContext(ctx, `
			INSERT INTO tasks (reference_id, reference_type, task_type, assignee_id, status, priority, deadline_ms, description, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ReferenceID, string(t.ReferenceType), string(t.TaskType), t.AssigneeID,
			string(t.Status), string(t.Priority), deadline, t.Description,
			now.UnixMicro(), now.UnixMicro(),
		)
		if err != nil {
			return nil, fmt.Errorf("could not create task: %w", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("could not get last insert id: %w", err)
		}
		return s.Get(ctx, id)
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE tasks
		SET reference_id = ?, reference_type = ?, task_type = ?, assignee_id = ?, status = ?, priority = ?,
			deadline_ms = ?, description = ?, updated_at = ?
		WHERE id = ?`,
		t.ReferenceID, string(t.ReferenceType), string(t.TaskType), t.AssigneeID,
		string(t.Status), string(t.Priority), deadline, t.Description,
		now.UnixMicro(), t.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("could not update task: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("could not get rows affected: %w", err)
	}
	if n == 0 {
		return nil, fmt.Errorf("update task %d: %w", t.ID, task.ErrNotFound)
	}
	return s.Get(ctx, t.ID)
}

func (s *TaskStorage) FindAll(ctx context.Context) ([]task.Task, error) {
	return s.query(ctx, `SELECT `+taskColumns+` FROM tasks ORDER BY id ASC`)
}

func (s *TaskStorage) FindByReference(ctx context.Context, referenceID int64, referenceType task.ReferenceType) ([]task.Task, error) {
	return s.query(ctx, `SELECT `+taskColumns+` FROM tasks WHERE reference_id = ? AND reference_type = ? ORDER BY id ASC`,
		referenceID, string(referenceType))
}

func (s *TaskStorage) FindByAssignees(ctx context.Context, assigneeIDs []int64) ([]task.Task, error) {
	if len(assigneeIDs) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(assigneeIDs)), ",")
	args := make([]interface{}, 0, len(assigneeIDs))
	for _, id := range assigneeIDs {
		args = append(args, id)
	}
	return s.query(ctx, `SELECT `+taskColumns+` FROM tasks WHERE assignee_id IN (`+placeholders+`) ORDER BY id ASC`, args...)
}

func (s *TaskStorage) query(ctx context.Context, query string, args ...interface{}) ([]task.Task, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("could not query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []task.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("could not scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("could not iterate tasks: %w", err)
	}
	return tasks, nil
}

func scanTask(row interface{ Scan(dest ...any) error }) (*task.Task, error) {
	var t task.Task
	var deadline sql.NullInt64
	var createdAt, updatedAt int64
	err := row.Scan(
		&t.ID,
		&t.ReferenceID,
		&t.ReferenceType,
		&t.TaskType,
		&t.AssigneeID,
		&t.Status,
		&t.Priority,
		&deadline,
		&t.Description,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}
	if deadline.Valid {
		d := deadline.Int64
		t.Deadline = &d
	}
	t.CreatedAt = time.UnixMicro(createdAt)
	t.UpdatedAt = time.UnixMicro(updatedAt)
	return &t, nil
}
