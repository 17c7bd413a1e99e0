package task

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const taskColumns = `id, reference_id, reference_type, task_type, assignee_id, status, priority, deadline_ms, description, created_at, updated_at`

// PgStore is a PostgreSQL-backed task store.
type PgStore struct {
	pool *pgxpool.Pool
}

// NewPgStore creates a PgStore.
func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

// EnsureTable creates the tasks table if it doesn't exist.
func (s *PgStore) EnsureTable(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS tasks (
			id             BIGSERIAL PRIMARY KEY,
			reference_id   BIGINT NOT NULL,
			reference_type TEXT NOT NULL,
			task_type      TEXT NOT NULL,
			assignee_id    BIGINT NOT NULL,
			status         TEXT NOT NULL DEFAULT 'ASSIGNED',
			priority       TEXT NOT NULL DEFAULT 'MEDIUM',
			deadline_ms    BIGINT,
			description    TEXT NOT NULL DEFAULT '',
			created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `CREATE INDEX IF NOT EXISTS idx_tasks_reference ON tasks(reference_id, reference_type)`)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `CREATE INDEX IF NOT EXISTS idx_tasks_assignee ON tasks(assignee_id)`)
	return err
}

// Get retrieves a single task by ID.
func (s *PgStore) Get(ctx context.Context, id int64) (*Task, error) {
	t, err := scanTask(s.pool.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("get task %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get task %d: %w", id, err)
	}
	return t, nil
}

// Save inserts a new task or overwrites an existing one.
func (s *PgStore) Save(ctx context.Context, t *Task) (*Task, error) {
	now := time.Now().Truncate(time.Microsecond)

	if t.ID == 0 {
		saved, err := scanTask(s.pool.QueryRow(ctx, `
			INSERT INTO tasks (reference_id, reference_type, task_type, assignee_id, status, priority, deadline_ms, description, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
			RETURNING `+taskColumns,
			t.ReferenceID, string(t.ReferenceType), string(t.TaskType), t.AssigneeID,
			string(t.Status), string(t.Priority), t.Deadline, t.Description, now))
		if err != nil {
			return nil, fmt.Errorf("create task: %w", err)
		}
		return saved, nil
	}

	saved, err := scanTask(s.pool.QueryRow(ctx, `
		UPDATE tasks SET reference_id = $1, reference_type = $2, task_type = $3, assignee_id = $4,
			status = $5, priority = $6, deadline_ms = $7, description = $8, updated_at = $9
		WHERE id = $10
		RETURNING `+taskColumns,
		t.ReferenceID, string(t.ReferenceType), string(t.TaskType), t.AssigneeID,
		string(t.Status), string(t.Priority), t.Deadline, t.Description, now, t.ID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("update task %d: %w", t.ID, ErrNotFound)
		}
		return nil, fmt.Errorf("update task %d: %w", t.ID, err)
	}
	return saved, nil
}

// FindAll returns every task ordered by id.
func (s *PgStore) FindAll(ctx context.Context) ([]Task, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+taskColumns+` FROM tasks ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()
	return scanTaskRows(rows)
}

func (s *PgStore) FindByReference(ctx context.Context, referenceID int64, referenceType ReferenceType) ([]Task, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+taskColumns+` FROM tasks
		WHERE reference_id = $1 AND reference_type = $2 ORDER BY id ASC`,
		referenceID, string(referenceType))
	if err != nil {
		return nil, fmt.Errorf("tasks by reference %d/%s: %w", referenceID, referenceType, err)
	}
	defer rows.Close()
	return scanTaskRows(rows)
}

func (s *PgStore) FindByAssignees(ctx context.Context, assigneeIDs []int64) ([]Task, error) {
	if len(assigneeIDs) == 0 {
		return nil, nil
	}
	rows, err := s.pool.Query(ctx, `
		SELECT `+taskColumns+` FROM tasks
		WHERE assignee_id = ANY($1) ORDER BY id ASC`, assigneeIDs)
	if err != nil {
		return nil, fmt.Errorf("tasks by assignees: %w", err)
	}
	defer rows.Close()
	return scanTaskRows(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*Task, error) {
	var t Task
	err := row.Scan(&t.ID, &t.ReferenceID, &t.ReferenceType, &t.TaskType, &t.AssigneeID,
		&t.Status, &t.Priority, &t.Deadline, &t.Description, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func scanTaskRows(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]Task, error) {
	var tasks []Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration: %w", err)
	}
	return tasks, nil
}
