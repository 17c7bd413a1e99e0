package activity

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PgLog is a PostgreSQL-backed activity Log.
type PgLog struct {
	pool *pgxpool.Pool
}

// NewPgLog creates a PgLog.
func NewPgLog(pool *pgxpool.Pool) *PgLog {
	return &PgLog{pool: pool}
}

// EnsureTable creates the task_activity table if it doesn't exist.
func (l *PgLog) EnsureTable(ctx context.Context) error {
	_, err := l.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS task_activity (
			id        TEXT PRIMARY KEY,
			type      TEXT NOT NULL,
			task_id   BIGINT NOT NULL DEFAULT 0,
			source    TEXT NOT NULL,
			content   JSONB NOT NULL DEFAULT '{}',
			timestamp TIMESTAMPTZ NOT NULL
		)`)
	if err != nil {
		return err
	}
	_, err = l.pool.Exec(ctx, `CREATE INDEX IF NOT EXISTS idx_task_activity_timestamp_id ON task_activity(timestamp, id)`)
	return err
}

// Append stores a new event.
func (l *PgLog) Append(ctx context.Context, eventType, source string, taskID int64, content map[string]any) (*Event, error) {
	e := NewEvent(eventType, source, taskID, content)
	contentJSON, err := json.Marshal(e.Content)
	if err != nil {
		return nil, fmt.Errorf("marshal content: %w", err)
	}
	_, err = l.pool.Exec(ctx, `
		INSERT INTO task_activity (id, type, task_id, source, content, timestamp)
		VALUES ($1, $2, $3, $4, $5::jsonb, $6)`,
		e.ID, e.Type, e.TaskID, e.Source, string(contentJSON), e.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}
	return &e, nil
}

// Recent returns the most recent events, newest first.
func (l *PgLog) Recent(ctx context.Context, limit int) ([]Event, error) {
	rows, err := l.pool.Query(ctx, `
		SELECT id, type, task_id, source, content, timestamp
		FROM task_activity ORDER BY timestamp DESC, id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		var contentJSON []byte
		if err := rows.Scan(&e.ID, &e.Type, &e.TaskID, &e.Source, &contentJSON, &e.Timestamp); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(contentJSON, &e.Content); err != nil {
			e.Content = map[string]any{}
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration: %w", err)
	}
	return events, nil
}
