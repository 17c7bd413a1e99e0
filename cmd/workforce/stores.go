package main

import (
	"context"
	"fmt"

	"github.com/go-pkgz/lgr"

	"workforce-mgmt/internal/config"
	"workforce-mgmt/internal/db"
	"workforce-mgmt/internal/storage/sqlite"
	"workforce-mgmt/pkg/activity"
	"workforce-mgmt/pkg/comment"
	"workforce-mgmt/pkg/task"
)

// stores bundles the persistence backends selected by config.
type stores struct {
	tasks    task.Store
	comments comment.Store
	activity activity.Log
	close    func()
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	capacity := cfg.Activity.Capacity
	if capacity == 0 {
		capacity = activity.DefaultCapacity
	}

	switch cfg.Storage.Driver {
	case config.DriverMemory:
		lgr.Printf("[INFO] using in-memory storage")
		return &stores{
			tasks:    task.NewMemStore(),
			comments: comment.NewMemStore(),
			activity: activity.NewMemLog(capacity),
			close:    func() {},
		}, nil

	case config.DriverSQLite:
		conn, err := sqlite.Open(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite %s: %w", cfg.Storage.SQLitePath, err)
		}
		lgr.Printf("[INFO] using sqlite storage at %s", cfg.Storage.SQLitePath)
		return &stores{
			tasks:    sqlite.NewTaskStorage(conn),
			comments: sqlite.NewCommentStorage(conn),
			activity: activity.NewMemLog(capacity),
			close:    func() { _ = conn.Close() },
		}, nil

	case config.DriverPostgres:
		pool, err := db.Connect(ctx, cfg.Storage.DSN)
		if err != nil {
			return nil, fmt.Errorf("connect: %w", err)
		}
		lgr.Printf("[INFO] using postgres storage")
		return &stores{
			tasks:    task.NewPgStore(pool),
			comments: comment.NewPgStore(pool),
			activity: activity.NewPgLog(pool),
			close:    pool.Close,
		}, nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}

// ensureTables creates missing tables on every backend.
func (s *stores) ensureTables(ctx context.Context) error {
	if err := s.tasks.EnsureTable(ctx); err != nil {
		return fmt.Errorf("ensure tasks table: %w", err)
	}
	if err := s.comments.EnsureTable(ctx); err != nil {
		return fmt.Errorf("ensure comments table: %w", err)
	}
	if err := s.activity.EnsureTable(ctx); err != nil {
		return fmt.Errorf("ensure activity table: %w", err)
	}
	return nil
}
