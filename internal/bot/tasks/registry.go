// Package tasks defines the scheduled background tasks and their registry.
package tasks

import (
	"context"
	"log/slog"

	"github.com/edgard/ollamabot/internal/config"
	"github.com/edgard/ollamabot/internal/database"
)

// ScheduledTaskFunc is the signature every scheduled task implements.
type ScheduledTaskFunc func(ctx context.Context) error

// TaskDeps provides dependencies for scheduled tasks.
type TaskDeps struct {
	Logger *slog.Logger
	Config *config.Config
	Store  database.Store
}

// RegisterAllTasks returns the map of named task functions available to
// the scheduler. Which of them actually run, and when, is decided by the
// scheduler configuration.
func RegisterAllTasks(deps TaskDeps) map[string]ScheduledTaskFunc {
	return map[string]ScheduledTaskFunc{
		"db_maintenance": NewDBMaintenanceTask(deps),
	}
}

// NewDBMaintenanceTask returns a task that vacuums and analyzes the
// database to keep the file compact.
func NewDBMaintenanceTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "db_maintenance")
	return func(ctx context.Context) error {
		if err := deps.Store.RunMaintenance(ctx); err != nil {
			log.ErrorContext(ctx, "Database maintenance failed", "error", err)
			return err
		}
		log.InfoContext(ctx, "Database maintenance completed")
		return nil
	}
}
