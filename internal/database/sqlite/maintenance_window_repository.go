package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lumen-ops/alertgate-go/internal/database/models"
	"github.com/lumen-ops/alertgate-go/internal/database/repositories"
	"github.com/sirupsen/logrus"
)

// MaintenanceWindowRepository implements repositories.MaintenanceWindowRepository on SQLite.
type MaintenanceWindowRepository struct {
	db  *sqlx.DB
	log *logrus.Logger
}

// NewMaintenanceWindowRepository creates a new MaintenanceWindowRepository
func NewMaintenanceWindowRepository(db *sqlx.DB, log *logrus.Logger) repositories.MaintenanceWindowRepository {
	return &MaintenanceWindowRepository{db: db, log: log}
}

// Create stores a new maintenance window.
func (r *MaintenanceWindowRepository) Create(ctx context.Context, window *models.MaintenanceWindow) error {
	if window.ID == "" {
		window.ID = uuid.New().String()
	}
	if window.CreatedAt.IsZero() {
		window.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO maintenance_windows (
			id, name, starts_at, ends_at, affected_systems, affected_severities,
			suppress_all, enabled, created_at
		) VALUES (
			:id, :name, :starts_at, :ends_at, :affected_systems, :affected_severities,
			:suppress_all, :enabled, :created_at
		)
	`

	if _, err := r.db.NamedExecContext(ctx, query, window); err != nil {
		return fmt.Errorf("failed to create maintenance window: %w", err)
	}

	return nil
}

// ListActiveAt returns enabled windows covering the given instant.
func (r *MaintenanceWindowRepository) ListActiveAt(ctx context.Context, at time.Time) ([]*models.MaintenanceWindow, error) {
	query := `
		SELECT id, name, starts_at, ends_at, affected_systems, affected_severities,
		       suppress_all, enabled, created_at
		FROM maintenance_windows
		WHERE enabled = 1 AND starts_at <= ? AND ends_at >= ?
		ORDER BY starts_at ASC
	`

	var windows []*models.MaintenanceWindow
	if err := r.db.SelectContext(ctx, &windows, query, at, at); err != nil {
		r.log.WithError(err).Error("Failed to list active maintenance windows")
		return nil, fmt.Errorf("failed to list maintenance windows active at %s: %w", at.Format(time.RFC3339), err)
	}

	return windows, nil
}

// DeleteExpired removes windows that ended before the given instant.
func (r *MaintenanceWindowRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM maintenance_windows WHERE ends_at < ?`, before)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired maintenance windows: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return deleted, nil
}
