package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lumen-ops/alertgate-go/internal/database/models"
	"github.com/lumen-ops/alertgate-go/internal/database/repositories"
	apperrors "github.com/lumen-ops/alertgate-go/pkg/errors"
	"github.com/sirupsen/logrus"
)

// AlertRepository implements repositories.AlertRepository on SQLite.
type AlertRepository struct {
	db  *sqlx.DB
	log *logrus.Logger
}

// NewAlertRepository creates a new AlertRepository
func NewAlertRepository(db *sqlx.DB, log *logrus.Logger) repositories.AlertRepository {
	return &AlertRepository{db: db, log: log}
}

// Create stores a new alert.
func (r *AlertRepository) Create(ctx context.Context, alert *models.Alert) error {
	if alert.ID == "" {
		alert.ID = uuid.New().String()
	}
	if alert.CreatedAt.IsZero() {
		alert.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO alerts (id, rule_id, severity, metric_name, metric_value, context, tags, team, created_at)
		VALUES (:id, :rule_id, :severity, :metric_name, :metric_value, :context, :tags, :team, :created_at)
	`

	if _, err := r.db.NamedExecContext(ctx, query, alert); err != nil {
		return fmt.Errorf("failed to create alert: %w", err)
	}

	return nil
}

// GetByID retrieves an alert by ID.
func (r *AlertRepository) GetByID(ctx context.Context, id string) (*models.Alert, error) {
	query := `
		SELECT id, rule_id, severity, metric_name, metric_value, context, tags, team, created_at
		FROM alerts
		WHERE id = ?
	`

	var alert models.Alert
	if err := r.db.GetContext(ctx, &alert, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.WithDetails(apperrors.ErrNotFound, fmt.Sprintf("alert %s not found", id))
		}
		return nil, fmt.Errorf("failed to get alert by ID: %w", err)
	}

	return &alert, nil
}

// ListSince returns alerts created after the given instant, newest first.
func (r *AlertRepository) ListSince(ctx context.Context, since time.Time, team string) ([]*models.Alert, error) {
	query := `
		SELECT id, rule_id, severity, metric_name, metric_value, context, tags, team, created_at
		FROM alerts
		WHERE created_at > ?
	`
	args := []interface{}{since}

	if team != "" {
		query += " AND team = ?"
		args = append(args, team)
	}
	query += " ORDER BY created_at DESC"

	var alerts []*models.Alert
	if err := r.db.SelectContext(ctx, &alerts, query, args...); err != nil {
		r.log.WithError(err).Error("Failed to list alert history")
		return nil, fmt.Errorf("failed to list alerts since %s: %w", since.Format(time.RFC3339), err)
	}

	return alerts, nil
}

// DeleteOlderThan removes alerts created before the cutoff and returns how
// many rows were deleted.
func (r *AlertRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM alerts WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old alerts: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return deleted, nil
}
