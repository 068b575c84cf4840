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

// SuppressionRuleRepository implements repositories.SuppressionRuleRepository on SQLite.
type SuppressionRuleRepository struct {
	db  *sqlx.DB
	log *logrus.Logger
}

// NewSuppressionRuleRepository creates a new SuppressionRuleRepository
func NewSuppressionRuleRepository(db *sqlx.DB, log *logrus.Logger) repositories.SuppressionRuleRepository {
	return &SuppressionRuleRepository{db: db, log: log}
}

// Create stores a new suppression rule.
func (r *SuppressionRuleRepository) Create(ctx context.Context, rule *models.SuppressionRule) error {
	if rule.ID == "" {
		rule.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	rule.CreatedAt = now
	rule.UpdatedAt = now

	query := `
		INSERT INTO suppression_rules (
			id, name, rule_type, conditions, suppression_duration_minutes,
			max_alerts_per_window, window_size_minutes, enabled, priority, scope,
			created_at, updated_at
		) VALUES (
			:id, :name, :rule_type, :conditions, :suppression_duration_minutes,
			:max_alerts_per_window, :window_size_minutes, :enabled, :priority, :scope,
			:created_at, :updated_at
		)
	`

	if _, err := r.db.NamedExecContext(ctx, query, rule); err != nil {
		return fmt.Errorf("failed to create suppression rule: %w", err)
	}

	return nil
}

// GetByID retrieves a suppression rule by ID.
func (r *SuppressionRuleRepository) GetByID(ctx context.Context, id string) (*models.SuppressionRule, error) {
	query := `
		SELECT id, name, rule_type, conditions, suppression_duration_minutes,
		       max_alerts_per_window, window_size_minutes, enabled, priority, scope,
		       created_at, updated_at
		FROM suppression_rules
		WHERE id = ?
	`

	var rule models.SuppressionRule
	if err := r.db.GetContext(ctx, &rule, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.WithDetails(apperrors.ErrNotFound, fmt.Sprintf("suppression rule %s not found", id))
		}
		return nil, fmt.Errorf("failed to get suppression rule by ID: %w", err)
	}

	return &rule, nil
}

// ListEnabled returns enabled rules ordered by descending priority.
func (r *SuppressionRuleRepository) ListEnabled(ctx context.Context) ([]*models.SuppressionRule, error) {
	query := `
		SELECT id, name, rule_type, conditions, suppression_duration_minutes,
		       max_alerts_per_window, window_size_minutes, enabled, priority, scope,
		       created_at, updated_at
		FROM suppression_rules
		WHERE enabled = 1
		ORDER BY priority DESC, created_at ASC
	`

	var rules []*models.SuppressionRule
	if err := r.db.SelectContext(ctx, &rules, query); err != nil {
		r.log.WithError(err).Error("Failed to list enabled suppression rules")
		return nil, fmt.Errorf("failed to list enabled suppression rules: %w", err)
	}

	return rules, nil
}

// SetEnabled toggles a rule on or off.
func (r *SuppressionRuleRepository) SetEnabled(ctx context.Context, id string, enabled bool) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE suppression_rules SET enabled = ?, updated_at = ? WHERE id = ?`,
		enabled, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update suppression rule %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("suppression rule %s not found", id)
	}

	return nil
}
