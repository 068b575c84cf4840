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

// AuditRepository implements repositories.AuditRepository on SQLite. The
// table is append-only; records are never updated.
type AuditRepository struct {
	db  *sqlx.DB
	log *logrus.Logger
}

// NewAuditRepository creates a new AuditRepository
func NewAuditRepository(db *sqlx.DB, log *logrus.Logger) repositories.AuditRepository {
	return &AuditRepository{db: db, log: log}
}

// Append writes one decision record.
func (r *AuditRepository) Append(ctx context.Context, record *models.AuditRecord) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO suppression_audit (id, alert_id, suppressed, reason, rule_id, suppress_until, metadata, created_at)
		VALUES (:id, :alert_id, :suppressed, :reason, :rule_id, :suppress_until, :metadata, :created_at)
	`

	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("failed to append audit record: %w", err)
	}

	return nil
}

// ListRecent returns the newest decision records, newest first.
func (r *AuditRepository) ListRecent(ctx context.Context, limit int) ([]*models.AuditRecord, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT id, alert_id, suppressed, reason, rule_id, suppress_until, metadata, created_at
		FROM suppression_audit
		ORDER BY created_at DESC
		LIMIT ?
	`

	var records []*models.AuditRecord
	if err := r.db.SelectContext(ctx, &records, query, limit); err != nil {
		r.log.WithError(err).Error("Failed to list audit records")
		return nil, fmt.Errorf("failed to list audit records: %w", err)
	}

	return records, nil
}
