package repositories

import (
	"context"
	"time"

	"github.com/lumen-ops/alertgate-go/internal/database/models"
)

// AlertRepository provides access to the stored alert history.
type AlertRepository interface {
	Create(ctx context.Context, alert *models.Alert) error
	GetByID(ctx context.Context, id string) (*models.Alert, error)
	// ListSince returns alerts created after the given instant, newest first.
	// team narrows the result to one team when non-empty.
	ListSince(ctx context.Context, since time.Time, team string) ([]*models.Alert, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// SuppressionRuleRepository provides access to custom suppression rules.
type SuppressionRuleRepository interface {
	Create(ctx context.Context, rule *models.SuppressionRule) error
	GetByID(ctx context.Context, id string) (*models.SuppressionRule, error)
	// ListEnabled returns enabled rules ordered by descending priority.
	ListEnabled(ctx context.Context) ([]*models.SuppressionRule, error)
	SetEnabled(ctx context.Context, id string, enabled bool) error
}

// MaintenanceWindowRepository provides access to maintenance windows.
type MaintenanceWindowRepository interface {
	Create(ctx context.Context, window *models.MaintenanceWindow) error
	// ListActiveAt returns enabled windows covering the given instant.
	ListActiveAt(ctx context.Context, at time.Time) ([]*models.MaintenanceWindow, error)
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// AuditRepository is the append-only sink for suppression decisions.
type AuditRepository interface {
	Append(ctx context.Context, record *models.AuditRecord) error
	ListRecent(ctx context.Context, limit int) ([]*models.AuditRecord, error)
}
