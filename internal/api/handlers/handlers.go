package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lumen-ops/alertgate-go/internal/config"
	"github.com/lumen-ops/alertgate-go/internal/core/suppression"
	"github.com/lumen-ops/alertgate-go/internal/database/models"
	"github.com/lumen-ops/alertgate-go/internal/database/repositories"
	apperrors "github.com/lumen-ops/alertgate-go/pkg/errors"
	"github.com/lumen-ops/alertgate-go/pkg/utils"
	"github.com/sirupsen/logrus"
)

// Evaluator is the slice of the suppression engine the API layer needs.
type Evaluator interface {
	Evaluate(ctx context.Context, alert *models.Alert, rule *models.AlertRule) suppression.Result
	Stats() suppression.Stats
}

// Handlers holds the API handler dependencies.
type Handlers struct {
	cfg    *config.Config
	engine Evaluator
	alerts repositories.AlertRepository
	audit  repositories.AuditRepository
	log    *logrus.Logger
}

// NewHandlers creates the API handlers.
func NewHandlers(cfg *config.Config, engine Evaluator, alerts repositories.AlertRepository, audit repositories.AuditRepository, log *logrus.Logger) *Handlers {
	return &Handlers{
		cfg:    cfg,
		engine: engine,
		alerts: alerts,
		audit:  audit,
		log:    log,
	}
}

// Health reports service liveness.
func (h *Handlers) Health(c *gin.Context) {
	utils.SendSuccess(c, gin.H{"status": "healthy"})
}

// Stats exposes the engine's operational counters.
func (h *Handlers) Stats(c *gin.Context) {
	utils.SendSuccess(c, h.engine.Stats())
}

// RecentAudit returns the newest suppression decisions for review.
func (h *Handlers) RecentAudit(c *gin.Context) {
	limit := 100
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 1000 {
			utils.SendError(c, http.StatusBadRequest, "limit must be between 1 and 1000")
			return
		}
		limit = parsed
	}

	records, err := h.audit.ListRecent(c.Request.Context(), limit)
	if err != nil {
		h.log.WithError(err).Error("Failed to read audit records")
		utils.SendError(c, apperrors.GetStatusCode(err), "Failed to read audit records")
		return
	}

	utils.SendSuccess(c, records)
}
