package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lumen-ops/alertgate-go/internal/database/models"
	"github.com/lumen-ops/alertgate-go/pkg/utils"
)

// EvaluateRequest is the inbound payload from the alert-delivery pipeline.
type EvaluateRequest struct {
	Alert models.Alert     `json:"alert" binding:"required"`
	Rule  models.AlertRule `json:"rule" binding:"required"`
}

// Evaluate runs the suppression pipeline for one raised alert and records
// the alert into the trailing history so later evaluations can see it.
func (h *Handlers) Evaluate(c *gin.Context) {
	var req EvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendError(c, http.StatusBadRequest, "Invalid evaluate request: "+err.Error())
		return
	}

	alert := req.Alert
	rule := req.Rule

	if alert.ID == "" {
		alert.ID = uuid.New().String()
	}
	if alert.CreatedAt.IsZero() {
		alert.CreatedAt = time.Now().UTC()
	}
	if alert.RuleID == "" {
		alert.RuleID = rule.ID
	}
	if !alert.Severity.Valid() {
		utils.SendError(c, http.StatusBadRequest, "Unknown alert severity: "+string(alert.Severity))
		return
	}
	if rule.ID == "" {
		utils.SendError(c, http.StatusBadRequest, "rule.id is required")
		return
	}

	result := h.engine.Evaluate(c.Request.Context(), &alert, &rule)

	// Best effort: a history write failure must not change the decision.
	if err := h.alerts.Create(c.Request.Context(), &alert); err != nil {
		h.log.WithError(err).WithField("alert_id", alert.ID).
			Warn("Failed to record alert into history")
	}

	utils.SendSuccess(c, result)
}
