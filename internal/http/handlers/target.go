package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pulseboard/pulseboard-backend/internal/http/response"
	pkgerrors "github.com/pulseboard/pulseboard-backend/internal/pkg/errors"
	"github.com/pulseboard/pulseboard-backend/internal/services"
)

type TargetHandler struct {
	targetService services.TargetService
}

func NewTargetHandler(targetService services.TargetService) *TargetHandler {
	return &TargetHandler{targetService: targetService}
}

// GET /api/targets
func (th *TargetHandler) List(c *gin.Context) {
	targets, err := th.targetService.List(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"targets": targets})
}

// PUT /api/targets
// body: { "metric_id": "...", "period_type": "daily", "value": 50 }
func (th *TargetHandler) Set(c *gin.Context) {
	var req services.SetTargetInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	target, err := th.targetService.Set(c.Request.Context(), &req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"target": target})
}

// DELETE /api/targets/:id
func (th *TargetHandler) Deactivate(c *gin.Context) {
	targetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", pkgerrors.ErrInvalidArgument)
		return
	}
	if err := th.targetService.Deactivate(c.Request.Context(), targetID); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
