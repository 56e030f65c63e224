package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pulseboard/pulseboard-backend/internal/http/response"
	"github.com/pulseboard/pulseboard-backend/internal/services"
)

type DailyLogHandler struct {
	dailyLogService services.DailyLogService
}

func NewDailyLogHandler(dailyLogService services.DailyLogService) *DailyLogHandler {
	return &DailyLogHandler{dailyLogService: dailyLogService}
}

// GET /api/daily-logs?limit=30
func (dh *DailyLogHandler) ListMine(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "30"))
	entries, err := dh.dailyLogService.ListMine(c.Request.Context(), limit)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"entries": entries})
}

// PUT /api/daily-logs
// body: { "log_date": "2026-09-01", "values": { "<metric_id>": "raw input" }, "status": "submitted" }
func (dh *DailyLogHandler) Submit(c *gin.Context) {
	var req services.SubmitDailyLogInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	entry, err := dh.dailyLogService.Submit(c.Request.Context(), &req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"entry": entry})
}
