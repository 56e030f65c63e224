package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pulseboard/pulseboard-backend/internal/http/response"
	pkgerrors "github.com/pulseboard/pulseboard-backend/internal/pkg/errors"
	"github.com/pulseboard/pulseboard-backend/internal/services"
)

type MetricHandler struct {
	metricService  services.MetricService
	formulaService services.FormulaService
}

func NewMetricHandler(metricService services.MetricService, formulaService services.FormulaService) *MetricHandler {
	return &MetricHandler{metricService: metricService, formulaService: formulaService}
}

// GET /api/metrics
func (mh *MetricHandler) List(c *gin.Context) {
	metrics, err := mh.metricService.List(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"metrics": metrics})
}

// GET /api/metrics/:id
func (mh *MetricHandler) Get(c *gin.Context) {
	metricID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", pkgerrors.ErrInvalidArgument)
		return
	}
	metric, formula, err := mh.metricService.Get(c.Request.Context(), metricID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"metric": metric, "current_formula": formula})
}

// POST /api/metrics
func (mh *MetricHandler) Create(c *gin.Context) {
	var req services.CreateMetricInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	metric, err := mh.metricService.Create(c.Request.Context(), &req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"metric": metric})
}

// PATCH /api/metrics/:id
func (mh *MetricHandler) Update(c *gin.Context) {
	metricID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", pkgerrors.ErrInvalidArgument)
		return
	}
	var req services.UpdateMetricInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	metric, err := mh.metricService.Update(c.Request.Context(), metricID, &req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"metric": metric})
}

// POST /api/metrics/:id/toggle
func (mh *MetricHandler) ToggleActive(c *gin.Context) {
	metricID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", pkgerrors.ErrInvalidArgument)
		return
	}
	if err := mh.metricService.ToggleActive(c.Request.Context(), metricID); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// DELETE /api/metrics/:id
func (mh *MetricHandler) Delete(c *gin.Context) {
	metricID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", pkgerrors.ErrInvalidArgument)
		return
	}
	if err := mh.metricService.Delete(c.Request.Context(), metricID); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// GET /api/metrics/:id/formula-versions
func (mh *MetricHandler) ListFormulaVersions(c *gin.Context) {
	metricID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", pkgerrors.ErrInvalidArgument)
		return
	}
	rd := requestData(c)
	if rd == nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", pkgerrors.ErrUnauthorized)
		return
	}
	versions, err := mh.formulaService.ListVersions(c.Request.Context(), rd.CompanyID, metricID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"versions": versions})
}
