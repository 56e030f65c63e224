package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pulseboard/pulseboard-backend/internal/formula"
	"github.com/pulseboard/pulseboard-backend/internal/http/response"
	"github.com/pulseboard/pulseboard-backend/internal/services"
)

// FormulaHandler exposes formula validation for editor feedback. Nothing here
// mutates state; saves go through the metric endpoints.
type FormulaHandler struct {
	metricService services.MetricService
}

func NewFormulaHandler(metricService services.MetricService) *FormulaHandler {
	return &FormulaHandler{metricService: metricService}
}

// POST /api/formulas/validate
// body: { "expression": "...", "metric_id": "<optional, the metric being edited>" }
func (fh *FormulaHandler) Validate(c *gin.Context) {
	var req struct {
		Expression string `json:"expression"`
		MetricID   string `json:"metric_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	metrics, err := fh.metricService.List(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}

	var editedID uuid.UUID
	if req.MetricID != "" {
		editedID, _ = uuid.Parse(req.MetricID)
	}

	known := make([]string, 0, len(metrics))
	var disallow []string
	for _, m := range metrics {
		if !m.IsActive {
			continue
		}
		known = append(known, m.Code)
		if m.ID == editedID {
			disallow = append(disallow, m.Code)
		}
	}

	result, err := formula.Validate(req.Expression, formula.ValidateOptions{
		KnownMetricCodes:    known,
		DisallowMetricCodes: disallow,
	})
	if err != nil {
		// Partial token/code info still goes back for editor display.
		c.JSON(http.StatusOK, gin.H{
			"valid":        false,
			"error":        err.Error(),
			"tokens":       resultTokens(result),
			"metric_codes": resultCodes(result),
		})
		return
	}
	response.RespondOK(c, gin.H{
		"valid":                 true,
		"tokens":                result.Tokens,
		"metric_codes":          result.MetricCodes,
		"normalized_expression": result.NormalizedExpression,
	})
}

func resultTokens(r *formula.ValidationResult) []formula.Token {
	if r == nil {
		return nil
	}
	return r.Tokens
}

func resultCodes(r *formula.ValidationResult) []string {
	if r == nil {
		return nil
	}
	return r.MetricCodes
}
