package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pulseboard/pulseboard-backend/internal/http/response"
	"github.com/pulseboard/pulseboard-backend/internal/services"
)

type CompanyHandler struct {
	companyService services.CompanyService
}

func NewCompanyHandler(companyService services.CompanyService) *CompanyHandler {
	return &CompanyHandler{companyService: companyService}
}

// GET /api/company
func (ch *CompanyHandler) Get(c *gin.Context) {
	company, err := ch.companyService.Get(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"company": company})
}

// PATCH /api/company
// body: { "name": "...", "timezone": "..." }
func (ch *CompanyHandler) Update(c *gin.Context) {
	var req services.UpdateCompanyInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	company, err := ch.companyService.Update(c.Request.Context(), &req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"company": company})
}
