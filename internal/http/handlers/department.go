package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pulseboard/pulseboard-backend/internal/http/response"
	pkgerrors "github.com/pulseboard/pulseboard-backend/internal/pkg/errors"
	"github.com/pulseboard/pulseboard-backend/internal/services"
)

type DepartmentHandler struct {
	departmentService services.DepartmentService
}

func NewDepartmentHandler(departmentService services.DepartmentService) *DepartmentHandler {
	return &DepartmentHandler{departmentService: departmentService}
}

// GET /api/departments
func (dh *DepartmentHandler) List(c *gin.Context) {
	departments, err := dh.departmentService.List(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"departments": departments})
}

// POST /api/departments
// body: { "name": "..." }
func (dh *DepartmentHandler) Create(c *gin.Context) {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	department, err := dh.departmentService.Create(c.Request.Context(), req.Name)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"department": department})
}

// PATCH /api/departments/:id
// body: { "name": "..." }
func (dh *DepartmentHandler) Rename(c *gin.Context) {
	departmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", pkgerrors.ErrInvalidArgument)
		return
	}
	var req struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if err := dh.departmentService.Rename(c.Request.Context(), departmentID, req.Name); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// DELETE /api/departments/:id
func (dh *DepartmentHandler) Delete(c *gin.Context) {
	departmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", pkgerrors.ErrInvalidArgument)
		return
	}
	if err := dh.departmentService.Delete(c.Request.Context(), departmentID); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
