package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pulseboard/pulseboard-backend/internal/http/response"
	pkgerrors "github.com/pulseboard/pulseboard-backend/internal/pkg/errors"
	"github.com/pulseboard/pulseboard-backend/internal/services"
)

type MemberHandler struct {
	memberService services.MemberService
}

func NewMemberHandler(memberService services.MemberService) *MemberHandler {
	return &MemberHandler{memberService: memberService}
}

// GET /api/me
func (mh *MemberHandler) GetMe(c *gin.Context) {
	me, err := mh.memberService.Me(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"me": me})
}

// GET /api/members
func (mh *MemberHandler) List(c *gin.Context) {
	members, err := mh.memberService.List(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"members": members})
}

// POST /api/members
func (mh *MemberHandler) Add(c *gin.Context) {
	var req services.AddMemberInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	member, err := mh.memberService.Add(c.Request.Context(), &req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"member": member})
}

// PATCH /api/members/:id
func (mh *MemberHandler) Update(c *gin.Context) {
	profileID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", pkgerrors.ErrInvalidArgument)
		return
	}
	var req services.UpdateMemberInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if err := mh.memberService.Update(c.Request.Context(), profileID, &req); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
