package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"stackassist-backend/internal/core"
	"stackassist-backend/internal/models"
)

type TeamHandler struct {
	teamService core.TeamService
	logger      *zap.Logger
}

func NewTeamHandler(ts core.TeamService, logger *zap.Logger) *TeamHandler {
	return &TeamHandler{teamService: ts, logger: logger}
}

// List handles GET /team.
func (h *TeamHandler) List(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	members, err := h.teamService.ListMembers(c.Request.Context(), p)
	if err != nil {
		mapServiceErrorToStatus(c, h.logger, err)
		return
	}
	invites, err := h.teamService.ListInvites(c.Request.Context(), p)
	if err != nil {
		mapServiceErrorToStatus(c, h.logger, err)
		return
	}
	if members == nil {
		members = []*models.TeamMember{}
	}
	if invites == nil {
		invites = []*models.TeamInvite{}
	}
	c.JSON(http.StatusOK, TeamResponse{Members: members, Invites: invites})
}

// Invite handles POST /team. A stored invite whose emails failed is still 201, with
// the failure reported as a warning.
func (h *TeamHandler) Invite(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req models.InviteMemberRequest
	if !bindJSON(c, &req) {
		return
	}
	member, err := h.teamService.Invite(c.Request.Context(), p, req)
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, InviteResponse{Member: member})
	case member != nil && errors.Is(err, core.ErrInvitationDelivery):
		c.JSON(http.StatusCreated, InviteResponse{Member: member, Warning: err.Error()})
	default:
		mapServiceErrorToStatus(c, h.logger, err)
	}
}

// Update handles PUT /team/:id.
func (h *TeamHandler) Update(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req models.UpdateMemberRequest
	if !bindJSON(c, &req) {
		return
	}
	member, err := h.teamService.UpdateMember(c.Request.Context(), p, c.Param("id"), req)
	if err != nil {
		mapServiceErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, member)
}

// Remove handles DELETE /team/:id.
func (h *TeamHandler) Remove(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	if err := h.teamService.RemoveMember(c.Request.Context(), p, c.Param("id")); err != nil {
		mapServiceErrorToStatus(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SendInvitationEmail handles POST /team/invitations/send.
func (h *TeamHandler) SendInvitationEmail(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req models.SendInvitationEmailRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.teamService.SendInvitationEmail(c.Request.Context(), p, req); err != nil {
		mapServiceErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Success: true})
}
