package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"stackassist-backend/internal/core"
	"stackassist-backend/internal/middleware"
	"stackassist-backend/internal/models"
)

// AuthHandler serves sign-in, registration and the session lifecycle.
type AuthHandler struct {
	sessions       *core.SessionStore
	accountService core.AccountService
	logger         *zap.Logger
}

func NewAuthHandler(sessions *core.SessionStore, as core.AccountService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{sessions: sessions, accountService: as, logger: logger}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if !bindJSON(c, &req) {
		return
	}
	session, err := h.sessions.Login(c.Request.Context(), req)
	if err != nil {
		mapServiceErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}
	session, err := h.sessions.Register(c.Request.Context(), req)
	if err != nil {
		mapServiceErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

// StartSession handles POST /auth/session for callers that signed in on the client.
func (h *AuthHandler) StartSession(c *gin.Context) {
	session := h.sessions.Start(c.GetString(middleware.ContextUserID), c.GetString(middleware.ContextUserEmail))
	c.JSON(http.StatusCreated, session)
}

// Activity handles POST /auth/activity and restarts the inactivity countdown.
func (h *AuthHandler) Activity(c *gin.Context) {
	sessionID := c.GetHeader(middleware.SessionHeader)
	if err := h.sessions.Touch(sessionID, c.GetString(middleware.ContextUserID)); err != nil {
		mapServiceErrorToStatus(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Logout handles POST /auth/logout. Ending an unknown session succeeds.
func (h *AuthHandler) Logout(c *gin.Context) {
	sessionID := c.GetHeader(middleware.SessionHeader)
	if session, ok := h.sessions.Get(sessionID); ok && session.UserID != c.GetString(middleware.ContextUserID) {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "session belongs to another user"})
		return
	}
	if err := h.sessions.Logout(c.Request.Context(), sessionID); err != nil {
		mapServiceErrorToStatus(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Me handles GET /me.
func (h *AuthHandler) Me(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	profile, err := h.accountService.Profile(c.Request.Context(), p)
	if err != nil {
		mapServiceErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}
