package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"stackassist-backend/internal/core"
	"stackassist-backend/internal/models"
)

// OnboardingHandler issues self-onboarding links and serves the public form behind them.
type OnboardingHandler struct {
	onboardingService core.OnboardingService
	logger            *zap.Logger
}

func NewOnboardingHandler(obs core.OnboardingService, logger *zap.Logger) *OnboardingHandler {
	return &OnboardingHandler{onboardingService: obs, logger: logger}
}

// Link handles GET /clients/onboarding-link.
func (h *OnboardingHandler) Link(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	link, err := h.onboardingService.Link(c.Request.Context(), p)
	if err != nil {
		mapServiceErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, OnboardingLinkResponse{Link: link})
}

// Describe handles the public GET /onboard/:token.
func (h *OnboardingHandler) Describe(c *gin.Context) {
	info, err := h.onboardingService.Describe(c.Request.Context(), c.Param("token"))
	if err != nil {
		mapServiceErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

// Submit handles the public POST /onboard/:token.
func (h *OnboardingHandler) Submit(c *gin.Context) {
	var req models.OnboardClientRequest
	if !bindJSON(c, &req) {
		return
	}
	client, err := h.onboardingService.Submit(c.Request.Context(), c.Param("token"), req)
	if err != nil {
		mapServiceErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, SuccessResponse{Success: true, Message: "Thank you, your details were sent for approval.", Data: gin.H{"id": client.ID}})
}
