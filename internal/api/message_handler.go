package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"stackassist-backend/internal/core"
	"stackassist-backend/internal/models"
)

type MessageHandler struct {
	messageService core.MessageService
	logger         *zap.Logger
}

func NewMessageHandler(ms core.MessageService, logger *zap.Logger) *MessageHandler {
	return &MessageHandler{messageService: ms, logger: logger}
}

// List handles GET /messages.
func (h *MessageHandler) List(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	messages, err := h.messageService.List(c.Request.Context(), p)
	if err != nil {
		mapServiceErrorToStatus(c, h.logger, err)
		return
	}
	if messages == nil {
		messages = []*models.Message{}
	}
	c.JSON(http.StatusOK, messages)
}

// Post handles POST /messages.
func (h *MessageHandler) Post(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req models.PostMessageRequest
	if !bindJSON(c, &req) {
		return
	}
	message, err := h.messageService.Post(c.Request.Context(), p, req)
	if err != nil {
		mapServiceErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, message)
}
