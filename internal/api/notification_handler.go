package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"stackassist-backend/internal/core"
	"stackassist-backend/internal/models"
)

type NotificationHandler struct {
	notificationService core.NotificationService
	reportService       core.ReportService
	logger              *zap.Logger
}

func NewNotificationHandler(ns core.NotificationService, rs core.ReportService, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{notificationService: ns, reportService: rs, logger: logger}
}

// List handles GET /notifications.
func (h *NotificationHandler) List(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	notifications, err := h.notificationService.List(c.Request.Context(), p)
	if err != nil {
		mapServiceErrorToStatus(c, h.logger, err)
		return
	}
	if notifications == nil {
		notifications = []*models.Notification{}
	}
	c.JSON(http.StatusOK, notifications)
}

// Upcoming handles GET /notifications/upcoming?days=30&type=site.
func (h *NotificationHandler) Upcoming(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	days := 0
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Validation failed", Details: "days must be a non-negative integer"})
			return
		}
		days = parsed
	}
	items, err := h.reportService.UpcomingExpirations(c.Request.Context(), p, days, c.Query("type"))
	if err != nil {
		mapServiceErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// GetSettings handles GET /notifications/settings.
func (h *NotificationHandler) GetSettings(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	setting, err := h.notificationService.GetSettings(c.Request.Context(), p)
	if err != nil {
		mapServiceErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, setting)
}

// UpdateSettings handles PUT /notifications/settings.
func (h *NotificationHandler) UpdateSettings(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req models.UpdateNotificationSettingRequest
	if !bindJSON(c, &req) {
		return
	}
	setting, err := h.notificationService.UpdateSettings(c.Request.Context(), p, req)
	if err != nil {
		mapServiceErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, setting)
}

// Scan handles POST /notifications/scan, running the expiry scan for the caller's tenant.
func (h *NotificationHandler) Scan(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	result, err := h.notificationService.Scan(c.Request.Context(), p)
	if err != nil {
		mapServiceErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
