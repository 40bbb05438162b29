package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"stackassist-backend/internal/core"
)

// ReportHandler serves the dashboard widgets and the task report.
type ReportHandler struct {
	reportService core.ReportService
	logger        *zap.Logger
}

func NewReportHandler(rs core.ReportService, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{reportService: rs, logger: logger}
}

func (h *ReportHandler) Summary(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	summary, err := h.reportService.Summary(c.Request.Context(), p)
	if err != nil {
		mapServiceErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *ReportHandler) Analytics(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	analytics, err := h.reportService.Analytics(c.Request.Context(), p)
	if err != nil {
		mapServiceErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, analytics)
}

func (h *ReportHandler) CriticalAlerts(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	alerts, err := h.reportService.CriticalAlerts(c.Request.Context(), p)
	if err != nil {
		mapServiceErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, alerts)
}

func (h *ReportHandler) Tasks(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	report, err := h.reportService.TaskReport(c.Request.Context(), p)
	if err != nil {
		mapServiceErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
