package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"stackassist-backend/internal/core"
	"stackassist-backend/internal/models"
)

// TaskHandler adds the status transition endpoint to the task CRUD routes.
type TaskHandler struct {
	*ResourceHandler[models.Task, models.CreateTaskRequest, models.UpdateTaskRequest]
	taskService core.TaskService
}

func NewTaskHandler(ts core.TaskService, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		ResourceHandler: NewResourceHandler[models.Task, models.CreateTaskRequest, models.UpdateTaskRequest](ts, logger),
		taskService:     ts,
	}
}

func (h *TaskHandler) Register(group *gin.RouterGroup) {
	h.ResourceHandler.Register(group)
	group.PATCH("/:id/status", h.UpdateStatus)
}

// UpdateStatus handles PATCH /tasks/:id/status.
func (h *TaskHandler) UpdateStatus(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req models.UpdateTaskStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	task, err := h.taskService.UpdateStatus(c.Request.Context(), p, c.Param("id"), req.Status)
	if err != nil {
		mapServiceErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, task)
}
