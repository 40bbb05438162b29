package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"stackassist-backend/internal/models"
)

// resourceService is the CRUD surface shared by the record services.
type resourceService[T, C, U any] interface {
	List(ctx context.Context, p models.Principal) ([]*T, error)
	Get(ctx context.Context, p models.Principal, id string) (*T, error)
	Create(ctx context.Context, p models.Principal, req C) (*T, error)
	Update(ctx context.Context, p models.Principal, id string, req U) (*T, error)
	Delete(ctx context.Context, p models.Principal, id string) error
}

// ResourceHandler serves list/get/create/update/delete for one record type.
type ResourceHandler[T, C, U any] struct {
	service resourceService[T, C, U]
	logger  *zap.Logger
}

func NewResourceHandler[T, C, U any](service resourceService[T, C, U], logger *zap.Logger) *ResourceHandler[T, C, U] {
	return &ResourceHandler[T, C, U]{service: service, logger: logger}
}

// Register mounts the handler on group: GET "", POST "", GET/PUT/DELETE "/:id".
func (h *ResourceHandler[T, C, U]) Register(group *gin.RouterGroup) {
	group.GET("", h.List)
	group.POST("", h.Create)
	group.GET("/:id", h.Get)
	group.PUT("/:id", h.Update)
	group.DELETE("/:id", h.Delete)
}

func (h *ResourceHandler[T, C, U]) List(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	items, err := h.service.List(c.Request.Context(), p)
	if err != nil {
		mapServiceErrorToStatus(c, h.logger, err)
		return
	}
	if items == nil {
		items = []*T{}
	}
	c.JSON(http.StatusOK, items)
}

func (h *ResourceHandler[T, C, U]) Get(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	item, err := h.service.Get(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		mapServiceErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *ResourceHandler[T, C, U]) Create(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req C
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.service.Create(c.Request.Context(), p, req)
	if err != nil {
		mapServiceErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *ResourceHandler[T, C, U]) Update(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req U
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.service.Update(c.Request.Context(), p, c.Param("id"), req)
	if err != nil {
		mapServiceErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *ResourceHandler[T, C, U]) Delete(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), p, c.Param("id")); err != nil {
		mapServiceErrorToStatus(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
