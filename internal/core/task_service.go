package core

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"stackassist-backend/internal/db"
	"stackassist-backend/internal/models"
)

type taskService struct {
	tasks  db.TaskRepository
	authz  *Authorizer
	clock  Clock
	logger *zap.Logger
}

// NewTaskService creates a TaskService.
func NewTaskService(tasks db.TaskRepository, authz *Authorizer, clock Clock, logger *zap.Logger) TaskService {
	return &taskService{tasks: tasks, authz: authz, clock: clock, logger: logger}
}

func (s *taskService) List(ctx context.Context, p models.Principal) ([]*models.Task, error) {
	if err := s.authz.Authorize(p, string(models.ModuleTasks), ActionRead); err != nil {
		return nil, err
	}
	tasks, err := s.tasks.List(ctx, p.TenantID)
	if err != nil {
		return nil, storeError("list tasks", err)
	}
	return tasks, nil
}

func (s *taskService) Get(ctx context.Context, p models.Principal, id string) (*models.Task, error) {
	if err := s.authz.Authorize(p, string(models.ModuleTasks), ActionRead); err != nil {
		return nil, err
	}
	task, err := s.tasks.Get(ctx, p.TenantID, id)
	if err != nil {
		return nil, storeError("get task", err)
	}
	return task, nil
}

func (s *taskService) Create(ctx context.Context, p models.Principal, req models.CreateTaskRequest) (*models.Task, error) {
	if err := s.authz.Authorize(p, string(models.ModuleTasks), ActionCreate); err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	task := &models.Task{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if task.Status == "" {
		task.Status = models.TaskStatusTodo
	}
	if task.Priority == "" {
		task.Priority = models.TaskPriorityMedium
	}
	task.StatusHistory = []models.StatusChange{{Status: task.Status, Timestamp: now}}

	if _, err := s.tasks.Create(ctx, p.TenantID, task); err != nil {
		return nil, storeError("create task", err)
	}
	return task, nil
}

func (s *taskService) Update(ctx context.Context, p models.Principal, id string, req models.UpdateTaskRequest) (*models.Task, error) {
	if err := s.authz.Authorize(p, string(models.ModuleTasks), ActionUpdate); err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	task, err := s.tasks.Get(ctx, p.TenantID, id)
	if err != nil {
		return nil, storeError("get task", err)
	}

	now := s.clock.Now()
	if req.Title != nil {
		task.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Priority != nil {
		task.Priority = *req.Priority
	}
	if req.DueDate != nil {
		task.DueDate = req.DueDate
	}
	if req.Status != nil {
		transition(task, *req.Status, now)
	}
	task.UpdatedAt = now

	if err := s.tasks.Update(ctx, p.TenantID, id, task); err != nil {
		return nil, storeError("update task", err)
	}
	return task, nil
}

func (s *taskService) UpdateStatus(ctx context.Context, p models.Principal, id, status string) (*models.Task, error) {
	return s.Update(ctx, p, id, models.UpdateTaskRequest{Status: &status})
}

func (s *taskService) Delete(ctx context.Context, p models.Principal, id string) error {
	if err := s.authz.Authorize(p, string(models.ModuleTasks), ActionDelete); err != nil {
		return err
	}
	if err := s.tasks.Delete(ctx, p.TenantID, id); err != nil {
		return storeError("delete task", err)
	}
	return nil
}

// transition sets the status and appends to the history when it changes.
func transition(task *models.Task, status string, at time.Time) {
	if task.Status == status {
		return
	}
	task.Status = status
	task.StatusHistory = append(task.StatusHistory, models.StatusChange{Status: status, Timestamp: at})
}
