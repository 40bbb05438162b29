package core

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"stackassist-backend/internal/db"
	"stackassist-backend/internal/models"
)

type messageService struct {
	messages db.MessageRepository
	authz    *Authorizer
	clock    Clock
	logger   *zap.Logger
}

func NewMessageService(messages db.MessageRepository, authz *Authorizer, clock Clock, logger *zap.Logger) MessageService {
	return &messageService{messages: messages, authz: authz, clock: clock, logger: logger}
}

// List returns the tenant's messages, oldest first.
func (s *messageService) List(ctx context.Context, p models.Principal) ([]*models.Message, error) {
	if err := s.authz.Authorize(p, ObjectMessages, ActionRead); err != nil {
		return nil, err
	}
	messages, err := s.messages.List(ctx, p.TenantID)
	if err != nil {
		return nil, storeError("list messages", err)
	}
	sort.SliceStable(messages, func(i, j int) bool { return messages[i].CreatedAt.Before(messages[j].CreatedAt) })
	return messages, nil
}

func (s *messageService) Post(ctx context.Context, p models.Principal, req models.PostMessageRequest) (*models.Message, error) {
	if err := s.authz.Authorize(p, ObjectMessages, ActionCreate); err != nil {
		return nil, err
	}
	req.Content = strings.TrimSpace(req.Content)
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	msg := &models.Message{
		SenderID:    p.UserID,
		SenderEmail: p.Email,
		Content:     req.Content,
		CreatedAt:   s.clock.Now(),
	}
	if _, err := s.messages.Create(ctx, p.TenantID, msg); err != nil {
		return nil, storeError("create message", err)
	}
	return msg, nil
}
