package service

import (
	"context"
	"strings"

	"github.com/Skotchmaster/sweetcrust/internal/apperr"
	"github.com/Skotchmaster/sweetcrust/internal/models"
	"github.com/Skotchmaster/sweetcrust/internal/repo"
	"github.com/Skotchmaster/sweetcrust/internal/tokens"
)

type MessageService struct {
	Repo   *repo.GormRepo
	Events EventPublisher
}

type MessageInput struct {
	Name    string
	Email   string
	Message string
}

func (s *MessageService) Submit(ctx context.Context, in MessageInput) (*models.Message, error) {
	m := &models.Message{
		Name:    strings.TrimSpace(in.Name),
		Email:   strings.TrimSpace(in.Email),
		Message: strings.TrimSpace(in.Message),
	}
	if m.Name == "" || m.Email == "" || m.Message == "" {
		return nil, apperr.Validation("all fields are required")
	}
	if !emailRe.MatchString(m.Email) {
		return nil, apperr.Validation("invalid email format")
	}

	if err := s.Repo.CreateMessage(ctx, m); err != nil {
		return nil, err
	}
	publish(ctx, s.Events, TopicMessageEvents, idKey(m.ID), map[string]any{
		"type":      "message_received",
		"messageID": m.ID,
	})
	return m, nil
}

func (s *MessageService) List(ctx context.Context, caller *tokens.Identity) ([]models.Message, error) {
	if err := tokens.RequireRole(caller, models.RoleAdmin); err != nil {
		return nil, err
	}
	return s.Repo.ListMessages(ctx)
}
