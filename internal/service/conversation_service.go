package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/bizbridge/acquisition-backend/internal/logger"
	"github.com/bizbridge/acquisition-backend/internal/models"
	"github.com/bizbridge/acquisition-backend/internal/repository"
	"github.com/bizbridge/acquisition-backend/internal/validation"
)

// ErrNotConversationMember возвращается, когда пользователь не участник переписки.
var ErrNotConversationMember = errors.New("conversation service: пользователь не участник переписки")

// ConversationService содержит бизнес-логику переписок сторон сделки.
type ConversationService struct {
	repo          *repository.ConversationRepository
	media         MediaDirectory
	notifications NotificationCreator
	hub           WSNotifier
}

// NewConversationService создаёт сервис переписок.
func NewConversationService(repo *repository.ConversationRepository, media MediaDirectory, notifications NotificationCreator) *ConversationService {
	return &ConversationService{
		repo:          repo,
		media:         media,
		notifications: notifications,
	}
}

// SetHub подключает WebSocket hub после инициализации.
func (s *ConversationService) SetHub(hub WSNotifier) {
	s.hub = hub
}

// ListMine возвращает переписки пользователя.
func (s *ConversationService) ListMine(ctx context.Context, userID uuid.UUID) ([]models.Conversation, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Get возвращает переписку участника.
func (s *ConversationService) Get(ctx context.Context, conversationID, userID uuid.UUID) (*models.Conversation, error) {
	conv, err := s.repo.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if conv.BuyerID != userID && conv.SellerID != userID {
		return nil, ErrNotConversationMember
	}
	return conv, nil
}

// GetByDeal возвращает переписку, привязанную к сделке.
func (s *ConversationService) GetByDeal(ctx context.Context, dealID, userID uuid.UUID) (*models.Conversation, error) {
	conv, err := s.repo.GetByDeal(ctx, dealID)
	if err != nil {
		return nil, err
	}
	if conv.BuyerID != userID && conv.SellerID != userID {
		return nil, ErrNotConversationMember
	}
	return conv, nil
}

// ListMessages возвращает сообщения переписки.
func (s *ConversationService) ListMessages(ctx context.Context, conversationID, userID uuid.UUID, limit, offset int) ([]models.Message, error) {
	if _, err := s.Get(ctx, conversationID, userID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListMessages(ctx, conversationID, limit, offset)
}

// SendMessage отправляет сообщение в переписку.
func (s *ConversationService) SendMessage(ctx context.Context, conversationID, authorID uuid.UUID, content string, attachmentID *uuid.UUID) (*models.Message, error) {
	conv, err := s.Get(ctx, conversationID, authorID)
	if err != nil {
		return nil, err
	}

	if err := validation.ValidateMessageContent(content); err != nil {
		return nil, fmt.Errorf("conversation service: %w", err)
	}

	if attachmentID != nil {
		if _, err := s.media.GetByID(ctx, *attachmentID); err != nil {
			return nil, err
		}
	}

	msg := &models.Message{
		ConversationID: conversationID,
		AuthorID:       authorID,
		Content:        content,
		AttachmentID:   attachmentID,
	}
	if err := s.repo.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}

	target := conv.BuyerID
	if authorID == conv.BuyerID {
		target = conv.SellerID
	}
	if s.notifications != nil {
		if _, err := s.notifications.CreateNotification(ctx, target, "message.new", map[string]interface{}{
			"conversation_id": conversationID,
			"message_id":      msg.ID,
		}); err != nil && logger.Log != nil {
			logger.Log.Warnf("conversation service: не удалось создать уведомление: %v", err)
		}
	}
	if s.hub != nil {
		if err := s.hub.BroadcastToUser(target, "message.new", msg); err != nil && logger.Log != nil {
			logger.Log.Warnf("conversation service: не удалось отправить ws уведомление: %v", err)
		}
	}

	return msg, nil
}
