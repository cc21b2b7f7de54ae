package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/bizbridge/acquisition-backend/internal/models"
)

// ErrConversationNotFound возвращается, когда переписка не найдена.
var ErrConversationNotFound = errors.New("conversation not found")

// ConversationRepository отвечает за таблицы conversations и messages.
type ConversationRepository struct {
	db *sqlx.DB
}

// NewConversationRepository создаёт экземпляр репозитория.
func NewConversationRepository(db *sqlx.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// Create сохраняет новую переписку.
func (r *ConversationRepository) Create(ctx context.Context, conv *models.Conversation) error {
	query := `
		INSERT INTO conversations (deal_id, buyer_id, seller_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query, conv.DealID, conv.BuyerID, conv.SellerID,
	).Scan(&conv.ID, &conv.CreatedAt); err != nil {
		return fmt.Errorf("conversation repository: create %w", err)
	}

	return nil
}

// GetByID возвращает переписку по идентификатору.
func (r *ConversationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Conversation, error) {
	var conv models.Conversation
	query := `
		SELECT id, deal_id, buyer_id, seller_id, created_at
		FROM conversations
		WHERE id = $1
	`
	if err := r.db.GetContext(ctx, &conv, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrConversationNotFound
		}
		return nil, fmt.Errorf("conversation repository: get by id %w", err)
	}
	return &conv, nil
}

// GetByDeal возвращает переписку, привязанную к сделке.
func (r *ConversationRepository) GetByDeal(ctx context.Context, dealID uuid.UUID) (*models.Conversation, error) {
	var conv models.Conversation
	query := `
		SELECT id, deal_id, buyer_id, seller_id, created_at
		FROM conversations
		WHERE deal_id = $1
	`
	if err := r.db.GetContext(ctx, &conv, query, dealID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrConversationNotFound
		}
		return nil, fmt.Errorf("conversation repository: get by deal %w", err)
	}
	return &conv, nil
}

// ListByUser возвращает переписки пользователя от свежих к старым.
func (r *ConversationRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Conversation, error) {
	var convs []models.Conversation
	query := `
		SELECT c.id, c.deal_id, c.buyer_id, c.seller_id, c.created_at
		FROM conversations c
		LEFT JOIN LATERAL (
			SELECT created_at FROM messages WHERE conversation_id = c.id
			ORDER BY created_at DESC LIMIT 1
		) m ON TRUE
		WHERE c.buyer_id = $1 OR c.seller_id = $1
		ORDER BY COALESCE(m.created_at, c.created_at) DESC
	`
	if err := r.db.SelectContext(ctx, &convs, query, userID); err != nil {
		return nil, fmt.Errorf("conversation repository: list by user %w", err)
	}
	return convs, nil
}

// CreateMessage сохраняет сообщение переписки.
func (r *ConversationRepository) CreateMessage(ctx context.Context, msg *models.Message) error {
	query := `
		INSERT INTO messages (conversation_id, author_id, content, attachment_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query, msg.ConversationID, msg.AuthorID, msg.Content, msg.AttachmentID,
	).Scan(&msg.ID, &msg.CreatedAt); err != nil {
		return fmt.Errorf("conversation repository: create message %w", err)
	}

	return nil
}

// ListMessages возвращает сообщения переписки от старых к новым.
func (r *ConversationRepository) ListMessages(ctx context.Context, conversationID uuid.UUID, limit, offset int) ([]models.Message, error) {
	var msgs []models.Message
	query := `
		SELECT id, conversation_id, author_id, content, attachment_id, created_at, updated_at
		FROM messages
		WHERE conversation_id = $1
		ORDER BY created_at ASC
		LIMIT $2 OFFSET $3
	`
	if err := r.db.SelectContext(ctx, &msgs, query, conversationID, limit, offset); err != nil {
		return nil, fmt.Errorf("conversation repository: list messages %w", err)
	}
	return msgs, nil
}
