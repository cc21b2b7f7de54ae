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

// ErrMatchNotFound возвращается, когда заявка не найдена.
var ErrMatchNotFound = errors.New("match not found")

// MatchRepository отвечает за работу с таблицей matches.
type MatchRepository struct {
	db *sqlx.DB
}

// NewMatchRepository создаёт экземпляр репозитория.
func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

// Create создаёт заявку покупателя.
func (r *MatchRepository) Create(ctx context.Context, match *models.Match) error {
	query := `
		INSERT INTO matches (business_id, buyer_id, seller_id, status, message)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		match.BusinessID, match.BuyerID, match.SellerID, match.Status, match.Message,
	).Scan(&match.ID, &match.CreatedAt); err != nil {
		return fmt.Errorf("match repository: create %w", err)
	}

	return nil
}

// GetByID возвращает заявку по идентификатору.
func (r *MatchRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Match, error) {
	var match models.Match
	query := `
		SELECT id, business_id, buyer_id, seller_id, status, message, created_at, responded_at
		FROM matches
		WHERE id = $1
	`
	if err := r.db.GetContext(ctx, &match, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("match repository: get by id %w", err)
	}

	return &match, nil
}

// GetPendingByBusinessAndBuyer возвращает необработанную заявку покупателя
// по конкретному бизнесу, если она есть.
func (r *MatchRepository) GetPendingByBusinessAndBuyer(ctx context.Context, businessID, buyerID uuid.UUID) (*models.Match, error) {
	var match models.Match
	query := `
		SELECT id, business_id, buyer_id, seller_id, status, message, created_at, responded_at
		FROM matches
		WHERE business_id = $1 AND buyer_id = $2 AND status = $3
	`
	if err := r.db.GetContext(ctx, &match, query, businessID, buyerID, models.MatchStatusPending); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("match repository: get pending %w", err)
	}

	return &match, nil
}

// UpdateStatus меняет статус заявки и фиксирует время ответа.
func (r *MatchRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE matches SET status = $2, responded_at = NOW() WHERE id = $1
	`, id, status)
	if err != nil {
		return fmt.Errorf("match repository: update status %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrMatchNotFound
	}
	return nil
}

// ListByUser возвращает заявки, где пользователь выступает любой из сторон.
func (r *MatchRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Match, error) {
	var matches []models.Match
	query := `
		SELECT id, business_id, buyer_id, seller_id, status, message, created_at, responded_at
		FROM matches
		WHERE buyer_id = $1 OR seller_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	if err := r.db.SelectContext(ctx, &matches, query, userID, limit, offset); err != nil {
		return nil, fmt.Errorf("match repository: list by user %w", err)
	}
	return matches, nil
}
