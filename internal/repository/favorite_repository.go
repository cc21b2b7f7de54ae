package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/bizbridge/acquisition-backend/internal/models"
)

// FavoriteRepository отвечает за таблицу favorites.
type FavoriteRepository struct {
	db *sqlx.DB
}

// NewFavoriteRepository создаёт экземпляр репозитория.
func NewFavoriteRepository(db *sqlx.DB) *FavoriteRepository {
	return &FavoriteRepository{db: db}
}

// Add добавляет бизнес в избранное. Повторное добавление не считается ошибкой.
func (r *FavoriteRepository) Add(ctx context.Context, userID, businessID uuid.UUID) error {
	query := `
		INSERT INTO favorites (user_id, business_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, business_id) DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, query, userID, businessID); err != nil {
		return fmt.Errorf("favorite repository: add %w", err)
	}
	return nil
}

// Remove убирает бизнес из избранного.
func (r *FavoriteRepository) Remove(ctx context.Context, userID, businessID uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `
		DELETE FROM favorites WHERE user_id = $1 AND business_id = $2
	`, userID, businessID); err != nil {
		return fmt.Errorf("favorite repository: remove %w", err)
	}
	return nil
}

// Exists проверяет, есть ли бизнес в избранном пользователя.
func (r *FavoriteRepository) Exists(ctx context.Context, userID, businessID uuid.UUID) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM favorites WHERE user_id = $1 AND business_id = $2)`
	if err := r.db.GetContext(ctx, &exists, query, userID, businessID); err != nil {
		return false, fmt.Errorf("favorite repository: exists %w", err)
	}
	return exists, nil
}

// ListByUser возвращает избранные бизнесы пользователя.
func (r *FavoriteRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Business, error) {
	var businesses []models.Business
	query := `
		SELECT b.id, b.seller_id, b.name, b.industry, b.location, b.description,
			b.annual_revenue, b.valuation, b.asking_price, b.employee_count,
			b.founded_year, b.status, b.created_at, b.updated_at
		FROM favorites f
		JOIN businesses b ON b.id = f.business_id
		WHERE f.user_id = $1
		ORDER BY f.created_at DESC
	`
	if err := r.db.SelectContext(ctx, &businesses, query, userID); err != nil {
		return nil, fmt.Errorf("favorite repository: list by user %w", err)
	}
	return businesses, nil
}
