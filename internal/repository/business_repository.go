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

// ErrBusinessNotFound возвращается, когда объявление не найдено.
var ErrBusinessNotFound = errors.New("business not found")

// BusinessRepository отвечает за работу с таблицами businesses и business_images.
type BusinessRepository struct {
	db *sqlx.DB
}

// NewBusinessRepository создаёт экземпляр репозитория.
func NewBusinessRepository(db *sqlx.DB) *BusinessRepository {
	return &BusinessRepository{db: db}
}

// Create создаёт новое объявление.
func (r *BusinessRepository) Create(ctx context.Context, business *models.Business) error {
	query := `
		INSERT INTO businesses (seller_id, name, industry, location, description,
			annual_revenue, valuation, asking_price, employee_count, founded_year, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		business.SellerID, business.Name, business.Industry, business.Location, business.Description,
		business.AnnualRevenue, business.Valuation, business.AskingPrice,
		business.EmployeeCount, business.FoundedYear, business.Status,
	).Scan(&business.ID, &business.CreatedAt, &business.UpdatedAt); err != nil {
		return fmt.Errorf("business repository: create %w", err)
	}

	return nil
}

// GetByID возвращает объявление по идентификатору.
func (r *BusinessRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Business, error) {
	var business models.Business
	query := `
		SELECT id, seller_id, name, industry, location, description,
			annual_revenue, valuation, asking_price, employee_count, founded_year,
			status, created_at, updated_at
		FROM businesses
		WHERE id = $1
	`
	if err := r.db.GetContext(ctx, &business, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBusinessNotFound
		}
		return nil, fmt.Errorf("business repository: get by id %w", err)
	}

	return &business, nil
}

// Update обновляет объявление.
func (r *BusinessRepository) Update(ctx context.Context, business *models.Business) error {
	query := `
		UPDATE businesses
		SET name = $2, industry = $3, location = $4, description = $5,
			annual_revenue = $6, valuation = $7, asking_price = $8,
			employee_count = $9, founded_year = $10, status = $11, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		business.ID, business.Name, business.Industry, business.Location, business.Description,
		business.AnnualRevenue, business.Valuation, business.AskingPrice,
		business.EmployeeCount, business.FoundedYear, business.Status,
	).Scan(&business.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrBusinessNotFound
		}
		return fmt.Errorf("business repository: update %w", err)
	}

	return nil
}

// UpdateStatus меняет статус объявления.
func (r *BusinessRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE businesses SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("business repository: update status %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrBusinessNotFound
	}
	return nil
}

// Delete удаляет объявление.
func (r *BusinessRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM businesses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("business repository: delete %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrBusinessNotFound
	}
	return nil
}

// ListParams задаёт фильтры списка объявлений.
type ListParams struct {
	Industry string
	Location string
	Search   string
	Status   string
	SellerID *uuid.UUID
	Limit    int
	Offset   int
}

// List возвращает объявления с фильтрами и пагинацией.
func (r *BusinessRepository) List(ctx context.Context, params ListParams) ([]models.Business, error) {
	query := `
		SELECT id, seller_id, name, industry, location, description,
			annual_revenue, valuation, asking_price, employee_count, founded_year,
			status, created_at, updated_at
		FROM businesses
		WHERE 1=1
	`
	args := []interface{}{}

	if params.Status != "" {
		args = append(args, params.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if params.Industry != "" {
		args = append(args, params.Industry)
		query += fmt.Sprintf(" AND industry = $%d", len(args))
	}
	if params.Location != "" {
		args = append(args, "%"+params.Location+"%")
		query += fmt.Sprintf(" AND location ILIKE $%d", len(args))
	}
	if params.Search != "" {
		args = append(args, "%"+params.Search+"%")
		query += fmt.Sprintf(" AND (name ILIKE $%d OR description ILIKE $%d)", len(args), len(args))
	}
	if params.SellerID != nil {
		args = append(args, *params.SellerID)
		query += fmt.Sprintf(" AND seller_id = $%d", len(args))
	}

	args = append(args, params.Limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))
	args = append(args, params.Offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	var businesses []models.Business
	if err := r.db.SelectContext(ctx, &businesses, query, args...); err != nil {
		return nil, fmt.Errorf("business repository: list %w", err)
	}

	return businesses, nil
}

// AddImage добавляет фотографию объявления.
func (r *BusinessRepository) AddImage(ctx context.Context, image *models.BusinessImage) error {
	query := `
		INSERT INTO business_images (business_id, media_id, position)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		image.BusinessID, image.MediaID, image.Position,
	).Scan(&image.ID, &image.CreatedAt); err != nil {
		return fmt.Errorf("business repository: add image %w", err)
	}

	return nil
}

// ListImages возвращает фотографии объявления в порядке позиций.
func (r *BusinessRepository) ListImages(ctx context.Context, businessID uuid.UUID) ([]models.BusinessImage, error) {
	var images []models.BusinessImage
	query := `
		SELECT id, business_id, media_id, position, created_at
		FROM business_images
		WHERE business_id = $1
		ORDER BY position ASC
	`
	if err := r.db.SelectContext(ctx, &images, query, businessID); err != nil {
		return nil, fmt.Errorf("business repository: list images %w", err)
	}
	return images, nil
}

// CountImages возвращает количество фотографий объявления.
func (r *BusinessRepository) CountImages(ctx context.Context, businessID uuid.UUID) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM business_images WHERE business_id = $1`
	if err := r.db.GetContext(ctx, &count, query, businessID); err != nil {
		return 0, fmt.Errorf("business repository: count images %w", err)
	}
	return count, nil
}

// DeleteImage удаляет фотографию объявления.
func (r *BusinessRepository) DeleteImage(ctx context.Context, businessID, imageID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM business_images WHERE id = $1 AND business_id = $2`, imageID, businessID)
	if err != nil {
		return fmt.Errorf("business repository: delete image %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrBusinessNotFound
	}
	return nil
}
