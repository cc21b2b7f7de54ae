package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/bizbridge/acquisition-backend/internal/models"
	"github.com/bizbridge/acquisition-backend/internal/repository"
	"github.com/bizbridge/acquisition-backend/internal/validation"
)

// ErrNotBusinessOwner возвращается при попытке изменить чужое объявление.
var ErrNotBusinessOwner = errors.New("business service: объявление принадлежит другому продавцу")

// BusinessService содержит бизнес-логику каталога объявлений.
type BusinessService struct {
	repo      *repository.BusinessRepository
	mediaRepo *repository.MediaRepository
	maxImages int
}

// NewBusinessService создаёт сервис каталога.
func NewBusinessService(repo *repository.BusinessRepository, mediaRepo *repository.MediaRepository, maxImages int) *BusinessService {
	return &BusinessService{
		repo:      repo,
		mediaRepo: mediaRepo,
		maxImages: maxImages,
	}
}

// CreateInput содержит данные нового объявления.
type CreateBusinessInput struct {
	Name          string
	Industry      string
	Location      string
	Description   string
	AnnualRevenue *float64
	Valuation     *float64
	AskingPrice   *float64
	EmployeeCount *int
	FoundedYear   *int
}

// Create публикует новое объявление продавца в статусе черновика.
func (s *BusinessService) Create(ctx context.Context, sellerID uuid.UUID, in CreateBusinessInput) (*models.Business, error) {
	if err := validation.ValidateBusinessName(in.Name); err != nil {
		return nil, fmt.Errorf("business service: %w", err)
	}
	if err := validation.ValidateBusinessDescription(in.Description); err != nil {
		return nil, fmt.Errorf("business service: %w", err)
	}
	if err := validation.ValidateNonEmpty("industry", in.Industry); err != nil {
		return nil, fmt.Errorf("business service: %w", err)
	}
	if err := validation.ValidatePrice("asking_price", in.AskingPrice); err != nil {
		return nil, fmt.Errorf("business service: %w", err)
	}
	if err := validation.ValidatePrice("annual_revenue", in.AnnualRevenue); err != nil {
		return nil, fmt.Errorf("business service: %w", err)
	}
	if err := validation.ValidatePrice("valuation", in.Valuation); err != nil {
		return nil, fmt.Errorf("business service: %w", err)
	}

	business := &models.Business{
		SellerID:      sellerID,
		Name:          in.Name,
		Industry:      in.Industry,
		Location:      in.Location,
		Description:   in.Description,
		AnnualRevenue: in.AnnualRevenue,
		Valuation:     in.Valuation,
		AskingPrice:   in.AskingPrice,
		EmployeeCount: in.EmployeeCount,
		FoundedYear:   in.FoundedYear,
		Status:        models.BusinessStatusDraft,
	}

	if err := s.repo.Create(ctx, business); err != nil {
		return nil, err
	}

	return business, nil
}

// Get возвращает объявление вместе с фотографиями.
func (s *BusinessService) Get(ctx context.Context, id uuid.UUID) (*models.Business, error) {
	business, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	images, err := s.repo.ListImages(ctx, id)
	if err != nil {
		return nil, err
	}
	business.Images = images

	return business, nil
}

// List возвращает объявления каталога с фильтрами.
func (s *BusinessService) List(ctx context.Context, params repository.ListParams) ([]models.Business, error) {
	if params.Limit <= 0 || params.Limit > 100 {
		params.Limit = 20
	}
	if params.Offset < 0 {
		params.Offset = 0
	}
	// Публичный каталог показывает только активные объявления.
	if params.Status == "" && params.SellerID == nil {
		params.Status = models.BusinessStatusActive
	}
	return s.repo.List(ctx, params)
}

// ListMine возвращает объявления продавца во всех статусах.
func (s *BusinessService) ListMine(ctx context.Context, sellerID uuid.UUID, limit, offset int) ([]models.Business, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, repository.ListParams{SellerID: &sellerID, Limit: limit, Offset: offset})
}

// Update обновляет объявление продавца.
func (s *BusinessService) Update(ctx context.Context, sellerID uuid.UUID, business *models.Business) error {
	current, err := s.repo.GetByID(ctx, business.ID)
	if err != nil {
		return err
	}
	if current.SellerID != sellerID {
		return ErrNotBusinessOwner
	}

	if err := validation.ValidateBusinessName(business.Name); err != nil {
		return fmt.Errorf("business service: %w", err)
	}
	if err := validation.ValidateBusinessDescription(business.Description); err != nil {
		return fmt.Errorf("business service: %w", err)
	}

	business.SellerID = current.SellerID
	return s.repo.Update(ctx, business)
}

// UpdateStatus переводит объявление в новый статус.
func (s *BusinessService) UpdateStatus(ctx context.Context, sellerID, businessID uuid.UUID, status string) error {
	if _, ok := models.ValidBusinessStatuses[status]; !ok {
		return fmt.Errorf("business service: недопустимый статус %q", status)
	}

	current, err := s.repo.GetByID(ctx, businessID)
	if err != nil {
		return err
	}
	if current.SellerID != sellerID {
		return ErrNotBusinessOwner
	}

	return s.repo.UpdateStatus(ctx, businessID, status)
}

// Delete удаляет объявление продавца.
func (s *BusinessService) Delete(ctx context.Context, sellerID, businessID uuid.UUID) error {
	current, err := s.repo.GetByID(ctx, businessID)
	if err != nil {
		return err
	}
	if current.SellerID != sellerID {
		return ErrNotBusinessOwner
	}

	return s.repo.Delete(ctx, businessID)
}

// AddImage прикрепляет загруженный файл к объявлению.
func (s *BusinessService) AddImage(ctx context.Context, sellerID, businessID, mediaID uuid.UUID) (*models.BusinessImage, error) {
	current, err := s.repo.GetByID(ctx, businessID)
	if err != nil {
		return nil, err
	}
	if current.SellerID != sellerID {
		return nil, ErrNotBusinessOwner
	}

	count, err := s.repo.CountImages(ctx, businessID)
	if err != nil {
		return nil, err
	}
	if count >= s.maxImages {
		return nil, fmt.Errorf("business service: не более %d фотографий на объявление", s.maxImages)
	}

	if _, err := s.mediaRepo.GetByID(ctx, mediaID); err != nil {
		return nil, err
	}

	image := &models.BusinessImage{
		BusinessID: businessID,
		MediaID:    mediaID,
		Position:   count,
	}
	if err := s.repo.AddImage(ctx, image); err != nil {
		return nil, err
	}

	return image, nil
}

// DeleteImage отвязывает фотографию от объявления.
func (s *BusinessService) DeleteImage(ctx context.Context, sellerID, businessID, imageID uuid.UUID) error {
	current, err := s.repo.GetByID(ctx, businessID)
	if err != nil {
		return err
	}
	if current.SellerID != sellerID {
		return ErrNotBusinessOwner
	}

	return s.repo.DeleteImage(ctx, businessID, imageID)
}
