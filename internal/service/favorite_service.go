package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/bizbridge/acquisition-backend/internal/models"
	"github.com/bizbridge/acquisition-backend/internal/repository"
)

type FavoriteService struct {
	repo         *repository.FavoriteRepository
	businessRepo *repository.BusinessRepository
}

func NewFavoriteService(r *repository.FavoriteRepository, businessRepo *repository.BusinessRepository) *FavoriteService {
	return &FavoriteService{repo: r, businessRepo: businessRepo}
}

func (s *FavoriteService) AddFavorite(ctx context.Context, userID, businessID uuid.UUID) error {
	// Избранное указывает только на существующие объявления.
	if _, err := s.businessRepo.GetByID(ctx, businessID); err != nil {
		return err
	}
	return s.repo.Add(ctx, userID, businessID)
}

func (s *FavoriteService) RemoveFavorite(ctx context.Context, userID, businessID uuid.UUID) error {
	return s.repo.Remove(ctx, userID, businessID)
}

func (s *FavoriteService) ListFavorites(ctx context.Context, userID uuid.UUID) ([]models.Business, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *FavoriteService) IsFavorite(ctx context.Context, userID, businessID uuid.UUID) (bool, error) {
	return s.repo.Exists(ctx, userID, businessID)
}
