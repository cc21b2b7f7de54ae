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

// ErrMatchAlreadyExists возвращается при повторной заявке на тот же бизнес.
var ErrMatchAlreadyExists = errors.New("match service: заявка уже отправлена")

// MatchRepository описывает взаимодействие сервиса с хранилищем заявок.
type MatchRepository interface {
	Create(ctx context.Context, match *models.Match) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Match, error)
	GetPendingByBusinessAndBuyer(ctx context.Context, businessID, buyerID uuid.UUID) (*models.Match, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Match, error)
}

// DealCreator создаёт сделку из принятой заявки.
type DealCreator interface {
	CreateFromMatch(ctx context.Context, match *models.Match) (*models.Deal, error)
}

// MatchService содержит бизнес-логику заявок покупателей.
type MatchService struct {
	repo          MatchRepository
	businesses    BusinessDirectory
	deals         DealCreator
	notifications NotificationCreator
	hub           WSNotifier
}

// NewMatchService создаёт сервис заявок.
func NewMatchService(repo MatchRepository, businesses BusinessDirectory, deals DealCreator, notifications NotificationCreator) *MatchService {
	return &MatchService{
		repo:          repo,
		businesses:    businesses,
		deals:         deals,
		notifications: notifications,
	}
}

// SetHub подключает WebSocket hub после инициализации.
func (s *MatchService) SetHub(hub WSNotifier) {
	s.hub = hub
}

// Request создаёт заявку покупателя на сделку по бизнесу.
func (s *MatchService) Request(ctx context.Context, buyerID, businessID uuid.UUID, message *string) (*models.Match, error) {
	business, err := s.businesses.GetByID(ctx, businessID)
	if err != nil {
		return nil, err
	}

	if business.SellerID == buyerID {
		return nil, fmt.Errorf("match service: нельзя подать заявку на собственный бизнес")
	}
	if business.Status != models.BusinessStatusActive {
		return nil, fmt.Errorf("match service: объявление недоступно для заявок")
	}

	if message != nil {
		if err := validation.ValidateMessageContent(*message); err != nil {
			return nil, fmt.Errorf("match service: %w", err)
		}
	}

	if _, err := s.repo.GetPendingByBusinessAndBuyer(ctx, businessID, buyerID); err == nil {
		return nil, ErrMatchAlreadyExists
	} else if !errors.Is(err, repository.ErrMatchNotFound) {
		return nil, err
	}

	match := &models.Match{
		BusinessID: businessID,
		BuyerID:    buyerID,
		SellerID:   business.SellerID,
		Status:     models.MatchStatusPending,
		Message:    message,
	}

	if err := s.repo.Create(ctx, match); err != nil {
		return nil, err
	}

	s.notify(ctx, business.SellerID, "match.requested", map[string]interface{}{
		"match_id":    match.ID,
		"business_id": businessID,
	})

	return match, nil
}

// Accept принимает заявку и порождает сделку.
func (s *MatchService) Accept(ctx context.Context, sellerID, matchID uuid.UUID) (*models.Match, *models.Deal, error) {
	match, err := s.repo.GetByID(ctx, matchID)
	if err != nil {
		return nil, nil, err
	}
	if match.SellerID != sellerID {
		return nil, nil, fmt.Errorf("match service: заявка адресована другому продавцу")
	}
	if match.Status != models.MatchStatusPending {
		return nil, nil, fmt.Errorf("match service: по заявке уже принято решение")
	}

	if err := s.repo.UpdateStatus(ctx, matchID, models.MatchStatusAccepted); err != nil {
		return nil, nil, err
	}
	match.Status = models.MatchStatusAccepted

	deal, err := s.deals.CreateFromMatch(ctx, match)
	if err != nil {
		return nil, nil, err
	}

	s.notify(ctx, match.BuyerID, "match.accepted", map[string]interface{}{
		"match_id": match.ID,
		"deal_id":  deal.ID,
	})

	return match, deal, nil
}

// Decline отклоняет заявку покупателя.
func (s *MatchService) Decline(ctx context.Context, sellerID, matchID uuid.UUID) (*models.Match, error) {
	match, err := s.repo.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if match.SellerID != sellerID {
		return nil, fmt.Errorf("match service: заявка адресована другому продавцу")
	}
	if match.Status != models.MatchStatusPending {
		return nil, fmt.Errorf("match service: по заявке уже принято решение")
	}

	if err := s.repo.UpdateStatus(ctx, matchID, models.MatchStatusDeclined); err != nil {
		return nil, err
	}
	match.Status = models.MatchStatusDeclined

	s.notify(ctx, match.BuyerID, "match.declined", map[string]interface{}{
		"match_id": match.ID,
	})

	return match, nil
}

// ListMine возвращает заявки пользователя с любой стороны.
func (s *MatchService) ListMine(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Match, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

func (s *MatchService) notify(ctx context.Context, userID uuid.UUID, event string, data interface{}) {
	if s.notifications != nil {
		if _, err := s.notifications.CreateNotification(ctx, userID, event, data); err != nil && logger.Log != nil {
			logger.Log.Warnf("match service: не удалось создать уведомление: %v", err)
		}
	}
	if s.hub != nil {
		if err := s.hub.BroadcastToUser(userID, event, data); err != nil && logger.Log != nil {
			logger.Log.Warnf("match service: не удалось отправить ws уведомление: %v", err)
		}
	}
}
