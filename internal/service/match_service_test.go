package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/bizbridge/acquisition-backend/internal/models"
	"github.com/bizbridge/acquisition-backend/internal/repository"
)

type mockMatchRepo struct {
	mock.Mock
}

func (m *mockMatchRepo) Create(ctx context.Context, match *models.Match) error {
	args := m.Called(ctx, match)
	if args.Error(0) == nil {
		match.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockMatchRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Match, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Match), args.Error(1)
}

func (m *mockMatchRepo) GetPendingByBusinessAndBuyer(ctx context.Context, businessID, buyerID uuid.UUID) (*models.Match, error) {
	args := m.Called(ctx, businessID, buyerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Match), args.Error(1)
}

func (m *mockMatchRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *mockMatchRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Match, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]models.Match), args.Error(1)
}

type mockDealCreator struct {
	mock.Mock
}

func (m *mockDealCreator) CreateFromMatch(ctx context.Context, match *models.Match) (*models.Deal, error) {
	args := m.Called(ctx, match)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Deal), args.Error(1)
}

func TestMatchService_Request(t *testing.T) {
	repo := new(mockMatchRepo)
	businesses := new(mockBusinessDirectory)
	notifications := new(mockNotificationCreator)
	svc := NewMatchService(repo, businesses, new(mockDealCreator), notifications)
	ctx := context.Background()

	buyerID := uuid.New()
	sellerID := uuid.New()
	business := &models.Business{
		ID:       uuid.New(),
		SellerID: sellerID,
		Status:   models.BusinessStatusActive,
	}

	businesses.On("GetByID", mock.Anything, business.ID).Return(business, nil)
	repo.On("GetPendingByBusinessAndBuyer", mock.Anything, business.ID, buyerID).Return(nil, repository.ErrMatchNotFound)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*models.Match")).Return(nil)
	notifications.On("CreateNotification", mock.Anything, sellerID, "match.requested", mock.Anything).Return(&models.Notification{}, nil)

	message := "Интересует покупка, готов обсудить условия"
	match, err := svc.Request(ctx, buyerID, business.ID, &message)

	assert.NoError(t, err)
	assert.Equal(t, models.MatchStatusPending, match.Status)
	assert.Equal(t, sellerID, match.SellerID)
	assert.Equal(t, buyerID, match.BuyerID)
	notifications.AssertCalled(t, "CreateNotification", mock.Anything, sellerID, "match.requested", mock.Anything)
}

func TestMatchService_Request_OwnBusiness(t *testing.T) {
	repo := new(mockMatchRepo)
	businesses := new(mockBusinessDirectory)
	svc := NewMatchService(repo, businesses, new(mockDealCreator), nil)

	sellerID := uuid.New()
	business := &models.Business{ID: uuid.New(), SellerID: sellerID, Status: models.BusinessStatusActive}
	businesses.On("GetByID", mock.Anything, business.ID).Return(business, nil)

	_, err := svc.Request(context.Background(), sellerID, business.ID, nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "собственный бизнес")
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestMatchService_Request_Duplicate(t *testing.T) {
	repo := new(mockMatchRepo)
	businesses := new(mockBusinessDirectory)
	svc := NewMatchService(repo, businesses, new(mockDealCreator), nil)

	buyerID := uuid.New()
	business := &models.Business{ID: uuid.New(), SellerID: uuid.New(), Status: models.BusinessStatusActive}
	businesses.On("GetByID", mock.Anything, business.ID).Return(business, nil)
	repo.On("GetPendingByBusinessAndBuyer", mock.Anything, business.ID, buyerID).Return(&models.Match{ID: uuid.New()}, nil)

	_, err := svc.Request(context.Background(), buyerID, business.ID, nil)
	assert.ErrorIs(t, err, ErrMatchAlreadyExists)
}

func TestMatchService_Request_InactiveBusiness(t *testing.T) {
	repo := new(mockMatchRepo)
	businesses := new(mockBusinessDirectory)
	svc := NewMatchService(repo, businesses, new(mockDealCreator), nil)

	business := &models.Business{ID: uuid.New(), SellerID: uuid.New(), Status: models.BusinessStatusSold}
	businesses.On("GetByID", mock.Anything, business.ID).Return(business, nil)

	_, err := svc.Request(context.Background(), uuid.New(), business.ID, nil)
	assert.Error(t, err)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestMatchService_Accept(t *testing.T) {
	repo := new(mockMatchRepo)
	deals := new(mockDealCreator)
	notifications := new(mockNotificationCreator)
	svc := NewMatchService(repo, new(mockBusinessDirectory), deals, notifications)
	ctx := context.Background()

	sellerID := uuid.New()
	match := &models.Match{
		ID:       uuid.New(),
		BuyerID:  uuid.New(),
		SellerID: sellerID,
		Status:   models.MatchStatusPending,
	}
	deal := &models.Deal{ID: uuid.New(), BuyerID: match.BuyerID, SellerID: sellerID}

	repo.On("GetByID", mock.Anything, match.ID).Return(match, nil)
	repo.On("UpdateStatus", mock.Anything, match.ID, models.MatchStatusAccepted).Return(nil)
	deals.On("CreateFromMatch", mock.Anything, match).Return(deal, nil)
	notifications.On("CreateNotification", mock.Anything, match.BuyerID, "match.accepted", mock.Anything).Return(&models.Notification{}, nil)

	gotMatch, gotDeal, err := svc.Accept(ctx, sellerID, match.ID)

	assert.NoError(t, err)
	assert.Equal(t, models.MatchStatusAccepted, gotMatch.Status)
	assert.Equal(t, deal.ID, gotDeal.ID)

	// Повторное решение по той же заявке невозможно.
	_, _, err = svc.Accept(ctx, sellerID, match.ID)
	assert.Error(t, err)
}

func TestMatchService_Accept_WrongSeller(t *testing.T) {
	repo := new(mockMatchRepo)
	svc := NewMatchService(repo, new(mockBusinessDirectory), new(mockDealCreator), nil)

	match := &models.Match{ID: uuid.New(), SellerID: uuid.New(), Status: models.MatchStatusPending}
	repo.On("GetByID", mock.Anything, match.ID).Return(match, nil)

	_, _, err := svc.Accept(context.Background(), uuid.New(), match.ID)
	assert.Error(t, err)
	repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestMatchService_Decline(t *testing.T) {
	repo := new(mockMatchRepo)
	notifications := new(mockNotificationCreator)
	svc := NewMatchService(repo, new(mockBusinessDirectory), new(mockDealCreator), notifications)

	sellerID := uuid.New()
	match := &models.Match{ID: uuid.New(), BuyerID: uuid.New(), SellerID: sellerID, Status: models.MatchStatusPending}

	repo.On("GetByID", mock.Anything, match.ID).Return(match, nil)
	repo.On("UpdateStatus", mock.Anything, match.ID, models.MatchStatusDeclined).Return(nil)
	notifications.On("CreateNotification", mock.Anything, match.BuyerID, "match.declined", mock.Anything).Return(&models.Notification{}, nil)

	got, err := svc.Decline(context.Background(), sellerID, match.ID)

	assert.NoError(t, err)
	assert.Equal(t, models.MatchStatusDeclined, got.Status)
}
