package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/bizbridge/acquisition-backend/internal/models"
)

type mockDealRepo struct {
	mock.Mock
}

func (m *mockDealRepo) Create(ctx context.Context, deal *models.Deal) error {
	args := m.Called(ctx, deal)
	if args.Error(0) == nil {
		deal.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockDealRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Deal, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Deal), args.Error(1)
}

func (m *mockDealRepo) ListByUser(ctx context.Context, userID uuid.UUID, status string, limit, offset int) ([]models.Deal, error) {
	args := m.Called(ctx, userID, status, limit, offset)
	return args.Get(0).([]models.Deal), args.Error(1)
}

func (m *mockDealRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *mockDealRepo) UpdateCurrentStage(ctx context.Context, id uuid.UUID, stage string) error {
	args := m.Called(ctx, id, stage)
	return args.Error(0)
}

func (m *mockDealRepo) UpdateOverallProgress(ctx context.Context, id uuid.UUID, progress int) error {
	args := m.Called(ctx, id, progress)
	return args.Error(0)
}

func (m *mockDealRepo) UpdateTerms(ctx context.Context, deal *models.Deal) error {
	args := m.Called(ctx, deal)
	return args.Error(0)
}

func (m *mockDealRepo) AddTeamMember(ctx context.Context, member *models.TeamMember) error {
	args := m.Called(ctx, member)
	if args.Error(0) == nil {
		member.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockDealRepo) ListTeamMembers(ctx context.Context, dealID uuid.UUID) ([]models.TeamMember, error) {
	args := m.Called(ctx, dealID)
	return args.Get(0).([]models.TeamMember), args.Error(1)
}

func (m *mockDealRepo) AddKeyDate(ctx context.Context, keyDate *models.KeyDate) error {
	args := m.Called(ctx, keyDate)
	return args.Error(0)
}

func (m *mockDealRepo) ListKeyDates(ctx context.Context, dealID uuid.UUID) ([]models.KeyDate, error) {
	args := m.Called(ctx, dealID)
	return args.Get(0).([]models.KeyDate), args.Error(1)
}

func (m *mockDealRepo) AppendActivity(ctx context.Context, entry *models.ActivityEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *mockDealRepo) ListActivity(ctx context.Context, dealID uuid.UUID, limit, offset int) ([]models.ActivityEntry, error) {
	args := m.Called(ctx, dealID, limit, offset)
	return args.Get(0).([]models.ActivityEntry), args.Error(1)
}

type mockPartyDirectory struct {
	mock.Mock
}

func (m *mockPartyDirectory) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockPartyDirectory) GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

type mockBusinessDirectory struct {
	mock.Mock
}

func (m *mockBusinessDirectory) GetByID(ctx context.Context, id uuid.UUID) (*models.Business, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Business), args.Error(1)
}

func (m *mockBusinessDirectory) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

type mockDealConversationRepo struct {
	mock.Mock
}

func (m *mockDealConversationRepo) Create(ctx context.Context, conv *models.Conversation) error {
	args := m.Called(ctx, conv)
	if args.Error(0) == nil {
		conv.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockDealConversationRepo) GetByDeal(ctx context.Context, dealID uuid.UUID) (*models.Conversation, error) {
	args := m.Called(ctx, dealID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Conversation), args.Error(1)
}

type dealFixture struct {
	repo          *mockDealRepo
	stages        *mockStageStore
	parties       *mockPartyDirectory
	businesses    *mockBusinessDirectory
	conversations *mockDealConversationRepo
	notifications *mockNotificationCreator
	svc           *DealService
}

func newDealFixture() *dealFixture {
	f := &dealFixture{
		repo:          new(mockDealRepo),
		stages:        new(mockStageStore),
		parties:       new(mockPartyDirectory),
		businesses:    new(mockBusinessDirectory),
		conversations: new(mockDealConversationRepo),
		notifications: new(mockNotificationCreator),
	}
	f.svc = NewDealService(f.repo, f.stages, f.parties, f.businesses, f.conversations, f.notifications, 5*time.Second)
	return f
}

func TestDealService_CreateFromMatch(t *testing.T) {
	f := newDealFixture()
	ctx := context.Background()

	buyerID := uuid.New()
	sellerID := uuid.New()
	match := &models.Match{
		ID:         uuid.New(),
		BusinessID: uuid.New(),
		BuyerID:    buyerID,
		SellerID:   sellerID,
		Status:     models.MatchStatusAccepted,
	}

	company := "Bridge Capital"
	revenue := 1_200_000.0
	f.parties.On("GetByID", mock.Anything, buyerID).Return(&models.User{ID: buyerID, Username: "ivan", Email: "ivan@example.com"}, nil)
	f.parties.On("GetProfile", mock.Anything, buyerID).Return(&models.Profile{UserID: buyerID, DisplayName: "Иван", CompanyName: &company}, nil)
	f.parties.On("GetByID", mock.Anything, sellerID).Return(&models.User{ID: sellerID, Username: "anna", Email: "anna@example.com"}, nil)
	f.parties.On("GetProfile", mock.Anything, sellerID).Return(nil, assert.AnError)

	f.businesses.On("GetByID", mock.Anything, match.BusinessID).Return(&models.Business{
		ID:            match.BusinessID,
		SellerID:      sellerID,
		Name:          "Кофейня на Арбате",
		Industry:      "food-service",
		Location:      "Москва",
		AnnualRevenue: &revenue,
		Status:        models.BusinessStatusActive,
	}, nil)

	f.repo.On("Create", mock.Anything, mock.AnythingOfType("*models.Deal")).Return(nil)
	f.stages.On("CreateStages", mock.Anything, mock.AnythingOfType("[]models.StageData")).Return(nil)
	f.businesses.On("UpdateStatus", mock.Anything, match.BusinessID, models.BusinessStatusUnderOffer).Return(nil)
	f.conversations.On("Create", mock.Anything, mock.AnythingOfType("*models.Conversation")).Return(nil)
	f.repo.On("AppendActivity", mock.Anything, mock.AnythingOfType("*models.ActivityEntry")).Return(nil)
	f.notifications.On("CreateNotification", mock.Anything, mock.Anything, "deal.created", mock.Anything).Return(&models.Notification{}, nil)

	deal, err := f.svc.CreateFromMatch(ctx, match)

	assert.NoError(t, err)
	assert.Equal(t, models.StageNDA, deal.CurrentStage)
	assert.Equal(t, models.DealStatusActive, deal.Status)
	assert.Equal(t, 0, deal.OverallProgress)

	// Снимки сторон: имя из профиля, при его отсутствии — username.
	assert.Equal(t, "Иван", deal.Buyer.Name)
	assert.Equal(t, company, deal.Buyer.Company)
	assert.Equal(t, "anna", deal.Seller.Name)
	assert.Equal(t, "Кофейня на Арбате", deal.Business.Name)

	// Все шесть этапов засеяны, первый сразу в работе.
	assert.Len(t, deal.Stages, len(models.StageOrder))
	for i, stage := range deal.Stages {
		assert.Equal(t, models.StageOrder[i], stage.Stage)
		if i == 0 {
			assert.Equal(t, models.StageStatusInProgress, stage.Status)
			assert.NotNil(t, stage.StartedAt)
		} else {
			assert.Equal(t, models.StageStatusPending, stage.Status)
		}
		assert.NotEmpty(t, stage.Checklist)
	}

	f.conversations.AssertCalled(t, "Create", mock.Anything, mock.AnythingOfType("*models.Conversation"))
	f.notifications.AssertNumberOfCalls(t, "CreateNotification", 2)
}

func TestDealService_AdvanceStage_Gate(t *testing.T) {
	f := newDealFixture()
	ctx := context.Background()

	deal := &models.Deal{
		ID:           uuid.New(),
		BuyerID:      uuid.New(),
		SellerID:     uuid.New(),
		CurrentStage: models.StageNDA,
		Status:       models.DealStatusActive,
	}
	stage := &models.StageData{ID: uuid.New(), DealID: deal.ID, Stage: models.StageNDA, Status: models.StageStatusInProgress}

	f.repo.On("GetByID", mock.Anything, deal.ID).Return(deal, nil)
	f.stages.On("GetByDealAndStage", mock.Anything, deal.ID, models.StageNDA).Return(stage, nil)
	f.stages.On("ListChecklist", mock.Anything, stage.ID).Return([]models.ChecklistItem{
		{Required: true, Completed: false},
	}, nil)
	f.stages.On("ListDocuments", mock.Anything, stage.ID).Return([]models.StageDocument{}, nil)
	f.stages.On("ListComments", mock.Anything, stage.ID).Return([]models.StageComment{}, nil)
	f.stages.On("ListApprovals", mock.Anything, stage.ID).Return([]models.StageApproval{}, nil)

	_, err := f.svc.AdvanceStage(ctx, deal.ID, deal.BuyerID)
	assert.ErrorIs(t, err, ErrStageNotReady)
	f.stages.AssertNotCalled(t, "UpdateStage", mock.Anything, mock.Anything)
}

func TestDealService_AdvanceStage(t *testing.T) {
	f := newDealFixture()
	ctx := context.Background()

	deal := &models.Deal{
		ID:           uuid.New(),
		BuyerID:      uuid.New(),
		SellerID:     uuid.New(),
		CurrentStage: models.StageNDA,
		Status:       models.DealStatusActive,
	}
	current := &models.StageData{ID: uuid.New(), DealID: deal.ID, Stage: models.StageNDA, Status: models.StageStatusInProgress}
	next := &models.StageData{ID: uuid.New(), DealID: deal.ID, Stage: models.StageDataRoom, Status: models.StageStatusPending}

	f.repo.On("GetByID", mock.Anything, deal.ID).Return(deal, nil)
	f.stages.On("GetByDealAndStage", mock.Anything, deal.ID, models.StageNDA).Return(current, nil)
	f.stages.On("GetByDealAndStage", mock.Anything, deal.ID, models.StageDataRoom).Return(next, nil)
	f.stages.On("ListChecklist", mock.Anything, current.ID).Return([]models.ChecklistItem{
		{Required: true, Completed: true},
	}, nil)
	f.stages.On("ListDocuments", mock.Anything, current.ID).Return([]models.StageDocument{}, nil)
	f.stages.On("ListComments", mock.Anything, current.ID).Return([]models.StageComment{}, nil)
	f.stages.On("ListApprovals", mock.Anything, current.ID).Return([]models.StageApproval{}, nil)
	f.stages.On("UpdateStage", mock.Anything, mock.AnythingOfType("*models.StageData")).Return(nil)
	f.repo.On("UpdateCurrentStage", mock.Anything, deal.ID, models.StageDataRoom).Return(nil)
	f.stages.On("ListByDeal", mock.Anything, deal.ID).Return([]models.StageData{*current, *next}, nil)
	f.repo.On("UpdateOverallProgress", mock.Anything, deal.ID, mock.AnythingOfType("int")).Return(nil)
	f.repo.On("AppendActivity", mock.Anything, mock.AnythingOfType("*models.ActivityEntry")).Return(nil)
	f.notifications.On("CreateNotification", mock.Anything, deal.SellerID, "deal.stage_advanced", mock.Anything).Return(&models.Notification{}, nil)

	got, err := f.svc.AdvanceStage(ctx, deal.ID, deal.BuyerID)

	assert.NoError(t, err)
	assert.Equal(t, models.StageDataRoom, got.CurrentStage)
	assert.Equal(t, models.DealStatusActive, got.Status)
	assert.Equal(t, models.StageStatusCompleted, current.Status)
	assert.Equal(t, 100, current.Progress)
	assert.NotNil(t, current.CompletedAt)
	assert.Equal(t, models.StageStatusInProgress, next.Status)
	assert.NotNil(t, next.StartedAt)
}

func TestDealService_AdvanceStage_Final(t *testing.T) {
	f := newDealFixture()
	ctx := context.Background()

	deal := &models.Deal{
		ID:           uuid.New(),
		BusinessID:   uuid.New(),
		BuyerID:      uuid.New(),
		SellerID:     uuid.New(),
		CurrentStage: models.StageClosing,
		Status:       models.DealStatusActive,
	}
	closing := &models.StageData{ID: uuid.New(), DealID: deal.ID, Stage: models.StageClosing, Status: models.StageStatusInProgress}

	f.repo.On("GetByID", mock.Anything, deal.ID).Return(deal, nil)
	f.stages.On("GetByDealAndStage", mock.Anything, deal.ID, models.StageClosing).Return(closing, nil)
	f.stages.On("ListChecklist", mock.Anything, closing.ID).Return([]models.ChecklistItem{}, nil)
	f.stages.On("ListDocuments", mock.Anything, closing.ID).Return([]models.StageDocument{}, nil)
	f.stages.On("ListComments", mock.Anything, closing.ID).Return([]models.StageComment{}, nil)
	f.stages.On("ListApprovals", mock.Anything, closing.ID).Return([]models.StageApproval{}, nil)
	f.stages.On("UpdateStage", mock.Anything, closing).Return(nil)
	f.repo.On("UpdateStatus", mock.Anything, deal.ID, models.DealStatusCompleted).Return(nil)
	f.businesses.On("UpdateStatus", mock.Anything, deal.BusinessID, models.BusinessStatusSold).Return(nil)
	f.stages.On("ListByDeal", mock.Anything, deal.ID).Return([]models.StageData{*closing}, nil)
	f.repo.On("UpdateOverallProgress", mock.Anything, deal.ID, mock.AnythingOfType("int")).Return(nil)
	f.repo.On("AppendActivity", mock.Anything, mock.AnythingOfType("*models.ActivityEntry")).Return(nil)
	f.notifications.On("CreateNotification", mock.Anything, deal.BuyerID, "deal.stage_advanced", mock.Anything).Return(&models.Notification{}, nil)

	got, err := f.svc.AdvanceStage(ctx, deal.ID, deal.SellerID)

	assert.NoError(t, err)
	assert.Equal(t, models.DealStatusCompleted, got.Status)
	assert.Equal(t, models.StageClosing, got.CurrentStage)
	f.businesses.AssertCalled(t, "UpdateStatus", mock.Anything, deal.BusinessID, models.BusinessStatusSold)
	f.repo.AssertNotCalled(t, "UpdateCurrentStage", mock.Anything, mock.Anything, mock.Anything)
}

func TestDealService_UpdateStatus(t *testing.T) {
	f := newDealFixture()
	ctx := context.Background()

	deal := &models.Deal{
		ID:       uuid.New(),
		BuyerID:  uuid.New(),
		SellerID: uuid.New(),
		Status:   models.DealStatusActive,
	}

	f.repo.On("GetByID", mock.Anything, deal.ID).Return(deal, nil)
	f.repo.On("UpdateStatus", mock.Anything, deal.ID, models.DealStatusOnHold).Return(nil)
	f.repo.On("AppendActivity", mock.Anything, mock.AnythingOfType("*models.ActivityEntry")).Return(nil)
	f.notifications.On("CreateNotification", mock.Anything, deal.SellerID, "deal.status_changed", mock.Anything).Return(&models.Notification{}, nil)

	got, err := f.svc.UpdateStatus(ctx, deal.ID, deal.BuyerID, models.DealStatusOnHold)
	assert.NoError(t, err)
	assert.Equal(t, models.DealStatusOnHold, got.Status)

	// Завершение не назначается напрямую, только закрытием последнего этапа.
	_, err = f.svc.UpdateStatus(ctx, deal.ID, deal.BuyerID, models.DealStatusCompleted)
	assert.Error(t, err)

	_, err = f.svc.UpdateStatus(ctx, deal.ID, uuid.New(), models.DealStatusCancelled)
	assert.ErrorIs(t, err, ErrNotDealParty)

	deal.Status = models.DealStatusCompleted
	_, err = f.svc.UpdateStatus(ctx, deal.ID, deal.BuyerID, models.DealStatusOnHold)
	assert.Error(t, err)
}

func TestDealService_UpdateTerms(t *testing.T) {
	f := newDealFixture()
	ctx := context.Background()

	deal := &models.Deal{ID: uuid.New(), BuyerID: uuid.New(), SellerID: uuid.New(), Status: models.DealStatusActive}
	f.repo.On("GetByID", mock.Anything, deal.ID).Return(deal, nil)
	f.repo.On("UpdateTerms", mock.Anything, deal).Return(nil)
	f.repo.On("AppendActivity", mock.Anything, mock.AnythingOfType("*models.ActivityEntry")).Return(nil)

	negative := -1.0
	_, err := f.svc.UpdateTerms(ctx, deal.ID, deal.BuyerID, UpdateTermsInput{DealValue: &negative})
	assert.Error(t, err)

	value := 25_000_000.0
	structure := "asset-purchase"
	got, err := f.svc.UpdateTerms(ctx, deal.ID, deal.BuyerID, UpdateTermsInput{
		DealValue:     &value,
		DealStructure: &structure,
		FinancingType: []string{"cash", "seller-financing"},
	})

	assert.NoError(t, err)
	assert.Equal(t, value, *got.DealValue)
	assert.Equal(t, structure, *got.DealStructure)
	assert.Equal(t, []string{"cash", "seller-financing"}, got.FinancingType)
}

func TestDealService_AddTeamMember(t *testing.T) {
	f := newDealFixture()
	ctx := context.Background()

	deal := &models.Deal{ID: uuid.New(), BuyerID: uuid.New(), SellerID: uuid.New(), Status: models.DealStatusActive}
	f.repo.On("GetByID", mock.Anything, deal.ID).Return(deal, nil)
	f.repo.On("AddTeamMember", mock.Anything, mock.AnythingOfType("*models.TeamMember")).Return(nil)
	f.repo.On("AppendActivity", mock.Anything, mock.AnythingOfType("*models.ActivityEntry")).Return(nil)

	_, err := f.svc.AddTeamMember(ctx, deal.ID, deal.SellerID, &models.TeamMember{Name: "Без роли"})
	assert.Error(t, err)

	member, err := f.svc.AddTeamMember(ctx, deal.ID, deal.SellerID, &models.TeamMember{
		Name: "Мария Юристова",
		Role: "юрист",
	})

	assert.NoError(t, err)
	assert.Equal(t, deal.ID, member.DealID)
	assert.Equal(t, models.RoleSeller, member.Side)
}

func TestDealService_ListMyDeals_InvalidStatus(t *testing.T) {
	f := newDealFixture()

	_, err := f.svc.ListMyDeals(context.Background(), uuid.New(), "paused", 20, 0)
	assert.Error(t, err)
}
