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

type mockStageStore struct {
	mock.Mock
}

func (m *mockStageStore) CreateStages(ctx context.Context, stages []models.StageData) error {
	args := m.Called(ctx, stages)
	return args.Error(0)
}

func (m *mockStageStore) GetByDealAndStage(ctx context.Context, dealID uuid.UUID, stage string) (*models.StageData, error) {
	args := m.Called(ctx, dealID, stage)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StageData), args.Error(1)
}

func (m *mockStageStore) ListByDeal(ctx context.Context, dealID uuid.UUID) ([]models.StageData, error) {
	args := m.Called(ctx, dealID)
	return args.Get(0).([]models.StageData), args.Error(1)
}

func (m *mockStageStore) UpdateStage(ctx context.Context, stage *models.StageData) error {
	args := m.Called(ctx, stage)
	return args.Error(0)
}

func (m *mockStageStore) ListChecklist(ctx context.Context, stageID uuid.UUID) ([]models.ChecklistItem, error) {
	args := m.Called(ctx, stageID)
	return args.Get(0).([]models.ChecklistItem), args.Error(1)
}

func (m *mockStageStore) ListDocuments(ctx context.Context, stageID uuid.UUID) ([]models.StageDocument, error) {
	args := m.Called(ctx, stageID)
	return args.Get(0).([]models.StageDocument), args.Error(1)
}

func (m *mockStageStore) ListComments(ctx context.Context, stageID uuid.UUID) ([]models.StageComment, error) {
	args := m.Called(ctx, stageID)
	return args.Get(0).([]models.StageComment), args.Error(1)
}

func (m *mockStageStore) ListApprovals(ctx context.Context, stageID uuid.UUID) ([]models.StageApproval, error) {
	args := m.Called(ctx, stageID)
	return args.Get(0).([]models.StageApproval), args.Error(1)
}

func (m *mockStageStore) GetChecklistItem(ctx context.Context, stageID, itemID uuid.UUID) (*models.ChecklistItem, error) {
	args := m.Called(ctx, stageID, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ChecklistItem), args.Error(1)
}

func (m *mockStageStore) UpdateChecklistItem(ctx context.Context, item *models.ChecklistItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *mockStageStore) GetDocument(ctx context.Context, stageID, docID uuid.UUID) (*models.StageDocument, error) {
	args := m.Called(ctx, stageID, docID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StageDocument), args.Error(1)
}

func (m *mockStageStore) GetDocumentByTitle(ctx context.Context, stageID uuid.UUID, title string) (*models.StageDocument, error) {
	args := m.Called(ctx, stageID, title)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StageDocument), args.Error(1)
}

func (m *mockStageStore) CreateDocument(ctx context.Context, doc *models.StageDocument) error {
	args := m.Called(ctx, doc)
	if args.Error(0) == nil {
		doc.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockStageStore) ReplaceDocument(ctx context.Context, doc *models.StageDocument) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *mockStageStore) UpdateDocumentStatus(ctx context.Context, docID uuid.UUID, status string) error {
	args := m.Called(ctx, docID, status)
	return args.Error(0)
}

func (m *mockStageStore) CreateComment(ctx context.Context, comment *models.StageComment) error {
	args := m.Called(ctx, comment)
	if args.Error(0) == nil {
		comment.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockStageStore) UpdateComment(ctx context.Context, commentID, authorID uuid.UUID, content string) error {
	args := m.Called(ctx, commentID, authorID, content)
	return args.Error(0)
}

func (m *mockStageStore) GetApproval(ctx context.Context, stageID, approvalID uuid.UUID) (*models.StageApproval, error) {
	args := m.Called(ctx, stageID, approvalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StageApproval), args.Error(1)
}

func (m *mockStageStore) CreateApproval(ctx context.Context, approval *models.StageApproval) error {
	args := m.Called(ctx, approval)
	if args.Error(0) == nil {
		approval.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockStageStore) UpdateApproval(ctx context.Context, approval *models.StageApproval) error {
	args := m.Called(ctx, approval)
	return args.Error(0)
}

type mockStageDealStore struct {
	mock.Mock
}

func (m *mockStageDealStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Deal, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Deal), args.Error(1)
}

func (m *mockStageDealStore) UpdateOverallProgress(ctx context.Context, id uuid.UUID, progress int) error {
	args := m.Called(ctx, id, progress)
	return args.Error(0)
}

func (m *mockStageDealStore) AppendActivity(ctx context.Context, entry *models.ActivityEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

type mockMediaDirectory struct {
	mock.Mock
}

func (m *mockMediaDirectory) GetByID(ctx context.Context, id uuid.UUID) (*models.MediaFile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MediaFile), args.Error(1)
}

type mockNotificationCreator struct {
	mock.Mock
}

func (m *mockNotificationCreator) CreateNotification(ctx context.Context, userID uuid.UUID, event string, data interface{}) (*models.Notification, error) {
	args := m.Called(ctx, userID, event, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Notification), args.Error(1)
}

type stageFixture struct {
	store *mockStageStore
	deals *mockStageDealStore
	media *mockMediaDirectory
	svc   *StageService

	deal  *models.Deal
	stage *models.StageData
}

func newStageFixture() *stageFixture {
	store := new(mockStageStore)
	deals := new(mockStageDealStore)
	media := new(mockMediaDirectory)
	svc := NewStageService(store, deals, media, nil)

	deal := &models.Deal{
		ID:           uuid.New(),
		BuyerID:      uuid.New(),
		SellerID:     uuid.New(),
		CurrentStage: models.StageDataRoom,
		Status:       models.DealStatusActive,
	}
	stage := &models.StageData{
		ID:     uuid.New(),
		DealID: deal.ID,
		Stage:  models.StageDataRoom,
		Status: models.StageStatusInProgress,
	}

	deals.On("GetByID", mock.Anything, deal.ID).Return(deal, nil)
	deals.On("AppendActivity", mock.Anything, mock.AnythingOfType("*models.ActivityEntry")).Return(nil)

	return &stageFixture{store: store, deals: deals, media: media, svc: svc, deal: deal, stage: stage}
}

func TestStageService_ToggleChecklistItem(t *testing.T) {
	f := newStageFixture()
	ctx := context.Background()

	item := &models.ChecklistItem{
		ID:      uuid.New(),
		StageID: f.stage.ID,
		Title:   "Загрузить финансовую отчётность за 3 года",
		Owner:   models.OwnerSeller,
	}

	f.store.On("GetByDealAndStage", mock.Anything, f.deal.ID, f.stage.Stage).Return(f.stage, nil)
	f.store.On("GetChecklistItem", mock.Anything, f.stage.ID, item.ID).Return(item, nil)
	f.store.On("UpdateChecklistItem", mock.Anything, item).Return(nil)
	f.store.On("UpdateStage", mock.Anything, f.stage).Return(nil)
	f.store.On("ListChecklist", mock.Anything, f.stage.ID).Return([]models.ChecklistItem{*item}, nil)
	f.store.On("ListByDeal", mock.Anything, f.deal.ID).Return([]models.StageData{*f.stage}, nil)
	f.deals.On("UpdateOverallProgress", mock.Anything, f.deal.ID, mock.AnythingOfType("int")).Return(nil)

	got, err := f.svc.ToggleChecklistItem(ctx, ChecklistToggleCommand{
		DealID:    f.deal.ID,
		Stage:     f.stage.Stage,
		ItemID:    item.ID,
		UserID:    f.deal.SellerID,
		Completed: true,
	})

	assert.NoError(t, err)
	assert.True(t, got.Completed)
	assert.NotNil(t, got.CompletedBy)
	assert.Equal(t, f.deal.SellerID, *got.CompletedBy)
	assert.NotNil(t, got.CompletedAt)

	// Снятие отметки очищает исполнителя и дату вместе с флагом.
	got, err = f.svc.ToggleChecklistItem(ctx, ChecklistToggleCommand{
		DealID: f.deal.ID,
		Stage:  f.stage.Stage,
		ItemID: item.ID,
		UserID: f.deal.SellerID,
	})

	assert.NoError(t, err)
	assert.False(t, got.Completed)
	assert.Nil(t, got.CompletedBy)
	assert.Nil(t, got.CompletedAt)
}

func TestStageService_ToggleChecklistItem_Idempotent(t *testing.T) {
	f := newStageFixture()
	ctx := context.Background()

	item := &models.ChecklistItem{
		ID:      uuid.New(),
		StageID: f.stage.ID,
		Owner:   models.OwnerBoth,
	}

	f.store.On("GetByDealAndStage", mock.Anything, f.deal.ID, f.stage.Stage).Return(f.stage, nil)
	f.store.On("GetChecklistItem", mock.Anything, f.stage.ID, item.ID).Return(item, nil)

	got, err := f.svc.ToggleChecklistItem(ctx, ChecklistToggleCommand{
		DealID: f.deal.ID,
		Stage:  f.stage.Stage,
		ItemID: item.ID,
		UserID: f.deal.BuyerID,
	})

	assert.NoError(t, err)
	assert.False(t, got.Completed)
	f.store.AssertNotCalled(t, "UpdateChecklistItem", mock.Anything, mock.Anything)
}

func TestStageService_ToggleChecklistItem_WrongOwner(t *testing.T) {
	f := newStageFixture()
	ctx := context.Background()

	item := &models.ChecklistItem{
		ID:      uuid.New(),
		StageID: f.stage.ID,
		Owner:   models.OwnerSeller,
	}

	f.store.On("GetByDealAndStage", mock.Anything, f.deal.ID, f.stage.Stage).Return(f.stage, nil)
	f.store.On("GetChecklistItem", mock.Anything, f.stage.ID, item.ID).Return(item, nil)

	_, err := f.svc.ToggleChecklistItem(ctx, ChecklistToggleCommand{
		DealID:    f.deal.ID,
		Stage:     f.stage.Stage,
		ItemID:    item.ID,
		UserID:    f.deal.BuyerID,
		Completed: true,
	})

	assert.ErrorIs(t, err, ErrTaskNotAllowed)
}

func TestStageService_ToggleChecklistItem_NotParty(t *testing.T) {
	f := newStageFixture()

	_, err := f.svc.ToggleChecklistItem(context.Background(), ChecklistToggleCommand{
		DealID:    f.deal.ID,
		Stage:     f.stage.Stage,
		ItemID:    uuid.New(),
		UserID:    uuid.New(),
		Completed: true,
	})

	assert.ErrorIs(t, err, ErrNotDealParty)
}

func TestStageService_MutableStage(t *testing.T) {
	f := newStageFixture()
	ctx := context.Background()

	// Закрытый этап неизменяем.
	f.stage.Status = models.StageStatusCompleted
	f.store.On("GetByDealAndStage", mock.Anything, f.deal.ID, f.stage.Stage).Return(f.stage, nil)

	_, err := f.svc.ToggleChecklistItem(ctx, ChecklistToggleCommand{
		DealID:    f.deal.ID,
		Stage:     f.stage.Stage,
		ItemID:    uuid.New(),
		UserID:    f.deal.BuyerID,
		Completed: true,
	})
	assert.ErrorIs(t, err, ErrStageCompleted)

	// Ожидающий этап первым же действием берётся в работу.
	f2 := newStageFixture()
	f2.stage.Status = models.StageStatusPending

	item := &models.ChecklistItem{ID: uuid.New(), StageID: f2.stage.ID, Owner: models.OwnerBoth}
	f2.store.On("GetByDealAndStage", mock.Anything, f2.deal.ID, f2.stage.Stage).Return(f2.stage, nil)
	f2.store.On("UpdateStage", mock.Anything, f2.stage).Return(nil)
	f2.store.On("GetChecklistItem", mock.Anything, f2.stage.ID, item.ID).Return(item, nil)
	f2.store.On("UpdateChecklistItem", mock.Anything, item).Return(nil)
	f2.store.On("ListChecklist", mock.Anything, f2.stage.ID).Return([]models.ChecklistItem{*item}, nil)
	f2.store.On("ListByDeal", mock.Anything, f2.deal.ID).Return([]models.StageData{*f2.stage}, nil)
	f2.deals.On("UpdateOverallProgress", mock.Anything, f2.deal.ID, mock.AnythingOfType("int")).Return(nil)

	_, err = f2.svc.ToggleChecklistItem(ctx, ChecklistToggleCommand{
		DealID:    f2.deal.ID,
		Stage:     f2.stage.Stage,
		ItemID:    item.ID,
		UserID:    f2.deal.BuyerID,
		Completed: true,
	})

	assert.NoError(t, err)
	assert.Equal(t, models.StageStatusInProgress, f2.stage.Status)
	assert.NotNil(t, f2.stage.StartedAt)
}

func TestStageService_UploadDocument_New(t *testing.T) {
	f := newStageFixture()
	ctx := context.Background()

	mediaID := uuid.New()
	f.store.On("GetByDealAndStage", mock.Anything, f.deal.ID, f.stage.Stage).Return(f.stage, nil)
	f.media.On("GetByID", mock.Anything, mediaID).Return(&models.MediaFile{ID: mediaID, FileSize: 2048}, nil)
	f.store.On("GetDocumentByTitle", mock.Anything, f.stage.ID, "Финансовая отчётность").Return(nil, repository.ErrDocumentNotFound)
	f.store.On("CreateDocument", mock.Anything, mock.AnythingOfType("*models.StageDocument")).Return(nil)

	doc, err := f.svc.UploadDocument(ctx, DocumentUploadCommand{
		DealID:  f.deal.ID,
		Stage:   f.stage.Stage,
		UserID:  f.deal.SellerID,
		MediaID: mediaID,
		Title:   "Финансовая отчётность",
	})

	assert.NoError(t, err)
	assert.Equal(t, 1, doc.Version)
	assert.Equal(t, models.DocumentStatusDraft, doc.Status)
	assert.Equal(t, models.ConfidentialityPrivate, doc.ConfidentialityLevel)
	assert.Equal(t, int64(2048), doc.FileSize)
	assert.Equal(t, f.deal.SellerID, doc.UploadedBy)
}

func TestStageService_UploadDocument_InvalidTitle(t *testing.T) {
	f := newStageFixture()
	ctx := context.Background()

	_, err := f.svc.UploadDocument(ctx, DocumentUploadCommand{
		DealID:  f.deal.ID,
		Stage:   f.stage.Stage,
		UserID:  f.deal.SellerID,
		MediaID: uuid.New(),
		Title:   "   ",
	})

	assert.Error(t, err)
	f.media.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	f.store.AssertNotCalled(t, "CreateDocument", mock.Anything, mock.Anything)
}

func TestStageService_UploadDocument_ReplacesByTitle(t *testing.T) {
	f := newStageFixture()
	ctx := context.Background()

	mediaID := uuid.New()
	existing := &models.StageDocument{
		ID:                   uuid.New(),
		StageID:              f.stage.ID,
		MediaID:              uuid.New(),
		Title:                "Финансовая отчётность",
		Version:              2,
		Status:               models.DocumentStatusApproved,
		ConfidentialityLevel: models.ConfidentialityPrivate,
	}

	f.store.On("GetByDealAndStage", mock.Anything, f.deal.ID, f.stage.Stage).Return(f.stage, nil)
	f.media.On("GetByID", mock.Anything, mediaID).Return(&models.MediaFile{ID: mediaID, FileSize: 4096}, nil)
	f.store.On("GetDocumentByTitle", mock.Anything, f.stage.ID, existing.Title).Return(existing, nil)
	f.store.On("ReplaceDocument", mock.Anything, existing).Return(nil)

	doc, err := f.svc.UploadDocument(ctx, DocumentUploadCommand{
		DealID:  f.deal.ID,
		Stage:   f.stage.Stage,
		UserID:  f.deal.BuyerID,
		MediaID: mediaID,
		Title:   existing.Title,
	})

	assert.NoError(t, err)
	assert.Equal(t, existing.ID, doc.ID)
	assert.Equal(t, 3, doc.Version)
	assert.Equal(t, models.DocumentStatusDraft, doc.Status)
	assert.Equal(t, mediaID, doc.MediaID)
	assert.Equal(t, int64(4096), doc.FileSize)
	f.store.AssertNotCalled(t, "CreateDocument", mock.Anything, mock.Anything)
}

func TestStageService_ActOnApproval(t *testing.T) {
	f := newStageFixture()
	ctx := context.Background()

	approval := &models.StageApproval{
		ID:           uuid.New(),
		StageID:      f.stage.ID,
		Title:        "Согласовать условия NDA",
		RequiredFrom: models.OwnerBoth,
		Status:       models.ApprovalStatusPending,
	}

	f.store.On("GetByDealAndStage", mock.Anything, f.deal.ID, f.stage.Stage).Return(f.stage, nil)
	f.store.On("GetApproval", mock.Anything, f.stage.ID, approval.ID).Return(approval, nil)
	f.store.On("UpdateApproval", mock.Anything, approval).Return(nil)

	got, err := f.svc.ActOnApproval(ctx, ApprovalActionCommand{
		DealID:     f.deal.ID,
		Stage:      f.stage.Stage,
		ApprovalID: approval.ID,
		UserID:     f.deal.BuyerID,
		Status:     models.ApprovalStatusApproved,
	})

	assert.NoError(t, err)
	assert.Equal(t, models.ApprovalStatusApproved, got.Status)
	assert.NotNil(t, got.ApprovedBy)
	assert.Equal(t, f.deal.BuyerID, *got.ApprovedBy)
	assert.NotNil(t, got.ApprovedAt)

	// Решённое согласование нельзя изменить повторно.
	_, err = f.svc.ActOnApproval(ctx, ApprovalActionCommand{
		DealID:     f.deal.ID,
		Stage:      f.stage.Stage,
		ApprovalID: approval.ID,
		UserID:     f.deal.SellerID,
		Status:     models.ApprovalStatusRejected,
	})
	assert.ErrorIs(t, err, ErrApprovalResolved)
}

func TestStageService_ActOnApproval_Reject(t *testing.T) {
	f := newStageFixture()
	ctx := context.Background()

	approval := &models.StageApproval{
		ID:           uuid.New(),
		StageID:      f.stage.ID,
		Title:        "Согласовать ценовой диапазон",
		RequiredFrom: models.OwnerSeller,
		Status:       models.ApprovalStatusPending,
	}

	f.store.On("GetByDealAndStage", mock.Anything, f.deal.ID, f.stage.Stage).Return(f.stage, nil)
	f.store.On("GetApproval", mock.Anything, f.stage.ID, approval.ID).Return(approval, nil)
	f.store.On("UpdateApproval", mock.Anything, approval).Return(nil)

	// Согласование адресовано продавцу, покупатель решать не может.
	_, err := f.svc.ActOnApproval(ctx, ApprovalActionCommand{
		DealID:     f.deal.ID,
		Stage:      f.stage.Stage,
		ApprovalID: approval.ID,
		UserID:     f.deal.BuyerID,
		Status:     models.ApprovalStatusApproved,
	})
	assert.ErrorIs(t, err, ErrApprovalNotAllowed)

	// Отклонение без причины запрещено.
	_, err = f.svc.ActOnApproval(ctx, ApprovalActionCommand{
		DealID:     f.deal.ID,
		Stage:      f.stage.Stage,
		ApprovalID: approval.ID,
		UserID:     f.deal.SellerID,
		Status:     models.ApprovalStatusRejected,
	})
	assert.ErrorIs(t, err, ErrRejectionReasonRequired)

	reason := "Цена не соответствует отчётности"
	got, err := f.svc.ActOnApproval(ctx, ApprovalActionCommand{
		DealID:     f.deal.ID,
		Stage:      f.stage.Stage,
		ApprovalID: approval.ID,
		UserID:     f.deal.SellerID,
		Status:     models.ApprovalStatusRejected,
		Reason:     &reason,
	})

	assert.NoError(t, err)
	assert.Equal(t, models.ApprovalStatusRejected, got.Status)
	assert.Nil(t, got.ApprovedBy)
	assert.Nil(t, got.ApprovedAt)
	assert.NotNil(t, got.RejectionReason)
	assert.Equal(t, reason, *got.RejectionReason)
}

func TestStageService_AddComment(t *testing.T) {
	f := newStageFixture()
	ctx := context.Background()

	f.store.On("GetByDealAndStage", mock.Anything, f.deal.ID, f.stage.Stage).Return(f.stage, nil)
	f.store.On("CreateComment", mock.Anything, mock.AnythingOfType("*models.StageComment")).Return(nil)

	comment, err := f.svc.AddComment(ctx, CommentAddCommand{
		DealID:    f.deal.ID,
		Stage:     f.stage.Stage,
		UserID:    f.deal.BuyerID,
		Content:   "Нужны расшифровки по дебиторской задолженности",
		IsPrivate: true,
	})

	assert.NoError(t, err)
	assert.Equal(t, models.RoleBuyer, comment.AuthorRole)
	assert.True(t, comment.IsPrivate)

	_, err = f.svc.AddComment(ctx, CommentAddCommand{
		DealID: f.deal.ID,
		Stage:  f.stage.Stage,
		UserID: f.deal.BuyerID,
	})
	assert.Error(t, err)
}
