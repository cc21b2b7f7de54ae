package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bizbridge/acquisition-backend/internal/logger"
	"github.com/bizbridge/acquisition-backend/internal/models"
	"github.com/bizbridge/acquisition-backend/internal/repository"
	"github.com/bizbridge/acquisition-backend/internal/validation"
	"github.com/bizbridge/acquisition-backend/internal/workflow"
)

var (
	// ErrTaskNotAllowed возвращается, когда задача закреплена за другой стороной.
	ErrTaskNotAllowed = errors.New("stage service: задача закреплена за другой стороной")
	// ErrApprovalNotAllowed возвращается, когда согласование ожидает другую сторону.
	ErrApprovalNotAllowed = errors.New("stage service: согласование ожидает другую сторону")
	// ErrApprovalResolved возвращается при попытке изменить решённое согласование.
	ErrApprovalResolved = errors.New("stage service: по согласованию уже принято решение")
	// ErrStageCompleted возвращается при попытке изменить закрытый этап.
	ErrStageCompleted = errors.New("stage service: этап уже закрыт")
	// ErrRejectionReasonRequired возвращается при отклонении без причины.
	ErrRejectionReasonRequired = errors.New("stage service: для отклонения нужна причина")
)

// StageStore описывает взаимодействие сервиса этапов с хранилищем.
type StageStore interface {
	DealStageRepository
	GetChecklistItem(ctx context.Context, stageID, itemID uuid.UUID) (*models.ChecklistItem, error)
	UpdateChecklistItem(ctx context.Context, item *models.ChecklistItem) error
	GetDocument(ctx context.Context, stageID, docID uuid.UUID) (*models.StageDocument, error)
	GetDocumentByTitle(ctx context.Context, stageID uuid.UUID, title string) (*models.StageDocument, error)
	CreateDocument(ctx context.Context, doc *models.StageDocument) error
	ReplaceDocument(ctx context.Context, doc *models.StageDocument) error
	UpdateDocumentStatus(ctx context.Context, docID uuid.UUID, status string) error
	CreateComment(ctx context.Context, comment *models.StageComment) error
	UpdateComment(ctx context.Context, commentID, authorID uuid.UUID, content string) error
	GetApproval(ctx context.Context, stageID, approvalID uuid.UUID) (*models.StageApproval, error)
	CreateApproval(ctx context.Context, approval *models.StageApproval) error
	UpdateApproval(ctx context.Context, approval *models.StageApproval) error
}

// StageDealStore описывает операции со сделками, нужные сервису этапов.
type StageDealStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Deal, error)
	UpdateOverallProgress(ctx context.Context, id uuid.UUID, progress int) error
	AppendActivity(ctx context.Context, entry *models.ActivityEntry) error
}

// MediaDirectory описывает доступ к загруженным файлам.
type MediaDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.MediaFile, error)
}

// StageService содержит бизнес-логику работы внутри этапа сделки.
type StageService struct {
	store         StageStore
	deals         StageDealStore
	media         MediaDirectory
	notifications NotificationCreator
	hub           WSNotifier
}

// NewStageService создаёт сервис этапов.
func NewStageService(store StageStore, deals StageDealStore, media MediaDirectory, notifications NotificationCreator) *StageService {
	return &StageService{
		store:         store,
		deals:         deals,
		media:         media,
		notifications: notifications,
	}
}

// SetHub подключает WebSocket hub после инициализации.
func (s *StageService) SetHub(hub WSNotifier) {
	s.hub = hub
}

// GetStage возвращает этап сделки со всеми вложенными данными.
func (s *StageService) GetStage(ctx context.Context, dealID, userID uuid.UUID, stageKey string) (*models.StageData, error) {
	if _, _, err := s.authorize(ctx, dealID, userID); err != nil {
		return nil, err
	}

	stage, err := s.store.GetByDealAndStage(ctx, dealID, stageKey)
	if err != nil {
		return nil, err
	}
	return s.loadCollections(ctx, stage)
}

// ChecklistToggleCommand описывает отметку или снятие отметки задачи.
type ChecklistToggleCommand struct {
	DealID    uuid.UUID
	Stage     string
	ItemID    uuid.UUID
	UserID    uuid.UUID
	Completed bool
}

// ToggleChecklistItem отмечает задачу выполненной или снимает отметку.
// Повторная установка того же значения — не ошибка и ничего не меняет.
// Поля completed_by и completed_at выставляются и очищаются вместе.
func (s *StageService) ToggleChecklistItem(ctx context.Context, cmd ChecklistToggleCommand) (*models.ChecklistItem, error) {
	deal, role, err := s.authorize(ctx, cmd.DealID, cmd.UserID)
	if err != nil {
		return nil, err
	}

	stage, err := s.mutableStage(ctx, cmd.DealID, cmd.Stage)
	if err != nil {
		return nil, err
	}

	item, err := s.store.GetChecklistItem(ctx, stage.ID, cmd.ItemID)
	if err != nil {
		return nil, err
	}

	if !workflow.CanUserCompleteTask(item, role) {
		return nil, ErrTaskNotAllowed
	}

	if item.Completed == cmd.Completed {
		return item, nil
	}

	if cmd.Completed {
		now := time.Now()
		item.Completed = true
		item.CompletedBy = &cmd.UserID
		item.CompletedAt = &now
	} else {
		item.Completed = false
		item.CompletedBy = nil
		item.CompletedAt = nil
	}

	if err := s.store.UpdateChecklistItem(ctx, item); err != nil {
		return nil, err
	}

	if err := s.refreshStageProgress(ctx, stage); err != nil {
		return nil, err
	}
	if err := s.refreshDealProgress(ctx, deal); err != nil {
		return nil, err
	}

	action := "task-completed"
	if !cmd.Completed {
		action = "task-reopened"
	}
	s.logActivity(ctx, deal, &cmd.UserID, stage.Stage, action, &item.Title)
	s.notifyOther(ctx, deal, cmd.UserID, "stage.checklist_updated", map[string]interface{}{
		"deal_id": deal.ID,
		"stage":   stage.Stage,
		"item_id": item.ID,
	})

	return item, nil
}

// DocumentUploadCommand описывает загрузку документа этапа.
type DocumentUploadCommand struct {
	DealID               uuid.UUID
	Stage                string
	UserID               uuid.UUID
	MediaID              uuid.UUID
	Title                string
	Category             string
	ConfidentialityLevel string
}

// UploadDocument прикрепляет документ к этапу. Повторная загрузка под тем
// же названием перезаписывает документ, увеличивает версию и сбрасывает
// статус на черновик; история версий не хранится.
func (s *StageService) UploadDocument(ctx context.Context, cmd DocumentUploadCommand) (*models.StageDocument, error) {
	deal, _, err := s.authorize(ctx, cmd.DealID, cmd.UserID)
	if err != nil {
		return nil, err
	}

	if err := validation.ValidateDocumentTitle(cmd.Title); err != nil {
		return nil, fmt.Errorf("stage service: %w", err)
	}
	level := cmd.ConfidentialityLevel
	if level == "" {
		level = models.ConfidentialityPrivate
	}
	if _, ok := models.ValidConfidentialityLevels[level]; !ok {
		return nil, fmt.Errorf("stage service: недопустимый уровень конфиденциальности %q", cmd.ConfidentialityLevel)
	}

	stage, err := s.mutableStage(ctx, cmd.DealID, cmd.Stage)
	if err != nil {
		return nil, err
	}

	media, err := s.media.GetByID(ctx, cmd.MediaID)
	if err != nil {
		return nil, err
	}

	existing, err := s.store.GetDocumentByTitle(ctx, stage.ID, cmd.Title)
	switch {
	case err == nil:
		existing.MediaID = cmd.MediaID
		existing.Category = cmd.Category
		existing.Version++
		existing.Status = models.DocumentStatusDraft
		existing.ConfidentialityLevel = level
		existing.FileSize = media.FileSize
		existing.UploadedBy = cmd.UserID
		if err := s.store.ReplaceDocument(ctx, existing); err != nil {
			return nil, err
		}
		s.logActivity(ctx, deal, &cmd.UserID, stage.Stage, "document-replaced", &existing.Title)
		return existing, nil
	case errors.Is(err, repository.ErrDocumentNotFound):
	default:
		return nil, err
	}

	doc := &models.StageDocument{
		StageID:              stage.ID,
		MediaID:              cmd.MediaID,
		Title:                cmd.Title,
		Category:             cmd.Category,
		Version:              1,
		Status:               models.DocumentStatusDraft,
		ConfidentialityLevel: level,
		FileSize:             media.FileSize,
		UploadedBy:           cmd.UserID,
	}
	if err := s.store.CreateDocument(ctx, doc); err != nil {
		return nil, err
	}

	s.logActivity(ctx, deal, &cmd.UserID, stage.Stage, "document-uploaded", &doc.Title)
	s.notifyOther(ctx, deal, cmd.UserID, "stage.document_uploaded", map[string]interface{}{
		"deal_id":  deal.ID,
		"stage":    stage.Stage,
		"document": doc.Title,
	})

	return doc, nil
}

// UpdateDocumentStatus меняет статус согласования документа.
func (s *StageService) UpdateDocumentStatus(ctx context.Context, dealID uuid.UUID, stageKey string, docID, userID uuid.UUID, status string) (*models.StageDocument, error) {
	deal, _, err := s.authorize(ctx, dealID, userID)
	if err != nil {
		return nil, err
	}
	if _, ok := models.ValidDocumentStatuses[status]; !ok {
		return nil, fmt.Errorf("stage service: недопустимый статус документа %q", status)
	}

	stage, err := s.store.GetByDealAndStage(ctx, dealID, stageKey)
	if err != nil {
		return nil, err
	}

	doc, err := s.store.GetDocument(ctx, stage.ID, docID)
	if err != nil {
		return nil, err
	}

	if err := s.store.UpdateDocumentStatus(ctx, docID, status); err != nil {
		return nil, err
	}
	doc.Status = status

	s.logActivity(ctx, deal, &userID, stage.Stage, "document-"+status, &doc.Title)

	return doc, nil
}

// CommentAddCommand описывает добавление комментария к этапу.
type CommentAddCommand struct {
	DealID    uuid.UUID
	Stage     string
	UserID    uuid.UUID
	Content   string
	IsPrivate bool
}

// AddComment добавляет комментарий к этапу. Роль автора фиксируется в
// момент создания. Приватный комментарий не виден другой стороне.
func (s *StageService) AddComment(ctx context.Context, cmd CommentAddCommand) (*models.StageComment, error) {
	deal, role, err := s.authorize(ctx, cmd.DealID, cmd.UserID)
	if err != nil {
		return nil, err
	}

	if err := validation.ValidateCommentContent(cmd.Content); err != nil {
		return nil, fmt.Errorf("stage service: %w", err)
	}

	stage, err := s.store.GetByDealAndStage(ctx, cmd.DealID, cmd.Stage)
	if err != nil {
		return nil, err
	}

	comment := &models.StageComment{
		StageID:    stage.ID,
		AuthorID:   cmd.UserID,
		AuthorRole: role,
		Content:    cmd.Content,
		IsPrivate:  cmd.IsPrivate,
	}
	if err := s.store.CreateComment(ctx, comment); err != nil {
		return nil, err
	}

	if !cmd.IsPrivate {
		s.notifyOther(ctx, deal, cmd.UserID, "stage.comment_added", map[string]interface{}{
			"deal_id": deal.ID,
			"stage":   stage.Stage,
		})
	}

	return comment, nil
}

// EditComment обновляет текст собственного комментария.
func (s *StageService) EditComment(ctx context.Context, dealID uuid.UUID, stageKey string, commentID, userID uuid.UUID, content string) error {
	if _, _, err := s.authorize(ctx, dealID, userID); err != nil {
		return err
	}
	if err := validation.ValidateCommentContent(content); err != nil {
		return fmt.Errorf("stage service: %w", err)
	}
	return s.store.UpdateComment(ctx, commentID, userID, content)
}

// CreateApproval добавляет запрос на согласование этапа.
func (s *StageService) CreateApproval(ctx context.Context, dealID uuid.UUID, stageKey string, userID uuid.UUID, title, requiredFrom string) (*models.StageApproval, error) {
	deal, _, err := s.authorize(ctx, dealID, userID)
	if err != nil {
		return nil, err
	}

	if err := validation.ValidateNonEmpty("title", title); err != nil {
		return nil, fmt.Errorf("stage service: %w", err)
	}
	if _, ok := models.ValidTaskOwners[requiredFrom]; !ok {
		return nil, fmt.Errorf("stage service: недопустимая сторона согласования %q", requiredFrom)
	}

	stage, err := s.mutableStage(ctx, dealID, stageKey)
	if err != nil {
		return nil, err
	}

	approval := &models.StageApproval{
		StageID:      stage.ID,
		Title:        title,
		RequiredFrom: requiredFrom,
		Status:       models.ApprovalStatusPending,
	}
	if err := s.store.CreateApproval(ctx, approval); err != nil {
		return nil, err
	}

	s.logActivity(ctx, deal, &userID, stage.Stage, "approval-requested", &title)

	return approval, nil
}

// ApprovalActionCommand описывает решение по согласованию.
type ApprovalActionCommand struct {
	DealID     uuid.UUID
	Stage      string
	ApprovalID uuid.UUID
	UserID     uuid.UUID
	Status     string
	Reason     *string
}

// ActOnApproval фиксирует решение по согласованию. Решение принимается
// только по ожидающему согласованию, отклонение требует причины.
func (s *StageService) ActOnApproval(ctx context.Context, cmd ApprovalActionCommand) (*models.StageApproval, error) {
	deal, role, err := s.authorize(ctx, cmd.DealID, cmd.UserID)
	if err != nil {
		return nil, err
	}

	switch cmd.Status {
	case models.ApprovalStatusApproved, models.ApprovalStatusRejected, models.ApprovalStatusRequiresChanges:
	default:
		return nil, fmt.Errorf("stage service: недопустимое решение %q", cmd.Status)
	}

	stage, err := s.store.GetByDealAndStage(ctx, cmd.DealID, cmd.Stage)
	if err != nil {
		return nil, err
	}

	approval, err := s.store.GetApproval(ctx, stage.ID, cmd.ApprovalID)
	if err != nil {
		return nil, err
	}

	if approval.Status != models.ApprovalStatusPending {
		return nil, ErrApprovalResolved
	}
	if approval.RequiredFrom != models.OwnerBoth && approval.RequiredFrom != role {
		return nil, ErrApprovalNotAllowed
	}

	switch cmd.Status {
	case models.ApprovalStatusApproved:
		now := time.Now()
		approval.Status = models.ApprovalStatusApproved
		approval.ApprovedBy = &cmd.UserID
		approval.ApprovedAt = &now
		approval.RejectionReason = nil
	case models.ApprovalStatusRejected:
		if cmd.Reason == nil {
			return nil, ErrRejectionReasonRequired
		}
		if err := validation.ValidateRejectionReason(*cmd.Reason); err != nil {
			return nil, fmt.Errorf("stage service: %w", err)
		}
		approval.Status = models.ApprovalStatusRejected
		approval.ApprovedBy = nil
		approval.ApprovedAt = nil
		approval.RejectionReason = cmd.Reason
	case models.ApprovalStatusRequiresChanges:
		approval.Status = models.ApprovalStatusRequiresChanges
		approval.ApprovedBy = nil
		approval.ApprovedAt = nil
		approval.RejectionReason = cmd.Reason
	}

	if err := s.store.UpdateApproval(ctx, approval); err != nil {
		return nil, err
	}

	s.logActivity(ctx, deal, &cmd.UserID, stage.Stage, "approval-"+cmd.Status, &approval.Title)
	s.notifyOther(ctx, deal, cmd.UserID, "stage.approval_resolved", map[string]interface{}{
		"deal_id":  deal.ID,
		"stage":    stage.Stage,
		"approval": approval.Title,
		"status":   cmd.Status,
	})

	return approval, nil
}

// authorize проверяет, что пользователь — сторона сделки, и возвращает роль.
func (s *StageService) authorize(ctx context.Context, dealID, userID uuid.UUID) (*models.Deal, string, error) {
	deal, err := s.deals.GetByID(ctx, dealID)
	if err != nil {
		return nil, "", err
	}
	role, err := PartyRole(deal, userID)
	if err != nil {
		return nil, "", err
	}
	return deal, role, nil
}

// mutableStage возвращает этап, допускающий изменения. Закрытый этап
// неизменяем; ожидающий этап при первом действии берётся в работу.
func (s *StageService) mutableStage(ctx context.Context, dealID uuid.UUID, stageKey string) (*models.StageData, error) {
	stage, err := s.store.GetByDealAndStage(ctx, dealID, stageKey)
	if err != nil {
		return nil, err
	}
	if stage.Status == models.StageStatusCompleted {
		return nil, ErrStageCompleted
	}
	if stage.Status == models.StageStatusPending {
		now := time.Now()
		stage.Status = models.StageStatusInProgress
		stage.StartedAt = &now
		if err := s.store.UpdateStage(ctx, stage); err != nil {
			return nil, err
		}
	}
	return stage, nil
}

// refreshStageProgress пересчитывает прогресс этапа по чек-листу.
func (s *StageService) refreshStageProgress(ctx context.Context, stage *models.StageData) error {
	checklist, err := s.store.ListChecklist(ctx, stage.ID)
	if err != nil {
		return err
	}
	stage.Checklist = checklist
	stage.Progress = workflow.StageCompletionProgress(stage)
	return s.store.UpdateStage(ctx, stage)
}

// refreshDealProgress пересчитывает сводный прогресс сделки.
func (s *StageService) refreshDealProgress(ctx context.Context, deal *models.Deal) error {
	stages, err := s.store.ListByDeal(ctx, deal.ID)
	if err != nil {
		return err
	}
	progress := workflow.OverallProgress(stages)
	deal.OverallProgress = progress
	return s.deals.UpdateOverallProgress(ctx, deal.ID, progress)
}

// loadCollections догружает вложенные коллекции этапа.
func (s *StageService) loadCollections(ctx context.Context, stage *models.StageData) (*models.StageData, error) {
	var err error
	if stage.Checklist, err = s.store.ListChecklist(ctx, stage.ID); err != nil {
		return nil, err
	}
	if stage.Documents, err = s.store.ListDocuments(ctx, stage.ID); err != nil {
		return nil, err
	}
	if stage.Comments, err = s.store.ListComments(ctx, stage.ID); err != nil {
		return nil, err
	}
	if stage.Approvals, err = s.store.ListApprovals(ctx, stage.ID); err != nil {
		return nil, err
	}
	return stage, nil
}

func (s *StageService) logActivity(ctx context.Context, deal *models.Deal, actorID *uuid.UUID, stageKey, action string, details *string) {
	entry := &models.ActivityEntry{
		DealID:  deal.ID,
		ActorID: actorID,
		Stage:   &stageKey,
		Action:  action,
		Details: details,
	}
	if err := s.deals.AppendActivity(ctx, entry); err != nil && logger.Log != nil {
		logger.Log.WithFields(map[string]interface{}{
			"deal_id": deal.ID,
			"action":  action,
		}).Warnf("stage service: не удалось записать журнал: %v", err)
	}
}

func (s *StageService) notifyOther(ctx context.Context, deal *models.Deal, actorID uuid.UUID, event string, data interface{}) {
	target := deal.BuyerID
	if actorID == deal.BuyerID {
		target = deal.SellerID
	}
	if s.notifications != nil {
		if _, err := s.notifications.CreateNotification(ctx, target, event, data); err != nil && logger.Log != nil {
			logger.Log.Warnf("stage service: не удалось создать уведомление: %v", err)
		}
	}
	if s.hub != nil {
		if err := s.hub.BroadcastToUser(target, event, data); err != nil && logger.Log != nil {
			logger.Log.Warnf("stage service: не удалось отправить ws уведомление: %v", err)
		}
	}
}
