package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bizbridge/acquisition-backend/internal/logger"
	"github.com/bizbridge/acquisition-backend/internal/models"
	"github.com/bizbridge/acquisition-backend/internal/workflow"
)

// ErrNotDealParty возвращается, когда пользователь не является стороной сделки.
var ErrNotDealParty = errors.New("deal service: пользователь не является стороной сделки")

// ErrStageNotReady возвращается при попытке закрыть этап с невыполненными
// обязательными задачами или неразрешёнными согласованиями.
var ErrStageNotReady = errors.New("deal service: этап не готов к закрытию")

// DealRepository описывает взаимодействие сервиса с хранилищем сделок.
type DealRepository interface {
	Create(ctx context.Context, deal *models.Deal) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Deal, error)
	ListByUser(ctx context.Context, userID uuid.UUID, status string, limit, offset int) ([]models.Deal, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	UpdateCurrentStage(ctx context.Context, id uuid.UUID, stage string) error
	UpdateOverallProgress(ctx context.Context, id uuid.UUID, progress int) error
	UpdateTerms(ctx context.Context, deal *models.Deal) error
	AddTeamMember(ctx context.Context, member *models.TeamMember) error
	ListTeamMembers(ctx context.Context, dealID uuid.UUID) ([]models.TeamMember, error)
	AddKeyDate(ctx context.Context, keyDate *models.KeyDate) error
	ListKeyDates(ctx context.Context, dealID uuid.UUID) ([]models.KeyDate, error)
	AppendActivity(ctx context.Context, entry *models.ActivityEntry) error
	ListActivity(ctx context.Context, dealID uuid.UUID, limit, offset int) ([]models.ActivityEntry, error)
}

// DealStageRepository описывает операции с этапами, нужные сервису сделок.
type DealStageRepository interface {
	CreateStages(ctx context.Context, stages []models.StageData) error
	GetByDealAndStage(ctx context.Context, dealID uuid.UUID, stage string) (*models.StageData, error)
	ListByDeal(ctx context.Context, dealID uuid.UUID) ([]models.StageData, error)
	UpdateStage(ctx context.Context, stage *models.StageData) error
	ListChecklist(ctx context.Context, stageID uuid.UUID) ([]models.ChecklistItem, error)
	ListDocuments(ctx context.Context, stageID uuid.UUID) ([]models.StageDocument, error)
	ListComments(ctx context.Context, stageID uuid.UUID) ([]models.StageComment, error)
	ListApprovals(ctx context.Context, stageID uuid.UUID) ([]models.StageApproval, error)
}

// PartyDirectory описывает доступ к пользователям и профилям для снимков.
type PartyDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
}

// BusinessDirectory описывает доступ к объявлениям для снимков сделки.
type BusinessDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Business, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}

// DealConversationRepository создаёт переписку, привязанную к сделке.
type DealConversationRepository interface {
	Create(ctx context.Context, conv *models.Conversation) error
	GetByDeal(ctx context.Context, dealID uuid.UUID) (*models.Conversation, error)
}

// NotificationCreator описывает публикацию уведомлений из других сервисов.
type NotificationCreator interface {
	CreateNotification(ctx context.Context, userID uuid.UUID, event string, data interface{}) (*models.Notification, error)
}

// WSNotifier интерфейс для отправки WebSocket уведомлений.
type WSNotifier interface {
	BroadcastToUser(userID uuid.UUID, event string, data interface{}) error
}

// DealService содержит бизнес-логику конвейера сделок.
type DealService struct {
	repo          DealRepository
	stages        DealStageRepository
	parties       PartyDirectory
	businesses    BusinessDirectory
	conversations DealConversationRepository
	notifications NotificationCreator
	hub           WSNotifier
	createTimeout time.Duration
}

// NewDealService создаёт сервис сделок.
func NewDealService(
	repo DealRepository,
	stages DealStageRepository,
	parties PartyDirectory,
	businesses BusinessDirectory,
	conversations DealConversationRepository,
	notifications NotificationCreator,
	createTimeout time.Duration,
) *DealService {
	return &DealService{
		repo:          repo,
		stages:        stages,
		parties:       parties,
		businesses:    businesses,
		conversations: conversations,
		notifications: notifications,
		createTimeout: createTimeout,
	}
}

// SetHub подключает WebSocket hub после инициализации.
func (s *DealService) SetHub(hub WSNotifier) {
	s.hub = hub
}

// CreateFromMatch создаёт сделку из принятой заявки: фиксирует снимки
// сторон и бизнеса, засеивает все шесть этапов и открывает переписку.
// Операция ограничена по времени, чтобы клиент не завис в ожидании.
func (s *DealService) CreateFromMatch(ctx context.Context, match *models.Match) (*models.Deal, error) {
	if s.createTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.createTimeout)
		defer cancel()
	}

	buyerSnapshot, err := s.partySnapshot(ctx, match.BuyerID)
	if err != nil {
		return nil, err
	}
	sellerSnapshot, err := s.partySnapshot(ctx, match.SellerID)
	if err != nil {
		return nil, err
	}

	business, err := s.businesses.GetByID(ctx, match.BusinessID)
	if err != nil {
		return nil, err
	}

	deal := &models.Deal{
		MatchID:    match.ID,
		BusinessID: match.BusinessID,
		BuyerID:    match.BuyerID,
		SellerID:   match.SellerID,
		Buyer:      *buyerSnapshot,
		Seller:     *sellerSnapshot,
		Business: models.BusinessSnapshot{
			Name:          business.Name,
			Industry:      business.Industry,
			Location:      business.Location,
			AnnualRevenue: business.AnnualRevenue,
			Valuation:     business.Valuation,
		},
		CurrentStage:    models.StageNDA,
		OverallProgress: 0,
		Status:          models.DealStatusActive,
	}

	if err := s.repo.Create(ctx, deal); err != nil {
		return nil, err
	}

	// Первый этап сразу в работе, остальные пять ждут своей очереди.
	now := time.Now()
	stages := make([]models.StageData, 0, len(models.StageOrder))
	for i, stageKey := range models.StageOrder {
		status := models.StageStatusPending
		if i == 0 {
			status = models.StageStatusInProgress
		}
		stages = append(stages, *workflow.StageFromTemplate(deal.ID, stageKey, status, 0, now))
	}
	if err := s.stages.CreateStages(ctx, stages); err != nil {
		return nil, err
	}
	deal.Stages = stages

	if err := s.businesses.UpdateStatus(ctx, business.ID, models.BusinessStatusUnderOffer); err != nil {
		return nil, err
	}

	conv := &models.Conversation{
		DealID:   &deal.ID,
		BuyerID:  deal.BuyerID,
		SellerID: deal.SellerID,
	}
	if err := s.conversations.Create(ctx, conv); err != nil {
		return nil, err
	}

	s.logActivity(ctx, deal.ID, &match.SellerID, nil, "deal-created", nil)

	s.notifyParties(ctx, deal, "deal.created", map[string]interface{}{
		"deal_id":  deal.ID,
		"business": deal.Business.Name,
	})

	return deal, nil
}

// GetDeal возвращает сделку целиком: этапы со всеми вложенными данными,
// команда, контрольные даты и журнал действий.
func (s *DealService) GetDeal(ctx context.Context, dealID, userID uuid.UUID) (*models.Deal, error) {
	deal, err := s.repo.GetByID(ctx, dealID)
	if err != nil {
		return nil, err
	}
	if _, err := PartyRole(deal, userID); err != nil {
		return nil, err
	}

	stages, err := s.loadStages(ctx, dealID)
	if err != nil {
		return nil, err
	}
	deal.Stages = stages

	if deal.Team, err = s.repo.ListTeamMembers(ctx, dealID); err != nil {
		return nil, err
	}
	if deal.KeyDates, err = s.repo.ListKeyDates(ctx, dealID); err != nil {
		return nil, err
	}
	if deal.Activity, err = s.repo.ListActivity(ctx, dealID, 50, 0); err != nil {
		return nil, err
	}

	return deal, nil
}

// ListMyDeals возвращает сделки пользователя.
func (s *DealService) ListMyDeals(ctx context.Context, userID uuid.UUID, status string, limit, offset int) ([]models.Deal, error) {
	if status != "" {
		if _, ok := models.ValidDealStatuses[status]; !ok {
			return nil, fmt.Errorf("deal service: недопустимый статус %q", status)
		}
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListByUser(ctx, userID, status, limit, offset)
}

// UpdateStatus приостанавливает, возобновляет или отменяет сделку.
// Завершение происходит только через закрытие последнего этапа.
func (s *DealService) UpdateStatus(ctx context.Context, dealID, userID uuid.UUID, status string) (*models.Deal, error) {
	if status != models.DealStatusActive && status != models.DealStatusOnHold && status != models.DealStatusCancelled {
		return nil, fmt.Errorf("deal service: недопустимый статус %q", status)
	}

	deal, err := s.repo.GetByID(ctx, dealID)
	if err != nil {
		return nil, err
	}
	role, err := PartyRole(deal, userID)
	if err != nil {
		return nil, err
	}

	switch deal.Status {
	case models.DealStatusCompleted:
		return nil, fmt.Errorf("deal service: завершённую сделку нельзя изменить")
	case models.DealStatusCancelled:
		return nil, fmt.Errorf("deal service: отменённую сделку нельзя изменить")
	}

	if err := s.repo.UpdateStatus(ctx, dealID, status); err != nil {
		return nil, err
	}
	deal.Status = status

	details := fmt.Sprintf("статус изменён стороной %s", role)
	s.logActivity(ctx, dealID, &userID, nil, "status-"+status, &details)

	s.notifyOtherParty(ctx, deal, userID, "deal.status_changed", map[string]interface{}{
		"deal_id": deal.ID,
		"status":  status,
	})

	return deal, nil
}

// UpdateTermsInput содержит редактируемые условия сделки.
type UpdateTermsInput struct {
	DealValue         *float64
	DealStructure     *string
	FinancingType     []string
	TargetClosingDate *time.Time
}

// UpdateTerms обновляет коммерческие условия сделки.
func (s *DealService) UpdateTerms(ctx context.Context, dealID, userID uuid.UUID, in UpdateTermsInput) (*models.Deal, error) {
	deal, err := s.repo.GetByID(ctx, dealID)
	if err != nil {
		return nil, err
	}
	if _, err := PartyRole(deal, userID); err != nil {
		return nil, err
	}

	if in.DealValue != nil && *in.DealValue < 0 {
		return nil, fmt.Errorf("deal service: сумма сделки не может быть отрицательной")
	}

	deal.DealValue = in.DealValue
	deal.DealStructure = in.DealStructure
	deal.FinancingType = in.FinancingType
	deal.TargetClosingDate = in.TargetClosingDate

	if err := s.repo.UpdateTerms(ctx, deal); err != nil {
		return nil, err
	}

	s.logActivity(ctx, dealID, &userID, nil, "terms-updated", nil)

	return deal, nil
}

// AdvanceStage закрывает текущий этап и открывает следующий. Последний
// закрытый этап завершает сделку и переводит бизнес в статус проданного.
func (s *DealService) AdvanceStage(ctx context.Context, dealID, userID uuid.UUID) (*models.Deal, error) {
	deal, err := s.repo.GetByID(ctx, dealID)
	if err != nil {
		return nil, err
	}
	if _, err := PartyRole(deal, userID); err != nil {
		return nil, err
	}
	if deal.Status != models.DealStatusActive {
		return nil, fmt.Errorf("deal service: этапы продвигаются только в активной сделке")
	}

	current, err := s.loadStageAggregate(ctx, dealID, deal.CurrentStage)
	if err != nil {
		return nil, err
	}

	if !workflow.CanAdvanceStage(current) {
		return nil, ErrStageNotReady
	}

	now := time.Now()
	current.Status = models.StageStatusCompleted
	current.Progress = 100
	current.CompletedAt = &now
	if current.StartedAt == nil {
		current.StartedAt = &now
	}
	if err := s.stages.UpdateStage(ctx, current); err != nil {
		return nil, err
	}

	next := workflow.NextStage(deal.CurrentStage)
	if next == "" {
		// Закрыт последний этап — сделка состоялась.
		if err := s.repo.UpdateStatus(ctx, dealID, models.DealStatusCompleted); err != nil {
			return nil, err
		}
		if err := s.businesses.UpdateStatus(ctx, deal.BusinessID, models.BusinessStatusSold); err != nil {
			logger.Log.WithField("deal_id", dealID).Warnf("deal service: не удалось обновить статус бизнеса: %v", err)
		}
		deal.Status = models.DealStatusCompleted
	} else {
		nextStage, err := s.stages.GetByDealAndStage(ctx, dealID, next)
		if err != nil {
			return nil, err
		}
		nextStage.Status = models.StageStatusInProgress
		nextStage.StartedAt = &now
		if err := s.stages.UpdateStage(ctx, nextStage); err != nil {
			return nil, err
		}
		if err := s.repo.UpdateCurrentStage(ctx, dealID, next); err != nil {
			return nil, err
		}
		deal.CurrentStage = next
	}

	if err := s.RecomputeProgress(ctx, deal); err != nil {
		return nil, err
	}

	stageKey := current.Stage
	s.logActivity(ctx, dealID, &userID, &stageKey, "stage-completed", nil)

	s.notifyOtherParty(ctx, deal, userID, "deal.stage_advanced", map[string]interface{}{
		"deal_id":         deal.ID,
		"completed_stage": current.Stage,
		"current_stage":   deal.CurrentStage,
	})

	return deal, nil
}

// RecomputeProgress пересчитывает и сохраняет сводный прогресс сделки.
func (s *DealService) RecomputeProgress(ctx context.Context, deal *models.Deal) error {
	stages, err := s.stages.ListByDeal(ctx, deal.ID)
	if err != nil {
		return err
	}
	progress := workflow.OverallProgress(stages)
	if err := s.repo.UpdateOverallProgress(ctx, deal.ID, progress); err != nil {
		return err
	}
	deal.OverallProgress = progress
	return nil
}

// AddTeamMember добавляет участника команды сделки.
func (s *DealService) AddTeamMember(ctx context.Context, dealID, userID uuid.UUID, member *models.TeamMember) (*models.TeamMember, error) {
	deal, err := s.repo.GetByID(ctx, dealID)
	if err != nil {
		return nil, err
	}
	role, err := PartyRole(deal, userID)
	if err != nil {
		return nil, err
	}

	if member.Name == "" || member.Role == "" {
		return nil, fmt.Errorf("deal service: имя и роль участника обязательны")
	}

	member.DealID = dealID
	// Участник всегда числится за пригласившей его стороной.
	member.Side = role
	if err := s.repo.AddTeamMember(ctx, member); err != nil {
		return nil, err
	}

	details := member.Name
	s.logActivity(ctx, dealID, &userID, nil, "team-member-added", &details)

	return member, nil
}

// AddKeyDate добавляет контрольную дату сделки.
func (s *DealService) AddKeyDate(ctx context.Context, dealID, userID uuid.UUID, keyDate *models.KeyDate) (*models.KeyDate, error) {
	deal, err := s.repo.GetByID(ctx, dealID)
	if err != nil {
		return nil, err
	}
	if _, err := PartyRole(deal, userID); err != nil {
		return nil, err
	}

	if keyDate.Title == "" {
		return nil, fmt.Errorf("deal service: название контрольной даты обязательно")
	}

	keyDate.DealID = dealID
	if err := s.repo.AddKeyDate(ctx, keyDate); err != nil {
		return nil, err
	}

	return keyDate, nil
}

// ListActivity возвращает журнал действий сделки.
func (s *DealService) ListActivity(ctx context.Context, dealID, userID uuid.UUID, limit, offset int) ([]models.ActivityEntry, error) {
	deal, err := s.repo.GetByID(ctx, dealID)
	if err != nil {
		return nil, err
	}
	if _, err := PartyRole(deal, userID); err != nil {
		return nil, err
	}

	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListActivity(ctx, dealID, limit, offset)
}

// partySnapshot собирает снимок стороны сделки из пользователя и профиля.
func (s *DealService) partySnapshot(ctx context.Context, userID uuid.UUID) (*models.PartySnapshot, error) {
	user, err := s.parties.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	snapshot := &models.PartySnapshot{
		Name:  user.Username,
		Email: user.Email,
	}

	// Снимок обогащается профилем, но живёт и без него.
	if profile, err := s.parties.GetProfile(ctx, userID); err == nil {
		if profile.DisplayName != "" {
			snapshot.Name = profile.DisplayName
		}
		if profile.CompanyName != nil {
			snapshot.Company = *profile.CompanyName
		}
		snapshot.PhotoID = profile.PhotoID
	}

	return snapshot, nil
}

// PartyRole возвращает роль пользователя в сделке.
func PartyRole(deal *models.Deal, userID uuid.UUID) (string, error) {
	switch userID {
	case deal.BuyerID:
		return models.RoleBuyer, nil
	case deal.SellerID:
		return models.RoleSeller, nil
	default:
		return "", ErrNotDealParty
	}
}

// loadStages загружает этапы сделки со всеми вложенными коллекциями
// в каноническом порядке пайплайна.
func (s *DealService) loadStages(ctx context.Context, dealID uuid.UUID) ([]models.StageData, error) {
	stages, err := s.stages.ListByDeal(ctx, dealID)
	if err != nil {
		return nil, err
	}

	byKey := make(map[string]*models.StageData, len(stages))
	for i := range stages {
		byKey[stages[i].Stage] = &stages[i]
	}

	ordered := make([]models.StageData, 0, len(models.StageOrder))
	for _, key := range models.StageOrder {
		stage, ok := byKey[key]
		if !ok {
			continue
		}
		if stage.Checklist, err = s.stages.ListChecklist(ctx, stage.ID); err != nil {
			return nil, err
		}
		if stage.Documents, err = s.stages.ListDocuments(ctx, stage.ID); err != nil {
			return nil, err
		}
		if stage.Comments, err = s.stages.ListComments(ctx, stage.ID); err != nil {
			return nil, err
		}
		if stage.Approvals, err = s.stages.ListApprovals(ctx, stage.ID); err != nil {
			return nil, err
		}
		ordered = append(ordered, *stage)
	}

	return ordered, nil
}

// loadStageAggregate загружает один этап со всеми вложенными коллекциями.
func (s *DealService) loadStageAggregate(ctx context.Context, dealID uuid.UUID, stageKey string) (*models.StageData, error) {
	stage, err := s.stages.GetByDealAndStage(ctx, dealID, stageKey)
	if err != nil {
		return nil, err
	}
	if stage.Checklist, err = s.stages.ListChecklist(ctx, stage.ID); err != nil {
		return nil, err
	}
	if stage.Documents, err = s.stages.ListDocuments(ctx, stage.ID); err != nil {
		return nil, err
	}
	if stage.Comments, err = s.stages.ListComments(ctx, stage.ID); err != nil {
		return nil, err
	}
	if stage.Approvals, err = s.stages.ListApprovals(ctx, stage.ID); err != nil {
		return nil, err
	}
	return stage, nil
}

// logActivity пишет запись в журнал, не прерывая основную операцию.
func (s *DealService) logActivity(ctx context.Context, dealID uuid.UUID, actorID *uuid.UUID, stage *string, action string, details *string) {
	entry := &models.ActivityEntry{
		DealID:  dealID,
		ActorID: actorID,
		Stage:   stage,
		Action:  action,
		Details: details,
	}
	if err := s.repo.AppendActivity(ctx, entry); err != nil {
		if logger.Log != nil {
			logger.Log.WithFields(map[string]interface{}{
				"deal_id": dealID,
				"action":  action,
			}).Warnf("deal service: не удалось записать журнал: %v", err)
		}
	}
}

// notifyParties отправляет уведомление обеим сторонам сделки.
func (s *DealService) notifyParties(ctx context.Context, deal *models.Deal, event string, data interface{}) {
	for _, userID := range []uuid.UUID{deal.BuyerID, deal.SellerID} {
		s.notify(ctx, userID, event, data)
	}
}

// notifyOtherParty отправляет уведомление противоположной стороне.
func (s *DealService) notifyOtherParty(ctx context.Context, deal *models.Deal, actorID uuid.UUID, event string, data interface{}) {
	target := deal.BuyerID
	if actorID == deal.BuyerID {
		target = deal.SellerID
	}
	s.notify(ctx, target, event, data)
}

func (s *DealService) notify(ctx context.Context, userID uuid.UUID, event string, data interface{}) {
	if s.notifications != nil {
		if _, err := s.notifications.CreateNotification(ctx, userID, event, data); err != nil && logger.Log != nil {
			logger.Log.Warnf("deal service: не удалось создать уведомление: %v", err)
		}
	}
	if s.hub != nil {
		if err := s.hub.BroadcastToUser(userID, event, data); err != nil && logger.Log != nil {
			logger.Log.Warnf("deal service: не удалось отправить ws уведомление: %v", err)
		}
	}
}
