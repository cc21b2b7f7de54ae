package workflow

import (
	"time"

	"github.com/google/uuid"

	"github.com/bizbridge/acquisition-backend/internal/models"
)

// ChecklistTemplate описывает задачу этапа без идентификатора и
// состояния выполнения. Идентификаторы выдаются при создании сделки.
type ChecklistTemplate struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required"`
	Owner       string `json:"owner"`
	Priority    string `json:"priority"`
	Category    string `json:"category"`
}

// Milestone описывает веху этапа с отступом в днях от начала сделки.
type Milestone struct {
	Title        string `json:"title"`
	DaysFromStart int   `json:"days_from_start"`
}

// StageTemplate описывает неизменяемую заготовку этапа сделки.
type StageTemplate struct {
	Stage             string              `json:"stage"`
	Name              string              `json:"name"`
	Description       string              `json:"description"`
	EstimatedDays     int                 `json:"estimated_days"`
	DefaultOwner      string              `json:"default_owner"`
	Checklist         []ChecklistTemplate `json:"checklist"`
	RequiredDocuments []string            `json:"required_documents"`
	Milestones        []Milestone         `json:"milestones"`
}

// StageTemplates — реестр заготовок всех шести этапов пайплайна.
// Используется только при создании сделки, не изменяется в рантайме.
var StageTemplates = map[string]StageTemplate{
	models.StageNDA: {
		Stage:         models.StageNDA,
		Name:          "Соглашение о неразглашении",
		Description:   "Стороны подписывают NDA до раскрытия конфиденциальных данных о бизнесе.",
		EstimatedDays: 5,
		DefaultOwner:  models.OwnerBoth,
		Checklist: []ChecklistTemplate{
			{Title: "Подготовить проект NDA", Required: true, Owner: models.OwnerSeller, Priority: models.PriorityHigh, Category: "legal"},
			{Title: "Согласовать условия NDA", Required: true, Owner: models.OwnerBoth, Priority: models.PriorityHigh, Category: "legal"},
			{Title: "Подписать NDA обеими сторонами", Required: true, Owner: models.OwnerBoth, Priority: models.PriorityHigh, Category: "legal"},
			{Title: "Обменяться контактами команд", Required: false, Owner: models.OwnerBoth, Priority: models.PriorityLow, Category: "coordination"},
		},
		RequiredDocuments: []string{"Подписанное NDA"},
		Milestones: []Milestone{
			{Title: "NDA подписано", DaysFromStart: 5},
		},
	},
	models.StageDataRoom: {
		Stage:         models.StageDataRoom,
		Name:          "Комната данных",
		Description:   "Продавец открывает покупателю доступ к финансовой и операционной отчётности.",
		EstimatedDays: 14,
		DefaultOwner:  models.OwnerSeller,
		Checklist: []ChecklistTemplate{
			{Title: "Загрузить финансовую отчётность за 3 года", Required: true, Owner: models.OwnerSeller, Priority: models.PriorityHigh, Category: "financial"},
			{Title: "Загрузить налоговые декларации", Required: true, Owner: models.OwnerSeller, Priority: models.PriorityHigh, Category: "financial"},
			{Title: "Загрузить ключевые договоры с клиентами", Required: true, Owner: models.OwnerSeller, Priority: models.PriorityMedium, Category: "legal"},
			{Title: "Изучить предоставленные материалы", Required: true, Owner: models.OwnerBuyer, Priority: models.PriorityHigh, Category: "review"},
			{Title: "Сформировать список уточняющих вопросов", Required: false, Owner: models.OwnerBuyer, Priority: models.PriorityMedium, Category: "review"},
		},
		RequiredDocuments: []string{"Финансовая отчётность", "Налоговые декларации", "Реестр договоров"},
		Milestones: []Milestone{
			{Title: "Комната данных открыта", DaysFromStart: 7},
			{Title: "Материалы изучены покупателем", DaysFromStart: 19},
		},
	},
	models.StageOffer: {
		Stage:         models.StageOffer,
		Name:          "Предложение о покупке",
		Description:   "Покупатель формирует и направляет индикативное предложение с ценой и структурой сделки.",
		EstimatedDays: 10,
		DefaultOwner:  models.OwnerBuyer,
		Checklist: []ChecklistTemplate{
			{Title: "Подготовить индикативное предложение", Required: true, Owner: models.OwnerBuyer, Priority: models.PriorityHigh, Category: "commercial"},
			{Title: "Определить структуру финансирования", Required: true, Owner: models.OwnerBuyer, Priority: models.PriorityMedium, Category: "financial"},
			{Title: "Рассмотреть предложение", Required: true, Owner: models.OwnerSeller, Priority: models.PriorityHigh, Category: "commercial"},
			{Title: "Согласовать ценовой диапазон", Required: true, Owner: models.OwnerBoth, Priority: models.PriorityHigh, Category: "commercial"},
		},
		RequiredDocuments: []string{"Индикативное предложение"},
		Milestones: []Milestone{
			{Title: "Предложение направлено", DaysFromStart: 24},
			{Title: "Ценовой диапазон согласован", DaysFromStart: 29},
		},
	},
	models.StageDueDiligence: {
		Stage:         models.StageDueDiligence,
		Name:          "Due Diligence",
		Description:   "Комплексная проверка бизнеса: финансы, право, операционная деятельность, персонал.",
		EstimatedDays: 30,
		DefaultOwner:  models.OwnerBuyer,
		Checklist: []ChecklistTemplate{
			{Title: "Провести финансовый аудит", Required: true, Owner: models.OwnerBuyer, Priority: models.PriorityHigh, Category: "financial"},
			{Title: "Проверить юридическую чистоту активов", Required: true, Owner: models.OwnerBuyer, Priority: models.PriorityHigh, Category: "legal"},
			{Title: "Проверить обязательства и судебные споры", Required: true, Owner: models.OwnerBuyer, Priority: models.PriorityHigh, Category: "legal"},
			{Title: "Предоставить ответы на запросы покупателя", Required: true, Owner: models.OwnerSeller, Priority: models.PriorityMedium, Category: "coordination"},
			{Title: "Оценить ключевой персонал", Required: false, Owner: models.OwnerBuyer, Priority: models.PriorityMedium, Category: "operations"},
			{Title: "Подготовить отчёт о проверке", Required: true, Owner: models.OwnerBuyer, Priority: models.PriorityHigh, Category: "review"},
		},
		RequiredDocuments: []string{"Отчёт финансового аудита", "Юридическое заключение"},
		Milestones: []Milestone{
			{Title: "Проверка начата", DaysFromStart: 30},
			{Title: "Отчёт о проверке готов", DaysFromStart: 59},
		},
	},
	models.StageLOI: {
		Stage:         models.StageLOI,
		Name:          "Письмо о намерениях",
		Description:   "Стороны фиксируют итоговые условия сделки в письме о намерениях.",
		EstimatedDays: 7,
		DefaultOwner:  models.OwnerBoth,
		Checklist: []ChecklistTemplate{
			{Title: "Подготовить проект LOI", Required: true, Owner: models.OwnerBuyer, Priority: models.PriorityHigh, Category: "legal"},
			{Title: "Согласовать финальную цену и условия", Required: true, Owner: models.OwnerBoth, Priority: models.PriorityHigh, Category: "commercial"},
			{Title: "Подписать LOI", Required: true, Owner: models.OwnerBoth, Priority: models.PriorityHigh, Category: "legal"},
		},
		RequiredDocuments: []string{"Подписанное LOI"},
		Milestones: []Milestone{
			{Title: "LOI подписано", DaysFromStart: 66},
		},
	},
	models.StageClosing: {
		Stage:         models.StageClosing,
		Name:          "Закрытие сделки",
		Description:   "Подписание договора купли-продажи, расчёты и передача бизнеса.",
		EstimatedDays: 14,
		DefaultOwner:  models.OwnerBoth,
		Checklist: []ChecklistTemplate{
			{Title: "Подготовить договор купли-продажи", Required: true, Owner: models.OwnerBuyer, Priority: models.PriorityHigh, Category: "legal"},
			{Title: "Согласовать план передачи дел", Required: true, Owner: models.OwnerBoth, Priority: models.PriorityMedium, Category: "operations"},
			{Title: "Подписать договор купли-продажи", Required: true, Owner: models.OwnerBoth, Priority: models.PriorityHigh, Category: "legal"},
			{Title: "Провести расчёты по сделке", Required: true, Owner: models.OwnerBuyer, Priority: models.PriorityHigh, Category: "financial"},
			{Title: "Передать доступы и активы", Required: true, Owner: models.OwnerSeller, Priority: models.PriorityHigh, Category: "operations"},
		},
		RequiredDocuments: []string{"Договор купли-продажи", "Акт передачи"},
		Milestones: []Milestone{
			{Title: "Договор подписан", DaysFromStart: 76},
			{Title: "Сделка закрыта", DaysFromStart: 80},
		},
	},
}

// Template возвращает заготовку этапа по его ключу.
func Template(stage string) (StageTemplate, bool) {
	tpl, ok := StageTemplates[stage]
	return tpl, ok
}

// StageFromTemplate создаёт данные этапа сделки из заготовки.
// Пункты чеклиста получают свежие идентификаторы и пустое состояние
// выполнения; статус и прогресс берутся из аргументов вызова.
func StageFromTemplate(dealID uuid.UUID, stage string, status string, progress int, now time.Time) *models.StageData {
	tpl, ok := StageTemplates[stage]
	if !ok {
		return nil
	}

	stageID := uuid.New()
	data := &models.StageData{
		ID:       stageID,
		DealID:   dealID,
		Stage:    stage,
		Status:   status,
		Progress: progress,
		Owner:    tpl.DefaultOwner,
	}

	if status == models.StageStatusInProgress || status == models.StageStatusCompleted {
		startedAt := now
		data.StartedAt = &startedAt
	}
	if status == models.StageStatusCompleted {
		completedAt := now
		data.CompletedAt = &completedAt
	}

	for _, item := range tpl.Checklist {
		checklistItem := models.ChecklistItem{
			ID:        uuid.New(),
			StageID:   stageID,
			Title:     item.Title,
			Required:  item.Required,
			Owner:     item.Owner,
			Priority:  item.Priority,
			Category:  item.Category,
			CreatedAt: now,
		}
		if item.Description != "" {
			desc := item.Description
			checklistItem.Description = &desc
		}
		data.Checklist = append(data.Checklist, checklistItem)
	}

	return data
}
