package workflow

import (
	"math"

	"github.com/google/uuid"

	"github.com/bizbridge/acquisition-backend/internal/models"
)

// CurrentStageIndex возвращает индекс текущего этапа сделки в её массиве
// этапов. Поиск линейный по ключу этапа. Для корректной сделки всегда
// возвращается значение в пределах массива; -1 возможен только для
// повреждённой записи без текущего этапа.
func CurrentStageIndex(deal *models.Deal) int {
	for i, stage := range deal.Stages {
		if stage.Stage == deal.CurrentStage {
			return i
		}
	}
	return -1
}

// OverallProgress вычисляет сводный прогресс сделки как средневзвешенное
// прогрессов этапов. Вес этапа — его оценочная длительность из заготовки,
// результат округляется до ближайшего целого.
func OverallProgress(stages []models.StageData) int {
	var weighted, totalWeight float64
	for _, stage := range stages {
		tpl, ok := StageTemplates[stage.Stage]
		if !ok {
			continue
		}
		weight := float64(tpl.EstimatedDays)
		weighted += float64(stage.Progress) * weight
		totalWeight += weight
	}

	if totalWeight == 0 {
		return 0
	}

	progress := int(math.Round(weighted / totalWeight))
	if progress < 0 {
		return 0
	}
	if progress > 100 {
		return 100
	}
	return progress
}

// CanUserCompleteTask сообщает, может ли пользователь с данной ролью
// отметить задачу выполненной: ответственный — обе стороны, либо
// совпадает с ролью вызывающего.
func CanUserCompleteTask(item *models.ChecklistItem, role string) bool {
	return item.Owner == models.OwnerBoth || item.Owner == role
}

// CompletedChecklistItems возвращает количество выполненных задач этапа.
func CompletedChecklistItems(stage *models.StageData) int {
	count := 0
	for _, item := range stage.Checklist {
		if item.Completed {
			count++
		}
	}
	return count
}

// PendingApprovals возвращает количество согласований этапа в ожидании.
func PendingApprovals(stage *models.StageData) int {
	count := 0
	for _, approval := range stage.Approvals {
		if approval.Status == models.ApprovalStatusPending {
			count++
		}
	}
	return count
}

// UnreadCommentCount возвращает количество непрочитанных комментариев
// этапа с точки зрения пользователя: считаются все публичные комментарии
// другой стороны. Состояние прочтения не хранится, поэтому счётчик —
// производная оценка, а не точный учёт.
func UnreadCommentCount(stage *models.StageData, currentUserID uuid.UUID) int {
	count := 0
	for _, comment := range stage.Comments {
		if comment.AuthorID != currentUserID && !comment.IsPrivate {
			count++
		}
	}
	return count
}

// StageCompletionProgress вычисляет прогресс этапа по доле выполненных
// задач чеклиста, округляя до ближайшего целого.
func StageCompletionProgress(stage *models.StageData) int {
	if len(stage.Checklist) == 0 {
		return stage.Progress
	}
	done := CompletedChecklistItems(stage)
	return int(math.Round(float64(done) / float64(len(stage.Checklist)) * 100))
}

// CanAdvanceStage сообщает, можно ли закрыть этап и перейти к следующему:
// все обязательные задачи выполнены и нет неразрешённых согласований.
func CanAdvanceStage(stage *models.StageData) bool {
	for _, item := range stage.Checklist {
		if item.Required && !item.Completed {
			return false
		}
	}
	for _, approval := range stage.Approvals {
		if approval.Status != models.ApprovalStatusApproved {
			return false
		}
	}
	return true
}

// NextStage возвращает следующий этап пайплайна после данного.
// Для последнего этапа возвращается пустая строка.
func NextStage(stage string) string {
	for i, s := range models.StageOrder {
		if s == stage && i+1 < len(models.StageOrder) {
			return models.StageOrder[i+1]
		}
	}
	return ""
}
