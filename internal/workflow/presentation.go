package workflow

import (
	"github.com/bizbridge/acquisition-backend/internal/models"
)

// StageStatusView задаёт иконку и цвет отображения статуса этапа.
type StageStatusView struct {
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

// StatusView возвращает иконку и цвет для статуса этапа.
func StatusView(status string) StageStatusView {
	switch status {
	case models.StageStatusCompleted:
		return StageStatusView{Icon: "check-circle", Color: "success"}
	case models.StageStatusInProgress:
		return StageStatusView{Icon: "clock", Color: "primary"}
	case models.StageStatusBlocked:
		return StageStatusView{Icon: "alert-circle", Color: "error"}
	default:
		return StageStatusView{Icon: "circle", Color: "default"}
	}
}

// ProgressColor возвращает цветовую категорию для числового прогресса.
// Границы категорий — контракт, на который опирается интерфейс:
// >=80 success, >=50 primary, >=25 warning, иначе error.
func ProgressColor(progress int) string {
	switch {
	case progress >= 80:
		return "success"
	case progress >= 50:
		return "primary"
	case progress >= 25:
		return "warning"
	default:
		return "error"
	}
}

// StageCounters — сводные счётчики этапа для списков и карточек.
type StageCounters struct {
	CompletedChecklistItems int `json:"completed_checklist_items"`
	TotalChecklistItems     int `json:"total_checklist_items"`
	PendingApprovals        int `json:"pending_approvals"`
	UnreadComments          int `json:"unread_comments"`
	Documents               int `json:"documents"`
}
