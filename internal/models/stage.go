package models

import (
	"time"

	"github.com/google/uuid"
)

// StageData описывает состояние одного этапа конкретной сделки.
type StageData struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	DealID      uuid.UUID  `db:"deal_id" json:"deal_id"`
	Stage       string     `db:"stage" json:"stage"`
	Status      string     `db:"status" json:"status"`
	Progress    int        `db:"progress" json:"progress"`
	Owner       string     `db:"owner" json:"owner"`
	StartedAt   *time.Time `db:"started_at" json:"started_at,omitempty"`
	CompletedAt *time.Time `db:"completed_at" json:"completed_at,omitempty"`

	// Связанные данные (загружаются отдельно)
	Checklist []ChecklistItem `json:"checklist,omitempty"`
	Documents []StageDocument `json:"documents,omitempty"`
	Comments  []StageComment  `json:"comments,omitempty"`
	Approvals []StageApproval `json:"approvals,omitempty"`
}

// ChecklistItem описывает задачу этапа. Поля completed_by и completed_at
// выставляются и очищаются только вместе с флагом completed.
type ChecklistItem struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	StageID     uuid.UUID  `db:"stage_id" json:"stage_id"`
	Title       string     `db:"title" json:"title"`
	Description *string    `db:"description" json:"description,omitempty"`
	Required    bool       `db:"required" json:"required"`
	Owner       string     `db:"owner" json:"owner"`
	Priority    string     `db:"priority" json:"priority"`
	Category    string     `db:"category" json:"category"`
	Completed   bool       `db:"completed" json:"completed"`
	CompletedBy *uuid.UUID `db:"completed_by" json:"completed_by,omitempty"`
	CompletedAt *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

// StageDocument описывает документ этапа. Версия — целое число,
// новая загрузка под тем же названием перезаписывает документ и
// увеличивает версию, история версий не хранится.
type StageDocument struct {
	ID                   uuid.UUID `db:"id" json:"id"`
	StageID              uuid.UUID `db:"stage_id" json:"stage_id"`
	MediaID              uuid.UUID `db:"media_id" json:"media_id"`
	Title                string    `db:"title" json:"title"`
	Category             string    `db:"category" json:"category"`
	Version              int       `db:"version" json:"version"`
	Status               string    `db:"status" json:"status"`
	ConfidentialityLevel string    `db:"confidentiality_level" json:"confidentiality_level"`
	FileSize             int64     `db:"file_size" json:"file_size"`
	UploadedBy           uuid.UUID `db:"uploaded_by" json:"uploaded_by"`
	CreatedAt            time.Time `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time `db:"updated_at" json:"updated_at"`
}

// StageComment описывает комментарий к этапу. Приватные комментарии не
// учитываются в счётчике непрочитанных у другой стороны. Роль автора
// фиксируется при создании и далее не пересчитывается.
type StageComment struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	StageID    uuid.UUID  `db:"stage_id" json:"stage_id"`
	AuthorID   uuid.UUID  `db:"author_id" json:"author_id"`
	AuthorRole string     `db:"author_role" json:"author_role"`
	Content    string     `db:"content" json:"content"`
	IsPrivate  bool       `db:"is_private" json:"is_private"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	EditedAt   *time.Time `db:"edited_at" json:"edited_at,omitempty"`
}

// StageApproval описывает согласование этапа одной или обеими сторонами.
type StageApproval struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	StageID         uuid.UUID  `db:"stage_id" json:"stage_id"`
	Title           string     `db:"title" json:"title"`
	RequiredFrom    string     `db:"required_from" json:"required_from"`
	Status          string     `db:"status" json:"status"`
	ApprovedBy      *uuid.UUID `db:"approved_by" json:"approved_by,omitempty"`
	ApprovedAt      *time.Time `db:"approved_at" json:"approved_at,omitempty"`
	RejectionReason *string    `db:"rejection_reason" json:"rejection_reason,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}
