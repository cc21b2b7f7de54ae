package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/bizbridge/acquisition-backend/internal/models"
)

var (
	// ErrStageNotFound возвращается, когда этап сделки не найден.
	ErrStageNotFound = errors.New("stage not found")
	// ErrChecklistItemNotFound возвращается, когда пункт чек-листа не найден.
	ErrChecklistItemNotFound = errors.New("checklist item not found")
	// ErrDocumentNotFound возвращается, когда документ этапа не найден.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrApprovalNotFound возвращается, когда согласование не найдено.
	ErrApprovalNotFound = errors.New("approval not found")
	// ErrCommentNotFound возвращается, когда комментарий не найден.
	ErrCommentNotFound = errors.New("comment not found")
)

// StageRepository отвечает за таблицы deal_stages, stage_checklist_items,
// stage_documents, stage_comments и stage_approvals.
type StageRepository struct {
	db *sqlx.DB
}

// NewStageRepository создаёт экземпляр репозитория.
func NewStageRepository(db *sqlx.DB) *StageRepository {
	return &StageRepository{db: db}
}

// CreateStages сохраняет этапы сделки вместе с их чек-листами одной
// транзакцией: сделка не должна появиться с частично засеянным конвейером.
func (r *StageRepository) CreateStages(ctx context.Context, stages []models.StageData) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("stage repository: begin tx %w", err)
	}
	defer tx.Rollback()

	stageQuery := `
		INSERT INTO deal_stages (id, deal_id, stage, status, progress, owner, started_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	itemQuery := `
		INSERT INTO stage_checklist_items
			(id, stage_id, title, description, required, owner, priority, category,
			 completed, completed_by, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	for i := range stages {
		stage := &stages[i]
		if stage.ID == uuid.Nil {
			stage.ID = uuid.New()
		}
		if _, err := tx.ExecContext(ctx, stageQuery,
			stage.ID, stage.DealID, stage.Stage, stage.Status, stage.Progress,
			stage.Owner, stage.StartedAt, stage.CompletedAt,
		); err != nil {
			return fmt.Errorf("stage repository: create stage %w", err)
		}

		for j := range stage.Checklist {
			item := &stage.Checklist[j]
			if _, err := tx.ExecContext(ctx, itemQuery,
				item.ID, stage.ID, item.Title, item.Description, item.Required,
				item.Owner, item.Priority, item.Category,
				item.Completed, item.CompletedBy, item.CompletedAt,
			); err != nil {
				return fmt.Errorf("stage repository: create checklist item %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("stage repository: commit %w", err)
	}
	return nil
}

// GetByDealAndStage возвращает этап без вложенных коллекций.
func (r *StageRepository) GetByDealAndStage(ctx context.Context, dealID uuid.UUID, stage string) (*models.StageData, error) {
	var data models.StageData
	query := `
		SELECT id, deal_id, stage, status, progress, owner, started_at, completed_at
		FROM deal_stages
		WHERE deal_id = $1 AND stage = $2
	`
	if err := r.db.GetContext(ctx, &data, query, dealID, stage); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStageNotFound
		}
		return nil, fmt.Errorf("stage repository: get by deal and stage %w", err)
	}
	return &data, nil
}

// ListByDeal возвращает этапы сделки без вложенных коллекций.
func (r *StageRepository) ListByDeal(ctx context.Context, dealID uuid.UUID) ([]models.StageData, error) {
	var stages []models.StageData
	query := `
		SELECT id, deal_id, stage, status, progress, owner, started_at, completed_at
		FROM deal_stages
		WHERE deal_id = $1
	`
	if err := r.db.SelectContext(ctx, &stages, query, dealID); err != nil {
		return nil, fmt.Errorf("stage repository: list by deal %w", err)
	}
	return stages, nil
}

// UpdateStage сохраняет статус, прогресс и временные отметки этапа.
func (r *StageRepository) UpdateStage(ctx context.Context, stage *models.StageData) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE deal_stages
		SET status = $2, progress = $3, started_at = $4, completed_at = $5
		WHERE id = $1
	`, stage.ID, stage.Status, stage.Progress, stage.StartedAt, stage.CompletedAt)
	if err != nil {
		return fmt.Errorf("stage repository: update stage %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrStageNotFound
	}
	return nil
}

// ListChecklist возвращает чек-лист этапа в порядке создания.
func (r *StageRepository) ListChecklist(ctx context.Context, stageID uuid.UUID) ([]models.ChecklistItem, error) {
	var items []models.ChecklistItem
	query := `
		SELECT id, stage_id, title, description, required, owner, priority, category,
			completed, completed_by, completed_at
		FROM stage_checklist_items
		WHERE stage_id = $1
		ORDER BY created_at ASC
	`
	if err := r.db.SelectContext(ctx, &items, query, stageID); err != nil {
		return nil, fmt.Errorf("stage repository: list checklist %w", err)
	}
	return items, nil
}

// GetChecklistItem возвращает пункт чек-листа этапа.
func (r *StageRepository) GetChecklistItem(ctx context.Context, stageID, itemID uuid.UUID) (*models.ChecklistItem, error) {
	var item models.ChecklistItem
	query := `
		SELECT id, stage_id, title, description, required, owner, priority, category,
			completed, completed_by, completed_at
		FROM stage_checklist_items
		WHERE id = $1 AND stage_id = $2
	`
	if err := r.db.GetContext(ctx, &item, query, itemID, stageID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrChecklistItemNotFound
		}
		return nil, fmt.Errorf("stage repository: get checklist item %w", err)
	}
	return &item, nil
}

// UpdateChecklistItem сохраняет отметку выполнения. Поля completed_by и
// completed_at выставляются и очищаются только вместе.
func (r *StageRepository) UpdateChecklistItem(ctx context.Context, item *models.ChecklistItem) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE stage_checklist_items
		SET completed = $2, completed_by = $3, completed_at = $4
		WHERE id = $1
	`, item.ID, item.Completed, item.CompletedBy, item.CompletedAt)
	if err != nil {
		return fmt.Errorf("stage repository: update checklist item %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrChecklistItemNotFound
	}
	return nil
}

// ListDocuments возвращает документы этапа от новых к старым.
func (r *StageRepository) ListDocuments(ctx context.Context, stageID uuid.UUID) ([]models.StageDocument, error) {
	var docs []models.StageDocument
	query := `
		SELECT id, stage_id, media_id, title, category, version, status,
			confidentiality_level, file_size, uploaded_by, created_at, updated_at
		FROM stage_documents
		WHERE stage_id = $1
		ORDER BY updated_at DESC
	`
	if err := r.db.SelectContext(ctx, &docs, query, stageID); err != nil {
		return nil, fmt.Errorf("stage repository: list documents %w", err)
	}
	return docs, nil
}

// GetDocument возвращает документ этапа.
func (r *StageRepository) GetDocument(ctx context.Context, stageID, docID uuid.UUID) (*models.StageDocument, error) {
	var doc models.StageDocument
	query := `
		SELECT id, stage_id, media_id, title, category, version, status,
			confidentiality_level, file_size, uploaded_by, created_at, updated_at
		FROM stage_documents
		WHERE id = $1 AND stage_id = $2
	`
	if err := r.db.GetContext(ctx, &doc, query, docID, stageID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("stage repository: get document %w", err)
	}
	return &doc, nil
}

// GetDocumentByTitle ищет документ этапа по названию для перезаписи версии.
func (r *StageRepository) GetDocumentByTitle(ctx context.Context, stageID uuid.UUID, title string) (*models.StageDocument, error) {
	var doc models.StageDocument
	query := `
		SELECT id, stage_id, media_id, title, category, version, status,
			confidentiality_level, file_size, uploaded_by, created_at, updated_at
		FROM stage_documents
		WHERE stage_id = $1 AND title = $2
	`
	if err := r.db.GetContext(ctx, &doc, query, stageID, title); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("stage repository: get document by title %w", err)
	}
	return &doc, nil
}

// CreateDocument сохраняет новый документ этапа.
func (r *StageRepository) CreateDocument(ctx context.Context, doc *models.StageDocument) error {
	query := `
		INSERT INTO stage_documents
			(stage_id, media_id, title, category, version, status,
			 confidentiality_level, file_size, uploaded_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		doc.StageID, doc.MediaID, doc.Title, doc.Category, doc.Version, doc.Status,
		doc.ConfidentialityLevel, doc.FileSize, doc.UploadedBy,
	).Scan(&doc.ID, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
		return fmt.Errorf("stage repository: create document %w", err)
	}

	return nil
}

// ReplaceDocument перезаписывает документ новой версией: прежний файл
// замещается, номер версии растёт, статус сбрасывается.
func (r *StageRepository) ReplaceDocument(ctx context.Context, doc *models.StageDocument) error {
	query := `
		UPDATE stage_documents
		SET media_id = $2, category = $3, version = $4, status = $5,
			confidentiality_level = $6, file_size = $7, uploaded_by = $8, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		doc.ID, doc.MediaID, doc.Category, doc.Version, doc.Status,
		doc.ConfidentialityLevel, doc.FileSize, doc.UploadedBy,
	).Scan(&doc.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrDocumentNotFound
		}
		return fmt.Errorf("stage repository: replace document %w", err)
	}

	return nil
}

// UpdateDocumentStatus меняет статус согласования документа.
func (r *StageRepository) UpdateDocumentStatus(ctx context.Context, docID uuid.UUID, status string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE stage_documents SET status = $2, updated_at = NOW() WHERE id = $1
	`, docID, status)
	if err != nil {
		return fmt.Errorf("stage repository: update document status %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrDocumentNotFound
	}
	return nil
}

// ListComments возвращает комментарии этапа от старых к новым.
func (r *StageRepository) ListComments(ctx context.Context, stageID uuid.UUID) ([]models.StageComment, error) {
	var comments []models.StageComment
	query := `
		SELECT id, stage_id, author_id, author_role, content, is_private, created_at, edited_at
		FROM stage_comments
		WHERE stage_id = $1
		ORDER BY created_at ASC
	`
	if err := r.db.SelectContext(ctx, &comments, query, stageID); err != nil {
		return nil, fmt.Errorf("stage repository: list comments %w", err)
	}
	return comments, nil
}

// CreateComment сохраняет комментарий этапа.
func (r *StageRepository) CreateComment(ctx context.Context, comment *models.StageComment) error {
	query := `
		INSERT INTO stage_comments (stage_id, author_id, author_role, content, is_private)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		comment.StageID, comment.AuthorID, comment.AuthorRole, comment.Content, comment.IsPrivate,
	).Scan(&comment.ID, &comment.CreatedAt); err != nil {
		return fmt.Errorf("stage repository: create comment %w", err)
	}

	return nil
}

// UpdateComment обновляет текст комментария автора.
func (r *StageRepository) UpdateComment(ctx context.Context, commentID, authorID uuid.UUID, content string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE stage_comments
		SET content = $3, edited_at = NOW()
		WHERE id = $1 AND author_id = $2
	`, commentID, authorID, content)
	if err != nil {
		return fmt.Errorf("stage repository: update comment %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrCommentNotFound
	}
	return nil
}

// ListApprovals возвращает согласования этапа в порядке создания.
func (r *StageRepository) ListApprovals(ctx context.Context, stageID uuid.UUID) ([]models.StageApproval, error) {
	var approvals []models.StageApproval
	query := `
		SELECT id, stage_id, title, required_from, status,
			approved_by, approved_at, rejection_reason, created_at, updated_at
		FROM stage_approvals
		WHERE stage_id = $1
		ORDER BY created_at ASC
	`
	if err := r.db.SelectContext(ctx, &approvals, query, stageID); err != nil {
		return nil, fmt.Errorf("stage repository: list approvals %w", err)
	}
	return approvals, nil
}

// GetApproval возвращает согласование этапа.
func (r *StageRepository) GetApproval(ctx context.Context, stageID, approvalID uuid.UUID) (*models.StageApproval, error) {
	var approval models.StageApproval
	query := `
		SELECT id, stage_id, title, required_from, status,
			approved_by, approved_at, rejection_reason, created_at, updated_at
		FROM stage_approvals
		WHERE id = $1 AND stage_id = $2
	`
	if err := r.db.GetContext(ctx, &approval, query, approvalID, stageID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrApprovalNotFound
		}
		return nil, fmt.Errorf("stage repository: get approval %w", err)
	}
	return &approval, nil
}

// CreateApproval сохраняет запрос на согласование.
func (r *StageRepository) CreateApproval(ctx context.Context, approval *models.StageApproval) error {
	query := `
		INSERT INTO stage_approvals (stage_id, title, required_from, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		approval.StageID, approval.Title, approval.RequiredFrom, approval.Status,
	).Scan(&approval.ID, &approval.CreatedAt); err != nil {
		return fmt.Errorf("stage repository: create approval %w", err)
	}

	return nil
}

// UpdateApproval фиксирует решение по согласованию.
func (r *StageRepository) UpdateApproval(ctx context.Context, approval *models.StageApproval) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE stage_approvals
		SET status = $2, approved_by = $3, approved_at = $4, rejection_reason = $5, updated_at = NOW()
		WHERE id = $1
	`, approval.ID, approval.Status, approval.ApprovedBy, approval.ApprovedAt, approval.RejectionReason)
	if err != nil {
		return fmt.Errorf("stage repository: update approval %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrApprovalNotFound
	}
	return nil
}
