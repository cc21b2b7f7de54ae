package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/bizbridge/acquisition-backend/internal/models"
)

// ErrDealNotFound возвращается, когда сделка не найдена.
var ErrDealNotFound = errors.New("deal not found")

// DealRepository отвечает за работу с таблицами deals, deal_team_members,
// deal_key_dates и deal_activity.
type DealRepository struct {
	db *sqlx.DB
}

// NewDealRepository создаёт экземпляр репозитория.
func NewDealRepository(db *sqlx.DB) *DealRepository {
	return &DealRepository{db: db}
}

const dealColumns = `
	id, match_id, business_id, buyer_id, seller_id,
	buyer_snapshot, seller_snapshot, business_snapshot,
	current_stage, overall_progress, status,
	deal_value, deal_structure, financing_type,
	target_closing_date, actual_closing_date, created_at, last_updated
`

// dealRow — вспомогательная структура для чтения строки сделки,
// financing_type хранится как text[].
type dealRow struct {
	models.Deal
	FinancingTypeArr pq.StringArray `db:"financing_type"`
}

func (row *dealRow) toModel() *models.Deal {
	deal := row.Deal
	deal.FinancingType = []string(row.FinancingTypeArr)
	return &deal
}

// Create сохраняет новую сделку.
func (r *DealRepository) Create(ctx context.Context, deal *models.Deal) error {
	query := `
		INSERT INTO deals (match_id, business_id, buyer_id, seller_id,
			buyer_snapshot, seller_snapshot, business_snapshot,
			current_stage, overall_progress, status,
			deal_value, deal_structure, financing_type, target_closing_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at, last_updated
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		deal.MatchID, deal.BusinessID, deal.BuyerID, deal.SellerID,
		deal.Buyer, deal.Seller, deal.Business,
		deal.CurrentStage, deal.OverallProgress, deal.Status,
		deal.DealValue, deal.DealStructure, pq.Array(deal.FinancingType), deal.TargetClosingDate,
	).Scan(&deal.ID, &deal.CreatedAt, &deal.LastUpdated); err != nil {
		return fmt.Errorf("deal repository: create %w", err)
	}

	return nil
}

// GetByID возвращает сделку по идентификатору.
func (r *DealRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Deal, error) {
	var row dealRow
	query := `SELECT ` + dealColumns + ` FROM deals WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDealNotFound
		}
		return nil, fmt.Errorf("deal repository: get by id %w", err)
	}

	return row.toModel(), nil
}

// ListByUser возвращает сделки, где пользователь выступает любой из сторон.
func (r *DealRepository) ListByUser(ctx context.Context, userID uuid.UUID, status string, limit, offset int) ([]models.Deal, error) {
	query := `SELECT ` + dealColumns + ` FROM deals WHERE (buyer_id = $1 OR seller_id = $1)`
	args := []interface{}{userID}

	if status != "" {
		args = append(args, status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}

	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY last_updated DESC LIMIT $%d", len(args))
	args = append(args, offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	var rows []dealRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("deal repository: list by user %w", err)
	}

	deals := make([]models.Deal, 0, len(rows))
	for i := range rows {
		deals = append(deals, *rows[i].toModel())
	}
	return deals, nil
}

// UpdateStatus меняет статус сделки; для завершённой сделки фиксируется
// фактическая дата закрытия.
func (r *DealRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	query := `
		UPDATE deals
		SET status = $2,
			actual_closing_date = CASE WHEN $2 = 'completed' THEN NOW() ELSE actual_closing_date END,
			last_updated = NOW()
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("deal repository: update status %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrDealNotFound
	}
	return nil
}

// UpdateCurrentStage переводит сделку на другой этап.
func (r *DealRepository) UpdateCurrentStage(ctx context.Context, id uuid.UUID, stage string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE deals SET current_stage = $2, last_updated = NOW() WHERE id = $1
	`, id, stage)
	if err != nil {
		return fmt.Errorf("deal repository: update current stage %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrDealNotFound
	}
	return nil
}

// UpdateOverallProgress сохраняет пересчитанный сводный прогресс.
func (r *DealRepository) UpdateOverallProgress(ctx context.Context, id uuid.UUID, progress int) error {
	if _, err := r.db.ExecContext(ctx, `
		UPDATE deals SET overall_progress = $2, last_updated = NOW() WHERE id = $1
	`, id, progress); err != nil {
		return fmt.Errorf("deal repository: update overall progress %w", err)
	}
	return nil
}

// UpdateTerms обновляет коммерческие условия сделки.
func (r *DealRepository) UpdateTerms(ctx context.Context, deal *models.Deal) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE deals
		SET deal_value = $2, deal_structure = $3, financing_type = $4,
			target_closing_date = $5, last_updated = NOW()
		WHERE id = $1
	`, deal.ID, deal.DealValue, deal.DealStructure, pq.Array(deal.FinancingType), deal.TargetClosingDate)
	if err != nil {
		return fmt.Errorf("deal repository: update terms %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrDealNotFound
	}
	return nil
}

// AddTeamMember добавляет участника команды сделки.
func (r *DealRepository) AddTeamMember(ctx context.Context, member *models.TeamMember) error {
	query := `
		INSERT INTO deal_team_members (deal_id, user_id, name, role, email, side)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		member.DealID, member.UserID, member.Name, member.Role, member.Email, member.Side,
	).Scan(&member.ID, &member.CreatedAt); err != nil {
		return fmt.Errorf("deal repository: add team member %w", err)
	}

	return nil
}

// ListTeamMembers возвращает команду сделки.
func (r *DealRepository) ListTeamMembers(ctx context.Context, dealID uuid.UUID) ([]models.TeamMember, error) {
	var members []models.TeamMember
	query := `
		SELECT id, deal_id, user_id, name, role, email, side, created_at
		FROM deal_team_members
		WHERE deal_id = $1
		ORDER BY created_at ASC
	`
	if err := r.db.SelectContext(ctx, &members, query, dealID); err != nil {
		return nil, fmt.Errorf("deal repository: list team members %w", err)
	}
	return members, nil
}

// AddKeyDate добавляет контрольную дату сделки.
func (r *DealRepository) AddKeyDate(ctx context.Context, keyDate *models.KeyDate) error {
	query := `
		INSERT INTO deal_key_dates (deal_id, title, due_at, completed)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		keyDate.DealID, keyDate.Title, keyDate.DueAt, keyDate.Completed,
	).Scan(&keyDate.ID, &keyDate.CreatedAt); err != nil {
		return fmt.Errorf("deal repository: add key date %w", err)
	}

	return nil
}

// ListKeyDates возвращает контрольные даты сделки.
func (r *DealRepository) ListKeyDates(ctx context.Context, dealID uuid.UUID) ([]models.KeyDate, error) {
	var keyDates []models.KeyDate
	query := `
		SELECT id, deal_id, title, due_at, completed, created_at
		FROM deal_key_dates
		WHERE deal_id = $1
		ORDER BY due_at ASC
	`
	if err := r.db.SelectContext(ctx, &keyDates, query, dealID); err != nil {
		return nil, fmt.Errorf("deal repository: list key dates %w", err)
	}
	return keyDates, nil
}

// AppendActivity добавляет запись в журнал действий. Журнал только
// пополняется, обновления и удаления записей не предусмотрены.
func (r *DealRepository) AppendActivity(ctx context.Context, entry *models.ActivityEntry) error {
	query := `
		INSERT INTO deal_activity (deal_id, actor_id, stage, action, details)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		entry.DealID, entry.ActorID, entry.Stage, entry.Action, entry.Details,
	).Scan(&entry.ID, &entry.CreatedAt); err != nil {
		return fmt.Errorf("deal repository: append activity %w", err)
	}

	return nil
}

// ListActivity возвращает журнал действий сделки от новых к старым.
func (r *DealRepository) ListActivity(ctx context.Context, dealID uuid.UUID, limit, offset int) ([]models.ActivityEntry, error) {
	var entries []models.ActivityEntry
	query := `
		SELECT id, deal_id, actor_id, stage, action, details, created_at
		FROM deal_activity
		WHERE deal_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	if err := r.db.SelectContext(ctx, &entries, query, dealID, limit, offset); err != nil {
		return nil, fmt.Errorf("deal repository: list activity %w", err)
	}
	return entries, nil
}
