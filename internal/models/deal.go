package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PartySnapshot хранит срез данных стороны сделки на момент её создания.
// Снимок неизменяем: последующие правки профиля на сделку не влияют.
type PartySnapshot struct {
	Name    string     `json:"name"`
	Company string     `json:"company,omitempty"`
	Email   string     `json:"email"`
	PhotoID *uuid.UUID `json:"photo_id,omitempty"`
}

// BusinessSnapshot хранит срез данных бизнеса на момент создания сделки.
type BusinessSnapshot struct {
	Name          string   `json:"name"`
	Industry      string   `json:"industry"`
	Location      string   `json:"location"`
	AnnualRevenue *float64 `json:"annual_revenue,omitempty"`
	Valuation     *float64 `json:"valuation,omitempty"`
}

// Value сериализует снимок в JSONB.
func (p PartySnapshot) Value() (driver.Value, error) {
	return json.Marshal(p)
}

// Scan читает снимок из JSONB.
func (p *PartySnapshot) Scan(src interface{}) error {
	return scanJSON(src, p)
}

// Value сериализует снимок в JSONB.
func (b BusinessSnapshot) Value() (driver.Value, error) {
	return json.Marshal(b)
}

// Scan читает снимок из JSONB.
func (b *BusinessSnapshot) Scan(src interface{}) error {
	return scanJSON(src, b)
}

func scanJSON(src interface{}, dst interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	case nil:
		return nil
	default:
		return fmt.Errorf("models: не удалось прочитать jsonb из %T", src)
	}
}

// Deal описывает сделку по приобретению бизнеса между покупателем и продавцом.
type Deal struct {
	ID         uuid.UUID `db:"id" json:"id"`
	MatchID    uuid.UUID `db:"match_id" json:"match_id"`
	BusinessID uuid.UUID `db:"business_id" json:"business_id"`
	BuyerID    uuid.UUID `db:"buyer_id" json:"buyer_id"`
	SellerID   uuid.UUID `db:"seller_id" json:"seller_id"`

	Buyer    PartySnapshot    `db:"buyer_snapshot" json:"buyer"`
	Seller   PartySnapshot    `db:"seller_snapshot" json:"seller"`
	Business BusinessSnapshot `db:"business_snapshot" json:"business"`

	CurrentStage    string `db:"current_stage" json:"current_stage"`
	OverallProgress int    `db:"overall_progress" json:"overall_progress"`
	Status          string `db:"status" json:"status"`

	DealValue     *float64 `db:"deal_value" json:"deal_value,omitempty"`
	DealStructure *string  `db:"deal_structure" json:"deal_structure,omitempty"`
	FinancingType []string `db:"-" json:"financing_type,omitempty"`

	TargetClosingDate *time.Time `db:"target_closing_date" json:"target_closing_date,omitempty"`
	ActualClosingDate *time.Time `db:"actual_closing_date" json:"actual_closing_date,omitempty"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
	LastUpdated       time.Time  `db:"last_updated" json:"last_updated"`

	// Связанные данные (загружаются отдельно)
	Stages   []StageData     `json:"stages,omitempty"`
	Team     []TeamMember    `json:"deal_team,omitempty"`
	KeyDates []KeyDate       `json:"key_dates,omitempty"`
	Activity []ActivityEntry `json:"activity,omitempty"`
}

// TeamMember описывает участника команды сделки (юристы, брокеры, аудиторы).
type TeamMember struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	DealID    uuid.UUID  `db:"deal_id" json:"deal_id"`
	UserID    *uuid.UUID `db:"user_id" json:"user_id,omitempty"`
	Name      string     `db:"name" json:"name"`
	Role      string     `db:"role" json:"role"`
	Email     *string    `db:"email" json:"email,omitempty"`
	Side      string     `db:"side" json:"side"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}

// KeyDate описывает контрольную дату сделки.
type KeyDate struct {
	ID        uuid.UUID `db:"id" json:"id"`
	DealID    uuid.UUID `db:"deal_id" json:"deal_id"`
	Title     string    `db:"title" json:"title"`
	DueAt     time.Time `db:"due_at" json:"due_at"`
	Completed bool      `db:"completed" json:"completed"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ActivityEntry описывает запись в журнале действий по сделке.
// Журнал только пополняется, записи не редактируются и не удаляются.
type ActivityEntry struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	DealID    uuid.UUID  `db:"deal_id" json:"deal_id"`
	ActorID   *uuid.UUID `db:"actor_id" json:"actor_id,omitempty"`
	Stage     *string    `db:"stage" json:"stage,omitempty"`
	Action    string     `db:"action" json:"action"`
	Details   *string    `db:"details" json:"details,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}
