package models

import (
	"time"

	"github.com/google/uuid"
)

// Business описывает объявление о продаже бизнеса.
type Business struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	SellerID      uuid.UUID  `db:"seller_id" json:"seller_id"`
	Name          string     `db:"name" json:"name"`
	Industry      string     `db:"industry" json:"industry"`
	Location      string     `db:"location" json:"location"`
	Description   string     `db:"description" json:"description"`
	AnnualRevenue *float64   `db:"annual_revenue" json:"annual_revenue,omitempty"`
	Valuation     *float64   `db:"valuation" json:"valuation,omitempty"`
	AskingPrice   *float64   `db:"asking_price" json:"asking_price,omitempty"`
	EmployeeCount *int       `db:"employee_count" json:"employee_count,omitempty"`
	FoundedYear   *int       `db:"founded_year" json:"founded_year,omitempty"`
	Status        string     `db:"status" json:"status"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
	// Связанные данные (загружаются отдельно)
	Images []BusinessImage `json:"images,omitempty"`
}

// BusinessImage описывает фотографию объявления. На одно объявление
// допускается не более пяти фотографий.
type BusinessImage struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	BusinessID uuid.UUID  `db:"business_id" json:"business_id"`
	MediaID    uuid.UUID  `db:"media_id" json:"media_id"`
	Position   int        `db:"position" json:"position"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	Media      *MediaFile `json:"media,omitempty"`
}

// Match описывает заявку покупателя на сделку по конкретному бизнесу.
// Принятая продавцом заявка порождает сделку.
type Match struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	BusinessID  uuid.UUID  `db:"business_id" json:"business_id"`
	BuyerID     uuid.UUID  `db:"buyer_id" json:"buyer_id"`
	SellerID    uuid.UUID  `db:"seller_id" json:"seller_id"`
	Status      string     `db:"status" json:"status"`
	Message     *string    `db:"message" json:"message,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	RespondedAt *time.Time `db:"responded_at" json:"responded_at,omitempty"`
}

// Favorite описывает бизнес, добавленный пользователем в избранное.
type Favorite struct {
	ID         uuid.UUID `db:"id" json:"id"`
	UserID     uuid.UUID `db:"user_id" json:"user_id"`
	BusinessID uuid.UUID `db:"business_id" json:"business_id"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
