package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Conversation описывает переписку покупателя и продавца по сделке.
type Conversation struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	DealID    *uuid.UUID `db:"deal_id" json:"deal_id,omitempty"`
	BuyerID   uuid.UUID  `db:"buyer_id" json:"buyer_id"`
	SellerID  uuid.UUID  `db:"seller_id" json:"seller_id"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}

// Message описывает сообщение в переписке.
type Message struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	ConversationID uuid.UUID  `db:"conversation_id" json:"conversation_id"`
	AuthorID       uuid.UUID  `db:"author_id" json:"author_id"`
	Content        string     `db:"content" json:"content"`
	AttachmentID   *uuid.UUID `db:"attachment_id" json:"attachment_id,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

// Notification описывает событие, отправленное пользователю.
type Notification struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	UserID    uuid.UUID       `db:"user_id" json:"user_id"`
	Payload   json.RawMessage `db:"payload" json:"payload"`
	IsRead    bool            `db:"is_read" json:"is_read"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

// MediaFile описывает загруженный файл.
type MediaFile struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	UserID    *uuid.UUID `db:"user_id" json:"user_id,omitempty"`
	FilePath  string     `db:"file_path" json:"file_path"`
	FileType  string     `db:"file_type" json:"file_type"`
	FileSize  int64      `db:"file_size" json:"file_size"`
	IsPublic  bool       `db:"is_public" json:"is_public"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}
