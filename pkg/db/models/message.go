package models

import (
	"time"

	"github.com/google/uuid"
)

// Message is a single chat message within a conversation.
type Message struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	ConversationID uuid.UUID `gorm:"column:conversation_id;type:uuid;not null;index"`
	SenderID       uuid.UUID `gorm:"column:sender_id;type:uuid;not null"`
	SenderName     string    `gorm:"column:sender_name;not null"`
	Content        string    `gorm:"column:content;not null"`
	IsRead         bool      `gorm:"column:is_read;not null;default:false"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
}
