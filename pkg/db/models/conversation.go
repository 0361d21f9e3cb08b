package models

import (
	"time"

	"github.com/google/uuid"
)

// Conversation is a two-party message thread between a buyer and an artisan.
type Conversation struct {
	ID               uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	Participants     []string          `gorm:"column:participants;serializer:json;not null"`
	ParticipantNames map[string]string `gorm:"column:participant_names;serializer:json"`
	LastMessage      *string           `gorm:"column:last_message"`
	LastMessageTime  *time.Time        `gorm:"column:last_message_time"`
	UnreadCounts     map[string]int    `gorm:"column:unread_counts;serializer:json"`
	CreatedAt        time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// HasParticipant reports whether the given user id is part of the thread.
func (c Conversation) HasParticipant(userID string) bool {
	for _, p := range c.Participants {
		if p == userID {
			return true
		}
	}
	return false
}
