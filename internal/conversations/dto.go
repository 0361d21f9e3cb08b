package conversation

import (
	"time"

	"github.com/google/uuid"

	"github.com/kalaconnect/kalaconnect-backend/pkg/db/models"
)

// ConversationDTO represents a message thread summary.
type ConversationDTO struct {
	ID               uuid.UUID         `json:"id"`
	Participants     []string          `json:"participants"`
	ParticipantNames map[string]string `json:"participant_names"`
	LastMessage      *string           `json:"last_message,omitempty"`
	LastMessageTime  *time.Time        `json:"last_message_time,omitempty"`
	UnreadCounts     map[string]int    `json:"unread_count"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// MessageDTO represents a single chat message.
type MessageDTO struct {
	ID             uuid.UUID `json:"id"`
	ConversationID uuid.UUID `json:"conversation_id"`
	SenderID       uuid.UUID `json:"sender_id"`
	SenderName     string    `json:"sender_name"`
	Content        string    `json:"content"`
	IsRead         bool      `json:"is_read"`
	Timestamp      time.Time `json:"timestamp"`
}

// SendMessageResult confirms a sent message.
type SendMessageResult struct {
	MessageID uuid.UUID `json:"message_id"`
	Message   string    `json:"message"`
}

// NewConversationDTO builds a DTO from the persisted model.
func NewConversationDTO(conversation *models.Conversation) *ConversationDTO {
	return &ConversationDTO{
		ID:               conversation.ID,
		Participants:     append([]string{}, conversation.Participants...),
		ParticipantNames: conversation.ParticipantNames,
		LastMessage:      conversation.LastMessage,
		LastMessageTime:  conversation.LastMessageTime,
		UnreadCounts:     conversation.UnreadCounts,
		CreatedAt:        conversation.CreatedAt,
		UpdatedAt:        conversation.UpdatedAt,
	}
}

// NewMessageDTO builds a DTO from the persisted model.
func NewMessageDTO(message *models.Message) *MessageDTO {
	return &MessageDTO{
		ID:             message.ID,
		ConversationID: message.ConversationID,
		SenderID:       message.SenderID,
		SenderName:     message.SenderName,
		Content:        message.Content,
		IsRead:         message.IsRead,
		Timestamp:      message.CreatedAt,
	}
}
