package conversation

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kalaconnect/kalaconnect-backend/pkg/db/models"
)

// Repository wires together conversation and message persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// CreateConversation inserts a new thread.
func (r *Repository) CreateConversation(ctx context.Context, conversation *models.Conversation) (*models.Conversation, error) {
	if err := r.db.WithContext(ctx).Create(conversation).Error; err != nil {
		return nil, err
	}
	return conversation, nil
}

// FindConversation loads a thread by id.
func (r *Repository) FindConversation(ctx context.Context, id uuid.UUID) (*models.Conversation, error) {
	var conversation models.Conversation
	if err := r.db.WithContext(ctx).First(&conversation, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &conversation, nil
}

// UpdateConversation saves the full thread row.
func (r *Repository) UpdateConversation(ctx context.Context, conversation *models.Conversation) (*models.Conversation, error) {
	if err := r.db.WithContext(ctx).Save(conversation).Error; err != nil {
		return nil, err
	}
	return conversation, nil
}

// ListConversationsForUser returns the user's threads, most recent first.
// Participants are serialized JSON, so membership is matched on the quoted
// id. User ids are UUIDs, which keeps the pattern unambiguous.
func (r *Repository) ListConversationsForUser(ctx context.Context, userID string) ([]models.Conversation, error) {
	pattern := fmt.Sprintf("%%%q%%", userID)

	var rows []models.Conversation
	err := r.db.WithContext(ctx).
		Where("participants LIKE ?", pattern).
		Order("updated_at DESC").
		Find(&rows).
		Error
	return rows, err
}

// CreateMessage inserts a chat message.
func (r *Repository) CreateMessage(ctx context.Context, message *models.Message) (*models.Message, error) {
	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		return nil, err
	}
	return message, nil
}

// ListMessages returns a thread's messages in chronological order.
func (r *Repository) ListMessages(ctx context.Context, conversationID uuid.UUID) ([]models.Message, error) {
	var rows []models.Message
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC").
		Find(&rows).
		Error
	return rows, err
}
