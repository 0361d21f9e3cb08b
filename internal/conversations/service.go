package conversation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kalaconnect/kalaconnect-backend/pkg/db"
	"github.com/kalaconnect/kalaconnect-backend/pkg/db/models"
	pkgerrors "github.com/kalaconnect/kalaconnect-backend/pkg/errors"
)

// Service exposes buyer/artisan messaging operations.
type Service interface {
	ListConversations(ctx context.Context, userID uuid.UUID) ([]ConversationDTO, error)
	ListMessages(ctx context.Context, userID, conversationID uuid.UUID) ([]MessageDTO, error)
	SendMessage(ctx context.Context, userID uuid.UUID, senderName string, input SendMessageInput) (*SendMessageResult, error)
}

// SendMessageInput holds the validated payload to post a message.
type SendMessageInput struct {
	ConversationID uuid.UUID
	Content        string
}

// service implements the conversation service.
type service struct {
	repo     *Repository
	dbClient *db.Client
	now      func() time.Time
}

// NewService constructs a conversation service instance.
func NewService(repo *Repository, dbClient *db.Client) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("conversation repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{repo: repo, dbClient: dbClient, now: time.Now}, nil
}

// ListConversations returns the user's threads, most recent first.
func (s *service) ListConversations(ctx context.Context, userID uuid.UUID) ([]ConversationDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	rows, err := s.repo.ListConversationsForUser(ctx, userID.String())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list conversations")
	}

	dtos := make([]ConversationDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *NewConversationDTO(&rows[i]))
	}
	return dtos, nil
}

// ListMessages returns a thread's messages after checking membership.
func (s *service) ListMessages(ctx context.Context, userID, conversationID uuid.UUID) ([]MessageDTO, error) {
	conversation, err := s.loadConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !conversation.HasParticipant(userID.String()) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not a participant in this conversation")
	}

	rows, err := s.repo.ListMessages(ctx, conversationID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list messages")
	}

	dtos := make([]MessageDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *NewMessageDTO(&rows[i]))
	}
	return dtos, nil
}

// SendMessage posts a message and bumps the thread's last-message fields
// and the other participants' unread counts in one transaction.
func (s *service) SendMessage(ctx context.Context, userID uuid.UUID, senderName string, input SendMessageInput) (*SendMessageResult, error) {
	if strings.TrimSpace(input.Content) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "content cannot be empty")
	}

	conversation, err := s.loadConversation(ctx, input.ConversationID)
	if err != nil {
		return nil, err
	}
	if !conversation.HasParticipant(userID.String()) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "not a participant in this conversation")
	}

	message := &models.Message{
		ID:             uuid.New(),
		ConversationID: conversation.ID,
		SenderID:       userID,
		SenderName:     senderName,
		Content:        input.Content,
	}

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		if _, err := txRepo.CreateMessage(ctx, message); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert message")
		}

		sentAt := s.now().UTC()
		conversation.LastMessage = &message.Content
		conversation.LastMessageTime = &sentAt
		if conversation.UnreadCounts == nil {
			conversation.UnreadCounts = map[string]int{}
		}
		for _, participant := range conversation.Participants {
			if participant != userID.String() {
				conversation.UnreadCounts[participant]++
			}
		}

		if _, err := txRepo.UpdateConversation(ctx, conversation); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update conversation")
		}
		return nil
	}); err != nil {
		return nil, err
	}

	return &SendMessageResult{
		MessageID: message.ID,
		Message:   "Message sent successfully",
	}, nil
}

func (s *service) loadConversation(ctx context.Context, id uuid.UUID) (*models.Conversation, error) {
	conversation, err := s.repo.FindConversation(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "conversation not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load conversation")
	}
	return conversation, nil
}
