package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kalaconnect/kalaconnect-backend/api/middleware"
	"github.com/kalaconnect/kalaconnect-backend/api/responses"
	"github.com/kalaconnect/kalaconnect-backend/api/validators"
	conversationsvc "github.com/kalaconnect/kalaconnect-backend/internal/conversations"
	pkgerrors "github.com/kalaconnect/kalaconnect-backend/pkg/errors"
	"github.com/kalaconnect/kalaconnect-backend/pkg/logger"
)

// ListConversations serves the authenticated user's threads.
func ListConversations(svc conversationsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := requireUser(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.ListConversations(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, rows)
	}
}

// ListMessages serves a thread's messages to its participants.
func ListMessages(svc conversationsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := requireUser(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		conversationID, err := uuid.Parse(chi.URLParam(r, "conversationID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid conversation id"))
			return
		}

		rows, err := svc.ListMessages(r.Context(), userID, conversationID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, rows)
	}
}

// SendMessage posts a message into one of the user's threads.
func SendMessage(svc conversationsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := requireUser(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload sendMessageRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		conversationID, err := uuid.Parse(payload.ConversationID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid conversation id"))
			return
		}

		result, err := svc.SendMessage(r.Context(), userID, middleware.UserNameFromContext(r.Context()), conversationsvc.SendMessageInput{
			ConversationID: conversationID,
			Content:        payload.Content,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

type sendMessageRequest struct {
	ConversationID string `json:"conversation_id" validate:"required"`
	Content        string `json:"content" validate:"required"`
}
