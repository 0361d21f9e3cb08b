package controllers

import (
	"net/http"

	"github.com/kalaconnect/kalaconnect-backend/api/responses"
	"github.com/kalaconnect/kalaconnect-backend/api/validators"
	mediasvc "github.com/kalaconnect/kalaconnect-backend/internal/media"
	"github.com/kalaconnect/kalaconnect-backend/pkg/logger"
)

// MediaCallback is the sink for the media processor. The processor treats
// any non-200 as a failure and relies on redelivery, so the handler must
// stay idempotent.
func MediaCallback(svc mediasvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload mediaCallbackRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.RecordProcessed(r.Context(), mediasvc.RecordProcessedInput{
			EventID:          payload.EventID,
			GCSPath:          payload.GCSPath,
			ProcessedResults: payload.ProcessedResults,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

type mediaCallbackRequest struct {
	EventID          string                    `json:"event_id" validate:"required"`
	GCSPath          string                    `json:"gcs_path" validate:"required"`
	ProcessedResults mediasvc.ProcessedResults `json:"processed_results" validate:"required"`
}
