package controllers

import (
	"io"
	"net/http"
	"strings"

	"github.com/kalaconnect/kalaconnect-backend/api/responses"
	"github.com/kalaconnect/kalaconnect-backend/api/validators"
	aisvc "github.com/kalaconnect/kalaconnect-backend/internal/ai"
	pkgerrors "github.com/kalaconnect/kalaconnect-backend/pkg/errors"
	"github.com/kalaconnect/kalaconnect-backend/pkg/logger"
)

// maxAudioUploadBytes caps transcription uploads at 32MB.
const maxAudioUploadBytes = 32 << 20

// GenerateStory turns a transcription into a marketing story.
func GenerateStory(svc aisvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload generateStoryRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.GenerateStory(r.Context(), aisvc.GenerateStoryInput{
			Transcription:   payload.AudioTranscription,
			Language:        payload.Language,
			CulturalContext: payload.CulturalContext,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// TranscribeAudio accepts a multipart audio upload and returns its transcript.
func TranscribeAudio(svc aisvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(maxAudioUploadBytes); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart body"))
			return
		}

		file, header, err := r.FormFile("audio")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "audio file is required"))
			return
		}
		defer func() { _ = file.Close() }()

		data, err := io.ReadAll(io.LimitReader(file, maxAudioUploadBytes))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "reading audio upload"))
			return
		}

		result, err := svc.TranscribeAudio(r.Context(), aisvc.TranscribeAudioInput{
			Data:        data,
			ContentType: header.Header.Get("Content-Type"),
			Language:    strings.TrimSpace(r.FormValue("language")),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// ProcessImage runs a digital studio operation on a stored image.
func ProcessImage(svc aisvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload processImageRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ProcessImage(r.Context(), aisvc.ProcessImageInput{
			ImageURL:  payload.ImageURL,
			Operation: payload.Operation,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// GenerateMarketInsights produces category/region market analysis.
func GenerateMarketInsights(svc aisvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload marketInsightsRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.GenerateMarketInsights(r.Context(), aisvc.MarketInsightsInput{
			Category:       payload.Category,
			Region:         payload.Region,
			ArtisanContext: payload.ArtisanContext,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// OptimizeSEO scores and rewrites a product description.
func OptimizeSEO(svc aisvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload seoOptimizeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.OptimizeSEO(r.Context(), aisvc.SEOOptimizeInput{
			Description: payload.Description,
			Platform:    payload.Platform,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// GenerateEmailCampaign drafts campaign subject lines and a body.
func GenerateEmailCampaign(svc aisvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload emailCampaignRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.GenerateEmailCampaign(r.Context(), aisvc.EmailCampaignInput{
			CampaignType:   payload.CampaignType,
			TargetAudience: payload.TargetAudience,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

type generateStoryRequest struct {
	AudioTranscription string         `json:"audio_transcription" validate:"required"`
	Language           string         `json:"language,omitempty"`
	CulturalContext    map[string]any `json:"cultural_context,omitempty"`
}

type processImageRequest struct {
	ImageURL  string `json:"image_url" validate:"required"`
	Operation string `json:"operation" validate:"required"`
}

type marketInsightsRequest struct {
	Category       string         `json:"category" validate:"required"`
	Region         string         `json:"region,omitempty"`
	ArtisanContext map[string]any `json:"artisan_context,omitempty"`
}

type seoOptimizeRequest struct {
	Description string `json:"description" validate:"required"`
	Platform    string `json:"platform" validate:"required"`
}

type emailCampaignRequest struct {
	CampaignType   string `json:"campaignType" validate:"required"`
	TargetAudience string `json:"targetAudience" validate:"required"`
}
