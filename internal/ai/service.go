package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/kalaconnect/kalaconnect-backend/pkg/cache"
	"github.com/kalaconnect/kalaconnect-backend/pkg/enums"
	pkgerrors "github.com/kalaconnect/kalaconnect-backend/pkg/errors"
	"github.com/kalaconnect/kalaconnect-backend/pkg/logger"
	"github.com/kalaconnect/kalaconnect-backend/pkg/vertex"
)

// UnableToTranscribe is returned when recognition finds no speech. It is a
// result, not an error: silent uploads are a normal case.
const UnableToTranscribe = "unable to transcribe"

// studioPrefix is where processed studio images land in the bucket.
const studioPrefix = "studio/"

// Service exposes the AI studio operations. Provider failures surface as
// typed errors; there is no canned-response fallback.
type Service interface {
	GenerateStory(ctx context.Context, input GenerateStoryInput) (*StoryDTO, error)
	TranscribeAudio(ctx context.Context, input TranscribeAudioInput) (*TranscriptionDTO, error)
	ProcessImage(ctx context.Context, input ProcessImageInput) (*ProcessedImageDTO, error)
	GenerateMarketInsights(ctx context.Context, input MarketInsightsInput) (*MarketInsightsDTO, error)
	OptimizeSEO(ctx context.Context, input SEOOptimizeInput) (*SEOOptimizeDTO, error)
	GenerateEmailCampaign(ctx context.Context, input EmailCampaignInput) (*EmailCampaignDTO, error)
}

// GenerateStoryInput holds the story generation payload.
type GenerateStoryInput struct {
	Transcription   string
	Language        string
	CulturalContext map[string]any
}

// StoryDTO carries a generated story.
type StoryDTO struct {
	Story    string `json:"story"`
	Language string `json:"language"`
}

// TranscribeAudioInput holds an uploaded audio clip.
type TranscribeAudioInput struct {
	Data        []byte
	ContentType string
	Language    string
}

// TranscriptionDTO carries a transcription result.
type TranscriptionDTO struct {
	Transcription string `json:"transcription"`
	Language      string `json:"language"`
}

// ProcessImageInput holds a studio image operation request.
type ProcessImageInput struct {
	ImageURL  string
	Operation string
}

// ProcessedImageDTO reports a studio image result.
type ProcessedImageDTO struct {
	Operation         string `json:"operation"`
	SourceImageURL    string `json:"source_image_url"`
	ProcessedImageURL string `json:"processed_image_url"`
	Status            string `json:"status"`
}

// MarketInsightsInput holds the insights request.
type MarketInsightsInput struct {
	Category       string
	Region         string
	ArtisanContext map[string]any
}

// MarketInsightsDTO carries generated market insights.
type MarketInsightsDTO struct {
	Insights string `json:"insights"`
	Category string `json:"category"`
	Region   string `json:"region"`
}

// SEOOptimizeInput holds the SEO analysis request.
type SEOOptimizeInput struct {
	Description string
	Platform    string
}

// SEOOptimizeDTO mirrors the SEO analysis contract.
type SEOOptimizeDTO struct {
	Score               int      `json:"score"`
	Keywords            []string `json:"keywords"`
	MetaTitle           string   `json:"metaTitle"`
	MetaDescription     string   `json:"metaDescription"`
	ImprovedDescription string   `json:"improvedDescription"`
}

// EmailCampaignInput holds the campaign generation request.
type EmailCampaignInput struct {
	CampaignType   string
	TargetAudience string
}

// EmailCampaignDTO mirrors the campaign contract.
type EmailCampaignDTO struct {
	SubjectSuggestions []string `json:"subjectSuggestions"`
	EmailBody          string   `json:"emailBody"`
}

type generativeModel interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
	GenerateImage(ctx context.Context, prompt string) ([]byte, string, error)
	Transcribe(ctx context.Context, data []byte, mimeType, languageCode string) (string, error)
}

type imageStore interface {
	Upload(ctx context.Context, bucket, object, contentType string, data []byte) error
	DefaultBucket() string
}

// service implements the AI studio.
type service struct {
	models  generativeModel
	storage imageStore
	texts   *cache.Cache[string]
	logg    *logger.Logger
}

// NewService constructs the AI service. The text cache is optional.
func NewService(models generativeModel, storage imageStore, texts *cache.Cache[string], logg *logger.Logger) (Service, error) {
	if models == nil {
		return nil, fmt.Errorf("generative model client required")
	}
	if storage == nil {
		return nil, fmt.Errorf("image store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{models: models, storage: storage, texts: texts, logg: logg}, nil
}

// GenerateStory turns an audio transcription into a marketing story.
func (s *service) GenerateStory(ctx context.Context, input GenerateStoryInput) (*StoryDTO, error) {
	if strings.TrimSpace(input.Transcription) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transcription cannot be empty")
	}
	language := input.Language
	if language == "" {
		language = "en"
	}

	prompt := fmt.Sprintf(storyPromptTemplate, input.Transcription, language, contextJSON(input.CulturalContext))
	story, err := s.cachedGenerate(ctx, "story", prompt)
	if err != nil {
		return nil, err
	}
	return &StoryDTO{Story: story, Language: language}, nil
}

// TranscribeAudio runs speech recognition over an uploaded clip. A clip
// with no recognizable speech yields the sentinel text, not an error.
func (s *service) TranscribeAudio(ctx context.Context, input TranscribeAudioInput) (*TranscriptionDTO, error) {
	if len(input.Data) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "audio data required")
	}
	language := input.Language
	if language == "" {
		language = "en-US"
	}

	transcript, err := s.models.Transcribe(ctx, input.Data, input.ContentType, language)
	if err != nil {
		if errors.Is(err, vertex.ErrEmptyTranscript) {
			return &TranscriptionDTO{Transcription: UnableToTranscribe, Language: language}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeAnalysisUnavailable, err, "speech recognition failed")
	}
	return &TranscriptionDTO{Transcription: transcript, Language: language}, nil
}

// ProcessImage runs a studio operation and stores the rendered image.
func (s *service) ProcessImage(ctx context.Context, input ProcessImageInput) (*ProcessedImageDTO, error) {
	if strings.TrimSpace(input.ImageURL) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "image_url required")
	}
	operation, err := enums.ParseImageOperation(input.Operation)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}

	data, mimeType, err := s.models.GenerateImage(ctx, imageOperationPrompts[operation])
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeAnalysisUnavailable, err, fmt.Sprintf("image generation failed (operation=%s)", operation))
	}

	objectName := studioPrefix + uuid.NewString() + extensionFor(mimeType)
	if err := s.storage.Upload(ctx, "", objectName, mimeType, data); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "storing processed image")
	}

	return &ProcessedImageDTO{
		Operation:         operation.String(),
		SourceImageURL:    input.ImageURL,
		ProcessedImageURL: fmt.Sprintf("gs://%s/%s", s.storage.DefaultBucket(), objectName),
		Status:            "success",
	}, nil
}

// GenerateMarketInsights produces category/region market analysis.
func (s *service) GenerateMarketInsights(ctx context.Context, input MarketInsightsInput) (*MarketInsightsDTO, error) {
	if strings.TrimSpace(input.Category) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category cannot be empty")
	}
	region := input.Region
	if strings.TrimSpace(region) == "" {
		region = "India"
	}

	prompt := fmt.Sprintf(marketInsightsPromptTemplate, input.Category, region, contextJSON(input.ArtisanContext))
	insights, err := s.cachedGenerate(ctx, "insights", prompt)
	if err != nil {
		return nil, err
	}
	return &MarketInsightsDTO{Insights: insights, Category: input.Category, Region: region}, nil
}

// OptimizeSEO scores and rewrites a product description for the platform.
func (s *service) OptimizeSEO(ctx context.Context, input SEOOptimizeInput) (*SEOOptimizeDTO, error) {
	if strings.TrimSpace(input.Description) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "description cannot be empty")
	}
	platform, err := enums.ParseSEOPlatform(input.Platform)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}

	prompt := fmt.Sprintf(seoPromptTemplate, platform, input.Description)
	raw, err := s.cachedGenerate(ctx, "seo", prompt)
	if err != nil {
		return nil, err
	}

	var dto SEOOptimizeDTO
	if err := decodeModelJSON(raw, &dto); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeAnalysisUnavailable, err, "seo analysis was not parseable")
	}
	return &dto, nil
}

// GenerateEmailCampaign drafts subject lines and a body for the campaign.
func (s *service) GenerateEmailCampaign(ctx context.Context, input EmailCampaignInput) (*EmailCampaignDTO, error) {
	campaignType, err := enums.ParseCampaignType(input.CampaignType)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}
	if strings.TrimSpace(input.TargetAudience) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "target audience cannot be empty")
	}

	prompt := fmt.Sprintf(emailCampaignPromptTemplate, campaignType, input.TargetAudience)
	raw, err := s.cachedGenerate(ctx, "campaign", prompt)
	if err != nil {
		return nil, err
	}

	var dto EmailCampaignDTO
	if err := decodeModelJSON(raw, &dto); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeAnalysisUnavailable, err, "campaign content was not parseable")
	}
	return &dto, nil
}

// cachedGenerate serves repeated prompts from the bounded cache.
func (s *service) cachedGenerate(ctx context.Context, kind, prompt string) (string, error) {
	key := cache.Key(kind, prompt)
	if s.texts != nil {
		if text, ok := s.texts.Get(key); ok {
			return text, nil
		}
	}

	text, err := s.models.GenerateText(ctx, prompt)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeAnalysisUnavailable, err, fmt.Sprintf("text generation failed (kind=%s)", kind))
	}
	if s.texts != nil {
		s.texts.Add(key, text)
	}
	return text, nil
}

// decodeModelJSON tolerates the code fences models like to wrap JSON in.
func decodeModelJSON(raw string, out any) error {
	text := strings.TrimSpace(raw)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	if start := strings.Index(text, "{"); start > 0 {
		text = text[start:]
	}
	if end := strings.LastIndex(text, "}"); end >= 0 && end < len(text)-1 {
		text = text[:end+1]
	}
	return json.Unmarshal([]byte(text), out)
}

func extensionFor(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ".png"
	}
}
