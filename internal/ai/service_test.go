package ai

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/kalaconnect/kalaconnect-backend/pkg/cache"
	pkgerrors "github.com/kalaconnect/kalaconnect-backend/pkg/errors"
	"github.com/kalaconnect/kalaconnect-backend/pkg/logger"
	"github.com/kalaconnect/kalaconnect-backend/pkg/vertex"
)

type fakeModels struct {
	textReply     string
	textErr       error
	textCalls     int
	imageData     []byte
	imageMime     string
	imageErr      error
	transcript    string
	transcribeErr error
}

func (f *fakeModels) GenerateText(context.Context, string) (string, error) {
	f.textCalls++
	if f.textErr != nil {
		return "", f.textErr
	}
	return f.textReply, nil
}

func (f *fakeModels) GenerateImage(context.Context, string) ([]byte, string, error) {
	if f.imageErr != nil {
		return nil, "", f.imageErr
	}
	return f.imageData, f.imageMime, nil
}

func (f *fakeModels) Transcribe(context.Context, []byte, string, string) (string, error) {
	if f.transcribeErr != nil {
		return "", f.transcribeErr
	}
	return f.transcript, nil
}

type fakeStore struct {
	bucket     string
	lastObject string
	lastMime   string
	lastData   []byte
	uploadErr  error
}

func (f *fakeStore) Upload(_ context.Context, _, object, contentType string, data []byte) error {
	if f.uploadErr != nil {
		return f.uploadErr
	}
	f.lastObject = object
	f.lastMime = contentType
	f.lastData = data
	return nil
}

func (f *fakeStore) DefaultBucket() string {
	return f.bucket
}

func newTestService(t *testing.T, models *fakeModels, store *fakeStore) Service {
	t.Helper()
	if store == nil {
		store = &fakeStore{bucket: "media"}
	}
	svc, err := NewService(models, store, cache.New[string](8, time.Minute),
		logger.New(logger.Options{ServiceName: "test", Output: io.Discard}))
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}
	return svc
}

func TestService_GenerateStory(t *testing.T) {
	models := &fakeModels{textReply: "Once upon a loom in Varanasi..."}
	svc := newTestService(t, models, nil)

	dto, err := svc.GenerateStory(context.Background(), GenerateStoryInput{
		Transcription:   "my grandmother taught me this weave",
		Language:        "hi",
		CulturalContext: map[string]any{"region": "Varanasi"},
	})
	if err != nil {
		t.Fatalf("GenerateStory returned error: %v", err)
	}
	if dto.Story != "Once upon a loom in Varanasi..." || dto.Language != "hi" {
		t.Fatalf("unexpected story %+v", dto)
	}

	if _, err := svc.GenerateStory(context.Background(), GenerateStoryInput{}); err == nil {
		t.Fatal("expected validation error for empty transcription")
	}
}

func TestService_GenerateStoryUsesCache(t *testing.T) {
	models := &fakeModels{textReply: "a story"}
	svc := newTestService(t, models, nil)

	input := GenerateStoryInput{Transcription: "same transcript"}
	for range 3 {
		if _, err := svc.GenerateStory(context.Background(), input); err != nil {
			t.Fatalf("GenerateStory returned error: %v", err)
		}
	}
	if models.textCalls != 1 {
		t.Fatalf("expected a single model call, got %d", models.textCalls)
	}
}

func TestService_GenerateStoryProviderFailure(t *testing.T) {
	models := &fakeModels{textErr: errors.New("deadline exceeded")}
	svc := newTestService(t, models, nil)

	_, err := svc.GenerateStory(context.Background(), GenerateStoryInput{Transcription: "hello"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeAnalysisUnavailable {
		t.Fatalf("expected analysis unavailable, got %v", err)
	}
}

func TestService_TranscribeAudio(t *testing.T) {
	models := &fakeModels{transcript: "hello world"}
	svc := newTestService(t, models, nil)

	dto, err := svc.TranscribeAudio(context.Background(), TranscribeAudioInput{
		Data:        []byte("riff"),
		ContentType: "audio/wav",
	})
	if err != nil {
		t.Fatalf("TranscribeAudio returned error: %v", err)
	}
	if dto.Transcription != "hello world" || dto.Language != "en-US" {
		t.Fatalf("unexpected transcription %+v", dto)
	}
}

func TestService_TranscribeAudioEmptyIsSentinel(t *testing.T) {
	models := &fakeModels{transcribeErr: vertex.ErrEmptyTranscript}
	svc := newTestService(t, models, nil)

	dto, err := svc.TranscribeAudio(context.Background(), TranscribeAudioInput{Data: []byte("riff")})
	if err != nil {
		t.Fatalf("silent audio must not error: %v", err)
	}
	if dto.Transcription != UnableToTranscribe {
		t.Fatalf("expected %q, got %q", UnableToTranscribe, dto.Transcription)
	}
}

func TestService_ProcessImage(t *testing.T) {
	models := &fakeModels{imageData: []byte("png-bytes"), imageMime: "image/png"}
	store := &fakeStore{bucket: "media"}
	svc := newTestService(t, models, store)

	dto, err := svc.ProcessImage(context.Background(), ProcessImageInput{
		ImageURL:  "gs://media/bowl.jpg",
		Operation: "enhance",
	})
	if err != nil {
		t.Fatalf("ProcessImage returned error: %v", err)
	}
	if dto.Operation != "enhance" || dto.Status != "success" {
		t.Fatalf("unexpected result %+v", dto)
	}
	if !strings.HasPrefix(store.lastObject, "studio/") || !strings.HasSuffix(store.lastObject, ".png") {
		t.Fatalf("unexpected object name %q", store.lastObject)
	}
	if !strings.HasPrefix(dto.ProcessedImageURL, "gs://media/studio/") {
		t.Fatalf("unexpected processed url %q", dto.ProcessedImageURL)
	}
	if string(store.lastData) != "png-bytes" {
		t.Fatal("generated bytes were not stored")
	}
}

func TestService_ProcessImageUnknownOperation(t *testing.T) {
	svc := newTestService(t, &fakeModels{}, nil)

	_, err := svc.ProcessImage(context.Background(), ProcessImageInput{
		ImageURL:  "gs://media/bowl.jpg",
		Operation: "watermark",
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestService_GenerateMarketInsights(t *testing.T) {
	models := &fakeModels{textReply: "1. CURRENT MARKET TRENDS ..."}
	svc := newTestService(t, models, nil)

	dto, err := svc.GenerateMarketInsights(context.Background(), MarketInsightsInput{
		Category: "pottery",
		Region:   "Rajasthan",
	})
	if err != nil {
		t.Fatalf("GenerateMarketInsights returned error: %v", err)
	}
	if dto.Region != "Rajasthan" || dto.Insights == "" {
		t.Fatalf("unexpected insights %+v", dto)
	}
}

func TestService_OptimizeSEO(t *testing.T) {
	models := &fakeModels{textReply: "```json\n{\"score\": 85, \"keywords\": [\"handcrafted\", \"artisan\"], " +
		"\"metaTitle\": \"Handcrafted Indian Art\", \"metaDescription\": \"Authentic artisan products.\", " +
		"\"improvedDescription\": \"Experience the rich heritage...\"}\n```"}
	svc := newTestService(t, models, nil)

	dto, err := svc.OptimizeSEO(context.Background(), SEOOptimizeInput{
		Description: "a clay bowl",
		Platform:    "google",
	})
	if err != nil {
		t.Fatalf("OptimizeSEO returned error: %v", err)
	}
	if dto.Score != 85 || len(dto.Keywords) != 2 || dto.MetaTitle != "Handcrafted Indian Art" {
		t.Fatalf("unexpected analysis %+v", dto)
	}
}

func TestService_OptimizeSEOValidation(t *testing.T) {
	svc := newTestService(t, &fakeModels{}, nil)

	if _, err := svc.OptimizeSEO(context.Background(), SEOOptimizeInput{Platform: "google"}); err == nil {
		t.Fatal("expected validation error for empty description")
	}
	if _, err := svc.OptimizeSEO(context.Background(), SEOOptimizeInput{Description: "x", Platform: "myspace"}); err == nil {
		t.Fatal("expected validation error for unknown platform")
	}
}

func TestService_OptimizeSEOUnparseableReply(t *testing.T) {
	models := &fakeModels{textReply: "I cannot help with that."}
	svc := newTestService(t, models, nil)

	_, err := svc.OptimizeSEO(context.Background(), SEOOptimizeInput{Description: "bowl", Platform: "amazon"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeAnalysisUnavailable {
		t.Fatalf("expected analysis unavailable, got %v", err)
	}
}

func TestService_GenerateEmailCampaign(t *testing.T) {
	models := &fakeModels{textReply: `{"subjectSuggestions": ["Discover Authentic Handicrafts", ` +
		`"Traditional Artistry Meets Modern Style", "Handmade Treasures"], "emailBody": "Dear Valued Customer, ..."}`}
	svc := newTestService(t, models, nil)

	dto, err := svc.GenerateEmailCampaign(context.Background(), EmailCampaignInput{
		CampaignType:   "seasonal",
		TargetAudience: "urban millennials",
	})
	if err != nil {
		t.Fatalf("GenerateEmailCampaign returned error: %v", err)
	}
	if len(dto.SubjectSuggestions) != 3 || dto.EmailBody == "" {
		t.Fatalf("unexpected campaign %+v", dto)
	}

	if _, err := svc.GenerateEmailCampaign(context.Background(), EmailCampaignInput{
		CampaignType:   "flash_sale",
		TargetAudience: "anyone",
	}); err == nil {
		t.Fatal("expected validation error for unknown campaign type")
	}
}
