package processor

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"path"
	"strings"

	"github.com/kalaconnect/kalaconnect-backend/pkg/enums"
	"github.com/kalaconnect/kalaconnect-backend/pkg/vertex"
)

const (
	imageDescriptionPrompt = "Describe this handcrafted artisan product in two or three sentences suitable for a marketplace listing. Mention materials, craft technique and likely cultural origin when visible."
	imageLabelsPrompt      = "List up to eight short labels for the objects, materials and techniques visible in this image. Reply with a comma-separated list only."
	videoScenesPrompt      = "Summarize the distinct scenes in this video as a short comma-separated list."
	videoDescriptionPrompt = "Describe the craft or product shown in this video in two or three sentences for a marketplace listing."
	videoTranscriptPrompt  = "Transcribe the spoken audio in this video verbatim. Reply with the transcript only, or an empty reply if there is no speech."
)

type modelAPI interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
	AnalyzeImage(ctx context.Context, prompt, mimeType string, data []byte) (string, error)
	AnalyzeVideo(ctx context.Context, prompt, mimeType, gcsURI string) (string, error)
	Embed(ctx context.Context, input vertex.EmbedInput) ([]float64, error)
	Transcribe(ctx context.Context, data []byte, mimeType, languageCode string) (string, error)
}

// VertexAnalyzer produces type-specific enrichment through the model APIs.
// Partial results are discarded: any provider failure fails the whole
// analysis.
type VertexAnalyzer struct {
	models       modelAPI
	languageCode string
}

func NewVertexAnalyzer(models modelAPI, languageCode string) (*VertexAnalyzer, error) {
	if models == nil {
		return nil, errors.New("model api is required")
	}
	if languageCode == "" {
		languageCode = "en-US"
	}
	return &VertexAnalyzer{models: models, languageCode: languageCode}, nil
}

func (a *VertexAnalyzer) Analyze(ctx context.Context, media *Media, mediaType enums.MediaType) (*ProcessedResult, error) {
	if media == nil {
		return nil, errors.New("media is required")
	}

	switch mediaType {
	case enums.MediaTypeAudio:
		return a.analyzeAudio(ctx, media)
	case enums.MediaTypeImage:
		return a.analyzeImage(ctx, media)
	case enums.MediaTypeVideo:
		return a.analyzeVideo(ctx, media)
	default:
		return nil, fmt.Errorf("no analysis for media type %q", mediaType)
	}
}

func (a *VertexAnalyzer) analyzeAudio(ctx context.Context, media *Media) (*ProcessedResult, error) {
	transcript, err := a.models.Transcribe(ctx, media.Data, contentType(media), a.languageCode)
	if err != nil {
		if errors.Is(err, vertex.ErrEmptyTranscript) {
			transcript = UnableToTranscribe
		} else {
			return nil, err
		}
	}
	return &ProcessedResult{
		MediaType:     enums.MediaTypeAudio,
		Transcription: &transcript,
	}, nil
}

func (a *VertexAnalyzer) analyzeImage(ctx context.Context, media *Media) (*ProcessedResult, error) {
	mimeType := contentType(media)

	description, err := a.models.AnalyzeImage(ctx, imageDescriptionPrompt, mimeType, media.Data)
	if err != nil {
		return nil, err
	}

	rawLabels, err := a.models.AnalyzeImage(ctx, imageLabelsPrompt, mimeType, media.Data)
	if err != nil {
		return nil, err
	}

	embeddings, err := a.models.Embed(ctx, vertex.EmbedInput{ImageData: media.Data})
	if err != nil {
		return nil, err
	}

	return &ProcessedResult{
		MediaType:            enums.MediaTypeImage,
		VisionAnalysis:       &VisionAnalysis{Labels: splitList(rawLabels)},
		GeneratedDescription: &description,
		Embeddings:           embeddings,
	}, nil
}

func (a *VertexAnalyzer) analyzeVideo(ctx context.Context, media *Media) (*ProcessedResult, error) {
	mimeType := contentType(media)
	uri := media.URI()

	transcript, err := a.models.AnalyzeVideo(ctx, videoTranscriptPrompt, mimeType, uri)
	if err != nil {
		return nil, err
	}

	rawScenes, err := a.models.AnalyzeVideo(ctx, videoScenesPrompt, mimeType, uri)
	if err != nil {
		return nil, err
	}

	description, err := a.models.AnalyzeVideo(ctx, videoDescriptionPrompt, mimeType, uri)
	if err != nil {
		return nil, err
	}

	return &ProcessedResult{
		MediaType:            enums.MediaTypeVideo,
		Transcription:        &transcript,
		VisionAnalysis:       &VisionAnalysis{Scenes: splitList(rawScenes)},
		GeneratedDescription: &description,
	}, nil
}

func contentType(media *Media) string {
	if media.ContentType != "" {
		return media.ContentType
	}
	if guessed := mime.TypeByExtension(strings.ToLower(path.Ext(media.ObjectName))); guessed != "" {
		return guessed
	}
	return "application/octet-stream"
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
