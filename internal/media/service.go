package media

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	product "github.com/kalaconnect/kalaconnect-backend/internal/products"
	"github.com/kalaconnect/kalaconnect-backend/pkg/db"
	"github.com/kalaconnect/kalaconnect-backend/pkg/db/models"
	"github.com/kalaconnect/kalaconnect-backend/pkg/enums"
	pkgerrors "github.com/kalaconnect/kalaconnect-backend/pkg/errors"
	"github.com/kalaconnect/kalaconnect-backend/pkg/logger"
)

// Drafts minted from media analysis are parked on the system account
// until an artisan claims them.
var systemArtisanID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

const systemArtisanName = "KalaConnect AI"

// ProcessedResults mirrors the processor callback body.
type ProcessedResults struct {
	MediaType            string         `json:"media_type"`
	Transcription        *string        `json:"transcription,omitempty"`
	VisionAnalysis       map[string]any `json:"vision_analysis,omitempty"`
	GeneratedDescription *string        `json:"generated_description,omitempty"`
	Embeddings           []float64      `json:"embeddings,omitempty"`
	ThumbnailPath        *string        `json:"thumbnail_path,omitempty"`
	CreateProduct        bool           `json:"create_product"`
}

// RecordProcessedInput is the callback sink payload.
type RecordProcessedInput struct {
	EventID          string
	GCSPath          string
	ProcessedResults ProcessedResults
}

// EnrichmentDTO reports the stored enrichment.
type EnrichmentDTO struct {
	ID        uuid.UUID  `json:"id"`
	EventID   string     `json:"event_id"`
	GCSPath   string     `json:"gcs_path"`
	MediaType string     `json:"media_type"`
	ProductID *uuid.UUID `json:"product_id,omitempty"`
}

// Service persists processor callback results.
type Service interface {
	RecordProcessed(ctx context.Context, input RecordProcessedInput) (*EnrichmentDTO, error)
}

type productCreator interface {
	CreateProduct(ctx context.Context, artisanID uuid.UUID, artisanName string, input product.CreateProductInput) (*product.ProductDTO, error)
}

// service implements the media enrichment sink.
type service struct {
	repo     *Repository
	products productCreator
	logg     *logger.Logger
}

// NewService constructs a media service instance.
func NewService(repo *Repository, products productCreator, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("media repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product service required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, products: products, logg: logg}, nil
}

// RecordProcessed stores the callback results, creating a draft listing
// when the analysis asked for one. Redelivered callbacks for an already
// stored event return the existing row unchanged.
func (s *service) RecordProcessed(ctx context.Context, input RecordProcessedInput) (*EnrichmentDTO, error) {
	if strings.TrimSpace(input.EventID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "event_id required")
	}
	if strings.TrimSpace(input.GCSPath) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "gcs_path required")
	}
	mediaType, err := enums.ParseMediaType(input.ProcessedResults.MediaType)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}

	if existing, err := s.repo.FindByEventID(ctx, input.EventID); err == nil {
		return newEnrichmentDTO(existing), nil
	} else if !db.IsNotFound(err) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load enrichment")
	}

	enrichment := &models.MediaEnrichment{
		ID:                   uuid.New(),
		EventID:              input.EventID,
		GCSPath:              input.GCSPath,
		MediaType:            mediaType,
		Transcription:        input.ProcessedResults.Transcription,
		GeneratedDescription: input.ProcessedResults.GeneratedDescription,
		Embeddings:           input.ProcessedResults.Embeddings,
	}
	if input.ProcessedResults.ThumbnailPath != nil {
		enrichment.ThumbnailPath = input.ProcessedResults.ThumbnailPath
	}
	if len(input.ProcessedResults.VisionAnalysis) > 0 {
		raw, err := json.Marshal(input.ProcessedResults.VisionAnalysis)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "encoding vision analysis")
		}
		encoded := string(raw)
		enrichment.VisionAnalysis = &encoded
	}

	if input.ProcessedResults.CreateProduct {
		if productID := s.createDraftListing(ctx, input, mediaType); productID != nil {
			enrichment.ProductID = productID
		}
	}

	created, err := s.repo.CreateEnrichment(ctx, enrichment)
	if err != nil {
		// A concurrent redelivery may have landed the row first.
		if db.IsUniqueViolation(err, "") {
			existing, findErr := s.repo.FindByEventID(ctx, input.EventID)
			if findErr != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, findErr, "db: reload enrichment")
			}
			return newEnrichmentDTO(existing), nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert enrichment")
	}
	return newEnrichmentDTO(created), nil
}

// createDraftListing is best effort: the enrichment row still lands when
// draft creation fails, so nothing is lost for a later manual pass.
func (s *service) createDraftListing(ctx context.Context, input RecordProcessedInput, mediaType enums.MediaType) *uuid.UUID {
	description := ""
	if input.ProcessedResults.GeneratedDescription != nil {
		description = *input.ProcessedResults.GeneratedDescription
	}
	if strings.TrimSpace(description) == "" {
		s.logg.Warn(ctx, "create_product requested without a generated description")
		return nil
	}

	draftInput := product.CreateProductInput{
		Title:       draftTitle(description),
		Description: description,
		Price:       decimal.Zero,
		Category:    enums.ProductCategoryOther,
		Status:      enums.ProductStatusDraft,
	}
	if mediaType == enums.MediaTypeImage {
		draftInput.Images = []string{input.GCSPath}
	}

	dto, err := s.products.CreateProduct(ctx, systemArtisanID, systemArtisanName, draftInput)
	if err != nil {
		s.logg.Error(ctx, "failed to create draft listing", err)
		return nil
	}
	return &dto.ID
}

// draftTitle derives a short listing title from the first sentence of the
// generated description.
func draftTitle(description string) string {
	title := strings.TrimSpace(description)
	if idx := strings.IndexAny(title, ".\n"); idx > 0 {
		title = title[:idx]
	}
	if len(title) > 80 {
		title = strings.TrimSpace(title[:80])
	}
	if title == "" {
		return "Draft listing"
	}
	return title
}

func newEnrichmentDTO(enrichment *models.MediaEnrichment) *EnrichmentDTO {
	return &EnrichmentDTO{
		ID:        enrichment.ID,
		EventID:   enrichment.EventID,
		GCSPath:   enrichment.GCSPath,
		MediaType: string(enrichment.MediaType),
		ProductID: enrichment.ProductID,
	}
}
