package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/kalaconnect/kalaconnect-backend/pkg/enums"
)

// MediaEnrichment persists the analysis results delivered by the media
// processor callback, keyed by the originating event id.
type MediaEnrichment struct {
	ID                   uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	EventID              string          `gorm:"column:event_id;not null;uniqueIndex"`
	GCSPath              string          `gorm:"column:gcs_path;not null"`
	MediaType            enums.MediaType `gorm:"column:media_type;not null"`
	Transcription        *string         `gorm:"column:transcription"`
	VisionAnalysis       *string         `gorm:"column:vision_analysis"`
	GeneratedDescription *string         `gorm:"column:generated_description"`
	Embeddings           []float64       `gorm:"column:embeddings;serializer:json"`
	ThumbnailPath        *string         `gorm:"column:thumbnail_path"`
	ProductID            *uuid.UUID      `gorm:"column:product_id;type:uuid"`
	CreatedAt            time.Time       `gorm:"column:created_at;autoCreateTime"`
}
