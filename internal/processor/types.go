// Package processor implements the media event pipeline: an idempotent
// orchestrator that turns GCS object-finalize notifications into AI
// enrichment results delivered to the backend callback sink.
package processor

import (
	"context"
	"time"

	"github.com/kalaconnect/kalaconnect-backend/pkg/enums"
)

// UnableToTranscribe is the sentinel transcription for audio the provider
// could not understand. It is a result, not a failure.
const UnableToTranscribe = "unable to transcribe"

// Record is the per-event status row kept in the status store.
type Record struct {
	Status      enums.EventStatus `json:"status"`
	StartedAt   *time.Time        `json:"started_at,omitempty"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
	FailedAt    *time.Time        `json:"failed_at,omitempty"`
	Error       string            `json:"error,omitempty"`
	Bucket      string            `json:"bucket,omitempty"`
	ObjectName  string            `json:"object_name,omitempty"`
}

// VisionAnalysis is the structured image/video analysis payload.
type VisionAnalysis struct {
	Labels []string `json:"labels,omitempty"`
	Scenes []string `json:"scenes,omitempty"`
}

// ProcessedResult is the enrichment assembled for one event and handed to
// the callback dispatcher. create_product is always serialized, even when
// false, because the sink branches on it.
type ProcessedResult struct {
	MediaType            enums.MediaType `json:"media_type"`
	Transcription        *string         `json:"transcription,omitempty"`
	VisionAnalysis       *VisionAnalysis `json:"vision_analysis,omitempty"`
	GeneratedDescription *string         `json:"generated_description,omitempty"`
	Embeddings           []float64       `json:"embeddings,omitempty"`
	ThumbnailPath        *string         `json:"thumbnail_path,omitempty"`
	CreateProduct        bool            `json:"create_product"`
}

// Media is a fetched object: bytes plus the metadata analysis needs.
type Media struct {
	Bucket      string
	ObjectName  string
	ContentType string
	Data        []byte
}

// URI renders the gs:// path of the fetched object.
func (m *Media) URI() string {
	return "gs://" + m.Bucket + "/" + m.ObjectName
}

// StatusStore is the key-value idempotency store for processing events.
type StatusStore interface {
	// Get returns the record for the event id, or nil when absent.
	Get(ctx context.Context, eventID string) (*Record, error)
	// Claim creates the record only if none exists yet. It returns false
	// when another claimant already holds the event.
	Claim(ctx context.Context, eventID string, rec *Record) (bool, error)
	// Reclaim overwrites the record only while it still equals prev,
	// returning false when a concurrent claimant got there first.
	Reclaim(ctx context.Context, eventID string, prev, next *Record) (bool, error)
	// Update overwrites the record unconditionally.
	Update(ctx context.Context, eventID string, rec *Record) error
}

// Fetcher retrieves the uploaded object's bytes.
type Fetcher interface {
	Fetch(ctx context.Context, bucket, objectName string) (*Media, error)
}

// Analyzer produces type-specific enrichment for fetched media. It never
// touches the status store.
type Analyzer interface {
	Analyze(ctx context.Context, media *Media, mediaType enums.MediaType) (*ProcessedResult, error)
}

// Thumbnailer is an optional collaborator producing a thumbnail object
// path. A nil path is not a failure.
type Thumbnailer interface {
	Thumbnail(ctx context.Context, media *Media, mediaType enums.MediaType) (*string, error)
}

// Dispatcher delivers the processed result to the callback sink.
type Dispatcher interface {
	Dispatch(ctx context.Context, eventID, gcsPath string, result *ProcessedResult) error
}
