package processor

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/kalaconnect/kalaconnect-backend/pkg/enums"
	"github.com/kalaconnect/kalaconnect-backend/pkg/errors"
	"github.com/kalaconnect/kalaconnect-backend/pkg/logger"
	"github.com/kalaconnect/kalaconnect-backend/pkg/metrics"
)

// Outcome is the structured, non-throwing result of handling one event.
type Outcome struct {
	Skipped   bool
	Result    *ProcessedResult
	Err       error
	Retryable bool
}

// Orchestrator drives one upload notification from receipt to terminal
// state, tolerating at-least-once redelivery.
type Orchestrator struct {
	store       StatusStore
	fetcher     Fetcher
	analyzer    Analyzer
	thumbnailer Thumbnailer
	dispatcher  Dispatcher
	logg        *logger.Logger
	metrics     *metrics.PipelineMetrics
	now         func() time.Time
}

// NewOrchestrator wires the pipeline. thumbnailer and pipelineMetrics are
// optional; everything else is required.
func NewOrchestrator(
	store StatusStore,
	fetcher Fetcher,
	analyzer Analyzer,
	thumbnailer Thumbnailer,
	dispatcher Dispatcher,
	logg *logger.Logger,
	pipelineMetrics *metrics.PipelineMetrics,
) (*Orchestrator, error) {
	if store == nil {
		return nil, stderrors.New("status store is required")
	}
	if fetcher == nil {
		return nil, stderrors.New("fetcher is required")
	}
	if analyzer == nil {
		return nil, stderrors.New("analyzer is required")
	}
	if dispatcher == nil {
		return nil, stderrors.New("dispatcher is required")
	}
	if logg == nil {
		return nil, stderrors.New("logger is required")
	}
	return &Orchestrator{
		store:       store,
		fetcher:     fetcher,
		analyzer:    analyzer,
		thumbnailer: thumbnailer,
		dispatcher:  dispatcher,
		logg:        logg,
		metrics:     pipelineMetrics,
		now:         time.Now,
	}, nil
}

// Handle processes one upload notification. On return (non-skipped path)
// the status store holds a terminal state for the event.
func (o *Orchestrator) Handle(ctx context.Context, bucket, objectName, eventID string) Outcome {
	if eventID == "" {
		err := errors.New(errors.CodeValidation, "event id is required")
		return Outcome{Err: err, Retryable: false}
	}

	ctx = o.logg.WithFields(ctx, map[string]any{
		"event_id": eventID,
		"bucket":   bucket,
		"object":   objectName,
	})
	started := o.now()

	// Idempotency guard: redelivered events that are in flight or already
	// done are absorbed without further side effects.
	existing, err := o.store.Get(ctx, eventID)
	if err != nil {
		wrapped := errors.Wrap(errors.CodeDependency, err, fmt.Sprintf("reading event status: %v", err))
		o.logg.Error(ctx, "status store read failed", err)
		return Outcome{Err: wrapped, Retryable: errors.IsRetryable(wrapped)}
	}
	if existing != nil && (existing.Status == enums.EventStatusProcessing || existing.Status == enums.EventStatusCompleted) {
		o.logg.Info(ctx, "event already handled, skipping")
		o.metrics.IncSkipped()
		return Outcome{Skipped: true}
	}

	claimed, err := o.claim(ctx, eventID, existing, bucket, objectName, started)
	if err != nil {
		wrapped := errors.Wrap(errors.CodeDependency, err, fmt.Sprintf("claiming event: %v", err))
		o.logg.Error(ctx, "claiming event failed", err)
		return Outcome{Err: wrapped, Retryable: errors.IsRetryable(wrapped)}
	}
	if !claimed {
		o.logg.Info(ctx, "event claimed by a concurrent delivery, skipping")
		o.metrics.IncSkipped()
		return Outcome{Skipped: true}
	}

	mediaType := Classify(objectName)
	if mediaType == enums.MediaTypeUnsupported {
		err := errors.New(errors.CodeUnsupportedMedia, fmt.Sprintf("unsupported media type for object %q", objectName))
		return o.fail(ctx, eventID, bucket, objectName, started, string(mediaType), err)
	}

	media, err := o.fetcher.Fetch(ctx, bucket, objectName)
	if err != nil {
		wrapped := errors.Wrap(errors.CodeFetchFailure, err, fmt.Sprintf("fetching object: %v", err))
		return o.fail(ctx, eventID, bucket, objectName, started, string(mediaType), wrapped)
	}

	result, err := o.analyzer.Analyze(ctx, media, mediaType)
	if err != nil {
		wrapped := errors.Wrap(errors.CodeAnalysisUnavailable, err, fmt.Sprintf("analyzing media: %v", err))
		return o.fail(ctx, eventID, bucket, objectName, started, string(mediaType), wrapped)
	}

	if o.thumbnailer != nil {
		// Best-effort: a missing thumbnail never fails the event.
		if thumbPath, thumbErr := o.thumbnailer.Thumbnail(ctx, media, mediaType); thumbErr == nil && thumbPath != nil {
			result.ThumbnailPath = thumbPath
		}
	}

	gcsPath := media.URI()
	if err := o.dispatcher.Dispatch(ctx, eventID, gcsPath, result); err != nil {
		wrapped := errors.Wrap(errors.CodeCallbackFailure, err, fmt.Sprintf("dispatching callback: %v", err))
		return o.fail(ctx, eventID, bucket, objectName, started, string(mediaType), wrapped)
	}

	completedAt := o.now()
	if err := o.store.Update(ctx, eventID, &Record{
		Status:      enums.EventStatusCompleted,
		StartedAt:   &started,
		CompletedAt: &completedAt,
		Bucket:      bucket,
		ObjectName:  objectName,
	}); err != nil {
		// The callback already landed; the worst case is a stale
		// processing record that an operator has to clear.
		o.logg.Error(ctx, "recording completed status failed", err)
	}

	o.metrics.IncProcessed(string(mediaType))
	o.metrics.ObserveDuration(string(mediaType), o.now().Sub(started))
	o.logg.Info(ctx, "media event completed")

	return Outcome{Result: result}
}

// claim writes the processing record. For unseen events it is a conditional
// create; for previously failed (or stale pending) events it is a conditional
// overwrite against the record we just read, so at most one of two
// near-simultaneous redeliveries proceeds.
func (o *Orchestrator) claim(ctx context.Context, eventID string, existing *Record, bucket, objectName string, started time.Time) (bool, error) {
	rec := &Record{
		Status:     enums.EventStatusProcessing,
		StartedAt:  &started,
		Bucket:     bucket,
		ObjectName: objectName,
	}
	if existing == nil {
		return o.store.Claim(ctx, eventID, rec)
	}
	return o.store.Reclaim(ctx, eventID, existing, rec)
}

func (o *Orchestrator) fail(ctx context.Context, eventID, bucket, objectName string, started time.Time, mediaType string, cause error) Outcome {
	failedAt := o.now()
	rec := &Record{
		Status:     enums.EventStatusFailed,
		StartedAt:  &started,
		FailedAt:   &failedAt,
		Error:      cause.Error(),
		Bucket:     bucket,
		ObjectName: objectName,
	}
	if err := o.store.Update(ctx, eventID, rec); err != nil {
		o.logg.Error(ctx, "recording failed status failed", err)
	}

	kind := errors.CodeOf(cause)
	o.metrics.IncFailed(string(kind))
	o.metrics.ObserveDuration(mediaType, o.now().Sub(started))
	o.logg.Error(ctx, "media event failed", cause)

	return Outcome{Err: cause, Retryable: errors.IsRetryable(cause)}
}
