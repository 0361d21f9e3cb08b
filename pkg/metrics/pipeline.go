package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PipelineMetrics records outcomes for the media processing pipeline.
type PipelineMetrics struct {
	duration  *prometheus.HistogramVec
	processed *prometheus.CounterVec
	skipped   prometheus.Counter
	failed    *prometheus.CounterVec
}

// NewPipelineMetrics registers the pipeline metrics on the provided registerer.
func NewPipelineMetrics(reg prometheus.Registerer) *PipelineMetrics {
	if reg == nil {
		return &PipelineMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "media_event_duration_seconds",
		Help:    "Duration of media event handling in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"media_type"})
	processed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "media_events_processed_total",
		Help: "Media events completed successfully.",
	}, []string{"media_type"})
	skipped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "media_events_skipped_total",
		Help: "Media events skipped by the idempotency guard.",
	})
	failed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "media_events_failed_total",
		Help: "Media events that ended in a failed status, by error kind.",
	}, []string{"kind"})
	reg.MustRegister(duration, processed, skipped, failed)
	return &PipelineMetrics{
		duration:  duration,
		processed: processed,
		skipped:   skipped,
		failed:    failed,
	}
}

// ObserveDuration records the handling duration for a media type.
func (p *PipelineMetrics) ObserveDuration(mediaType string, duration time.Duration) {
	if p == nil || p.duration == nil {
		return
	}
	p.duration.WithLabelValues(normalizeLabel(mediaType)).Observe(duration.Seconds())
}

// IncProcessed increments the completed counter for a media type.
func (p *PipelineMetrics) IncProcessed(mediaType string) {
	if p == nil || p.processed == nil {
		return
	}
	p.processed.WithLabelValues(normalizeLabel(mediaType)).Inc()
}

// IncSkipped increments the idempotency-skip counter.
func (p *PipelineMetrics) IncSkipped() {
	if p == nil || p.skipped == nil {
		return
	}
	p.skipped.Inc()
}

// IncFailed increments the failure counter for an error kind.
func (p *PipelineMetrics) IncFailed(kind string) {
	if p == nil || p.failed == nil {
		return
	}
	p.failed.WithLabelValues(normalizeLabel(kind)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
