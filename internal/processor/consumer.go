package processor

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/kalaconnect/kalaconnect-backend/pkg/logger"
)

const (
	objectFinalizeEvent  = "OBJECT_FINALIZE"
	payloadFormatJSONAPI = "JSON_API_V1"
)

type handler interface {
	Handle(ctx context.Context, bucket, objectName, eventID string) Outcome
}

type subscriber interface {
	Receive(ctx context.Context, f func(context.Context, *pubsub.Message)) error
}

// Consumer feeds GCS OBJECT_FINALIZE notifications into the orchestrator
// and maps its outcome to Ack/Nack. Nack signals the event source to
// redeliver; terminal failures are Acked so they are never retried.
type Consumer struct {
	orchestrator handler
	subscription subscriber
	logg         *logger.Logger
}

func NewConsumer(orchestrator handler, subscription subscriber, logg *logger.Logger) (*Consumer, error) {
	if orchestrator == nil {
		return nil, errors.New("orchestrator is required")
	}
	if subscription == nil {
		return nil, errors.New("subscription is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}
	return &Consumer{
		orchestrator: orchestrator,
		subscription: subscription,
		logg:         logg,
	}, nil
}

// Run processes messages until the context is canceled or the subscription errors.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	attrs := parseAttributes(msg.Attributes)
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": msg.ID,
		"event_type": attrs.EventType,
		"bucket":     attrs.BucketID,
		"object":     attrs.ObjectID,
	})

	if attrs.EventType != objectFinalizeEvent {
		c.logg.Info(logCtx, "skipping non-finalize event")
		return processResult{ack: true}
	}
	if attrs.PayloadFormat != "" && attrs.PayloadFormat != payloadFormatJSONAPI {
		c.logg.Warn(logCtx, "unsupported payload format")
		return processResult{ack: true}
	}

	payload, err := decodePayload(msg.Data)
	if err != nil {
		c.logg.Error(logCtx, "failed to decode payload", err)
		return processResult{ack: true}
	}

	var gcs gcsPayload
	if err := json.Unmarshal(payload, &gcs); err != nil {
		c.logg.Error(logCtx, "failed to unmarshal payload", err)
		return processResult{ack: true}
	}

	bucket := firstNonEmpty(gcs.Bucket, attrs.BucketID)
	objectName := firstNonEmpty(gcs.Name, attrs.ObjectID)
	if bucket == "" || objectName == "" {
		c.logg.Error(logCtx, "payload missing object identity", fmt.Errorf("bucket=%q object=%q", bucket, objectName))
		return processResult{ack: true}
	}

	// The event id must be stable across redeliveries, so it is derived
	// from the object identity + generation, not the message id.
	eventID := eventIDFor(bucket, objectName, gcs.Generation, msg.ID)

	outcome := c.orchestrator.Handle(logCtx, bucket, objectName, eventID)
	switch {
	case outcome.Skipped:
		return processResult{ack: true}
	case outcome.Err != nil && outcome.Retryable:
		return processResult{nack: true}
	default:
		// Success, or a terminal failure such as unsupported media that
		// redelivery can never fix.
		return processResult{ack: true}
	}
}

func eventIDFor(bucket, objectName, generation, messageID string) string {
	if generation == "" {
		return messageID
	}
	return fmt.Sprintf("%s/%s#%s", bucket, objectName, generation)
}

func parseAttributes(attrs map[string]string) gcsAttributes {
	return gcsAttributes{
		EventType:     attrs["eventType"],
		BucketID:      attrs["bucketId"],
		ObjectID:      attrs["objectId"],
		PayloadFormat: attrs["payloadFormat"],
	}
}

type gcsAttributes struct {
	EventType     string
	BucketID      string
	ObjectID      string
	PayloadFormat string
}

type gcsPayload struct {
	Name        string `json:"name"`
	Bucket      string `json:"bucket"`
	Generation  string `json:"generation"`
	ContentType string `json:"contentType"`
	Size        string `json:"size"`
}

func decodePayload(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("payload empty")
	}
	if decoded, err := base64.StdEncoding.DecodeString(string(data)); err == nil {
		return decoded, nil
	}
	return data, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
