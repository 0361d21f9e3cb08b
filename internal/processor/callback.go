package processor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// callbackPayload is the wire body POSTed to the callback sink.
type callbackPayload struct {
	EventID          string           `json:"event_id"`
	GCSPath          string           `json:"gcs_path"`
	ProcessedResults *ProcessedResult `json:"processed_results"`
}

// HTTPDispatcher delivers processed results to the configured sink. One
// POST per dispatch, bounded by the client timeout; retries are the event
// source's job.
type HTTPDispatcher struct {
	client *http.Client
	url    string
}

func NewHTTPDispatcher(url string, timeout time.Duration) (*HTTPDispatcher, error) {
	if url == "" {
		return nil, errors.New("callback url is required")
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPDispatcher{
		client: &http.Client{Timeout: timeout},
		url:    url,
	}, nil
}

func (d *HTTPDispatcher) Dispatch(ctx context.Context, eventID, gcsPath string, result *ProcessedResult) error {
	body, err := json.Marshal(callbackPayload{
		EventID:          eventID,
		GCSPath:          gcsPath,
		ProcessedResults: result,
	})
	if err != nil {
		return fmt.Errorf("encoding callback payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("posting callback: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		preview, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		if len(preview) > 0 {
			return fmt.Errorf("callback sink returned %s: %s", resp.Status, strings.TrimSpace(string(preview)))
		}
		return fmt.Errorf("callback sink returned %s", resp.Status)
	}

	return nil
}
