package processor

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kalaconnect/kalaconnect-backend/pkg/enums"
)

func TestHTTPDispatcher_PostsExpectedBody(t *testing.T) {
	var gotBody []byte
	var gotContentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	d, err := NewHTTPDispatcher(server.URL, 5*time.Second)
	if err != nil {
		t.Fatalf("NewHTTPDispatcher returned error: %v", err)
	}

	transcript := "hello world"
	result := &ProcessedResult{MediaType: enums.MediaTypeAudio, Transcription: &transcript}
	if err := d.Dispatch(context.Background(), "evt_1", "gs://media/clip.wav", result); err != nil {
		t.Fatalf("Dispatch returned error: %v", err)
	}

	if gotContentType != "application/json" {
		t.Fatalf("expected json content type, got %q", gotContentType)
	}

	var payload map[string]any
	if err := json.Unmarshal(gotBody, &payload); err != nil {
		t.Fatalf("unmarshaling posted body: %v", err)
	}
	if payload["event_id"] != "evt_1" {
		t.Fatalf("unexpected event_id %v", payload["event_id"])
	}
	if payload["gcs_path"] != "gs://media/clip.wav" {
		t.Fatalf("unexpected gcs_path %v", payload["gcs_path"])
	}
	results, ok := payload["processed_results"].(map[string]any)
	if !ok {
		t.Fatalf("missing processed_results in %v", payload)
	}
	if results["transcription"] != "hello world" {
		t.Fatalf("unexpected transcription %v", results["transcription"])
	}
	if results["create_product"] != false {
		t.Fatal("create_product must be serialized even when false")
	}
}

func TestHTTPDispatcher_NonOKIsFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "sink exploded", http.StatusBadGateway)
	}))
	defer server.Close()

	d, err := NewHTTPDispatcher(server.URL, 5*time.Second)
	if err != nil {
		t.Fatalf("NewHTTPDispatcher returned error: %v", err)
	}

	err = d.Dispatch(context.Background(), "evt_1", "gs://media/clip.wav", &ProcessedResult{MediaType: enums.MediaTypeAudio})
	if err == nil {
		t.Fatal("expected non-200 response to be a failure")
	}
	if !strings.Contains(err.Error(), "502") {
		t.Fatalf("expected status in error, got %q", err.Error())
	}
	if !strings.Contains(err.Error(), "sink exploded") {
		t.Fatalf("expected response text in error, got %q", err.Error())
	}
}

func TestHTTPDispatcher_NetworkErrorIsFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close()

	d, err := NewHTTPDispatcher(server.URL, time.Second)
	if err != nil {
		t.Fatalf("NewHTTPDispatcher returned error: %v", err)
	}
	if err := d.Dispatch(context.Background(), "evt_1", "gs://media/clip.wav", &ProcessedResult{}); err == nil {
		t.Fatal("expected network error to be a failure")
	}
}

func TestHTTPDispatcher_RequiresURL(t *testing.T) {
	if _, err := NewHTTPDispatcher("", time.Second); err == nil {
		t.Fatal("expected missing url to be rejected")
	}
}
