package processor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"sync"
	"testing"

	"github.com/kalaconnect/kalaconnect-backend/pkg/enums"
	kcerrors "github.com/kalaconnect/kalaconnect-backend/pkg/errors"
	"github.com/kalaconnect/kalaconnect-backend/pkg/logger"
)

type memStore struct {
	mu      sync.Mutex
	records map[string]*Record

	getErr   error
	claimErr error
}

func newMemStore() *memStore {
	return &memStore{records: map[string]*Record{}}
}

func (m *memStore) Get(_ context.Context, eventID string) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	rec, ok := m.records[eventID]
	if !ok {
		return nil, nil
	}
	copied := *rec
	return &copied, nil
}

func (m *memStore) Claim(_ context.Context, eventID string, rec *Record) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.claimErr != nil {
		return false, m.claimErr
	}
	if _, exists := m.records[eventID]; exists {
		return false, nil
	}
	copied := *rec
	m.records[eventID] = &copied
	return true, nil
}

func (m *memStore) Reclaim(_ context.Context, eventID string, prev, next *Record) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.records[eventID]
	if !ok || !reflect.DeepEqual(stored, prev) {
		return false, nil
	}
	copied := *next
	m.records[eventID] = &copied
	return true, nil
}

func (m *memStore) Update(_ context.Context, eventID string, rec *Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *rec
	m.records[eventID] = &copied
	return nil
}

func (m *memStore) record(eventID string) *Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.records[eventID]
}

type stubFetcher struct {
	media *Media
	err   error
	calls int
}

func (s *stubFetcher) Fetch(_ context.Context, bucket, objectName string) (*Media, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	if s.media != nil {
		return s.media, nil
	}
	return &Media{Bucket: bucket, ObjectName: objectName, Data: []byte("bytes")}, nil
}

type stubAnalyzer struct {
	result *ProcessedResult
	err    error
	calls  int
}

func (s *stubAnalyzer) Analyze(_ context.Context, _ *Media, _ enums.MediaType) (*ProcessedResult, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

type stubDispatcher struct {
	err        error
	calls      int
	lastEvent  string
	lastPath   string
	lastResult *ProcessedResult
}

func (s *stubDispatcher) Dispatch(_ context.Context, eventID, gcsPath string, result *ProcessedResult) error {
	s.calls++
	s.lastEvent = eventID
	s.lastPath = gcsPath
	s.lastResult = result
	return s.err
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func strPtr(s string) *string { return &s }

func newTestOrchestrator(t *testing.T, store StatusStore, fetcher Fetcher, analyzer Analyzer, dispatcher Dispatcher) *Orchestrator {
	t.Helper()
	orch, err := NewOrchestrator(store, fetcher, analyzer, nil, dispatcher, testLogger(), nil)
	if err != nil {
		t.Fatalf("NewOrchestrator returned error: %v", err)
	}
	return orch
}

func TestHandle_AudioSuccess_CallbackContract(t *testing.T) {
	store := newMemStore()
	fetcher := &stubFetcher{}
	analyzer := &stubAnalyzer{result: &ProcessedResult{
		MediaType:     enums.MediaTypeAudio,
		Transcription: strPtr("hello world"),
	}}
	dispatcher := &stubDispatcher{}
	orch := newTestOrchestrator(t, store, fetcher, analyzer, dispatcher)

	outcome := orch.Handle(context.Background(), "media", "clip.wav", "evt_1")
	if outcome.Err != nil {
		t.Fatalf("Handle returned error: %v", outcome.Err)
	}
	if outcome.Skipped {
		t.Fatal("expected non-skipped outcome")
	}
	if dispatcher.calls != 1 {
		t.Fatalf("expected exactly one dispatch, got %d", dispatcher.calls)
	}

	raw, err := json.Marshal(callbackPayload{
		EventID:          dispatcher.lastEvent,
		GCSPath:          dispatcher.lastPath,
		ProcessedResults: dispatcher.lastResult,
	})
	if err != nil {
		t.Fatalf("marshaling dispatched payload: %v", err)
	}

	var got, want map[string]any
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshaling dispatched payload: %v", err)
	}
	expected := `{"event_id":"evt_1","gcs_path":"gs://media/clip.wav","processed_results":{"media_type":"audio","transcription":"hello world","create_product":false}}`
	if err := json.Unmarshal([]byte(expected), &want); err != nil {
		t.Fatalf("unmarshaling expected payload: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("callback payload mismatch:\n got: %s\nwant: %s", raw, expected)
	}

	rec := store.record("evt_1")
	if rec == nil || rec.Status != enums.EventStatusCompleted {
		t.Fatalf("expected completed status, got %+v", rec)
	}
	if rec.CompletedAt == nil || rec.FailedAt != nil {
		t.Fatalf("expected completed_at set and failed_at absent, got %+v", rec)
	}
}

func TestHandle_Idempotency(t *testing.T) {
	store := newMemStore()
	analyzer := &stubAnalyzer{result: &ProcessedResult{MediaType: enums.MediaTypeAudio, Transcription: strPtr("hi")}}
	dispatcher := &stubDispatcher{}
	orch := newTestOrchestrator(t, store, &stubFetcher{}, analyzer, dispatcher)

	ctx := context.Background()
	if outcome := orch.Handle(ctx, "media", "clip.wav", "evt_dup"); outcome.Err != nil {
		t.Fatalf("first Handle returned error: %v", outcome.Err)
	}

	second := orch.Handle(ctx, "media", "clip.wav", "evt_dup")
	if !second.Skipped {
		t.Fatal("expected second delivery to be skipped")
	}
	if analyzer.calls != 1 {
		t.Fatalf("expected one analyzer call, got %d", analyzer.calls)
	}
	if dispatcher.calls != 1 {
		t.Fatalf("expected one dispatch, got %d", dispatcher.calls)
	}
}

func TestHandle_SkipsWhileProcessing(t *testing.T) {
	store := newMemStore()
	store.records["evt_busy"] = &Record{Status: enums.EventStatusProcessing}
	fetcher := &stubFetcher{}
	analyzer := &stubAnalyzer{}
	dispatcher := &stubDispatcher{}
	orch := newTestOrchestrator(t, store, fetcher, analyzer, dispatcher)

	outcome := orch.Handle(context.Background(), "media", "clip.wav", "evt_busy")
	if !outcome.Skipped {
		t.Fatal("expected skip for in-flight event")
	}
	if fetcher.calls+analyzer.calls+dispatcher.calls != 0 {
		t.Fatal("expected no side effects on skipped delivery")
	}
}

func TestHandle_UnsupportedMediaShortCircuit(t *testing.T) {
	store := newMemStore()
	fetcher := &stubFetcher{}
	analyzer := &stubAnalyzer{}
	dispatcher := &stubDispatcher{}
	orch := newTestOrchestrator(t, store, fetcher, analyzer, dispatcher)

	outcome := orch.Handle(context.Background(), "media", "notes.txt", "evt_txt")
	if outcome.Err == nil {
		t.Fatal("expected failure outcome")
	}
	if kind := kcerrors.CodeOf(outcome.Err); kind != kcerrors.CodeUnsupportedMedia {
		t.Fatalf("expected kind %s, got %s", kcerrors.CodeUnsupportedMedia, kind)
	}
	if outcome.Retryable {
		t.Fatal("unsupported media must not be retryable")
	}
	if fetcher.calls != 0 || analyzer.calls != 0 || dispatcher.calls != 0 {
		t.Fatalf("expected no fetch/analyze/callback calls, got %d/%d/%d", fetcher.calls, analyzer.calls, dispatcher.calls)
	}

	rec := store.record("evt_txt")
	if rec == nil || rec.Status != enums.EventStatusFailed {
		t.Fatalf("expected failed status, got %+v", rec)
	}
	if rec.Error == "" {
		t.Fatal("expected a human-readable error string")
	}
}

func TestHandle_FetchFailure(t *testing.T) {
	store := newMemStore()
	fetcher := &stubFetcher{err: errors.New("object unreadable")}
	analyzer := &stubAnalyzer{}
	dispatcher := &stubDispatcher{}
	orch := newTestOrchestrator(t, store, fetcher, analyzer, dispatcher)

	outcome := orch.Handle(context.Background(), "media", "clip.wav", "evt_fetch")
	if kind := kcerrors.CodeOf(outcome.Err); kind != kcerrors.CodeFetchFailure {
		t.Fatalf("expected kind %s, got %s", kcerrors.CodeFetchFailure, kind)
	}
	if !outcome.Retryable {
		t.Fatal("fetch failures should be retryable via redelivery")
	}
	if analyzer.calls != 0 || dispatcher.calls != 0 {
		t.Fatal("expected no analysis or dispatch after fetch failure")
	}
	if rec := store.record("evt_fetch"); rec == nil || rec.Status != enums.EventStatusFailed {
		t.Fatalf("expected failed status, got %+v", rec)
	}
}

func TestHandle_AnalyzerFailureIsolation(t *testing.T) {
	store := newMemStore()
	analyzer := &stubAnalyzer{err: errors.New("provider timeout")}
	dispatcher := &stubDispatcher{}
	orch := newTestOrchestrator(t, store, &stubFetcher{}, analyzer, dispatcher)

	outcome := orch.Handle(context.Background(), "media", "clip.wav", "evt_an")
	if kind := kcerrors.CodeOf(outcome.Err); kind != kcerrors.CodeAnalysisUnavailable {
		t.Fatalf("expected kind %s, got %s", kcerrors.CodeAnalysisUnavailable, kind)
	}
	if dispatcher.calls != 0 {
		t.Fatal("dispatcher must never be invoked after analysis failure")
	}
	rec := store.record("evt_an")
	if rec == nil || rec.Status != enums.EventStatusFailed {
		t.Fatalf("expected failed status, got %+v", rec)
	}
}

func TestHandle_CallbackFailure(t *testing.T) {
	store := newMemStore()
	analyzer := &stubAnalyzer{result: &ProcessedResult{MediaType: enums.MediaTypeAudio, Transcription: strPtr("hi")}}
	dispatcher := &stubDispatcher{err: fmt.Errorf("callback sink returned 503 Service Unavailable")}
	orch := newTestOrchestrator(t, store, &stubFetcher{}, analyzer, dispatcher)

	outcome := orch.Handle(context.Background(), "media", "clip.wav", "evt_cb")
	if kind := kcerrors.CodeOf(outcome.Err); kind != kcerrors.CodeCallbackFailure {
		t.Fatalf("expected kind %s, got %s", kcerrors.CodeCallbackFailure, kind)
	}
	if !outcome.Retryable {
		t.Fatal("callback failures should be retryable via redelivery")
	}
	rec := store.record("evt_cb")
	if rec == nil || rec.Status != enums.EventStatusFailed {
		t.Fatalf("expected failed status, got %+v", rec)
	}
}

func TestHandle_TerminalStateGuarantee(t *testing.T) {
	cases := []struct {
		name       string
		objectName string
		fetcher    *stubFetcher
		analyzer   *stubAnalyzer
		dispatcher *stubDispatcher
	}{
		{
			name:       "success",
			objectName: "clip.wav",
			fetcher:    &stubFetcher{},
			analyzer:   &stubAnalyzer{result: &ProcessedResult{MediaType: enums.MediaTypeAudio, Transcription: strPtr("x")}},
			dispatcher: &stubDispatcher{},
		},
		{
			name:       "unsupported",
			objectName: "notes.txt",
			fetcher:    &stubFetcher{},
			analyzer:   &stubAnalyzer{},
			dispatcher: &stubDispatcher{},
		},
		{
			name:       "analysis failure",
			objectName: "photo.jpg",
			fetcher:    &stubFetcher{},
			analyzer:   &stubAnalyzer{err: errors.New("boom")},
			dispatcher: &stubDispatcher{},
		},
		{
			name:       "callback failure",
			objectName: "clip.mp3",
			fetcher:    &stubFetcher{},
			analyzer:   &stubAnalyzer{result: &ProcessedResult{MediaType: enums.MediaTypeAudio, Transcription: strPtr("x")}},
			dispatcher: &stubDispatcher{err: errors.New("sink down")},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := newMemStore()
			orch := newTestOrchestrator(t, store, tc.fetcher, tc.analyzer, tc.dispatcher)
			outcome := orch.Handle(context.Background(), "media", tc.objectName, "evt_term")
			if outcome.Skipped {
				t.Fatal("expected non-skipped path")
			}
			rec := store.record("evt_term")
			if rec == nil {
				t.Fatal("expected a status record")
			}
			if !rec.Status.IsTerminal() {
				t.Fatalf("expected terminal status, got %s", rec.Status)
			}
		})
	}
}

func TestHandle_ConcurrentClaimLoses(t *testing.T) {
	store := newMemStore()
	// Simulate a concurrent delivery winning the claim between the guard
	// read and the conditional write.
	claimed, err := store.Claim(context.Background(), "evt_race", &Record{Status: enums.EventStatusProcessing})
	if err != nil || !claimed {
		t.Fatalf("seeding claim failed: claimed=%v err=%v", claimed, err)
	}

	fetcher := &stubFetcher{}
	orch := newTestOrchestrator(t, &racingStore{memStore: store}, fetcher, &stubAnalyzer{}, &stubDispatcher{})
	outcome := orch.Handle(context.Background(), "media", "clip.wav", "evt_race")
	if !outcome.Skipped {
		t.Fatal("expected losing claimant to skip")
	}
	if fetcher.calls != 0 {
		t.Fatal("expected no fetch after losing the claim")
	}
}

// racingStore hides the existing record from Get so the orchestrator falls
// through to Claim and loses the conditional write.
type racingStore struct {
	*memStore
}

func (r *racingStore) Get(context.Context, string) (*Record, error) {
	return nil, nil
}

// interceptingStore runs a hook after every Get, standing in for a
// concurrent delivery acting between the guard read and the reclaim.
type interceptingStore struct {
	*memStore
	afterGet func()
}

func (s *interceptingStore) Get(ctx context.Context, eventID string) (*Record, error) {
	rec, err := s.memStore.Get(ctx, eventID)
	if s.afterGet != nil {
		s.afterGet()
	}
	return rec, err
}

func TestHandle_ConcurrentReclaimOfFailedEventLoses(t *testing.T) {
	store := newMemStore()
	store.records["evt_retry_race"] = &Record{Status: enums.EventStatusFailed, Error: "FETCH_FAILURE: transient"}

	// The competing redelivery claims the failed event right after our
	// guard read, so the stored record no longer matches what we saw.
	intercepted := &interceptingStore{memStore: store}
	intercepted.afterGet = func() {
		intercepted.afterGet = nil
		_ = store.Update(context.Background(), "evt_retry_race", &Record{Status: enums.EventStatusProcessing})
	}

	fetcher := &stubFetcher{}
	dispatcher := &stubDispatcher{}
	orch := newTestOrchestrator(t, intercepted, fetcher, &stubAnalyzer{}, dispatcher)

	outcome := orch.Handle(context.Background(), "media", "clip.wav", "evt_retry_race")
	if !outcome.Skipped {
		t.Fatalf("expected losing reclaimant to skip, got %+v", outcome)
	}
	if fetcher.calls != 0 || dispatcher.calls != 0 {
		t.Fatal("expected no side effects after losing the reclaim")
	}
	if rec := store.record("evt_retry_race"); rec == nil || rec.Status != enums.EventStatusProcessing {
		t.Fatalf("expected the winner's claim to survive, got %+v", rec)
	}
}

func TestHandle_ReprocessesFailedEvents(t *testing.T) {
	store := newMemStore()
	store.records["evt_retry"] = &Record{Status: enums.EventStatusFailed, Error: "FETCH_FAILURE: transient"}
	analyzer := &stubAnalyzer{result: &ProcessedResult{MediaType: enums.MediaTypeAudio, Transcription: strPtr("ok")}}
	dispatcher := &stubDispatcher{}
	orch := newTestOrchestrator(t, store, &stubFetcher{}, analyzer, dispatcher)

	outcome := orch.Handle(context.Background(), "media", "clip.wav", "evt_retry")
	if outcome.Skipped || outcome.Err != nil {
		t.Fatalf("expected failed event to reprocess, got %+v", outcome)
	}
	if rec := store.record("evt_retry"); rec == nil || rec.Status != enums.EventStatusCompleted {
		t.Fatalf("expected completed after reprocess, got %+v", rec)
	}
}
