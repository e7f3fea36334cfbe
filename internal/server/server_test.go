package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alfredjeanlab/nobel/internal/events"
	"github.com/alfredjeanlab/nobel/internal/model"
	"github.com/alfredjeanlab/nobel/internal/ratelimit"
	"github.com/alfredjeanlab/nobel/internal/store/jsonfile"
)

// recordingJournal keeps events in memory.
type recordingJournal struct {
	mu     sync.Mutex
	events []*model.Event
	err    error
}

func (j *recordingJournal) Record(_ context.Context, e *model.Event) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.err != nil {
		return j.err
	}
	e.ID = "ev-" + string(rune('a'+len(j.events)))
	e.CreatedAt = time.Now().UTC()
	j.events = append(j.events, e)
	return nil
}

func (j *recordingJournal) List(_ context.Context, year, category string) ([]*model.Event, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	var out []*model.Event
	for _, e := range j.events {
		if e.Year == year && model.SameCategory(e.Category, category) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (j *recordingJournal) Close() error { return nil }

func (j *recordingJournal) snapshot() []*model.Event {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]*model.Event(nil), j.events...)
}

// recordingPublisher keeps published topics in memory.
type recordingPublisher struct {
	mu     sync.Mutex
	topics []string
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

var _ events.Publisher = (*recordingPublisher)(nil)

// testEnv bundles a server with its collaborators.
type testEnv struct {
	srv       *PrizeServer
	store     *jsonfile.Store
	journal   *recordingJournal
	publisher *recordingPublisher
	handler   http.Handler
	path      string
}

// generousTiers keeps rate limiting out of the way unless a test sets its own.
func generousTiers() map[string]ratelimit.Tier {
	return map[string]ratelimit.Tier{
		ratelimit.TierDefault: {Count: 10000, Window: time.Minute},
		ratelimit.TierStrict:  {Count: 10000, Window: time.Minute},
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestEnv starts a server over a fresh document seeded with prizes.
func newTestEnv(t *testing.T, tiers map[string]ratelimit.Tier, prizes ...*model.Prize) *testEnv {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nobel_prizes.json")
	if len(prizes) > 0 {
		if err := jsonfile.WriteDocument(path, prizes); err != nil {
			t.Fatalf("seed document: %v", err)
		}
	}
	return newTestEnvAt(t, path, tiers)
}

func newTestEnvAt(t *testing.T, path string, tiers map[string]ratelimit.Tier) *testEnv {
	t.Helper()
	st, err := jsonfile.Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if tiers == nil {
		tiers = generousTiers()
	}
	limiter, err := ratelimit.New(tiers, 0)
	if err != nil {
		t.Fatalf("limiter: %v", err)
	}
	env := &testEnv{
		store:     st,
		journal:   &recordingJournal{},
		publisher: &recordingPublisher{},
		path:      path,
	}
	env.srv, err = NewPrizeServer(st, Options{
		Publisher: env.publisher,
		Journal:   env.journal,
		Limiter:   limiter,
		Logger:    discardLogger(),
	})
	if err != nil {
		t.Fatalf("NewPrizeServer: %v", err)
	}
	env.handler = env.srv.NewHTTPHandler()
	return env
}

// newTestServer returns a server over an empty store.
func newTestServer(t *testing.T) (*PrizeServer, *testEnv, http.Handler) {
	t.Helper()
	env := newTestEnv(t, nil)
	return env.srv, env, env.handler
}

// seedPrizes is a small fixture in insertion order.
func seedPrizes() []*model.Prize {
	return []*model.Prize{
		{
			Year: "1903", Category: "physics",
			Laureates: []model.Laureate{
				{ID: "4", Firstname: "Pierre", Surname: "Curie", Share: "4"},
				{ID: "6", Firstname: "Marie", Surname: "Curie", Share: "4"},
			},
		},
		{
			Year: "1911", Category: "chemistry",
			Laureates: []model.Laureate{{ID: "6", Firstname: "Marie", Surname: "Curie", Share: "1"}},
		},
		{Year: "1921", Category: "physics", OverallMotivation: "for services to Theoretical Physics"},
		{Year: "1903", Category: "peace", Laureates: []model.Laureate{{ID: "466", Firstname: "William Randal", Surname: "Cremer"}}},
	}
}

// doJSON performs an HTTP request with an optional JSON body and returns the recorder.
func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	return doJSONAs(t, handler, method, path, body, "", "")
}

// doJSONAs is doJSON with Basic credentials (none when user is empty).
func doJSONAs(t *testing.T, handler http.Handler, method, path string, body any, user, password string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	switch b := body.(type) {
	case nil:
		req = httptest.NewRequest(method, path, nil)
	case string:
		req = httptest.NewRequest(method, path, bytes.NewReader([]byte(b)))
		req.Header.Set("Content-Type", "application/json")
	default:
		data, _ := json.Marshal(b)
		req = httptest.NewRequest(method, path, bytes.NewReader(data))
		req.Header.Set("Content-Type", "application/json")
	}
	if user != "" {
		req.SetBasicAuth(user, password)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func asUser(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	return doJSONAs(t, h, method, path, body, "user", "user123")
}

func asAdmin(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	return doJSONAs(t, h, method, path, body, "admin", "admin123")
}

// requireStatus asserts the recorder has the expected HTTP status code.
func requireStatus(t *testing.T, rec *httptest.ResponseRecorder, code int) {
	t.Helper()
	if rec.Code != code {
		t.Fatalf("expected status %d, got %d; body: %s", code, rec.Code, rec.Body.String())
	}
}

// decodeJSON decodes the recorder body into v.
func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}

// errorMessage returns the "error" field of a JSON error body.
func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	decodeJSON(t, rec, &body)
	return body["error"]
}

// requireEvent asserts the journal holds n events, the last with topic.
func requireEvent(t *testing.T, env *testEnv, n int, topic string) *model.Event {
	t.Helper()
	evts := env.journal.snapshot()
	if len(evts) != n {
		t.Fatalf("expected %d event(s), got %d", n, len(evts))
	}
	if evts[n-1].Topic != topic {
		t.Fatalf("expected topic=%q, got %q", topic, evts[n-1].Topic)
	}
	return evts[n-1]
}

func TestNewPrizeServer_Defaults(t *testing.T) {
	st, err := jsonfile.Open(filepath.Join(t.TempDir(), "x.json"))
	if err != nil {
		t.Fatal(err)
	}
	srv, err := NewPrizeServer(st, Options{})
	if err != nil {
		t.Fatalf("NewPrizeServer: %v", err)
	}
	if srv.publisher == nil || srv.journal == nil || srv.credentials == nil || srv.limiter == nil || srv.metrics == nil {
		t.Fatalf("expected defaults to be filled: %+v", srv)
	}
	info := srv.securityInfo()
	if info.RateLimits["strict"] != "10/minute" || info.RateLimits["default"] != "100/minute" {
		t.Fatalf("default limits = %v", info.RateLimits)
	}
}

func TestRecordAndPublish_BestEffort(t *testing.T) {
	env := newTestEnv(t, nil)
	env.journal.err = errors.New("journal down")
	env.publisher.err = errors.New("nats down")

	calls := 0
	env.srv.onMutation = func() { calls++ }

	rec := asUser(t, env.handler, "POST", "/prizes", map[string]any{"year": "2025", "category": "peace"})
	requireStatus(t, rec, http.StatusCreated)
	if calls != 1 {
		t.Fatalf("onMutation calls = %d, want 1", calls)
	}
	if len(env.publisher.topics) != 1 || env.publisher.topics[0] != events.TopicPrizeCreated {
		t.Fatalf("publisher topics = %v", env.publisher.topics)
	}
}

func newRequest(t *testing.T, method, path string) *http.Request {
	t.Helper()
	return httptest.NewRequest(method, path, nil)
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}
