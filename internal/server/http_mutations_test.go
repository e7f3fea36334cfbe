package server

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/alfredjeanlab/nobel/internal/events"
	"github.com/alfredjeanlab/nobel/internal/model"
	"github.com/alfredjeanlab/nobel/internal/ratelimit"
	"github.com/alfredjeanlab/nobel/internal/store/jsonfile"
)

// requireRoundTrip asserts that reloading the document reproduces the
// store's in-memory state.
func requireRoundTrip(t *testing.T, env *testEnv) {
	t.Helper()
	mem, err := env.store.ListPrizes(t.Context())
	if err != nil {
		t.Fatal(err)
	}
	disk, err := jsonfile.ReadDocument(env.path)
	if err != nil {
		t.Fatalf("reload document: %v", err)
	}
	if diff := cmp.Diff(mem, disk, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("document differs from memory (-mem +disk):\n%s", diff)
	}
}

// readFile returns the raw document bytes.
func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func TestCreatePrize_DerivesLaureateIDAndConflicts(t *testing.T) {
	env := newTestEnv(t, nil)
	body := map[string]any{
		"year":      "2025",
		"category":  "peace",
		"laureates": []map[string]any{{"firstname": "Ada", "surname": "Lovelace"}},
	}

	rec := asUser(t, env.handler, "POST", "/prizes", body)
	requireStatus(t, rec, http.StatusCreated)
	var created model.Prize
	decodeJSON(t, rec, &created)
	if got := created.Laureates[0].ID; got != "adalovelace2025" {
		t.Fatalf("laureate id = %q, want %q", got, "adalovelace2025")
	}
	requireRoundTrip(t, env)

	// Same year, same category.
	rec = asUser(t, env.handler, "POST", "/prizes", body)
	requireStatus(t, rec, http.StatusConflict)

	// Same year, category differing only in case.
	body["category"] = "PEACE"
	rec = asAdmin(t, env.handler, "POST", "/prizes", body)
	requireStatus(t, rec, http.StatusConflict)

	if n, _ := env.store.Count(t.Context()); n != 1 {
		t.Fatalf("store size = %d, want 1", n)
	}
}

func TestCreatePrize_RecordsEvent(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := asUser(t, env.handler, "POST", "/prizes", map[string]any{"year": "2025", "category": "Peace"})
	requireStatus(t, rec, http.StatusCreated)

	e := requireEvent(t, env, 1, events.TopicPrizeCreated)
	if e.Actor != "user" || e.Year != "2025" || e.Category != "Peace" {
		t.Fatalf("unexpected event: %+v", e)
	}
	if len(env.publisher.topics) != 1 || env.publisher.topics[0] != events.TopicPrizeCreated {
		t.Fatalf("published topics = %v", env.publisher.topics)
	}

	// The journal route reads it back, case-insensitively.
	rec = doJSON(t, env.handler, "GET", "/events/2025/PEACE", nil)
	requireStatus(t, rec, http.StatusOK)
	var evts []*model.Event
	decodeJSON(t, rec, &evts)
	if len(evts) != 1 || evts[0].Topic != events.TopicPrizeCreated {
		t.Fatalf("journal = %+v", evts)
	}

	rec = doJSON(t, env.handler, "GET", "/events/1900/peace", nil)
	requireStatus(t, rec, http.StatusOK)
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Fatalf("empty journal body = %s", rec.Body.String())
	}
}

func TestCreatePrize_Unauthorized(t *testing.T) {
	env := newTestEnv(t, nil)
	body := map[string]any{"year": "2025", "category": "peace"}

	for _, tc := range []struct {
		name, user, password string
	}{
		{"no credentials", "", ""},
		{"wrong password", "user", "admin123"},
		{"unknown user", "mallory", "user123"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSONAs(t, env.handler, "POST", "/prizes", body, tc.user, tc.password)
			requireStatus(t, rec, http.StatusUnauthorized)
			if got := rec.Header().Get("WWW-Authenticate"); got != `Basic realm="nobel"` {
				t.Fatalf("WWW-Authenticate = %q", got)
			}
		})
	}
	if n, _ := env.store.Count(t.Context()); n != 0 {
		t.Fatalf("store size = %d, want 0", n)
	}
	if _, err := os.Stat(env.path); !os.IsNotExist(err) {
		t.Fatalf("document should not have been written, stat err = %v", err)
	}
}

func TestCreatePrize_Invalid(t *testing.T) {
	env := newTestEnv(t, nil)
	for _, tc := range []struct {
		name string
		body any
	}{
		{"malformed JSON", `{"year": "2025",`},
		{"trailing data", `{"year":"2025","category":"peace"} {}`},
		{"wrong type", `{"year": 2025, "category": "peace"}`},
		{"missing year", map[string]any{"category": "peace"}},
		{"blank category", map[string]any{"year": "2025", "category": "  "}},
		{"laureate without firstname", map[string]any{"year": "2025", "category": "peace", "laureates": []map[string]any{{"surname": "X"}}}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			rec := asUser(t, env.handler, "POST", "/prizes", tc.body)
			requireStatus(t, rec, http.StatusUnprocessableEntity)
		})
	}
	if n, _ := env.store.Count(t.Context()); n != 0 {
		t.Fatalf("store size = %d, want 0", n)
	}
}

func TestCreatePrize_ConcurrentSameKey(t *testing.T) {
	env := newTestEnv(t, nil)
	const n = 16
	codes := make(chan int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec := asUser(t, env.handler, "POST", "/prizes", map[string]any{"year": "2030", "category": "chemistry"})
			codes <- rec.Code
		}()
	}
	wg.Wait()
	close(codes)

	created, conflicts := 0, 0
	for c := range codes {
		switch c {
		case http.StatusCreated:
			created++
		case http.StatusConflict:
			conflicts++
		default:
			t.Fatalf("unexpected status %d", c)
		}
	}
	if created != 1 || conflicts != n-1 {
		t.Fatalf("created=%d conflicts=%d", created, conflicts)
	}
	requireRoundTrip(t, env)
}

func TestCreatePrize_PersistWarningStillSucceeds(t *testing.T) {
	// The parent directory does not exist, so every rewrite fails.
	path := filepath.Join(t.TempDir(), "missing", "nobel_prizes.json")
	env := newTestEnvAt(t, path, nil)

	rec := asUser(t, env.handler, "POST", "/prizes", map[string]any{"year": "2025", "category": "peace"})
	requireStatus(t, rec, http.StatusCreated)

	rec = doJSON(t, env.handler, "GET", "/prizes/year/2025", nil)
	requireStatus(t, rec, http.StatusOK)
	requireEvent(t, env, 1, events.TopicPrizeCreated)

	metrics := doJSON(t, env.handler, "GET", "/metrics", nil)
	if !strings.Contains(metrics.Body.String(), "nobel_persist_warnings_total 1") {
		t.Fatalf("expected persist warning to be counted:\n%s", metrics.Body.String())
	}
}

func TestUpdatePrize(t *testing.T) {
	env := newTestEnv(t, nil, seedPrizes()...)

	t.Run("partial update leaves other fields", func(t *testing.T) {
		rec := asUser(t, env.handler, "PUT", "/prizes/1903/PHYSICS", map[string]any{"overallMotivation": "radiation"})
		requireStatus(t, rec, http.StatusOK)
		var got model.Prize
		decodeJSON(t, rec, &got)
		if got.OverallMotivation != "radiation" || len(got.Laureates) != 2 || got.Category != "physics" {
			t.Fatalf("unexpected prize: %+v", got)
		}
	})

	t.Run("null clears motivation", func(t *testing.T) {
		rec := asUser(t, env.handler, "PUT", "/prizes/1903/physics", `{"overallMotivation": null}`)
		requireStatus(t, rec, http.StatusOK)
		var got model.Prize
		decodeJSON(t, rec, &got)
		if got.OverallMotivation != "" {
			t.Fatalf("motivation = %q, want cleared", got.OverallMotivation)
		}
		rec = doJSON(t, env.handler, "GET", "/prizes/motivation/1903/physics", nil)
		requireStatus(t, rec, http.StatusOK)
	})

	t.Run("laureates replaced wholesale with derived ids", func(t *testing.T) {
		rec := asUser(t, env.handler, "PUT", "/prizes/1911/chemistry", map[string]any{
			"laureates": []map[string]any{
				{"firstname": "Marie", "surname": "Skłodowska Curie"},
				{"id": "keep-me", "firstname": "Irène"},
			},
		})
		requireStatus(t, rec, http.StatusOK)
		var got model.Prize
		decodeJSON(t, rec, &got)
		want := []model.Laureate{
			{ID: "marieskłodowskacurie1911", Firstname: "Marie", Surname: "Skłodowska Curie"},
			{ID: "keep-me", Firstname: "Irène"},
		}
		if diff := cmp.Diff(want, got.Laureates); diff != "" {
			t.Fatalf("laureates mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("null year rejected", func(t *testing.T) {
		rec := asUser(t, env.handler, "PUT", "/prizes/1911/chemistry", `{"year": null}`)
		requireStatus(t, rec, http.StatusUnprocessableEntity)
	})

	t.Run("rename onto existing prize conflicts", func(t *testing.T) {
		rec := asUser(t, env.handler, "PUT", "/prizes/1903/peace", map[string]any{"category": "Physics"})
		requireStatus(t, rec, http.StatusConflict)
	})

	requireRoundTrip(t, env)
	if got := len(env.journal.snapshot()); got != 3 {
		t.Fatalf("journaled events = %d, want 3", got)
	}
}

func TestUpdatePrize_NotFoundLeavesStoreUntouched(t *testing.T) {
	env := newTestEnv(t, nil, seedPrizes()...)
	before := readFile(t, env.path)

	rec := asAdmin(t, env.handler, "PUT", "/prizes/1999/physics", map[string]any{"overallMotivation": "x"})
	requireStatus(t, rec, http.StatusNotFound)

	if after := readFile(t, env.path); after != before {
		t.Fatal("document changed after failed update")
	}
	if got := len(env.journal.snapshot()); got != 0 {
		t.Fatalf("journaled events = %d, want 0", got)
	}
}

func TestUpdatePrize_RequiresAuth(t *testing.T) {
	env := newTestEnv(t, nil, seedPrizes()...)
	rec := doJSON(t, env.handler, "PUT", "/prizes/1903/physics", map[string]any{"overallMotivation": "x"})
	requireStatus(t, rec, http.StatusUnauthorized)
}

func TestUpdatePrize_RecordsChanges(t *testing.T) {
	env := newTestEnv(t, nil, seedPrizes()...)
	rec := asUser(t, env.handler, "PUT", "/prizes/1921/physics", map[string]any{"year": "1922"})
	requireStatus(t, rec, http.StatusOK)

	e := requireEvent(t, env, 1, events.TopicPrizeUpdated)
	if e.Year != "1922" {
		t.Fatalf("event keyed by %s, want the renamed year", e.Year)
	}
	if !strings.Contains(string(e.Payload), `"changes":{"year":"1922"}`) {
		t.Fatalf("payload = %s", e.Payload)
	}
	rec = doJSON(t, env.handler, "GET", "/prizes/year/1921", nil)
	requireStatus(t, rec, http.StatusNotFound)
}

func TestDeletePrize(t *testing.T) {
	env := newTestEnv(t, nil, seedPrizes()...)
	before := readFile(t, env.path)

	t.Run("user is forbidden", func(t *testing.T) {
		rec := asUser(t, env.handler, "DELETE", "/prizes/1903/physics", nil)
		requireStatus(t, rec, http.StatusForbidden)
		if msg := errorMessage(t, rec); !strings.Contains(msg, "delete requires a different role") {
			t.Fatalf("error = %q", msg)
		}
		if after := readFile(t, env.path); after != before {
			t.Fatal("document changed after forbidden delete")
		}
	})

	t.Run("unauthenticated", func(t *testing.T) {
		rec := doJSON(t, env.handler, "DELETE", "/prizes/1903/physics", nil)
		requireStatus(t, rec, http.StatusUnauthorized)
	})

	t.Run("admin on missing prize", func(t *testing.T) {
		rec := asAdmin(t, env.handler, "DELETE", "/prizes/1999/physics", nil)
		requireStatus(t, rec, http.StatusNotFound)
	})

	t.Run("admin deletes", func(t *testing.T) {
		rec := asAdmin(t, env.handler, "DELETE", "/prizes/1903/PHYSICS", nil)
		requireStatus(t, rec, http.StatusNoContent)
		if rec.Body.Len() != 0 {
			t.Fatalf("expected empty body, got %q", rec.Body.String())
		}
		rec = doJSON(t, env.handler, "GET", "/laureates/1903/physics", nil)
		requireStatus(t, rec, http.StatusNotFound)
	})

	requireRoundTrip(t, env)
	e := requireEvent(t, env, 1, events.TopicPrizeDeleted)
	if e.Actor != "admin" {
		t.Fatalf("actor = %q", e.Actor)
	}
}

func TestRateLimit_StrictTierOnMutations(t *testing.T) {
	tiers := map[string]ratelimit.Tier{
		ratelimit.TierDefault: {Count: 100, Window: time.Minute},
		ratelimit.TierStrict:  {Count: 3, Window: time.Minute},
	}
	env := newTestEnv(t, tiers, seedPrizes()...)

	// Budget is shared by all mutation routes and independent of the outcome.
	requireStatus(t, asUser(t, env.handler, "POST", "/prizes", map[string]any{"year": "2025", "category": "peace"}), http.StatusCreated)
	requireStatus(t, doJSON(t, env.handler, "POST", "/prizes", map[string]any{"year": "2026", "category": "peace"}), http.StatusUnauthorized)
	requireStatus(t, asUser(t, env.handler, "DELETE", "/prizes/2025/peace", nil), http.StatusForbidden)

	// The request crossing the threshold is rejected regardless of credentials.
	for _, tc := range []struct {
		name, user, password string
	}{
		{"admin", "admin", "admin123"},
		{"bad credentials", "admin", "wrong"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSONAs(t, env.handler, "POST", "/prizes", map[string]any{"year": "2027", "category": "peace"}, tc.user, tc.password)
			requireStatus(t, rec, http.StatusTooManyRequests)
		})
	}
	requireStatus(t, asAdmin(t, env.handler, "DELETE", "/prizes/2025/peace", nil), http.StatusTooManyRequests)

	// The rejected requests never reached the store.
	if n, _ := env.store.Count(t.Context()); n != 5 {
		t.Fatalf("store size = %d, want 5", n)
	}

	// Queries use their own tier.
	requireStatus(t, doJSON(t, env.handler, "GET", "/prizes", nil), http.StatusOK)
}

func TestRateLimit_PerClient(t *testing.T) {
	tiers := map[string]ratelimit.Tier{
		ratelimit.TierDefault: {Count: 1, Window: time.Hour},
		ratelimit.TierStrict:  {Count: 1, Window: time.Hour},
	}
	env := newTestEnv(t, tiers, seedPrizes()...)

	get := func(addr string) int {
		req := newRequest(t, "GET", "/prizes")
		req.RemoteAddr = addr
		rec := serve(env.handler, req)
		return rec.Code
	}
	if code := get("198.51.100.7:5000"); code != http.StatusOK {
		t.Fatalf("first request = %d", code)
	}
	// Same host, different port: same client.
	if code := get("198.51.100.7:6000"); code != http.StatusTooManyRequests {
		t.Fatalf("second request = %d, want 429", code)
	}
	if code := get("198.51.100.8:5000"); code != http.StatusOK {
		t.Fatalf("other client = %d", code)
	}
}
