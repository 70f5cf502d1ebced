package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ConferenceMonitor/internal/areas"
	"ConferenceMonitor/internal/collector"
	"ConferenceMonitor/internal/dedupe"
	"ConferenceMonitor/internal/domain"
	"ConferenceMonitor/internal/infrastructure/storage"
	"ConferenceMonitor/internal/tier"
	"ConferenceMonitor/internal/usecase"
)

type staticSource struct {
	payloads map[domain.EntityType][]collector.Payload
}

func (s *staticSource) Collect(_ context.Context, _ string, entity domain.EntityType) ([]collector.Payload, error) {
	return s.payloads[entity], nil
}

func newTestServer(t *testing.T, source *staticSource) (*Server, *storage.Store) {
	t.Helper()
	store, err := storage.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	if source == nil {
		source = &staticSource{}
	}
	tiers := tier.Default()
	registry := areas.New([]string{"machine learning", "computer vision"})
	refresher := usecase.NewRefresher(store, source, dedupe.New(tiers), tiers, nil, time.Minute, nil)
	server := NewServer(store, registry, refresher,
		usecase.NewTrendAnalyzer(store), usecase.NewReporter(store, nil, nil),
		usecase.NewQuerier(store, nil), nil)
	return server, store
}

func doRequest(t *testing.T, handler http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, into any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(into); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestStatusEndpoint(t *testing.T) {
	server, store := newTestServer(t, nil)
	ctx := context.Background()
	if err := store.UpsertPaper(ctx, domain.Paper{ID: "p1", Title: "Some Paper"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	rec := doRequest(t, server.Handler(), http.MethodGet, "/api/status", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status code %d", rec.Code)
	}

	var body struct {
		Status       string   `json:"status"`
		TrackedAreas []string `json:"tracked_areas"`
		Papers       int      `json:"papers"`
	}
	decode(t, rec, &body)
	if body.Status != "ok" || len(body.TrackedAreas) != 2 || body.Papers != 1 {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestResearchAreasRoundTrip(t *testing.T) {
	server, store := newTestServer(t, nil)

	rec := doRequest(t, server.Handler(), http.MethodPost, "/api/research-areas",
		`{"areas": ["robotics", "  robotics ", "quantum computing"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status code %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Areas []string `json:"areas"`
	}
	decode(t, rec, &body)
	if len(body.Areas) != 2 {
		t.Fatalf("expected deduplicated areas, got %v", body.Areas)
	}

	rec = doRequest(t, server.Handler(), http.MethodGet, "/api/research-areas", "")
	decode(t, rec, &body)
	if len(body.Areas) != 2 || body.Areas[0] != "robotics" {
		t.Fatalf("registry not replaced: %v", body.Areas)
	}

	persisted, err := store.LoadAreas(context.Background())
	if err != nil {
		t.Fatalf("load areas: %v", err)
	}
	if len(persisted) != 2 {
		t.Fatalf("areas not persisted: %v", persisted)
	}
}

func TestResearchAreasRejectsEmptySet(t *testing.T) {
	server, _ := newTestServer(t, nil)

	rec := doRequest(t, server.Handler(), http.MethodPost, "/api/research-areas", `{"areas": ["  "]}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status code %d, want 400", rec.Code)
	}
}

func TestConferenceListHidesLapsedRecords(t *testing.T) {
	server, store := newTestServer(t, nil)
	ctx := context.Background()

	future := domain.Conference{
		ID: "c-future", Title: "ICML 2099",
		Start:         time.Date(2099, 7, 13, 0, 0, 0, 0, time.UTC),
		ResearchAreas: []string{"machine learning"},
	}
	past := domain.Conference{
		ID: "c-past", Title: "ICML 2020",
		Start:         time.Date(2020, 7, 13, 0, 0, 0, 0, time.UTC),
		End:           time.Date(2020, 7, 18, 0, 0, 0, 0, time.UTC),
		ResearchAreas: []string{"machine learning"},
	}
	for _, c := range []domain.Conference{future, past} {
		if err := store.UpsertConference(ctx, c); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	rec := doRequest(t, server.Handler(), http.MethodGet, "/api/conferences?area=machine+learning", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status code %d", rec.Code)
	}

	var body struct {
		Conferences []domain.Conference `json:"conferences"`
		Count       int                 `json:"count"`
	}
	decode(t, rec, &body)
	if body.Count != 1 || body.Conferences[0].ID != "c-future" {
		t.Fatalf("lapsed record should be hidden: %+v", body)
	}
}

func TestConferenceByID(t *testing.T) {
	server, store := newTestServer(t, nil)
	ctx := context.Background()

	c := domain.Conference{ID: "c1", Title: "ICLR 2099",
		Start: time.Date(2099, 5, 1, 0, 0, 0, 0, time.UTC)}
	if err := store.UpsertConference(ctx, c); err != nil {
		t.Fatalf("seed: %v", err)
	}

	rec := doRequest(t, server.Handler(), http.MethodGet, "/api/conferences/c1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status code %d", rec.Code)
	}
	var got domain.Conference
	decode(t, rec, &got)
	if got.Title != "ICLR 2099" {
		t.Fatalf("unexpected conference: %+v", got)
	}

	rec = doRequest(t, server.Handler(), http.MethodGet, "/api/conferences/missing", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status code %d, want 404", rec.Code)
	}
}

func TestConferencesRefreshEndpoint(t *testing.T) {
	source := &staticSource{payloads: map[domain.EntityType][]collector.Payload{
		domain.EntityConference: {
			{
				"title":    "NeurIPS 2099",
				"dates":    "December 6-12, 2099",
				"location": "Sydney, Australia",
			},
		},
	}}
	server, store := newTestServer(t, source)

	rec := doRequest(t, server.Handler(), http.MethodPost, "/api/conferences/refresh?area=machine+learning", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status code %d: %s", rec.Code, rec.Body.String())
	}

	var result domain.RefreshResult
	decode(t, rec, &result)
	if result.Added != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}

	stored, err := store.Conferences(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(stored) != 1 || stored[0].Tier != domain.TierAStar {
		t.Fatalf("refresh did not store classified record: %+v", stored)
	}
}

func TestDeadlinesEndpointValidatesDays(t *testing.T) {
	server, _ := newTestServer(t, nil)

	rec := doRequest(t, server.Handler(), http.MethodGet, "/api/deadlines?days=-1", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status code %d, want 400", rec.Code)
	}

	rec = doRequest(t, server.Handler(), http.MethodGet, "/api/deadlines", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status code %d", rec.Code)
	}
	var body struct {
		WindowDays int `json:"window_days"`
	}
	decode(t, rec, &body)
	if body.WindowDays != defaultDeadlineWindowDays {
		t.Fatalf("default window got %d", body.WindowDays)
	}
}

func TestQueryEndpointValidation(t *testing.T) {
	server, _ := newTestServer(t, nil)

	rec := doRequest(t, server.Handler(), http.MethodPost, "/api/query", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status code %d, want 400", rec.Code)
	}

	// No LLM configured: a valid question fails upstream, not with 500.
	rec = doRequest(t, server.Handler(), http.MethodPost, "/api/query", `{"question": "what is next?"}`)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status code %d, want 502", rec.Code)
	}
}
