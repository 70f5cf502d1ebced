package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"ConferenceMonitor/internal/areas"
	"ConferenceMonitor/internal/domain"
	"ConferenceMonitor/internal/ports"
	"ConferenceMonitor/internal/temporal"
	"ConferenceMonitor/internal/usecase"
)

const defaultDeadlineWindowDays = 30

// Server exposes the monitor over HTTP. All responses are JSON.
type Server struct {
	store     ports.Store
	registry  *areas.Registry
	refresher *usecase.Refresher
	trends    *usecase.TrendAnalyzer
	reporter  *usecase.Reporter
	querier   *usecase.Querier
	logger    *slog.Logger
	started   time.Time
	now       func() time.Time
}

// NewServer wires the handler dependencies.
func NewServer(store ports.Store, registry *areas.Registry, refresher *usecase.Refresher,
	trends *usecase.TrendAnalyzer, reporter *usecase.Reporter, querier *usecase.Querier,
	log *slog.Logger) *Server {
	return &Server{
		store:     store,
		registry:  registry,
		refresher: refresher,
		trends:    trends,
		reporter:  reporter,
		querier:   querier,
		logger:    log,
		started:   time.Now(),
		now:       time.Now,
	}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /api/research-areas", s.handleAreasGet)
	mux.HandleFunc("POST /api/research-areas", s.handleAreasPost)
	mux.HandleFunc("GET /api/conferences", s.handleConferences)
	mux.HandleFunc("GET /api/conferences/{id}", s.handleConferenceByID)
	mux.HandleFunc("POST /api/conferences/refresh", s.handleConferencesRefresh)
	mux.HandleFunc("GET /api/papers", s.handlePapers)
	mux.HandleFunc("GET /api/papers/{id}", s.handlePaperByID)
	mux.HandleFunc("POST /api/papers/refresh", s.handlePapersRefresh)
	mux.HandleFunc("GET /api/trends", s.handleTrends)
	mux.HandleFunc("GET /api/deadlines", s.handleDeadlines)
	mux.HandleFunc("POST /api/query", s.handleQuery)

	return mux
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	conferences, err := s.store.Conferences(r.Context())
	if err != nil {
		s.error(w, http.StatusInternalServerError, err)
		return
	}
	papers, err := s.store.Papers(r.Context())
	if err != nil {
		s.error(w, http.StatusInternalServerError, err)
		return
	}

	s.json(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"tracked_areas":  s.registry.List(),
		"conferences":    len(conferences),
		"papers":         len(papers),
		"uptime_seconds": int(time.Since(s.started).Seconds()),
	})
}

func (s *Server) handleAreasGet(w http.ResponseWriter, _ *http.Request) {
	s.json(w, http.StatusOK, map[string]any{"areas": s.registry.List()})
}

func (s *Server) handleAreasPost(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Areas []string `json:"areas"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.badRequest(w, "body must be {\"areas\": [...]}")
		return
	}
	applied := s.registry.Replace(body.Areas)
	if len(applied) == 0 {
		s.badRequest(w, "at least one non-empty area is required")
		return
	}
	if err := s.store.SaveAreas(r.Context(), applied); err != nil {
		s.error(w, http.StatusInternalServerError, err)
		return
	}
	s.json(w, http.StatusOK, map[string]any{"areas": applied})
}

func (s *Server) handleConferences(w http.ResponseWriter, r *http.Request) {
	var (
		list []domain.Conference
		err  error
	)
	if area := strings.TrimSpace(r.URL.Query().Get("area")); area != "" {
		list, err = s.store.ConferencesByArea(r.Context(), area)
	} else {
		list, err = s.store.Conferences(r.Context())
	}
	if err != nil {
		s.error(w, http.StatusInternalServerError, err)
		return
	}

	// Listings show upcoming and date-unknown records; conferences that
	// lapsed since the last refresh are hidden.
	now := s.now()
	visible := make([]domain.Conference, 0, len(list))
	for _, c := range list {
		if temporal.Visible(c, now) {
			visible = append(visible, c)
		}
	}

	s.json(w, http.StatusOK, map[string]any{"conferences": visible, "count": len(visible)})
}

func (s *Server) handleConferenceByID(w http.ResponseWriter, r *http.Request) {
	c, found, err := s.store.ConferenceByID(r.Context(), r.PathValue("id"))
	if err != nil {
		s.error(w, http.StatusInternalServerError, err)
		return
	}
	if !found {
		s.json(w, http.StatusNotFound, map[string]any{"error": "conference not found"})
		return
	}
	s.json(w, http.StatusOK, c)
}

func (s *Server) handleConferencesRefresh(w http.ResponseWriter, r *http.Request) {
	result, err := s.refresher.RefreshConferences(r.Context(), s.refreshAreas(r))
	if err != nil {
		s.error(w, http.StatusInternalServerError, err)
		return
	}
	s.json(w, http.StatusOK, result)
}

func (s *Server) handlePapers(w http.ResponseWriter, r *http.Request) {
	var (
		list []domain.Paper
		err  error
	)
	if area := strings.TrimSpace(r.URL.Query().Get("area")); area != "" {
		list, err = s.store.PapersByArea(r.Context(), area)
	} else {
		list, err = s.store.Papers(r.Context())
	}
	if err != nil {
		s.error(w, http.StatusInternalServerError, err)
		return
	}
	s.json(w, http.StatusOK, map[string]any{"papers": list, "count": len(list)})
}

func (s *Server) handlePaperByID(w http.ResponseWriter, r *http.Request) {
	p, found, err := s.store.PaperByID(r.Context(), r.PathValue("id"))
	if err != nil {
		s.error(w, http.StatusInternalServerError, err)
		return
	}
	if !found {
		s.json(w, http.StatusNotFound, map[string]any{"error": "paper not found"})
		return
	}
	s.json(w, http.StatusOK, p)
}

func (s *Server) handlePapersRefresh(w http.ResponseWriter, r *http.Request) {
	result, err := s.refresher.RefreshPapers(r.Context(), s.refreshAreas(r))
	if err != nil {
		s.error(w, http.StatusInternalServerError, err)
		return
	}
	s.json(w, http.StatusOK, result)
}

func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	report, err := s.trends.Trends(r.Context(), strings.TrimSpace(r.URL.Query().Get("area")))
	if err != nil {
		s.error(w, http.StatusInternalServerError, err)
		return
	}
	s.json(w, http.StatusOK, report)
}

func (s *Server) handleDeadlines(w http.ResponseWriter, r *http.Request) {
	days := defaultDeadlineWindowDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			s.badRequest(w, "days must be a positive integer")
			return
		}
		days = parsed
	}

	entries, err := s.reporter.UpcomingDeadlines(r.Context(), time.Duration(days)*24*time.Hour)
	if err != nil {
		s.error(w, http.StatusInternalServerError, err)
		return
	}
	s.json(w, http.StatusOK, map[string]any{"deadlines": entries, "window_days": days})
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Question string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || strings.TrimSpace(body.Question) == "" {
		s.badRequest(w, "body must be {\"question\": \"...\"}")
		return
	}

	answer, err := s.querier.Ask(r.Context(), body.Question)
	if err != nil {
		s.error(w, http.StatusBadGateway, err)
		return
	}
	s.json(w, http.StatusOK, map[string]any{"question": body.Question, "answer": answer})
}

// refreshAreas resolves the refresh scope: an explicit ?area= parameter
// or the full tracked set.
func (s *Server) refreshAreas(r *http.Request) []string {
	if area := strings.TrimSpace(r.URL.Query().Get("area")); area != "" {
		return []string{area}
	}
	return s.registry.List()
}

func (s *Server) json(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil && s.logger != nil {
		s.logger.Error("encode response", "error", err)
	}
}

func (s *Server) badRequest(w http.ResponseWriter, msg string) {
	s.json(w, http.StatusBadRequest, map[string]any{"error": msg})
}

func (s *Server) error(w http.ResponseWriter, status int, err error) {
	if s.logger != nil {
		s.logger.Error("request failed", "error", err)
	}
	s.json(w, status, map[string]any{"error": err.Error()})
}
