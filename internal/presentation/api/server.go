// Package api serves the timeline month index and day buckets over HTTP.
package api

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/penwyp/remi-timeline/internal/core/model"
	"github.com/penwyp/remi-timeline/internal/core/timeline"
	"github.com/penwyp/remi-timeline/internal/presentation/formatter"
	"github.com/penwyp/remi-timeline/internal/util"
)

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status string `json:"status"`
	Posts  int    `json:"posts"`
	Months int    `json:"months"`
}

// MonthsResponse is returned by GET /api/months.
type MonthsResponse struct {
	Months []formatter.MonthRow `json:"months"`
}

// ClosestResponse is returned by GET /api/closest.
type ClosestResponse struct {
	Requested string `json:"requested"`
	Month     string `json:"month"`
	Label     string `json:"label"`
	Exact     bool   `json:"exact"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Server holds the current post set. SetPosts may be called while serving.
type Server struct {
	mu     sync.RWMutex
	loc    *time.Location
	posts  []model.Post
	months []timeline.Month
}

// NewServer creates a server over posts.
func NewServer(posts []model.Post, loc *time.Location) *Server {
	if loc == nil {
		loc = time.Local
	}
	s := &Server{loc: loc}
	s.SetPosts(posts)
	return s
}

// SetPosts swaps the served post set.
func (s *Server) SetPosts(posts []model.Post) {
	months := timeline.BuildMonthIndex(posts, s.loc)
	s.mu.Lock()
	s.posts = posts
	s.months = months
	s.mu.Unlock()
}

func (s *Server) snapshot() ([]model.Post, []timeline.Month) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.posts, s.months
}

// Router builds the HTTP handler. An empty origins list allows any origin.
func (s *Server) Router(origins []string) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}).Handler)

	r.Get("/health", s.health)
	r.Route("/api", func(r chi.Router) {
		r.Get("/months", s.listMonths)
		r.Get("/months/{month}/days", s.listDays)
		r.Get("/closest", s.closest)
	})
	return r
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	posts, months := s.snapshot()
	respondJSON(w, http.StatusOK, HealthResponse{Status: "ok", Posts: len(posts), Months: len(months)})
}

func (s *Server) listMonths(w http.ResponseWriter, r *http.Request) {
	posts, _ := s.snapshot()
	respondJSON(w, http.StatusOK, MonthsResponse{Months: formatter.BuildMonthRows(posts, s.loc)})
}

func (s *Server) listDays(w http.ResponseWriter, r *http.Request) {
	requested, err := timeline.ParseMonth(chi.URLParam(r, "month"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	closest, _ := strconv.ParseBool(r.URL.Query().Get("closest"))

	posts, months := s.snapshot()
	month := requested
	if !timeline.Contains(months, requested) {
		if !closest {
			respondError(w, http.StatusNotFound, "no posts in "+requested.String())
			return
		}
		resolved, ok := timeline.ResolveClosestMonth(requested, months)
		if !ok {
			respondError(w, http.StatusNotFound, "no posts")
			return
		}
		month = resolved
	}

	report := formatter.BuildDayReport(posts, month, s.loc)
	if month != requested {
		report.Requested = requested.String()
	}
	respondJSON(w, http.StatusOK, report)
}

func (s *Server) closest(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("month")
	if raw == "" {
		respondError(w, http.StatusBadRequest, "month query parameter is required")
		return
	}
	requested, err := timeline.ParseMonth(raw)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	_, months := s.snapshot()
	resolved, ok := timeline.ResolveClosestMonth(requested, months)
	if !ok {
		respondError(w, http.StatusNotFound, "no posts")
		return
	}
	respondJSON(w, http.StatusOK, ClosestResponse{
		Requested: requested.String(),
		Month:     resolved.String(),
		Label:     resolved.Label(),
		Exact:     resolved == requested,
	})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		util.LogDebug("http request",
			util.F("method", r.Method),
			util.F("path", r.URL.Path),
			util.F("status", ww.Status()),
			util.F("duration", util.FormatDuration(time.Since(start))),
			util.F("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	body, err := sonic.ConfigStd.Marshal(payload)
	if err != nil {
		util.LogErrorf("api: encode response: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Error: message})
}
