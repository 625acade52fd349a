package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"congestion-pulse/internal/db"
	"congestion-pulse/internal/demand"
	"congestion-pulse/internal/models"
	"congestion-pulse/internal/refresh"
	"congestion-pulse/internal/synth"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Server represents the API server
type Server struct {
	db          *db.Database
	builder     *Builder
	coordinator *refresh.Coordinator
	log         *zap.Logger
	router      *mux.Router
}

// NewServer creates a new API server
func NewServer(database *db.Database, builder *Builder, coordinator *refresh.Coordinator, log *zap.Logger) *Server {
	s := &Server{
		db:          database,
		builder:     builder,
		coordinator: coordinator,
		log:         log,
		router:      mux.NewRouter(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	// Health check
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")

	// Ridership: bare array, matching the upstream prediction contract
	s.router.HandleFunc("/api/ridership-predictions", s.handleRidershipPredictions).Methods("GET")

	// Synthetic congestion volumes
	s.router.HandleFunc("/api/entry-volumes", s.handleEntryVolumes).Methods("GET")

	// Full renderer envelope
	s.router.HandleFunc("/api/map-config", s.handleMapConfig).Methods("GET")

	// Debounced view state
	s.router.HandleFunc("/api/view", s.handleGetView).Methods("GET")
	s.router.HandleFunc("/api/view", s.handleUpdateView).Methods("POST")

	// Reference data
	s.router.HandleFunc("/api/vehicle-classes", s.handleVehicleClasses).Methods("GET")
	s.router.HandleFunc("/api/stations", s.handleStations).Methods("GET")

	// Stats
	s.router.HandleFunc("/api/v1/stats", s.handleStats).Methods("GET")
	s.router.HandleFunc("/api/v1/snapshots", s.handleSnapshots).Methods("GET")

	// Preflight requests are answered by the CORS middleware; the handler
	// exists so the router matches them.
	s.router.PathPrefix("/api/").Methods("OPTIONS").HandlerFunc(func(http.ResponseWriter, *http.Request) {})

	// Add middleware
	s.router.Use(s.loggingMiddleware)
	s.router.Use(jsonMiddleware)
	s.router.Use(corsMiddleware)
}

// Router returns the configured router
func (s *Server) Router() *mux.Router {
	return s.router
}

// Middleware
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}

func jsonMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// corsMiddleware opens the /api/ namespace to browser clients on other
// origins; the dashboard is served separately in development.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// Response helpers
type apiResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Meta    *meta       `json:"meta,omitempty"`
}

type meta struct {
	Total   int   `json:"total,omitempty"`
	Limit   int   `json:"limit,omitempty"`
	QueryMs int64 `json:"query_ms,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(apiResponse{Success: true, Data: data})
}

func respondError(w http.ResponseWriter, status int, message string) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(apiResponse{Success: false, Error: message})
}

func respondWithMeta(w http.ResponseWriter, data interface{}, m *meta) {
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(apiResponse{Success: true, Data: data, Meta: m})
}

// parseTimeParam reads time=HH:MM, defaulting to noon on absence or garbage;
// the dashboard must render for any input.
func parseTimeParam(r *http.Request) (hour, minute int) {
	hour, minute = 12, 0
	v := r.URL.Query().Get("time")
	if v == "" {
		return
	}
	parts := strings.SplitN(v, ":", 2)
	if h, err := strconv.Atoi(parts[0]); err == nil && h >= 0 && h <= 23 {
		hour = h
	}
	if len(parts) == 2 {
		if m, err := strconv.Atoi(parts[1]); err == nil && m >= 0 && m <= 59 {
			minute = m
		}
	}
	return
}

func parseDayParam(r *http.Request) string {
	if v := r.URL.Query().Get("day"); v != "" {
		return v
	}
	return "weekday"
}

// parseClassParam reads classes=1,2,6. Absent means all tollable classes.
func parseClassParam(r *http.Request) []int {
	v := r.URL.Query().Get("classes")
	if v == "" {
		var ids []int
		for _, c := range demand.TollableClasses() {
			ids = append(ids, c.ID)
		}
		return ids
	}
	var ids []int
	for _, part := range strings.Split(v, ",") {
		if id, err := strconv.Atoi(strings.TrimSpace(part)); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

// Handlers
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// handleRidershipPredictions mirrors the upstream contract: a bare JSON array
// of station predictions, live when the upstream serves and synthetic
// otherwise. Never an error status.
func (s *Server) handleRidershipPredictions(w http.ResponseWriter, r *http.Request) {
	hour, minute := parseTimeParam(r)
	day := parseDayParam(r)

	snap := s.builder.ridership(r.Context(), hour, minute, day)

	type prediction struct {
		Station       string  `json:"station"`
		Latitude      float64 `json:"latitude"`
		Longitude     float64 `json:"longitude"`
		RidershipPred float64 `json:"ridership_pred"`
	}
	out := make([]prediction, 0, len(snap.Records))
	for _, rec := range snap.Records {
		out = append(out, prediction{
			Station:       rec.Name,
			Latitude:      rec.Latitude,
			Longitude:     rec.Longitude,
			RidershipPred: rec.Metric,
		})
	}

	w.Header().Set("X-Data-Source", string(snap.Source))
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(out)
}

func (s *Server) handleEntryVolumes(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	hour, minute := parseTimeParam(r)

	rows := synth.Volumes(synth.VolumeParams{
		Hour:     hour,
		Minute:   minute,
		Day:      parseDayParam(r),
		ClassIDs: parseClassParam(r),
	}, s.builder.rng, s.log)

	respondWithMeta(w, rows, &meta{
		Total:   len(rows),
		QueryMs: time.Since(start).Milliseconds(),
	})
}

func (s *Server) handleMapConfig(w http.ResponseWriter, r *http.Request) {
	hour, minute := parseTimeParam(r)
	perspective, _ := strconv.ParseBool(r.URL.Query().Get("perspective"))

	res := s.builder.Build(r.Context(), refresh.Params{
		Hour:        hour,
		Minute:      minute,
		Day:         parseDayParam(r),
		ClassIDs:    parseClassParam(r),
		Perspective: perspective,
	})

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"map":    res.Config,
		"source": res.Source,
		"reason": res.Reason,
	})
}

func (s *Server) handleGetView(w http.ResponseWriter, r *http.Request) {
	view, ok := s.coordinator.Latest()
	if !ok {
		respondError(w, http.StatusNotFound, "no view published yet")
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (s *Server) handleUpdateView(w http.ResponseWriter, r *http.Request) {
	var p refresh.Params
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if p.Hour < 0 || p.Hour > 23 || p.Minute < 0 || p.Minute > 59 {
		respondError(w, http.StatusBadRequest, "hour must be 0-23 and minute 0-59")
		return
	}
	if len(p.ClassIDs) == 0 {
		for _, c := range demand.TollableClasses() {
			p.ClassIDs = append(p.ClassIDs, c.ID)
		}
	}

	s.coordinator.Request(p)
	respondJSON(w, http.StatusAccepted, map[string]string{"status": "scheduled"})
}

func (s *Server) handleVehicleClasses(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, demand.Classes())
}

func (s *Server) handleStations(w http.ResponseWriter, r *http.Request) {
	stations, err := s.db.ListStations()
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, stations)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.db.GetStats()
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

func (s *Server) handleSnapshots(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	q := models.SnapshotQuery{Limit: 100}
	if v := r.URL.Query().Get("limit"); v != "" {
		q.Limit, _ = strconv.Atoi(v)
	}
	if v := r.URL.Query().Get("source"); v != "" {
		q.Source = v
	}

	snapshots, err := s.db.QuerySnapshots(q)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithMeta(w, snapshots, &meta{
		Total:   len(snapshots),
		Limit:   q.Limit,
		QueryMs: time.Since(start).Milliseconds(),
	})
}
