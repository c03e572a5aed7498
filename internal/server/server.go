package server

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lazypower/synapse/internal/config"
	"github.com/lazypower/synapse/internal/graph"
	"github.com/lazypower/synapse/internal/store"
)

// Server is the synapse HTTP API server. It wraps the in-process graph
// operations; all request decoding and status-code mapping lives here, never
// in the core.
type Server struct {
	graph   *graph.Store
	builder *graph.Builder
	db      *store.DB // nil disables persistence
	cfg     config.Config
	router  chi.Router
	version string
	started time.Time
}

// New creates a new Server. db may be nil to run without persistence.
func New(g *graph.Store, b *graph.Builder, db *store.DB, cfg config.Config, version string) *Server {
	s := &Server{
		graph:   g,
		builder: b,
		db:      db,
		cfg:     cfg,
		version: version,
		started: time.Now(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(metricsMiddleware)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Post("/ingest", s.handleIngest)
		r.Get("/graph", s.handleGraph)
		r.Delete("/graph", s.handleClear)
		r.Post("/feedback", s.handleFeedback)
		r.Get("/stats", s.handleStats)
		r.Get("/connections/surprising", s.handleSurprising)
		r.Get("/nodes/{nodeID}/connections", s.handleConnections)
	})

	r.Handle("/metrics", promhttp.Handler())
	r.NotFound(spaHandler())

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	dbOK := true
	if s.db != nil {
		if err := s.db.Ping(); err != nil {
			dbOK = false
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"version":     s.version,
		"uptime":      time.Since(s.started).Seconds(),
		"db":          dbOK,
		"total_nodes": s.graph.NodeCount(),
		"total_edges": s.graph.EdgeCount(),
		"embedder":    s.builder.Provider.Model(),
	})
}

// persist snapshots the graph to sqlite after a mutation. Best effort: a
// failed save is logged, not surfaced, since the in-memory graph is already
// consistent.
func (s *Server) persist() {
	if s.db == nil {
		return
	}
	if err := s.db.SaveGraph(s.graph.Export(), s.builder.Provider.Model()); err != nil {
		log.Printf("persist graph: %v", err)
	}
	setGraphSize(s.graph.NodeCount(), s.graph.EdgeCount())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
