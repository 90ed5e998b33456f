package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/meltforce/repscore/internal/importer"
	"github.com/meltforce/repscore/internal/messages"
	"github.com/meltforce/repscore/internal/metrics"
	"github.com/meltforce/repscore/internal/session"
	"github.com/meltforce/repscore/internal/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	store    storage.Store
	sessions *session.Registry
	loader   *importer.Loader
	messages messages.Table
	instr    *metrics.Manager
	gatherer prometheus.Gatherer
	log      *slog.Logger
	apiKey   string
	router   chi.Router
}

// New creates a new Server with all routes configured. gatherer backs the
// /metrics endpoint and is normally the registry instr was built on.
func New(store storage.Store, sessions *session.Registry, instr *metrics.Manager, gatherer prometheus.Gatherer, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		store:    store,
		sessions: sessions,
		loader:   importer.NewLoader(store, log, instr, false),
		messages: messages.DefaultAPIMessages(),
		instr:    instr,
		gatherer: gatherer,
		log:      log,
		apiKey:   apiKey,
		router:   chi.NewRouter(),
	}
	s.routes()
	return s
}

// SetMCP mounts an MCP transport at /mcp. MCP tools only read, so the
// endpoint sits with the open read routes.
func (s *Server) SetMCP(h http.Handler) {
	s.router.Handle("/mcp", h)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(RequestMetrics(s.instr))
	s.router.Use(CORS)

	s.router.Get("/healthz", s.handleHealth)
	s.router.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	s.router.Route("/api/v1", func(r chi.Router) {
		// Read endpoints (no auth, tsnet handles access)
		r.Get("/exercises", s.handleExerciseCatalog)
		r.Get("/classify", s.handleClassify)
		r.Get("/templates", s.handleListTemplates)
		r.Get("/templates/{id}", s.handleGetTemplate)
		r.Get("/templates/{id}/plan", s.handleGetTemplatePlan)
		r.Get("/sessions/{id}", s.handleSessionStatus)
		r.Get("/workouts", s.handleQueryWorkouts)
		r.Get("/workouts/{id}", s.handleGetWorkout)
		r.Get("/workouts/{id}/summary", s.handleWorkoutSummary)
		r.Get("/training/summary", s.handleTrainingSummary)
		r.Get("/stats", s.handleStats)
		r.Get("/import-logs", s.handleImportLogs)

		// Mutating endpoints (API key required)
		r.Group(func(r chi.Router) {
			r.Use(APIKeyAuth(s.apiKey, s.messages))
			r.Post("/templates", s.handleCreateTemplate)
			r.Post("/sessions", s.handleStartSession)
			r.Post("/sessions/{id}/reps", s.handleAddRep)
			r.Post("/sessions/{id}/sets", s.handleCompleteSet)
			r.Post("/sessions/{id}/exercises/complete", s.handleCompleteExercise)
			r.Post("/sessions/{id}/finish", s.handleFinishSession)
			r.Delete("/sessions/{id}", s.handleAbandonSession)
			r.Post("/ingest", s.handleIngest)
		})
	})
}
