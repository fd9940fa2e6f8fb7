package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/claude/blockboard/internal/ingest"
	"github.com/claude/blockboard/internal/metrics"
	"github.com/claude/blockboard/internal/models"
	"github.com/claude/blockboard/internal/sessions"
	"github.com/claude/blockboard/internal/storage"
)

// Store is the persistence the handlers need. *storage.DB implements it.
type Store interface {
	ingest.BlockStore
	UserResolver
	Ping(ctx context.Context) error
	GetBlock(ctx context.Context, userID int, id uuid.UUID) (*models.Block, error)
	ActiveBlock(ctx context.Context, userID int) (*models.Block, error)
	ListBlocks(ctx context.Context, userID int, includeArchived bool) ([]storage.BlockSummary, error)
	DeleteBlock(ctx context.Context, userID int, id uuid.UUID) error
	SetActiveBlock(ctx context.Context, userID int, id uuid.UUID) error
	ArchiveBlock(ctx context.Context, userID int, id uuid.UUID) error
	ListSessions(ctx context.Context, userID int, blockID uuid.UUID, week int) ([]models.WorkoutSession, error)
	GetSession(ctx context.Context, userID int, id uuid.UUID) (*models.WorkoutSession, error)
	LogSet(ctx context.Context, userID int, sessionID, exerciseID uuid.UUID, index int, entry models.SetLog, now time.Time) (*models.WorkoutSession, error)
	AddExercise(ctx context.Context, userID int, blockID uuid.UUID, mat sessions.Materializer,
		dayIndex int, name string, typ models.ExerciseType, fromWeek int) (*storage.AddExerciseResult, error)
	InsertImportLog(ctx context.Context, log storage.ImportLog) (int64, error)
	QueryImportLogs(ctx context.Context, userID, limit int) ([]storage.ImportLog, error)
	GetDataStats(ctx context.Context, userID int) (*storage.DataStats, error)
}

var _ Store = (*storage.DB)(nil)

// Server holds dependencies for HTTP handlers.
type Server struct {
	store   Store
	ingest  *ingest.Provider
	mat     sessions.Materializer
	log     *slog.Logger
	apiKey  string
	router  chi.Router
	metrics *metrics.Manager
	cache   *whiteboardCache
	ts      WhoIser
	now     func() time.Time

	metricsHandler http.Handler
}

// Option configures optional server collaborators.
type Option func(*Server)

// WithMetrics instruments requests and domain events and serves the
// registry at /metrics.
func WithMetrics(m *metrics.Manager, handler http.Handler) Option {
	return func(s *Server) {
		s.metrics = m
		s.metricsHandler = handler
	}
}

// WithWhiteboardCache caches rendered whiteboards in memory.
func WithWhiteboardCache(sizeMB, ttlSeconds int) Option {
	return func(s *Server) {
		s.cache = newWhiteboardCache(sizeMB, ttlSeconds)
	}
}

// WithTailscale resolves callers through the tailnet instead of the local
// development identity.
func WithTailscale(ts WhoIser) Option {
	return func(s *Server) {
		s.ts = ts
	}
}

// New creates a new Server with all routes configured.
func New(store Store, mat sessions.Materializer, apiKey string, log *slog.Logger, opts ...Option) *Server {
	s := &Server{
		store:  store,
		ingest: ingest.NewProvider(store, mat, log),
		mat:    mat,
		log:    log,
		apiKey: apiKey,
		router: chi.NewRouter(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cache != nil {
		s.cache.metrics = s.metrics
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(PanicRecovery(s.log, s.metrics))

	s.router.Get("/health", s.handleHealth)
	if s.metricsHandler != nil {
		s.router.Handle("/metrics", s.metricsHandler)
	}

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(RequestLogging(s.log))
		if s.metrics != nil {
			r.Use(RequestMetrics(s.metrics))
		}
		r.Use(CORS)
		if s.ts != nil {
			r.Use(TailscaleIdentity(s.ts, s.store, s.log))
		} else {
			r.Use(DevIdentity)
		}

		r.Get("/me", s.handleMe)
		r.Get("/stats", s.handleStats)
		r.Get("/import-logs", s.handleImportLogs)
		r.Post("/normalize", s.handleNormalize)
		r.Post("/whiteboard/preview", s.handlePreviewWhiteboard)

		r.With(APIKeyAuth(s.apiKey)).Post("/blocks", s.handleImportBlock)
		r.Get("/blocks", s.handleListBlocks)
		r.Route("/blocks/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetBlock)
			r.Delete("/", s.handleDeleteBlock)
			r.Post("/activate", s.handleActivateBlock)
			r.Post("/archive", s.handleArchiveBlock)
			r.Get("/export", s.handleExportBlock)
			r.Get("/sessions", s.handleListSessions)
			r.Get("/progress", s.handleProgress)
			r.Get("/whiteboard", s.handleWhiteboard)
			r.Post("/days/{dayIndex}/exercises", s.handleAddExercise)
		})
		r.Get("/sessions/{id}", s.handleGetSession)
		r.Patch("/sessions/{id}/exercises/{exerciseID}/sets/{index}", s.handleLogSet)
	})
}
