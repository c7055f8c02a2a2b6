package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/upb/semantic-retrieval/app"
	"github.com/upb/semantic-retrieval/handlers"
	"github.com/upb/semantic-retrieval/middleware"
	"github.com/upb/semantic-retrieval/utils"
)

// AllowedHeaders are the request headers browser callers may send
var AllowedHeaders = []string{"authorization", "x-client-info", "apikey", "content-type"}

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	cfg := deps.Config
	logger := deps.Logger

	r := chi.NewRouter()

	// Core middleware
	r.Use(middleware.EnsureRequestID(logger))
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chimw.Recoverer)
	if cfg.Server.WriteTimeout > 0 {
		r.Use(chimw.Timeout(cfg.Server.WriteTimeout))
	}

	// CORS middleware
	origins := cfg.CORS.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: AllowedHeaders,
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         300,
	}))

	healthHandler := handlers.NewHealthHandler(healthChecker(deps), handlers.StatusInfo{
		Environment:        cfg.Environment,
		EmbeddingMode:      cfg.Embedding.Mode,
		EmbeddingModel:     cfg.Embedding.Model,
		EmbeddingDimension: cfg.Embedding.Dimensions,
		VectorStoreBackend: cfg.VectorStore.Backend,
	}, logger)
	retrievalHandler := handlers.NewRetrievalHandler(deps.Retrieval, logger)

	// Health check endpoints
	r.Get("/healthz", healthHandler.HandleHealth)
	r.Get("/readyz", healthHandler.HandleReadiness)

	// Unversioned alias for clients that post to /retrieve directly
	r.Post("/retrieve", retrievalHandler.HandleRetrieve)
	r.Options("/retrieve", preflight)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", healthHandler.HandleStatus)
		r.Post("/retrieve", retrievalHandler.HandleRetrieve)
		r.Options("/retrieve", preflight)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteError(w, http.StatusNotFound, "NotFound", "endpoint not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteError(w, http.StatusMethodNotAllowed, "MethodNotAllowed", "method not allowed", nil)
	})

	return r
}

// preflight answers OPTIONS requests that lack CORS request headers; real
// preflights are answered by the cors middleware before routing.
func preflight(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func healthChecker(deps *app.Dependencies) handlers.HealthChecker {
	if deps.VectorStore == nil {
		return nil
	}
	return deps.VectorStore
}
