package router

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/leca/sauce-relay/internal/api"
	"github.com/leca/sauce-relay/internal/config"
	"github.com/leca/sauce-relay/internal/database"
	"github.com/leca/sauce-relay/internal/handler"
	"github.com/leca/sauce-relay/internal/sauce"
	"github.com/leca/sauce-relay/internal/storage"
)

// Server holds the application dependencies and HTTP router.
type Server struct {
	DB     database.Database
	Store  storage.Storage
	Sauce  *sauce.Client
	Config *config.Config
	Router chi.Router
}

// New creates a new Server with a fully configured chi router.
func New(db database.Database, store storage.Storage, client *sauce.Client, cfg *config.Config) *Server {
	s := &Server{DB: db, Store: store, Sauce: client, Config: cfg}

	h := &handler.Handler{
		Sauce:  client,
		DB:     db,
		Store:  store,
		Config: cfg,
	}

	r := chi.NewRouter()

	// CORS — must be before other middleware to handle preflight OPTIONS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Content-Length", "Content-Type", "X-Search-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check (no auth required).
	r.Get("/health", s.Health)

	// API routes.
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(api.AuthMiddleware(cfg.AuthToken))

		r.Post("/search", h.PostSearch)

		r.Get("/searches", h.ListSearches)
		r.Get("/searches/{search_id}", h.GetSearch)
		r.Delete("/searches/{search_id}", h.DeleteSearch)
		r.Get("/searches/{search_id}/thumbnail", h.GetSearchThumbnail)

		r.Get("/stats", h.GetStats)
	})

	s.Router = r
	return s
}

// Health returns a simple health-check response.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]string{"status": "ok"}); err != nil {
		slog.Error("failed to encode health response", "error", err)
	}
}
