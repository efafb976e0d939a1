// Package api provides the HTTP API server and handlers for MirrorLog.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/mirrorlog/mirrorlog-server/internal/auth"
	"github.com/mirrorlog/mirrorlog-server/internal/service"
	"github.com/mirrorlog/mirrorlog-server/internal/store"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	store          *store.Store
	tokens         *auth.TokenService
	authService    *service.AuthService
	userService    *service.UserService
	pageService    *service.PageService
	tagService     *service.TagService
	logService     *service.LogService
	roadmapService *service.RoadmapService
	router         *chi.Mux
	corsOrigins    []string
	logger         *slog.Logger
}

// Config bundles the server's dependencies.
type Config struct {
	Store          *store.Store
	Tokens         *auth.TokenService
	AuthService    *service.AuthService
	UserService    *service.UserService
	PageService    *service.PageService
	TagService     *service.TagService
	LogService     *service.LogService
	RoadmapService *service.RoadmapService
	CORSOrigins    []string
	Logger         *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(cfg Config) *Server {
	s := &Server{
		store:          cfg.Store,
		tokens:         cfg.Tokens,
		authService:    cfg.AuthService,
		userService:    cfg.UserService,
		pageService:    cfg.PageService,
		tagService:     cfg.TagService,
		logService:     cfg.LogService,
		roadmapService: cfg.RoadmapService,
		router:         chi.NewRouter(),
		corsOrigins:    cfg.CORSOrigins,
		logger:         cfg.Logger,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// Health check.
	s.router.Get("/health", s.handleHealthCheck)

	// API v1.
	s.router.Route("/api/v1", func(r chi.Router) {
		// Auth endpoints (public, except logout).
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", s.handleRegister)
			r.Post("/login", s.handleLogin)
			r.Post("/refresh", s.handleRefresh)
			r.With(s.requireAuth).Post("/logout", s.handleLogout)
		})

		// Account endpoints.
		r.Route("/users", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Get("/me", s.handleGetMe)
			r.Patch("/me", s.handleUpdateMe)
			r.Delete("/me", s.handleDeleteMe)
			r.With(s.requireAdmin).Get("/", s.handleListUsers)
		})

		// Pages.
		r.Route("/pages", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Post("/", s.handleCreatePage)
			r.Get("/", s.handleListPages)
			r.Get("/{pageID}", s.handleGetPage)
			r.Patch("/{pageID}", s.handleUpdatePage)
			r.Delete("/{pageID}", s.handleDeletePage)
		})

		// Tags.
		r.Route("/tags", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Post("/", s.handleCreateTag)
			r.Get("/{pageID}", s.handleListTags)
			r.Patch("/{id}", s.handleUpdateTag)
			r.Delete("/{id}", s.handleDeleteTag)
		})

		// Logs.
		r.Route("/logs", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Post("/", s.handleCreateLog)
			r.Get("/", s.handleListLogs)
			r.Get("/{id}", s.handleGetLog)
			r.Patch("/{id}", s.handleUpdateLog)
			r.Delete("/{id}", s.handleDeleteLog)
		})

		// Roadmaps and todos.
		r.Route("/roadmaps", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Post("/", s.handleCreateRoadmap)
			r.Get("/{pageID}", s.handleGetRoadmap)
			r.Put("/{roadmapID}", s.handleReplaceSubheadings)
			r.Delete("/{roadmapID}", s.handleDeleteRoadmap)
			r.Post("/{roadmapID}/subheading", s.handleAddSubheading)
			r.Post("/{roadmapID}/subheading/{idx}/todo", s.handleAddTodo)
			r.Patch("/todo/{todoID}/toggle", s.handleToggleTodo)
			r.Delete("/{roadmapID}/subheading/{idx}/todo/{todoID}", s.handleRemoveTodo)
		})
	})
}
