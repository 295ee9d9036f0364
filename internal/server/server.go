package server

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"choreboard/internal/config"
	"choreboard/internal/handlers"
	"choreboard/internal/middleware"
	"choreboard/internal/repository"
	"choreboard/internal/services"
)

type Server struct {
	router *chi.Mux
	config config.Config
}

func New(database *sql.DB, cfg config.Config, authService *services.AuthService) *Server {
	userRepo := repository.NewUserRepository(database)
	familyRepo := repository.NewFamilyRepository(database)
	choreRepo := repository.NewChoreRepository(database)

	familyService := services.NewFamilyService(familyRepo, userRepo)
	choreService := services.NewChoreService(choreRepo, userRepo)

	authHandler := handlers.NewAuthHandler(authService)
	familyHandler := handlers.NewFamilyHandler(familyService)
	choreHandler := handlers.NewChoreHandler(choreService, familyRepo)

	router := chi.NewRouter()

	router.Use(chimiddleware.Logger)
	router.Use(chimiddleware.Recoverer)
	router.Use(chimiddleware.Compress(5))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	router.Post("/api/auth/register", authHandler.Register)
	router.Post("/api/auth/login", authHandler.Login)

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(authService))

		r.Post("/api/families", familyHandler.Create)
		r.Post("/api/families/join", familyHandler.Join)
		r.Get("/api/families/{id}", familyHandler.Get)

		r.Post("/api/chores", choreHandler.Create)
		r.Get("/api/chores", choreHandler.List)
		r.Get("/api/chores/calendar", choreHandler.Calendar)
		r.Post("/api/chores/auto-assign", choreHandler.AutoAssign)
		r.Post("/api/chores/{id}/done", choreHandler.MarkDone)
		r.Post("/api/chores/{id}/assign", choreHandler.Assign)
	})

	return &Server{
		router: router,
		config: cfg,
	}
}

func (server *Server) Router() http.Handler {
	return server.router
}

func (server *Server) Start() error {
	address := ":" + server.config.Port
	slog.Info("starting server", "address", address)
	return http.ListenAndServe(address, server.router)
}
