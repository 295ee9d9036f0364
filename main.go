package main

import (
	"log/slog"
	"os"

	"choreboard/internal/config"
	"choreboard/internal/database"
	"choreboard/internal/repository"
	"choreboard/internal/server"
	"choreboard/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		slog.Error("opening database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		slog.Error("running migrations", "error", err)
		os.Exit(1)
	}

	userRepo := repository.NewUserRepository(db)
	familyRepo := repository.NewFamilyRepository(db)
	familyService := services.NewFamilyService(familyRepo, userRepo)
	authService := services.NewAuthService(cfg, userRepo, familyService)

	srv := server.New(db, cfg, authService)
	if err := srv.Start(); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
