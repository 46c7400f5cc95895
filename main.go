package main

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/toolhubapp/toolhub-backend/internal/auth"
	"github.com/toolhubapp/toolhub-backend/internal/billing"
	"github.com/toolhubapp/toolhub-backend/internal/config"
	"github.com/toolhubapp/toolhub-backend/internal/db"
	"github.com/toolhubapp/toolhub-backend/internal/invoices"
	"github.com/toolhubapp/toolhub-backend/internal/logger"
	"github.com/toolhubapp/toolhub-backend/internal/middleware"
	"github.com/toolhubapp/toolhub-backend/internal/notify"
	"github.com/toolhubapp/toolhub-backend/internal/profile"
	"github.com/toolhubapp/toolhub-backend/internal/ratelimit"
)

func HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	if sqlDB, err := db.DB.DB(); err != nil || sqlDB.PingContext(r.Context()) != nil {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprintln(w, "Database unreachable")
		return
	}
	fmt.Fprintln(w, "Server is up!")
}

func main() {
	_ = godotenv.Load(".env.local")
	cfg := config.Load()
	logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: !cfg.Production()})

	db.Connect(cfg.DatabaseURL, cfg.SQLitePath)
	if err := notify.Init(cfg.Notify); err != nil {
		logger.Get().Fatal().Err(err).Msg("notify init failed")
	}

	auth.Init(cfg)
	profile.Init()
	invoices.Init()

	authLimiter := ratelimit.NewAuth()
	exportLimiter := ratelimit.NewExport()
	sessions := middleware.SessionMiddleware(auth.SessionInfo{}, auth.NewSessionCookie)

	r := chi.NewRouter()
	r.Use(middleware.RequestLogger)
	r.Use(middleware.CORSMiddleware(cfg.Origins()))
	r.Get("/", HealthHandler)
	r.Get("/health", HealthHandler)

	r.Mount("/auth", auth.SetupRoutes(authLimiter))
	profile.RegisterRoutes(r, sessions)
	invoices.RegisterRoutes(r, sessions, exportLimiter)
	billing.RegisterRoutes(r, sessions)

	logger.Get().Info().Str("port", cfg.Port).Msg("server listening")
	if err := http.ListenAndServe("0.0.0.0:"+cfg.Port, r); err != nil {
		logger.Get().Fatal().Err(err).Msg("server stopped")
	}
}
