package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/toolhubapp/toolhub-backend/internal/middleware"
	"github.com/toolhubapp/toolhub-backend/internal/ratelimit"
)

// SetupRoutes mounts the auth surface. Every credential-touching endpoint
// shares the auth rate-limit bucket.
func SetupRoutes(authLimiter *ratelimit.Limiter) http.Handler {
	limited := middleware.RateLimit(authLimiter)
	sessions := middleware.SessionMiddleware(SessionInfo{}, NewSessionCookie)

	r := chi.NewRouter()
	r.With(limited).Post("/register", RegisterHandler)
	r.With(limited).Post("/login", LoginHandler)
	r.With(limited).Post("/request-reset", RequestResetHandler)
	r.With(limited).Post("/reset", ResetHandler)
	r.With(sessions, limited).Post("/change-password", ChangePasswordHandler)
	r.With(sessions).Post("/logout", LogoutHandler)
	r.With(sessions).Get("/me", MeHandler)
	return r
}
