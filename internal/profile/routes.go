package profile

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes attaches the profile and clients surface to the root
// router. All routes require a session.
func RegisterRoutes(r chi.Router, sessions func(http.Handler) http.Handler) {
	r.Group(func(g chi.Router) {
		g.Use(sessions)
		g.Get("/profile", GetProfileHandler)
		g.Put("/profile", PutProfileHandler)
		g.Get("/clients", ListClientsHandler)
		g.Post("/clients", CreateClientHandler)
	})
}
