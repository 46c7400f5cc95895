// Package billing flips the pro flag. There is no payment provider behind
// it yet; the endpoint exists so the frontend upgrade flow is end-to-end.
package billing

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/toolhubapp/toolhub-backend/internal/auth"
	"github.com/toolhubapp/toolhub-backend/internal/db"
	"github.com/toolhubapp/toolhub-backend/internal/httputil"
	"github.com/toolhubapp/toolhub-backend/internal/utils"
)

func UpgradeHandler(w http.ResponseWriter, r *http.Request) {
	accountID, ok := utils.GetAccountIDFromContext(r.Context())
	if !ok {
		httputil.Unauthenticated(w)
		return
	}

	res := db.DB.Model(&auth.Account{}).Where("id = ?", accountID).Update("is_pro", true)
	if res.Error != nil {
		httputil.Internal(w, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		httputil.NotFound(w)
		return
	}
	httputil.OK(w, map[string]any{"is_pro": true})
}

func RegisterRoutes(r chi.Router, sessions func(http.Handler) http.Handler) {
	r.Group(func(g chi.Router) {
		g.Use(sessions)
		g.Post("/billing/upgrade", UpgradeHandler)
	})
}
