package invoices

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/toolhubapp/toolhub-backend/internal/middleware"
	"github.com/toolhubapp/toolhub-backend/internal/ratelimit"
)

// RegisterRoutes attaches the document surface to the root router. PDF
// producing routes carry the export rate limit on top of the session check.
func RegisterRoutes(r chi.Router, sessions func(http.Handler) http.Handler, exportLimiter *ratelimit.Limiter) {
	r.Group(func(g chi.Router) {
		g.Use(sessions)

		g.With(middleware.RateLimit(exportLimiter)).Post("/export/quote", ExportQuoteHandler)
		g.With(middleware.RateLimit(exportLimiter)).Get("/invoices/{invoiceID}/pdf", InvoicePDFHandler)

		g.Post("/invoices", CreateInvoiceHandler)
		g.Get("/invoices", ListInvoicesHandler)

		g.Post("/templates/quote", CreateTemplateHandler)
		g.Get("/templates/quote", ListTemplatesHandler)
		g.Get("/templates/quote/{templateID}", GetTemplateHandler)
		g.Delete("/templates/quote/{templateID}", DeleteTemplateHandler)

		g.Get("/usage/summary", UsageSummaryHandler)
	})
}
