package invoices

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"github.com/toolhubapp/toolhub-backend/internal/auth"
	"github.com/toolhubapp/toolhub-backend/internal/db"
	"github.com/toolhubapp/toolhub-backend/internal/httputil"
	"github.com/toolhubapp/toolhub-backend/internal/profile"
	"github.com/toolhubapp/toolhub-backend/internal/render"
	"github.com/toolhubapp/toolhub-backend/internal/template"
	"github.com/toolhubapp/toolhub-backend/internal/utils"
)

var validate = validator.New()

// exportClient is the counterparty attached to an export or invoice. An id
// references a saved client (ownership-checked); otherwise the inline fields
// are used as-is, which is how anonymous-style one-off documents work.
type exportClient struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
	TaxID   string `json:"vat"`
}

type exportRequest struct {
	render.Payload
	Client *exportClient `json:"client"`
}

func (r *exportRequest) clientID() uint {
	if r.Client == nil {
		return 0
	}
	return r.Client.ID
}

// documentContext merges the caller's profile with the request's client. A
// client id that does not belong to the caller surfaces as not-found.
func documentContext(accountID uint, ec *exportClient) (template.Context, error) {
	prof := profile.FindProfile(accountID)
	var client *profile.Client
	switch {
	case ec == nil:
	case ec.ID != 0:
		c, err := profile.FindClient(accountID, ec.ID)
		if err != nil {
			return template.Context{}, err
		}
		client = c
	default:
		client = &profile.Client{Name: ec.Name, Address: ec.Address, TaxID: ec.TaxID}
	}
	return template.Build(prof, client), nil
}

func streamPDF(w http.ResponseWriter, filename string, data []byte) {
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)
}

func failRender(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, render.ErrNoItems):
		httputil.BadRequest(w, httputil.CodeMissingFields)
	case errors.Is(err, render.ErrTooManyItems):
		httputil.BadRequest(w, httputil.CodeTooManyItems)
	default:
		httputil.Internal(w, err)
	}
}

// ExportQuoteHandler renders a quote PDF without persisting anything. Free
// accounts get FreeDailyExports per day; the counter only moves after a
// successful render so a rejected payload never burns quota.
func ExportQuoteHandler(w http.ResponseWriter, r *http.Request) {
	accountID, ok := utils.GetAccountIDFromContext(r.Context())
	if !ok {
		httputil.Unauthenticated(w)
		return
	}

	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.BadRequest(w, httputil.CodeMissingFields)
		return
	}

	var account auth.Account
	if err := db.DB.First(&account, "id = ?", accountID).Error; err != nil {
		httputil.Unauthenticated(w)
		return
	}
	if !account.IsPro {
		used, err := exportsToday(accountID, time.Now())
		if err != nil {
			httputil.Internal(w, err)
			return
		}
		if used >= FreeDailyExports {
			httputil.Fail(w, http.StatusTooManyRequests, httputil.CodeDailyLimit)
			return
		}
	}

	docCtx, err := documentContext(accountID, req.Client)
	if err != nil {
		httputil.NotFound(w)
		return
	}
	req.Notes = template.Apply(req.Notes, docCtx)

	number := render.DocNumber()
	data, err := render.Render(render.KindQuote, docCtx, req.Payload, number)
	if err != nil {
		failRender(w, err)
		return
	}

	recordDownload(accountID)
	streamPDF(w, "preventivo-"+number+".pdf", data)
}

// CreateInvoiceHandler stores an invoice with totals computed server-side.
// Currency and tax rate fall back to the saved profile defaults so stored
// invoices always carry resolved values.
func CreateInvoiceHandler(w http.ResponseWriter, r *http.Request) {
	accountID, ok := utils.GetAccountIDFromContext(r.Context())
	if !ok {
		httputil.Unauthenticated(w)
		return
	}

	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.BadRequest(w, httputil.CodeMissingFields)
		return
	}
	if len(req.LineItems) == 0 {
		httputil.BadRequest(w, httputil.CodeMissingFields)
		return
	}
	// Stored invoices are immutable, so anything the renderer would refuse
	// must be refused here, before the row exists.
	if len(req.LineItems) > render.MaxLineItems {
		httputil.BadRequest(w, httputil.CodeTooManyItems)
		return
	}

	docCtx, err := documentContext(accountID, req.Client)
	if err != nil {
		httputil.NotFound(w)
		return
	}
	currency := req.Currency
	if currency == "" {
		currency = docCtx.Defaults.Currency
	}
	taxRate := req.TaxRate
	if taxRate == 0 {
		taxRate = docCtx.Defaults.VATRate
	}
	totals := render.ComputeTotals(req.LineItems, taxRate, req.Discount)

	items, err := json.Marshal(req.LineItems)
	if err != nil {
		httputil.Internal(w, err)
		return
	}
	inv := Invoice{
		AccountID: accountID,
		ClientID:  req.clientID(),
		Number:    render.DocNumber(),
		Currency:  currency,
		TaxRate:   taxRate,
		Discount:  req.Discount,
		Subtotal:  totals.Subtotal,
		Tax:       totals.Tax,
		Total:     totals.Total,
		Notes:     template.Apply(req.Notes, docCtx),
		Items:     string(items),
	}
	if err := db.DB.Create(&inv).Error; err != nil {
		httputil.Internal(w, err)
		return
	}
	httputil.OK(w, map[string]any{"invoice": inv})
}

func ListInvoicesHandler(w http.ResponseWriter, r *http.Request) {
	accountID, ok := utils.GetAccountIDFromContext(r.Context())
	if !ok {
		httputil.Unauthenticated(w)
		return
	}

	var items []Invoice
	if err := db.DB.Order("created_at DESC").Find(&items, "account_id = ?", accountID).Error; err != nil {
		httputil.Internal(w, err)
		return
	}
	httputil.OK(w, map[string]any{"items": items})
}

// InvoicePDFHandler re-renders a stored invoice. Ownership failures are
// indistinguishable from absence.
func InvoicePDFHandler(w http.ResponseWriter, r *http.Request) {
	accountID, ok := utils.GetAccountIDFromContext(r.Context())
	if !ok {
		httputil.Unauthenticated(w)
		return
	}
	invoiceID, err := strconv.ParseUint(chi.URLParam(r, "invoiceID"), 10, 32)
	if err != nil {
		httputil.NotFound(w)
		return
	}

	var inv Invoice
	err = db.DB.First(&inv, "id = ? AND account_id = ?", invoiceID, accountID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		httputil.NotFound(w)
		return
	}
	if err != nil {
		httputil.Internal(w, err)
		return
	}

	var items []render.LineItem
	if err := json.Unmarshal([]byte(inv.Items), &items); err != nil {
		httputil.Internal(w, err)
		return
	}

	// The client may have been deleted since; render with fallbacks then.
	var ec *exportClient
	if inv.ClientID != 0 {
		ec = &exportClient{ID: inv.ClientID}
	}
	docCtx, err := documentContext(accountID, ec)
	if err != nil {
		docCtx, _ = documentContext(accountID, nil)
	}
	payload := render.Payload{
		LineItems: items,
		TaxRate:   inv.TaxRate,
		Currency:  inv.Currency,
		Discount:  inv.Discount,
		Notes:     inv.Notes,
	}
	data, err := render.Render(render.KindInvoice, docCtx, payload, inv.Number)
	if err != nil {
		failRender(w, err)
		return
	}
	streamPDF(w, "fattura-"+inv.Number+".pdf", data)
}

type createTemplateRequest struct {
	Name    string          `json:"name" validate:"required"`
	Payload json.RawMessage `json:"payload" validate:"required"`
}

func CreateTemplateHandler(w http.ResponseWriter, r *http.Request) {
	accountID, ok := utils.GetAccountIDFromContext(r.Context())
	if !ok {
		httputil.Unauthenticated(w)
		return
	}

	var req createTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.BadRequest(w, httputil.CodeMissingFields)
		return
	}
	if err := validate.Struct(req); err != nil {
		httputil.BadRequest(w, httputil.CodeMissingFields)
		return
	}
	// The payload must at least parse as an export body.
	var p render.Payload
	if err := json.Unmarshal(req.Payload, &p); err != nil {
		httputil.BadRequest(w, httputil.CodeMissingFields)
		return
	}

	tpl := QuoteTemplate{AccountID: accountID, Name: req.Name, Payload: string(req.Payload)}
	if err := db.DB.Create(&tpl).Error; err != nil {
		httputil.Internal(w, err)
		return
	}
	httputil.OK(w, map[string]any{"id": tpl.ID})
}

func templateJSON(t *QuoteTemplate) map[string]any {
	return map[string]any{
		"id":         t.ID,
		"name":       t.Name,
		"payload":    json.RawMessage(t.Payload),
		"created_at": t.CreatedAt,
	}
}

func ListTemplatesHandler(w http.ResponseWriter, r *http.Request) {
	accountID, ok := utils.GetAccountIDFromContext(r.Context())
	if !ok {
		httputil.Unauthenticated(w)
		return
	}

	var tpls []QuoteTemplate
	if err := db.DB.Order("created_at DESC").Find(&tpls, "account_id = ?", accountID).Error; err != nil {
		httputil.Internal(w, err)
		return
	}
	// List is a picker: id and name only, payloads come from the get endpoint.
	items := make([]map[string]any, 0, len(tpls))
	for i := range tpls {
		items = append(items, map[string]any{
			"id":         tpls[i].ID,
			"name":       tpls[i].Name,
			"created_at": tpls[i].CreatedAt,
		})
	}
	httputil.OK(w, map[string]any{"items": items})
}

func GetTemplateHandler(w http.ResponseWriter, r *http.Request) {
	accountID, ok := utils.GetAccountIDFromContext(r.Context())
	if !ok {
		httputil.Unauthenticated(w)
		return
	}
	templateID, err := strconv.ParseUint(chi.URLParam(r, "templateID"), 10, 32)
	if err != nil {
		httputil.NotFound(w)
		return
	}

	var tpl QuoteTemplate
	if err := db.DB.First(&tpl, "id = ? AND account_id = ?", templateID, accountID).Error; err != nil {
		httputil.NotFound(w)
		return
	}
	httputil.OK(w, map[string]any{"template": templateJSON(&tpl)})
}

func DeleteTemplateHandler(w http.ResponseWriter, r *http.Request) {
	accountID, ok := utils.GetAccountIDFromContext(r.Context())
	if !ok {
		httputil.Unauthenticated(w)
		return
	}
	templateID, err := strconv.ParseUint(chi.URLParam(r, "templateID"), 10, 32)
	if err != nil {
		httputil.NotFound(w)
		return
	}

	res := db.DB.Delete(&QuoteTemplate{}, "id = ? AND account_id = ?", templateID, accountID)
	if res.Error != nil {
		httputil.Internal(w, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		httputil.NotFound(w)
		return
	}
	httputil.OK(w, nil)
}

// UsageSummaryHandler reports today's metered usage. Pro accounts have no
// limit, reported as a null.
func UsageSummaryHandler(w http.ResponseWriter, r *http.Request) {
	accountID, ok := utils.GetAccountIDFromContext(r.Context())
	if !ok {
		httputil.Unauthenticated(w)
		return
	}

	var account auth.Account
	if err := db.DB.First(&account, "id = ?", accountID).Error; err != nil {
		httputil.Unauthenticated(w)
		return
	}
	used, err := exportsToday(accountID, time.Now())
	if err != nil {
		httputil.Internal(w, err)
		return
	}

	usage := map[string]any{
		"exportsToday": used,
		"isPro":        account.IsPro,
		"dailyLimit":   nil,
		"remaining":    nil,
	}
	if !account.IsPro {
		remaining := int64(FreeDailyExports) - used
		if remaining < 0 {
			remaining = 0
		}
		usage["dailyLimit"] = FreeDailyExports
		usage["remaining"] = remaining
	}
	httputil.OK(w, map[string]any{"usage": usage})
}
