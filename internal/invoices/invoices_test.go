package invoices

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toolhubapp/toolhub-backend/internal/auth"
	"github.com/toolhubapp/toolhub-backend/internal/db"
	"github.com/toolhubapp/toolhub-backend/internal/profile"
	"github.com/toolhubapp/toolhub-backend/internal/ratelimit"
	"github.com/toolhubapp/toolhub-backend/internal/render"
	"github.com/toolhubapp/toolhub-backend/internal/utils"
)

func TestMain(m *testing.M) {
	db.ConnectTest()
	err := db.DB.AutoMigrate(
		&auth.Account{},
		&profile.BusinessProfile{}, &profile.Client{},
		&Invoice{}, &QuoteTemplate{}, &Download{},
	)
	if err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func newAccount(t *testing.T, pro bool) uint {
	t.Helper()
	a := auth.Account{
		Email: fmt.Sprintf("inv-%d@example.com", time.Now().UnixNano()),
		IsPro: pro,
	}
	require.NoError(t, db.DB.Create(&a).Error)
	return a.ID
}

// newRouter mounts the document routes behind a stub session middleware that
// pins the caller to accountID.
func newRouter(accountID uint) *chi.Mux {
	sessions := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), utils.ContextAccountIDKey, accountID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
	r := chi.NewRouter()
	RegisterRoutes(r, sessions, ratelimit.New(10000, time.Minute))
	return r
}

func doJSON(t *testing.T, r http.Handler, method, target, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	out := map[string]any{}
	if strings.Contains(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

const smallExport = `{"line_items":[{"description":"Consulenza","quantity":1,"unit_price":10}]}`

func TestExportQuoteDailyCap(t *testing.T) {
	accountID := newAccount(t, false)
	r := newRouter(accountID)

	for i := 0; i < FreeDailyExports; i++ {
		rec, _ := doJSON(t, r, http.MethodPost, "/export/quote", smallExport)
		require.Equal(t, http.StatusOK, rec.Code, "export %d", i+1)
		assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
		assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF"))
	}

	rec, body := doJSON(t, r, http.MethodPost, "/export/quote", smallExport)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "DAILY_LIMIT", body["error"])

	// Pro accounts are unmetered.
	require.NoError(t, db.DB.Model(&auth.Account{}).
		Where("id = ?", accountID).Update("is_pro", true).Error)
	rec, _ = doJSON(t, r, http.MethodPost, "/export/quote", smallExport)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestExportQuoteRejectsWithoutBurningQuota(t *testing.T) {
	accountID := newAccount(t, false)
	r := newRouter(accountID)

	rec, body := doJSON(t, r, http.MethodPost, "/export/quote", `{"line_items":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "MISSING_FIELDS", body["error"])

	used, err := exportsToday(accountID, time.Now())
	require.NoError(t, err)
	assert.EqualValues(t, 0, used)
}

func TestInvoiceLifecycle(t *testing.T) {
	accountID := newAccount(t, false)
	r := newRouter(accountID)

	payload := `{"line_items":[{"description":"Sviluppo","quantity":2,"unit_price":50},{"description":"Trasferta","quantity":1,"unit_price":30}],"taxRate":22,"currency":"EUR"}`
	rec, body := doJSON(t, r, http.MethodPost, "/invoices", payload)
	require.Equal(t, http.StatusOK, rec.Code)
	inv := body["invoice"].(map[string]any)
	assert.InDelta(t, 130.0, inv["subtotal"], 0.01)
	assert.InDelta(t, 28.6, inv["tax"], 0.01)
	assert.InDelta(t, 158.6, inv["total"], 0.01)
	assert.Len(t, inv["number"], 6)

	rec, body = doJSON(t, r, http.MethodGet, "/invoices", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, body["items"], 1)

	id := int(inv["id"].(float64))
	rec, _ = doJSON(t, r, http.MethodGet, fmt.Sprintf("/invoices/%d/pdf", id), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))

	// Another account sees a 404, not someone else's invoice.
	other := newRouter(newAccount(t, false))
	rec, body = doJSON(t, other, http.MethodGet, fmt.Sprintf("/invoices/%d/pdf", id), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", body["error"])
}

func TestCreateInvoiceRejectsOversizedItemList(t *testing.T) {
	accountID := newAccount(t, false)
	r := newRouter(accountID)

	items := make([]render.LineItem, render.MaxLineItems+1)
	for i := range items {
		items[i] = render.LineItem{Description: "x", Quantity: 1, UnitPrice: 1}
	}
	raw, err := json.Marshal(map[string]any{"line_items": items})
	require.NoError(t, err)

	rec, body := doJSON(t, r, http.MethodPost, "/invoices", string(raw))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "TOO_MANY_ITEMS", body["error"])

	// Nothing the renderer would later refuse may be stored.
	var count int64
	require.NoError(t, db.DB.Model(&Invoice{}).
		Where("account_id = ?", accountID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestQuoteTemplatesCRUD(t *testing.T) {
	r := newRouter(newAccount(t, false))

	rec, body := doJSON(t, r, http.MethodPost, "/templates/quote",
		`{"name":"Standard","payload":`+smallExport+`}`)
	require.Equal(t, http.StatusOK, rec.Code)
	id := int(body["id"].(float64))

	rec, body = doJSON(t, r, http.MethodGet, "/templates/quote", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, body["items"], 1)

	rec, body = doJSON(t, r, http.MethodGet, fmt.Sprintf("/templates/quote/%d", id), "")
	require.Equal(t, http.StatusOK, rec.Code)
	tpl := body["template"].(map[string]any)
	assert.Equal(t, "Standard", tpl["name"])

	rec, _ = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/templates/quote/%d", id), "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = doJSON(t, r, http.MethodGet, fmt.Sprintf("/templates/quote/%d", id), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestQuoteTemplateValidation(t *testing.T) {
	r := newRouter(newAccount(t, false))

	rec, body := doJSON(t, r, http.MethodPost, "/templates/quote", `{"payload":{}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "MISSING_FIELDS", body["error"])
}

func TestUsageSummary(t *testing.T) {
	accountID := newAccount(t, false)
	r := newRouter(accountID)

	rec, _ := doJSON(t, r, http.MethodPost, "/export/quote", smallExport)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body := doJSON(t, r, http.MethodGet, "/usage/summary", "")
	require.Equal(t, http.StatusOK, rec.Code)
	usage := body["usage"].(map[string]any)
	assert.EqualValues(t, 1, usage["exportsToday"])
	assert.EqualValues(t, FreeDailyExports, usage["dailyLimit"])
	assert.EqualValues(t, 2, usage["remaining"])
	assert.Equal(t, false, usage["isPro"])
}

func TestDocumentContextClientResolution(t *testing.T) {
	accountID := newAccount(t, false)

	ctx, err := documentContext(accountID, &exportClient{Name: "Inline Srl", Address: "Via X 1"})
	require.NoError(t, err)
	assert.Equal(t, "Inline Srl", ctx.Client.Name)
	assert.Equal(t, "Via X 1", ctx.Client.Address)

	saved := profile.Client{AccountID: accountID, Name: "Saved Srl"}
	require.NoError(t, db.DB.Create(&saved).Error)

	ctx, err = documentContext(accountID, &exportClient{ID: saved.ID})
	require.NoError(t, err)
	assert.Equal(t, "Saved Srl", ctx.Client.Name)

	_, err = documentContext(newAccount(t, false), &exportClient{ID: saved.ID})
	assert.Error(t, err, "saved clients resolve only for their owner")
}

func TestUsageSummaryPro(t *testing.T) {
	r := newRouter(newAccount(t, true))

	rec, body := doJSON(t, r, http.MethodGet, "/usage/summary", "")
	require.Equal(t, http.StatusOK, rec.Code)
	usage := body["usage"].(map[string]any)
	assert.Equal(t, true, usage["isPro"])
	assert.Nil(t, usage["dailyLimit"])
	assert.Nil(t, usage["remaining"])
}
