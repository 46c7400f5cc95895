package profile

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toolhubapp/toolhub-backend/internal/db"
	"github.com/toolhubapp/toolhub-backend/internal/utils"
)

func TestMain(m *testing.M) {
	db.ConnectTest()
	if err := db.DB.AutoMigrate(&BusinessProfile{}, &Client{}); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func authedRequest(method, target string, body io.Reader, accountID uint) *http.Request {
	req := httptest.NewRequest(method, target, body)
	ctx := context.WithValue(req.Context(), utils.ContextAccountIDKey, accountID)
	return req.WithContext(ctx)
}

func TestGetProfileEmpty(t *testing.T) {
	rec := httptest.NewRecorder()
	GetProfileHandler(rec, authedRequest(http.MethodGet, "/profile", nil, 101))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true,"profile":null}`, rec.Body.String())
}

func TestPutProfileUpserts(t *testing.T) {
	const accountID = 102

	first := `{"legal_name":"Studio Uno","default_currency":"EUR","default_vat_rate":22}`
	rec := httptest.NewRecorder()
	PutProfileHandler(rec, authedRequest(http.MethodPut, "/profile", strings.NewReader(first), accountID))
	require.Equal(t, http.StatusOK, rec.Code)

	second := `{"legal_name":"Studio Due","default_currency":"USD","default_vat_rate":10}`
	rec = httptest.NewRecorder()
	PutProfileHandler(rec, authedRequest(http.MethodPut, "/profile", strings.NewReader(second), accountID))
	require.Equal(t, http.StatusOK, rec.Code)

	var count int64
	require.NoError(t, db.DB.Model(&BusinessProfile{}).
		Where("account_id = ?", accountID).Count(&count).Error)
	assert.EqualValues(t, 1, count, "upsert must not create a second row")

	p := FindProfile(accountID)
	require.NotNil(t, p)
	assert.Equal(t, "Studio Due", p.LegalName)
	assert.Equal(t, "USD", p.DefaultCurrency)
	assert.Equal(t, 10.0, p.DefaultVATRate)
}

func TestCreateClientValidation(t *testing.T) {
	rec := httptest.NewRecorder()
	CreateClientHandler(rec, authedRequest(http.MethodPost, "/clients", strings.NewReader(`{"vat":"IT1"}`), 103))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"ok":false,"error":"MISSING_FIELDS"}`, rec.Body.String())
}

func TestClientOwnership(t *testing.T) {
	rec := httptest.NewRecorder()
	CreateClientHandler(rec, authedRequest(http.MethodPost, "/clients",
		strings.NewReader(`{"name":"ACME Srl","vat":"IT987"}`), 104))
	require.Equal(t, http.StatusOK, rec.Code)

	var created Client
	require.NoError(t, db.DB.First(&created, "account_id = ?", 104).Error)

	c, err := FindClient(104, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "ACME Srl", c.Name)

	_, err = FindClient(105, created.ID)
	assert.Error(t, err, "another account must not see the client")
}
