package profile

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/toolhubapp/toolhub-backend/internal/db"
	"github.com/toolhubapp/toolhub-backend/internal/httputil"
	"github.com/toolhubapp/toolhub-backend/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var validate = validator.New()

func GetProfileHandler(w http.ResponseWriter, r *http.Request) {
	accountID, ok := utils.GetAccountIDFromContext(r.Context())
	if !ok {
		httputil.Unauthenticated(w)
		return
	}

	var p BusinessProfile
	err := db.DB.First(&p, "account_id = ?", accountID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		httputil.OK(w, map[string]any{"profile": nil})
		return
	}
	if err != nil {
		httputil.Internal(w, err)
		return
	}
	httputil.OK(w, map[string]any{"profile": p})
}

// PutProfileHandler upserts the caller's profile in a single conditional
// statement. Read-then-write here would lose updates when two requests for
// the same account interleave.
func PutProfileHandler(w http.ResponseWriter, r *http.Request) {
	accountID, ok := utils.GetAccountIDFromContext(r.Context())
	if !ok {
		httputil.Unauthenticated(w)
		return
	}

	var p BusinessProfile
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		httputil.BadRequest(w, httputil.CodeMissingFields)
		return
	}
	p.ID = 0
	p.AccountID = accountID

	err := db.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "account_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"legal_name", "address", "city", "zip", "country",
			"vat_number", "tax_code", "regime",
			"default_vat_rate", "default_currency", "default_footer_note",
			"updated_at",
		}),
	}).Create(&p).Error
	if err != nil {
		httputil.Internal(w, err)
		return
	}

	var saved BusinessProfile
	if err := db.DB.First(&saved, "account_id = ?", accountID).Error; err != nil {
		httputil.Internal(w, err)
		return
	}
	httputil.OK(w, map[string]any{"profile": saved})
}

func ListClientsHandler(w http.ResponseWriter, r *http.Request) {
	accountID, ok := utils.GetAccountIDFromContext(r.Context())
	if !ok {
		httputil.Unauthenticated(w)
		return
	}

	var clients []Client
	if err := db.DB.Order("created_at DESC").Find(&clients, "account_id = ?", accountID).Error; err != nil {
		httputil.Internal(w, err)
		return
	}
	httputil.OK(w, map[string]any{"items": clients})
}

type createClientRequest struct {
	Name    string `json:"name" validate:"required"`
	TaxID   string `json:"vat"`
	Address string `json:"address"`
	Notes   string `json:"notes"`
}

func CreateClientHandler(w http.ResponseWriter, r *http.Request) {
	accountID, ok := utils.GetAccountIDFromContext(r.Context())
	if !ok {
		httputil.Unauthenticated(w)
		return
	}

	var req createClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.BadRequest(w, httputil.CodeMissingFields)
		return
	}
	if err := validate.Struct(req); err != nil {
		httputil.BadRequest(w, httputil.CodeMissingFields)
		return
	}

	client := Client{
		AccountID: accountID,
		Name:      req.Name,
		TaxID:     req.TaxID,
		Address:   req.Address,
		Notes:     req.Notes,
	}
	if err := db.DB.Create(&client).Error; err != nil {
		httputil.Internal(w, err)
		return
	}
	httputil.OK(w, map[string]any{"id": client.ID})
}

// FindClient loads a client ownership-checked by account. Used by the
// invoices package.
func FindClient(accountID, clientID uint) (*Client, error) {
	var c Client
	err := db.DB.First(&c, "id = ? AND account_id = ?", clientID, accountID).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// FindProfile loads the account's profile, or nil when none was saved yet.
func FindProfile(accountID uint) *BusinessProfile {
	var p BusinessProfile
	if err := db.DB.First(&p, "account_id = ?", accountID).Error; err != nil {
		return nil
	}
	return &p
}
