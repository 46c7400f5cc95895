package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/toolhubapp/toolhub-backend/internal/db"
	"github.com/toolhubapp/toolhub-backend/internal/httputil"
	"github.com/toolhubapp/toolhub-backend/internal/middleware"
	"github.com/toolhubapp/toolhub-backend/internal/notify"
	"github.com/toolhubapp/toolhub-backend/internal/utils"
)

var validate = validator.New()

// secureCookies and debugResetTokens are set by Init from config.
var (
	secureCookies    bool
	debugResetTokens bool
)

// NewSessionCookie builds the HTTP-only session cookie. Secure is only set
// in production so local development over plain HTTP keeps working.
func NewSessionCookie(value string) *http.Cookie {
	return &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   secureCookies,
		MaxAge:   60 * 60 * 24 * 30,
	}
}

func accountJSON(a *Account) map[string]any {
	return map[string]any{
		"id":     a.ID,
		"email":  a.Email,
		"name":   a.DisplayName,
		"is_pro": a.IsPro,
	}
}

type registerRequest struct {
	Email          string `json:"email" validate:"required"`
	Password       string `json:"password" validate:"required"`
	Name           string `json:"name"`
	MarketingOptIn bool   `json:"marketingOptIn"`
}

func RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.BadRequest(w, httputil.CodeMissingFields)
		return
	}
	if err := validate.Struct(req); err != nil {
		httputil.BadRequest(w, httputil.CodeMissingFields)
		return
	}

	account, err := Register(req.Email, req.Password, req.Name, req.MarketingOptIn)
	switch {
	case errors.Is(err, ErrInvalidEmail):
		httputil.BadRequest(w, httputil.CodeInvalidEmail)
		return
	case errors.Is(err, ErrWeakPassword):
		httputil.BadRequest(w, httputil.CodeWeakPassword)
		return
	case errors.Is(err, ErrEmailExists):
		httputil.BadRequest(w, httputil.CodeEmailExists)
		return
	case err != nil:
		httputil.Internal(w, err)
		return
	}

	sessionID, err := CreateSession(account.ID)
	if err != nil {
		httputil.Internal(w, err)
		return
	}
	http.SetCookie(w, NewSessionCookie(sessionID))
	httputil.OK(w, map[string]any{
		"account":   accountJSON(account),
		"sessionId": sessionID,
	})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.BadRequest(w, httputil.CodeMissingFields)
		return
	}
	if err := validate.Struct(req); err != nil {
		httputil.BadRequest(w, httputil.CodeMissingFields)
		return
	}

	account, err := Verify(req.Email, req.Password)
	switch {
	case errors.Is(err, ErrLegacyAccount):
		httputil.BadRequest(w, httputil.CodeLegacyAccount)
		return
	case errors.Is(err, ErrInvalidCredentials):
		httputil.BadRequest(w, httputil.CodeInvalidCredentials)
		return
	case err != nil:
		httputil.Internal(w, err)
		return
	}

	sessionID, err := CreateSession(account.ID)
	if err != nil {
		httputil.Internal(w, err)
		return
	}
	http.SetCookie(w, NewSessionCookie(sessionID))
	httputil.OK(w, map[string]any{
		"account":   accountJSON(account),
		"sessionId": sessionID,
	})
}

func LogoutHandler(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil {
		DestroySession(cookie.Value)
	}

	expired := NewSessionCookie("")
	expired.MaxAge = -1
	http.SetCookie(w, expired)
	httputil.OK(w, nil)
}

func MeHandler(w http.ResponseWriter, r *http.Request) {
	accountID, ok := utils.GetAccountIDFromContext(r.Context())
	if !ok {
		httputil.Unauthenticated(w)
		return
	}

	var account Account
	if err := db.DB.First(&account, "id = ?", accountID).Error; err != nil {
		httputil.NotFound(w)
		return
	}
	httputil.OK(w, map[string]any{"account": accountJSON(&account)})
}

type requestResetRequest struct {
	Email string `json:"email" validate:"required"`
}

func RequestResetHandler(w http.ResponseWriter, r *http.Request) {
	var req requestResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.BadRequest(w, httputil.CodeMissingFields)
		return
	}
	if err := validate.Struct(req); err != nil {
		httputil.BadRequest(w, httputil.CodeMissingFields)
		return
	}

	token, err := RequestReset(req.Email)
	if err != nil {
		httputil.Internal(w, err)
		return
	}
	// Same 200 whether or not the account exists.
	if token == "" {
		httputil.OK(w, nil)
		return
	}

	notify.SendResetToken(r.Context(), NormalizeEmail(req.Email), token)

	if debugResetTokens {
		httputil.OK(w, map[string]any{"token": token})
		return
	}
	httputil.OK(w, nil)
}

type resetRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func ResetHandler(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.BadRequest(w, httputil.CodeMissingFields)
		return
	}
	if err := validate.Struct(req); err != nil {
		httputil.BadRequest(w, httputil.CodeMissingFields)
		return
	}

	err := ConfirmReset(req.Token, req.Password)
	switch {
	case errors.Is(err, ErrWeakPassword):
		httputil.BadRequest(w, httputil.CodeWeakPassword)
	case errors.Is(err, ErrInvalidToken):
		httputil.BadRequest(w, httputil.CodeInvalidToken)
	case errors.Is(err, ErrTokenUsed):
		httputil.BadRequest(w, httputil.CodeTokenUsed)
	case errors.Is(err, ErrTokenExpired):
		httputil.BadRequest(w, httputil.CodeTokenExpired)
	case err != nil:
		httputil.Internal(w, err)
	default:
		httputil.OK(w, nil)
	}
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required"`
}

func ChangePasswordHandler(w http.ResponseWriter, r *http.Request) {
	accountID, ok := utils.GetAccountIDFromContext(r.Context())
	if !ok {
		httputil.Unauthenticated(w)
		return
	}

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.BadRequest(w, httputil.CodeMissingFields)
		return
	}
	if err := validate.Struct(req); err != nil {
		httputil.BadRequest(w, httputil.CodeMissingFields)
		return
	}

	err := ChangePassword(accountID, req.CurrentPassword, req.NewPassword)
	switch {
	case errors.Is(err, ErrWeakPassword):
		httputil.BadRequest(w, httputil.CodeWeakPassword)
	case errors.Is(err, ErrInvalidCredentials):
		httputil.BadRequest(w, httputil.CodeInvalidCredentials)
	case err != nil:
		httputil.Internal(w, err)
	default:
		httputil.OK(w, nil)
	}
}

// LastSeenOf is a small helper used by handlers/tests that need the stored
// session row rather than just the account id.
func LastSeenOf(sessionID string) (time.Time, bool) {
	var session Session
	if err := db.DB.First(&session, "id = ?", sessionID).Error; err != nil {
		return time.Time{}, false
	}
	return session.LastSeen, true
}
