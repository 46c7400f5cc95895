// Package httputil carries the JSON wire envelope and the machine-readable
// error codes shared by every handler. Business failures always surface as
// {"ok":false,"error":CODE} so the frontend can localise without
// string-matching; internal failures are logged in full and returned opaque.
package httputil

import (
	"encoding/json"
	"net/http"

	"github.com/toolhubapp/toolhub-backend/internal/logger"
)

// Stable error codes. These are part of the public API contract.
const (
	CodeMissingFields      = "MISSING_FIELDS"
	CodeInvalidEmail       = "INVALID_EMAIL"
	CodeWeakPassword       = "WEAK_PASSWORD"
	CodeEmailExists        = "EMAIL_EXISTS"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeLegacyAccount      = "LEGACY_ACCOUNT"
	CodeInvalidToken       = "INVALID_TOKEN"
	CodeTokenUsed          = "TOKEN_USED"
	CodeTokenExpired       = "TOKEN_EXPIRED"
	CodeTooManyItems       = "TOO_MANY_ITEMS"
	CodeRateLimited        = "RATE_LIMITED"
	CodeDailyLimit         = "DAILY_LIMIT"
	CodeNotFound           = "NOT_FOUND"
	CodeUnauthenticated    = "UNAUTHENTICATED"
	CodeInternal           = "INTERNAL"
)

// JSON writes v with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Get().Error().Err(err).Msg("failed to encode response")
	}
}

// OK writes a success envelope. Extra fields are merged beside "ok".
func OK(w http.ResponseWriter, fields map[string]any) {
	body := map[string]any{"ok": true}
	for k, v := range fields {
		body[k] = v
	}
	JSON(w, http.StatusOK, body)
}

// Fail writes a failure envelope with the given status and code.
func Fail(w http.ResponseWriter, status int, code string) {
	JSON(w, status, map[string]any{"ok": false, "error": code})
}

// BadRequest is a 400 with a validation code.
func BadRequest(w http.ResponseWriter, code string) {
	Fail(w, http.StatusBadRequest, code)
}

// Unauthenticated is the uniform 401.
func Unauthenticated(w http.ResponseWriter) {
	Fail(w, http.StatusUnauthorized, CodeUnauthenticated)
}

// NotFound covers both true absence and wrong-owner access, so existence of
// other accounts' records never leaks.
func NotFound(w http.ResponseWriter) {
	Fail(w, http.StatusNotFound, CodeNotFound)
}

// TooManyRequests signals throttling, distinct from validation failures.
func TooManyRequests(w http.ResponseWriter) {
	Fail(w, http.StatusTooManyRequests, CodeRateLimited)
}

// Internal logs the real cause server-side and returns an opaque 500.
func Internal(w http.ResponseWriter, err error) {
	logger.Get().Error().Err(err).Msg("internal error")
	Fail(w, http.StatusInternalServerError, CodeInternal)
}
