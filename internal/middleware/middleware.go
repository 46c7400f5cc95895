package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/toolhubapp/toolhub-backend/internal/httputil"
	"github.com/toolhubapp/toolhub-backend/internal/logger"
	"github.com/toolhubapp/toolhub-backend/internal/ratelimit"
	"github.com/toolhubapp/toolhub-backend/internal/utils"
)

// SessionCookieName is the modern credential carrier.
const SessionCookieName = "sid"

// LegacyTokenHeader is the deprecated bearer-style carrier, accepted as a
// fallback during the migration window.
const LegacyTokenHeader = "X-Session-Token"

// CredentialResolver resolves either credential carrier to an account. When
// the legacy path mints a fresh session its id is returned so the middleware
// can set the cookie.
type CredentialResolver interface {
	Resolve(sessionID, legacyToken string) (utils.SessionData, string, error)
}

// SessionMiddleware authenticates a request via cookie session or legacy
// token, placing the account id on the request context. newCookie builds the
// session cookie (secure flags differ per environment, so the auth package
// owns it).
func SessionMiddleware(resolver CredentialResolver, newCookie func(value string) *http.Cookie) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var sessionID string
			if cookie, err := r.Cookie(SessionCookieName); err == nil {
				sessionID = cookie.Value
			}
			legacyToken := r.Header.Get(LegacyTokenHeader)

			session, minted, err := resolver.Resolve(sessionID, legacyToken)
			if err != nil {
				httputil.Unauthenticated(w)
				return
			}
			if minted != "" {
				// Legacy credential upgraded: hand the client its cookie.
				http.SetCookie(w, newCookie(minted))
			}

			ctx := context.WithValue(r.Context(), utils.ContextAccountIDKey, session.AccountID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CORSMiddleware echoes the origin back only when it is on the allow-list.
func CORSMiddleware(allowed []string) func(http.Handler) http.Handler {
	allowSet := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		allowSet[o] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if _, ok := allowSet[origin]; ok {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Vary", "Origin") // important for caches
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Set("Access-Control-Allow-Methods",
					"GET, POST, PUT, PATCH, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers",
					"Content-Type, Authorization, "+LegacyTokenHeader)
			}

			w.Header().Set("Access-Control-Expose-Headers", "X-Request-Id, Retry-After")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

// RequestLogger assigns a request id and logs method/path/status/duration.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.NewString()
		w.Header().Set("X-Request-Id", requestID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		logger.Get().Info().
			Str("id", requestID).
			Str("method", r.Method).
			Str("url", r.URL.Path).
			Int("status", rec.status).
			Dur("ms", time.Since(start)).
			Msg("request")
	})
}

// RateLimit rejects requests over the bucket's fixed-window cap with 429,
// keyed on the caller's network address.
func RateLimit(limiter *ratelimit.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := ClientIP(r)
			if !limiter.Allow(key) {
				w.Header().Set("Retry-After", "900")
				httputil.TooManyRequests(w)
				return
			}
			w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", limiter.Remaining(key)))
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP extracts the caller's address, preferring the first entry of
// X-Forwarded-For when a proxy sits in front.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
