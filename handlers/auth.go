// ABOUTME: Session authentication middleware and request-context identity
// ABOUTME: Validates bearer tokens or session cookies against the sessions table
package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/harperreed/dayflow/db"
)

// SessionCookieName is the cookie carrying the session token; the
// Authorization header takes precedence.
const SessionCookieName = "dayflow_session"

type contextKey int

const userIDKey contextKey = iota

// UserIDFromContext extracts the authenticated user ID from the request
// context. Returns uuid.Nil outside the session middleware.
func UserIDFromContext(ctx context.Context) uuid.UUID {
	if v, ok := ctx.Value(userIDKey).(uuid.UUID); ok {
		return v
	}
	return uuid.Nil
}

func sessionToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// RequireSession returns middleware that rejects requests without a valid,
// unexpired session. Session issuance lives outside this service.
func RequireSession(database *sql.DB) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := sessionToken(r)
			if token == "" {
				Error(w, http.StatusUnauthorized, "missing session")
				return
			}

			session, err := db.GetSession(database, token)
			if err != nil {
				Error(w, http.StatusInternalServerError, "session lookup failed")
				return
			}
			if session == nil {
				Error(w, http.StatusUnauthorized, "invalid or expired session")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, session.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
