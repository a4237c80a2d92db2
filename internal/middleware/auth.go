package middleware

import (
	"context"
	"net/http"

	"github.com/staynest/staynest-backend/internal/models"
	"github.com/staynest/staynest-backend/internal/services"
)

// SessionCookieName is the HTTP-only cookie carrying the session token.
const SessionCookieName = "staynest_session"

type ctxKey int

const sessionUserKey ctxKey = iota

// SessionAuth gates requests on session state. Role checks are centralized
// here: exact match only, no hierarchy between host and guest.
type SessionAuth struct {
	sessions *services.SessionService
}

func NewSessionAuth(sessions *services.SessionService) *SessionAuth {
	return &SessionAuth{sessions: sessions}
}

// SessionUserFrom returns the session projection placed by LoadSession.
func SessionUserFrom(ctx context.Context) (services.SessionUser, bool) {
	user, ok := ctx.Value(sessionUserKey).(services.SessionUser)
	return user, ok
}

// SessionToken returns the raw token from the request cookie, or "".
func SessionToken(r *http.Request) string {
	c, err := r.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

// LoadSession resolves the session cookie and, when valid, attaches the user
// projection to the request context. It never rejects; gating is left to
// RequireAuth / RequireRole so public routes can still see who is logged in.
func (a *SessionAuth) LoadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := SessionToken(r)
		if token != "" {
			if user, ok, err := a.sessions.Get(r.Context(), token); err == nil && ok {
				r = r.WithContext(context.WithValue(r.Context(), sessionUserKey, user))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAuth responds 401 when no valid session is attached.
func (a *SessionAuth) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := SessionUserFrom(r.Context()); !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"errormessage":"Not authenticated"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole responds 403 unless the session role matches exactly.
func (a *SessionAuth) RequireRole(role models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := SessionUserFrom(r.Context())
			if !ok {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"errormessage":"Not authenticated"}`))
				return
			}
			if user.Usertype != role {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				w.Write([]byte(`{"errormessage":"Access denied: only ` + string(role) + `s allowed"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
