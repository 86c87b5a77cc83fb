package middleware

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const sessionContextKey contextKey = "customerSession"

const sessionCookieName = "chiya_session"

// CustomerSession scopes a cart to one browser. The id is an opaque cookie
// assigned on first contact; nothing about it is persisted server-side
// beyond the in-memory cart it keys.
func CustomerSession() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := ""
			if cookie, err := r.Cookie(sessionCookieName); err == nil {
				session = strings.TrimSpace(cookie.Value)
			}
			if session == "" {
				session = randomHex(16)
				http.SetCookie(w, &http.Cookie{
					Name:     sessionCookieName,
					Value:    session,
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}
			ctx := context.WithValue(r.Context(), sessionContextKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSession returns the customer session id set by CustomerSession.
func GetSession(ctx context.Context) (string, bool) {
	session, ok := ctx.Value(sessionContextKey).(string)
	return session, ok && session != ""
}
