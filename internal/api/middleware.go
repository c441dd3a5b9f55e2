package api

import (
	"context"
	"net/http"

	"github.com/jacoblewisau/higlint/internal/storage"
)

type ctxKey int

const userKey ctxKey = 1

func userFromCtx(ctx context.Context) (storage.User, bool) {
	u, ok := ctx.Value(userKey).(storage.User)
	return u, ok
}

// withAuth resolves the session cookie to a user before calling next.
func withAuth(s *Server, next http.HandlerFunc, action string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(sessionCookie)
		if err != nil || c.Value == "" {
			s.err(w, http.StatusUnauthorized, "authentication required")
			return
		}
		u, err := s.UserStore.GetSession(c.Value)
		if err != nil {
			s.err(w, http.StatusUnauthorized, "session expired or invalid")
			return
		}
		if action != "" && s.Logger != nil {
			s.Logger.Debug("api request", "user", u.Username, "action", action)
		}
		next(w, r.WithContext(context.WithValue(r.Context(), userKey, u)))
	}
}

// withAdmin additionally requires the admin role.
func withAdmin(s *Server, next http.HandlerFunc, action string) http.HandlerFunc {
	return withAuth(s, func(w http.ResponseWriter, r *http.Request) {
		u, _ := userFromCtx(r.Context())
		if u.Role != "admin" {
			s.err(w, http.StatusForbidden, "admin role required")
			return
		}
		next(w, r)
	}, action)
}
