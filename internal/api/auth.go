package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/jacoblewisau/higlint/internal/security"
)

const sessionCookie = "higlint_session"

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.err(w, http.StatusBadRequest, "invalid json body")
		return
	}
	body.Username = strings.TrimSpace(body.Username)
	if body.Username == "" || body.Password == "" {
		s.err(w, http.StatusBadRequest, "username and password are required")
		return
	}

	u, hash, err := s.UserStore.GetUserByUsername(body.Username)
	if err != nil || !security.CheckPassword(hash, body.Password) {
		// Deliberately the same response for unknown user and bad password.
		s.err(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := security.NewToken(32)
	if err != nil {
		s.err(w, http.StatusInternalServerError, "token generation failed")
		return
	}
	dur := s.SessionDuration
	if dur <= 0 {
		dur = 12 * time.Hour
	}
	expires := time.Now().Add(dur)
	if err := s.UserStore.CreateSession(u.ID, token, expires); err != nil {
		s.err(w, http.StatusInternalServerError, "session create failed")
		return
	}
	_ = s.UserStore.LogAudit(u.Username, "login", "session", nil)

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"username": u.Username,
		"role":     u.Role,
		"expires":  expires.UTC(),
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(sessionCookie); err == nil {
		_ = s.UserStore.DeleteSession(c.Value)
	}
	if u, ok := userFromCtx(r.Context()); ok {
		_ = s.UserStore.LogAudit(u.Username, "logout", "session", nil)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	u, ok := userFromCtx(r.Context())
	if !ok {
		s.err(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"username": u.Username,
		"role":     u.Role,
	})
}
