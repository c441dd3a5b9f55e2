package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"
)

func (s *Server) handleListWaivers(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("all") != "true"
	items, err := s.DB.ListWaivers(activeOnly)
	if err != nil {
		s.err(w, http.StatusInternalServerError, "db error: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "count": len(items)})
}

func (s *Server) handleCreateWaiver(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RuleID     string `json:"rule_id"`
		File       string `json:"file"`
		PatternSub string `json:"pattern_sub"`
		Reason     string `json:"reason"`
		ExpiresAt  string `json:"expires_at"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.err(w, http.StatusBadRequest, "invalid json body")
		return
	}
	body.RuleID = strings.ToUpper(strings.TrimSpace(body.RuleID))
	if body.RuleID == "" {
		s.err(w, http.StatusBadRequest, "rule_id is required")
		return
	}
	if strings.TrimSpace(body.Reason) == "" {
		s.err(w, http.StatusBadRequest, "reason is required")
		return
	}
	var expires time.Time
	if body.ExpiresAt != "" {
		t, err := time.Parse(time.RFC3339, body.ExpiresAt)
		if err != nil {
			s.err(w, http.StatusBadRequest, "expires_at must be RFC3339")
			return
		}
		expires = t
	}

	u, _ := userFromCtx(r.Context())
	id, err := s.DB.CreateWaiver(body.RuleID, body.File, body.PatternSub, body.Reason, u.Username, expires)
	if err != nil {
		s.err(w, http.StatusInternalServerError, "db error: "+err.Error())
		return
	}
	_ = s.UserStore.LogAudit(u.Username, "waiver:create", body.RuleID, map[string]any{
		"id": id, "file": body.File, "reason": body.Reason,
	})
	writeJSON(w, http.StatusCreated, map[string]any{"id": id})
}

func (s *Server) handleRevokeWaiver(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		s.err(w, http.StatusBadRequest, "invalid waiver id")
		return
	}
	if err := s.DB.RevokeWaiver(id); err != nil {
		s.err(w, http.StatusNotFound, "waiver not found or already revoked")
		return
	}
	u, _ := userFromCtx(r.Context())
	_ = s.UserStore.LogAudit(u.Username, "waiver:revoke", strconv.FormatInt(id, 10), nil)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
