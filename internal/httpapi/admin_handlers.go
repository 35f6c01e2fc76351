package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/tidilihatim/avolship-sub011/internal/audit"
	"github.com/tidilihatim/avolship-sub011/internal/obs"
)

type rateLimitResetRequest struct {
	Key string `json:"key"`
}

// handleRateLimitReset clears login rate-limit state. This is an
// operational safety valve for development and is refused outright in
// production, even for admins.
func (a *API) handleRateLimitReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	if !a.cfg.IsDevelopment() {
		writeError(w, r, http.StatusForbidden, "Not available in production")
		return
	}

	// Body is optional: no key means clear everything.
	var req rateLimitResetRequest
	if err := decodeJSON(w, r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	key := strings.TrimSpace(req.Key)
	var message string
	if key == "" {
		a.login.ResetAll()
		message = "all rate limit counters cleared"
	} else {
		a.login.Reset(key)
		message = "rate limit counter cleared for " + key
	}

	_ = audit.LogEvent(r.Context(), "admin.rate_limit.reset", map[string]any{"key": key})
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": message,
	})
}

func (a *API) handleListUsers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	users, err := a.store.List(r.Context())
	if err != nil {
		obs.LogError("user listing failed", err, nil)
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}
