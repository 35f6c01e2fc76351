package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tidilihatim/avolship-sub011/internal/audit"
	"github.com/tidilihatim/avolship-sub011/internal/identity"
	"github.com/tidilihatim/avolship-sub011/internal/obs"
	"github.com/tidilihatim/avolship-sub011/internal/token"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string            `json:"token"`
	ExpiresAt time.Time         `json:"expires_at"`
	User      identity.Identity `json:"user"`
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	// The limiter runs before credentials are even read: check first,
	// act second.
	key := "login:" + clientIP(r)
	if res := a.login.Attempt(key); !res.Allowed {
		obs.ObserveLoginAttempt("rate_limited")
		_ = audit.LogEvent(r.Context(), "auth.login.rate_limited", map[string]any{"key": key})
		w.Header().Set("Retry-After", strconv.Itoa(int(res.RetryAfter.Seconds())+1))
		writeError(w, r, http.StatusTooManyRequests, "too many login attempts")
		return
	}

	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" || req.Password == "" {
		writeError(w, r, http.StatusBadRequest, "email and password are required")
		return
	}

	user, err := a.store.FindByEmail(r.Context(), email)
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			a.rejectLogin(w, r, email)
			return
		}
		obs.LogError("identity lookup failed", err, map[string]any{"email": email})
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	if err := identity.VerifyPassword(user.PasswordHash, req.Password); err != nil {
		a.rejectLogin(w, r, email)
		return
	}

	id := user.Identity()
	signed, expiresAt, err := a.tokens.IssueSession(id)
	if err != nil {
		obs.LogError("session issuance failed", err, map[string]any{"user_id": id.ID})
		writeError(w, r, http.StatusInternalServerError, "authentication unavailable")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    signed,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   !a.cfg.IsDevelopment(),
	})

	obs.ObserveLoginAttempt("ok")
	_ = audit.LogEvent(r.Context(), "auth.login.ok", map[string]any{
		"user_id": id.ID,
		"role":    string(id.Role),
	})

	writeJSON(w, http.StatusOK, loginResponse{
		Token:     signed,
		ExpiresAt: expiresAt,
		User:      id,
	})
}

// rejectLogin answers bad credentials uniformly so the response does not
// reveal whether the account exists.
func (a *API) rejectLogin(w http.ResponseWriter, r *http.Request, email string) {
	obs.ObserveLoginAttempt("bad_credentials")
	_ = audit.LogEvent(r.Context(), "auth.login.rejected", map[string]any{"email": email})
	writeError(w, r, http.StatusUnauthorized, "invalid email or password")
}

func (a *API) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	id, _ := identity.FromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{"user": id})
}

type serviceTokenResponse struct {
	Token string `json:"token"`
}

func (a *API) handleServiceToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	id, _ := identity.FromContext(r.Context())

	signed, expiresAt, err := a.tokens.IssueServiceToken(id)
	if err != nil {
		obs.LogError("service token issuance failed", err, map[string]any{"user_id": id.ID})
		payload := map[string]any{"error": "failed to issue service token"}
		if errors.Is(err, token.ErrMissingSecret) {
			payload["details"] = "signing configuration missing"
		}
		if rid := RequestIDFromContext(r.Context()); rid != "" {
			payload["request_id"] = rid
		}
		writeJSON(w, http.StatusInternalServerError, payload)
		return
	}

	_ = audit.LogEvent(r.Context(), "auth.service_token.issued", map[string]any{
		"user_id":    id.ID,
		"expires_at": expiresAt.Format(time.RFC3339),
	})
	writeJSON(w, http.StatusOK, serviceTokenResponse{Token: signed})
}
