package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/tidilihatim/avolship-sub011/internal/identity"
	"github.com/tidilihatim/avolship-sub011/internal/obs"
	"github.com/tidilihatim/avolship-sub011/internal/token"
)

const (
	// sessionCookieName is an external contract with the browser client.
	sessionCookieName = "session_token"

	authHeader   = "Authorization"
	bearerPrefix = "Bearer "
)

// withIdentity resolves the request credential into an Identity and
// attaches it to the context. An absent or invalid credential leaves the
// context anonymous and the guards downstream decide what that means for
// each surface. A missing signing secret is a deployment fault, not a bad
// credential: the request fails with 500 so the misconfiguration cannot
// masquerade as mass credential expiry.
func (a *API) withIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := credentialFromRequest(r)
		if raw != "" {
			id, err := a.tokens.Verify(raw)
			switch {
			case err == nil:
				r = r.WithContext(identity.ContextWithIdentity(r.Context(), id))
			case errors.Is(err, token.ErrMissingSecret):
				obs.LogError("credential verification unavailable", err, nil)
				writeError(w, r, http.StatusInternalServerError, "internal error")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// credentialFromRequest extracts the opaque credential from the bearer
// header or the session cookie, preferring the header.
func credentialFromRequest(r *http.Request) string {
	if header := strings.TrimSpace(r.Header.Get(authHeader)); header != "" {
		if len(header) > len(bearerPrefix) && strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
			return strings.TrimSpace(header[len(bearerPrefix):])
		}
	}
	if c, err := r.Cookie(sessionCookieName); err == nil {
		return strings.TrimSpace(c.Value)
	}
	return ""
}
