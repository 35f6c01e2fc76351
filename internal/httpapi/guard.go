package httpapi

import (
	"net/http"

	"github.com/tidilihatim/avolship-sub011/internal/identity"
	"github.com/tidilihatim/avolship-sub011/internal/obs"
	"github.com/tidilihatim/avolship-sub011/internal/policy"
)

// guardAPI wraps an API handler with the resolver/policy check. It runs
// before any side-effecting work in the handler. Denials are structured
// JSON: 401 without a session, 403 for a wrong role or status, 404 when the
// credential carries a role with no home surface.
func (a *API) guardAPI(required []identity.Role, requiredStatus identity.Status, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d := a.decide(r, required, requiredStatus)
		if d.Allow {
			next(w, r)
			return
		}
		switch d.Reason {
		case policy.ReasonUnauthenticated:
			writeError(w, r, http.StatusUnauthorized, "Unauthorized")
		case policy.ReasonUnknownRole:
			writeError(w, r, http.StatusNotFound, "Not Found")
		default:
			writeError(w, r, http.StatusForbidden, "Forbidden")
		}
	}
}

// guardPage wraps a page handler. Denials navigate: to the login surface
// without a session, to the decision's redirect target otherwise, or 404
// when the role has no home (no redirect loop for malformed roles).
func (a *API) guardPage(required []identity.Role, requiredStatus identity.Status, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d := a.decide(r, required, requiredStatus)
		if d.Allow {
			next(w, r)
			return
		}
		if d.RedirectTo == "" {
			http.NotFound(w, r)
			return
		}
		http.Redirect(w, r, d.RedirectTo, http.StatusFound)
	}
}

func (a *API) decide(r *http.Request, required []identity.Role, requiredStatus identity.Status) policy.Decision {
	var idp *identity.Identity
	if id, ok := identity.FromContext(r.Context()); ok {
		idp = &id
	}
	d := policy.Decide(idp, required, requiredStatus)
	obs.ObserveAccessDecision(d.Allow, string(d.Reason))
	return d
}
