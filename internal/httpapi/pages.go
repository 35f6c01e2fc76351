package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/tidilihatim/avolship-sub011/internal/identity"
)

// handleDashboard serves /dashboard/{role}. Each role home requires that
// exact role plus approved status; a misrouted authenticated user is
// bounced to their own home, an unknown path segment is simply not found.
func (a *API) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	seg := strings.Trim(strings.TrimPrefix(r.URL.Path, "/dashboard/"), "/")
	role, ok := identity.ParseRole(seg)
	if !ok || strings.Contains(seg, "/") {
		http.NotFound(w, r)
		return
	}
	a.guardPage([]identity.Role{role}, identity.StatusApproved, a.renderDashboard(role))(w, r)
}

func (a *API) renderDashboard(role identity.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := identity.FromContext(r.Context())
		renderPage(w, fmt.Sprintf("%s dashboard", role),
			fmt.Sprintf("<h1>%s dashboard</h1><p>Signed in as %s.</p>", role, id.Email))
	}
}

func (a *API) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	renderPage(w, "Sign in", `<h1>Sign in</h1><p>POST credentials to /v1/auth/login.</p>`)
}

func (a *API) handlePendingPage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	renderPage(w, "Account pending", `<h1>Account pending</h1><p>Your account is awaiting review.</p>`)
}

func renderPage(w http.ResponseWriter, title, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, "<!doctype html><html><head><title>%s · AvolShip</title></head><body>%s</body></html>", title, body)
}
