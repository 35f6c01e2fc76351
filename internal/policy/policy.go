// Package policy holds the single role/status decision function every
// protected surface consults. Entry points never re-implement role
// membership checks themselves.
package policy

import (
	"github.com/tidilihatim/avolship-sub011/internal/identity"
)

// Redirect surfaces used by deny decisions.
const (
	LoginPath   = "/auth/login"
	PendingPath = "/auth/pending"
)

// Reason classifies why a decision denied access.
type Reason string

const (
	ReasonUnauthenticated Reason = "unauthenticated"
	ReasonWrongRole       Reason = "wrong_role"
	ReasonWrongStatus     Reason = "wrong_status"
	ReasonUnknownRole     Reason = "unknown_role"
)

// Decision is the allow/deny/redirect outcome for one request. It is
// request-scoped and never persisted.
type Decision struct {
	Allow      bool
	RedirectTo string
	Reason     Reason
}

var allow = Decision{Allow: true}

// Decide maps (identity, required roles, required status) to a Decision.
//
// A nil identity denies toward the login surface. A role outside the
// required set denies toward the identity's own role home so a misrouted
// user bounces to their area instead of a dead end; an identity whose role
// has no home yields ReasonUnknownRole with no redirect, which callers
// surface as not-found rather than looping. A status mismatch denies
// toward the pending surface even when the role matches.
//
// Role and status comparison is case-insensitive: credentials minted by
// older builds carry upper-cased values.
func Decide(id *identity.Identity, required []identity.Role, requiredStatus identity.Status) Decision {
	if id == nil {
		return Decision{RedirectTo: LoginPath, Reason: ReasonUnauthenticated}
	}

	role := identity.NormalizeRole(string(id.Role))
	if len(required) > 0 && !containsRole(required, role) {
		home := role.Home()
		if home == "" {
			return Decision{Reason: ReasonUnknownRole}
		}
		return Decision{RedirectTo: home, Reason: ReasonWrongRole}
	}

	if requiredStatus != "" {
		status := identity.NormalizeStatus(string(id.Status))
		if status != identity.NormalizeStatus(string(requiredStatus)) {
			return Decision{RedirectTo: PendingPath, Reason: ReasonWrongStatus}
		}
	}

	return allow
}

func containsRole(set []identity.Role, role identity.Role) bool {
	for _, r := range set {
		if identity.NormalizeRole(string(r)) == role {
			return true
		}
	}
	return false
}
