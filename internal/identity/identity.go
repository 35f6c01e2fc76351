package identity

import (
	"strings"
	"time"
)

// Role is the canonical lowercase role name carried by an Identity.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleModerator  Role = "moderator"
	RoleSeller     Role = "seller"
	RoleProvider   Role = "provider"
	RoleCallCenter Role = "call_center"
	RoleSupport    Role = "support"
	RoleSuperAdmin Role = "super_admin"
)

var knownRoles = map[Role]struct{}{
	RoleAdmin:      {},
	RoleModerator:  {},
	RoleSeller:     {},
	RoleProvider:   {},
	RoleCallCenter: {},
	RoleSupport:    {},
	RoleSuperAdmin: {},
}

// NormalizeRole lowers and trims a raw role string. The result is not
// guaranteed to be a known role; callers that need validity use ParseRole.
func NormalizeRole(raw string) Role {
	return Role(strings.TrimSpace(strings.ToLower(raw)))
}

// ParseRole normalizes a raw role string and reports whether it names a
// known role. Legacy credentials carry upper-cased roles, so comparison is
// case-insensitive here and nowhere else.
func ParseRole(raw string) (Role, bool) {
	role := NormalizeRole(raw)
	_, ok := knownRoles[role]
	return role, ok
}

// Home returns the role's dashboard landing path, or "" when the role is
// unknown and has no home surface.
func (r Role) Home() string {
	if _, ok := knownRoles[r]; !ok {
		return ""
	}
	return "/dashboard/" + string(r)
}

// Status is the account review state of an Identity.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// NormalizeStatus lowers and trims a raw status string.
func NormalizeStatus(raw string) Status {
	return Status(strings.TrimSpace(strings.ToLower(raw)))
}

// Identity is the authenticated user's resolved attributes for one request.
// It is derived fresh from the credential per request and never shared or
// cached across requests.
type Identity struct {
	ID     string `json:"id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Role   Role   `json:"role"`
	Status Status `json:"status"`
}

// User is the stored account record behind an Identity.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Status       Status    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Identity projects the stored record into the request-scoped view.
func (u *User) Identity() Identity {
	return Identity{
		ID:     u.ID,
		Email:  u.Email,
		Name:   u.Name,
		Role:   NormalizeRole(string(u.Role)),
		Status: NormalizeStatus(string(u.Status)),
	}
}
