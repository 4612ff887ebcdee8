package domain

import "strings"

// Role is the closed set of portal roles. Every identity carries exactly one.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleVet    Role = "vet"
	RoleFarmer Role = "farmer"
)

// Roles lists the known roles in display order.
var Roles = []Role{RoleAdmin, RoleVet, RoleFarmer}

// ParseRole maps a raw tag onto a known role. The boolean is false for
// empty or unrecognised tags.
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleVet:
		return RoleVet, true
	case RoleFarmer:
		return RoleFarmer, true
	default:
		return "", false
	}
}

// Known reports whether r is one of the three portal roles.
func (r Role) Known() bool {
	switch r {
	case RoleAdmin, RoleVet, RoleFarmer:
		return true
	}
	return false
}

// Effective returns the role used for navigation and screen selection.
// Unknown tags fall back to the farmer view.
func (r Role) Effective() Role {
	if r.Known() {
		return r
	}
	return RoleFarmer
}

// DisplayName is the label shown in the page header.
func (r Role) DisplayName() string {
	switch r {
	case RoleAdmin:
		return "Ministry Admin"
	case RoleVet:
		return "Veterinarian"
	case RoleFarmer:
		return "Farmer"
	default:
		return "User"
	}
}
