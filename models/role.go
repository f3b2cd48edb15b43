package models

import "strings"

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleHR       Role = "hr"
	RoleEngineer Role = "engineer"
	RoleClient   Role = "client"
)

// Roles lists every role in a stable order.
var Roles = []Role{RoleAdmin, RoleHR, RoleEngineer, RoleClient}

func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	return r, r.Valid()
}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleHR, RoleEngineer, RoleClient:
		return true
	}
	return false
}

// IsStaff is true for roles with unrestricted visibility.
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleHR
}

// Caller is the authenticated principal a core operation acts for.
// Handlers build it from the session; services never read ambient request state.
type Caller struct {
	ProfileID string
	Role      Role
	Email     string
	FullName  string
}

func CallerFromProfile(p *Profile) Caller {
	return Caller{
		ProfileID: p.ID,
		Role:      p.Role,
		Email:     p.Email,
		FullName:  p.FullName,
	}
}
