package model

import (
	"fmt"
	"strings"
)

// Role is the age-derived participation tier of a worker for a given season
type Role string

const (
	RoleGenf         Role = "genf"
	RoleHjelpementor Role = "hjelpementor"
	RoleMentor       Role = "mentor"
	// RoleU13 marks workers below the minimum age. Their work is always zero-cost.
	RoleU13 Role = "u13"
)

// AllRoles lists the eligible roles in display order (u13 excluded)
var AllRoles = []Role{RoleGenf, RoleHjelpementor, RoleMentor}

func (r Role) IsValid() bool {
	return r == RoleGenf || r == RoleHjelpementor || r == RoleMentor || r == RoleU13
}

// Label returns the name shown in role pickers
func (r Role) Label() string {
	switch r {
	case RoleGenf:
		return "GEN-F"
	case RoleHjelpementor:
		return "Hjelpementor"
	case RoleMentor:
		return "Mentor"
	case RoleU13:
		return "U13"
	}
	return string(r)
}

// ParseRole accepts both canonical names ("genf") and picker labels ("GEN-F")
func ParseRole(s string) (Role, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.ReplaceAll(normalized, "-", "")
	role := Role(normalized)
	if !role.IsValid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return role, nil
}

// Bracket is the camp pricing age bracket
type Bracket string

const (
	BracketUnder18 Bracket = "under18"
	BracketOver18  Bracket = "over18"
)

// Bracket maps a role to the camp price bracket it pays.
// u13 has no bracket.
func (r Role) Bracket() (Bracket, bool) {
	switch r {
	case RoleGenf, RoleHjelpementor:
		return BracketUnder18, true
	case RoleMentor:
		return BracketOver18, true
	}
	return "", false
}
