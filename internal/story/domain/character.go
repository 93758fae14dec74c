package domain

import "strings"

// Role classifies how a character functions in the narrative.
type Role string

const (
	// RoleUndetermined is the default role for new characters.
	RoleUndetermined Role = "undetermined"
	// RoleNeutral marks a character with no structural obligations.
	RoleNeutral Role = "neutral"
	// RoleVillain marks a character that must appear in opposition.
	RoleVillain Role = "villain"
	// RoleMissionGiver marks a character expected to assign missions.
	RoleMissionGiver Role = "mission-giver"
)

// ParseRole maps a raw role string to a known Role.
// Unknown values resolve to RoleUndetermined.
func ParseRole(raw string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleNeutral:
		return RoleNeutral
	case RoleVillain:
		return RoleVillain
	case RoleMissionGiver:
		return RoleMissionGiver
	default:
		return RoleUndetermined
	}
}

// Character is shared, read-mostly reference data consumed by the
// consistency checks. Characters are supplied by an external repository
// and never owned by the engine.
type Character struct {
	ID        string
	Name      string
	Role      Role
	Traits    []string
	Backstory string
	PlotLines []string
}
