package domain

import (
	"time"

	"github.com/google/uuid"
)

// CustomRole is a tenant-owned, mutable role with an arbitrary capability set,
// layered over the built-in catalog. A custom role's key must not collide with
// a built-in tier. System roles cannot be deleted.
type CustomRole struct {
	ID           uuid.UUID
	TenantID     uuid.UUID
	Key          RoleKey
	Name         string
	Capabilities []Capability
	IsSystem     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateCustomRoleInput contains the parameters for creating a custom role.
// Capabilities is a raw identifier list validated against the catalog at the
// read boundary.
type CreateCustomRoleInput struct {
	Key          string
	Name         string
	Capabilities []string
	IsSystem     bool
}

// UpdateCustomRoleInput contains the parameters for updating a custom role.
// The role key is immutable; only the display name and grant set change.
type UpdateCustomRoleInput struct {
	Name         string
	Capabilities []string
}

// RoleCapabilityMap assembles a tenant's fully resolved role→capability map:
// the five built-in grant sets plus every custom role, each capability list
// de-duplicated and sorted. This is the input to the fingerprint computation.
func RoleCapabilityMap(catalog Catalog, customRoles []CustomRole) map[RoleKey][]Capability {
	out := make(map[RoleKey][]Capability, len(builtinTiers)+len(customRoles))

	for _, key := range builtinTiers {
		grants, _ := catalog.BuiltinGrants(key)
		out[key] = NormalizeCapabilities(grants)
	}
	for _, role := range customRoles {
		out[role.Key] = NormalizeCapabilities(role.Capabilities)
	}

	return out
}
