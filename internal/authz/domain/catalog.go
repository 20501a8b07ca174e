package domain

import (
	"fmt"
	"slices"
)

// RoleKey identifies a role: one of the five built-in tiers or the key of a
// tenant's custom role.
type RoleKey string

// Built-in role tiers. By convention each tier is a superset of the one below
// it (Owner ⊇ Leader ⊇ Contributor ⊇ Member ⊇ Guest), but nothing enforces
// this structurally; ValidateTierMonotonicity exists for catalog maintenance.
const (
	RoleOwner       RoleKey = "owner"
	RoleLeader      RoleKey = "leader"
	RoleContributor RoleKey = "contributor"
	RoleMember      RoleKey = "member"
	RoleGuest       RoleKey = "guest"
)

// builtinTiers orders the tiers from least to most privileged.
var builtinTiers = []RoleKey{RoleGuest, RoleMember, RoleContributor, RoleLeader, RoleOwner}

// Catalog is the immutable table of all capability identifiers and the fixed
// grant sets of the five built-in role tiers. A Catalog value is safe for
// concurrent use; construct one with DefaultCatalog and inject it.
type Catalog struct {
	known    map[Capability]struct{}
	builtins map[RoleKey][]Capability
}

// DefaultCatalog returns the catalog shipped with the system.
func DefaultCatalog() Catalog {
	known := make(map[Capability]struct{}, len(allCapabilities))
	for _, capability := range allCapabilities {
		known[capability] = struct{}{}
	}

	guest := []Capability{
		ScheduleRead,
		ChatRead,
		MediaRead,
	}
	member := append(slices.Clone(guest),
		ChatPostMessage,
		PeopleRead,
		DonationRecord,
	)
	contributor := append(slices.Clone(member),
		ScheduleCreateEvent,
		ScheduleUpdateEvent,
		MediaUpload,
		PeopleCreate,
		PeopleUpdate,
	)
	leader := append(slices.Clone(contributor),
		ScheduleDeleteEvent,
		ChatDeleteMessage,
		ChatModerate,
		DonationRead,
		MemberInvite,
		RoleRead,
		TenantSettingsRead,
	)
	owner := slices.Clone(allCapabilities)

	return Catalog{
		known: known,
		builtins: map[RoleKey][]Capability{
			RoleGuest:       NormalizeCapabilities(guest),
			RoleMember:      NormalizeCapabilities(member),
			RoleContributor: NormalizeCapabilities(contributor),
			RoleLeader:      NormalizeCapabilities(leader),
			RoleOwner:       NormalizeCapabilities(owner),
		},
	}
}

// Contains reports whether the capability is part of the catalog.
func (c Catalog) Contains(capability Capability) bool {
	_, ok := c.known[capability]
	return ok
}

// Capabilities returns the full catalog, sorted.
func (c Catalog) Capabilities() []Capability {
	out := make([]Capability, 0, len(c.known))
	for capability := range c.known {
		out = append(out, capability)
	}
	slices.Sort(out)
	return out
}

// BuiltinKeys returns the five built-in role keys, least privileged first.
func (c Catalog) BuiltinKeys() []RoleKey {
	return slices.Clone(builtinTiers)
}

// IsBuiltin reports whether key names a built-in tier.
func (c Catalog) IsBuiltin(key RoleKey) bool {
	_, ok := c.builtins[key]
	return ok
}

// BuiltinGrants returns the fixed grant set for a built-in tier. The returned
// slice is a copy; callers may mutate it freely.
func (c Catalog) BuiltinGrants(key RoleKey) ([]Capability, bool) {
	grants, ok := c.builtins[key]
	if !ok {
		return nil, false
	}
	return slices.Clone(grants), true
}

// FilterKnown parses a raw capability-identifier list into a checked set of
// catalog capabilities. Unknown identifiers are dropped and returned
// separately so callers can log them; they never propagate into grants.
func (c Catalog) FilterKnown(raw []string) (known []Capability, unknown []string) {
	known = make([]Capability, 0, len(raw))
	for _, s := range raw {
		capability := Capability(s)
		if c.Contains(capability) {
			known = append(known, capability)
			continue
		}
		unknown = append(unknown, s)
	}
	return NormalizeCapabilities(known), unknown
}

// ValidateTierMonotonicity verifies each built-in tier is a superset of the
// tier below it. This is a catalog-maintenance check, not a runtime guarantee;
// nothing on the request path calls it.
func (c Catalog) ValidateTierMonotonicity() error {
	for i := 1; i < len(builtinTiers); i++ {
		lower, upper := builtinTiers[i-1], builtinTiers[i]
		for _, capability := range c.builtins[lower] {
			if !slices.Contains(c.builtins[upper], capability) {
				return fmt.Errorf(
					"tier %q lacks capability %q granted to lower tier %q",
					upper, capability, lower,
				)
			}
		}
	}
	return nil
}
