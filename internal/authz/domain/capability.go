// Package domain defines the authorization domain model: the capability
// catalog, built-in and custom roles, tenant memberships, the role-version
// ledger, and credential claims.
//
// The catalog is fixed at build time and injected as an immutable value; there
// is no process-wide mutable role table.
package domain

import (
	"slices"
)

// Capability is an atomic, immutable permission identifier
// (e.g. "schedule.create.event"). The set of valid capabilities is fixed at
// build time by the catalog.
type Capability string

// Capability identifiers shipped with the system.
const (
	ScheduleRead        Capability = "schedule.read"
	ScheduleCreateEvent Capability = "schedule.create.event"
	ScheduleUpdateEvent Capability = "schedule.update.event"
	ScheduleDeleteEvent Capability = "schedule.delete.event"

	ChatRead          Capability = "chat.read"
	ChatPostMessage   Capability = "chat.post.message"
	ChatDeleteMessage Capability = "chat.delete.message"
	ChatModerate      Capability = "chat.moderate"

	DonationRead   Capability = "donation.read"
	DonationRecord Capability = "donation.record"
	DonationExport Capability = "donation.export"

	PeopleRead   Capability = "people.read"
	PeopleCreate Capability = "people.create"
	PeopleUpdate Capability = "people.update"
	PeopleDelete Capability = "people.delete"

	MediaRead   Capability = "media.read"
	MediaUpload Capability = "media.upload"
	MediaDelete Capability = "media.delete"

	MemberInvite Capability = "member.invite"
	MemberRemove Capability = "member.remove"

	RoleRead   Capability = "role.read"
	RoleManage Capability = "role.manage"

	TenantSettingsRead   Capability = "tenant.settings.read"
	TenantSettingsUpdate Capability = "tenant.settings.update"
)

// allCapabilities is the full catalog in declaration order. Catalog accessors
// sort copies; this slice is never handed out directly.
var allCapabilities = []Capability{
	ScheduleRead, ScheduleCreateEvent, ScheduleUpdateEvent, ScheduleDeleteEvent,
	ChatRead, ChatPostMessage, ChatDeleteMessage, ChatModerate,
	DonationRead, DonationRecord, DonationExport,
	PeopleRead, PeopleCreate, PeopleUpdate, PeopleDelete,
	MediaRead, MediaUpload, MediaDelete,
	MemberInvite, MemberRemove,
	RoleRead, RoleManage,
	TenantSettingsRead, TenantSettingsUpdate,
}

// NormalizeCapabilities returns a de-duplicated, lexicographically sorted copy
// of caps. The canonical hash encoding and all persisted capability lists go
// through this so that identical sets always serialize identically.
func NormalizeCapabilities(caps []Capability) []Capability {
	if len(caps) == 0 {
		return []Capability{}
	}

	out := make([]Capability, len(caps))
	copy(out, caps)
	slices.Sort(out)
	return slices.Compact(out)
}

// ContainsCapability reports whether caps includes the given capability.
// Handlers use this against a credential's embedded list; it never consults
// role tables.
func ContainsCapability(caps []Capability, capability Capability) bool {
	return slices.Contains(caps, capability)
}
