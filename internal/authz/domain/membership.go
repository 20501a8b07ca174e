package domain

import (
	"time"

	"github.com/google/uuid"
)

// Membership binds a user to a tenant via a role key (built-in or custom).
//
// CapabilityOverride, when non-nil, is a raw capability-identifier list that
// replaces (never merges with) the role-derived grant set. It is stored as
// written and validated against the catalog when read.
type Membership struct {
	ID                 uuid.UUID
	TenantID           uuid.UUID
	UserID             uuid.UUID
	RoleKey            RoleKey
	CapabilityOverride []string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// HasOverride reports whether the membership carries a raw capability-list
// override. An empty non-nil list is a valid override granting nothing.
func (m *Membership) HasOverride() bool {
	return m.CapabilityOverride != nil
}

// CreateMembershipInput contains the parameters for binding a user to a tenant.
type CreateMembershipInput struct {
	UserID             uuid.UUID
	RoleKey            string
	CapabilityOverride []string
}
