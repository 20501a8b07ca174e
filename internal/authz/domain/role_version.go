package domain

import (
	"time"

	"github.com/google/uuid"
)

// RoleVersion is an entry in a tenant's append-only fingerprint ledger.
//
// Versions start at 1 and increase by exactly 1 per entry; for a given tenant
// exactly one entry holds the maximum version. CapabilityHash is a pure
// function of the tenant's serialized role map (a content fingerprint, not a
// random token), so identical role maps always carry identical hashes.
type RoleVersion struct {
	ID             uuid.UUID
	TenantID       uuid.UUID
	Version        int64
	CapabilityHash string
	CreatedAt      time.Time
}

// FirstVersion is the version number of a tenant's bootstrap ledger entry.
const FirstVersion int64 = 1
