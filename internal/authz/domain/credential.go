package domain

import (
	"time"

	"github.com/google/uuid"
)

// CredentialClaims is the payload of an issued credential: an immutable,
// signed bearer artifact minted once at login and never mutated server-side.
//
// CapabilityHash is the tenant's capability fingerprint at mint time; the
// validation gate compares it against the tenant's current fingerprint on
// every request. Capabilities is the session's resolved grant set — the
// source of truth for downstream handlers as long as the fingerprint is
// current.
type CredentialClaims struct {
	UserID         uuid.UUID
	TenantID       uuid.UUID
	RoleKey        RoleKey
	CapabilityHash string
	Capabilities   []Capability
	IssuedAt       time.Time
	ExpiresAt      time.Time
}

// IsExpired reports whether the credential expired at the given instant.
func (c *CredentialClaims) IsExpired(now time.Time) bool {
	return !c.ExpiresAt.After(now)
}

// IssueCredentialInput identifies the principal a credential is minted for.
// Verifying the principal (password check etc.) is the login collaborator's
// job and happens before this input is built.
type IssueCredentialInput struct {
	UserID   uuid.UUID
	TenantID uuid.UUID
}

// IssueCredentialOutput carries the signed credential and its claims.
type IssueCredentialOutput struct {
	Token  string
	Claims *CredentialClaims
}
