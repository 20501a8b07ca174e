// Package service provides technical services for authorization operations:
// capability fingerprint computation and credential signing.
package service

import (
	authzDomain "github.com/allisson/authz/internal/authz/domain"
)

// HashService computes deterministic, content-addressed fingerprints of a
// tenant's fully resolved role→capability map.
type HashService interface {
	// ComputeHash serializes the role map with a stable, order-independent
	// canonical encoding, digests it with SHA-256 and returns the hex-encoded
	// fingerprint. Identical role maps always yield identical hashes; there is
	// no time component or random salt.
	ComputeHash(roleMap map[authzDomain.RoleKey][]authzDomain.Capability) string
}

// CredentialService signs and verifies credentials. The credential is an
// immutable bearer artifact: once minted its claims never change server-side.
type CredentialService interface {
	// Sign mints a signed credential from the given claims.
	Sign(claims *authzDomain.CredentialClaims) (string, error)

	// Parse verifies the token's signature and expiry and returns its claims.
	// Returns ErrInvalidCredential for any token that fails verification;
	// staleness of the embedded fingerprint is checked by the gate, not here.
	Parse(token string) (*authzDomain.CredentialClaims, error)
}
