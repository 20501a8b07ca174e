// Package http provides authorization middleware and handlers: the credential
// gate, capability checks and the role/fingerprint management API.
package http

import (
	"context"

	authzDomain "github.com/allisson/authz/internal/authz/domain"
)

// claimsKey is a context key type for storing validated credential claims.
type claimsKey struct{}

// WithClaims stores validated credential claims in the context.
// This is called by the credential gate after successful validation.
func WithClaims(ctx context.Context, claims *authzDomain.CredentialClaims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// GetClaims retrieves validated credential claims from the context.
// Returns (claims, true) if claims are present, or (nil, false) if the gate
// has not run on this request.
func GetClaims(ctx context.Context) (*authzDomain.CredentialClaims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*authzDomain.CredentialClaims)
	return claims, ok
}
