// Package usecase defines business logic interfaces for authorization
// operations: custom roles, capability resolution, the fingerprint ledger and
// credential issuance.
package usecase

import (
	"context"

	"github.com/google/uuid"

	authzDomain "github.com/allisson/authz/internal/authz/domain"
)

// CustomRoleRepository defines persistence operations for custom roles.
// Implementations must support transaction-aware operations via context propagation.
type CustomRoleRepository interface {
	// Create stores a new custom role. Returns ErrRoleKeyTaken on key collision.
	Create(ctx context.Context, role *authzDomain.CustomRole) error

	// Update modifies an existing custom role. Returns ErrCustomRoleNotFound
	// if no role matches.
	Update(ctx context.Context, role *authzDomain.CustomRole) error

	// GetByKey retrieves a tenant's custom role by key. Returns
	// ErrCustomRoleNotFound if no role matches.
	GetByKey(ctx context.Context, tenantID uuid.UUID, key authzDomain.RoleKey) (*authzDomain.CustomRole, error)

	// List retrieves all custom roles for a tenant.
	List(ctx context.Context, tenantID uuid.UUID) ([]authzDomain.CustomRole, error)

	// Delete removes a custom role by key. Returns ErrCustomRoleNotFound if no
	// role matches.
	Delete(ctx context.Context, tenantID uuid.UUID, key authzDomain.RoleKey) error
}

// MembershipRepository defines persistence operations for memberships.
type MembershipRepository interface {
	// Create stores a new membership. Returns ErrMembershipExists if the user
	// already belongs to the tenant.
	Create(ctx context.Context, membership *authzDomain.Membership) error

	// GetByUserAndTenant retrieves the membership binding a user to a tenant.
	// Returns ErrMembershipNotFound if no membership matches.
	GetByUserAndTenant(ctx context.Context, tenantID, userID uuid.UUID) (*authzDomain.Membership, error)
}

// RoleVersionRepository defines persistence operations for the append-only
// capability-hash ledger.
type RoleVersionRepository interface {
	// Create appends a ledger entry. Returns ErrVersionConflict if the
	// (tenant, version) pair is already claimed.
	Create(ctx context.Context, version *authzDomain.RoleVersion) error

	// GetLatest retrieves the tenant's ledger head. Returns
	// ErrRoleVersionNotFound if the tenant has no entries yet.
	GetLatest(ctx context.Context, tenantID uuid.UUID) (*authzDomain.RoleVersion, error)

	// List retrieves a tenant's ledger entries, newest first.
	List(ctx context.Context, tenantID uuid.UUID, limit int) ([]authzDomain.RoleVersion, error)
}

// RoleUseCase defines business logic operations for role management and
// capability resolution.
type RoleUseCase interface {
	// Create registers a new custom role and regenerates the tenant's
	// capability fingerprint. Returns ErrRoleKeyTaken if the key collides with
	// a built-in tier or an existing custom role.
	Create(ctx context.Context, tenantID uuid.UUID, input *authzDomain.CreateCustomRoleInput) (*authzDomain.CustomRole, error)

	// Update modifies a custom role's display name and grant set, then
	// regenerates the tenant's capability fingerprint. The role key is
	// immutable. Returns ErrSystemRoleImmutable for built-in tiers.
	Update(ctx context.Context, tenantID uuid.UUID, key authzDomain.RoleKey, input *authzDomain.UpdateCustomRoleInput) (*authzDomain.CustomRole, error)

	// Delete removes a custom role and regenerates the tenant's capability
	// fingerprint. Returns ErrSystemRoleImmutable for built-in tiers and
	// system-flagged custom roles.
	Delete(ctx context.Context, tenantID uuid.UUID, key authzDomain.RoleKey) error

	// Get retrieves a custom role by key.
	Get(ctx context.Context, tenantID uuid.UUID, key authzDomain.RoleKey) (*authzDomain.CustomRole, error)

	// List retrieves a tenant's custom roles.
	List(ctx context.Context, tenantID uuid.UUID) ([]authzDomain.CustomRole, error)

	// EffectiveCapabilities resolves a membership's grant set. A capability
	// override replaces the role-derived set entirely; a role key matching
	// neither a built-in tier nor a stored custom role resolves to the empty
	// set. Unknown capability identifiers are dropped, never granted.
	EffectiveCapabilities(ctx context.Context, membership *authzDomain.Membership) ([]authzDomain.Capability, error)
}

// CapabilityHashUseCase defines business logic operations for the capability
// fingerprint ledger.
type CapabilityHashUseCase interface {
	// Current returns the tenant's ledger head, bootstrapping version 1 for a
	// tenant with no entries. This is the read the validation gate performs on
	// every request.
	Current(ctx context.Context, tenantID uuid.UUID) (*authzDomain.RoleVersion, error)

	// Compute returns the fingerprint of the tenant's current role map without
	// touching the ledger.
	Compute(ctx context.Context, tenantID uuid.UUID) (string, error)

	// Regenerate recomputes the tenant's fingerprint and appends a ledger
	// entry when it changed. Unchanged fingerprints are a no-op returning the
	// existing head. Concurrent regenerations serialize on the ledger's
	// version constraint; losers retry at the next version.
	Regenerate(ctx context.Context, tenantID uuid.UUID) (*authzDomain.RoleVersion, error)

	// History returns the tenant's most recent ledger entries, newest first.
	History(ctx context.Context, tenantID uuid.UUID, limit int) ([]authzDomain.RoleVersion, error)
}

// CredentialUseCase defines business logic operations for credential issuance
// and validation.
type CredentialUseCase interface {
	// Issue mints a signed credential embedding the member's resolved
	// capabilities and the tenant's current fingerprint. Returns
	// ErrMembershipNotFound if the user does not belong to the tenant.
	Issue(ctx context.Context, input *authzDomain.IssueCredentialInput) (*authzDomain.IssueCredentialOutput, error)

	// Authenticate verifies a credential end to end against the tenant the
	// request resolved to: signature, expiry, tenant binding and fingerprint
	// freshness. Returns ErrInvalidCredential for signature or expiry failures
	// or when the credential was minted for a different tenant, and
	// ErrStaleCredential when the embedded fingerprint no longer matches the
	// tenant's ledger head.
	Authenticate(ctx context.Context, token string, tenantID uuid.UUID) (*authzDomain.CredentialClaims, error)
}

// MembershipUseCase defines business logic operations for binding users to
// tenants.
type MembershipUseCase interface {
	// Create binds a user to a tenant with the given role key and optional
	// capability override. Returns ErrMembershipExists if the user already
	// belongs to the tenant.
	Create(ctx context.Context, tenantID uuid.UUID, input *authzDomain.CreateMembershipInput) (*authzDomain.Membership, error)

	// Get retrieves the membership binding a user to a tenant.
	Get(ctx context.Context, tenantID, userID uuid.UUID) (*authzDomain.Membership, error)
}
