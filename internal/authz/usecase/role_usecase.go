package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	authzDomain "github.com/allisson/authz/internal/authz/domain"
	apperrors "github.com/allisson/authz/internal/errors"
)

// roleUseCase implements RoleUseCase.
//
// Role mutations commit first and regenerate the tenant's fingerprint after.
// If regeneration fails the mutation stays durable and the ledger catches up
// on the next mutation or an explicit regenerate run.
type roleUseCase struct {
	customRoleRepo CustomRoleRepository
	hashUseCase    CapabilityHashUseCase
	catalog        authzDomain.Catalog
}

// Create registers a new custom role and regenerates the tenant's fingerprint.
//
// The key must not collide with a built-in tier or an existing custom role.
// Capability identifiers outside the catalog are dropped with a warning, never
// stored.
func (u *roleUseCase) Create(
	ctx context.Context,
	tenantID uuid.UUID,
	input *authzDomain.CreateCustomRoleInput,
) (*authzDomain.CustomRole, error) {
	key := authzDomain.RoleKey(input.Key)
	if u.catalog.IsBuiltin(key) {
		return nil, authzDomain.ErrRoleKeyTaken
	}

	capabilities := u.filterCapabilities(ctx, tenantID, key, input.Capabilities)

	now := time.Now().UTC()
	role := &authzDomain.CustomRole{
		ID:           uuid.Must(uuid.NewV7()),
		TenantID:     tenantID,
		Key:          key,
		Name:         input.Name,
		Capabilities: capabilities,
		IsSystem:     input.IsSystem,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := u.customRoleRepo.Create(ctx, role); err != nil {
		return nil, err
	}
	if _, err := u.hashUseCase.Regenerate(ctx, tenantID); err != nil {
		return nil, err
	}
	return role, nil
}

// Update modifies a custom role's display name and grant set, then
// regenerates the tenant's fingerprint. The role key is immutable.
func (u *roleUseCase) Update(
	ctx context.Context,
	tenantID uuid.UUID,
	key authzDomain.RoleKey,
	input *authzDomain.UpdateCustomRoleInput,
) (*authzDomain.CustomRole, error) {
	if u.catalog.IsBuiltin(key) {
		return nil, authzDomain.ErrSystemRoleImmutable
	}

	role, err := u.customRoleRepo.GetByKey(ctx, tenantID, key)
	if err != nil {
		return nil, err
	}

	role.Name = input.Name
	role.Capabilities = u.filterCapabilities(ctx, tenantID, key, input.Capabilities)
	role.UpdatedAt = time.Now().UTC()

	if err := u.customRoleRepo.Update(ctx, role); err != nil {
		return nil, err
	}
	if _, err := u.hashUseCase.Regenerate(ctx, tenantID); err != nil {
		return nil, err
	}
	return role, nil
}

// Delete removes a custom role and regenerates the tenant's fingerprint.
// Built-in tiers and system-flagged custom roles cannot be deleted.
func (u *roleUseCase) Delete(ctx context.Context, tenantID uuid.UUID, key authzDomain.RoleKey) error {
	if u.catalog.IsBuiltin(key) {
		return authzDomain.ErrSystemRoleImmutable
	}

	role, err := u.customRoleRepo.GetByKey(ctx, tenantID, key)
	if err != nil {
		return err
	}
	if role.IsSystem {
		return authzDomain.ErrSystemRoleImmutable
	}

	if err := u.customRoleRepo.Delete(ctx, tenantID, key); err != nil {
		return err
	}
	if _, err := u.hashUseCase.Regenerate(ctx, tenantID); err != nil {
		return err
	}
	return nil
}

// Get retrieves a custom role by key.
func (u *roleUseCase) Get(
	ctx context.Context,
	tenantID uuid.UUID,
	key authzDomain.RoleKey,
) (*authzDomain.CustomRole, error) {
	return u.customRoleRepo.GetByKey(ctx, tenantID, key)
}

// List retrieves a tenant's custom roles.
func (u *roleUseCase) List(ctx context.Context, tenantID uuid.UUID) ([]authzDomain.CustomRole, error) {
	return u.customRoleRepo.List(ctx, tenantID)
}

// EffectiveCapabilities resolves a membership's grant set.
//
// Resolution order:
//  1. A capability override replaces the role-derived set entirely, even when
//     empty.
//  2. A built-in role key resolves to the catalog's fixed grant set.
//  3. A custom role key resolves to the stored grant set.
//  4. Anything else resolves to the empty set. Granting nothing on a dangling
//     role key keeps the failure mode closed.
func (u *roleUseCase) EffectiveCapabilities(
	ctx context.Context,
	membership *authzDomain.Membership,
) ([]authzDomain.Capability, error) {
	if membership.HasOverride() {
		known, unknown := u.catalog.FilterKnown(membership.CapabilityOverride)
		if len(unknown) > 0 {
			slog.WarnContext(ctx, "dropping unknown capability identifiers from override",
				"tenant_id", membership.TenantID,
				"user_id", membership.UserID,
				"unknown", unknown,
			)
		}
		return known, nil
	}

	if grants, ok := u.catalog.BuiltinGrants(membership.RoleKey); ok {
		return grants, nil
	}

	role, err := u.customRoleRepo.GetByKey(ctx, membership.TenantID, membership.RoleKey)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			slog.WarnContext(ctx, "membership references unknown role key, resolving to no capabilities",
				"tenant_id", membership.TenantID,
				"user_id", membership.UserID,
				"role_key", membership.RoleKey,
			)
			return []authzDomain.Capability{}, nil
		}
		return nil, err
	}

	return authzDomain.NormalizeCapabilities(role.Capabilities), nil
}

// filterCapabilities drops identifiers outside the catalog, logging what was
// dropped.
func (u *roleUseCase) filterCapabilities(
	ctx context.Context,
	tenantID uuid.UUID,
	key authzDomain.RoleKey,
	raw []string,
) []authzDomain.Capability {
	known, unknown := u.catalog.FilterKnown(raw)
	if len(unknown) > 0 {
		slog.WarnContext(ctx, "dropping unknown capability identifiers from role",
			"tenant_id", tenantID,
			"role_key", key,
			"unknown", unknown,
		)
	}
	return known
}

// NewRoleUseCase creates a new RoleUseCase with the provided dependencies.
func NewRoleUseCase(
	customRoleRepo CustomRoleRepository,
	hashUseCase CapabilityHashUseCase,
	catalog authzDomain.Catalog,
) RoleUseCase {
	return &roleUseCase{
		customRoleRepo: customRoleRepo,
		hashUseCase:    hashUseCase,
		catalog:        catalog,
	}
}
