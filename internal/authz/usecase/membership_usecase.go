package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	authzDomain "github.com/allisson/authz/internal/authz/domain"
)

// membershipUseCase implements MembershipUseCase.
type membershipUseCase struct {
	membershipRepo MembershipRepository
	customRoleRepo CustomRoleRepository
	catalog        authzDomain.Catalog
}

// Create binds a user to a tenant. The role key must name a built-in tier or
// an existing custom role; dangling keys are rejected at write time even
// though resolution would fail closed anyway. The capability override is
// stored as given and checked against the catalog when resolved.
func (u *membershipUseCase) Create(
	ctx context.Context,
	tenantID uuid.UUID,
	input *authzDomain.CreateMembershipInput,
) (*authzDomain.Membership, error) {
	key := authzDomain.RoleKey(input.RoleKey)
	if !u.catalog.IsBuiltin(key) {
		if _, err := u.customRoleRepo.GetByKey(ctx, tenantID, key); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	membership := &authzDomain.Membership{
		ID:                 uuid.Must(uuid.NewV7()),
		TenantID:           tenantID,
		UserID:             input.UserID,
		RoleKey:            key,
		CapabilityOverride: input.CapabilityOverride,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := u.membershipRepo.Create(ctx, membership); err != nil {
		return nil, err
	}
	return membership, nil
}

// Get retrieves the membership binding a user to a tenant.
func (u *membershipUseCase) Get(
	ctx context.Context,
	tenantID, userID uuid.UUID,
) (*authzDomain.Membership, error) {
	return u.membershipRepo.GetByUserAndTenant(ctx, tenantID, userID)
}

// NewMembershipUseCase creates a new MembershipUseCase with the provided dependencies.
func NewMembershipUseCase(
	membershipRepo MembershipRepository,
	customRoleRepo CustomRoleRepository,
	catalog authzDomain.Catalog,
) MembershipUseCase {
	return &membershipUseCase{
		membershipRepo: membershipRepo,
		customRoleRepo: customRoleRepo,
		catalog:        catalog,
	}
}
