package usecase

import (
	"context"

	"github.com/google/uuid"

	authzDomain "github.com/allisson/authz/internal/authz/domain"
	authzService "github.com/allisson/authz/internal/authz/service"
	"github.com/allisson/authz/internal/config"
	apperrors "github.com/allisson/authz/internal/errors"
)

// credentialUseCase implements CredentialUseCase.
type credentialUseCase struct {
	config            *config.Config
	membershipRepo    MembershipRepository
	roleUseCase       RoleUseCase
	hashUseCase       CapabilityHashUseCase
	credentialService authzService.CredentialService
}

// Issue mints a signed credential for a member.
//
// The credential embeds the member's resolved capability set and the tenant's
// current fingerprint at mint time. It is immutable: later permission-model
// changes never rewrite it, they invalidate it through the fingerprint check.
func (u *credentialUseCase) Issue(
	ctx context.Context,
	input *authzDomain.IssueCredentialInput,
) (*authzDomain.IssueCredentialOutput, error) {
	membership, err := u.membershipRepo.GetByUserAndTenant(ctx, input.TenantID, input.UserID)
	if err != nil {
		return nil, err
	}

	capabilities, err := u.roleUseCase.EffectiveCapabilities(ctx, membership)
	if err != nil {
		return nil, err
	}

	head, err := u.hashUseCase.Current(ctx, input.TenantID)
	if err != nil {
		return nil, err
	}

	now := authzService.Now()
	claims := &authzDomain.CredentialClaims{
		UserID:         input.UserID,
		TenantID:       input.TenantID,
		RoleKey:        membership.RoleKey,
		CapabilityHash: head.CapabilityHash,
		Capabilities:   capabilities,
		IssuedAt:       now,
		ExpiresAt:      now.Add(u.config.CredentialExpiration),
	}

	token, err := u.credentialService.Sign(claims)
	if err != nil {
		return nil, err
	}

	return &authzDomain.IssueCredentialOutput{
		Token:  token,
		Claims: claims,
	}, nil
}

// Authenticate verifies a credential end to end against the tenant the
// request resolved to.
//
// Signature and expiry failures surface as ErrInvalidCredential, as does a
// credential minted for a different tenant: credentials are scoped to the
// tenant they were issued under and carry no authority anywhere else. A
// credential that verifies but carries a fingerprint older than the tenant's
// ledger head surfaces as ErrStaleCredential: the permission model moved on
// and the holder must re-authenticate. The fresh-path cost is one ledger
// head read.
func (u *credentialUseCase) Authenticate(
	ctx context.Context,
	token string,
	tenantID uuid.UUID,
) (*authzDomain.CredentialClaims, error) {
	claims, err := u.credentialService.Parse(token)
	if err != nil {
		return nil, err
	}

	if claims.TenantID != tenantID {
		return nil, apperrors.Wrap(authzDomain.ErrInvalidCredential, "credential tenant mismatch")
	}

	head, err := u.hashUseCase.Current(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	if claims.CapabilityHash != head.CapabilityHash {
		return nil, apperrors.Wrap(apperrors.ErrStaleCredential, "credential fingerprint superseded")
	}

	return claims, nil
}

// NewCredentialUseCase creates a new CredentialUseCase with the provided dependencies.
func NewCredentialUseCase(
	cfg *config.Config,
	membershipRepo MembershipRepository,
	roleUseCase RoleUseCase,
	hashUseCase CapabilityHashUseCase,
	credentialService authzService.CredentialService,
) CredentialUseCase {
	return &credentialUseCase{
		config:            cfg,
		membershipRepo:    membershipRepo,
		roleUseCase:       roleUseCase,
		hashUseCase:       hashUseCase,
		credentialService: credentialService,
	}
}
