package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	authzDomain "github.com/allisson/authz/internal/authz/domain"
	authzService "github.com/allisson/authz/internal/authz/service"
	"github.com/allisson/authz/internal/config"
	apperrors "github.com/allisson/authz/internal/errors"
)

// mockMembershipRepository is a mock implementation of MembershipRepository for testing.
type mockMembershipRepository struct {
	mock.Mock
}

func (m *mockMembershipRepository) Create(ctx context.Context, membership *authzDomain.Membership) error {
	args := m.Called(ctx, membership)
	return args.Error(0)
}

func (m *mockMembershipRepository) GetByUserAndTenant(
	ctx context.Context,
	tenantID, userID uuid.UUID,
) (*authzDomain.Membership, error) {
	args := m.Called(ctx, tenantID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authzDomain.Membership), args.Error(1)
}

func testCredentialConfig() *config.Config {
	return &config.Config{
		CredentialSigningKey: "test-signing-key",
		CredentialExpiration: 4 * time.Hour,
	}
}

func TestCredentialUseCase_Issue(t *testing.T) {
	ctx := context.Background()
	catalog := authzDomain.DefaultCatalog()
	tenantID := uuid.Must(uuid.NewV7())
	userID := uuid.Must(uuid.NewV7())

	t.Run("Success_IssueEmbedsCapabilitiesAndFingerprint", func(t *testing.T) {
		mockMemberships := &mockMembershipRepository{}
		mockHash := &mockCapabilityHashUseCase{}

		membership := &authzDomain.Membership{
			TenantID: tenantID,
			UserID:   userID,
			RoleKey:  authzDomain.RoleMember,
		}
		mockMemberships.On("GetByUserAndTenant", ctx, tenantID, userID).
			Return(membership, nil).
			Once()
		mockHash.On("Current", ctx, tenantID).
			Return(&authzDomain.RoleVersion{Version: 3, CapabilityHash: "current-hash"}, nil).
			Once()

		roleUC := NewRoleUseCase(&mockCustomRoleRepository{}, mockHash, catalog)
		credentialService := authzService.NewCredentialService("test-signing-key")
		uc := NewCredentialUseCase(testCredentialConfig(), mockMemberships, roleUC, mockHash, credentialService)

		output, err := uc.Issue(ctx, &authzDomain.IssueCredentialInput{
			UserID:   userID,
			TenantID: tenantID,
		})
		require.NoError(t, err)
		require.NotEmpty(t, output.Token)

		wantCapabilities, _ := catalog.BuiltinGrants(authzDomain.RoleMember)
		assert.Equal(t, "current-hash", output.Claims.CapabilityHash)
		assert.Equal(t, wantCapabilities, output.Claims.Capabilities)
		assert.Equal(t, authzDomain.RoleMember, output.Claims.RoleKey)
		assert.True(t, output.Claims.ExpiresAt.After(output.Claims.IssuedAt))

		// The signed token round-trips to the same claims.
		parsed, err := credentialService.Parse(output.Token)
		require.NoError(t, err)
		assert.Equal(t, output.Claims.CapabilityHash, parsed.CapabilityHash)
		assert.Equal(t, output.Claims.Capabilities, parsed.Capabilities)
	})

	t.Run("Error_NoMembership", func(t *testing.T) {
		mockMemberships := &mockMembershipRepository{}
		mockMemberships.On("GetByUserAndTenant", ctx, tenantID, userID).
			Return(nil, authzDomain.ErrMembershipNotFound).
			Once()

		mockHash := &mockCapabilityHashUseCase{}
		roleUC := NewRoleUseCase(&mockCustomRoleRepository{}, mockHash, catalog)
		uc := NewCredentialUseCase(
			testCredentialConfig(),
			mockMemberships,
			roleUC,
			mockHash,
			authzService.NewCredentialService("test-signing-key"),
		)

		output, err := uc.Issue(ctx, &authzDomain.IssueCredentialInput{UserID: userID, TenantID: tenantID})

		assert.Nil(t, output)
		assert.ErrorIs(t, err, authzDomain.ErrMembershipNotFound)
	})
}

func TestCredentialUseCase_Authenticate(t *testing.T) {
	ctx := context.Background()
	catalog := authzDomain.DefaultCatalog()
	tenantID := uuid.Must(uuid.NewV7())
	userID := uuid.Must(uuid.NewV7())

	signToken := func(t *testing.T, capabilityHash string) string {
		t.Helper()

		now := authzService.Now()
		token, err := authzService.NewCredentialService("test-signing-key").Sign(&authzDomain.CredentialClaims{
			UserID:         userID,
			TenantID:       tenantID,
			RoleKey:        authzDomain.RoleMember,
			CapabilityHash: capabilityHash,
			Capabilities:   []authzDomain.Capability{authzDomain.ScheduleRead},
			IssuedAt:       now,
			ExpiresAt:      now.Add(time.Hour),
		})
		require.NoError(t, err)
		return token
	}

	newUseCase := func(mockHash *mockCapabilityHashUseCase) CredentialUseCase {
		roleUC := NewRoleUseCase(&mockCustomRoleRepository{}, mockHash, catalog)
		return NewCredentialUseCase(
			testCredentialConfig(),
			&mockMembershipRepository{},
			roleUC,
			mockHash,
			authzService.NewCredentialService("test-signing-key"),
		)
	}

	t.Run("Success_FreshCredential", func(t *testing.T) {
		mockHash := &mockCapabilityHashUseCase{}
		mockHash.On("Current", ctx, tenantID).
			Return(&authzDomain.RoleVersion{Version: 1, CapabilityHash: "hash-v1"}, nil).
			Once()

		claims, err := newUseCase(mockHash).Authenticate(ctx, signToken(t, "hash-v1"), tenantID)

		require.NoError(t, err)
		assert.Equal(t, userID, claims.UserID)
		assert.Equal(t, "hash-v1", claims.CapabilityHash)
	})

	t.Run("Error_StaleFingerprint", func(t *testing.T) {
		mockHash := &mockCapabilityHashUseCase{}
		mockHash.On("Current", ctx, tenantID).
			Return(&authzDomain.RoleVersion{Version: 2, CapabilityHash: "hash-v2"}, nil).
			Once()

		claims, err := newUseCase(mockHash).Authenticate(ctx, signToken(t, "hash-v1"), tenantID)

		assert.Nil(t, claims)
		assert.ErrorIs(t, err, apperrors.ErrStaleCredential)
		assert.NotErrorIs(t, err, apperrors.ErrUnauthorized)
	})

	t.Run("Error_TenantMismatch", func(t *testing.T) {
		// A credential minted for one tenant is rejected on another tenant's
		// requests before any ledger read: the signature verifies, but the
		// tenant binding does not.
		otherTenantID := uuid.Must(uuid.NewV7())
		mockHash := &mockCapabilityHashUseCase{}

		claims, err := newUseCase(mockHash).Authenticate(ctx, signToken(t, "hash-v1"), otherTenantID)

		assert.Nil(t, claims)
		assert.ErrorIs(t, err, authzDomain.ErrInvalidCredential)
		assert.NotErrorIs(t, err, apperrors.ErrStaleCredential)
		mockHash.AssertNotCalled(t, "Current")
	})

	t.Run("Error_GarbageToken", func(t *testing.T) {
		claims, err := newUseCase(&mockCapabilityHashUseCase{}).Authenticate(ctx, "not-a-token", tenantID)

		assert.Nil(t, claims)
		assert.ErrorIs(t, err, authzDomain.ErrInvalidCredential)
	})
}

// TestCredentialLifecycle_StaleAfterRoleChange drives the full path with real
// collaborators: issue a credential, change the tenant's role map, regenerate,
// and watch the credential flip from valid to stale.
func TestCredentialLifecycle_StaleAfterRoleChange(t *testing.T) {
	ctx := context.Background()
	catalog := authzDomain.DefaultCatalog()

	fixture := newHashFixture(t, 0)
	tenantID := fixture.tenantID
	userID := uuid.Must(uuid.NewV7())

	roleRepo := fixture.roleRepo
	roleUC := NewRoleUseCase(roleRepo, fixture.useCase, catalog)
	membershipRepo := newMemoryMembershipRepository()
	membershipUC := NewMembershipUseCase(membershipRepo, roleRepo, catalog)

	membership, err := membershipUC.Create(ctx, tenantID, &authzDomain.CreateMembershipInput{
		UserID:  userID,
		RoleKey: string(authzDomain.RoleLeader),
	})
	require.NoError(t, err)
	require.NotNil(t, membership)

	credentialUC := NewCredentialUseCase(
		testCredentialConfig(),
		membershipRepo,
		roleUC,
		fixture.useCase,
		authzService.NewCredentialService("test-signing-key"),
	)

	// Issue under version 1.
	output, err := credentialUC.Issue(ctx, &authzDomain.IssueCredentialInput{
		UserID:   userID,
		TenantID: tenantID,
	})
	require.NoError(t, err)

	// The fresh credential authenticates.
	claims, err := credentialUC.Authenticate(ctx, output.Token, tenantID)
	require.NoError(t, err)
	assert.Equal(t, output.Claims.CapabilityHash, claims.CapabilityHash)

	// A role change regenerates the fingerprint (version 2).
	_, err = roleUC.Create(ctx, tenantID, &authzDomain.CreateCustomRoleInput{
		Key:          "usher",
		Name:         "Usher",
		Capabilities: []string{"schedule.read"},
	})
	require.NoError(t, err)

	// The old credential is now stale; its claims never changed server-side.
	claims, err = credentialUC.Authenticate(ctx, output.Token, tenantID)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, apperrors.ErrStaleCredential)

	// Re-authentication mints a credential under the new fingerprint.
	refreshed, err := credentialUC.Issue(ctx, &authzDomain.IssueCredentialInput{
		UserID:   userID,
		TenantID: tenantID,
	})
	require.NoError(t, err)
	assert.NotEqual(t, output.Claims.CapabilityHash, refreshed.Claims.CapabilityHash)

	_, err = credentialUC.Authenticate(ctx, refreshed.Token, tenantID)
	assert.NoError(t, err)
}
