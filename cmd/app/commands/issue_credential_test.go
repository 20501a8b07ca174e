package commands

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	authzDomain "github.com/allisson/authz/internal/authz/domain"
	tenantDomain "github.com/allisson/authz/internal/tenant/domain"
)

func TestRunIssueCredential(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()
	tenantID := uuid.Must(uuid.NewV7())
	userID := uuid.Must(uuid.NewV7())
	tenant := &tenantDomain.Tenant{
		ID:       tenantID,
		Slug:     "gracechurch",
		IsActive: true,
	}

	t.Run("text", func(t *testing.T) {
		mockTenants := &mockTenantUseCase{}
		mockCredentials := &mockCredentialUseCase{}
		input := &authzDomain.IssueCredentialInput{
			UserID:   userID,
			TenantID: tenantID,
		}
		output := &authzDomain.IssueCredentialOutput{
			Token: "signed-token",
			Claims: &authzDomain.CredentialClaims{
				UserID:         userID,
				TenantID:       tenantID,
				RoleKey:        authzDomain.RoleMember,
				CapabilityHash: "a1b2c3",
				Capabilities:   []authzDomain.Capability{"chat.read", "schedule.read"},
				IssuedAt:       time.Now(),
				ExpiresAt:      time.Now().Add(4 * time.Hour),
			},
		}

		mockTenants.On("Resolve", ctx, "gracechurch").Return(tenant, nil)
		mockCredentials.On("Issue", ctx, input).Return(output, nil)

		var out bytes.Buffer
		io := IOTuple{Writer: &out}

		err := RunIssueCredential(ctx, mockTenants, mockCredentials, logger, "gracechurch", userID.String(), "text", io)

		require.NoError(t, err)
		require.Contains(t, out.String(), "signed-token")
		require.Contains(t, out.String(), "a1b2c3")
		mockCredentials.AssertExpectations(t)
	})

	t.Run("invalid-user-id", func(t *testing.T) {
		mockTenants := &mockTenantUseCase{}
		mockCredentials := &mockCredentialUseCase{}

		mockTenants.On("Resolve", ctx, "gracechurch").Return(tenant, nil)

		io := IOTuple{Writer: &bytes.Buffer{}}

		err := RunIssueCredential(ctx, mockTenants, mockCredentials, logger, "gracechurch", "not-a-uuid", "text", io)

		require.Error(t, err)
		require.Contains(t, err.Error(), "must be a valid UUID")
		mockCredentials.AssertNotCalled(t, "Issue")
	})

	t.Run("no-membership", func(t *testing.T) {
		mockTenants := &mockTenantUseCase{}
		mockCredentials := &mockCredentialUseCase{}

		mockTenants.On("Resolve", ctx, "gracechurch").Return(tenant, nil)
		mockCredentials.On("Issue", ctx, &authzDomain.IssueCredentialInput{
			UserID:   userID,
			TenantID: tenantID,
		}).Return(nil, authzDomain.ErrMembershipNotFound)

		io := IOTuple{Writer: &bytes.Buffer{}}

		err := RunIssueCredential(ctx, mockTenants, mockCredentials, logger, "gracechurch", userID.String(), "text", io)

		require.Error(t, err)
		require.ErrorIs(t, err, authzDomain.ErrMembershipNotFound)
		mockCredentials.AssertExpectations(t)
	})
}
