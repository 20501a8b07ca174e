package commands

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	authzDomain "github.com/allisson/authz/internal/authz/domain"
	tenantDomain "github.com/allisson/authz/internal/tenant/domain"
)

func TestRunCreateRole(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()
	tenantID := uuid.Must(uuid.NewV7())
	tenant := &tenantDomain.Tenant{
		ID:       tenantID,
		Slug:     "gracechurch",
		Name:     "Grace Church",
		IsActive: true,
	}

	t.Run("text", func(t *testing.T) {
		mockTenants := &mockTenantUseCase{}
		mockRoles := &mockRoleUseCase{}
		roleID := uuid.Must(uuid.NewV7())
		input := &authzDomain.CreateCustomRoleInput{
			Key:          "worship_team",
			Name:         "Worship Team",
			Capabilities: []string{"schedule.read", "media.upload"},
		}
		role := &authzDomain.CustomRole{
			ID:           roleID,
			TenantID:     tenantID,
			Key:          "worship_team",
			Name:         "Worship Team",
			Capabilities: []authzDomain.Capability{"media.upload", "schedule.read"},
		}

		mockTenants.On("Resolve", ctx, "gracechurch").Return(tenant, nil)
		mockRoles.On("Create", ctx, tenantID, input).Return(role, nil)

		var out bytes.Buffer
		io := IOTuple{Writer: &out}

		err := RunCreateRole(
			ctx,
			mockTenants,
			mockRoles,
			logger,
			"gracechurch",
			"worship_team",
			"Worship Team",
			"schedule.read, media.upload",
			"text",
			io,
		)

		require.NoError(t, err)
		require.Contains(t, out.String(), roleID.String())
		require.Contains(t, out.String(), "worship_team")
		require.Contains(t, out.String(), "media.upload, schedule.read")
		mockTenants.AssertExpectations(t)
		mockRoles.AssertExpectations(t)
	})

	t.Run("empty-capabilities", func(t *testing.T) {
		mockTenants := &mockTenantUseCase{}
		mockRoles := &mockRoleUseCase{}

		mockTenants.On("Resolve", ctx, "gracechurch").Return(tenant, nil)

		io := IOTuple{Writer: &bytes.Buffer{}}

		err := RunCreateRole(ctx, mockTenants, mockRoles, logger, "gracechurch", "worship_team", "Worship Team", " , ", "text", io)

		require.Error(t, err)
		require.Contains(t, err.Error(), "at least one capability is required")
		mockRoles.AssertNotCalled(t, "Create")
	})

	t.Run("unknown-tenant", func(t *testing.T) {
		mockTenants := &mockTenantUseCase{}
		mockRoles := &mockRoleUseCase{}

		mockTenants.On("Resolve", ctx, "nochurch").Return(nil, tenantDomain.ErrTenantNotFound)

		io := IOTuple{Writer: &bytes.Buffer{}}

		err := RunCreateRole(ctx, mockTenants, mockRoles, logger, "nochurch", "worship_team", "Worship Team", "schedule.read", "text", io)

		require.Error(t, err)
		require.ErrorIs(t, err, tenantDomain.ErrTenantNotFound)
		mockRoles.AssertNotCalled(t, "Create")
	})
}
