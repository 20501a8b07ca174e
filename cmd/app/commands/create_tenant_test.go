package commands

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/authz/internal/errors"
	tenantDomain "github.com/allisson/authz/internal/tenant/domain"
)

func TestRunCreateTenant(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()
	tenantID := uuid.Must(uuid.NewV7())

	t.Run("text", func(t *testing.T) {
		mockUseCase := &mockTenantUseCase{}
		input := &tenantDomain.CreateTenantInput{
			Slug: "gracechurch",
			Name: "Grace Church",
		}
		tenant := &tenantDomain.Tenant{
			ID:        tenantID,
			Slug:      "gracechurch",
			Name:      "Grace Church",
			IsActive:  true,
			CreatedAt: time.Now(),
		}

		mockUseCase.On("Create", ctx, input).Return(tenant, nil)

		var out bytes.Buffer
		io := IOTuple{Writer: &out}

		err := RunCreateTenant(ctx, mockUseCase, logger, "gracechurch", "Grace Church", "text", io)

		require.NoError(t, err)
		require.Contains(t, out.String(), tenantID.String())
		require.Contains(t, out.String(), "gracechurch")
		mockUseCase.AssertExpectations(t)
	})

	t.Run("json", func(t *testing.T) {
		mockUseCase := &mockTenantUseCase{}
		tenant := &tenantDomain.Tenant{
			ID:       tenantID,
			Slug:     "gracechurch",
			Name:     "Grace Church",
			IsActive: true,
		}

		mockUseCase.On("Create", ctx, &tenantDomain.CreateTenantInput{
			Slug: "gracechurch",
			Name: "Grace Church",
		}).Return(tenant, nil)

		var out bytes.Buffer
		io := IOTuple{Writer: &out}

		err := RunCreateTenant(ctx, mockUseCase, logger, "gracechurch", "Grace Church", "json", io)

		require.NoError(t, err)
		require.Contains(t, out.String(), tenantID.String())
		require.Contains(t, out.String(), "{") // Should be JSON
		mockUseCase.AssertExpectations(t)
	})

	t.Run("slug-taken", func(t *testing.T) {
		mockUseCase := &mockTenantUseCase{}
		mockUseCase.On("Create", ctx, &tenantDomain.CreateTenantInput{
			Slug: "gracechurch",
			Name: "Grace Church",
		}).Return(nil, tenantDomain.ErrSlugTaken)

		io := IOTuple{Writer: &bytes.Buffer{}}

		err := RunCreateTenant(ctx, mockUseCase, logger, "gracechurch", "Grace Church", "text", io)

		require.Error(t, err)
		require.ErrorIs(t, err, apperrors.ErrConflict)
		mockUseCase.AssertExpectations(t)
	})
}
