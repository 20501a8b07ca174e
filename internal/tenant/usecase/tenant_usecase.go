// Package usecase implements business logic orchestration for the tenant
// directory.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	tenantDomain "github.com/allisson/authz/internal/tenant/domain"
)

// tenantUseCase implements TenantUseCase.
type tenantUseCase struct {
	tenantRepo TenantRepository
}

// Create registers a new tenant. The slug is stored as given; format checks
// happen at the transport boundary.
func (t *tenantUseCase) Create(
	ctx context.Context,
	input *tenantDomain.CreateTenantInput,
) (*tenantDomain.Tenant, error) {
	tenant := &tenantDomain.Tenant{
		ID:        uuid.Must(uuid.NewV7()),
		Slug:      input.Slug,
		Name:      input.Name,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}

	if err := t.tenantRepo.Create(ctx, tenant); err != nil {
		return nil, err
	}
	return tenant, nil
}

// Resolve maps a slug to its tenant. Inactive tenants resolve as not found so
// a deactivated tenant disappears from the request path without a separate
// check at every call site.
func (t *tenantUseCase) Resolve(ctx context.Context, slug string) (*tenantDomain.Tenant, error) {
	tenant, err := t.tenantRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !tenant.IsActive {
		return nil, tenantDomain.ErrTenantNotFound
	}
	return tenant, nil
}

// Get retrieves a tenant by ID.
func (t *tenantUseCase) Get(ctx context.Context, tenantID string) (*tenantDomain.Tenant, error) {
	return t.tenantRepo.Get(ctx, tenantID)
}

// NewTenantUseCase creates a new TenantUseCase with the provided dependencies.
func NewTenantUseCase(tenantRepo TenantRepository) TenantUseCase {
	return &tenantUseCase{tenantRepo: tenantRepo}
}
