// Package usecase defines business logic interfaces for the tenant directory.
package usecase

import (
	"context"

	tenantDomain "github.com/allisson/authz/internal/tenant/domain"
)

// TenantRepository defines persistence operations for tenants.
// Implementations must support transaction-aware operations via context propagation.
type TenantRepository interface {
	// Create stores a new tenant in the repository.
	Create(ctx context.Context, tenant *tenantDomain.Tenant) error

	// GetBySlug retrieves a tenant by slug. Returns ErrTenantNotFound if not found.
	GetBySlug(ctx context.Context, slug string) (*tenantDomain.Tenant, error)

	// Get retrieves a tenant by ID. Returns ErrTenantNotFound if not found.
	Get(ctx context.Context, tenantID string) (*tenantDomain.Tenant, error)
}

// TenantUseCase defines business logic operations for the tenant directory.
type TenantUseCase interface {
	// Create registers a new tenant. Returns ErrSlugTaken if the slug is
	// already registered.
	Create(ctx context.Context, input *tenantDomain.CreateTenantInput) (*tenantDomain.Tenant, error)

	// Resolve maps a slug to its tenant. Returns ErrTenantNotFound if no
	// tenant owns the slug or the tenant is inactive.
	Resolve(ctx context.Context, slug string) (*tenantDomain.Tenant, error)

	// Get retrieves a tenant by ID. Returns ErrTenantNotFound if not found.
	Get(ctx context.Context, tenantID string) (*tenantDomain.Tenant, error)
}
