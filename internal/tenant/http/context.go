// Package http provides tenant resolution middleware for HTTP requests.
package http

import (
	"context"

	tenantDomain "github.com/allisson/authz/internal/tenant/domain"
)

// tenantKey is a context key type for storing resolved tenants.
type tenantKey struct{}

// WithTenant stores a resolved tenant in the context.
// This is called by the tenant resolver middleware after a successful lookup.
func WithTenant(ctx context.Context, tenant *tenantDomain.Tenant) context.Context {
	return context.WithValue(ctx, tenantKey{}, tenant)
}

// GetTenant retrieves the resolved tenant from the context.
// Returns (tenant, true) if a tenant is present, or (nil, false) if the
// request arrived without a resolvable tenant.
func GetTenant(ctx context.Context) (*tenantDomain.Tenant, bool) {
	tenant, ok := ctx.Value(tenantKey{}).(*tenantDomain.Tenant)
	return tenant, ok
}
