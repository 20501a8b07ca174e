// Package domain defines the tenant directory model. A tenant is identified
// externally by a URL-safe slug (subdomain or explicit header) and internally
// by a UUID.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Tenant is an entry in the tenant directory.
type Tenant struct {
	ID        uuid.UUID
	Slug      string
	Name      string
	IsActive  bool
	CreatedAt time.Time
}

// CreateTenantInput contains the parameters for registering a tenant.
type CreateTenantInput struct {
	Slug string
	Name string
}
