package domain

import (
	"github.com/allisson/authz/internal/errors"
)

// Tenant directory errors.
var (
	// ErrTenantNotFound indicates no tenant exists for the given slug or ID.
	// Resolver middleware treats this as "tenant unresolved", not a failure.
	ErrTenantNotFound = errors.Wrap(errors.ErrNotFound, "tenant not found")

	// ErrSlugTaken indicates the slug is already registered.
	ErrSlugTaken = errors.Wrap(errors.ErrConflict, "tenant slug already in use")
)
