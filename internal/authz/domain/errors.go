package domain

import (
	"github.com/allisson/authz/internal/errors"
)

// Authorization domain errors.
var (
	// ErrCustomRoleNotFound indicates a custom role with the specified key was
	// not found for the tenant.
	ErrCustomRoleNotFound = errors.Wrap(errors.ErrNotFound, "custom role not found")

	// ErrRoleKeyTaken indicates the role key collides with a built-in tier or
	// an existing custom role.
	ErrRoleKeyTaken = errors.Wrap(errors.ErrConflict, "role key already in use")

	// ErrSystemRoleImmutable indicates an attempt to modify or delete a
	// built-in tier or a system-flagged custom role.
	ErrSystemRoleImmutable = errors.Wrap(errors.ErrForbidden, "system role cannot be modified")

	// ErrMembershipNotFound indicates no membership binds the user to the tenant.
	ErrMembershipNotFound = errors.Wrap(errors.ErrNotFound, "membership not found")

	// ErrMembershipExists indicates the user already holds a membership in the
	// tenant.
	ErrMembershipExists = errors.Wrap(errors.ErrConflict, "membership already exists")

	// ErrRoleVersionNotFound indicates the tenant has no ledger entry yet.
	ErrRoleVersionNotFound = errors.Wrap(errors.ErrNotFound, "role version not found")

	// ErrInvalidCredential indicates a credential that failed signature or
	// expiry checks. Staleness is a separate condition (errors.ErrStaleCredential).
	ErrInvalidCredential = errors.Wrap(errors.ErrUnauthorized, "invalid credential")
)
