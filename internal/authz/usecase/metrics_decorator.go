package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	authzDomain "github.com/allisson/authz/internal/authz/domain"
	"github.com/allisson/authz/internal/metrics"
)

// roleUseCaseWithMetrics decorates RoleUseCase with metrics instrumentation.
type roleUseCaseWithMetrics struct {
	next    RoleUseCase
	metrics metrics.BusinessMetrics
}

// NewRoleUseCaseWithMetrics wraps a RoleUseCase with metrics recording.
func NewRoleUseCaseWithMetrics(useCase RoleUseCase, m metrics.BusinessMetrics) RoleUseCase {
	return &roleUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (r *roleUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	r.metrics.RecordOperation(ctx, "authz", operation, status)
	r.metrics.RecordDuration(ctx, "authz", operation, time.Since(start), status)
}

// Create records metrics for custom role creation operations.
func (r *roleUseCaseWithMetrics) Create(
	ctx context.Context,
	tenantID uuid.UUID,
	input *authzDomain.CreateCustomRoleInput,
) (*authzDomain.CustomRole, error) {
	start := time.Now()
	role, err := r.next.Create(ctx, tenantID, input)
	r.record(ctx, "role_create", start, err)
	return role, err
}

// Update records metrics for custom role update operations.
func (r *roleUseCaseWithMetrics) Update(
	ctx context.Context,
	tenantID uuid.UUID,
	key authzDomain.RoleKey,
	input *authzDomain.UpdateCustomRoleInput,
) (*authzDomain.CustomRole, error) {
	start := time.Now()
	role, err := r.next.Update(ctx, tenantID, key, input)
	r.record(ctx, "role_update", start, err)
	return role, err
}

// Delete records metrics for custom role deletion operations.
func (r *roleUseCaseWithMetrics) Delete(ctx context.Context, tenantID uuid.UUID, key authzDomain.RoleKey) error {
	start := time.Now()
	err := r.next.Delete(ctx, tenantID, key)
	r.record(ctx, "role_delete", start, err)
	return err
}

// Get records metrics for custom role retrieval operations.
func (r *roleUseCaseWithMetrics) Get(
	ctx context.Context,
	tenantID uuid.UUID,
	key authzDomain.RoleKey,
) (*authzDomain.CustomRole, error) {
	start := time.Now()
	role, err := r.next.Get(ctx, tenantID, key)
	r.record(ctx, "role_get", start, err)
	return role, err
}

// List records metrics for custom role listing operations.
func (r *roleUseCaseWithMetrics) List(ctx context.Context, tenantID uuid.UUID) ([]authzDomain.CustomRole, error) {
	start := time.Now()
	roles, err := r.next.List(ctx, tenantID)
	r.record(ctx, "role_list", start, err)
	return roles, err
}

// EffectiveCapabilities records metrics for capability resolution operations.
func (r *roleUseCaseWithMetrics) EffectiveCapabilities(
	ctx context.Context,
	membership *authzDomain.Membership,
) ([]authzDomain.Capability, error) {
	start := time.Now()
	capabilities, err := r.next.EffectiveCapabilities(ctx, membership)
	r.record(ctx, "capabilities_resolve", start, err)
	return capabilities, err
}

// capabilityHashUseCaseWithMetrics decorates CapabilityHashUseCase with
// metrics instrumentation.
type capabilityHashUseCaseWithMetrics struct {
	next    CapabilityHashUseCase
	metrics metrics.BusinessMetrics
}

// NewCapabilityHashUseCaseWithMetrics wraps a CapabilityHashUseCase with
// metrics recording.
func NewCapabilityHashUseCaseWithMetrics(useCase CapabilityHashUseCase, m metrics.BusinessMetrics) CapabilityHashUseCase {
	return &capabilityHashUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (c *capabilityHashUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	c.metrics.RecordOperation(ctx, "authz", operation, status)
	c.metrics.RecordDuration(ctx, "authz", operation, time.Since(start), status)
}

// Current records metrics for ledger head reads.
func (c *capabilityHashUseCaseWithMetrics) Current(
	ctx context.Context,
	tenantID uuid.UUID,
) (*authzDomain.RoleVersion, error) {
	start := time.Now()
	head, err := c.next.Current(ctx, tenantID)
	c.record(ctx, "hash_current", start, err)
	return head, err
}

// Compute records metrics for fingerprint computations.
func (c *capabilityHashUseCaseWithMetrics) Compute(ctx context.Context, tenantID uuid.UUID) (string, error) {
	start := time.Now()
	hash, err := c.next.Compute(ctx, tenantID)
	c.record(ctx, "hash_compute", start, err)
	return hash, err
}

// Regenerate records metrics for fingerprint regeneration operations.
func (c *capabilityHashUseCaseWithMetrics) Regenerate(
	ctx context.Context,
	tenantID uuid.UUID,
) (*authzDomain.RoleVersion, error) {
	start := time.Now()
	head, err := c.next.Regenerate(ctx, tenantID)
	c.record(ctx, "hash_regenerate", start, err)
	return head, err
}

// History records metrics for ledger history reads.
func (c *capabilityHashUseCaseWithMetrics) History(
	ctx context.Context,
	tenantID uuid.UUID,
	limit int,
) ([]authzDomain.RoleVersion, error) {
	start := time.Now()
	versions, err := c.next.History(ctx, tenantID, limit)
	c.record(ctx, "hash_history", start, err)
	return versions, err
}

// credentialUseCaseWithMetrics decorates CredentialUseCase with metrics
// instrumentation.
type credentialUseCaseWithMetrics struct {
	next    CredentialUseCase
	metrics metrics.BusinessMetrics
}

// NewCredentialUseCaseWithMetrics wraps a CredentialUseCase with metrics recording.
func NewCredentialUseCaseWithMetrics(useCase CredentialUseCase, m metrics.BusinessMetrics) CredentialUseCase {
	return &credentialUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (c *credentialUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	c.metrics.RecordOperation(ctx, "authz", operation, status)
	c.metrics.RecordDuration(ctx, "authz", operation, time.Since(start), status)
}

// Issue records metrics for credential issuance operations.
func (c *credentialUseCaseWithMetrics) Issue(
	ctx context.Context,
	input *authzDomain.IssueCredentialInput,
) (*authzDomain.IssueCredentialOutput, error) {
	start := time.Now()
	output, err := c.next.Issue(ctx, input)
	c.record(ctx, "credential_issue", start, err)
	return output, err
}

// Authenticate records metrics for credential validation operations.
func (c *credentialUseCaseWithMetrics) Authenticate(
	ctx context.Context,
	token string,
	tenantID uuid.UUID,
) (*authzDomain.CredentialClaims, error) {
	start := time.Now()
	claims, err := c.next.Authenticate(ctx, token, tenantID)
	c.record(ctx, "credential_authenticate", start, err)
	return claims, err
}

// membershipUseCaseWithMetrics decorates MembershipUseCase with metrics
// instrumentation.
type membershipUseCaseWithMetrics struct {
	next    MembershipUseCase
	metrics metrics.BusinessMetrics
}

// NewMembershipUseCaseWithMetrics wraps a MembershipUseCase with metrics recording.
func NewMembershipUseCaseWithMetrics(useCase MembershipUseCase, m metrics.BusinessMetrics) MembershipUseCase {
	return &membershipUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (c *membershipUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	c.metrics.RecordOperation(ctx, "authz", operation, status)
	c.metrics.RecordDuration(ctx, "authz", operation, time.Since(start), status)
}

// Create records metrics for membership creation operations.
func (c *membershipUseCaseWithMetrics) Create(
	ctx context.Context,
	tenantID uuid.UUID,
	input *authzDomain.CreateMembershipInput,
) (*authzDomain.Membership, error) {
	start := time.Now()
	membership, err := c.next.Create(ctx, tenantID, input)
	c.record(ctx, "membership_create", start, err)
	return membership, err
}

// Get records metrics for membership retrieval operations.
func (c *membershipUseCaseWithMetrics) Get(
	ctx context.Context,
	tenantID, userID uuid.UUID,
) (*authzDomain.Membership, error) {
	start := time.Now()
	membership, err := c.next.Get(ctx, tenantID, userID)
	c.record(ctx, "membership_get", start, err)
	return membership, err
}
