package usecase

import (
	"context"
	"time"

	"github.com/allisson/authz/internal/metrics"
	tenantDomain "github.com/allisson/authz/internal/tenant/domain"
)

// tenantUseCaseWithMetrics decorates TenantUseCase with metrics instrumentation.
type tenantUseCaseWithMetrics struct {
	next    TenantUseCase
	metrics metrics.BusinessMetrics
}

// NewTenantUseCaseWithMetrics wraps a TenantUseCase with metrics recording.
func NewTenantUseCaseWithMetrics(useCase TenantUseCase, m metrics.BusinessMetrics) TenantUseCase {
	return &tenantUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Create records metrics for tenant registration operations.
func (t *tenantUseCaseWithMetrics) Create(
	ctx context.Context,
	input *tenantDomain.CreateTenantInput,
) (*tenantDomain.Tenant, error) {
	start := time.Now()
	tenant, err := t.next.Create(ctx, input)

	status := "success"
	if err != nil {
		status = "error"
	}

	t.metrics.RecordOperation(ctx, "tenant", "tenant_create", status)
	t.metrics.RecordDuration(ctx, "tenant", "tenant_create", time.Since(start), status)

	return tenant, err
}

// Resolve records metrics for slug resolution operations.
func (t *tenantUseCaseWithMetrics) Resolve(ctx context.Context, slug string) (*tenantDomain.Tenant, error) {
	start := time.Now()
	tenant, err := t.next.Resolve(ctx, slug)

	status := "success"
	if err != nil {
		status = "error"
	}

	t.metrics.RecordOperation(ctx, "tenant", "tenant_resolve", status)
	t.metrics.RecordDuration(ctx, "tenant", "tenant_resolve", time.Since(start), status)

	return tenant, err
}

// Get records metrics for tenant retrieval operations.
func (t *tenantUseCaseWithMetrics) Get(ctx context.Context, tenantID string) (*tenantDomain.Tenant, error) {
	start := time.Now()
	tenant, err := t.next.Get(ctx, tenantID)

	status := "success"
	if err != nil {
		status = "error"
	}

	t.metrics.RecordOperation(ctx, "tenant", "tenant_get", status)
	t.metrics.RecordDuration(ctx, "tenant", "tenant_get", time.Since(start), status)

	return tenant, err
}
