package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	tenantDomain "github.com/allisson/authz/internal/tenant/domain"
	tenantUseCase "github.com/allisson/authz/internal/tenant/usecase"
)

// RunCreateTenant registers a new tenant in the directory. Outputs the tenant
// ID and slug in either text or JSON format.
//
// Requirements: Database must be migrated and accessible.
func RunCreateTenant(
	ctx context.Context,
	useCase tenantUseCase.TenantUseCase,
	logger *slog.Logger,
	slug string,
	name string,
	format string,
	io IOTuple,
) error {
	logger.Info("creating new tenant", slog.String("slug", slug))

	input := &tenantDomain.CreateTenantInput{
		Slug: slug,
		Name: name,
	}

	tenant, err := useCase.Create(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to create tenant: %w", err)
	}

	if format == "json" {
		outputJSON(io.Writer, map[string]string{
			"tenant_id": tenant.ID.String(),
			"slug":      tenant.Slug,
			"name":      tenant.Name,
		})
	} else {
		outputTenantText(tenant, io.Writer)
	}

	logger.Info("tenant created successfully",
		slog.String("tenant_id", tenant.ID.String()),
		slog.String("slug", tenant.Slug),
	)

	return nil
}

// outputTenantText outputs the result in human-readable text format.
func outputTenantText(tenant *tenantDomain.Tenant, writer io.Writer) {
	_, _ = fmt.Fprintln(writer, "\nTenant created successfully!")
	_, _ = fmt.Fprintf(writer, "Tenant ID: %s\n", tenant.ID.String())
	_, _ = fmt.Fprintf(writer, "Slug: %s\n", tenant.Slug)
	_, _ = fmt.Fprintf(writer, "Name: %s\n", tenant.Name)
}
