package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	authzDomain "github.com/allisson/authz/internal/authz/domain"
	authzUseCase "github.com/allisson/authz/internal/authz/usecase"
	tenantUseCase "github.com/allisson/authz/internal/tenant/usecase"
)

// RunCreateRole creates a custom role for a tenant. The tenant is looked up by
// slug, capabilities are given as a comma-separated identifier list, and the
// tenant's capability fingerprint is regenerated as part of the creation.
//
// Requirements: Database must be migrated and accessible.
func RunCreateRole(
	ctx context.Context,
	tenants tenantUseCase.TenantUseCase,
	roles authzUseCase.RoleUseCase,
	logger *slog.Logger,
	tenantSlug string,
	key string,
	name string,
	capabilitiesCSV string,
	format string,
	io IOTuple,
) error {
	logger.Info("creating new custom role",
		slog.String("tenant_slug", tenantSlug),
		slog.String("key", key),
	)

	tenant, err := tenants.Resolve(ctx, tenantSlug)
	if err != nil {
		return fmt.Errorf("failed to resolve tenant %q: %w", tenantSlug, err)
	}

	capabilities := splitCapabilityList(capabilitiesCSV)
	if len(capabilities) == 0 {
		return fmt.Errorf("at least one capability is required")
	}

	input := &authzDomain.CreateCustomRoleInput{
		Key:          key,
		Name:         name,
		Capabilities: capabilities,
	}

	role, err := roles.Create(ctx, tenant.ID, input)
	if err != nil {
		return fmt.Errorf("failed to create role: %w", err)
	}

	if format == "json" {
		outputJSON(io.Writer, map[string]any{
			"role_id":      role.ID.String(),
			"tenant_id":    role.TenantID.String(),
			"key":          string(role.Key),
			"name":         role.Name,
			"capabilities": role.Capabilities,
		})
	} else {
		outputRoleText(role, io.Writer)
	}

	logger.Info("custom role created successfully",
		slog.String("role_id", role.ID.String()),
		slog.String("tenant_id", role.TenantID.String()),
		slog.String("key", string(role.Key)),
	)

	return nil
}

// outputRoleText outputs the result in human-readable text format.
func outputRoleText(role *authzDomain.CustomRole, writer io.Writer) {
	capabilities := make([]string, len(role.Capabilities))
	for i, capability := range role.Capabilities {
		capabilities[i] = string(capability)
	}

	_, _ = fmt.Fprintln(writer, "\nCustom role created successfully!")
	_, _ = fmt.Fprintf(writer, "Role ID: %s\n", role.ID.String())
	_, _ = fmt.Fprintf(writer, "Key: %s\n", role.Key)
	_, _ = fmt.Fprintf(writer, "Name: %s\n", role.Name)
	_, _ = fmt.Fprintf(writer, "Capabilities: %s\n", strings.Join(capabilities, ", "))
}
