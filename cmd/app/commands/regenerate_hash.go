package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	authzDomain "github.com/allisson/authz/internal/authz/domain"
	authzUseCase "github.com/allisson/authz/internal/authz/usecase"
	tenantUseCase "github.com/allisson/authz/internal/tenant/usecase"
)

// RunRegenerateHash recomputes a tenant's capability fingerprint and appends a
// ledger entry when it changed. An unchanged fingerprint leaves the ledger
// untouched and reports the current head. Intended for operators recovering
// from a regeneration that failed after a role mutation committed.
//
// Requirements: Database must be migrated and accessible.
func RunRegenerateHash(
	ctx context.Context,
	tenants tenantUseCase.TenantUseCase,
	hashes authzUseCase.CapabilityHashUseCase,
	logger *slog.Logger,
	tenantSlug string,
	format string,
	io IOTuple,
) error {
	logger.Info("regenerating capability hash", slog.String("tenant_slug", tenantSlug))

	tenant, err := tenants.Resolve(ctx, tenantSlug)
	if err != nil {
		return fmt.Errorf("failed to resolve tenant %q: %w", tenantSlug, err)
	}

	version, err := hashes.Regenerate(ctx, tenant.ID)
	if err != nil {
		return fmt.Errorf("failed to regenerate capability hash: %w", err)
	}

	if format == "json" {
		outputJSON(io.Writer, map[string]any{
			"tenant_id":       version.TenantID.String(),
			"version":         version.Version,
			"capability_hash": version.CapabilityHash,
			"created_at":      version.CreatedAt,
		})
	} else {
		outputRoleVersionText(version, io.Writer)
	}

	logger.Info("capability hash regenerated",
		slog.String("tenant_id", version.TenantID.String()),
		slog.Int64("version", version.Version),
		slog.String("capability_hash", version.CapabilityHash),
	)

	return nil
}

// outputRoleVersionText outputs the result in human-readable text format.
func outputRoleVersionText(version *authzDomain.RoleVersion, writer io.Writer) {
	_, _ = fmt.Fprintln(writer, "\nCapability hash regenerated!")
	_, _ = fmt.Fprintf(writer, "Version: %d\n", version.Version)
	_, _ = fmt.Fprintf(writer, "Hash: %s\n", version.CapabilityHash)
	_, _ = fmt.Fprintf(writer, "Created at: %s\n", version.CreatedAt.Format("2006-01-02 15:04:05 MST"))
}
