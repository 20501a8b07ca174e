package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	authzDomain "github.com/allisson/authz/internal/authz/domain"
	authzUseCase "github.com/allisson/authz/internal/authz/usecase"
	tenantUseCase "github.com/allisson/authz/internal/tenant/usecase"
)

// RunIssueCredential mints a signed credential for a member of a tenant,
// embedding the member's resolved capabilities and the tenant's current
// capability fingerprint. Useful for smoke-testing a deployment without going
// through the HTTP surface.
//
// Requirements: Database must be migrated and accessible.
func RunIssueCredential(
	ctx context.Context,
	tenants tenantUseCase.TenantUseCase,
	credentials authzUseCase.CredentialUseCase,
	logger *slog.Logger,
	tenantSlug string,
	userID string,
	format string,
	io IOTuple,
) error {
	logger.Info("issuing credential",
		slog.String("tenant_slug", tenantSlug),
		slog.String("user_id", userID),
	)

	tenant, err := tenants.Resolve(ctx, tenantSlug)
	if err != nil {
		return fmt.Errorf("failed to resolve tenant %q: %w", tenantSlug, err)
	}

	parsedUserID, err := uuid.Parse(userID)
	if err != nil {
		return fmt.Errorf("invalid user ID %q: must be a valid UUID", userID)
	}

	output, err := credentials.Issue(ctx, &authzDomain.IssueCredentialInput{
		UserID:   parsedUserID,
		TenantID: tenant.ID,
	})
	if err != nil {
		return fmt.Errorf("failed to issue credential: %w", err)
	}

	if format == "json" {
		outputJSON(io.Writer, map[string]any{
			"token":           output.Token,
			"role_key":        string(output.Claims.RoleKey),
			"capability_hash": output.Claims.CapabilityHash,
			"capabilities":    output.Claims.Capabilities,
			"expires_at":      output.Claims.ExpiresAt,
		})
	} else {
		outputCredentialText(output, io.Writer)
	}

	logger.Info("credential issued successfully",
		slog.String("tenant_id", tenant.ID.String()),
		slog.String("user_id", userID),
		slog.String("capability_hash", output.Claims.CapabilityHash),
	)

	return nil
}

// outputCredentialText outputs the result in human-readable text format.
func outputCredentialText(output *authzDomain.IssueCredentialOutput, writer io.Writer) {
	_, _ = fmt.Fprintln(writer, "\nCredential issued successfully!")
	_, _ = fmt.Fprintf(writer, "Token: %s\n", output.Token)
	_, _ = fmt.Fprintf(writer, "Role: %s\n", output.Claims.RoleKey)
	_, _ = fmt.Fprintf(writer, "Capability hash: %s\n", output.Claims.CapabilityHash)
	_, _ = fmt.Fprintf(writer, "Expires at: %s\n", output.Claims.ExpiresAt.Format("2006-01-02 15:04:05 MST"))
}
