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

// RunCreateMembership binds a user to a tenant with a role key and an optional
// capability override. hasOverride distinguishes "no override" from an
// explicit empty override, which is a valid grant set granting nothing.
//
// Requirements: Database must be migrated and accessible.
func RunCreateMembership(
	ctx context.Context,
	tenants tenantUseCase.TenantUseCase,
	memberships authzUseCase.MembershipUseCase,
	logger *slog.Logger,
	tenantSlug string,
	userID string,
	roleKey string,
	overrideCSV string,
	hasOverride bool,
	format string,
	io IOTuple,
) error {
	logger.Info("creating new membership",
		slog.String("tenant_slug", tenantSlug),
		slog.String("user_id", userID),
		slog.String("role_key", roleKey),
	)

	tenant, err := tenants.Resolve(ctx, tenantSlug)
	if err != nil {
		return fmt.Errorf("failed to resolve tenant %q: %w", tenantSlug, err)
	}

	parsedUserID, err := uuid.Parse(userID)
	if err != nil {
		return fmt.Errorf("invalid user ID %q: must be a valid UUID", userID)
	}

	input := &authzDomain.CreateMembershipInput{
		UserID:  parsedUserID,
		RoleKey: roleKey,
	}
	if hasOverride {
		input.CapabilityOverride = splitCapabilityList(overrideCSV)
		if input.CapabilityOverride == nil {
			input.CapabilityOverride = []string{}
		}
	}

	membership, err := memberships.Create(ctx, tenant.ID, input)
	if err != nil {
		return fmt.Errorf("failed to create membership: %w", err)
	}

	if format == "json" {
		result := map[string]any{
			"membership_id": membership.ID.String(),
			"tenant_id":     membership.TenantID.String(),
			"user_id":       membership.UserID.String(),
			"role_key":      string(membership.RoleKey),
		}
		if membership.HasOverride() {
			result["capability_override"] = membership.CapabilityOverride
		}
		outputJSON(io.Writer, result)
	} else {
		outputMembershipText(membership, io.Writer)
	}

	logger.Info("membership created successfully",
		slog.String("membership_id", membership.ID.String()),
		slog.String("tenant_id", membership.TenantID.String()),
		slog.String("user_id", membership.UserID.String()),
	)

	return nil
}

// outputMembershipText outputs the result in human-readable text format.
func outputMembershipText(membership *authzDomain.Membership, writer io.Writer) {
	_, _ = fmt.Fprintln(writer, "\nMembership created successfully!")
	_, _ = fmt.Fprintf(writer, "Membership ID: %s\n", membership.ID.String())
	_, _ = fmt.Fprintf(writer, "User ID: %s\n", membership.UserID.String())
	_, _ = fmt.Fprintf(writer, "Role: %s\n", membership.RoleKey)
	if membership.HasOverride() {
		_, _ = fmt.Fprintf(writer, "Capability override: %v\n", membership.CapabilityOverride)
	}
}
