// Package main provides the entry point for the application with CLI commands.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/allisson/authz/cmd/app/commands"
	"github.com/allisson/authz/internal/app"
	"github.com/allisson/authz/internal/config"
)

const version = "1.0.0"

// withContainer builds the DI container from the environment, runs fn with it,
// and shuts the container down afterwards.
func withContainer(ctx context.Context, fn func(ctx context.Context, container *app.Container) error) error {
	cfg := config.Load()
	container := app.NewContainer(cfg)
	logger := container.Logger()

	defer func() {
		if err := container.Shutdown(context.Background()); err != nil {
			logger.Error("failed to shutdown container", slog.Any("error", err))
		}
	}()

	return fn(ctx, container)
}

func main() {
	cmd := &cli.Command{
		Name:    "authz",
		Usage:   "Multi-tenant authorization service",
		Version: version,
		Commands: []*cli.Command{
			{
				Name:  "server",
				Usage: "Start the HTTP server",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunServer(ctx, version)
				},
			},
			{
				Name:  "migrate",
				Usage: "Run database migrations",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg := config.Load()
					container := app.NewContainer(cfg)
					return commands.RunMigrations(container.Logger(), cfg.DBDriver, cfg.DBConnectionString)
				},
			},
			{
				Name:  "create-tenant",
				Usage: "Register a new tenant",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "slug",
						Aliases:  []string{"s"},
						Required: true,
						Usage:    "Subdomain-safe tenant identifier",
					},
					&cli.StringFlag{
						Name:     "name",
						Aliases:  []string{"n"},
						Required: true,
						Usage:    "Human-readable tenant name",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "text",
						Usage:   "Output format: 'text' or 'json'",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withContainer(ctx, func(ctx context.Context, container *app.Container) error {
						tenantUseCase, err := container.TenantUseCase()
						if err != nil {
							return err
						}
						return commands.RunCreateTenant(
							ctx,
							tenantUseCase,
							container.Logger(),
							cmd.String("slug"),
							cmd.String("name"),
							cmd.String("format"),
							commands.DefaultIO(),
						)
					})
				},
			},
			{
				Name:  "create-role",
				Usage: "Create a custom role for a tenant",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "tenant",
						Aliases:  []string{"t"},
						Required: true,
						Usage:    "Tenant slug",
					},
					&cli.StringFlag{
						Name:     "key",
						Aliases:  []string{"k"},
						Required: true,
						Usage:    "Role key (e.g., worship_team)",
					},
					&cli.StringFlag{
						Name:     "name",
						Aliases:  []string{"n"},
						Required: true,
						Usage:    "Human-readable role name",
					},
					&cli.StringFlag{
						Name:     "capabilities",
						Aliases:  []string{"c"},
						Required: true,
						Usage:    "Comma-separated capability identifiers (e.g., 'schedule.read,media.upload')",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "text",
						Usage:   "Output format: 'text' or 'json'",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withContainer(ctx, func(ctx context.Context, container *app.Container) error {
						tenantUseCase, err := container.TenantUseCase()
						if err != nil {
							return err
						}
						roleUseCase, err := container.RoleUseCase()
						if err != nil {
							return err
						}
						return commands.RunCreateRole(
							ctx,
							tenantUseCase,
							roleUseCase,
							container.Logger(),
							cmd.String("tenant"),
							cmd.String("key"),
							cmd.String("name"),
							cmd.String("capabilities"),
							cmd.String("format"),
							commands.DefaultIO(),
						)
					})
				},
			},
			{
				Name:  "create-membership",
				Usage: "Bind a user to a tenant with a role",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "tenant",
						Aliases:  []string{"t"},
						Required: true,
						Usage:    "Tenant slug",
					},
					&cli.StringFlag{
						Name:     "user-id",
						Aliases:  []string{"u"},
						Required: true,
						Usage:    "User ID (UUID)",
					},
					&cli.StringFlag{
						Name:     "role",
						Aliases:  []string{"r"},
						Required: true,
						Usage:    "Role key (built-in tier or custom role)",
					},
					&cli.StringFlag{
						Name:    "override",
						Aliases: []string{"o"},
						Usage:   "Comma-separated capability override replacing the role's grants (empty value grants nothing)",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "text",
						Usage:   "Output format: 'text' or 'json'",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withContainer(ctx, func(ctx context.Context, container *app.Container) error {
						tenantUseCase, err := container.TenantUseCase()
						if err != nil {
							return err
						}
						membershipUseCase, err := container.MembershipUseCase()
						if err != nil {
							return err
						}
						return commands.RunCreateMembership(
							ctx,
							tenantUseCase,
							membershipUseCase,
							container.Logger(),
							cmd.String("tenant"),
							cmd.String("user-id"),
							cmd.String("role"),
							cmd.String("override"),
							cmd.IsSet("override"),
							cmd.String("format"),
							commands.DefaultIO(),
						)
					})
				},
			},
			{
				Name:  "regenerate-hash",
				Usage: "Recompute a tenant's capability fingerprint",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "tenant",
						Aliases:  []string{"t"},
						Required: true,
						Usage:    "Tenant slug",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "text",
						Usage:   "Output format: 'text' or 'json'",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withContainer(ctx, func(ctx context.Context, container *app.Container) error {
						tenantUseCase, err := container.TenantUseCase()
						if err != nil {
							return err
						}
						hashUseCase, err := container.CapabilityHashUseCase()
						if err != nil {
							return err
						}
						return commands.RunRegenerateHash(
							ctx,
							tenantUseCase,
							hashUseCase,
							container.Logger(),
							cmd.String("tenant"),
							cmd.String("format"),
							commands.DefaultIO(),
						)
					})
				},
			},
			{
				Name:  "issue-credential",
				Usage: "Mint a signed credential for a member",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "tenant",
						Aliases:  []string{"t"},
						Required: true,
						Usage:    "Tenant slug",
					},
					&cli.StringFlag{
						Name:     "user-id",
						Aliases:  []string{"u"},
						Required: true,
						Usage:    "User ID (UUID)",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "text",
						Usage:   "Output format: 'text' or 'json'",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withContainer(ctx, func(ctx context.Context, container *app.Container) error {
						tenantUseCase, err := container.TenantUseCase()
						if err != nil {
							return err
						}
						credentialUseCase, err := container.CredentialUseCase()
						if err != nil {
							return err
						}
						return commands.RunIssueCredential(
							ctx,
							tenantUseCase,
							credentialUseCase,
							container.Logger(),
							cmd.String("tenant"),
							cmd.String("user-id"),
							cmd.String("format"),
							commands.DefaultIO(),
						)
					})
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.Any("error", err))
		os.Exit(1)
	}
}
