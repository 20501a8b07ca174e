// Package repository implements tenant directory persistence.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/allisson/authz/internal/database"
	apperrors "github.com/allisson/authz/internal/errors"
	tenantDomain "github.com/allisson/authz/internal/tenant/domain"
)

// PostgreSQLTenantRepository implements tenant persistence for PostgreSQL.
// Uses native UUID types with transaction support via database.GetTx().
type PostgreSQLTenantRepository struct {
	db *sql.DB
}

// Create inserts a new tenant into the PostgreSQL database.
// Returns ErrSlugTaken if the slug is already registered.
func (r *PostgreSQLTenantRepository) Create(ctx context.Context, tenant *tenantDomain.Tenant) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO tenants (id, slug, name, is_active, created_at)
			  VALUES ($1, $2, $3, $4, $5)`

	_, err := querier.ExecContext(
		ctx,
		query,
		tenant.ID,
		tenant.Slug,
		tenant.Name,
		tenant.IsActive,
		tenant.CreatedAt,
	)
	if err != nil {
		if isPostgreSQLUniqueViolation(err) {
			return tenantDomain.ErrSlugTaken
		}
		return apperrors.Wrap(err, "failed to create tenant")
	}
	return nil
}

// GetBySlug retrieves a tenant by its slug.
// Returns ErrTenantNotFound if no tenant matches.
func (r *PostgreSQLTenantRepository) GetBySlug(ctx context.Context, slug string) (*tenantDomain.Tenant, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, slug, name, is_active, created_at FROM tenants WHERE slug = $1`

	var tenant tenantDomain.Tenant
	err := querier.QueryRowContext(ctx, query, slug).Scan(
		&tenant.ID,
		&tenant.Slug,
		&tenant.Name,
		&tenant.IsActive,
		&tenant.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, tenantDomain.ErrTenantNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get tenant by slug")
	}

	return &tenant, nil
}

// Get retrieves a tenant by ID.
// Returns ErrTenantNotFound if no tenant matches.
func (r *PostgreSQLTenantRepository) Get(ctx context.Context, tenantID string) (*tenantDomain.Tenant, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, slug, name, is_active, created_at FROM tenants WHERE id = $1`

	var tenant tenantDomain.Tenant
	err := querier.QueryRowContext(ctx, query, tenantID).Scan(
		&tenant.ID,
		&tenant.Slug,
		&tenant.Name,
		&tenant.IsActive,
		&tenant.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, tenantDomain.ErrTenantNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get tenant")
	}

	return &tenant, nil
}

// isPostgreSQLUniqueViolation checks if the error is a PostgreSQL unique constraint violation
func isPostgreSQLUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	// PostgreSQL: "duplicate key value violates unique constraint" or "pq: duplicate key"
	return strings.Contains(errMsg, "duplicate key") || strings.Contains(errMsg, "unique constraint")
}

// NewPostgreSQLTenantRepository creates a new PostgreSQL tenant repository.
func NewPostgreSQLTenantRepository(db *sql.DB) *PostgreSQLTenantRepository {
	return &PostgreSQLTenantRepository{db: db}
}
