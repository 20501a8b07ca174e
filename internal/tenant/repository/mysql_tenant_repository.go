package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"

	"github.com/allisson/authz/internal/database"
	apperrors "github.com/allisson/authz/internal/errors"
	tenantDomain "github.com/allisson/authz/internal/tenant/domain"
)

// MySQLTenantRepository implements tenant persistence for MySQL.
// UUIDs are stored as CHAR(36) strings with transaction support via database.GetTx().
type MySQLTenantRepository struct {
	db *sql.DB
}

// Create inserts a new tenant into the MySQL database.
// Returns ErrSlugTaken if the slug is already registered.
func (r *MySQLTenantRepository) Create(ctx context.Context, tenant *tenantDomain.Tenant) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO tenants (id, slug, name, is_active, created_at)
			  VALUES (?, ?, ?, ?, ?)`

	_, err := querier.ExecContext(
		ctx,
		query,
		tenant.ID.String(),
		tenant.Slug,
		tenant.Name,
		tenant.IsActive,
		tenant.CreatedAt,
	)
	if err != nil {
		if isMySQLDuplicateEntry(err) {
			return tenantDomain.ErrSlugTaken
		}
		return apperrors.Wrap(err, "failed to create tenant")
	}
	return nil
}

// GetBySlug retrieves a tenant by its slug.
// Returns ErrTenantNotFound if no tenant matches.
func (r *MySQLTenantRepository) GetBySlug(ctx context.Context, slug string) (*tenantDomain.Tenant, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, slug, name, is_active, created_at FROM tenants WHERE slug = ?`

	return scanTenant(querier.QueryRowContext(ctx, query, slug), "failed to get tenant by slug")
}

// Get retrieves a tenant by ID.
// Returns ErrTenantNotFound if no tenant matches.
func (r *MySQLTenantRepository) Get(ctx context.Context, tenantID string) (*tenantDomain.Tenant, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, slug, name, is_active, created_at FROM tenants WHERE id = ?`

	return scanTenant(querier.QueryRowContext(ctx, query, tenantID), "failed to get tenant")
}

// scanTenant scans a single tenant row, mapping sql.ErrNoRows to ErrTenantNotFound.
func scanTenant(row *sql.Row, wrapMsg string) (*tenantDomain.Tenant, error) {
	var tenant tenantDomain.Tenant
	err := row.Scan(
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
		return nil, apperrors.Wrap(err, wrapMsg)
	}
	return &tenant, nil
}

// isMySQLDuplicateEntry checks for MySQL error 1062 (duplicate entry).
func isMySQLDuplicateEntry(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}

// NewMySQLTenantRepository creates a new MySQL tenant repository.
func NewMySQLTenantRepository(db *sql.DB) *MySQLTenantRepository {
	return &MySQLTenantRepository{db: db}
}
