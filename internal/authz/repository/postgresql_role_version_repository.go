package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	authzDomain "github.com/allisson/authz/internal/authz/domain"
	"github.com/allisson/authz/internal/database"
	apperrors "github.com/allisson/authz/internal/errors"
)

// PostgreSQLRoleVersionRepository implements the append-only capability-hash
// ledger for PostgreSQL. The UNIQUE (tenant_id, version) constraint is the
// serialization point for concurrent regenerations: the losing writer gets a
// unique violation, surfaced as ErrVersionConflict so the caller can re-read
// the head and retry.
type PostgreSQLRoleVersionRepository struct {
	db *sql.DB
}

// Create appends a ledger entry. Returns ErrVersionConflict if another writer
// already claimed the same version for the tenant.
func (r *PostgreSQLRoleVersionRepository) Create(ctx context.Context, version *authzDomain.RoleVersion) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO role_versions (id, tenant_id, version, capability_hash, created_at)
			  VALUES ($1, $2, $3, $4, $5)`

	_, err := querier.ExecContext(
		ctx,
		query,
		version.ID,
		version.TenantID,
		version.Version,
		version.CapabilityHash,
		version.CreatedAt,
	)
	if err != nil {
		if isPostgreSQLUniqueViolation(err) {
			return apperrors.Wrap(apperrors.ErrVersionConflict, "ledger entry already exists for version")
		}
		return apperrors.Wrap(err, "failed to create role version")
	}
	return nil
}

// GetLatest retrieves the tenant's current ledger head.
// Returns ErrRoleVersionNotFound if the tenant has no entries yet.
func (r *PostgreSQLRoleVersionRepository) GetLatest(ctx context.Context, tenantID uuid.UUID) (*authzDomain.RoleVersion, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, tenant_id, version, capability_hash, created_at
			  FROM role_versions WHERE tenant_id = $1
			  ORDER BY version DESC LIMIT 1`

	var version authzDomain.RoleVersion
	err := querier.QueryRowContext(ctx, query, tenantID).Scan(
		&version.ID,
		&version.TenantID,
		&version.Version,
		&version.CapabilityHash,
		&version.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, authzDomain.ErrRoleVersionNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get latest role version")
	}
	return &version, nil
}

// List retrieves a tenant's ledger entries, newest first.
func (r *PostgreSQLRoleVersionRepository) List(ctx context.Context, tenantID uuid.UUID, limit int) ([]authzDomain.RoleVersion, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, tenant_id, version, capability_hash, created_at
			  FROM role_versions WHERE tenant_id = $1
			  ORDER BY version DESC LIMIT $2`

	rows, err := querier.QueryContext(ctx, query, tenantID, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list role versions")
	}
	defer func() { _ = rows.Close() }()

	var versions []authzDomain.RoleVersion
	for rows.Next() {
		var version authzDomain.RoleVersion
		err := rows.Scan(
			&version.ID,
			&version.TenantID,
			&version.Version,
			&version.CapabilityHash,
			&version.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan role version")
		}
		versions = append(versions, version)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate role versions")
	}
	return versions, nil
}

// NewPostgreSQLRoleVersionRepository creates a new PostgreSQL role version repository.
func NewPostgreSQLRoleVersionRepository(db *sql.DB) *PostgreSQLRoleVersionRepository {
	return &PostgreSQLRoleVersionRepository{db: db}
}
