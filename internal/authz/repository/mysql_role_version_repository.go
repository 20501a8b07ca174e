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

// MySQLRoleVersionRepository implements the append-only capability-hash
// ledger for MySQL. Concurrent regenerations serialize on the UNIQUE
// (tenant_id, version) key, surfaced as ErrVersionConflict.
type MySQLRoleVersionRepository struct {
	db *sql.DB
}

// Create appends a ledger entry. Returns ErrVersionConflict if another writer
// already claimed the same version for the tenant.
func (r *MySQLRoleVersionRepository) Create(ctx context.Context, version *authzDomain.RoleVersion) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO role_versions (id, tenant_id, version, capability_hash, created_at)
			  VALUES (?, ?, ?, ?, ?)`

	_, err := querier.ExecContext(
		ctx,
		query,
		version.ID.String(),
		version.TenantID.String(),
		version.Version,
		version.CapabilityHash,
		version.CreatedAt,
	)
	if err != nil {
		if isMySQLDuplicateEntry(err) {
			return apperrors.Wrap(apperrors.ErrVersionConflict, "ledger entry already exists for version")
		}
		return apperrors.Wrap(err, "failed to create role version")
	}
	return nil
}

// GetLatest retrieves the tenant's current ledger head.
// Returns ErrRoleVersionNotFound if the tenant has no entries yet.
func (r *MySQLRoleVersionRepository) GetLatest(ctx context.Context, tenantID uuid.UUID) (*authzDomain.RoleVersion, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, tenant_id, version, capability_hash, created_at
			  FROM role_versions WHERE tenant_id = ?
			  ORDER BY version DESC LIMIT 1`

	var version authzDomain.RoleVersion
	err := querier.QueryRowContext(ctx, query, tenantID.String()).Scan(
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
func (r *MySQLRoleVersionRepository) List(ctx context.Context, tenantID uuid.UUID, limit int) ([]authzDomain.RoleVersion, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, tenant_id, version, capability_hash, created_at
			  FROM role_versions WHERE tenant_id = ?
			  ORDER BY version DESC LIMIT ?`

	rows, err := querier.QueryContext(ctx, query, tenantID.String(), limit)
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

// NewMySQLRoleVersionRepository creates a new MySQL role version repository.
func NewMySQLRoleVersionRepository(db *sql.DB) *MySQLRoleVersionRepository {
	return &MySQLRoleVersionRepository{db: db}
}
