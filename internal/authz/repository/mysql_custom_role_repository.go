package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	authzDomain "github.com/allisson/authz/internal/authz/domain"
	"github.com/allisson/authz/internal/database"
	apperrors "github.com/allisson/authz/internal/errors"
)

// MySQLCustomRoleRepository implements custom role persistence for MySQL.
// UUIDs are stored as CHAR(36) strings and capability lists as JSON documents.
type MySQLCustomRoleRepository struct {
	db *sql.DB
}

// Create inserts a new custom role. Returns ErrRoleKeyTaken if the
// (tenant_id, role_key) pair already exists.
func (r *MySQLCustomRoleRepository) Create(ctx context.Context, role *authzDomain.CustomRole) error {
	querier := database.GetTx(ctx, r.db)

	capabilitiesJSON, err := json.Marshal(role.Capabilities)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal role capabilities")
	}

	query := `INSERT INTO custom_roles (id, tenant_id, role_key, name, capabilities, is_system, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		role.ID.String(),
		role.TenantID.String(),
		string(role.Key),
		role.Name,
		capabilitiesJSON,
		role.IsSystem,
		role.CreatedAt,
		role.UpdatedAt,
	)
	if err != nil {
		if isMySQLDuplicateEntry(err) {
			return authzDomain.ErrRoleKeyTaken
		}
		return apperrors.Wrap(err, "failed to create custom role")
	}
	return nil
}

// Update modifies an existing custom role's name and capability list.
// Returns ErrCustomRoleNotFound if no row matches.
func (r *MySQLCustomRoleRepository) Update(ctx context.Context, role *authzDomain.CustomRole) error {
	querier := database.GetTx(ctx, r.db)

	capabilitiesJSON, err := json.Marshal(role.Capabilities)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal role capabilities")
	}

	query := `UPDATE custom_roles
			  SET name = ?, capabilities = ?, updated_at = ?
			  WHERE tenant_id = ? AND role_key = ?`

	result, err := querier.ExecContext(
		ctx,
		query,
		role.Name,
		capabilitiesJSON,
		role.UpdatedAt,
		role.TenantID.String(),
		string(role.Key),
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update custom role")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if rowsAffected == 0 {
		return authzDomain.ErrCustomRoleNotFound
	}
	return nil
}

// GetByKey retrieves a tenant's custom role by key.
// Returns ErrCustomRoleNotFound if no role matches.
func (r *MySQLCustomRoleRepository) GetByKey(ctx context.Context, tenantID uuid.UUID, key authzDomain.RoleKey) (*authzDomain.CustomRole, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, tenant_id, role_key, name, capabilities, is_system, created_at, updated_at
			  FROM custom_roles WHERE tenant_id = ? AND role_key = ?`

	row := querier.QueryRowContext(ctx, query, tenantID.String(), string(key))
	role, err := scanCustomRole(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, authzDomain.ErrCustomRoleNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get custom role")
	}
	return role, nil
}

// List retrieves all custom roles for a tenant, ordered by key.
func (r *MySQLCustomRoleRepository) List(ctx context.Context, tenantID uuid.UUID) ([]authzDomain.CustomRole, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, tenant_id, role_key, name, capabilities, is_system, created_at, updated_at
			  FROM custom_roles WHERE tenant_id = ? ORDER BY role_key`

	rows, err := querier.QueryContext(ctx, query, tenantID.String())
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list custom roles")
	}
	defer func() { _ = rows.Close() }()

	var roles []authzDomain.CustomRole
	for rows.Next() {
		role, err := scanCustomRole(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan custom role")
		}
		roles = append(roles, *role)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate custom roles")
	}
	return roles, nil
}

// Delete removes a custom role by key.
// Returns ErrCustomRoleNotFound if no row matches.
func (r *MySQLCustomRoleRepository) Delete(ctx context.Context, tenantID uuid.UUID, key authzDomain.RoleKey) error {
	querier := database.GetTx(ctx, r.db)

	query := `DELETE FROM custom_roles WHERE tenant_id = ? AND role_key = ?`

	result, err := querier.ExecContext(ctx, query, tenantID.String(), string(key))
	if err != nil {
		return apperrors.Wrap(err, "failed to delete custom role")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to get rows affected")
	}
	if rowsAffected == 0 {
		return authzDomain.ErrCustomRoleNotFound
	}
	return nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for shared scan helpers.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanCustomRole(row rowScanner) (*authzDomain.CustomRole, error) {
	var (
		role             authzDomain.CustomRole
		capabilitiesJSON []byte
	)
	err := row.Scan(
		&role.ID,
		&role.TenantID,
		&role.Key,
		&role.Name,
		&capabilitiesJSON,
		&role.IsSystem,
		&role.CreatedAt,
		&role.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(capabilitiesJSON, &role.Capabilities); err != nil {
		return nil, err
	}
	return &role, nil
}

// isMySQLDuplicateEntry checks for MySQL error 1062 (duplicate entry).
func isMySQLDuplicateEntry(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}

// NewMySQLCustomRoleRepository creates a new MySQL custom role repository.
func NewMySQLCustomRoleRepository(db *sql.DB) *MySQLCustomRoleRepository {
	return &MySQLCustomRoleRepository{db: db}
}
