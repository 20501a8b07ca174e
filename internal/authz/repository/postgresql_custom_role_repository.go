// Package repository implements authorization persistence: custom roles,
// memberships and the per-tenant capability-hash ledger.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"

	authzDomain "github.com/allisson/authz/internal/authz/domain"
	"github.com/allisson/authz/internal/database"
	apperrors "github.com/allisson/authz/internal/errors"
)

// PostgreSQLCustomRoleRepository implements custom role persistence for
// PostgreSQL. Capability lists are stored as JSONB documents with transaction
// support via database.GetTx().
type PostgreSQLCustomRoleRepository struct {
	db *sql.DB
}

// Create inserts a new custom role. Returns ErrRoleKeyTaken if the
// (tenant_id, key) pair already exists.
func (r *PostgreSQLCustomRoleRepository) Create(ctx context.Context, role *authzDomain.CustomRole) error {
	querier := database.GetTx(ctx, r.db)

	capabilitiesJSON, err := json.Marshal(role.Capabilities)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal role capabilities")
	}

	query := `INSERT INTO custom_roles (id, tenant_id, role_key, name, capabilities, is_system, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err = querier.ExecContext(
		ctx,
		query,
		role.ID,
		role.TenantID,
		string(role.Key),
		role.Name,
		capabilitiesJSON,
		role.IsSystem,
		role.CreatedAt,
		role.UpdatedAt,
	)
	if err != nil {
		if isPostgreSQLUniqueViolation(err) {
			return authzDomain.ErrRoleKeyTaken
		}
		return apperrors.Wrap(err, "failed to create custom role")
	}
	return nil
}

// Update modifies an existing custom role's name and capability list. The
// role key is immutable. Returns ErrCustomRoleNotFound if no row matches.
func (r *PostgreSQLCustomRoleRepository) Update(ctx context.Context, role *authzDomain.CustomRole) error {
	querier := database.GetTx(ctx, r.db)

	capabilitiesJSON, err := json.Marshal(role.Capabilities)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal role capabilities")
	}

	query := `UPDATE custom_roles
			  SET name = $1, capabilities = $2, updated_at = $3
			  WHERE tenant_id = $4 AND role_key = $5`

	result, err := querier.ExecContext(
		ctx,
		query,
		role.Name,
		capabilitiesJSON,
		role.UpdatedAt,
		role.TenantID,
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
func (r *PostgreSQLCustomRoleRepository) GetByKey(ctx context.Context, tenantID uuid.UUID, key authzDomain.RoleKey) (*authzDomain.CustomRole, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, tenant_id, role_key, name, capabilities, is_system, created_at, updated_at
			  FROM custom_roles WHERE tenant_id = $1 AND role_key = $2`

	var (
		role             authzDomain.CustomRole
		capabilitiesJSON []byte
	)
	err := querier.QueryRowContext(ctx, query, tenantID, string(key)).Scan(
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
		if errors.Is(err, sql.ErrNoRows) {
			return nil, authzDomain.ErrCustomRoleNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get custom role")
	}

	if err := json.Unmarshal(capabilitiesJSON, &role.Capabilities); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal role capabilities")
	}
	return &role, nil
}

// List retrieves all custom roles for a tenant, ordered by key.
func (r *PostgreSQLCustomRoleRepository) List(ctx context.Context, tenantID uuid.UUID) ([]authzDomain.CustomRole, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, tenant_id, role_key, name, capabilities, is_system, created_at, updated_at
			  FROM custom_roles WHERE tenant_id = $1 ORDER BY role_key`

	rows, err := querier.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list custom roles")
	}
	defer func() { _ = rows.Close() }()

	var roles []authzDomain.CustomRole
	for rows.Next() {
		var (
			role             authzDomain.CustomRole
			capabilitiesJSON []byte
		)
		err := rows.Scan(
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
			return nil, apperrors.Wrap(err, "failed to scan custom role")
		}
		if err := json.Unmarshal(capabilitiesJSON, &role.Capabilities); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal role capabilities")
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate custom roles")
	}
	return roles, nil
}

// Delete removes a custom role by key. Returns ErrCustomRoleNotFound if no
// row matches. System-role protection is enforced by the usecase, not here.
func (r *PostgreSQLCustomRoleRepository) Delete(ctx context.Context, tenantID uuid.UUID, key authzDomain.RoleKey) error {
	querier := database.GetTx(ctx, r.db)

	query := `DELETE FROM custom_roles WHERE tenant_id = $1 AND role_key = $2`

	result, err := querier.ExecContext(ctx, query, tenantID, string(key))
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

// isPostgreSQLUniqueViolation checks if the error is a PostgreSQL unique constraint violation
func isPostgreSQLUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "duplicate key") || strings.Contains(errMsg, "unique constraint")
}

// NewPostgreSQLCustomRoleRepository creates a new PostgreSQL custom role repository.
func NewPostgreSQLCustomRoleRepository(db *sql.DB) *PostgreSQLCustomRoleRepository {
	return &PostgreSQLCustomRoleRepository{db: db}
}
