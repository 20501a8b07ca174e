package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/google/uuid"

	authzDomain "github.com/allisson/authz/internal/authz/domain"
	"github.com/allisson/authz/internal/database"
	apperrors "github.com/allisson/authz/internal/errors"
)

// MySQLMembershipRepository implements membership persistence for MySQL.
// The capability override is a nullable JSON column; NULL means "no override".
type MySQLMembershipRepository struct {
	db *sql.DB
}

// Create inserts a new membership. Returns ErrMembershipExists if the user
// already holds a membership in the tenant.
func (r *MySQLMembershipRepository) Create(ctx context.Context, membership *authzDomain.Membership) error {
	querier := database.GetTx(ctx, r.db)

	var overrideJSON any
	if membership.HasOverride() {
		data, err := json.Marshal(membership.CapabilityOverride)
		if err != nil {
			return apperrors.Wrap(err, "failed to marshal capability override")
		}
		overrideJSON = data
	}

	query := `INSERT INTO memberships (id, tenant_id, user_id, role_key, capability_override, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := querier.ExecContext(
		ctx,
		query,
		membership.ID.String(),
		membership.TenantID.String(),
		membership.UserID.String(),
		string(membership.RoleKey),
		overrideJSON,
		membership.CreatedAt,
		membership.UpdatedAt,
	)
	if err != nil {
		if isMySQLDuplicateEntry(err) {
			return authzDomain.ErrMembershipExists
		}
		return apperrors.Wrap(err, "failed to create membership")
	}
	return nil
}

// GetByUserAndTenant retrieves the membership binding a user to a tenant.
// Returns ErrMembershipNotFound if no membership matches.
func (r *MySQLMembershipRepository) GetByUserAndTenant(ctx context.Context, tenantID, userID uuid.UUID) (*authzDomain.Membership, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, tenant_id, user_id, role_key, capability_override, created_at, updated_at
			  FROM memberships WHERE tenant_id = ? AND user_id = ?`

	var (
		membership   authzDomain.Membership
		overrideJSON []byte
	)
	err := querier.QueryRowContext(ctx, query, tenantID.String(), userID.String()).Scan(
		&membership.ID,
		&membership.TenantID,
		&membership.UserID,
		&membership.RoleKey,
		&overrideJSON,
		&membership.CreatedAt,
		&membership.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, authzDomain.ErrMembershipNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get membership")
	}

	if overrideJSON != nil {
		if err := json.Unmarshal(overrideJSON, &membership.CapabilityOverride); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal capability override")
		}
		if membership.CapabilityOverride == nil {
			membership.CapabilityOverride = []string{}
		}
	}
	return &membership, nil
}

// NewMySQLMembershipRepository creates a new MySQL membership repository.
func NewMySQLMembershipRepository(db *sql.DB) *MySQLMembershipRepository {
	return &MySQLMembershipRepository{db: db}
}
