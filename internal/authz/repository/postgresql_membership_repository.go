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

// PostgreSQLMembershipRepository implements membership persistence for
// PostgreSQL. The capability override is stored as a nullable JSONB document;
// NULL means "no override" while an empty array is a valid override granting
// nothing.
type PostgreSQLMembershipRepository struct {
	db *sql.DB
}

// Create inserts a new membership. Returns ErrMembershipExists if the user
// already holds a membership in the tenant.
func (r *PostgreSQLMembershipRepository) Create(ctx context.Context, membership *authzDomain.Membership) error {
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
			  VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := querier.ExecContext(
		ctx,
		query,
		membership.ID,
		membership.TenantID,
		membership.UserID,
		string(membership.RoleKey),
		overrideJSON,
		membership.CreatedAt,
		membership.UpdatedAt,
	)
	if err != nil {
		if isPostgreSQLUniqueViolation(err) {
			return authzDomain.ErrMembershipExists
		}
		return apperrors.Wrap(err, "failed to create membership")
	}
	return nil
}

// GetByUserAndTenant retrieves the membership binding a user to a tenant.
// Returns ErrMembershipNotFound if no membership matches.
func (r *PostgreSQLMembershipRepository) GetByUserAndTenant(ctx context.Context, tenantID, userID uuid.UUID) (*authzDomain.Membership, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, tenant_id, user_id, role_key, capability_override, created_at, updated_at
			  FROM memberships WHERE tenant_id = $1 AND user_id = $2`

	var (
		membership   authzDomain.Membership
		overrideJSON []byte
	)
	err := querier.QueryRowContext(ctx, query, tenantID, userID).Scan(
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
		// A stored empty array must survive the round trip as a non-nil
		// override.
		if membership.CapabilityOverride == nil {
			membership.CapabilityOverride = []string{}
		}
	}
	return &membership, nil
}

// NewPostgreSQLMembershipRepository creates a new PostgreSQL membership repository.
func NewPostgreSQLMembershipRepository(db *sql.DB) *PostgreSQLMembershipRepository {
	return &PostgreSQLMembershipRepository{db: db}
}
