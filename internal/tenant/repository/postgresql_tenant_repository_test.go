package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tenantDomain "github.com/allisson/authz/internal/tenant/domain"
)

func TestPostgreSQLTenantRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	repo := NewPostgreSQLTenantRepository(db)
	tenant := &tenantDomain.Tenant{
		ID:        uuid.Must(uuid.NewV7()),
		Slug:      "acme",
		Name:      "Acme Community",
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO tenants").
		WithArgs(tenant.ID, tenant.Slug, tenant.Name, tenant.IsActive, tenant.CreatedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = repo.Create(context.Background(), tenant)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLTenantRepository_Create_SlugTaken(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	repo := NewPostgreSQLTenantRepository(db)
	tenant := &tenantDomain.Tenant{
		ID:        uuid.Must(uuid.NewV7()),
		Slug:      "acme",
		CreatedAt: time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO tenants").
		WillReturnError(errDuplicateKey{})

	err = repo.Create(context.Background(), tenant)
	assert.ErrorIs(t, err, tenantDomain.ErrSlugTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

type errDuplicateKey struct{}

func (errDuplicateKey) Error() string {
	return `pq: duplicate key value violates unique constraint "tenants_slug_key"`
}

func TestPostgreSQLTenantRepository_GetBySlug(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	repo := NewPostgreSQLTenantRepository(db)
	tenantID := uuid.Must(uuid.NewV7())
	createdAt := time.Now().UTC()

	rows := sqlmock.NewRows([]string{"id", "slug", "name", "is_active", "created_at"}).
		AddRow(tenantID.String(), "acme", "Acme Community", true, createdAt)

	mock.ExpectQuery("SELECT id, slug, name, is_active, created_at FROM tenants WHERE slug").
		WithArgs("acme").
		WillReturnRows(rows)

	tenant, err := repo.GetBySlug(context.Background(), "acme")
	require.NoError(t, err)
	assert.Equal(t, tenantID, tenant.ID)
	assert.Equal(t, "acme", tenant.Slug)
	assert.True(t, tenant.IsActive)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLTenantRepository_GetBySlug_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	repo := NewPostgreSQLTenantRepository(db)

	mock.ExpectQuery("SELECT id, slug, name, is_active, created_at FROM tenants WHERE slug").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id", "slug", "name", "is_active", "created_at"}))

	tenant, err := repo.GetBySlug(context.Background(), "missing")
	assert.Nil(t, tenant)
	assert.ErrorIs(t, err, tenantDomain.ErrTenantNotFound)
}
