// Package usecase implements business logic orchestration for authorization
// operations.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	authzDomain "github.com/allisson/authz/internal/authz/domain"
	authzService "github.com/allisson/authz/internal/authz/service"
	"github.com/allisson/authz/internal/cache"
	"github.com/allisson/authz/internal/database"
	apperrors "github.com/allisson/authz/internal/errors"
)

// maxRegenerateAttempts bounds the retry loop for concurrent regenerations.
// Each retry re-reads the ledger head, so a loser converges in one extra pass
// unless writers keep racing.
const maxRegenerateAttempts = 3

// defaultHistoryLimit applies when History is called with a non-positive limit.
const defaultHistoryLimit = 20

// capabilityHashUseCase implements CapabilityHashUseCase.
type capabilityHashUseCase struct {
	txManager       database.TxManager
	customRoleRepo  CustomRoleRepository
	roleVersionRepo RoleVersionRepository
	hashService     authzService.HashService
	catalog         authzDomain.Catalog
	cache           *cache.FingerprintCache[authzDomain.RoleVersion]
}

// Current returns the tenant's ledger head. A tenant with no entries gets its
// bootstrap entry (version 1, fingerprint of the built-in catalog plus any
// custom roles) appended on first read.
func (u *capabilityHashUseCase) Current(
	ctx context.Context,
	tenantID uuid.UUID,
) (*authzDomain.RoleVersion, error) {
	key := tenantID.String()
	if cached, ok := u.cache.Get(key); ok {
		return &cached, nil
	}

	head, err := u.roleVersionRepo.GetLatest(ctx, tenantID)
	if err != nil {
		if !apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		// First read for this tenant: seed the ledger.
		head, err = u.Regenerate(ctx, tenantID)
		if err != nil {
			return nil, err
		}
	}

	u.cache.Set(key, *head)
	return head, nil
}

// Compute returns the fingerprint of the tenant's current role map without
// touching the ledger.
func (u *capabilityHashUseCase) Compute(ctx context.Context, tenantID uuid.UUID) (string, error) {
	customRoles, err := u.customRoleRepo.List(ctx, tenantID)
	if err != nil {
		return "", err
	}

	roleMap := authzDomain.RoleCapabilityMap(u.catalog, customRoles)
	return u.hashService.ComputeHash(roleMap), nil
}

// Regenerate recomputes the tenant's fingerprint and appends a ledger entry
// when it changed. Each attempt runs in its own transaction: compute, read the
// head, append at head+1. A version conflict means a concurrent writer won the
// slot; the next attempt re-reads and recomputes, which also makes an
// already-appended identical fingerprint a clean no-op. Losing every attempt
// means the ledger kept moving forward under concurrent writers, so the loop
// converges on the winners' head instead of erroring; version conflicts never
// escape this method.
func (u *capabilityHashUseCase) Regenerate(
	ctx context.Context,
	tenantID uuid.UUID,
) (*authzDomain.RoleVersion, error) {
	for attempt := 0; attempt < maxRegenerateAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, apperrors.Wrap(err, "fingerprint regeneration cancelled")
		}

		var head *authzDomain.RoleVersion
		err := u.txManager.WithTx(ctx, func(ctx context.Context) error {
			hash, err := u.Compute(ctx, tenantID)
			if err != nil {
				return err
			}

			nextVersion := authzDomain.FirstVersion
			latest, err := u.roleVersionRepo.GetLatest(ctx, tenantID)
			switch {
			case err == nil:
				if latest.CapabilityHash == hash {
					// Unchanged fingerprint: no ledger entry, no version bump.
					head = latest
					return nil
				}
				nextVersion = latest.Version + 1
			case apperrors.Is(err, apperrors.ErrNotFound):
				// Bootstrap: first entry for this tenant.
			default:
				return err
			}

			version := &authzDomain.RoleVersion{
				ID:             uuid.Must(uuid.NewV7()),
				TenantID:       tenantID,
				Version:        nextVersion,
				CapabilityHash: hash,
				CreatedAt:      time.Now().UTC(),
			}
			if err := u.roleVersionRepo.Create(ctx, version); err != nil {
				return err
			}
			head = version
			return nil
		})
		if err != nil {
			if apperrors.Is(err, apperrors.ErrVersionConflict) {
				continue
			}
			return nil, err
		}

		u.cache.Invalidate(tenantID.String())
		return head, nil
	}

	// Every attempt lost its version slot to a concurrent writer, so a head
	// exists and reflects a fingerprint computed under contention. Converge on
	// it; only a persistence failure surfaces, as a server error.
	head, err := u.roleVersionRepo.GetLatest(ctx, tenantID)
	if err != nil {
		return nil, apperrors.Wrap(err, "fingerprint regeneration retries exhausted")
	}

	u.cache.Invalidate(tenantID.String())
	return head, nil
}

// History returns the tenant's most recent ledger entries, newest first.
func (u *capabilityHashUseCase) History(
	ctx context.Context,
	tenantID uuid.UUID,
	limit int,
) ([]authzDomain.RoleVersion, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	return u.roleVersionRepo.List(ctx, tenantID, limit)
}

// NewCapabilityHashUseCase creates a new CapabilityHashUseCase with the
// provided dependencies.
func NewCapabilityHashUseCase(
	txManager database.TxManager,
	customRoleRepo CustomRoleRepository,
	roleVersionRepo RoleVersionRepository,
	hashService authzService.HashService,
	catalog authzDomain.Catalog,
	fingerprintCache *cache.FingerprintCache[authzDomain.RoleVersion],
) CapabilityHashUseCase {
	return &capabilityHashUseCase{
		txManager:       txManager,
		customRoleRepo:  customRoleRepo,
		roleVersionRepo: roleVersionRepo,
		hashService:     hashService,
		catalog:         catalog,
		cache:           fingerprintCache,
	}
}
