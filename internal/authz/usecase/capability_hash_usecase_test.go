package usecase

import (
	"context"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	authzDomain "github.com/allisson/authz/internal/authz/domain"
	authzService "github.com/allisson/authz/internal/authz/service"
	"github.com/allisson/authz/internal/cache"
	"github.com/allisson/authz/internal/database/mocks"
	apperrors "github.com/allisson/authz/internal/errors"
)

// memoryCustomRoleRepository is an in-memory CustomRoleRepository. It mirrors
// the real repositories' error contract so usecase behavior under contention
// can be exercised without a database.
type memoryCustomRoleRepository struct {
	mu    sync.Mutex
	roles map[uuid.UUID]map[authzDomain.RoleKey]authzDomain.CustomRole
}

func newMemoryCustomRoleRepository() *memoryCustomRoleRepository {
	return &memoryCustomRoleRepository{
		roles: make(map[uuid.UUID]map[authzDomain.RoleKey]authzDomain.CustomRole),
	}
}

func (m *memoryCustomRoleRepository) Create(_ context.Context, role *authzDomain.CustomRole) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tenantRoles, ok := m.roles[role.TenantID]
	if !ok {
		tenantRoles = make(map[authzDomain.RoleKey]authzDomain.CustomRole)
		m.roles[role.TenantID] = tenantRoles
	}
	if _, exists := tenantRoles[role.Key]; exists {
		return authzDomain.ErrRoleKeyTaken
	}
	tenantRoles[role.Key] = *role
	return nil
}

func (m *memoryCustomRoleRepository) Update(_ context.Context, role *authzDomain.CustomRole) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tenantRoles := m.roles[role.TenantID]
	if _, exists := tenantRoles[role.Key]; !exists {
		return authzDomain.ErrCustomRoleNotFound
	}
	tenantRoles[role.Key] = *role
	return nil
}

func (m *memoryCustomRoleRepository) GetByKey(
	_ context.Context,
	tenantID uuid.UUID,
	key authzDomain.RoleKey,
) (*authzDomain.CustomRole, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	role, exists := m.roles[tenantID][key]
	if !exists {
		return nil, authzDomain.ErrCustomRoleNotFound
	}
	return &role, nil
}

func (m *memoryCustomRoleRepository) List(_ context.Context, tenantID uuid.UUID) ([]authzDomain.CustomRole, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []authzDomain.CustomRole
	for _, role := range m.roles[tenantID] {
		out = append(out, role)
	}
	slices.SortFunc(out, func(a, b authzDomain.CustomRole) int {
		switch {
		case a.Key < b.Key:
			return -1
		case a.Key > b.Key:
			return 1
		default:
			return 0
		}
	})
	return out, nil
}

func (m *memoryCustomRoleRepository) Delete(
	_ context.Context,
	tenantID uuid.UUID,
	key authzDomain.RoleKey,
) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.roles[tenantID][key]; !exists {
		return authzDomain.ErrCustomRoleNotFound
	}
	delete(m.roles[tenantID], key)
	return nil
}

// memoryRoleVersionRepository is an in-memory RoleVersionRepository enforcing
// the UNIQUE (tenant_id, version) constraint the real schema relies on.
type memoryRoleVersionRepository struct {
	mu      sync.Mutex
	entries map[uuid.UUID][]authzDomain.RoleVersion
}

func newMemoryRoleVersionRepository() *memoryRoleVersionRepository {
	return &memoryRoleVersionRepository{
		entries: make(map[uuid.UUID][]authzDomain.RoleVersion),
	}
}

func (m *memoryRoleVersionRepository) Create(_ context.Context, version *authzDomain.RoleVersion) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, entry := range m.entries[version.TenantID] {
		if entry.Version == version.Version {
			return apperrors.Wrap(apperrors.ErrVersionConflict, "ledger entry already exists for version")
		}
	}
	m.entries[version.TenantID] = append(m.entries[version.TenantID], *version)
	return nil
}

func (m *memoryRoleVersionRepository) GetLatest(
	_ context.Context,
	tenantID uuid.UUID,
) (*authzDomain.RoleVersion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries := m.entries[tenantID]
	if len(entries) == 0 {
		return nil, authzDomain.ErrRoleVersionNotFound
	}

	head := entries[0]
	for _, entry := range entries[1:] {
		if entry.Version > head.Version {
			head = entry
		}
	}
	return &head, nil
}

func (m *memoryRoleVersionRepository) List(
	_ context.Context,
	tenantID uuid.UUID,
	limit int,
) ([]authzDomain.RoleVersion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := slices.Clone(m.entries[tenantID])
	slices.SortFunc(out, func(a, b authzDomain.RoleVersion) int {
		return int(b.Version - a.Version)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type hashFixture struct {
	tenantID    uuid.UUID
	roleRepo    *memoryCustomRoleRepository
	versionRepo *memoryRoleVersionRepository
	cache       *cache.FingerprintCache[authzDomain.RoleVersion]
	useCase     CapabilityHashUseCase
}

func newHashFixture(t *testing.T, cacheTTL time.Duration) *hashFixture {
	t.Helper()

	roleRepo := newMemoryCustomRoleRepository()
	versionRepo := newMemoryRoleVersionRepository()
	fingerprintCache := cache.New[authzDomain.RoleVersion](cacheTTL, 16)

	return &hashFixture{
		tenantID:    uuid.Must(uuid.NewV7()),
		roleRepo:    roleRepo,
		versionRepo: versionRepo,
		cache:       fingerprintCache,
		useCase: NewCapabilityHashUseCase(
			mocks.NewMockTxManager(t),
			roleRepo,
			versionRepo,
			authzService.NewHashService(),
			authzDomain.DefaultCatalog(),
			fingerprintCache,
		),
	}
}

func (f *hashFixture) addRole(t *testing.T, key authzDomain.RoleKey, capabilities ...authzDomain.Capability) {
	t.Helper()

	now := time.Now().UTC()
	err := f.roleRepo.Create(context.Background(), &authzDomain.CustomRole{
		ID:           uuid.Must(uuid.NewV7()),
		TenantID:     f.tenantID,
		Key:          key,
		Capabilities: capabilities,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	require.NoError(t, err)
}

func TestCapabilityHashUseCase_Current_Bootstrap(t *testing.T) {
	ctx := context.Background()
	fixture := newHashFixture(t, 0)

	head, err := fixture.useCase.Current(ctx, fixture.tenantID)
	require.NoError(t, err)
	assert.Equal(t, authzDomain.FirstVersion, head.Version)
	assert.NotEmpty(t, head.CapabilityHash)

	// The bootstrap entry persists: a second read returns the same version.
	again, err := fixture.useCase.Current(ctx, fixture.tenantID)
	require.NoError(t, err)
	assert.Equal(t, head.Version, again.Version)
	assert.Equal(t, head.CapabilityHash, again.CapabilityHash)
}

func TestCapabilityHashUseCase_Regenerate_NoOpWhenUnchanged(t *testing.T) {
	ctx := context.Background()
	fixture := newHashFixture(t, 0)

	first, err := fixture.useCase.Regenerate(ctx, fixture.tenantID)
	require.NoError(t, err)
	assert.Equal(t, authzDomain.FirstVersion, first.Version)

	// No role change between runs: same hash, same version, no new entry.
	second, err := fixture.useCase.Regenerate(ctx, fixture.tenantID)
	require.NoError(t, err)
	assert.Equal(t, first.Version, second.Version)
	assert.Equal(t, first.CapabilityHash, second.CapabilityHash)

	history, err := fixture.useCase.History(ctx, fixture.tenantID, 10)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestCapabilityHashUseCase_Regenerate_BumpsVersionOnChange(t *testing.T) {
	ctx := context.Background()
	fixture := newHashFixture(t, 0)

	first, err := fixture.useCase.Regenerate(ctx, fixture.tenantID)
	require.NoError(t, err)

	fixture.addRole(t, "usher", authzDomain.ScheduleRead)

	second, err := fixture.useCase.Regenerate(ctx, fixture.tenantID)
	require.NoError(t, err)
	assert.Equal(t, first.Version+1, second.Version)
	assert.NotEqual(t, first.CapabilityHash, second.CapabilityHash)
}

func TestCapabilityHashUseCase_Regenerate_Concurrent(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx := context.Background()
	fixture := newHashFixture(t, 0)

	roleKeys := []authzDomain.RoleKey{"usher", "greeter", "counter", "producer", "editor"}

	var wg sync.WaitGroup
	errs := make([]error, len(roleKeys))
	for i, key := range roleKeys {
		wg.Add(1)
		go func(i int, key authzDomain.RoleKey) {
			defer wg.Done()
			fixture.addRole(t, key, authzDomain.ScheduleRead)
			_, errs[i] = fixture.useCase.Regenerate(ctx, fixture.tenantID)
		}(i, key)
	}
	wg.Wait()

	// Racing writers that exhaust their retries converge on the winners'
	// head instead of erroring; what must hold regardless is the ledger
	// shape: contiguous versions from 1, one entry per version.
	for _, err := range errs {
		assert.NoError(t, err)
	}

	// A final run converges the ledger head onto the final role map.
	head, err := fixture.useCase.Regenerate(ctx, fixture.tenantID)
	require.NoError(t, err)

	wantHash, err := fixture.useCase.Compute(ctx, fixture.tenantID)
	require.NoError(t, err)
	assert.Equal(t, wantHash, head.CapabilityHash)

	history, err := fixture.useCase.History(ctx, fixture.tenantID, 100)
	require.NoError(t, err)
	require.NotEmpty(t, history)
	assert.Equal(t, head.Version, history[0].Version)
	for i, entry := range history {
		assert.Equal(t, head.Version-int64(i), entry.Version)
	}
}

// contendedRoleVersionRepository loses every version slot to a simulated
// concurrent writer while reads see the writer's head.
type contendedRoleVersionRepository struct {
	*memoryRoleVersionRepository
	createCalls int
}

func (c *contendedRoleVersionRepository) Create(_ context.Context, _ *authzDomain.RoleVersion) error {
	c.createCalls++
	return apperrors.Wrap(apperrors.ErrVersionConflict, "ledger entry already exists for version")
}

func TestCapabilityHashUseCase_Regenerate_ConvergesWhenRetriesExhausted(t *testing.T) {
	ctx := context.Background()

	roleRepo := newMemoryCustomRoleRepository()
	versionRepo := &contendedRoleVersionRepository{
		memoryRoleVersionRepository: newMemoryRoleVersionRepository(),
	}

	// The simulated winner's head.
	tenantID := uuid.Must(uuid.NewV7())
	winnerHead := authzDomain.RoleVersion{
		ID:             uuid.Must(uuid.NewV7()),
		TenantID:       tenantID,
		Version:        4,
		CapabilityHash: "winner-hash",
		CreatedAt:      time.Now().UTC(),
	}
	versionRepo.entries[tenantID] = append(versionRepo.entries[tenantID], winnerHead)

	fingerprintCache := cache.New[authzDomain.RoleVersion](time.Minute, 16)
	fingerprintCache.Set(tenantID.String(), authzDomain.RoleVersion{Version: 3, CapabilityHash: "stale"})

	useCase := NewCapabilityHashUseCase(
		mocks.NewMockTxManager(t),
		roleRepo,
		versionRepo,
		authzService.NewHashService(),
		authzDomain.DefaultCatalog(),
		fingerprintCache,
	)

	// Every append attempt loses its slot; the call still succeeds by
	// converging on the head a concurrent writer produced, and the version
	// conflict never escapes.
	head, err := useCase.Regenerate(ctx, tenantID)
	require.NoError(t, err)
	assert.Equal(t, maxRegenerateAttempts, versionRepo.createCalls)
	assert.Equal(t, winnerHead.Version, head.Version)
	assert.Equal(t, winnerHead.CapabilityHash, head.CapabilityHash)

	// The stale cached head was dropped on the way out.
	_, cached := fingerprintCache.Get(tenantID.String())
	assert.False(t, cached)
}

func TestCapabilityHashUseCase_Current_CacheInvalidatedByRegenerate(t *testing.T) {
	ctx := context.Background()
	fixture := newHashFixture(t, time.Minute)

	first, err := fixture.useCase.Current(ctx, fixture.tenantID)
	require.NoError(t, err)

	// Cached read.
	cached, err := fixture.useCase.Current(ctx, fixture.tenantID)
	require.NoError(t, err)
	assert.Equal(t, first.CapabilityHash, cached.CapabilityHash)

	fixture.addRole(t, "usher", authzDomain.ScheduleRead)
	regenerated, err := fixture.useCase.Regenerate(ctx, fixture.tenantID)
	require.NoError(t, err)

	// The new head is observable immediately, not after the TTL.
	head, err := fixture.useCase.Current(ctx, fixture.tenantID)
	require.NoError(t, err)
	assert.Equal(t, regenerated.Version, head.Version)
	assert.Equal(t, regenerated.CapabilityHash, head.CapabilityHash)
}

func TestCapabilityHashUseCase_Compute_MatchesHead(t *testing.T) {
	ctx := context.Background()
	fixture := newHashFixture(t, 0)

	fixture.addRole(t, "usher", authzDomain.ScheduleRead, authzDomain.ChatPostMessage)

	head, err := fixture.useCase.Regenerate(ctx, fixture.tenantID)
	require.NoError(t, err)

	computed, err := fixture.useCase.Compute(ctx, fixture.tenantID)
	require.NoError(t, err)
	assert.Equal(t, head.CapabilityHash, computed)
}
