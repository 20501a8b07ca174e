package http

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/allisson/authz/internal/config"
	tenantDomain "github.com/allisson/authz/internal/tenant/domain"
)

// mockTenantUseCase is a mock implementation of TenantUseCase for testing.
type mockTenantUseCase struct {
	mock.Mock
}

func (m *mockTenantUseCase) Create(
	ctx context.Context,
	input *tenantDomain.CreateTenantInput,
) (*tenantDomain.Tenant, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tenantDomain.Tenant), args.Error(1)
}

func (m *mockTenantUseCase) Resolve(ctx context.Context, slug string) (*tenantDomain.Tenant, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tenantDomain.Tenant), args.Error(1)
}

func (m *mockTenantUseCase) Get(ctx context.Context, tenantID string) (*tenantDomain.Tenant, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tenantDomain.Tenant), args.Error(1)
}

func testLogger() *slog.Logger {
	return slog.Default()
}

func newResolverRouter(useCase *mockTenantUseCase, cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(TenantResolver(useCase, cfg, testLogger()))
	router.GET("/probe", func(c *gin.Context) {
		if tenant, ok := GetTenant(c.Request.Context()); ok {
			c.JSON(http.StatusOK, gin.H{"slug": tenant.Slug})
			return
		}
		c.JSON(http.StatusOK, gin.H{"slug": nil})
	})
	return router
}

func TestTenantResolver_Subdomain(t *testing.T) {
	useCase := &mockTenantUseCase{}
	tenant := &tenantDomain.Tenant{ID: uuid.Must(uuid.NewV7()), Slug: "acme", IsActive: true}

	useCase.On("Resolve", mock.Anything, "acme").
		Return(tenant, nil).
		Once()

	router := newResolverRouter(useCase, &config.Config{TenantSlugHeader: "X-Tenant-Slug"})

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Host = "acme.example.com"
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"slug":"acme"`)
	useCase.AssertExpectations(t)
}

func TestTenantResolver_HeaderFallback(t *testing.T) {
	useCase := &mockTenantUseCase{}
	tenant := &tenantDomain.Tenant{ID: uuid.Must(uuid.NewV7()), Slug: "acme", IsActive: true}

	useCase.On("Resolve", mock.Anything, "acme").
		Return(tenant, nil).
		Once()

	router := newResolverRouter(useCase, &config.Config{TenantSlugHeader: "X-Tenant-Slug"})

	// Bare two-label host: no subdomain, the header decides.
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Host = "example.com"
	req.Header.Set("X-Tenant-Slug", "acme")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"slug":"acme"`)
	useCase.AssertExpectations(t)
}

func TestTenantResolver_ProceedsUnresolved(t *testing.T) {
	t.Run("NoSlugAnywhere", func(t *testing.T) {
		useCase := &mockTenantUseCase{}
		router := newResolverRouter(useCase, &config.Config{TenantSlugHeader: "X-Tenant-Slug"})

		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		req.Host = "example.com"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"slug":null`)
		useCase.AssertNotCalled(t, "Resolve")
	})

	t.Run("UnknownSlug", func(t *testing.T) {
		useCase := &mockTenantUseCase{}
		useCase.On("Resolve", mock.Anything, "ghost").
			Return(nil, tenantDomain.ErrTenantNotFound).
			Once()

		router := newResolverRouter(useCase, &config.Config{TenantSlugHeader: "X-Tenant-Slug"})

		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		req.Host = "ghost.example.com"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"slug":null`)
		useCase.AssertExpectations(t)
	})
}

func TestRequireTenant(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/scoped", RequireTenant(testLogger()), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/scoped", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSlugFromHost(t *testing.T) {
	tests := []struct {
		name       string
		host       string
		baseDomain string
		want       string
	}{
		{"SubdomainNoBase", "acme.example.com", "", "acme"},
		{"SubdomainWithPort", "acme.example.com:8080", "", "acme"},
		{"TwoLabelsNoBase", "example.com", "", ""},
		{"SubdomainMatchingBase", "acme.example.com", "example.com", "acme"},
		{"BareBaseDomain", "example.com", "example.com", ""},
		{"OtherDomainWithBase", "acme.other.com", "example.com", ""},
		{"NestedSubdomainWithBase", "a.b.example.com", "example.com", ""},
		{"MixedCase", "ACME.Example.COM", "example.com", "acme"},
		{"Localhost", "localhost:8080", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, slugFromHost(tt.host, tt.baseDomain))
		})
	}
}
