package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authzDomain "github.com/allisson/authz/internal/authz/domain"
	authzHTTP "github.com/allisson/authz/internal/authz/http"
	"github.com/allisson/authz/internal/config"
	tenantDomain "github.com/allisson/authz/internal/tenant/domain"
)

// TestMain sets Gin to test mode for all tests in this package.
func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// createTestServer creates a test server with a discarding logger.
func createTestServer() *Server {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(nil, "localhost", 8080, logger)
}

// stubTenantUseCase resolves a single fixed slug.
type stubTenantUseCase struct {
	tenant *tenantDomain.Tenant
}

func (s *stubTenantUseCase) Create(ctx context.Context, input *tenantDomain.CreateTenantInput) (*tenantDomain.Tenant, error) {
	return nil, tenantDomain.ErrTenantNotFound
}

func (s *stubTenantUseCase) Resolve(ctx context.Context, slug string) (*tenantDomain.Tenant, error) {
	if s.tenant != nil && s.tenant.Slug == slug {
		return s.tenant, nil
	}
	return nil, tenantDomain.ErrTenantNotFound
}

func (s *stubTenantUseCase) Get(ctx context.Context, tenantID string) (*tenantDomain.Tenant, error) {
	if s.tenant != nil && s.tenant.ID.String() == tenantID {
		return s.tenant, nil
	}
	return nil, tenantDomain.ErrTenantNotFound
}

// stubCredentialUseCase rejects every credential.
type stubCredentialUseCase struct{}

func (s *stubCredentialUseCase) Issue(ctx context.Context, input *authzDomain.IssueCredentialInput) (*authzDomain.IssueCredentialOutput, error) {
	return nil, authzDomain.ErrMembershipNotFound
}

func (s *stubCredentialUseCase) Authenticate(ctx context.Context, token string, tenantID uuid.UUID) (*authzDomain.CredentialClaims, error) {
	return nil, authzDomain.ErrInvalidCredential
}

func testRoutes(tenant *tenantDomain.Tenant) *Routes {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{
		TenantSlugHeader: "X-Tenant-Slug",
		RateLimitEnabled: false,
	}
	credentialUseCase := &stubCredentialUseCase{}

	return &Routes{
		Config:                cfg,
		TenantUseCase:         &stubTenantUseCase{tenant: tenant},
		CredentialUseCase:     credentialUseCase,
		RoleHandler:           authzHTTP.NewRoleHandler(nil, authzDomain.DefaultCatalog(), logger),
		CredentialHandler:     authzHTTP.NewCredentialHandler(credentialUseCase, logger),
		CapabilityHashHandler: authzHTTP.NewCapabilityHashHandler(nil, logger),
	}
}

// TestHealthHandler tests the health check endpoint handler.
func TestHealthHandler(t *testing.T) {
	server := createTestServer()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)

	server.healthHandler(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]string
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Equal(t, "healthy", response["status"])
}

// TestReadinessHandler_NotReady_NilDB tests the readiness endpoint when DB is nil.
func TestReadinessHandler_NotReady_NilDB(t *testing.T) {
	server := createTestServer()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/ready", nil)

	server.readinessHandler(c)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Equal(t, "not_ready", response["status"])

	components, ok := response["components"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "error", components["database"])
}

// TestCustomLoggerMiddleware tests the custom logging middleware.
func TestCustomLoggerMiddleware(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	router := gin.New()
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(logger))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "test"})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]string
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Equal(t, "test", response["message"])
}

// TestRecoveryMiddleware tests Gin's built-in recovery middleware.
func TestRecoveryMiddleware(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(CustomLoggerMiddleware(logger))
	router.GET("/panic", func(c *gin.Context) {
		panic("test panic")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/panic", nil)

	// Should not panic - Recovery middleware catches it
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

// TestRouter_HealthEndpoint tests the health endpoint through the full router.
func TestRouter_HealthEndpoint(t *testing.T) {
	server := createTestServer()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	server.GetHandler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_TenantScopedRoutes(t *testing.T) {
	tenant := &tenantDomain.Tenant{
		ID:       uuid.Must(uuid.NewV7()),
		Slug:     "acme",
		Name:     "Acme",
		IsActive: true,
	}

	server := createTestServer()
	server.RegisterRoutes(testRoutes(tenant))
	handler := server.GetHandler()

	t.Run("UnresolvedTenant_NotFound", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/roles", nil)
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("UnknownSlug_NotFound", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/roles", nil)
		req.Header.Set("X-Tenant-Slug", "nobody")
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("ResolvedTenant_NoCredential_Unauthorized", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/roles", nil)
		req.Header.Set("X-Tenant-Slug", "acme")
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Health_BypassesTenantResolution", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}
