package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authzDomain "github.com/allisson/authz/internal/authz/domain"
	authzHTTP "github.com/allisson/authz/internal/authz/http"
	authzUseCase "github.com/allisson/authz/internal/authz/usecase"
	"github.com/allisson/authz/internal/config"
	tenantHTTP "github.com/allisson/authz/internal/tenant/http"
	tenantUseCase "github.com/allisson/authz/internal/tenant/usecase"
)

// Routes bundles everything route registration needs. The server owns the
// middleware order; handlers own their request semantics.
type Routes struct {
	Config                *config.Config
	TenantUseCase         tenantUseCase.TenantUseCase
	CredentialUseCase     authzUseCase.CredentialUseCase
	RoleHandler           *authzHTTP.RoleHandler
	CredentialHandler     *authzHTTP.CredentialHandler
	CapabilityHashHandler *authzHTTP.CapabilityHashHandler
}

// Server represents the API HTTP server.
type Server struct {
	server *http.Server
	db     *sql.DB
	logger *slog.Logger
	routes *Routes
}

// NewServer creates a new HTTP server. The db handle is only used for
// readiness checks; a nil db reports not ready.
func NewServer(
	db *sql.DB,
	host string,
	port int,
	logger *slog.Logger,
) *Server {
	return &Server{
		db:     db,
		logger: logger,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// RegisterRoutes attaches the API route table. Must be called before Start.
func (s *Server) RegisterRoutes(routes *Routes) {
	s.routes = routes
}

// buildRouter assembles the gin engine: recovery, request ids, logging,
// optional CORS, tenant resolution, then the route table.
func (s *Server) buildRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	if s.routes == nil {
		return router
	}

	cfg := s.routes.Config

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	router.Use(tenantHTTP.TenantResolver(s.routes.TenantUseCase, cfg, s.logger))

	v1 := router.Group("/v1")
	v1.Use(tenantHTTP.RequireTenant(s.logger))

	// Credential issuance carries no credential yet; it is the entry point.
	v1.POST("/credentials", s.routes.CredentialHandler.IssueHandler)

	// Everything below requires a fresh credential. Staleness is checked by
	// the gate on every request; capability checks read the credential's own
	// embedded list.
	guarded := v1.Group("")
	guarded.Use(authzHTTP.AuthzGate(s.routes.CredentialUseCase, s.logger))

	reads := guarded.Group("")
	reads.Use(authzHTTP.RequireCapability(authzDomain.RoleRead, s.logger))
	reads.GET("/roles", s.routes.RoleHandler.ListHandler)
	reads.GET("/roles/:key", s.routes.RoleHandler.GetHandler)
	reads.GET("/capability-hash", s.routes.CapabilityHashHandler.CurrentHandler)
	reads.GET("/capability-hash/history", s.routes.CapabilityHashHandler.HistoryHandler)

	manage := guarded.Group("")
	manage.Use(authzHTTP.RequireCapability(authzDomain.RoleManage, s.logger))
	if cfg.RateLimitEnabled {
		manage.Use(authzHTTP.RateLimitMiddleware(
			cfg.RateLimitRequestsPerSec,
			cfg.RateLimitBurst,
			s.logger,
		))
	}
	manage.POST("/roles", s.routes.RoleHandler.CreateHandler)
	manage.PUT("/roles/:key", s.routes.RoleHandler.UpdateHandler)
	manage.DELETE("/roles/:key", s.routes.RoleHandler.DeleteHandler)
	manage.POST("/capability-hash/regenerate", s.routes.CapabilityHashHandler.RegenerateHandler)

	return router
}

// healthHandler reports process liveness.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports whether the server can serve traffic, checking the
// database connection.
func (s *Server) readinessHandler(c *gin.Context) {
	components := gin.H{"database": "ok"}

	ready := true
	if s.db == nil {
		components["database"] = "error"
		ready = false
	} else {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := s.db.PingContext(ctx); err != nil {
			s.logger.Error("readiness database ping failed", slog.Any("error", err))
			components["database"] = "error"
			ready = false
		}
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": components,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ready",
		"components": components,
	})
}

// GetHandler returns the assembled http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.buildRouter()
}

// Start starts the HTTP server.
func (s *Server) Start(ctx context.Context) error {
	s.server.Handler = s.buildRouter()

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}
