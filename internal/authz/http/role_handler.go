package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	authzDomain "github.com/allisson/authz/internal/authz/domain"
	"github.com/allisson/authz/internal/authz/http/dto"
	authzUseCase "github.com/allisson/authz/internal/authz/usecase"
	"github.com/allisson/authz/internal/httputil"
	tenantDomain "github.com/allisson/authz/internal/tenant/domain"
	tenantHTTP "github.com/allisson/authz/internal/tenant/http"
	customValidation "github.com/allisson/authz/internal/validation"
)

// RoleHandler handles HTTP requests for role management. All routes are
// tenant-scoped: the tenant resolver must have run.
type RoleHandler struct {
	roleUseCase authzUseCase.RoleUseCase
	catalog     authzDomain.Catalog
	logger      *slog.Logger
}

// NewRoleHandler creates a new role handler with required dependencies.
func NewRoleHandler(
	roleUseCase authzUseCase.RoleUseCase,
	catalog authzDomain.Catalog,
	logger *slog.Logger,
) *RoleHandler {
	return &RoleHandler{
		roleUseCase: roleUseCase,
		catalog:     catalog,
		logger:      logger,
	}
}

// CreateHandler creates a custom role and regenerates the tenant fingerprint.
// POST /v1/roles - Requires the role.manage capability.
// Returns 201 Created with the stored role.
func (h *RoleHandler) CreateHandler(c *gin.Context) {
	tenant, ok := tenantHTTP.GetTenant(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, tenantDomain.ErrTenantNotFound, h.logger)
		return
	}

	var req dto.CreateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	role, err := h.roleUseCase.Create(c.Request.Context(), tenant.ID, &authzDomain.CreateCustomRoleInput{
		Key:          req.Key,
		Name:         req.Name,
		Capabilities: req.Capabilities,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapCustomRoleToResponse(role))
}

// GetHandler retrieves a single role by key: a built-in tier or a custom role.
// GET /v1/roles/:key - Requires the role.read capability.
func (h *RoleHandler) GetHandler(c *gin.Context) {
	tenant, ok := tenantHTTP.GetTenant(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, tenantDomain.ErrTenantNotFound, h.logger)
		return
	}

	key := authzDomain.RoleKey(c.Param("key"))
	if grants, isBuiltin := h.catalog.BuiltinGrants(key); isBuiltin {
		c.JSON(http.StatusOK, dto.MapBuiltinToResponse(key, grants))
		return
	}

	role, err := h.roleUseCase.Get(c.Request.Context(), tenant.ID, key)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapCustomRoleToResponse(role))
}

// UpdateHandler updates a custom role and regenerates the tenant fingerprint.
// PUT /v1/roles/:key - Requires the role.manage capability.
func (h *RoleHandler) UpdateHandler(c *gin.Context) {
	tenant, ok := tenantHTTP.GetTenant(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, tenantDomain.ErrTenantNotFound, h.logger)
		return
	}

	var req dto.UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	key := authzDomain.RoleKey(c.Param("key"))
	role, err := h.roleUseCase.Update(c.Request.Context(), tenant.ID, key, &authzDomain.UpdateCustomRoleInput{
		Name:         req.Name,
		Capabilities: req.Capabilities,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapCustomRoleToResponse(role))
}

// DeleteHandler deletes a custom role and regenerates the tenant fingerprint.
// DELETE /v1/roles/:key - Requires the role.manage capability.
// Returns 204 No Content.
func (h *RoleHandler) DeleteHandler(c *gin.Context) {
	tenant, ok := tenantHTTP.GetTenant(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, tenantDomain.ErrTenantNotFound, h.logger)
		return
	}

	key := authzDomain.RoleKey(c.Param("key"))
	if err := h.roleUseCase.Delete(c.Request.Context(), tenant.ID, key); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}

// ListHandler lists the tenant's full role surface: the five built-in tiers
// followed by the tenant's custom roles.
// GET /v1/roles - Requires the role.read capability.
func (h *RoleHandler) ListHandler(c *gin.Context) {
	tenant, ok := tenantHTTP.GetTenant(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, tenantDomain.ErrTenantNotFound, h.logger)
		return
	}

	offset, limit, err := httputil.ParsePagination(c)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	customRoles, err := h.roleUseCase.List(c.Request.Context(), tenant.ID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	roles := make([]dto.RoleResponse, 0, len(h.catalog.BuiltinKeys())+len(customRoles))
	for _, key := range h.catalog.BuiltinKeys() {
		grants, _ := h.catalog.BuiltinGrants(key)
		roles = append(roles, dto.MapBuiltinToResponse(key, grants))
	}
	for i := range customRoles {
		roles = append(roles, dto.MapCustomRoleToResponse(&customRoles[i]))
	}

	// The full surface is five built-ins plus the tenant's customs, so paging
	// happens over the composed slice.
	if offset >= len(roles) {
		roles = []dto.RoleResponse{}
	} else {
		roles = roles[offset:min(offset+limit, len(roles))]
	}

	c.JSON(http.StatusOK, dto.RoleListResponse{Roles: roles})
}
