package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/allisson/authz/internal/authz/http/dto"
	authzUseCase "github.com/allisson/authz/internal/authz/usecase"
	"github.com/allisson/authz/internal/httputil"
	tenantDomain "github.com/allisson/authz/internal/tenant/domain"
	tenantHTTP "github.com/allisson/authz/internal/tenant/http"
)

const maxHistoryLimit = 100

// CapabilityHashHandler handles HTTP requests for the capability fingerprint
// ledger.
type CapabilityHashHandler struct {
	hashUseCase authzUseCase.CapabilityHashUseCase
	logger      *slog.Logger
}

// NewCapabilityHashHandler creates a new capability hash handler with required
// dependencies.
func NewCapabilityHashHandler(
	hashUseCase authzUseCase.CapabilityHashUseCase,
	logger *slog.Logger,
) *CapabilityHashHandler {
	return &CapabilityHashHandler{
		hashUseCase: hashUseCase,
		logger:      logger,
	}
}

// CurrentHandler returns the resolved tenant's ledger head, bootstrapping
// version 1 for a tenant with no entries.
// GET /v1/capability-hash - Requires the role.read capability.
func (h *CapabilityHashHandler) CurrentHandler(c *gin.Context) {
	tenant, ok := tenantHTTP.GetTenant(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, tenantDomain.ErrTenantNotFound, h.logger)
		return
	}

	head, err := h.hashUseCase.Current(c.Request.Context(), tenant.ID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapRoleVersionToResponse(head))
}

// HistoryHandler returns the resolved tenant's most recent ledger entries,
// newest first. The optional limit query parameter caps the page size.
// GET /v1/capability-hash/history - Requires the role.read capability.
func (h *CapabilityHashHandler) HistoryHandler(c *gin.Context) {
	tenant, ok := tenantHTTP.GetTenant(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, tenantDomain.ErrTenantNotFound, h.logger)
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			httputil.HandleValidationErrorGin(c,
				fmt.Errorf("invalid limit: must be a positive integer"),
				h.logger)
			return
		}
		limit = min(parsed, maxHistoryLimit)
	}

	versions, err := h.hashUseCase.History(c.Request.Context(), tenant.ID, limit)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	response := dto.CapabilityHashHistoryResponse{
		Versions: make([]dto.CapabilityHashResponse, 0, len(versions)),
	}
	for i := range versions {
		response.Versions = append(response.Versions, dto.MapRoleVersionToResponse(&versions[i]))
	}

	c.JSON(http.StatusOK, response)
}

// RegenerateHandler forces a fingerprint recompute for the resolved tenant.
// Unchanged fingerprints are a no-op returning the existing head. This exists
// for operators recovering from a regeneration that failed after a role
// mutation committed.
// POST /v1/capability-hash/regenerate - Requires the role.manage capability.
func (h *CapabilityHashHandler) RegenerateHandler(c *gin.Context) {
	tenant, ok := tenantHTTP.GetTenant(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, tenantDomain.ErrTenantNotFound, h.logger)
		return
	}

	head, err := h.hashUseCase.Regenerate(c.Request.Context(), tenant.ID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapRoleVersionToResponse(head))
}
