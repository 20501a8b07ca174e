package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authzDomain "github.com/allisson/authz/internal/authz/domain"
	"github.com/allisson/authz/internal/authz/http/dto"
	authzUseCase "github.com/allisson/authz/internal/authz/usecase"
	"github.com/allisson/authz/internal/httputil"
	tenantDomain "github.com/allisson/authz/internal/tenant/domain"
	tenantHTTP "github.com/allisson/authz/internal/tenant/http"
	customValidation "github.com/allisson/authz/internal/validation"
)

// CredentialHandler handles HTTP requests for credential issuance.
type CredentialHandler struct {
	credentialUseCase authzUseCase.CredentialUseCase
	logger            *slog.Logger
}

// NewCredentialHandler creates a new credential handler with required dependencies.
func NewCredentialHandler(
	credentialUseCase authzUseCase.CredentialUseCase,
	logger *slog.Logger,
) *CredentialHandler {
	return &CredentialHandler{
		credentialUseCase: credentialUseCase,
		logger:            logger,
	}
}

// IssueHandler mints a credential for a member of the resolved tenant,
// embedding the member's resolved capabilities and the tenant's current
// capability fingerprint. Identity verification (password, SSO) happens
// upstream; this endpoint trusts the caller's user_id.
// POST /v1/credentials - Returns 201 Created with the signed credential.
func (h *CredentialHandler) IssueHandler(c *gin.Context) {
	tenant, ok := tenantHTTP.GetTenant(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, tenantDomain.ErrTenantNotFound, h.logger)
		return
	}

	var req dto.IssueCredentialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		httputil.HandleValidationErrorGin(c,
			fmt.Errorf("invalid user_id format: must be a valid UUID"),
			h.logger)
		return
	}

	output, err := h.credentialUseCase.Issue(c.Request.Context(), &authzDomain.IssueCredentialInput{
		UserID:   userID,
		TenantID: tenant.ID,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapCredentialToResponse(output))
}
