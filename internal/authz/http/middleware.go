package http

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	authzDomain "github.com/allisson/authz/internal/authz/domain"
	authzUseCase "github.com/allisson/authz/internal/authz/usecase"
	apperrors "github.com/allisson/authz/internal/errors"
	"github.com/allisson/authz/internal/httputil"
	tenantHTTP "github.com/allisson/authz/internal/tenant/http"
)

// AuthzGate validates the request's bearer credential end to end: signature,
// expiry, tenant binding and fingerprint freshness against the resolved
// tenant's ledger head.
//
// The credential is validated against the tenant the request resolved to,
// never the tenant named inside the credential: a credential minted for one
// tenant is rejected with 401 on any other tenant's requests.
//
// A credential minted under a superseded permission model is rejected with
// 401 and the machine-readable code "permission_model_changed", distinct from
// a missing or malformed credential, so clients know to re-authenticate
// rather than treat it as a login failure.
//
// Validated claims are stored in the request context for RequireCapability
// and handlers. MUST be used after the tenant resolver.
func AuthzGate(
	credentialUseCase authzUseCase.CredentialUseCase,
	logger *slog.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenant, ok := tenantHTTP.GetTenant(c.Request.Context())
		if !ok || tenant == nil {
			logger.Debug("credential gate: no resolved tenant in context")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			logger.Debug("credential gate: missing or malformed authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		claims, err := credentialUseCase.Authenticate(c.Request.Context(), token, tenant.ID)
		if err != nil {
			logger.Debug("credential gate: validation failed",
				slog.String("error", err.Error()))
			httputil.HandleErrorGin(c, err, logger)
			c.Abort()
			return
		}

		ctx := WithClaims(c.Request.Context(), claims)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// RequireCapability authorizes the request against the credential's embedded
// capability list. The gate already proved the list current via the
// fingerprint check, so no role table is consulted here.
//
// MUST be used after AuthzGate.
func RequireCapability(
	capability authzDomain.Capability,
	logger *slog.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := GetClaims(c.Request.Context())
		if !ok || claims == nil {
			logger.Debug("capability check: no validated claims in context")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		if !authzDomain.ContainsCapability(claims.Capabilities, capability) {
			logger.Debug("capability check: insufficient capabilities",
				slog.String("user_id", claims.UserID.String()),
				slog.String("role_key", string(claims.RoleKey)),
				slog.String("capability", string(capability)))
			httputil.HandleErrorGin(c, apperrors.ErrForbidden, logger)
			c.Abort()
			return
		}

		c.Next()
	}
}

// bearerToken extracts the token from an Authorization header value.
// The "bearer" scheme is matched case-insensitively.
func bearerToken(header string) (string, bool) {
	const bearerPrefix = "bearer "
	if len(header) <= len(bearerPrefix) ||
		!strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}

	token := strings.TrimSpace(header[len(bearerPrefix):])
	if token == "" {
		return "", false
	}
	return token, true
}
