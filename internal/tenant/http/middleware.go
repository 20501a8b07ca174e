package http

import (
	"log/slog"
	"net"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/allisson/authz/internal/config"
	apperrors "github.com/allisson/authz/internal/errors"
	"github.com/allisson/authz/internal/httputil"
	tenantDomain "github.com/allisson/authz/internal/tenant/domain"
	tenantUseCase "github.com/allisson/authz/internal/tenant/usecase"
)

// TenantResolver resolves the request's tenant from the host's subdomain, or
// from the configured slug header when the host has no subdomain.
//
// Resolution never fails the request: a request with no slug, or a slug no
// tenant owns, proceeds unresolved and downstream middleware decides whether a
// tenant is required. A lookup infrastructure failure is the one hard error.
func TenantResolver(
	useCase tenantUseCase.TenantUseCase,
	cfg *config.Config,
	logger *slog.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		slug := slugFromHost(c.Request.Host, cfg.BaseDomain)
		if slug == "" {
			slug = strings.TrimSpace(c.GetHeader(cfg.TenantSlugHeader))
		}
		if slug == "" {
			c.Next()
			return
		}

		tenant, err := useCase.Resolve(c.Request.Context(), slug)
		if err != nil {
			if apperrors.Is(err, tenantDomain.ErrTenantNotFound) {
				logger.Debug("tenant resolution miss",
					slog.String("slug", slug))
				c.Next()
				return
			}
			httputil.HandleErrorGin(c, err, logger)
			c.Abort()
			return
		}

		ctx := WithTenant(c.Request.Context(), tenant)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireTenant rejects requests that reached a tenant-scoped route without a
// resolved tenant. An unresolved tenant surfaces as not found rather than
// unauthorized so probing for valid slugs learns nothing extra.
func RequireTenant(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := GetTenant(c.Request.Context()); !ok {
			httputil.HandleErrorGin(c, tenantDomain.ErrTenantNotFound, logger)
			c.Abort()
			return
		}
		c.Next()
	}
}

// slugFromHost extracts the tenant slug from the request host.
//
// With a configured base domain, "acme.example.com" under base "example.com"
// yields "acme" and a host equal to the base domain yields nothing. Without
// one, any host of three or more labels yields its leftmost label. A port, if
// present, is ignored.
func slugFromHost(host, baseDomain string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.ToLower(strings.TrimSuffix(host, "."))

	if baseDomain != "" {
		suffix := "." + strings.ToLower(baseDomain)
		if sub, found := strings.CutSuffix(host, suffix); found && sub != "" && !strings.Contains(sub, ".") {
			return sub
		}
		return ""
	}

	labels := strings.Split(host, ".")
	if len(labels) >= 3 && labels[0] != "" {
		return labels[0]
	}
	return ""
}
