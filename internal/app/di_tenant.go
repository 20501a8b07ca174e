package app

import (
	"fmt"

	tenantRepository "github.com/allisson/authz/internal/tenant/repository"
	tenantUseCase "github.com/allisson/authz/internal/tenant/usecase"
)

// TenantRepository returns the tenant repository based on database driver.
func (c *Container) TenantRepository() (tenantUseCase.TenantRepository, error) {
	var err error
	c.tenantRepositoryInit.Do(func() {
		c.tenantRepository, err = c.initTenantRepository()
		if err != nil {
			c.initErrors["tenantRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["tenantRepository"]; exists {
		return nil, storedErr
	}
	return c.tenantRepository, nil
}

// TenantUseCase returns the tenant directory use case.
func (c *Container) TenantUseCase() (tenantUseCase.TenantUseCase, error) {
	var err error
	c.tenantUseCaseInit.Do(func() {
		c.tenantUC, err = c.initTenantUseCase()
		if err != nil {
			c.initErrors["tenantUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["tenantUseCase"]; exists {
		return nil, storedErr
	}
	return c.tenantUC, nil
}

// initTenantRepository creates the tenant repository based on the database driver.
func (c *Container) initTenantRepository() (tenantUseCase.TenantRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for tenant repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return tenantRepository.NewPostgreSQLTenantRepository(db), nil
	case "mysql":
		return tenantRepository.NewMySQLTenantRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initTenantUseCase creates the tenant use case with all its dependencies.
func (c *Container) initTenantUseCase() (tenantUseCase.TenantUseCase, error) {
	tenantRepo, err := c.TenantRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get tenant repository for tenant use case: %w", err)
	}

	baseUseCase := tenantUseCase.NewTenantUseCase(tenantRepo)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for tenant use case: %w", err)
		}
		return tenantUseCase.NewTenantUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}
