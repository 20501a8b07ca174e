package app

import (
	"fmt"

	authzDomain "github.com/allisson/authz/internal/authz/domain"
	authzHTTP "github.com/allisson/authz/internal/authz/http"
	authzRepository "github.com/allisson/authz/internal/authz/repository"
	authzService "github.com/allisson/authz/internal/authz/service"
	authzUseCase "github.com/allisson/authz/internal/authz/usecase"
	"github.com/allisson/authz/internal/cache"
)

// CustomRoleRepository returns the custom role repository based on database driver.
func (c *Container) CustomRoleRepository() (authzUseCase.CustomRoleRepository, error) {
	var err error
	c.customRoleRepositoryInit.Do(func() {
		c.customRoleRepository, err = c.initCustomRoleRepository()
		if err != nil {
			c.initErrors["customRoleRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["customRoleRepository"]; exists {
		return nil, storedErr
	}
	return c.customRoleRepository, nil
}

// MembershipRepository returns the membership repository based on database driver.
func (c *Container) MembershipRepository() (authzUseCase.MembershipRepository, error) {
	var err error
	c.membershipRepositoryInit.Do(func() {
		c.membershipRepository, err = c.initMembershipRepository()
		if err != nil {
			c.initErrors["membershipRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["membershipRepository"]; exists {
		return nil, storedErr
	}
	return c.membershipRepository, nil
}

// RoleVersionRepository returns the fingerprint ledger repository based on database driver.
func (c *Container) RoleVersionRepository() (authzUseCase.RoleVersionRepository, error) {
	var err error
	c.roleVersionRepositoryInit.Do(func() {
		c.roleVersionRepository, err = c.initRoleVersionRepository()
		if err != nil {
			c.initErrors["roleVersionRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["roleVersionRepository"]; exists {
		return nil, storedErr
	}
	return c.roleVersionRepository, nil
}

// HashService returns the capability fingerprint hashing service.
func (c *Container) HashService() authzService.HashService {
	c.hashServiceInit.Do(func() {
		c.hashService = authzService.NewHashService()
	})
	return c.hashService
}

// CredentialService returns the credential signing service.
func (c *Container) CredentialService() (authzService.CredentialService, error) {
	var err error
	c.credentialServiceInit.Do(func() {
		if c.config.CredentialSigningKey == "" {
			err = fmt.Errorf("CREDENTIAL_SIGNING_KEY is required")
			c.initErrors["credentialService"] = err
			return
		}
		c.credentialService = authzService.NewCredentialService(c.config.CredentialSigningKey)
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["credentialService"]; exists {
		return nil, storedErr
	}
	return c.credentialService, nil
}

// FingerprintCache returns the bounded TTL cache for ledger heads.
func (c *Container) FingerprintCache() *cache.FingerprintCache[authzDomain.RoleVersion] {
	c.fingerprintCacheInit.Do(func() {
		c.fingerprintCache = cache.New[authzDomain.RoleVersion](
			c.config.CapHashCacheTTL,
			c.config.CapHashCacheSize,
		)
	})
	return c.fingerprintCache
}

// CapabilityHashUseCase returns the fingerprint ledger use case.
func (c *Container) CapabilityHashUseCase() (authzUseCase.CapabilityHashUseCase, error) {
	var err error
	c.capabilityHashUCInit.Do(func() {
		c.capabilityHashUC, err = c.initCapabilityHashUseCase()
		if err != nil {
			c.initErrors["capabilityHashUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["capabilityHashUseCase"]; exists {
		return nil, storedErr
	}
	return c.capabilityHashUC, nil
}

// RoleUseCase returns the role management use case.
func (c *Container) RoleUseCase() (authzUseCase.RoleUseCase, error) {
	var err error
	c.roleUCInit.Do(func() {
		c.roleUC, err = c.initRoleUseCase()
		if err != nil {
			c.initErrors["roleUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["roleUseCase"]; exists {
		return nil, storedErr
	}
	return c.roleUC, nil
}

// MembershipUseCase returns the membership use case.
func (c *Container) MembershipUseCase() (authzUseCase.MembershipUseCase, error) {
	var err error
	c.membershipUCInit.Do(func() {
		c.membershipUC, err = c.initMembershipUseCase()
		if err != nil {
			c.initErrors["membershipUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["membershipUseCase"]; exists {
		return nil, storedErr
	}
	return c.membershipUC, nil
}

// CredentialUseCase returns the credential issuance and validation use case.
func (c *Container) CredentialUseCase() (authzUseCase.CredentialUseCase, error) {
	var err error
	c.credentialUCInit.Do(func() {
		c.credentialUC, err = c.initCredentialUseCase()
		if err != nil {
			c.initErrors["credentialUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["credentialUseCase"]; exists {
		return nil, storedErr
	}
	return c.credentialUC, nil
}

// RoleHandler returns the HTTP handler for role management operations.
func (c *Container) RoleHandler() (*authzHTTP.RoleHandler, error) {
	var err error
	c.roleHandlerInit.Do(func() {
		c.roleHandler, err = c.initRoleHandler()
		if err != nil {
			c.initErrors["roleHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["roleHandler"]; exists {
		return nil, storedErr
	}
	return c.roleHandler, nil
}

// CredentialHandler returns the HTTP handler for credential issuance.
func (c *Container) CredentialHandler() (*authzHTTP.CredentialHandler, error) {
	var err error
	c.credentialHandlerInit.Do(func() {
		c.credentialHandler, err = c.initCredentialHandler()
		if err != nil {
			c.initErrors["credentialHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["credentialHandler"]; exists {
		return nil, storedErr
	}
	return c.credentialHandler, nil
}

// CapabilityHashHandler returns the HTTP handler for fingerprint ledger operations.
func (c *Container) CapabilityHashHandler() (*authzHTTP.CapabilityHashHandler, error) {
	var err error
	c.capabilityHashHandlerInit.Do(func() {
		c.capabilityHashHandler, err = c.initCapabilityHashHandler()
		if err != nil {
			c.initErrors["capabilityHashHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["capabilityHashHandler"]; exists {
		return nil, storedErr
	}
	return c.capabilityHashHandler, nil
}

// initCustomRoleRepository creates the custom role repository based on the database driver.
func (c *Container) initCustomRoleRepository() (authzUseCase.CustomRoleRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for custom role repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return authzRepository.NewPostgreSQLCustomRoleRepository(db), nil
	case "mysql":
		return authzRepository.NewMySQLCustomRoleRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initMembershipRepository creates the membership repository based on the database driver.
func (c *Container) initMembershipRepository() (authzUseCase.MembershipRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for membership repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return authzRepository.NewPostgreSQLMembershipRepository(db), nil
	case "mysql":
		return authzRepository.NewMySQLMembershipRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initRoleVersionRepository creates the ledger repository based on the database driver.
func (c *Container) initRoleVersionRepository() (authzUseCase.RoleVersionRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for role version repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return authzRepository.NewPostgreSQLRoleVersionRepository(db), nil
	case "mysql":
		return authzRepository.NewMySQLRoleVersionRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initCapabilityHashUseCase creates the fingerprint ledger use case with all its dependencies.
func (c *Container) initCapabilityHashUseCase() (authzUseCase.CapabilityHashUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for capability hash use case: %w", err)
	}

	customRoleRepo, err := c.CustomRoleRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get custom role repository for capability hash use case: %w", err)
	}

	roleVersionRepo, err := c.RoleVersionRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get role version repository for capability hash use case: %w", err)
	}

	baseUseCase := authzUseCase.NewCapabilityHashUseCase(
		txManager,
		customRoleRepo,
		roleVersionRepo,
		c.HashService(),
		c.Catalog(),
		c.FingerprintCache(),
	)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for capability hash use case: %w", err)
		}
		return authzUseCase.NewCapabilityHashUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initRoleUseCase creates the role use case with all its dependencies.
func (c *Container) initRoleUseCase() (authzUseCase.RoleUseCase, error) {
	customRoleRepo, err := c.CustomRoleRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get custom role repository for role use case: %w", err)
	}

	hashUseCase, err := c.CapabilityHashUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get capability hash use case for role use case: %w", err)
	}

	baseUseCase := authzUseCase.NewRoleUseCase(customRoleRepo, hashUseCase, c.Catalog())

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for role use case: %w", err)
		}
		return authzUseCase.NewRoleUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initMembershipUseCase creates the membership use case with all its dependencies.
func (c *Container) initMembershipUseCase() (authzUseCase.MembershipUseCase, error) {
	membershipRepo, err := c.MembershipRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get membership repository for membership use case: %w", err)
	}

	customRoleRepo, err := c.CustomRoleRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get custom role repository for membership use case: %w", err)
	}

	baseUseCase := authzUseCase.NewMembershipUseCase(membershipRepo, customRoleRepo, c.Catalog())

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for membership use case: %w", err)
		}
		return authzUseCase.NewMembershipUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initCredentialUseCase creates the credential use case with all its dependencies.
func (c *Container) initCredentialUseCase() (authzUseCase.CredentialUseCase, error) {
	membershipRepo, err := c.MembershipRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get membership repository for credential use case: %w", err)
	}

	roleUseCase, err := c.RoleUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get role use case for credential use case: %w", err)
	}

	hashUseCase, err := c.CapabilityHashUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get capability hash use case for credential use case: %w", err)
	}

	credentialService, err := c.CredentialService()
	if err != nil {
		return nil, fmt.Errorf("failed to get credential service for credential use case: %w", err)
	}

	baseUseCase := authzUseCase.NewCredentialUseCase(
		c.config,
		membershipRepo,
		roleUseCase,
		hashUseCase,
		credentialService,
	)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for credential use case: %w", err)
		}
		return authzUseCase.NewCredentialUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initRoleHandler creates the role handler with all its dependencies.
func (c *Container) initRoleHandler() (*authzHTTP.RoleHandler, error) {
	roleUseCase, err := c.RoleUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get role use case for role handler: %w", err)
	}

	return authzHTTP.NewRoleHandler(roleUseCase, c.Catalog(), c.Logger()), nil
}

// initCredentialHandler creates the credential handler with all its dependencies.
func (c *Container) initCredentialHandler() (*authzHTTP.CredentialHandler, error) {
	credentialUseCase, err := c.CredentialUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get credential use case for credential handler: %w", err)
	}

	return authzHTTP.NewCredentialHandler(credentialUseCase, c.Logger()), nil
}

// initCapabilityHashHandler creates the capability hash handler with all its dependencies.
func (c *Container) initCapabilityHashHandler() (*authzHTTP.CapabilityHashHandler, error) {
	hashUseCase, err := c.CapabilityHashUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get capability hash use case for capability hash handler: %w", err)
	}

	return authzHTTP.NewCapabilityHashHandler(hashUseCase, c.Logger()), nil
}
