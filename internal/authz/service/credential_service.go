package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	authzDomain "github.com/allisson/authz/internal/authz/domain"
	apperrors "github.com/allisson/authz/internal/errors"
)

// jwtClaims is the wire form of credential claims. sub, tid, roleKey, capHash
// and exp are the contract with credential consumers; caps carries the
// session's resolved grant set so handlers never re-query role tables.
type jwtClaims struct {
	TenantID       string   `json:"tid"`
	RoleKey        string   `json:"roleKey"`
	CapabilityHash string   `json:"capHash"`
	Capabilities   []string `json:"caps"`
	jwt.RegisteredClaims
}

// credentialService implements CredentialService with HMAC-SHA256 signatures.
type credentialService struct {
	signingKey []byte
}

// Sign mints a signed credential from the given claims.
func (s *credentialService) Sign(claims *authzDomain.CredentialClaims) (string, error) {
	caps := make([]string, len(claims.Capabilities))
	for i, capability := range claims.Capabilities {
		caps[i] = string(capability)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwtClaims{
		TenantID:       claims.TenantID.String(),
		RoleKey:        string(claims.RoleKey),
		CapabilityHash: claims.CapabilityHash,
		Capabilities:   caps,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(claims.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(claims.ExpiresAt),
		},
	})

	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", apperrors.Wrap(err, "failed to sign credential")
	}
	return signed, nil
}

// Parse verifies the token's signature and expiry and returns its claims.
func (s *credentialService) Parse(tokenString string) (*authzDomain.CredentialClaims, error) {
	var claims jwtClaims

	token, err := jwt.ParseWithClaims(
		tokenString,
		&claims,
		func(t *jwt.Token) (any, error) {
			return s.signingKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return nil, authzDomain.ErrInvalidCredential
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, authzDomain.ErrInvalidCredential
	}

	tenantID, err := uuid.Parse(claims.TenantID)
	if err != nil {
		return nil, authzDomain.ErrInvalidCredential
	}

	caps := make([]authzDomain.Capability, len(claims.Capabilities))
	for i, capability := range claims.Capabilities {
		caps[i] = authzDomain.Capability(capability)
	}

	out := &authzDomain.CredentialClaims{
		UserID:         userID,
		TenantID:       tenantID,
		RoleKey:        authzDomain.RoleKey(claims.RoleKey),
		CapabilityHash: claims.CapabilityHash,
		Capabilities:   caps,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}

	return out, nil
}

// NewCredentialService creates a CredentialService signing with HMAC-SHA256.
func NewCredentialService(signingKey string) CredentialService {
	return &credentialService{signingKey: []byte(signingKey)}
}

// Now returns the current UTC time truncated to seconds, the resolution of
// JWT numeric dates. Mint paths use this so claims round-trip exactly.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}
