package service

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	authzDomain "github.com/allisson/authz/internal/authz/domain"
)

// hashService implements HashService using canonical JSON and SHA-256.
type hashService struct{}

// ComputeHash returns the hex-encoded SHA-256 digest of the canonical
// serialization of roleMap.
//
// Canonical form: each capability list is de-duplicated and sorted, then the
// whole map is marshaled with encoding/json, which emits object keys in
// sorted order. Two invocations over equal maps therefore produce identical
// bytes and identical digests regardless of map iteration order or the order
// mutations were applied in.
func (h *hashService) ComputeHash(roleMap map[authzDomain.RoleKey][]authzDomain.Capability) string {
	canonical := make(map[authzDomain.RoleKey][]authzDomain.Capability, len(roleMap))
	for key, caps := range roleMap {
		canonical[key] = authzDomain.NormalizeCapabilities(caps)
	}

	// json.Marshal on a map cannot fail for string keys and string slice values.
	encoded, _ := json.Marshal(canonical)

	digest := sha256.Sum256(encoded)
	return hex.EncodeToString(digest[:])
}

// NewHashService creates a HashService using canonical JSON encoding and
// SHA-256 digests.
func NewHashService() HashService {
	return &hashService{}
}
