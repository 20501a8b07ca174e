package dto

import (
	"time"

	authzDomain "github.com/allisson/authz/internal/authz/domain"
)

// RoleResponse represents a role in API responses. Built-in tiers carry no
// timestamps; they exist by catalog, not by row.
type RoleResponse struct {
	Key          string     `json:"key"`
	Name         string     `json:"name,omitempty"`
	Capabilities []string   `json:"capabilities"`
	Builtin      bool       `json:"builtin"`
	IsSystem     bool       `json:"is_system,omitempty"`
	CreatedAt    *time.Time `json:"created_at,omitempty"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
}

// RoleListResponse wraps the role collection for a tenant: the five built-in
// tiers followed by the tenant's custom roles.
type RoleListResponse struct {
	Roles []RoleResponse `json:"roles"`
}

// CredentialResponse carries a freshly minted credential.
type CredentialResponse struct {
	Token          string    `json:"token"`
	RoleKey        string    `json:"role_key"`
	CapabilityHash string    `json:"capability_hash"`
	Capabilities   []string  `json:"capabilities"`
	ExpiresAt      time.Time `json:"expires_at"`
}

// CapabilityHashResponse represents a ledger entry.
type CapabilityHashResponse struct {
	Version        int64     `json:"version"`
	CapabilityHash string    `json:"capability_hash"`
	CreatedAt      time.Time `json:"created_at"`
}

// CapabilityHashHistoryResponse wraps a tenant's ledger entries, newest first.
type CapabilityHashHistoryResponse struct {
	Versions []CapabilityHashResponse `json:"versions"`
}

// MapCustomRoleToResponse converts a custom role to its API representation.
func MapCustomRoleToResponse(role *authzDomain.CustomRole) RoleResponse {
	createdAt := role.CreatedAt
	updatedAt := role.UpdatedAt
	return RoleResponse{
		Key:          string(role.Key),
		Name:         role.Name,
		Capabilities: capabilitiesToStrings(role.Capabilities),
		IsSystem:     role.IsSystem,
		CreatedAt:    &createdAt,
		UpdatedAt:    &updatedAt,
	}
}

// MapBuiltinToResponse converts a built-in tier and its grant set to the API
// representation.
func MapBuiltinToResponse(key authzDomain.RoleKey, grants []authzDomain.Capability) RoleResponse {
	return RoleResponse{
		Key:          string(key),
		Capabilities: capabilitiesToStrings(grants),
		Builtin:      true,
	}
}

// MapRoleVersionToResponse converts a ledger entry to its API representation.
func MapRoleVersionToResponse(version *authzDomain.RoleVersion) CapabilityHashResponse {
	return CapabilityHashResponse{
		Version:        version.Version,
		CapabilityHash: version.CapabilityHash,
		CreatedAt:      version.CreatedAt,
	}
}

// MapCredentialToResponse converts an issued credential to its API representation.
func MapCredentialToResponse(output *authzDomain.IssueCredentialOutput) CredentialResponse {
	return CredentialResponse{
		Token:          output.Token,
		RoleKey:        string(output.Claims.RoleKey),
		CapabilityHash: output.Claims.CapabilityHash,
		Capabilities:   capabilitiesToStrings(output.Claims.Capabilities),
		ExpiresAt:      output.Claims.ExpiresAt,
	}
}

func capabilitiesToStrings(caps []authzDomain.Capability) []string {
	out := make([]string, len(caps))
	for i, capability := range caps {
		out[i] = string(capability)
	}
	return out
}
