// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/allisson/authz/internal/validation"
)

// CreateRoleRequest contains the parameters for creating a custom role.
type CreateRoleRequest struct {
	Key          string   `json:"key"`
	Name         string   `json:"name"`
	Capabilities []string `json:"capabilities"`
}

// Validate checks if the create role request is valid. Capability identifiers
// are checked for format only; catalog membership is enforced by the use case.
func (r *CreateRoleRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Key,
			validation.Required,
			customValidation.RoleKey,
		),
		validation.Field(&r.Name,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 255),
		),
		validation.Field(&r.Capabilities,
			validation.Each(customValidation.CapabilityIdentifier),
		),
	)
}

// UpdateRoleRequest contains the parameters for updating a custom role.
// The role key comes from the URL and is immutable.
type UpdateRoleRequest struct {
	Name         string   `json:"name"`
	Capabilities []string `json:"capabilities"`
}

// Validate checks if the update role request is valid.
func (r *UpdateRoleRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 255),
		),
		validation.Field(&r.Capabilities,
			validation.Each(customValidation.CapabilityIdentifier),
		),
	)
}

// IssueCredentialRequest contains the parameters for minting a credential.
// The tenant comes from the request's resolved tenant; verifying the user's
// identity (password, SSO) is the login system's job and happens before this
// endpoint is called.
type IssueCredentialRequest struct {
	UserID string `json:"user_id"`
}

// Validate checks if the issue credential request is valid.
func (r *IssueCredentialRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.UserID,
			validation.Required,
			customValidation.NotBlank,
		),
	)
}
