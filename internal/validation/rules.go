// Package validation provides custom validation rules for the application.
package validation

import (
	"regexp"
	"strings"

	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/authz/internal/errors"
)

var (
	// slugRegex matches URL-safe tenant slugs: lowercase alphanumerics with
	// inner hyphens, suitable for use as a subdomain label.
	slugRegex = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?$`)

	// capabilityRegex matches dotted capability identifiers such as
	// "schedule.create.event".
	capabilityRegex = regexp.MustCompile(`^[a-z][a-z0-9]*(\.[a-z][a-z0-9]*)+$`)

	// roleKeyRegex matches custom role keys: lowercase alphanumerics with
	// inner hyphens or underscores.
	roleKeyRegex = regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)

// Slug validates tenant slug format (subdomain-safe).
var Slug = validation.NewStringRuleWithError(
	func(s string) bool {
		return len(s) <= 63 && slugRegex.MatchString(s)
	},
	validation.NewError(
		"validation_slug_format",
		"must contain only lowercase letters, digits and inner hyphens",
	),
)

// CapabilityIdentifier validates dotted capability identifier format.
// Catalog membership is checked separately at the read boundary.
var CapabilityIdentifier = validation.NewStringRuleWithError(
	func(s string) bool {
		return capabilityRegex.MatchString(s)
	},
	validation.NewError(
		"validation_capability_format",
		"must be a dotted identifier like \"schedule.read\"",
	),
)

// RoleKey validates custom role key format.
var RoleKey = validation.NewStringRuleWithError(
	func(s string) bool {
		return len(s) <= 64 && roleKeyRegex.MatchString(s)
	},
	validation.NewError(
		"validation_role_key_format",
		"must start with a letter and contain only lowercase letters, digits, hyphens and underscores",
	),
)
