package validation

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/kbukum/oswald/errors"
)

// Validator collects field errors.
type Validator struct {
	errors []FieldError
}

// FieldError is a validation failure for one field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// New creates an empty Validator.
func New() *Validator {
	return &Validator{}
}

// AddError records a field error.
func (v *Validator) AddError(field, message string) {
	v.errors = append(v.errors, FieldError{Field: field, Message: message})
}

// HasErrors reports whether any check failed.
func (v *Validator) HasErrors() bool {
	return len(v.errors) > 0
}

// Errors returns the collected field errors.
func (v *Validator) Errors() []FieldError {
	return v.errors
}

// Err returns an INVALID_INPUT AppError listing every field error, or nil.
func (v *Validator) Err() error {
	if !v.HasErrors() {
		return nil
	}

	messages := make([]string, len(v.errors))
	for i, e := range v.errors {
		messages[i] = e.Field + ": " + e.Message
	}
	return errors.Validation(strings.Join(messages, "; ")).
		WithDetail("fields", slices.Clone(v.errors))
}

// Required checks that value is not blank.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.AddError(field, "is required")
	}
	return v
}

// Email checks that a non-empty value is an email address, using the same
// rule as the `email` struct tag.
func (v *Validator) Email(field, value string) *Validator {
	if value != "" && getValidator().Var(value, "email") != nil {
		v.AddError(field, "must be a valid email address")
	}
	return v
}

// UUID checks that a non-empty value is a version 4 UUID.
func (v *Validator) UUID(field, value string) *Validator {
	if value != "" && !IsUUIDv4(value) {
		v.AddError(field, "must be a valid UUID")
	}
	return v
}

// Length checks that value has between minLen and maxLen characters.
func (v *Validator) Length(field, value string, minLen, maxLen int) *Validator {
	if n := len([]rune(value)); n < minLen || n > maxLen {
		v.AddError(field, fmt.Sprintf("must be between %d and %d characters", minLen, maxLen))
	}
	return v
}

// Matches checks that a non-empty value matches re.
func (v *Validator) Matches(field, value string, re *regexp.Regexp) *Validator {
	if value != "" && !re.MatchString(value) {
		v.AddError(field, "does not match required format")
	}
	return v
}

// OneOf checks that a non-empty value is one of allowed.
func (v *Validator) OneOf(field, value string, allowed ...string) *Validator {
	if value != "" && !slices.Contains(allowed, value) {
		v.AddError(field, "must be one of: "+strings.Join(allowed, ", "))
	}
	return v
}

var uuidV4 = regexp.MustCompile(`(?i)^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)

// IsUUIDv4 reports whether s is a canonical version 4 UUID.
func IsUUIDv4(s string) bool {
	if !uuidV4.MatchString(s) {
		return false
	}
	id, err := uuid.Parse(s)
	return err == nil && id.Version() == 4
}
