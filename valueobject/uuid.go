// Package valueobject provides immutable, self-validating domain values
// compared by content rather than identity.
package valueobject

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/kbukum/oswald/errors"
	"github.com/kbukum/oswald/validation"
)

// UUID is a version 4 UUID in canonical textual form.
type UUID struct {
	value string
}

// NewUUID validates value as a v4 UUID. An empty value yields a fresh random UUID.
func NewUUID(value string) (UUID, error) {
	if value == "" {
		return UUID{value: uuid.NewString()}, nil
	}
	if !validation.IsUUIDv4(value) {
		return UUID{}, invalid("id", fmt.Sprintf("Invalid UUID format: %s", value))
	}
	return UUID{value: value}, nil
}

// MustUUID is like NewUUID but panics on invalid input.
func MustUUID(value string) UUID {
	id, err := NewUUID(value)
	if err != nil {
		panic(err)
	}
	return id
}

// String returns the textual form.
func (u UUID) String() string { return u.value }

// IsZero reports whether u was never initialised.
func (u UUID) IsZero() bool { return u.value == "" }

// Equals reports whether both UUIDs hold the same text.
func (u UUID) Equals(other UUID) bool { return u.value == other.value }

// MarshalText implements encoding.TextMarshaler.
func (u UUID) MarshalText() ([]byte, error) {
	return []byte(u.value), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Empty input generates a
// new UUID, as NewUUID does.
func (u *UUID) UnmarshalText(text []byte) error {
	id, err := NewUUID(string(text))
	if err != nil {
		return err
	}
	*u = id
	return nil
}

func invalid(field, message string) *errors.AppError {
	return errors.Validation(message).WithDetail("field", field)
}
