package validation

import (
	"regexp"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/kbukum/oswald/errors"
)

func TestValidatorRequired(t *testing.T) {
	tests := []struct {
		value   string
		wantErr bool
	}{
		{"John", false},
		{"", true},
		{"   ", true},
	}
	for _, tc := range tests {
		if got := New().Required("name", tc.value).HasErrors(); got != tc.wantErr {
			t.Errorf("Required(%q) HasErrors = %v, want %v", tc.value, got, tc.wantErr)
		}
	}
}

func TestValidatorEmail(t *testing.T) {
	tests := []struct {
		value   string
		wantErr bool
	}{
		{"john.doe@example.com", false},
		{"", false},
		{"not-an-email", true},
		{"John <john@example.com>", true},
	}
	for _, tc := range tests {
		if got := New().Email("email", tc.value).HasErrors(); got != tc.wantErr {
			t.Errorf("Email(%q) HasErrors = %v, want %v", tc.value, got, tc.wantErr)
		}
	}
}

func TestEmailAgreesWithStructTag(t *testing.T) {
	type contact struct {
		Email string `json:"email" validate:"email"`
	}
	for _, value := range []string{
		"john.doe@example.com",
		"a@b",
		"john@[127.0.0.1]",
		`"john doe"@example.com`,
		"John <john@example.com>",
		"not-an-email",
	} {
		fluent := !New().Email("email", value).HasErrors()
		tagged := Struct(contact{Email: value}) == nil
		if fluent != tagged {
			t.Errorf("Email(%q) valid = %v, struct tag valid = %v", value, fluent, tagged)
		}
	}
}

func TestValidatorUUID(t *testing.T) {
	if New().UUID("id", uuid.NewString()).HasErrors() {
		t.Error("expected generated UUID to be valid")
	}
	if New().UUID("id", "").HasErrors() {
		t.Error("expected empty value to be skipped")
	}
	if !New().UUID("id", "invalid-uuid").HasErrors() {
		t.Error("expected error for invalid UUID")
	}
}

func TestValidatorLengthAndMatches(t *testing.T) {
	if !New().Length("name", "a", 2, 100).HasErrors() {
		t.Error("expected error for too short value")
	}
	if New().Length("name", "ab", 2, 100).HasErrors() {
		t.Error("expected no error at the lower bound")
	}

	re := regexp.MustCompile(`^[a-z]+$`)
	if New().Matches("code", "abc", re).HasErrors() {
		t.Error("expected match")
	}
	if !New().Matches("code", "ABC", re).HasErrors() {
		t.Error("expected mismatch")
	}
}

func TestValidatorOneOf(t *testing.T) {
	if New().OneOf("kind", "H", "H", "SYSTEM", "SERVICE").HasErrors() {
		t.Error("expected H to be allowed")
	}
	v := New().OneOf("kind", "INVALID", "H", "SYSTEM", "SERVICE")
	if !v.HasErrors() {
		t.Fatal("expected error for disallowed value")
	}
	if v.Errors()[0].Message != "must be one of: H, SYSTEM, SERVICE" {
		t.Errorf("unexpected message: %s", v.Errors()[0].Message)
	}
}

func TestValidatorErr(t *testing.T) {
	if err := New().Required("name", "John").Err(); err != nil {
		t.Errorf("expected nil, got %v", err)
	}

	err := New().Required("name", "").Email("email", "bad").Err()
	if !errors.HasCode(err, errors.ErrCodeInvalidInput) {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
	appErr, _ := errors.AsAppError(err)
	if appErr.Message != "name: is required; email: must be a valid email address" {
		t.Errorf("unexpected message: %s", appErr.Message)
	}
	fields, ok := appErr.Details["fields"].([]FieldError)
	if !ok || len(fields) != 2 {
		t.Errorf("expected 2 field errors in details, got %v", appErr.Details["fields"])
	}
}

func TestIsUUIDv4(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"123e4567-e89b-42d3-a456-556642440000", true},
		{"123E4567-E89B-42D3-A456-556642440000", true},
		{"123e4567-e89b-12d3-a456-556642440000", false},
		{"123e4567-e89b-42d3-c456-556642440000", false},
		{"invalid-uuid", false},
		{"", false},
	}
	for _, tc := range tests {
		if got := IsUUIDv4(tc.value); got != tc.want {
			t.Errorf("IsUUIDv4(%q) = %v, want %v", tc.value, got, tc.want)
		}
	}
}

type createUser struct {
	Name      string `json:"name" validate:"required,min=2,max=100"`
	Email     string `json:"email" validate:"required,email"`
	CreatedBy string `validate:"omitempty,uuid4"`
}

func TestStructValid(t *testing.T) {
	if err := Struct(createUser{Name: "John Doe", Email: "john.doe@example.com"}); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if err := Struct(&createUser{Name: "John Doe", Email: "john.doe@example.com"}); err != nil {
		t.Errorf("expected pointer to struct to validate, got %v", err)
	}
}

func TestStructInvalid(t *testing.T) {
	err := Struct(createUser{Name: "J", Email: "not-an-email", CreatedBy: "nope"})
	if !errors.HasCode(err, errors.ErrCodeInvalidInput) {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
	msg := err.Error()
	for _, want := range []string{
		"name: must be at least 2 characters",
		"email: must be a valid email address",
		"created_by: must be a valid UUID",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("expected %q in %q", want, msg)
		}
	}
}

func TestStructSkipsNonStructs(t *testing.T) {
	if err := Struct(nil); err != nil {
		t.Errorf("expected nil for nil, got %v", err)
	}
	if err := Struct("plain"); err != nil {
		t.Errorf("expected nil for non-struct, got %v", err)
	}
}

func TestToSnakeCase(t *testing.T) {
	tests := map[string]string{
		"Name":      "name",
		"CreatedBy": "created_by",
		"ID":        "i_d",
	}
	for in, want := range tests {
		if got := toSnakeCase(in); got != want {
			t.Errorf("toSnakeCase(%q) = %q, want %q", in, got, want)
		}
	}
}
