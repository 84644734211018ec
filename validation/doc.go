// Package validation checks decoded requests and value object input.
//
// Struct tag validation backs the HTTP transport:
//
//	type CreateUserCommand struct {
//		Name  string `json:"name" validate:"required,min=2,max=100"`
//		Email string `json:"email" validate:"required,email"`
//	}
//	err := validation.Struct(cmd)
//
// Handlers that validate by hand collect field errors fluently:
//
//	err := validation.New().Required("email", q.Email).Email("email", q.Email).Err()
package validation
