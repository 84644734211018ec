package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Container errors
const (
	// ErrCodeNotRegistered indicates no factory exists for a registration key.
	ErrCodeNotRegistered ErrorCode = "NOT_REGISTERED"
	// ErrCodeCircularDependency indicates resolution re-entered a key already being resolved.
	ErrCodeCircularDependency ErrorCode = "CIRCULAR_DEPENDENCY"
	// ErrCodeInvalidDescriptor indicates a descriptor cannot be registered.
	ErrCodeInvalidDescriptor ErrorCode = "INVALID_DESCRIPTOR"
	// ErrCodeConstructionFailed indicates a constructor returned an error.
	ErrCodeConstructionFailed ErrorCode = "CONSTRUCTION_FAILED"
	// ErrCodeTypeMismatch indicates a resolved value is not of the expected Go type.
	ErrCodeTypeMismatch ErrorCode = "TYPE_MISMATCH"
)

// Dispatch errors
const (
	// ErrCodeHandlerNotFound indicates no feature is registered for a request type.
	ErrCodeHandlerNotFound ErrorCode = "HANDLER_NOT_FOUND"
	// ErrCodeInvalidFeature indicates a value was not declared as a feature.
	ErrCodeInvalidFeature ErrorCode = "INVALID_FEATURE"
)

// Validation errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeMissingField indicates a required field is missing.
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
)

// ErrCodeInternal indicates an unexpected internal error.
const ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
