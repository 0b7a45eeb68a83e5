package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Provider lifecycle errors
const (
	// ErrCodeConstructionFailed indicates a singleton constructor returned an error or panicked.
	ErrCodeConstructionFailed ErrorCode = "CONSTRUCTION_FAILED"
	// ErrCodeProviderClosed indicates the provider was torn down.
	ErrCodeProviderClosed ErrorCode = "PROVIDER_CLOSED"
	// ErrCodeTimeout indicates the caller gave up waiting.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
)

// Registration errors
const (
	// ErrCodeNotFound indicates no provider is registered under the key.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeAlreadyExists indicates the key is already taken.
	ErrCodeAlreadyExists ErrorCode = "ALREADY_EXISTS"
	// ErrCodeTypeMismatch indicates the registered provider yields a different type.
	ErrCodeTypeMismatch ErrorCode = "TYPE_MISMATCH"
)

// Validation errors
const (
	// ErrCodeInvalidInput indicates an argument is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeInvalidConfig indicates configuration failed validation.
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"
)

// Internal errors
const (
	// ErrCodeInternal indicates an unexpected internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Construction failures are not cached, so the next call may succeed.
var retryableCodes = map[ErrorCode]bool{
	ErrCodeConstructionFailed: true,
	ErrCodeTimeout:            true,
	ErrCodeProviderClosed:     false,
	ErrCodeInternal:           false,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
