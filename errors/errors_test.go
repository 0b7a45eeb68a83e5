package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestAppError_New_Success(t *testing.T) {
	err := New(ErrCodeNotFound, "not found")
	if err.Code != ErrCodeNotFound {
		t.Errorf("expected code %s, got %s", ErrCodeNotFound, err.Code)
	}
	if err.Message != "not found" {
		t.Errorf("expected message 'not found', got %q", err.Message)
	}
	if err.Retryable {
		t.Error("NOT_FOUND should not be retryable")
	}
}

func TestAppError_New_Retryable(t *testing.T) {
	err := New(ErrCodeConstructionFailed, "boom")
	if !err.Retryable {
		t.Error("CONSTRUCTION_FAILED should be retryable")
	}
}

func TestAppError_ConstructionFailed_Success(t *testing.T) {
	cause := fmt.Errorf("dial refused")
	err := ConstructionFailed("settings", cause)
	if err.Code != ErrCodeConstructionFailed {
		t.Errorf("expected CONSTRUCTION_FAILED, got %s", err.Code)
	}
	if err.Details["provider"] != "settings" {
		t.Errorf("expected provider=settings, got %v", err.Details["provider"])
	}
	if !stderrors.Is(err, cause) {
		t.Error("expected cause to be reachable through errors.Is")
	}
}

func TestAppError_NotFound_EmptyID(t *testing.T) {
	err := NotFound("provider", "")
	if _, ok := err.Details["id"]; ok {
		t.Error("expected no id detail for empty id")
	}
}

func TestAppError_WithCause_Chain(t *testing.T) {
	cause := fmt.Errorf("root cause")
	err := NotFound("item", "1").WithCause(cause)
	if err.Cause != cause {
		t.Error("expected cause to be set via WithCause")
	}
	if !strings.Contains(err.Error(), "root cause") {
		t.Errorf("Error() should contain cause, got %q", err.Error())
	}
}

func TestAppError_WithDetails_Merge(t *testing.T) {
	err := NotFound("item", "1").WithDetails(map[string]any{
		"extra": "info",
	})
	if err.Details["extra"] != "info" {
		t.Errorf("expected extra=info in details")
	}
	if err.Details["resource"] != "item" {
		t.Error("expected original details to be preserved")
	}

	err.WithDetails(map[string]any{"another": "detail"})
	if err.Details["another"] != "detail" {
		t.Error("expected another=detail to be merged")
	}
	if err.Details["extra"] != "info" {
		t.Error("expected extra=info to be preserved after second merge")
	}
}

func TestAppError_WithDetail_NilMap(t *testing.T) {
	err := &AppError{}
	err.WithDetail("key", "value")
	if err.Details == nil {
		t.Fatal("expected Details map to be initialized")
	}
	if err.Details["key"] != "value" {
		t.Errorf("expected key=value, got %v", err.Details["key"])
	}
}

func TestAppError_Error_Format(t *testing.T) {
	err := NotFound("provider", "db")
	s := err.Error()
	if !strings.Contains(s, "NOT_FOUND") {
		t.Errorf("expected error string to contain code, got %q", s)
	}
	if !strings.Contains(s, "not found") {
		t.Errorf("expected error string to contain message, got %q", s)
	}
}

func TestAppError_Is_MatchesByCode(t *testing.T) {
	sentinel := New(ErrCodeProviderClosed, "closed")
	err := fmt.Errorf("get: %w", ProviderClosed("cache"))
	if !stderrors.Is(err, sentinel) {
		t.Error("expected errors.Is to match AppErrors with the same code")
	}
	if stderrors.Is(err, New(ErrCodeNotFound, "x")) {
		t.Error("expected errors.Is to reject a different code")
	}
}

func TestAppError_Constructors_Table(t *testing.T) {
	tests := []struct {
		name      string
		err       *AppError
		code      ErrorCode
		retryable bool
	}{
		{"ConstructionFailed", ConstructionFailed("db", nil), ErrCodeConstructionFailed, true},
		{"ProviderClosed", ProviderClosed("db"), ErrCodeProviderClosed, false},
		{"Timeout", Timeout("get"), ErrCodeTimeout, true},
		{"AlreadyExists", AlreadyExists("provider", "db"), ErrCodeAlreadyExists, false},
		{"TypeMismatch", TypeMismatch("db", "string", "int"), ErrCodeTypeMismatch, false},
		{"InvalidInput", InvalidInput("constructor", "nil"), ErrCodeInvalidInput, false},
		{"InvalidConfig", InvalidConfig("bad"), ErrCodeInvalidConfig, false},
		{"Internal", Internal(nil), ErrCodeInternal, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.err.Code != tc.code {
				t.Errorf("expected code %s, got %s", tc.code, tc.err.Code)
			}
			if tc.err.Retryable != tc.retryable {
				t.Errorf("expected retryable=%v, got %v", tc.retryable, tc.err.Retryable)
			}
		})
	}
}

func TestIsCodeAndIsRetryable(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", ConstructionFailed("db", nil))
	if !IsCode(err, ErrCodeConstructionFailed) {
		t.Error("expected IsCode to find CONSTRUCTION_FAILED")
	}
	if !IsRetryable(err) {
		t.Error("expected construction failure to be retryable")
	}
	if IsRetryable(fmt.Errorf("plain")) {
		t.Error("plain errors are not retryable")
	}
}

func TestWrap_NilReturnsNil(t *testing.T) {
	if Wrap(nil) != nil {
		t.Error("Wrap(nil) should return nil")
	}
}

func TestWrap_WrappedAppError(t *testing.T) {
	orig := NotFound("item", "1")
	got := Wrap(fmt.Errorf("outer: %w", orig))
	if got != orig {
		t.Error("Wrap should return the AppError found in the chain")
	}
}

func TestWrap_PlainError(t *testing.T) {
	plain := fmt.Errorf("something broke")
	got := Wrap(plain)
	if got.Code != ErrCodeInternal {
		t.Errorf("expected INTERNAL_ERROR, got %s", got.Code)
	}
	if got.Cause != plain {
		t.Error("expected cause to be the original error")
	}
}
