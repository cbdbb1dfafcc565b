package errors

import (
	"fmt"
	"net/http"
	"testing"
)

func TestAppError(t *testing.T) {
	err := InvalidInput("test.Op", nil, "test message")

	if err.Code != http.StatusBadRequest {
		t.Errorf("expected code %d, got %d", http.StatusBadRequest, err.Code)
	}
	if err.Error() != "test message" {
		t.Errorf("expected error string 'test message', got '%s'", err.Error())
	}
}

func TestErrorWithCause(t *testing.T) {
	cause := fmt.Errorf("cause error")
	err := Internal("test.Op", cause, "test message")

	expected := "test message: cause error"
	if err.Error() != expected {
		t.Errorf("expected '%s', got '%s'", expected, err.Error())
	}
	if err.Unwrap() != cause {
		t.Error("expected Unwrap to return the cause")
	}
}

func TestIsNotFound(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "not found error",
			err:      NotFound("op", nil, "not found"),
			expected: true,
		},
		{
			name:     "wrapped not found error",
			err:      fmt.Errorf("lookup: %w", NotFound("op", nil, "not found")),
			expected: true,
		},
		{
			name:     "other error",
			err:      InvalidInput("op", nil, "bad request"),
			expected: false,
		},
		{
			name:     "non-custom error",
			err:      fmt.Errorf("standard error"),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNotFound(tt.err); got != tt.expected {
				t.Errorf("IsNotFound() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestConstructorCodes(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		expected int
	}{
		{"invalid input", InvalidInput("op", nil, "x"), http.StatusBadRequest},
		{"not found", NotFound("op", nil, "x"), http.StatusNotFound},
		{"internal", Internal("op", nil, "x"), http.StatusInternalServerError},
		{"unprocessable", Unprocessable("op", nil, "x"), http.StatusUnprocessableEntity},
		{"rate limited", TooManyRequests("op", "x"), http.StatusTooManyRequests},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.expected {
				t.Errorf("expected code %d, got %d", tt.expected, tt.err.Code)
			}
			if tt.err.Op != "op" {
				t.Errorf("expected op to be kept, got %q", tt.err.Op)
			}
		})
	}
}
