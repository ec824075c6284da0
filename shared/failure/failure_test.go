package failure_test

import (
	"errors"
	"fmt"
	"net/http"
	"rosariello/shared/failure"
	"testing"
)

func TestFailure_Error(t *testing.T) {
	f := &failure.Failure{
		Code:    http.StatusBadRequest,
		Message: "test error message",
	}

	if f.Error() != "test error message" {
		t.Errorf("expected error message to be 'test error message', got %s", f.Error())
	}
}

func TestPredefinedFailures(t *testing.T) {
	tests := []struct {
		name    string
		failure *failure.Failure
		code    int
		message string
	}{
		{
			name:    "InvalidPageParam",
			failure: failure.InvalidPageParam,
			code:    http.StatusBadRequest,
			message: "invalid page parameter",
		},
		{
			name:    "InvalidLimitParam",
			failure: failure.InvalidLimitParam,
			code:    http.StatusBadRequest,
			message: "invalid limit parameter",
		},
		{
			name:    "InvalidDateParam",
			failure: failure.InvalidDateParam,
			code:    http.StatusBadRequest,
			message: "invalid date parameter, expected YYYY-MM-DD",
		},
		{
			name:    "ForbiddenError",
			failure: failure.ForbiddenError,
			code:    http.StatusForbidden,
			message: "You don't have the required permissions",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.failure.Code != tt.code {
				t.Errorf("expected code to be %d, got %d", tt.code, tt.failure.Code)
			}
			if tt.failure.Message != tt.message {
				t.Errorf("expected message to be %s, got %s", tt.message, tt.failure.Message)
			}
		})
	}
}

func TestBadRequest(t *testing.T) {
	tests := []struct {
		name     string
		input    error
		expected error
	}{
		{
			name:     "with error",
			input:    errors.New("validation failed"),
			expected: &failure.Failure{Code: http.StatusBadRequest, Message: "validation failed"},
		},
		{
			name:     "with nil error",
			input:    nil,
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := failure.BadRequest(tt.input)

			if tt.expected == nil {
				if result != nil {
					t.Errorf("expected nil, got %v", result)
				}
			} else {
				f, ok := result.(*failure.Failure)
				if !ok {
					t.Errorf("expected result to be *failure.Failure, got %T", result)
				} else {
					expectedF := tt.expected.(*failure.Failure)
					if f.Code != expectedF.Code || f.Message != expectedF.Message {
						t.Errorf("expected %+v, got %+v", expectedF, f)
					}
				}
			}
		})
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name    string
		result  error
		code    int
		message string
	}{
		{
			name:    "BadRequestFromString",
			result:  failure.BadRequestFromString("custom bad request"),
			code:    http.StatusBadRequest,
			message: "custom bad request",
		},
		{
			name:    "Unauthorized",
			result:  failure.Unauthorized("token expired"),
			code:    http.StatusUnauthorized,
			message: "token expired",
		},
		{
			name:    "NotFound",
			result:  failure.NotFound("booking"),
			code:    http.StatusNotFound,
			message: "booking",
		},
		{
			name:    "Conflict",
			result:  failure.Conflict("the selected dates are no longer available"),
			code:    http.StatusConflict,
			message: "the selected dates are no longer available",
		},
		{
			name:    "Forbidden",
			result:  failure.Forbidden("Access denied"),
			code:    http.StatusForbidden,
			message: "Access denied",
		},
		{
			name:    "InternalError",
			result:  failure.InternalError(errors.New("database connection failed")),
			code:    http.StatusInternalServerError,
			message: "database connection failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, ok := tt.result.(*failure.Failure)
			if !ok {
				t.Fatalf("expected result to be *failure.Failure, got %T", tt.result)
			}

			if f.Code != tt.code {
				t.Errorf("expected code to be %d, got %d", tt.code, f.Code)
			}
			if f.Message != tt.message {
				t.Errorf("expected message to be %s, got %s", tt.message, f.Message)
			}
		})
	}
}

func TestInternalError_Nil(t *testing.T) {
	if result := failure.InternalError(nil); result != nil {
		t.Errorf("expected nil, got %v", result)
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name     string
		input    error
		expected int
	}{
		{
			name:     "failure error",
			input:    &failure.Failure{Code: http.StatusBadRequest, Message: "test"},
			expected: http.StatusBadRequest,
		},
		{
			name:     "failure from constructor",
			input:    failure.Conflict("already booked"),
			expected: http.StatusConflict,
		},
		{
			name:     "failure wrapped with fmt.Errorf",
			input:    fmt.Errorf("failed to insert data (booking): %w", failure.Conflict("already booked")),
			expected: http.StatusConflict,
		},
		{
			name:     "regular error",
			input:    errors.New("regular error"),
			expected: http.StatusInternalServerError,
		},
		{
			name:     "nil error",
			input:    nil,
			expected: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := failure.GetCode(tt.input)
			if result != tt.expected {
				t.Errorf("expected code to be %d, got %d", tt.expected, result)
			}
		})
	}
}
