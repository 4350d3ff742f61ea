package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "error without cause",
			err:  &AppError{Code: ErrCodeNotFound, Message: "resource not found"},
			want: "resource not found",
		},
		{
			name: "error with cause",
			err: &AppError{
				Code:    ErrCodeUpstream,
				Message: "search failed",
				Cause:   errors.New("connection refused"),
			},
			want: "search failed: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("AppError.Error() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(cause, ErrCodeInternal, "wrapped")
	if !errors.Is(err, cause) {
		t.Errorf("errors.Is(wrapped, cause) = false, want true")
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		wantCode ErrorCode
		wantMsg  string
	}{
		{"not found", NotFound("missing"), ErrCodeNotFound, "missing"},
		{"conflict", Conflict("dup"), ErrCodeConflict, "dup"},
		{"validation", Validation("bad"), ErrCodeValidation, "bad"},
		{"validationf", Validationf("top must be between %d and %d", 1, 50), ErrCodeValidation, "top must be between 1 and 50"},
		{"internal", Internal("oops"), ErrCodeInternal, "oops"},
		{"unavailable", Unavailable("no index"), ErrCodeUnavailable, "no index"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("Code = %v, want %v", tt.err.Code, tt.wantCode)
			}
			if tt.err.Message != tt.wantMsg {
				t.Errorf("Message = %v, want %v", tt.err.Message, tt.wantMsg)
			}
		})
	}
}

func TestValidationField(t *testing.T) {
	err := ValidationField("query", "Query must be a non-empty string.")
	if err.Field != "query" || !IsValidation(err) {
		t.Errorf("ValidationField() = %+v", err)
	}
}

func TestUpstream(t *testing.T) {
	cause := errors.New("HTTP 403")
	err := Upstream("Access denied due to invalid subscription key.", 403, cause)

	if !IsUpstream(err) {
		t.Errorf("IsUpstream() = false, want true")
	}
	if err.Status != 403 {
		t.Errorf("Status = %d, want 403", err.Status)
	}
	if !errors.Is(err, cause) {
		t.Errorf("cause not preserved")
	}
}

func TestWrap_NilError(t *testing.T) {
	if err := Wrap(nil, ErrCodeInternal, "wrapped error"); err != nil {
		t.Errorf("Wrap(nil) = %v, want nil", err)
	}
}

func TestWrapf(t *testing.T) {
	err := Wrapf(errors.New("x"), ErrCodeUpstream, "list blobs in %s", "ocga")
	if err.Message != "list blobs in ocga" {
		t.Errorf("Message = %q", err.Message)
	}
}

func TestIsCode(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
		want  bool
	}{
		{"not found", NotFound("x"), IsNotFound, true},
		{"wrapped not found", fmt.Errorf("ctx: %w", NotFound("x")), IsNotFound, true},
		{"other code", Conflict("x"), IsNotFound, false},
		{"standard error", errors.New("x"), IsConflict, false},
		{"nil", nil, IsValidation, false},
		{"timeout", Wrap(errors.New("x"), ErrCodeTimeout, "t"), IsTimeout, true},
		{"canceled", Wrap(errors.New("x"), ErrCodeCanceled, "c"), IsCanceled, true},
		{"internal", Internal("x"), IsInternal, true},
		{"unavailable", Unavailable("x"), IsUnavailable, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.check(tt.err); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetCodeAndMessage(t *testing.T) {
	if got := GetCode(Validation("x")); got != ErrCodeValidation {
		t.Errorf("GetCode() = %v", got)
	}
	if got := GetCode(errors.New("x")); got != "" {
		t.Errorf("GetCode(plain) = %v, want empty", got)
	}
	if got := GetMessage(Upstream("quota exceeded", 429, nil), "fallback"); got != "quota exceeded" {
		t.Errorf("GetMessage() = %q", got)
	}
	if got := GetMessage(errors.New("x"), "fallback"); got != "fallback" {
		t.Errorf("GetMessage(plain) = %q", got)
	}
}
