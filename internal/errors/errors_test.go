package errors

import (
	"context"
	"errors"
	"fmt"
	"net/url"
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
			err: &AppError{
				Code:    ErrCodeRejected,
				Message: "One or more characters not found in Kanji table",
			},
			want: "One or more characters not found in Kanji table",
		},
		{
			name: "error with cause",
			err: &AppError{
				Code:    ErrCodeNetwork,
				Message: "network error",
				Cause:   errors.New("connection refused"),
			},
			want: "network error: connection refused",
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
	err := Wrap(cause, ErrCodeFailed, "wrapped error")

	if unwrapped := err.Unwrap(); !errors.Is(unwrapped, cause) {
		t.Errorf("AppError.Unwrap() = %v, want %v", unwrapped, cause)
	}
	if !errors.Is(err, cause) {
		t.Errorf("errors.Is should see through AppError")
	}
}

func TestWrap_NilError(t *testing.T) {
	if Wrap(nil, ErrCodeFailed, "x") != nil {
		t.Error("Wrap(nil) should return nil")
	}
	if Wrapf(nil, ErrCodeFailed, "x %d", 1) != nil {
		t.Error("Wrapf(nil) should return nil")
	}
}

func TestCodeHelpers(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
		code  ErrorCode
	}{
		{"validation", ValidationField("name_sei", "required"), IsValidation, ErrCodeValidation},
		{"unauthorized", Unauthorized("login required"), IsUnauthorized, ErrCodeUnauthorized},
		{"rejected", Rejected("detail"), IsRejected, ErrCodeRejected},
		{"busy", Busy("in flight"), IsBusy, ErrCodeBusy},
		{"wrapped rejected", fmt.Errorf("enqueue: %w", Rejected("detail")), IsRejected, ErrCodeRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.check(tt.err) {
				t.Errorf("expected %s helper to match", tt.name)
			}
			if got := GetCode(tt.err); got != tt.code {
				t.Errorf("GetCode() = %v, want %v", got, tt.code)
			}
		})
	}

	if GetCode(errors.New("plain")) != "" {
		t.Error("GetCode should be empty for non-AppError")
	}
	if GetField(ValidationField("birth_date", "bad")) != "birth_date" {
		t.Error("GetField should return the field name")
	}
}

func TestMapTransportError(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"canceled", context.Canceled, IsCanceled},
		{"deadline", fmt.Errorf("do: %w", context.DeadlineExceeded), IsTimeout},
		{"url error", &url.Error{Op: "Get", URL: "http://api/x", Err: errors.New("connection refused")}, IsNetwork},
		{"plain", errors.New("boom"), IsNetwork},
		{"app error passthrough", Rejected("x"), IsRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MapTransportError(tt.err); !tt.check(got) {
				t.Errorf("MapTransportError(%v) = %v, unexpected code %q", tt.err, got, GetCode(got))
			}
		})
	}

	if MapTransportError(nil) != nil {
		t.Error("MapTransportError(nil) should be nil")
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "wrapped cause hidden", err: Wrap(errors.New("dial tcp: refused"), ErrCodeNetwork, "Network error."), want: "Network error."},
		{name: "foreign error", err: errors.New("plain"), want: "plain"},
		{name: "outermost app error", err: fmt.Errorf("ctx: %w", Failed("outer")), want: "outer"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.want {
				t.Errorf("UserMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}
