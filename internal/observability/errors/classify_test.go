package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	apperrors "github.com/fortunes/fortunes-web/internal/errors"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"app error code", apperrors.Rejected("bad kanji"), "rejected"},
		{"wrapped app error", fmt.Errorf("submit: %w", apperrors.Failed("x")), "failed"},
		{"plain errors.New", errors.New("boom"), "errors_errorstring"},
		{"wrapped context", fmt.Errorf("poll: %w", context.DeadlineExceeded), "context_deadlineexceedederror"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify() = %q, want %q", got, tt.want)
			}
		})
	}
}
