package application

import (
	"errors"
	"strings"

	"github.com/oksasatya/vortex-feed/pkg/validation"
)

var (
	ErrNotConnected      = errors.New("wallet not connected")
	ErrWalletNotReady    = errors.New("wallet cannot sign transactions")
	ErrProfileIncomplete = errors.New("profile not completed")
	ErrPostNotFound      = errors.New("post not found")
	ErrNotAuthor         = errors.New("only the author can change this post")
	ErrCaptchaFailed     = errors.New("captcha incorrect")
	ErrLoadFailed        = errors.New("failed to load posts")
)

// ValidationError is returned before any remote call is attempted.
type ValidationError struct {
	Details map[string]string
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Details))
	for f, msg := range e.Details {
		fields = append(fields, f+" "+msg)
	}
	return "validation failed: " + strings.Join(fields, "; ")
}

func newValidationError(field, msg string) *ValidationError {
	return &ValidationError{Details: map[string]string{field: msg}}
}

// validate runs struct validation and converts failures into a *ValidationError.
func validate(v any) error {
	if err := validation.Struct(v); err != nil {
		return &ValidationError{Details: validation.ToDetails(err)}
	}
	return nil
}
