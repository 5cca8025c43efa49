package service

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/AlibekovAA/album-catalog/internal/common/constants"
	commonerrors "github.com/AlibekovAA/album-catalog/internal/common/errors"
)

// FieldError names the input field a validation failure belongs to.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Reason
}

func AsFieldError(err error) (*FieldError, bool) {
	var fe *FieldError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

func validateUsername(username string) error {
	n := utf8.RuneCountInString(username)
	if strings.TrimSpace(username) == "" || n < constants.UsernameMinLength || n > constants.UsernameMaxLength {
		return commonerrors.ErrValidation.WithCause(&FieldError{
			Field:  "username",
			Reason: fmt.Sprintf("must be %d to %d characters", constants.UsernameMinLength, constants.UsernameMaxLength),
		})
	}
	return nil
}

// bcrypt only looks at the first 72 bytes, so longer passwords are refused.
func validatePassword(password string) error {
	if utf8.RuneCountInString(password) < constants.PasswordMinLength {
		return commonerrors.ErrValidation.WithCause(&FieldError{
			Field:  "password",
			Reason: fmt.Sprintf("must be at least %d characters", constants.PasswordMinLength),
		})
	}
	if len(password) > constants.PasswordMaxLength {
		return commonerrors.ErrValidation.WithCause(&FieldError{
			Field:  "password",
			Reason: fmt.Sprintf("must be at most %d bytes", constants.PasswordMaxLength),
		})
	}
	return nil
}
