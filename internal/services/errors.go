// internal/services/errors.go
package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/javajoker/rights-backend/internal/utils"
)

var (
	ErrNotFound           = errors.New("record not found")
	ErrForbidden          = errors.New("operation not permitted")
	ErrConflict           = errors.New("record already exists")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrDataIntegrity      = errors.New("data integrity violation")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrTokenExpired       = errors.New("token is invalid or has expired")
)

// ValidationError reports every offending request field at once.
type ValidationError struct {
	Fields []utils.ValidationError
}

func (e *ValidationError) Error() string {
	messages := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		messages = append(messages, f.Message)
	}
	return "validation failed: " + strings.Join(messages, "; ")
}

func (e *ValidationError) add(field, tag, message string) {
	e.Fields = append(e.Fields, utils.ValidationError{Field: field, Tag: tag, Message: message})
}

// errOrNil keeps a typed nil out of the error interface.
func (e *ValidationError) errOrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// validateRequest runs struct tag validation and converts failures into a *ValidationError.
func validateRequest(req interface{}) error {
	err := utils.ValidateStruct(req)
	if err == nil {
		return nil
	}
	fields := utils.GetValidationErrors(err)
	if len(fields) == 0 {
		return fmt.Errorf("validation failed: %w", err)
	}
	return &ValidationError{Fields: fields}
}

func integrityError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrDataIntegrity, fmt.Sprintf(format, args...))
}

func (e *ValidationError) hasField(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}
