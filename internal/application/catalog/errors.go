package catalog

import (
	"errors"
	"strings"

	"github.com/hapkiduki/apnacart/internal/application/dto"
)

// ErrValidation is matched by every *ValidationError.
var ErrValidation = errors.New("validation failed")

// ValidationError lists the fields of a request that were rejected.
type ValidationError struct {
	Fields []dto.ValidationError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func invalid(fields ...dto.ValidationError) error {
	return &ValidationError{Fields: fields}
}
