package book

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by every Repository when no book has the requested id.
	ErrNotFound = errors.New("book not found")
	// ErrDuplicateTitle is returned by a Repository when the write would break title uniqueness.
	ErrDuplicateTitle = errors.New("duplicate book title")
)

// ValidationError describes the first rule a book failed.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validating %s: %s", e.Field, e.Message)
}

func titleTaken() *ValidationError {
	return &ValidationError{Field: "title", Message: "The title has already been taken."}
}
