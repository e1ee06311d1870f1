package book

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxAuthorLength is the upper bound, in characters, for Book.Author.
const MaxAuthorLength = 255

// Validator checks a book before it reaches the store.
type Validator struct {
	Reader Reader
}

func NewValidator(r Reader) *Validator {
	return &Validator{Reader: r}
}

// Validate returns the first violated rule as a *ValidationError. Rules run in a fixed order:
// title required, title unique, author required, author length. A book with a non-zero ID is
// allowed to keep its own title.
func (v *Validator) Validate(ctx context.Context, b Book) error {
	if strings.TrimSpace(b.Title) == "" {
		return &ValidationError{Field: "title", Message: "The title field is required."}
	}
	existing, err := v.Reader.SelectByTitle(ctx, b.Title)
	switch {
	case err == nil:
		if existing.ID != b.ID {
			return titleTaken()
		}
	case !errors.Is(err, ErrNotFound):
		return fmt.Errorf("checking title uniqueness: %w", err)
	}
	if strings.TrimSpace(b.Author) == "" {
		return &ValidationError{Field: "author", Message: "The author field is required."}
	}
	if utf8.RuneCountInString(b.Author) > MaxAuthorLength {
		return &ValidationError{
			Field:   "author",
			Message: fmt.Sprintf("The author may not be greater than %d characters.", MaxAuthorLength),
		}
	}
	return nil
}
