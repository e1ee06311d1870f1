package seed

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/marcelsud/book-catalog/book"
	"github.com/marcelsud/book-catalog/book/memory"
	"gopkg.in/yaml.v3"
)

/* Loader manages catalog fixtures from a YAML file
 * Every entry goes through the same validation as the API, in file order,
 * so a duplicated title inside the file is reported like a duplicated title over HTTP
 */

// Config represents the structure of the seed file
type Config struct {
	Books []Entry `yaml:"books"`
}

// Entry represents a single book in the YAML file
type Entry struct {
	Title           string `yaml:"title"`
	Author          string `yaml:"author"`
	Publisher       string `yaml:"publisher"`
	PublicationYear string `yaml:"publication_year"`
	Cover           string `yaml:"cover"`
	Description     string `yaml:"description"`
	Price           string `yaml:"price"`
}

// Book converts the entry into a catalog book without id
func (e Entry) Book() book.Book {
	return book.Book{
		Title:           e.Title,
		Author:          e.Author,
		Publisher:       e.Publisher,
		PublicationYear: e.PublicationYear,
		Cover:           e.Cover,
		Description:     e.Description,
		Price:           e.Price,
	}
}

// Result reports what Apply did
type Result struct {
	Created []book.Book
	Skipped []string // titles already present in the target catalog
}

// Loader holds the loaded books
type Loader struct {
	books []book.Book
}

// NewLoader creates a new seed loader
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads, parses and validates the seed file
func (l *Loader) Load(filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("reading seed file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return fmt.Errorf("parsing seed YAML: %w", err)
	}

	// dry run against a scratch catalog
	ctx := context.Background()
	scratch := book.NewService(memory.NewRepository())
	books := make([]book.Book, 0, len(config.Books))
	for i, entry := range config.Books {
		b := entry.Book()
		if _, err := scratch.Create(ctx, b); err != nil {
			return fmt.Errorf("validating book #%d (%q): %w", i+1, entry.Title, err)
		}
		books = append(books, b)
	}

	l.books = books
	return nil
}

// List returns all loaded books in file order
func (l *Loader) List() []book.Book {
	out := make([]book.Book, len(l.books))
	copy(out, l.books)
	return out
}

// Exists checks if a title was loaded
func (l *Loader) Exists(title string) bool {
	for _, b := range l.books {
		if b.Title == title {
			return true
		}
	}
	return false
}

// Apply creates every loaded book in the catalog. Titles the catalog already has are skipped.
func (l *Loader) Apply(ctx context.Context, catalog book.UseCase) (Result, error) {
	var result Result
	for _, b := range l.books {
		created, err := catalog.Create(ctx, b)
		var verr *book.ValidationError
		if errors.As(err, &verr) && verr.Field == "title" {
			result.Skipped = append(result.Skipped, b.Title)
			continue
		}
		if err != nil {
			return result, fmt.Errorf("seeding %q: %w", b.Title, err)
		}
		result.Created = append(result.Created, created)
	}
	return result, nil
}
