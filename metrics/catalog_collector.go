package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/marcelsud/book-catalog/book"
)

// CatalogCollector implements the Collector interface on top of the book store
type CatalogCollector struct {
	reader book.Reader
}

// NewCatalogCollector creates a new catalog metrics collector
func NewCatalogCollector(reader book.Reader) *CatalogCollector {
	return &CatalogCollector{
		reader: reader,
	}
}

// Collect gathers all metrics from the store
func (c *CatalogCollector) Collect(ctx context.Context) (Metrics, error) {
	all, err := c.reader.SelectAll(ctx)
	if err != nil {
		return Metrics{}, fmt.Errorf("getting book count: %w", err)
	}

	return Metrics{
		BookCount: int64(len(all)),
		Timestamp: time.Now(),
	}, nil
}
