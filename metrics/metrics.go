package metrics

import (
	"context"
	"time"
)

// Metrics represents the current state of the catalog.
type Metrics struct {
	// BookCount is the number of books in the store
	BookCount int64 `json:"book_count"`

	// Timestamp when metrics were collected
	Timestamp time.Time `json:"timestamp"`
}

// Collector defines the interface for collecting metrics from the catalog.
type Collector interface {
	// Collect gathers current metrics from the system
	Collect(ctx context.Context) (Metrics, error)
}

// Outcomes reported with every operation.
const (
	OutcomeSuccess    = "success"
	OutcomeInvalid    = "invalid"
	OutcomeNotFound   = "not_found"
	OutcomeStoreError = "store_error"
)

// Recorder receives one call per handled catalog operation.
type Recorder interface {
	RecordOperation(ctx context.Context, operation, outcome string)
}

// NopRecorder discards everything.
type NopRecorder struct{}

func (NopRecorder) RecordOperation(context.Context, string, string) {}
