package telemetry

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/printwatch/printwatch/internal/pwatchd/hms"
)

// Repository defines the interface for event persistence
type Repository interface {
	// SaveEvent persists a single event
	SaveEvent(ctx context.Context, event Event) error

	// ListEvents retrieves events matching the filter, newest first
	ListEvents(ctx context.Context, filter Filter) ([]Event, error)

	// GetMetrics aggregates event counts for one printer
	GetMetrics(ctx context.Context, printerID uuid.UUID) (*Metrics, error)

	// PruneEventsBefore removes events older than the cutoff and
	// returns how many were deleted
	PruneEventsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Filter defines criteria for listing events
type Filter struct {
	// PrinterID limits events to one printer when set
	PrinterID *uuid.UUID
	// Types limits events to the given kinds
	Types []EventType
	// Since excludes events that occurred before it
	Since time.Time
	// Limit caps the number of returned events, 0 means the default
	Limit int
}

// Service defines the interface for event recording and queries
type Service interface {
	// RecordJobStarted records that a print began on a printer
	RecordJobStarted(ctx context.Context, printerID uuid.UUID, jobName string)

	// RecordJobFinished records that a print reached a terminal state
	RecordJobFinished(ctx context.Context, printerID uuid.UUID, jobName string, failed bool)

	// RecordHMS records newly raised HMS errors on a printer
	RecordHMS(ctx context.Context, printerID uuid.UUID, deviceModel string, errs []hms.Error)

	// Events retrieves events matching the filter
	Events(ctx context.Context, filter Filter) ([]Event, error)

	// PrinterMetrics aggregates the job history of one printer
	PrinterMetrics(ctx context.Context, printerID uuid.UUID) (*Metrics, error)

	// Prune removes events older than the retention window
	Prune(ctx context.Context, retention time.Duration) (int64, error)
}
