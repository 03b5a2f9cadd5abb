package printer

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for printer persistence
type Repository interface {
	// Save persists a printer to storage
	Save(ctx context.Context, p *Printer) error

	// FindByID retrieves a printer by its unique identifier
	FindByID(ctx context.Context, id uuid.UUID) (*Printer, error)

	// FindBySerial retrieves a printer by its serial number
	FindBySerial(ctx context.Context, serial string) (*Printer, error)

	// FindByName retrieves a printer by its name
	FindByName(ctx context.Context, name string) (*Printer, error)

	// List retrieves printers matching the given filter
	List(ctx context.Context, filter Filter) ([]*Printer, error)

	// Delete removes a printer from storage
	Delete(ctx context.Context, id uuid.UUID) error
}

// Filter defines criteria for listing printers
type Filter struct {
	// Model filters by device model
	Model string
	// States filters by printer states
	States []State
}

// Service defines the interface for printer business operations
type Service interface {
	// Register creates a new printer
	Register(ctx context.Context, name string, endpoint Endpoint, model string) (*Printer, error)

	// Get retrieves a printer by ID
	Get(ctx context.Context, id uuid.UUID) (*Printer, error)

	// GetByName retrieves a printer by name
	GetByName(ctx context.Context, name string) (*Printer, error)

	// GetBySerial retrieves a printer by its device serial number
	GetBySerial(ctx context.Context, serial string) (*Printer, error)

	// List retrieves printers matching the filter
	List(ctx context.Context, filter Filter) ([]*Printer, error)

	// UpdateEndpoint replaces a printer's LAN coordinates
	UpdateEndpoint(ctx context.Context, id uuid.UUID, endpoint Endpoint) (*Printer, error)

	// MarkOnline transitions a printer to the online state
	MarkOnline(ctx context.Context, id uuid.UUID) (*Printer, error)

	// MarkOffline transitions a printer to the offline state
	MarkOffline(ctx context.Context, id uuid.UUID) error

	// Disable transitions a printer to the disabled state
	Disable(ctx context.Context, id uuid.UUID) error

	// UpdateLastSeen updates the printer's last seen timestamp
	UpdateLastSeen(ctx context.Context, id uuid.UUID) error

	// SetProperty sets a printer property
	SetProperty(ctx context.Context, id uuid.UUID, key, value string) error

	// Delete removes a printer
	Delete(ctx context.Context, id uuid.UUID) error
}

// EventType represents types of printer events
type EventType string

const (
	// EventRegistered indicates a new printer registration
	EventRegistered EventType = "REGISTERED"
	// EventOnline indicates a printer link came up
	EventOnline EventType = "ONLINE"
	// EventOffline indicates a printer link went down
	EventOffline EventType = "OFFLINE"
	// EventDisabled indicates a printer was disabled
	EventDisabled EventType = "DISABLED"
	// EventEndpointChanged indicates a printer endpoint change
	EventEndpointChanged EventType = "ENDPOINT_CHANGED"
	// EventDeleted indicates a printer was removed
	EventDeleted EventType = "DELETED"
)

// Event represents something that happened to a printer
type Event struct {
	// Type indicates what kind of event occurred
	Type EventType
	// PrinterID identifies which printer the event is about
	PrinterID uuid.UUID
	// Timestamp records when the event occurred
	Timestamp time.Time
	// Data contains event-specific details
	Data map[string]string
}

// EventPublisher defines the interface for publishing printer events
type EventPublisher interface {
	// Publish sends an event to interested subscribers
	Publish(ctx context.Context, event Event) error
}
