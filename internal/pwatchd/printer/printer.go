// Package printer implements the printer domain model and business logic
package printer

import (
	"fmt"
	"net"
	"time"

	"github.com/google/uuid"
)

// State represents the current state of a printer
type State string

const (
	// StateUnregistered indicates a printer that hasn't been linked yet
	StateUnregistered State = "UNREGISTERED"
	// StateOnline indicates a printer with an established link
	StateOnline State = "ONLINE"
	// StateOffline indicates a printer that hasn't reported recently
	StateOffline State = "OFFLINE"
	// StateDisabled indicates a manually disabled printer
	StateDisabled State = "DISABLED"
)

// Endpoint holds the LAN coordinates used to reach a printer
type Endpoint struct {
	// IPAddress is the printer's LAN address
	IPAddress string
	// AccessCode is the LAN access code shown on the printer screen
	AccessCode string
	// SerialNumber identifies the device on its report/request topics
	SerialNumber string
}

// Validate checks the endpoint fields a link cannot work without
func (e Endpoint) Validate() error {
	if e.SerialNumber == "" {
		return ErrInvalidEndpoint{Reason: "serial number cannot be empty"}
	}
	if e.AccessCode == "" {
		return ErrInvalidEndpoint{Reason: "access code cannot be empty"}
	}
	if net.ParseIP(e.IPAddress) == nil {
		return ErrInvalidEndpoint{Reason: fmt.Sprintf("invalid IP address %q", e.IPAddress)}
	}
	return nil
}

// Printer represents a managed 3D printer
type Printer struct {
	// ID is the unique identifier for this printer
	ID uuid.UUID
	// Name is a human-readable identifier
	Name string
	// Endpoint defines how to reach this printer
	Endpoint Endpoint
	// Model is the device model name (e.g. "X1 Carbon", "H2D")
	Model string
	// State represents the printer's current operational state
	State State
	// LastSeen is when the printer last reported
	LastSeen time.Time
	// Version tracks optimistic concurrency control
	Version int
	// Properties contains arbitrary key-value pairs for printer metadata
	Properties map[string]string
}

// New creates a new printer with the given name and endpoint
func New(name string, endpoint Endpoint, model string) (*Printer, error) {
	if name == "" {
		return nil, ErrInvalidName{Name: name, Reason: "name cannot be empty"}
	}
	if err := endpoint.Validate(); err != nil {
		return nil, err
	}

	return &Printer{
		ID:         uuid.New(),
		Name:       name,
		Endpoint:   endpoint,
		Model:      model,
		State:      StateUnregistered,
		LastSeen:   time.Now(),
		Version:    1,
		Properties: make(map[string]string),
	}, nil
}

// MarkOnline transitions the printer to the online state
func (p *Printer) MarkOnline() error {
	if p.State == StateDisabled {
		return ErrInvalidState{Current: p.State, Target: StateOnline}
	}
	p.State = StateOnline
	p.LastSeen = time.Now()
	p.Version++
	return nil
}

// MarkOffline transitions the printer to the offline state
func (p *Printer) MarkOffline() {
	if p.State == StateDisabled {
		return
	}
	p.State = StateOffline
	p.Version++
}

// Disable transitions the printer to the disabled state
func (p *Printer) Disable() {
	p.State = StateDisabled
	p.Version++
}

// UpdateLastSeen updates the printer's last seen timestamp
func (p *Printer) UpdateLastSeen() {
	p.LastSeen = time.Now()
	p.Version++
}

// UpdateEndpoint replaces the printer's LAN coordinates
func (p *Printer) UpdateEndpoint(endpoint Endpoint) error {
	if err := endpoint.Validate(); err != nil {
		return err
	}
	p.Endpoint = endpoint
	p.Version++
	return nil
}

// SetProperty sets a printer property
func (p *Printer) SetProperty(key, value string) {
	if p.Properties == nil {
		p.Properties = make(map[string]string)
	}
	p.Properties[key] = value
	p.Version++
}
