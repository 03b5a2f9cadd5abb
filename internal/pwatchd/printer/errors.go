package printer

import "fmt"

// ErrVersionMismatch indicates a concurrent modification conflict
type ErrVersionMismatch struct {
	ID string
}

func (e ErrVersionMismatch) Error() string {
	return fmt.Sprintf("version mismatch for printer %s: concurrent modification detected", e.ID)
}

// ErrNotFound indicates a printer lookup failure
type ErrNotFound struct {
	ID string
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("printer not found: %s", e.ID)
}

// ErrExists indicates a registration conflict on name or serial number
type ErrExists struct {
	Name string
}

func (e ErrExists) Error() string {
	return fmt.Sprintf("printer already exists: %s", e.Name)
}

// ErrInvalidState indicates an invalid state transition
type ErrInvalidState struct {
	Current State
	Target  State
}

func (e ErrInvalidState) Error() string {
	return fmt.Sprintf("invalid state transition from %s to %s", e.Current, e.Target)
}

// ErrInvalidName indicates an invalid printer name
type ErrInvalidName struct {
	Name   string
	Reason string
}

func (e ErrInvalidName) Error() string {
	return fmt.Sprintf("invalid printer name %q: %s", e.Name, e.Reason)
}

// ErrInvalidEndpoint indicates unusable LAN coordinates
type ErrInvalidEndpoint struct {
	Reason string
}

func (e ErrInvalidEndpoint) Error() string {
	return fmt.Sprintf("invalid printer endpoint: %s", e.Reason)
}
