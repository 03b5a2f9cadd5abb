package v1alpha1

import (
	"time"
)

// PrinterState represents the possible states of a printer
type PrinterState string

const (
	// PrinterStateUnregistered indicates a printer that hasn't been linked yet
	PrinterStateUnregistered PrinterState = "UNREGISTERED"
	// PrinterStateOnline indicates a printer with an established link
	PrinterStateOnline PrinterState = "ONLINE"
	// PrinterStateOffline indicates a printer that hasn't reported recently
	PrinterStateOffline PrinterState = "OFFLINE"
	// PrinterStateDisabled indicates a manually disabled printer
	PrinterStateDisabled PrinterState = "DISABLED"
)

// PrinterEndpoint holds the LAN coordinates used to reach a printer
type PrinterEndpoint struct {
	// IPAddress is the printer's LAN address
	IPAddress string `json:"ipAddress"`
	// AccessCode is the LAN access code shown on the printer screen
	AccessCode string `json:"accessCode"`
	// SerialNumber identifies the device on its report/request topics
	SerialNumber string `json:"serialNumber"`
}

// Printer represents a managed 3D printer
type Printer struct {
	// TypeMeta describes the versioning of this object
	TypeMeta `json:",inline"`
	// ObjectMeta provides metadata about the printer
	ObjectMeta `json:"metadata,omitempty"`

	// Spec holds the desired configuration of this printer
	Spec PrinterSpec `json:"spec"`
	// Status holds the current state of this printer
	Status PrinterStatus `json:"status"`
}

// PrinterSpec defines the desired configuration of a Printer
type PrinterSpec struct {
	// Endpoint defines how to reach this printer
	Endpoint PrinterEndpoint `json:"endpoint"`
	// Model is the device model name (e.g. "X1 Carbon", "H2D")
	Model string `json:"model,omitempty"`
	// Properties contains arbitrary key-value pairs for printer metadata
	Properties map[string]string `json:"properties,omitempty"`
}

// PrinterStatus defines the observed state of a Printer
type PrinterStatus struct {
	// State indicates the printer's current operational state
	State PrinterState `json:"state"`
	// LastSeen is when the printer last reported
	LastSeen time.Time `json:"lastSeen"`
	// Version tracks optimistic concurrency control
	Version int `json:"version"`
}

// PrinterRegistrationRequest represents a request to register a new printer
type PrinterRegistrationRequest struct {
	// Name is the desired name for the printer
	Name string `json:"name"`
	// Endpoint specifies how to reach the printer
	Endpoint PrinterEndpoint `json:"endpoint"`
	// Model is the device model name
	Model string `json:"model,omitempty"`
}

// PrinterUpdateRequest represents a request to update a printer
type PrinterUpdateRequest struct {
	// Endpoint updates the printer's LAN coordinates
	Endpoint *PrinterEndpoint `json:"endpoint,omitempty"`
	// Properties updates the printer's metadata
	Properties map[string]string `json:"properties,omitempty"`
}

// PrinterFilter defines criteria for listing printers
type PrinterFilter struct {
	// Model filters by device model
	Model string `json:"model,omitempty"`
	// States filters by printer states
	States []PrinterState `json:"states,omitempty"`
}

// PrinterList is a list of printers
type PrinterList struct {
	// TypeMeta describes the versioning of this object
	TypeMeta `json:",inline"`

	// Items is the list of Printer objects
	Items []Printer `json:"items"`
}

// TelemetrySnapshot is the live state of a printer as last reported
// over its link
type TelemetrySnapshot struct {
	// Connected reports whether the link is currently up
	Connected bool `json:"connected"`
	// GcodeState is the raw job state reported by the device
	GcodeState string `json:"gcodeState,omitempty"`
	// CurrentJob names the print in progress, if any
	CurrentJob string `json:"currentJob,omitempty"`
	// Progress is percent complete of the current job
	Progress float64 `json:"progress,omitempty"`
	// RemainingTime is minutes left in the current job
	RemainingTime int `json:"remainingTime,omitempty"`
	// Layer is the current layer number
	Layer int `json:"layer,omitempty"`
	// TotalLayers is the layer count of the current job
	TotalLayers int `json:"totalLayers,omitempty"`
	// Temperatures maps sensor names to degrees Celsius
	Temperatures map[string]float64 `json:"temperatures,omitempty"`
	// HMSErrors lists active health management system errors
	HMSErrors []HMSError `json:"hmsErrors,omitempty"`
	// UpdatedAt is when this snapshot was taken
	UpdatedAt time.Time `json:"updatedAt"`
}

// PrinterStatusResponse pairs a printer with its live telemetry
type PrinterStatusResponse struct {
	// TypeMeta describes the versioning of this object
	TypeMeta `json:",inline"`
	// ObjectMeta provides metadata about the printer
	ObjectMeta `json:"metadata,omitempty"`

	// State indicates the printer's registered operational state
	State PrinterState `json:"state"`
	// Healthy reports whether the link is up with no blocking HMS error
	Healthy bool `json:"healthy"`
	// Telemetry is the live snapshot, nil when the link has never been up
	Telemetry *TelemetrySnapshot `json:"telemetry,omitempty"`
}
