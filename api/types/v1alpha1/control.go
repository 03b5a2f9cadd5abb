package v1alpha1

import (
	"time"

	"github.com/google/uuid"
)

// ControlMessageType defines types of messages on the status WebSocket
type ControlMessageType string

const (
	// ControlMessageStatus carries a printer telemetry snapshot
	ControlMessageStatus ControlMessageType = "STATUS"
	// ControlMessageHMS carries a change in a printer's HMS errors
	ControlMessageHMS ControlMessageType = "HMS"
	// ControlMessagePing is a client liveness probe
	ControlMessagePing ControlMessageType = "PING"
)

// ControlMessage represents a message sent over the status WebSocket
type ControlMessage struct {
	// TypeMeta describes API version details
	TypeMeta `json:",inline"`
	// Type indicates the kind of control message
	Type ControlMessageType `json:"type"`
	// PrinterID identifies which printer the message is about
	PrinterID uuid.UUID `json:"printerId,omitempty"`
	// Telemetry contains the snapshot for STATUS messages
	Telemetry *TelemetrySnapshot `json:"telemetry,omitempty"`
	// HMSErrors contains the active errors for HMS messages
	HMSErrors []HMSError `json:"hmsErrors,omitempty"`
	// Timestamp indicates when message was created
	Timestamp time.Time `json:"timestamp"`
}
