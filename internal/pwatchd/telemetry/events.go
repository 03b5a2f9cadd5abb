// Package telemetry records job lifecycle and HMS events derived from
// printer report streams.
package telemetry

import (
	"time"

	"github.com/google/uuid"
)

// EventType classifies job events
type EventType string

const (
	EventJobStarted  EventType = "JOB_STARTED"
	EventJobFinished EventType = "JOB_FINISHED"
	EventJobFailed   EventType = "JOB_FAILED"
	EventHMSRaised   EventType = "HMS_RAISED"
)

// Event is one recorded occurrence on a printer
type Event struct {
	ID         uuid.UUID
	PrinterID  uuid.UUID
	Type       EventType
	JobName    string
	HMSCode    string
	Severity   int
	OccurredAt time.Time
	Context    map[string]string
}

// Metrics aggregates the job history of one printer
type Metrics struct {
	PrinterID    uuid.UUID
	JobsStarted  int64
	JobsFinished int64
	JobsFailed   int64
	HMSRaised    int64
	LastEventAt  time.Time
}
