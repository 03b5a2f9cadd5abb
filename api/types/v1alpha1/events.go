package v1alpha1

import (
	"time"

	"github.com/google/uuid"
)

// JobEventType defines types of job lifecycle events
type JobEventType string

const (
	// JobEventStarted indicates a print job began
	JobEventStarted JobEventType = "JOB_STARTED"
	// JobEventFinished indicates a print job completed successfully
	JobEventFinished JobEventType = "JOB_FINISHED"
	// JobEventFailed indicates a print job failed or was aborted
	JobEventFailed JobEventType = "JOB_FAILED"
	// JobEventHMSRaised indicates an HMS error became active
	JobEventHMSRaised JobEventType = "HMS_RAISED"
)

// JobEvent records something that happened on a printer
type JobEvent struct {
	// ID uniquely identifies the event
	ID uuid.UUID `json:"id"`
	// PrinterID identifies which printer the event is about
	PrinterID uuid.UUID `json:"printerId"`
	// Type indicates the kind of event
	Type JobEventType `json:"type"`
	// JobName names the print this event belongs to, if any
	JobName string `json:"jobName,omitempty"`
	// HMSCode is the formatted code for HMS events
	HMSCode string `json:"hmsCode,omitempty"`
	// Severity is the numeric HMS severity for HMS events
	Severity int `json:"severity,omitempty"`
	// OccurredAt is when the event happened on the device
	OccurredAt time.Time `json:"occurredAt"`
	// Context carries event-specific details
	Context map[string]string `json:"context,omitempty"`
}

// JobEventList is a list of job events
type JobEventList struct {
	// TypeMeta describes the versioning of this object
	TypeMeta `json:",inline"`

	// Items is the list of JobEvent objects
	Items []JobEvent `json:"items"`
}

// PrinterMetrics aggregates job history for one printer
type PrinterMetrics struct {
	// PrinterID identifies the printer
	PrinterID uuid.UUID `json:"printerId"`
	// JobsStarted counts JOB_STARTED events
	JobsStarted int64 `json:"jobsStarted"`
	// JobsFinished counts JOB_FINISHED events
	JobsFinished int64 `json:"jobsFinished"`
	// JobsFailed counts JOB_FAILED events
	JobsFailed int64 `json:"jobsFailed"`
	// HMSRaised counts HMS_RAISED events
	HMSRaised int64 `json:"hmsRaised"`
	// LastEventAt is the time of the most recent event
	LastEventAt time.Time `json:"lastEventAt,omitempty"`
}
