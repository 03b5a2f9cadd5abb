// Package v1alpha1 contains API types for the printwatch system.
package v1alpha1

import (
	"time"

	"github.com/google/uuid"
)

// TypeMeta describes an individual object's type and API version
type TypeMeta struct {
	// Kind is a string value representing the type of this object
	Kind string `json:"kind,omitempty"`
	// APIVersion defines the versioned schema of this object
	APIVersion string `json:"apiVersion,omitempty"`
}

// ObjectMeta is metadata that all persisted resources must have
type ObjectMeta struct {
	// ID uniquely identifies this object
	ID uuid.UUID `json:"id,omitempty"`
	// Name is a human-readable identifier for this object
	Name string `json:"name"`
	// CreatedAt indicates when this object was created
	CreatedAt time.Time `json:"createdAt,omitempty"`
	// UpdatedAt indicates when this object was last modified
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// Error is the standard error envelope for API responses
type Error struct {
	// Code is a machine-readable error code
	Code string `json:"code"`
	// Message is a human-readable error description
	Message string `json:"message"`
}
