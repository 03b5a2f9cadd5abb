// Package status maintains the live telemetry state of connected printers.
//
// The store is purely in-memory. Persistent printer configuration lives in
// the database; what a printer is doing right now only matters while the
// daemon holds a link to it, so it is rebuilt from device reports after a
// restart.
package status

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/printwatch/printwatch/api/types/v1alpha1"
)

// Store holds the latest telemetry snapshot per printer and fans
// updates out to subscribers.
type Store struct {
	mu        sync.RWMutex
	snapshots map[uuid.UUID]v1alpha1.TelemetrySnapshot
	subs      map[chan Update]struct{}
}

// Update pairs a printer with its new snapshot for subscribers
type Update struct {
	PrinterID uuid.UUID                  `json:"printerId"`
	Snapshot  v1alpha1.TelemetrySnapshot `json:"snapshot"`
}

// NewStore creates an empty status store
func NewStore() *Store {
	return &Store{
		snapshots: make(map[uuid.UUID]v1alpha1.TelemetrySnapshot),
		subs:      make(map[chan Update]struct{}),
	}
}

// Set replaces the snapshot for a printer and notifies subscribers
func (s *Store) Set(id uuid.UUID, snap v1alpha1.TelemetrySnapshot) {
	snap.UpdatedAt = time.Now()

	s.mu.Lock()
	s.snapshots[id] = snap
	subs := make([]chan Update, 0, len(s.subs))
	for ch := range s.subs {
		subs = append(subs, ch)
	}
	s.mu.Unlock()

	update := Update{PrinterID: id, Snapshot: snap}
	for _, ch := range subs {
		// Drop updates for subscribers that cannot keep up; the next
		// snapshot supersedes this one anyway.
		select {
		case ch <- update:
		default:
		}
	}
}

// MarkDisconnected clears the connected flag while preserving the last
// known telemetry for display
func (s *Store) MarkDisconnected(id uuid.UUID) {
	s.mu.RLock()
	snap, ok := s.snapshots[id]
	s.mu.RUnlock()
	if !ok {
		snap = v1alpha1.TelemetrySnapshot{}
	}
	snap.Connected = false
	s.Set(id, snap)
}

// Get returns the latest snapshot for a printer
func (s *Store) Get(id uuid.UUID) (v1alpha1.TelemetrySnapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snapshots[id]
	return snap, ok
}

// All returns a copy of every known snapshot keyed by printer ID
func (s *Store) All() map[uuid.UUID]v1alpha1.TelemetrySnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[uuid.UUID]v1alpha1.TelemetrySnapshot, len(s.snapshots))
	for id, snap := range s.snapshots {
		out[id] = snap
	}
	return out
}

// Remove drops a printer's snapshot, typically after deletion
func (s *Store) Remove(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snapshots, id)
}

// Subscribe registers a channel that receives every snapshot update.
// The returned cancel function must be called when done.
func (s *Store) Subscribe(buffer int) (<-chan Update, func()) {
	ch := make(chan Update, buffer)

	s.mu.Lock()
	s.subs[ch] = struct{}{}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		delete(s.subs, ch)
		s.mu.Unlock()
	}
	return ch, cancel
}
