package bambu

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/printwatch/printwatch/api/types/v1alpha1"
	"github.com/printwatch/printwatch/internal/pwatchd/errors"
	"github.com/printwatch/printwatch/internal/pwatchd/hms"
	"github.com/printwatch/printwatch/internal/pwatchd/printer"
	"github.com/printwatch/printwatch/internal/pwatchd/status"
)

// lastSeenInterval limits how often report traffic is flushed to the
// printers table. Devices push several reports per second while
// printing.
const lastSeenInterval = 30 * time.Second

// LinkOptions are the connection parameters shared by all printer
// links
type LinkOptions struct {
	Port           int
	Username       string
	KeepAlive      time.Duration
	ConnectTimeout time.Duration
	Trace          bool
}

// JobRecorder receives job lifecycle and HMS events derived from
// report streams
type JobRecorder interface {
	// RecordJobStarted records that a print began on a printer
	RecordJobStarted(ctx context.Context, printerID uuid.UUID, jobName string)

	// RecordJobFinished records that a print reached a terminal state
	RecordJobFinished(ctx context.Context, printerID uuid.UUID, jobName string, failed bool)

	// RecordHMS records newly raised HMS errors on a printer
	RecordHMS(ctx context.Context, printerID uuid.UUID, deviceModel string, errs []hms.Error)
}

// Manager owns one Client per connected printer and fans their events
// into the status store, the printer service and the job recorder.
type Manager struct {
	service  printer.Service
	store    *status.Store
	recorder JobRecorder
	opts     LinkOptions
	logger   *slog.Logger

	mu       sync.Mutex
	clients  map[uuid.UUID]*Client
	lastSeen map[uuid.UUID]time.Time
}

// NewManager creates a link manager
func NewManager(service printer.Service, store *status.Store, recorder JobRecorder, opts LinkOptions, logger *slog.Logger) *Manager {
	return &Manager{
		service:  service,
		store:    store,
		recorder: recorder,
		opts:     opts,
		logger:   logger,
		clients:  make(map[uuid.UUID]*Client),
		lastSeen: make(map[uuid.UUID]time.Time),
	}
}

// Connect establishes the MQTT link for a printer. Connecting an
// already connected printer is an error.
func (m *Manager) Connect(ctx context.Context, p *printer.Printer) error {
	const op = "LinkManager.Connect"

	if p.State == printer.StateDisabled {
		return errors.NewError("PRINTER_DISABLED", "Cannot connect a disabled printer", op, errors.ErrInvalidInput)
	}

	m.mu.Lock()
	if _, ok := m.clients[p.ID]; ok {
		m.mu.Unlock()
		return errors.NewError("ALREADY_CONNECTED", "Printer link already established", op, errors.ErrConflict)
	}
	// Reserve the slot before dialing so concurrent connects collide
	// here instead of opening two sessions
	m.clients[p.ID] = nil
	m.mu.Unlock()

	client := NewClient(ClientConfig{
		IPAddress:      p.Endpoint.IPAddress,
		SerialNumber:   p.Endpoint.SerialNumber,
		AccessCode:     p.Endpoint.AccessCode,
		Model:          p.Model,
		Port:           m.opts.Port,
		Username:       m.opts.Username,
		KeepAlive:      m.opts.KeepAlive,
		ConnectTimeout: m.opts.ConnectTimeout,
		Trace:          m.opts.Trace,
	}, m.eventsFor(p), m.logger)

	if err := client.Connect(); err != nil {
		m.mu.Lock()
		delete(m.clients, p.ID)
		m.mu.Unlock()
		return err
	}

	m.mu.Lock()
	m.clients[p.ID] = client
	m.mu.Unlock()

	return nil
}

// Disconnect closes the link for a printer and marks it offline
func (m *Manager) Disconnect(ctx context.Context, id uuid.UUID) error {
	const op = "LinkManager.Disconnect"

	m.mu.Lock()
	client, ok := m.clients[id]
	delete(m.clients, id)
	delete(m.lastSeen, id)
	m.mu.Unlock()

	if !ok || client == nil {
		return errors.NewError("NOT_CONNECTED", "Printer link is not established", op, errors.ErrNotFound)
	}

	client.Disconnect()
	m.store.MarkDisconnected(id)

	if err := m.service.MarkOffline(ctx, id); err != nil {
		m.logger.Error("failed to mark printer offline", "error", err, "printerID", id)
	}
	return nil
}

// IsConnected reports whether a link is established for the printer
func (m *Manager) IsConnected(id uuid.UUID) bool {
	m.mu.Lock()
	client, ok := m.clients[id]
	m.mu.Unlock()
	return ok && client != nil && client.Connected()
}

// ConnectAll re-establishes links for every printer that was online.
// Used at daemon startup; individual failures are logged and skipped
// so one unreachable device does not block the rest.
func (m *Manager) ConnectAll(ctx context.Context) {
	printers, err := m.service.List(ctx, printer.Filter{
		States: []printer.State{printer.StateOnline},
	})
	if err != nil {
		m.logger.Error("failed to list printers for reconnect", "error", err)
		return
	}

	for _, p := range printers {
		if err := m.Connect(ctx, p); err != nil {
			m.logger.Warn("printer reconnect failed",
				"error", err,
				"printerID", p.ID,
				"name", p.Name,
			)
			if err := m.service.MarkOffline(ctx, p.ID); err != nil {
				m.logger.Error("failed to mark printer offline", "error", err, "printerID", p.ID)
			}
		}
	}
}

// Shutdown closes every link
func (m *Manager) Shutdown() {
	m.mu.Lock()
	clients := make([]*Client, 0, len(m.clients))
	for id, client := range m.clients {
		if client != nil {
			clients = append(clients, client)
		}
		delete(m.clients, id)
	}
	m.mu.Unlock()

	for _, client := range clients {
		client.Disconnect()
	}
}

// eventsFor builds the callback set for one printer. Callbacks run on
// the MQTT receive goroutine with a background context since the
// originating request is long gone by the time reports arrive.
func (m *Manager) eventsFor(p *printer.Printer) Events {
	id := p.ID
	model := p.Model

	return Events{
		OnLinkUp: func() {
			ctx := context.Background()
			if _, err := m.service.MarkOnline(ctx, id); err != nil {
				m.logger.Error("failed to mark printer online", "error", err, "printerID", id)
			}
		},
		OnLinkDown: func(err error) {
			m.store.MarkDisconnected(id)
		},
		OnSnapshot: func(snap v1alpha1.TelemetrySnapshot) {
			m.store.Set(id, snap)
			m.touchLastSeen(id)
		},
		OnPrintStart: func(job JobUpdate) {
			m.recorder.RecordJobStarted(context.Background(), id, job.JobName)
		},
		OnPrintDone: func(job JobUpdate) {
			m.recorder.RecordJobFinished(context.Background(), id, job.JobName, job.Failed)
		},
		OnHMS: func(errs []hms.Error) {
			m.recorder.RecordHMS(context.Background(), id, model, errs)
		},
	}
}

// touchLastSeen persists report activity at most once per interval
func (m *Manager) touchLastSeen(id uuid.UUID) {
	now := time.Now()

	m.mu.Lock()
	last, ok := m.lastSeen[id]
	if ok && now.Sub(last) < lastSeenInterval {
		m.mu.Unlock()
		return
	}
	m.lastSeen[id] = now
	m.mu.Unlock()

	if err := m.service.UpdateLastSeen(context.Background(), id); err != nil {
		m.logger.Error("failed to update last seen", "error", err, "printerID", id)
	}
}
