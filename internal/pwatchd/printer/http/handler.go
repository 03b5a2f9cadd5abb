// Package http implements the HTTP API for printer management
package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/printwatch/printwatch/internal/pwatchd/bambu"
	"github.com/printwatch/printwatch/internal/pwatchd/printer"
	"github.com/printwatch/printwatch/internal/pwatchd/ratelimit"
	"github.com/printwatch/printwatch/internal/pwatchd/status"
	"github.com/printwatch/printwatch/internal/pwatchd/telemetry"
)

// Handler encapsulates the HTTP API for printer management
type Handler struct {
	service   printer.Service
	telemetry telemetry.Service
	status    *status.Store
	links     *bambu.Manager
	ratelimit ratelimit.Service
	logger    *slog.Logger
	hub       *Hub
}

// NewHandler creates a new HTTP handler for printer endpoints. The
// returned handler owns a WebSocket hub; call Run on a goroutine to
// start streaming status updates.
func NewHandler(
	service printer.Service,
	telemetryService telemetry.Service,
	statusStore *status.Store,
	links *bambu.Manager,
	rateLimitService ratelimit.Service,
	logger *slog.Logger,
) *Handler {
	h := &Handler{
		service:   service,
		telemetry: telemetryService,
		status:    statusStore,
		links:     links,
		ratelimit: rateLimitService,
		logger:    logger,
	}
	h.hub = newHub(statusStore, logger)
	return h
}

// Run starts the WebSocket hub until the context is canceled
func (h *Handler) Run(ctx context.Context) {
	h.hub.run(ctx)
}

// Router creates and configures the HTTP router for printer endpoints
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()

	// Basic middleware for all routes
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(requestIDHeaderMiddleware)
	r.Use(recoverMiddleware(h.logger))
	r.Use(logMiddleware(h.logger))

	rateLimits := ratelimit.NewCommonRateLimiters(h.ratelimit, h.logger)

	// Public health check endpoints
	r.Group(func(r chi.Router) {
		r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status":"ok"}`))
		})
		r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status":"ok"}`))
		})
	})

	// API Routes
	r.Route("/api/v1alpha1/printers", func(r chi.Router) {
		// Printer management
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(30 * time.Second))
			r.Use(rateLimits.APIRequestLimiter())

			r.Post("/", h.RegisterPrinter)
			r.Get("/", h.ListPrinters)
			r.Get("/{id}", h.GetPrinter)
			r.Put("/{id}", h.UpdatePrinter)
			r.Delete("/{id}", h.DeletePrinter)

			r.Post("/{id}/connect", h.ConnectPrinter)
			r.Post("/{id}/disconnect", h.DisconnectPrinter)
			r.Put("/{id}/disable", h.DisablePrinter)

			// Job history
			r.Get("/events", h.ListEvents)
			r.Get("/{id}/events", h.ListPrinterEvents)
			r.Get("/{id}/metrics", h.GetPrinterMetrics)
		})

		// Live status endpoints poll fast, so they get their own bucket
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(10 * time.Second))
			r.Use(rateLimits.StatusPollLimiter())

			r.Get("/status", h.ListStatus)
			r.Get("/{id}/status", h.GetStatus)
			r.Get("/{id}/hms", h.GetHMS)
		})

		// WebSocket status stream
		r.With(rateLimits.WebSocketLimiter()).Get("/ws", h.ServeWs)

		// 404 Handler
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":"not found"}`))
		})
	})

	return r
}
