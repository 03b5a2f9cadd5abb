package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/printwatch/printwatch/api/types/v1alpha1"
	werrors "github.com/printwatch/printwatch/internal/pwatchd/errors"
	"github.com/printwatch/printwatch/internal/pwatchd/printer"
)

// toAPIPrinter converts a domain printer to its wire representation.
// The access code never leaves the server.
func toAPIPrinter(p *printer.Printer) *v1alpha1.Printer {
	return &v1alpha1.Printer{
		TypeMeta: v1alpha1.TypeMeta{
			Kind:       "Printer",
			APIVersion: "v1alpha1",
		},
		ObjectMeta: v1alpha1.ObjectMeta{
			ID:   p.ID,
			Name: p.Name,
		},
		Spec: v1alpha1.PrinterSpec{
			Endpoint: v1alpha1.PrinterEndpoint{
				IPAddress:    p.Endpoint.IPAddress,
				SerialNumber: p.Endpoint.SerialNumber,
			},
			Model:      p.Model,
			Properties: p.Properties,
		},
		Status: v1alpha1.PrinterStatus{
			State:    v1alpha1.PrinterState(p.State),
			LastSeen: p.LastSeen,
			Version:  p.Version,
		},
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

// printerID extracts and parses the id URL parameter
func (h *Handler) printerID(w http.ResponseWriter, r *http.Request, op string) (uuid.UUID, bool) {
	idStr := chi.URLParam(r, "id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		h.logger.Error("invalid printer ID",
			"error", err,
			"requestID", middleware.GetReqID(r.Context()),
			"id", idStr,
		)
		h.writeError(w, werrors.NewError("INVALID_INPUT", "invalid printer ID", op, werrors.ErrInvalidInput), http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

// RegisterPrinter handles new printer registrations
func (h *Handler) RegisterPrinter(w http.ResponseWriter, r *http.Request) {
	const op = "RegisterPrinter"
	reqID := middleware.GetReqID(r.Context())

	var req v1alpha1.PrinterRegistrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, werrors.NewError("INVALID_INPUT", "invalid request body", op, werrors.ErrInvalidInput), http.StatusBadRequest)
		return
	}

	p, err := h.service.Register(r.Context(), req.Name, printer.Endpoint{
		IPAddress:    req.Endpoint.IPAddress,
		AccessCode:   req.Endpoint.AccessCode,
		SerialNumber: req.Endpoint.SerialNumber,
	}, req.Model)
	if err != nil {
		h.logger.Error("failed to register printer",
			"error", err,
			"requestID", reqID,
			"name", req.Name,
		)
		h.writeError(w, err, http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusCreated, toAPIPrinter(p))
}

// GetPrinter handles requests to get a printer by ID or name
func (h *Handler) GetPrinter(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())
	idStr := chi.URLParam(r, "id")

	// Try UUID first
	var p *printer.Printer
	var err error

	id, parseErr := uuid.Parse(idStr)
	if parseErr == nil {
		p, err = h.service.Get(r.Context(), id)
	} else {
		// Fallback to name lookup
		p, err = h.service.GetByName(r.Context(), idStr)
	}

	if err != nil {
		h.logger.Error("failed to get printer",
			"error", err,
			"requestID", reqID,
			"id", idStr,
		)
		h.writeError(w, err, http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, toAPIPrinter(p))
}

// ListPrinters handles printer list requests with optional filters
func (h *Handler) ListPrinters(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	filter := printer.Filter{
		Model: r.URL.Query().Get("model"),
	}
	for _, state := range r.URL.Query()["state"] {
		filter.States = append(filter.States, printer.State(state))
	}

	printers, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list printers",
			"error", err,
			"requestID", reqID,
		)
		h.writeError(w, err, http.StatusInternalServerError)
		return
	}

	resp := v1alpha1.PrinterList{
		TypeMeta: v1alpha1.TypeMeta{
			Kind:       "PrinterList",
			APIVersion: "v1alpha1",
		},
		Items: make([]v1alpha1.Printer, 0, len(printers)),
	}
	for _, p := range printers {
		resp.Items = append(resp.Items, *toAPIPrinter(p))
	}

	h.writeJSON(w, http.StatusOK, resp)
}

// UpdatePrinter handles endpoint and property updates
func (h *Handler) UpdatePrinter(w http.ResponseWriter, r *http.Request) {
	const op = "UpdatePrinter"
	reqID := middleware.GetReqID(r.Context())

	id, ok := h.printerID(w, r, op)
	if !ok {
		return
	}

	var req v1alpha1.PrinterUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, werrors.NewError("INVALID_INPUT", "invalid request body", op, werrors.ErrInvalidInput), http.StatusBadRequest)
		return
	}

	if req.Endpoint != nil {
		if _, err := h.service.UpdateEndpoint(r.Context(), id, printer.Endpoint{
			IPAddress:    req.Endpoint.IPAddress,
			AccessCode:   req.Endpoint.AccessCode,
			SerialNumber: req.Endpoint.SerialNumber,
		}); err != nil {
			h.logger.Error("failed to update endpoint",
				"error", err,
				"requestID", reqID,
				"id", id,
			)
			h.writeError(w, err, http.StatusInternalServerError)
			return
		}
	}

	for key, value := range req.Properties {
		if err := h.service.SetProperty(r.Context(), id, key, value); err != nil {
			h.logger.Error("failed to set property",
				"error", err,
				"requestID", reqID,
				"id", id,
				"key", key,
			)
			h.writeError(w, err, http.StatusInternalServerError)
			return
		}
	}

	p, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err, http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, toAPIPrinter(p))
}

// DeletePrinter removes a printer, closing its link first if needed
func (h *Handler) DeletePrinter(w http.ResponseWriter, r *http.Request) {
	const op = "DeletePrinter"
	reqID := middleware.GetReqID(r.Context())

	id, ok := h.printerID(w, r, op)
	if !ok {
		return
	}

	if h.links.IsConnected(id) {
		if err := h.links.Disconnect(r.Context(), id); err != nil {
			h.logger.Warn("failed to close link before delete",
				"error", err,
				"requestID", reqID,
				"id", id,
			)
		}
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.logger.Error("failed to delete printer",
			"error", err,
			"requestID", reqID,
			"id", id,
		)
		h.writeError(w, err, http.StatusInternalServerError)
		return
	}

	h.status.Remove(id)
	w.WriteHeader(http.StatusNoContent)
}

// ConnectPrinter establishes the MQTT link to a printer
func (h *Handler) ConnectPrinter(w http.ResponseWriter, r *http.Request) {
	const op = "ConnectPrinter"
	reqID := middleware.GetReqID(r.Context())

	id, ok := h.printerID(w, r, op)
	if !ok {
		return
	}

	p, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err, http.StatusInternalServerError)
		return
	}

	if err := h.links.Connect(r.Context(), p); err != nil {
		h.logger.Error("failed to connect printer",
			"error", err,
			"requestID", reqID,
			"id", id,
		)
		h.writeError(w, err, http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, toAPIPrinter(p))
}

// DisconnectPrinter closes the MQTT link to a printer
func (h *Handler) DisconnectPrinter(w http.ResponseWriter, r *http.Request) {
	const op = "DisconnectPrinter"
	reqID := middleware.GetReqID(r.Context())

	id, ok := h.printerID(w, r, op)
	if !ok {
		return
	}

	if err := h.links.Disconnect(r.Context(), id); err != nil {
		h.logger.Error("failed to disconnect printer",
			"error", err,
			"requestID", reqID,
			"id", id,
		)
		h.writeError(w, err, http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// DisablePrinter takes a printer out of service
func (h *Handler) DisablePrinter(w http.ResponseWriter, r *http.Request) {
	const op = "DisablePrinter"
	reqID := middleware.GetReqID(r.Context())

	id, ok := h.printerID(w, r, op)
	if !ok {
		return
	}

	if h.links.IsConnected(id) {
		if err := h.links.Disconnect(r.Context(), id); err != nil {
			h.logger.Warn("failed to close link before disable",
				"error", err,
				"requestID", reqID,
				"id", id,
			)
		}
	}

	if err := h.service.Disable(r.Context(), id); err != nil {
		h.logger.Error("failed to disable printer",
			"error", err,
			"requestID", reqID,
			"id", id,
		)
		h.writeError(w, err, http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}
