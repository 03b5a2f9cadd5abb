package http

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/printwatch/printwatch/api/types/v1alpha1"
	"github.com/printwatch/printwatch/internal/pwatchd/hms"
	"github.com/printwatch/printwatch/internal/pwatchd/printer"
)

// GetStatus returns the registered state and live telemetry for one
// printer
func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	const op = "GetStatus"

	id, ok := h.printerID(w, r, op)
	if !ok {
		return
	}

	p, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get printer",
			"error", err,
			"requestID", middleware.GetReqID(r.Context()),
			"id", id,
		)
		h.writeError(w, err, http.StatusInternalServerError)
		return
	}

	resp := v1alpha1.PrinterStatusResponse{
		TypeMeta: v1alpha1.TypeMeta{
			Kind:       "PrinterStatus",
			APIVersion: "v1alpha1",
		},
		ObjectMeta: v1alpha1.ObjectMeta{
			ID:   p.ID,
			Name: p.Name,
		},
		State: v1alpha1.PrinterState(p.State),
	}
	if snap, ok := h.status.Get(id); ok {
		resp.Telemetry = &snap
		resp.Healthy = healthy(snap)
	}

	h.writeJSON(w, http.StatusOK, resp)
}

// healthy is the dashboard health summary: the link is up and nothing
// active would halt a print
func healthy(snap v1alpha1.TelemetrySnapshot) bool {
	if !snap.Connected {
		return false
	}
	for _, e := range snap.HMSErrors {
		if hms.Severity(e.Severity).Blocking() {
			return false
		}
	}
	return true
}

// ListStatus returns the state and telemetry of every printer
func (h *Handler) ListStatus(w http.ResponseWriter, r *http.Request) {
	printers, err := h.service.List(r.Context(), printer.Filter{})
	if err != nil {
		h.logger.Error("failed to list printers",
			"error", err,
			"requestID", middleware.GetReqID(r.Context()),
		)
		h.writeError(w, err, http.StatusInternalServerError)
		return
	}

	snapshots := h.status.All()
	resp := make([]v1alpha1.PrinterStatusResponse, 0, len(printers))
	for _, p := range printers {
		item := v1alpha1.PrinterStatusResponse{
			TypeMeta: v1alpha1.TypeMeta{
				Kind:       "PrinterStatus",
				APIVersion: "v1alpha1",
			},
			ObjectMeta: v1alpha1.ObjectMeta{
				ID:   p.ID,
				Name: p.Name,
			},
			State: v1alpha1.PrinterState(p.State),
		}
		if snap, ok := snapshots[p.ID]; ok {
			item.Telemetry = &snap
			item.Healthy = healthy(snap)
		}
		resp = append(resp, item)
	}

	h.writeJSON(w, http.StatusOK, resp)
}

// GetHMS returns the active HMS errors for one printer, decorated
// with severity presentation, descriptions and wiki links
func (h *Handler) GetHMS(w http.ResponseWriter, r *http.Request) {
	const op = "GetHMS"

	id, ok := h.printerID(w, r, op)
	if !ok {
		return
	}

	// Verify the printer exists so unknown IDs are 404 rather than
	// an empty list
	if _, err := h.service.Get(r.Context(), id); err != nil {
		h.writeError(w, err, http.StatusInternalServerError)
		return
	}

	var hmsErrors []v1alpha1.HMSError
	if snap, ok := h.status.Get(id); ok {
		hmsErrors = snap.HMSErrors
	}
	if hmsErrors == nil {
		hmsErrors = []v1alpha1.HMSError{}
	}

	h.writeJSON(w, http.StatusOK, hmsErrors)
}
