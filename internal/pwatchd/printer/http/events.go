package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/printwatch/printwatch/api/types/v1alpha1"
	"github.com/printwatch/printwatch/internal/pwatchd/telemetry"
)

func toAPIEvents(events []telemetry.Event) v1alpha1.JobEventList {
	resp := v1alpha1.JobEventList{
		TypeMeta: v1alpha1.TypeMeta{
			Kind:       "JobEventList",
			APIVersion: "v1alpha1",
		},
		Items: make([]v1alpha1.JobEvent, 0, len(events)),
	}
	for _, e := range events {
		resp.Items = append(resp.Items, v1alpha1.JobEvent{
			ID:         e.ID,
			PrinterID:  e.PrinterID,
			Type:       v1alpha1.JobEventType(e.Type),
			JobName:    e.JobName,
			HMSCode:    e.HMSCode,
			Severity:   e.Severity,
			OccurredAt: e.OccurredAt,
			Context:    e.Context,
		})
	}
	return resp
}

// eventFilter builds a telemetry filter from query parameters
func eventFilter(r *http.Request) telemetry.Filter {
	filter := telemetry.Filter{}

	for _, t := range r.URL.Query()["type"] {
		filter.Types = append(filter.Types, telemetry.EventType(t))
	}
	if since := r.URL.Query().Get("since"); since != "" {
		if ts, err := time.Parse(time.RFC3339, since); err == nil {
			filter.Since = ts
		}
	}
	if limit := r.URL.Query().Get("limit"); limit != "" {
		if n, err := strconv.Atoi(limit); err == nil {
			filter.Limit = n
		}
	}
	return filter
}

// ListEvents returns job events across all printers
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.telemetry.Events(r.Context(), eventFilter(r))
	if err != nil {
		h.logger.Error("failed to list events",
			"error", err,
			"requestID", middleware.GetReqID(r.Context()),
		)
		h.writeError(w, err, http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, toAPIEvents(events))
}

// ListPrinterEvents returns job events for one printer
func (h *Handler) ListPrinterEvents(w http.ResponseWriter, r *http.Request) {
	const op = "ListPrinterEvents"

	id, ok := h.printerID(w, r, op)
	if !ok {
		return
	}

	filter := eventFilter(r)
	filter.PrinterID = &id

	events, err := h.telemetry.Events(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list printer events",
			"error", err,
			"requestID", middleware.GetReqID(r.Context()),
			"id", id,
		)
		h.writeError(w, err, http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, toAPIEvents(events))
}

// GetPrinterMetrics returns aggregated job history for one printer
func (h *Handler) GetPrinterMetrics(w http.ResponseWriter, r *http.Request) {
	const op = "GetPrinterMetrics"

	id, ok := h.printerID(w, r, op)
	if !ok {
		return
	}

	metrics, err := h.telemetry.PrinterMetrics(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get printer metrics",
			"error", err,
			"requestID", middleware.GetReqID(r.Context()),
			"id", id,
		)
		h.writeError(w, err, http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, v1alpha1.PrinterMetrics{
		PrinterID:    metrics.PrinterID,
		JobsStarted:  metrics.JobsStarted,
		JobsFinished: metrics.JobsFinished,
		JobsFailed:   metrics.JobsFailed,
		HMSRaised:    metrics.HMSRaised,
		LastEventAt:  metrics.LastEventAt,
	})
}
