// Facultypulse - Review Analytics and Statistical Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/facultypulse

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/facultypulse/internal/storage"
)

// HealthStatus is the body of the health endpoint.
type HealthStatus struct {
	Status     string             `json:"status"`
	Uptime     float64            `json:"uptime_seconds"`
	Published  bool               `json:"published"`
	RunRunning bool               `json:"run_running"`
	LastRun    *storage.RunRecord `json:"last_run,omitempty"`
}

// Health reports liveness and whether a batch has been published. It
// answers 200 even before the first publication.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := HealthStatus{
		Status: "healthy",
		Uptime: time.Since(h.startTime).Seconds(),
	}
	if _, err := h.deps.Snapshot.Indices(r.Context()); err == nil {
		status.Published = true
	}
	if h.deps.Status != nil {
		status.RunRunning = h.deps.Status.Running()
		status.LastRun = h.deps.Status.LastRun()
	}
	if status.LastRun != nil && status.LastRun.Error != "" {
		status.Status = "degraded"
	}
	respondData(w, status)
}

// LastRun returns the most recent run record.
func (h *Handler) LastRun(w http.ResponseWriter, r *http.Request) {
	if h.deps.Status != nil {
		if rec := h.deps.Status.LastRun(); rec != nil {
			respondData(w, rec)
			return
		}
	}
	if h.deps.Runs == nil {
		respondError(w, r, http.StatusNotFound, CodeNotFound, "no run recorded", nil)
		return
	}
	rec, err := h.deps.Runs.LastRun(r.Context())
	if err != nil {
		respondLookupError(w, r, err)
		return
	}
	respondData(w, rec)
}

// Runs lists past runs, newest first.
func (h *Handler) Runs(w http.ResponseWriter, r *http.Request) {
	if h.deps.History == nil {
		respondError(w, r, http.StatusNotImplemented, CodeDisabled, "run history is not kept", nil)
		return
	}
	limit, err := queryInt(r, "limit", 20)
	if err != nil || limit < 1 || limit > 500 {
		respondError(w, r, http.StatusBadRequest, CodeValidation, "limit must be an integer between 1 and 500", nil)
		return
	}
	runs, err := h.deps.History.Runs(r.Context(), limit)
	if err != nil {
		respondLookupError(w, r, err)
		return
	}
	total := len(runs)
	respondJSON(w, http.StatusOK, &APIResponse{
		Status:   "success",
		Data:     runs,
		Metadata: Metadata{Timestamp: time.Now().UTC(), Total: &total},
	})
}

// TriggerRun requests an immediate batch. It answers 202 when the request
// was queued and 409 when one is already pending.
func (h *Handler) TriggerRun(w http.ResponseWriter, r *http.Request) {
	if h.deps.Trigger == nil {
		respondError(w, r, http.StatusForbidden, CodeDisabled, "manual runs are disabled", nil)
		return
	}
	if !h.deps.Trigger.Trigger() {
		respondError(w, r, http.StatusConflict, CodeConflict, "a run is already pending", nil)
		return
	}
	respondJSON(w, http.StatusAccepted, &APIResponse{
		Status:   "success",
		Data:     map[string]string{"message": "run queued"},
		Metadata: Metadata{Timestamp: time.Now().UTC()},
	})
}
