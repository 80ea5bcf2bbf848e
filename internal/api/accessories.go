package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/glowbridge/glowbridge-core/internal/accessory"
)

// handleListAccessories returns all known accessories.
func (s *Server) handleListAccessories(w http.ResponseWriter, _ *http.Request) {
	records := s.registry.List()
	sort.Slice(records, func(i, j int) bool {
		return records[i].Name < records[j].Name
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"accessories": records,
		"count":       len(records),
	})
}

// handleGetAccessory returns a single accessory by UUID.
func (s *Server) handleGetAccessory(w http.ResponseWriter, r *http.Request) {
	record, err := s.registry.Get(chi.URLParam(r, "uuid"))
	if err != nil {
		if errors.Is(err, accessory.ErrNotFound) {
			writeNotFound(w, "accessory not found")
			return
		}
		writeInternalError(w, "failed to get accessory")
		return
	}

	writeJSON(w, http.StatusOK, record)
}

// handleReadOn returns the accessory's on characteristic.
//
// The value comes from the device when it is reachable, otherwise from
// the controller's cache, so this endpoint always succeeds for a known
// accessory.
func (s *Server) handleReadOn(w http.ResponseWriter, r *http.Request) {
	ctrl, err := s.registry.Controller(chi.URLParam(r, "uuid"))
	if err != nil {
		writeNotFound(w, "accessory not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"on": ctrl.ReadOn(r.Context()),
	})
}

// onRequest is the body for PUT .../on.
type onRequest struct {
	On *bool `json:"on"`
}

// handleWriteOn sets the accessory's on characteristic.
func (s *Server) handleWriteOn(w http.ResponseWriter, r *http.Request) {
	ctrl, err := s.registry.Controller(chi.URLParam(r, "uuid"))
	if err != nil {
		writeNotFound(w, "accessory not found")
		return
	}

	var req onRequest
	if decodeErr := json.NewDecoder(r.Body).Decode(&req); decodeErr != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.On == nil {
		writeBadRequest(w, "on field is required")
		return
	}

	ctrl.WriteOn(r.Context(), *req.On)

	writeJSON(w, http.StatusOK, map[string]any{
		"on": *req.On,
	})
}

// handleReadBrightness returns the accessory's brightness characteristic.
func (s *Server) handleReadBrightness(w http.ResponseWriter, r *http.Request) {
	ctrl, err := s.registry.Controller(chi.URLParam(r, "uuid"))
	if err != nil {
		writeNotFound(w, "accessory not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"brightness": ctrl.ReadBrightness(r.Context()),
	})
}

// brightnessRequest is the body for PUT .../brightness.
type brightnessRequest struct {
	Brightness *int `json:"brightness"`
}

// handleWriteBrightness sets the accessory's brightness characteristic.
// The response carries the applied level, which may differ from the
// request when the value was clamped to the 0-100 range.
func (s *Server) handleWriteBrightness(w http.ResponseWriter, r *http.Request) {
	ctrl, err := s.registry.Controller(chi.URLParam(r, "uuid"))
	if err != nil {
		writeNotFound(w, "accessory not found")
		return
	}

	var req brightnessRequest
	if decodeErr := json.NewDecoder(r.Body).Decode(&req); decodeErr != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Brightness == nil {
		writeBadRequest(w, "brightness field is required")
		return
	}

	applied := ctrl.WriteBrightness(r.Context(), *req.Brightness)

	writeJSON(w, http.StatusOK, map[string]any{
		"brightness": applied,
	})
}

// handleGetHistory returns recent state changes for an accessory.
func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	uuid := chi.URLParam(r, "uuid")

	if _, err := s.registry.Get(uuid); err != nil {
		writeNotFound(w, "accessory not found")
		return
	}
	if s.history == nil {
		writeJSON(w, http.StatusOK, map[string]any{"entries": []any{}})
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeBadRequest(w, "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}

	entries, err := s.history.GetHistory(r.Context(), uuid, limit)
	if err != nil {
		writeInternalError(w, "failed to query history")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"entries": entries,
		"count":   len(entries),
	})
}

// handleReconcile re-runs reconciliation against the configured device
// list and returns the applied deltas.
func (s *Server) handleReconcile(w http.ResponseWriter, r *http.Request) {
	if s.devices == nil {
		writeInternalError(w, "no device source configured")
		return
	}

	result := s.registry.Reconcile(r.Context(), s.devices())

	writeJSON(w, http.StatusOK, result)
}
