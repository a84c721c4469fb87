package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"congestion-server/service"
)

// VisitHandler serves intention registrations and geofence entry/exit events.
type VisitHandler struct {
	visitService *service.VisitTrackingService
}

// NewVisitHandler constructs a VisitHandler.
func NewVisitHandler(visitService *service.VisitTrackingService) *VisitHandler {
	return &VisitHandler{visitService: visitService}
}

type intentionRequest struct {
	UserID         string `json:"user_id"`
	VenueID        int64  `json:"venue_id"`
	IntendedTime   string `json:"intended_time"`
	IntendedPeople int    `json:"intended_people"`
}

type entryRequest struct {
	UserID         string `json:"user_id"`
	VenueID        int64  `json:"venue_id"`
	EntryTime      string `json:"entry_time"`
	IntendedPeople int    `json:"intended_people"`
}

type exitRequest struct {
	UserID   string `json:"user_id"`
	VenueID  int64  `json:"venue_id"`
	ExitTime string `json:"exit_time"`
}

// RegisterIntention handles POST /v1/visits/intentions
func (h *VisitHandler) RegisterIntention(w http.ResponseWriter, r *http.Request) {
	var req intentionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "request body must be JSON")
		return
	}
	if req.UserID == "" || req.VenueID == 0 || req.IntendedTime == "" {
		writeError(w, http.StatusBadRequest, "MISSING_FIELD", "user_id, venue_id and intended_time are required")
		return
	}

	intendedTime, ok := parseEventTime(w, req.IntendedTime, "intended_time")
	if !ok {
		return
	}

	receipt, err := h.visitService.RegisterIntention(r.Context(), req.UserID, req.VenueID, intendedTime, req.IntendedPeople)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeData(w, http.StatusCreated, receipt)
}

// RecordEntry handles POST /v1/visits/entry
func (h *VisitHandler) RecordEntry(w http.ResponseWriter, r *http.Request) {
	var req entryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "request body must be JSON")
		return
	}
	if req.UserID == "" || req.VenueID == 0 || req.EntryTime == "" {
		writeError(w, http.StatusBadRequest, "MISSING_FIELD", "user_id, venue_id and entry_time are required")
		return
	}

	entryTime, ok := parseEventTime(w, req.EntryTime, "entry_time")
	if !ok {
		return
	}

	receipt, err := h.visitService.RecordEntry(r.Context(), req.UserID, req.VenueID, entryTime, req.IntendedPeople)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeData(w, http.StatusCreated, receipt)
}

// RecordExit handles POST /v1/visits/exit
func (h *VisitHandler) RecordExit(w http.ResponseWriter, r *http.Request) {
	var req exitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "request body must be JSON")
		return
	}
	if req.UserID == "" || req.VenueID == 0 || req.ExitTime == "" {
		writeError(w, http.StatusBadRequest, "MISSING_FIELD", "user_id, venue_id and exit_time are required")
		return
	}

	exitTime, ok := parseEventTime(w, req.ExitTime, "exit_time")
	if !ok {
		return
	}

	receipt, err := h.visitService.RecordExit(r.Context(), req.UserID, req.VenueID, exitTime)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeData(w, http.StatusOK, receipt)
}

func parseEventTime(w http.ResponseWriter, raw, field string) (time.Time, bool) {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_TIME_FORMAT", field+" must be RFC 3339")
		return time.Time{}, false
	}
	return t, true
}
