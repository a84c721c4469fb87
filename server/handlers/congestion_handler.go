package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"congestion-server/dao"
	"congestion-server/service"
	"congestion-server/util"
)

const TIMESTAMP_QUERY_ARG = "timestamp"

// CongestionHandler serves the venue catalog and congestion queries.
type CongestionHandler struct {
	venueStore        dao.VenueStore
	congestionService *service.CongestionService
}

// NewCongestionHandler constructs a CongestionHandler.
func NewCongestionHandler(venueStore dao.VenueStore, congestionService *service.CongestionService) *CongestionHandler {
	return &CongestionHandler{
		venueStore:        venueStore,
		congestionService: congestionService,
	}
}

// GetVenues handles GET /v1/venues
func (h *CongestionHandler) GetVenues(w http.ResponseWriter, r *http.Request) {
	venues, err := h.venueStore.FindAll(r.Context())
	if err != nil {
		log.Println("Error listing venues:", err)
		writeError(w, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "venue store unreachable")
		return
	}
	writeDataWithCount(w, http.StatusOK, venues, len(venues))
}

// GetVenueCongestion handles GET /v1/venues/{id}/congestion?timestamp=RFC3339
func (h *CongestionHandler) GetVenueCongestion(w http.ResponseWriter, r *http.Request) {
	venueID, ok := parseVenueID(w, r)
	if !ok {
		return
	}

	var targetTime *time.Time
	if raw := r.URL.Query().Get(TIMESTAMP_QUERY_ARG); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_TIME_FORMAT", "timestamp must be RFC 3339")
			return
		}
		targetTime = &t
	}

	report, err := h.congestionService.ComputeCongestion(r.Context(), venueID, targetTime)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeData(w, http.StatusOK, report)
}

// GetVenueCongestionChart handles GET /v1/venues/{id}/congestion/chart
func (h *CongestionHandler) GetVenueCongestionChart(w http.ResponseWriter, r *http.Request) {
	venueID, ok := parseVenueID(w, r)
	if !ok {
		return
	}

	day := time.Now().UTC()
	if raw := r.URL.Query().Get(TIMESTAMP_QUERY_ARG); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_TIME_FORMAT", "timestamp must be RFC 3339")
			return
		}
		day = t.UTC()
	}

	curve, venue, err := h.congestionService.ComputeDailyBaseCurve(r.Context(), venueID, day)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := util.PlotDailyCongestionCurve(venue.Name, curve, w); err != nil {
		log.Println("Error rendering congestion chart:", err)
	}
}

// Ping handles GET /ping
func (h *CongestionHandler) Ping(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, map[string]string{"status": "pong"})
}

func parseVenueID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := mux.Vars(r)["id"]
	venueID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_VENUE_ID", "venue id must be an integer")
		return 0, false
	}
	return venueID, true
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrVenueNotFound):
		writeError(w, http.StatusNotFound, "VENUE_NOT_FOUND", "venue does not exist")
	case errors.Is(err, service.ErrInvalidPartySize):
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, service.ErrPastIntendedTime):
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, service.ErrStoreUnavailable):
		log.Println("Store unavailable:", err)
		writeError(w, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "backing store unreachable")
	default:
		log.Println("Internal error:", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "unexpected failure")
	}
}
