package models

import "time"

// Congestion level labels, fixed thresholds 30/60/80.
const (
	CongestionLevelLow      = "low"
	CongestionLevelModerate = "moderate"
	CongestionLevelHigh     = "high"
	CongestionLevelVeryHigh = "very high"
)

// CongestionReport is the result of a congestion query for a venue at a
// point in time. PredictedCongestion is the cached/base score derived from
// the historical pattern; RealtimeCongestion folds in live demand.
type CongestionReport struct {
	VenueID             int64     `json:"venue_id"`
	VenueName           string    `json:"venue_name"`
	PredictedCongestion int       `json:"predicted_congestion"`
	RealtimeCongestion  int       `json:"realtime_congestion"`
	CurrentVisitors     int       `json:"current_visitors"`
	ExpectedVisitors    int       `json:"expected_visitors"`
	Timestamp           time.Time `json:"timestamp"`
	CongestionLevel     string    `json:"congestion_level"`
}
