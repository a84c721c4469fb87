package models

import "time"

// CongestionPattern holds the statistical occupancy averages produced by the
// upstream analytic process for a single venue, keyed by place id.
// Bucket averages are nullable: a missing bucket falls back to AvgPopAll.
type CongestionPattern struct {
	PlaceID    string   `json:"place_id"`
	VenueName  string   `json:"venue_name,omitempty"`
	Cluster    *int     `json:"cluster,omitempty"`
	AvgPopAll  *float64 `json:"avg_pop_all"`
	MaxPop     *float64 `json:"max_pop"`
	AvgLunch   *float64 `json:"avg_lunch"`
	AvgDinner  *float64 `json:"avg_dinner"`
	AvgWeekday *float64 `json:"avg_weekday"`
	AvgWeekend *float64 `json:"avg_weekend"`

	UpdatedAt time.Time `json:"updated_at,omitempty"`
}
