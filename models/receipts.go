package models

// IntentionReceipt is returned after a visit intention is registered.
type IntentionReceipt struct {
	IntentionID     int64 `json:"intention_id"`
	TrackingStarted bool  `json:"tracking_started"`
}

// EntryReceipt is returned after a geofence entry event. IsDuplicate is set
// when an open visit already existed for the (user, venue) pair; in that case
// VisitID refers to the surviving record and no new row was created.
type EntryReceipt struct {
	VisitID     int64 `json:"visit_id"`
	IsDuplicate bool  `json:"is_duplicate"`
}

// ExitReceipt is returned after a geofence exit event. Success is false when
// no open visit existed, which is a business outcome rather than an error.
type ExitReceipt struct {
	Success         bool  `json:"success"`
	VisitID         int64 `json:"visit_id,omitempty"`
	StayTimeMinutes *int  `json:"stay_time_minutes,omitempty"`
	IsValidVisit    bool  `json:"is_valid_visit,omitempty"`
}
