package models

import "time"

// VisitIntention is a user's declared future visit to a venue.
type VisitIntention struct {
	ID             int64     `json:"id"`
	UserID         string    `json:"user_id"`
	VenueID        int64     `json:"venue_id"`
	IntendedTime   time.Time `json:"intended_time"`
	IntendedPeople int       `json:"intended_people"`
	CreatedAt      time.Time `json:"intention_timestamp"`
	IsActive       bool      `json:"is_active"`
}

// ActualVisit is a realized on-site visit. ExitTime is nil while the user is
// still on-site; such a record is an "open" visit. At most one open visit may
// exist per (user, venue) pair.
type ActualVisit struct {
	ID             int64      `json:"id"`
	UserID         string     `json:"user_id"`
	VenueID        int64      `json:"venue_id"`
	EntryTime      time.Time  `json:"actual_entry_time"`
	ExitTime       *time.Time `json:"actual_exit_time,omitempty"`
	IntendedPeople *int       `json:"intended_people,omitempty"`
	IsValidVisit   bool       `json:"is_valid_visit"`
	CreatedAt      time.Time  `json:"created_at"`
}

// IsOpen reports whether the visit has no exit recorded yet.
func (v *ActualVisit) IsOpen() bool {
	return v.ExitTime == nil
}

// StayTimeMinutes returns the whole-minute stay duration, or nil while the
// visit is still open.
func (v *ActualVisit) StayTimeMinutes() *int {
	if v.ExitTime == nil {
		return nil
	}
	minutes := int(v.ExitTime.Sub(v.EntryTime).Seconds() / 60)
	return &minutes
}

// PartySize returns the declared party size, defaulting to 1 when unknown.
func (v *ActualVisit) PartySize() int {
	if v.IntendedPeople == nil {
		return 1
	}
	return *v.IntendedPeople
}
