package models

import (
	"fmt"
	"time"
)

// Venue represents a physical venue from the catalog.
type Venue struct {
	ID       int64   `json:"id"`
	PlaceID  string  `json:"place_id"`
	Name     string  `json:"name"`
	Address  string  `json:"address,omitempty"`
	Latitude float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Category string  `json:"category,omitempty"`
	Phone    string  `json:"phone,omitempty"`

	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

func (v *Venue) ToString() string {
	return fmt.Sprintf("Venue(id=%d, place_id=%s, name=%s, lat=%f, lon=%f)",
		v.ID, v.PlaceID, v.Name, v.Latitude, v.Longitude)
}
