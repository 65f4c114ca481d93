package model

import "time"

// Charger represents a physical charging station known to the charger hub.
type Charger struct {
	ID          string    `json:"id"`
	Name        string    `json:"charger_name"`
	LocationID  *int      `json:"location_id,omitempty"`
	Communicate string    `json:"communicate_through"`
	Latitude    *float64  `json:"latitude,omitempty"`
	Longitude   *float64  `json:"longitude,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// AtLocation reports whether the charger belongs to the given site location.
// Chargers without a location are never a curtailment target.
func (c Charger) AtLocation(locationID int) bool {
	return c.LocationID != nil && *c.LocationID == locationID
}
