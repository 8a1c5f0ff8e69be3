package entity

import "time"

// PlaceStatus tracks a place through the create protocol. It is not persisted:
// anything read back from a store is Committed by definition.
type PlaceStatus string

const (
	PlaceStatusPending   PlaceStatus = "pending"
	PlaceStatusCommitted PlaceStatus = "committed"
)

// Location is the geocoded position of a place's address.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Place is owned by exactly one User for its whole lifetime.
// CreatorID and Location are fixed at creation.
type Place struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Address     string      `json:"address"`
	Location    Location    `json:"location"`
	Image       string      `json:"image"`
	CreatorID   string      `json:"creator"`
	Status      PlaceStatus `json:"-"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// Clone returns a copy of p.
func (p *Place) Clone() *Place {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}
