package entity

import (
	"slices"
	"time"
)

// User is the aggregate root for the credential store.
// PasswordHash holds a bcrypt hash and is never serialized.
//
// PlaceIDs is the back-reference list kept in sync with Place.CreatorID
// by the place coordinator; nothing else should mutate it.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Image        string    `json:"image"`
	PlaceIDs     []string  `json:"places"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// OwnsPlace reports whether placeID is in the user's back-reference list.
func (u *User) OwnsPlace(placeID string) bool {
	return slices.Contains(u.PlaceIDs, placeID)
}

// AddPlace appends placeID unless it is already present.
func (u *User) AddPlace(placeID string) {
	if u.OwnsPlace(placeID) {
		return
	}
	u.PlaceIDs = append(u.PlaceIDs, placeID)
}

// RemovePlace drops every occurrence of placeID and reports whether one was found.
func (u *User) RemovePlace(placeID string) bool {
	before := len(u.PlaceIDs)
	u.PlaceIDs = slices.DeleteFunc(u.PlaceIDs, func(id string) bool { return id == placeID })
	return len(u.PlaceIDs) != before
}

// Clone returns a deep copy so callers can mutate without aliasing PlaceIDs.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.PlaceIDs = slices.Clone(u.PlaceIDs)
	if c.PlaceIDs == nil {
		c.PlaceIDs = []string{}
	}
	return &c
}
