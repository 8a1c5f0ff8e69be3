// Package service declares the outbound collaborators the application layer
// depends on. Implementations live under internal/infrastructure.
package service

import (
	"context"
	"errors"
	"io"

	"github.com/oksasatya/places-api/internal/domain/entity"
)

var (
	// ErrNoResults means the geocoder found nothing for the address.
	ErrNoResults = errors.New("no location found for address")
	// ErrIncompleteResult means the geocoder answered without usable coordinates.
	ErrIncompleteResult = errors.New("incomplete location data")
)

// Coordinates as returned by a geocoding provider.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Geocoder resolves free text to coordinates.
type Geocoder interface {
	ResolveAddress(ctx context.Context, address string) (Coordinates, error)
}

// ImageStore persists uploaded images and returns an opaque reference.
type ImageStore interface {
	Save(ctx context.Context, filename, contentType string, r io.Reader) (string, error)
	Delete(ctx context.Context, ref string) error
}

// PlaceIndexer keeps a search index of places. Failures never affect the stores.
type PlaceIndexer interface {
	Index(ctx context.Context, p *entity.Place) error
	Remove(ctx context.Context, id string) error
	Search(ctx context.Context, q string, size int) ([]string, error)
}

// Event names published by the application layer.
const (
	EventUserSignedUp = "user.signed_up"
	EventPlaceCreated = "place.created"
)

// Event is a fire-and-forget notification.
type Event struct {
	Name string
	To   string
	Data map[string]any
}

// EventPublisher ships events to the outside world (email worker).
type EventPublisher interface {
	Publish(ctx context.Context, ev Event) error
}
