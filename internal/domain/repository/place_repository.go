package repository

import (
	"context"

	"github.com/oksasatya/places-api/internal/domain/entity"
)

// PlaceRepository defines the place store operations.
type PlaceRepository interface {
	Create(ctx context.Context, p *entity.Place) error
	GetByID(ctx context.Context, id string) (*entity.Place, error)
	// ListByIDs returns the places found for ids, in the order given. Unknown ids are skipped.
	ListByIDs(ctx context.Context, ids []string) ([]*entity.Place, error)
	Update(ctx context.Context, p *entity.Place) error
	Delete(ctx context.Context, id string) error
}
