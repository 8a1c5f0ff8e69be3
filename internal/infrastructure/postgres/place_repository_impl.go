package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/oksasatya/places-api/internal/domain/entity"
	"github.com/oksasatya/places-api/internal/domain/repository"
)

const placeColumns = `id::text, title, description, address, lat, lng, image, creator_id::text, created_at, updated_at`

type PlaceRepository struct {
	db DBTX
}

func NewPlaceRepository(db DBTX) *PlaceRepository {
	return &PlaceRepository{db: db}
}

func scanPlace(row pgx.Row) (*entity.Place, error) {
	p := &entity.Place{}
	if err := row.Scan(&p.ID, &p.Title, &p.Description, &p.Address, &p.Location.Lat, &p.Location.Lng,
		&p.Image, &p.CreatorID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Status = entity.PlaceStatusCommitted
	return p, nil
}

func (r *PlaceRepository) Create(ctx context.Context, p *entity.Place) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO places (id, title, description, address, lat, lng, image, creator_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`, p.ID, p.Title, p.Description, p.Address, p.Location.Lat, p.Location.Lng, p.Image, p.CreatorID)

	if err := row.Scan(&p.CreatedAt, &p.UpdatedAt); err != nil {
		return fmt.Errorf("failed to create place: %w", err)
	}
	return nil
}

func (r *PlaceRepository) GetByID(ctx context.Context, id string) (*entity.Place, error) {
	if !validID(id) {
		return nil, repository.ErrNotFound
	}
	p, err := scanPlace(r.db.QueryRow(ctx, `SELECT `+placeColumns+` FROM places WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get place by id: %w", err)
	}
	return p, nil
}

func (r *PlaceRepository) ListByIDs(ctx context.Context, ids []string) ([]*entity.Place, error) {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if validID(id) {
			valid = append(valid, id)
		}
	}
	if len(valid) == 0 {
		return []*entity.Place{}, nil
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+placeColumns+` FROM places WHERE id = ANY($1::text[]::uuid[])`, valid)
	if err != nil {
		return nil, fmt.Errorf("failed to list places: %w", err)
	}
	defer rows.Close()

	byID := make(map[string]*entity.Place, len(valid))
	for rows.Next() {
		p, err := scanPlace(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan place: %w", err)
		}
		byID[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list places: %w", err)
	}

	out := make([]*entity.Place, 0, len(byID))
	for _, id := range valid {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *PlaceRepository) Update(ctx context.Context, p *entity.Place) error {
	if !validID(p.ID) {
		return repository.ErrNotFound
	}
	p.UpdatedAt = time.Now()
	res, err := r.db.Exec(ctx, `
		UPDATE places
		SET title = $1, description = $2, updated_at = $3
		WHERE id = $4
	`, p.Title, p.Description, p.UpdatedAt, p.ID)
	if err != nil {
		return fmt.Errorf("failed to update place: %w", err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *PlaceRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return repository.ErrNotFound
	}
	res, err := r.db.Exec(ctx, `DELETE FROM places WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete place: %w", err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.PlaceRepository = (*PlaceRepository)(nil)
