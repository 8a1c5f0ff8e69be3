package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/oksasatya/places-api/internal/domain/entity"
	"github.com/oksasatya/places-api/internal/domain/repository"
)

const userColumns = `id::text, name, email, password_hash, image, place_ids::text[], created_at, updated_at`

type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row pgx.Row) (*entity.User, error) {
	u := &entity.User{}
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Image, &u.PlaceIDs,
		&u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.PlaceIDs = nonNil(u.PlaceIDs)
	return u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	u.PlaceIDs = nonNil(u.PlaceIDs)
	row := r.db.QueryRow(ctx, `
		INSERT INTO users (name, email, password_hash, image, place_ids)
		VALUES ($1, $2, $3, $4, $5::text[]::uuid[])
		RETURNING id::text, created_at, updated_at
	`, u.Name, u.Email, u.PasswordHash, u.Image, u.PlaceIDs)

	if err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.getByID(ctx, id, false)
}

func (r *UserRepository) GetByIDForUpdate(ctx context.Context, id string) (*entity.User, error) {
	return r.getByID(ctx, id, true)
}

func (r *UserRepository) getByID(ctx context.Context, id string, lock bool) (*entity.User, error) {
	if !validID(id) {
		return nil, repository.ErrNotFound
	}
	q := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	if lock {
		q += ` FOR UPDATE`
	}
	u, err := scanUser(r.db.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(email) = $1`,
		strings.ToLower(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return u, nil
}

func (r *UserRepository) List(ctx context.Context) ([]*entity.User, error) {
	rows, err := r.db.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := make([]*entity.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	if !validID(u.ID) {
		return repository.ErrNotFound
	}
	u.UpdatedAt = time.Now()
	u.PlaceIDs = nonNil(u.PlaceIDs)

	res, err := r.db.Exec(ctx, `
		UPDATE users
		SET name = $1, email = $2, image = $3, place_ids = $4::text[]::uuid[], updated_at = $5
		WHERE id = $6
	`, u.Name, u.Email, u.Image, u.PlaceIDs, u.UpdatedAt, u.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicateEmail
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
