package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/places-api/internal/domain/entity"
	"github.com/oksasatya/places-api/internal/domain/repository"
)

var placeCols = []string{"id", "title", "description", "address", "lat", "lng", "image", "creator_id", "created_at", "updated_at"}

func TestPlaceRepository_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now()
	p := &entity.Place{
		ID: testPlaceID, Title: "Empire State Building", Description: "A tall one", Address: "20 W 34th St",
		Location: entity.Location{Lat: 40.7484, Lng: -73.9857}, Image: "img.png", CreatorID: testUserID,
	}
	mock.ExpectQuery(`INSERT INTO places`).
		WithArgs(p.ID, p.Title, p.Description, p.Address, p.Location.Lat, p.Location.Lng, p.Image, p.CreatorID).
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	require.NoError(t, NewPlaceRepository(mock).Create(context.Background(), p))
	assert.Equal(t, now, p.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlaceRepository_GetByID(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name      string
		id        string
		mockSetup func(m pgxmock.PgxPoolIface)
		wantErr   error
	}{
		{
			name: "found",
			id:   testPlaceID,
			mockSetup: func(m pgxmock.PgxPoolIface) {
				m.ExpectQuery(`SELECT .+ FROM places WHERE id = \$1`).
					WithArgs(testPlaceID).
					WillReturnRows(pgxmock.NewRows(placeCols).
						AddRow(testPlaceID, "Empire", "A tall one", "NYC", 40.7, -73.9, "img.png", testUserID, now, now))
			},
		},
		{
			name: "missing",
			id:   testPlaceID,
			mockSetup: func(m pgxmock.PgxPoolIface) {
				m.ExpectQuery(`SELECT .+ FROM places`).WithArgs(testPlaceID).WillReturnError(pgx.ErrNoRows)
			},
			wantErr: repository.ErrNotFound,
		},
		{
			name:      "malformed id",
			id:        "p1",
			mockSetup: func(m pgxmock.PgxPoolIface) {},
			wantErr:   repository.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()
			tt.mockSetup(mock)

			p, err := NewPlaceRepository(mock).GetByID(context.Background(), tt.id)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, testUserID, p.CreatorID)
				assert.Equal(t, entity.Location{Lat: 40.7, Lng: -73.9}, p.Location)
				assert.Equal(t, entity.PlaceStatusCommitted, p.Status)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPlaceRepository_ListByIDs_KeepsOrder(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now()
	second := "5a3c1e2f-7b6d-4e8a-9c0b-1f2e3d4c5b6a"
	missing := "9e8d7c6b-5a4f-4e3d-8c2b-1a0f9e8d7c6b"
	mock.ExpectQuery(`WHERE id = ANY`).
		WithArgs([]string{second, testPlaceID, missing}).
		WillReturnRows(pgxmock.NewRows(placeCols).
			AddRow(testPlaceID, "First", "desc1", "a1", 1.0, 2.0, "1.png", testUserID, now, now).
			AddRow(second, "Second", "desc2", "a2", 3.0, 4.0, "2.png", testUserID, now, now))

	places, err := NewPlaceRepository(mock).ListByIDs(context.Background(), []string{second, "junk", testPlaceID, missing})
	require.NoError(t, err)
	require.Len(t, places, 2)
	assert.Equal(t, second, places[0].ID)
	assert.Equal(t, testPlaceID, places[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlaceRepository_ListByIDs_Empty(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	places, err := NewPlaceRepository(mock).ListByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, places)
	assert.NotNil(t, places)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlaceRepository_UpdateAndDelete(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPlaceRepository(mock)
	mock.ExpectExec(`UPDATE places`).
		WithArgs("New title", "New description", pgxmock.AnyArg(), testPlaceID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`DELETE FROM places`).
		WithArgs(testPlaceID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(`DELETE FROM places`).
		WithArgs(testPlaceID).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	require.NoError(t, repo.Update(context.Background(), &entity.Place{ID: testPlaceID, Title: "New title", Description: "New description"}))
	require.NoError(t, repo.Delete(context.Background(), testPlaceID))
	assert.ErrorIs(t, repo.Delete(context.Background(), testPlaceID), repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
