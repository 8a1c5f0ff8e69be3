package application

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/places-api/internal/domain/service"
	"github.com/oksasatya/places-api/internal/infrastructure/events"
	pginfra "github.com/oksasatya/places-api/internal/infrastructure/postgres"
	"github.com/oksasatya/places-api/internal/infrastructure/search"
	"github.com/oksasatya/places-api/pkg/apperror"
	"github.com/oksasatya/places-api/pkg/helpers"
)

const (
	pgOwnerID = "7b1f6f8e-2c1a-4d0e-9a57-3f7a0f5c2b11"
	pgPlaceID = "0c9f3e54-8d2b-4c55-bf3e-1d2a6c7e8f90"
)

var (
	pgUserCols  = []string{"id", "name", "email", "password_hash", "image", "place_ids", "created_at", "updated_at"}
	pgPlaceCols = []string{"id", "title", "description", "address", "lat", "lng", "image", "creator_id", "created_at", "updated_at"}
)

func newPgxPlaceService(t *testing.T, m pgxmock.PgxPoolIface) *PlaceService {
	t.Helper()
	geo := new(MockGeocoder)
	geo.On("ResolveAddress", mock.Anything, mock.Anything).Return(service.Coordinates{Lat: 1, Lon: 2}, nil).Maybe()
	return NewPlaceService(pginfra.NewUserRepository(m), pginfra.NewPlaceRepository(m), pginfra.NewUnitOfWork(m),
		geo, nil, search.Noop{}, events.Noop{}, helpers.NewNopLogger(), defaultImage)
}

func ownerRows(placeIDs []string) *pgxmock.Rows {
	now := time.Now()
	return pgxmock.NewRows(pgUserCols).AddRow(pgOwnerID, "Ada", "ada@example.com", "hash", "img.png", placeIDs, now, now)
}

// Expectations are matched in order, so each test fails if the owner row
// is not locked before the places table is written.
func TestCreatePlace_LocksOwnerBeforeInsert(t *testing.T) {
	m, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer m.Close()

	now := time.Now()
	m.ExpectQuery(`FROM users WHERE id = \$1$`).WithArgs(pgOwnerID).WillReturnRows(ownerRows([]string{}))
	m.ExpectBegin()
	m.ExpectQuery(`FOR UPDATE`).WithArgs(pgOwnerID).WillReturnRows(ownerRows([]string{}))
	m.ExpectQuery(`INSERT INTO places`).
		WithArgs(pgxmock.AnyArg(), "Tower", "A tall one", "Main St", 1.0, 2.0, defaultImage, pgOwnerID).
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	m.ExpectExec(`UPDATE users`).
		WithArgs("Ada", "ada@example.com", "img.png", pgxmock.AnyArg(), pgxmock.AnyArg(), pgOwnerID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	m.ExpectCommit()

	svc := newPgxPlaceService(t, m)
	p, err := svc.CreatePlace(context.Background(), CreatePlaceInput{CreatorID: pgOwnerID, Title: "Tower", Description: "A tall one", Address: "Main St"})
	require.NoError(t, err)
	assert.Equal(t, pgOwnerID, p.CreatorID)
	assert.NoError(t, m.ExpectationsWereMet())
}

func TestDeletePlace_LockOrderAndConcurrentDelete(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		wantKind apperror.Kind
	}{
		{name: "deletes", affected: 1},
		{name: "already deleted by another request", affected: 0, wantKind: apperror.KindNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer m.Close()

			now := time.Now()
			m.ExpectQuery(`FROM places WHERE id = \$1`).WithArgs(pgPlaceID).
				WillReturnRows(pgxmock.NewRows(pgPlaceCols).
					AddRow(pgPlaceID, "Tower", "A tall one", "Main St", 1.0, 2.0, defaultImage, pgOwnerID, now, now))
			m.ExpectBegin()
			m.ExpectQuery(`FOR UPDATE`).WithArgs(pgOwnerID).WillReturnRows(ownerRows([]string{pgPlaceID}))
			m.ExpectExec(`DELETE FROM places`).WithArgs(pgPlaceID).WillReturnResult(pgxmock.NewResult("DELETE", tt.affected))
			if tt.wantKind == "" {
				m.ExpectExec(`UPDATE users`).
					WithArgs("Ada", "ada@example.com", "img.png", []string{}, pgxmock.AnyArg(), pgOwnerID).
					WillReturnResult(pgxmock.NewResult("UPDATE", 1))
				m.ExpectCommit()
			} else {
				m.ExpectRollback()
			}

			err = newPgxPlaceService(t, m).DeletePlace(context.Background(), pgPlaceID, pgOwnerID)
			if tt.wantKind == "" {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Equal(t, tt.wantKind, apperror.KindOf(err))
				assert.Equal(t, msgPlaceNotFound, apperror.MessageOf(err))
			}
			assert.NoError(t, m.ExpectationsWereMet())
		})
	}
}
