package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/places-api/internal/domain/entity"
	"github.com/oksasatya/places-api/internal/domain/service"
)

var placeFields = map[string]string{
	"title":       "Empire State Building",
	"description": "One of the most famous sky scrapers in the world!",
	"address":     "20 W 34th St, New York, NY 10001",
}

func placeFrom(t *testing.T, w *httptest.ResponseRecorder) entity.Place {
	t.Helper()
	var data struct {
		Place entity.Place `json:"place"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &data))
	return data.Place
}

func placesFrom(t *testing.T, w *httptest.ResponseRecorder) []entity.Place {
	t.Helper()
	var data struct {
		Places []entity.Place `json:"places"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &data))
	return data.Places
}

func (e *testEnv) createPlace(t *testing.T, token string) entity.Place {
	t.Helper()
	w := e.do(multipartRequest(t, "/api/places", placeFields, "image/png", pngHeader), token)
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	return placeFrom(t, w)
}

func TestCreatePlace(t *testing.T) {
	e := newTestEnv(t)
	owner := e.signup(t, "Max", "max@example.com")

	p := e.createPlace(t, owner.Token)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, owner.UserID, p.CreatorID)
	assert.InDelta(t, 40.7484405, p.Location.Lat, 1e-9)
	assert.InDelta(t, -73.9878584, p.Location.Lng, 1e-9)
	assert.NotEqual(t, defaultImage, p.Image)

	u, err := e.store.Users().GetByID(context.Background(), owner.UserID)
	require.NoError(t, err)
	assert.Equal(t, []string{p.ID}, u.PlaceIDs)

	w := e.do(httptest.NewRequest(http.MethodGet, "/api/places/"+p.ID, nil), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, p.Title, placeFrom(t, w).Title)

	w = e.do(httptest.NewRequest(http.MethodGet, "/api/places/user/"+owner.UserID, nil), "")
	require.Equal(t, http.StatusOK, w.Code)
	places := placesFrom(t, w)
	require.Len(t, places, 1)
	assert.Equal(t, p.ID, places[0].ID)
}

func TestCreatePlace_WithoutImageUsesDefault(t *testing.T) {
	e := newTestEnv(t)
	owner := e.signup(t, "Max", "max@example.com")

	w := e.do(jsonRequest(http.MethodPost, "/api/places", placeFields), owner.Token)
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	assert.Equal(t, defaultImage, placeFrom(t, w).Image)
	assert.Zero(t, e.uploadCount(t))
}

func TestCreatePlace_Failures(t *testing.T) {
	tests := []struct {
		name       string
		token      func(e *testEnv) string
		geoErr     error
		fields     map[string]string
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "no token",
			token:      func(*testEnv) string { return "" },
			fields:     placeFields,
			wantStatus: http.StatusUnauthorized,
			wantMsg:    "Authentication failed!",
		},
		{
			name:       "short description",
			fields:     map[string]string{"title": "t", "description": "abc", "address": "a"},
			wantStatus: http.StatusUnprocessableEntity,
			wantMsg:    msgInvalidInput,
		},
		{
			name:       "address not found",
			geoErr:     service.ErrNoResults,
			fields:     placeFields,
			wantStatus: http.StatusUnprocessableEntity,
			wantMsg:    "Could not find location for the specified address.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEnv(t)
			owner := e.signup(t, "Max", "max@example.com")
			e.geo.err = tt.geoErr
			token := owner.Token
			if tt.token != nil {
				token = tt.token(e)
			}

			w := e.do(multipartRequest(t, "/api/places", tt.fields, "image/png", pngHeader), token)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			assert.Equal(t, tt.wantMsg, decode(t, w).Message)

			assert.Zero(t, e.uploadCount(t))
			u, err := e.store.Users().GetByID(context.Background(), owner.UserID)
			require.NoError(t, err)
			assert.Empty(t, u.PlaceIDs)
		})
	}
}

func TestUpdatePlace(t *testing.T) {
	e := newTestEnv(t)
	owner := e.signup(t, "Max", "max@example.com")
	other := e.signup(t, "Ada", "ada@example.com")
	p := e.createPlace(t, owner.Token)

	body := map[string]string{"title": "New title", "description": "A fresh description"}

	w := e.do(jsonRequest(http.MethodPatch, "/api/places/"+p.ID, body), other.Token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "You are not allowed to edit this place.", decode(t, w).Message)

	w = e.do(jsonRequest(http.MethodPatch, "/api/places/"+p.ID, map[string]string{"title": "x"}), owner.Token)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = e.do(jsonRequest(http.MethodPatch, "/api/places/"+p.ID, body), owner.Token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	got := placeFrom(t, w)
	assert.Equal(t, "New title", got.Title)
	assert.Equal(t, "A fresh description", got.Description)
	assert.Equal(t, p.Address, got.Address)
}

func TestDeletePlace(t *testing.T) {
	e := newTestEnv(t)
	owner := e.signup(t, "Max", "max@example.com")
	other := e.signup(t, "Ada", "ada@example.com")
	p := e.createPlace(t, owner.Token)
	require.Equal(t, 1, e.uploadCount(t))

	w := e.do(httptest.NewRequest(http.MethodDelete, "/api/places/"+p.ID, nil), other.Token)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "You are not allowed to delete this place.", decode(t, w).Message)

	w = e.do(httptest.NewRequest(http.MethodDelete, "/api/places/"+p.ID, nil), owner.Token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var data map[string]string
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &data))
	assert.Equal(t, msgPlaceDeleted, data["message"])

	u, err := e.store.Users().GetByID(context.Background(), owner.UserID)
	require.NoError(t, err)
	assert.Empty(t, u.PlaceIDs)
	assert.Zero(t, e.uploadCount(t))

	w = e.do(httptest.NewRequest(http.MethodGet, "/api/places/"+p.ID, nil), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Could not find a place for this ID.", decode(t, w).Message)

	w = e.do(httptest.NewRequest(http.MethodDelete, "/api/places/"+p.ID, nil), owner.Token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetPlacesByUserID_UnknownUser(t *testing.T) {
	e := newTestEnv(t)
	w := e.do(httptest.NewRequest(http.MethodGet, "/api/places/user/nobody", nil), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, placesFrom(t, w))
}

func TestSearch(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(httptest.NewRequest(http.MethodGet, "/api/places/search?q=%20", nil), "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = e.do(httptest.NewRequest(http.MethodGet, "/api/places/search?q=empire", nil), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, placesFrom(t, w))

	w = e.do(httptest.NewRequest(http.MethodGet, "/api/places/search?q=empire&size=25", nil), "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSearch_RejectsNonNumericSize(t *testing.T) {
	e := newTestEnv(t)

	for _, size := range []string{"abc", "10x", "1.5"} {
		t.Run(size, func(t *testing.T) {
			w := e.do(httptest.NewRequest(http.MethodGet, "/api/places/search?q=empire&size="+size, nil), "")
			assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
			env := decode(t, w)
			assert.Equal(t, msgInvalidInput, env.Message)
			assert.Contains(t, env.Error, "size")
		})
	}
}
