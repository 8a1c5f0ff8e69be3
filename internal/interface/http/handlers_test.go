package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/places-api/internal/application"
	"github.com/oksasatya/places-api/internal/domain/service"
	"github.com/oksasatya/places-api/internal/infrastructure/events"
	"github.com/oksasatya/places-api/internal/infrastructure/imagestore"
	"github.com/oksasatya/places-api/internal/infrastructure/memory"
	"github.com/oksasatya/places-api/internal/infrastructure/search"
	"github.com/oksasatya/places-api/internal/interface/middleware"
	"github.com/oksasatya/places-api/pkg/helpers"
	"github.com/oksasatya/places-api/pkg/validation"
)

const defaultImage = "uploads/images/default.png"

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func init() {
	gin.SetMode(gin.TestMode)
	validation.Init()
}

type stubGeocoder struct{ err error }

func (g stubGeocoder) ResolveAddress(context.Context, string) (service.Coordinates, error) {
	if g.err != nil {
		return service.Coordinates{}, g.err
	}
	return service.Coordinates{Lat: 40.7484405, Lon: -73.9878584}, nil
}

type testEnv struct {
	store  *memory.Store
	images *imagestore.Local
	geo    *stubGeocoder
	users  *application.UserService
	places *application.PlaceService
	engine *gin.Engine
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := helpers.NewNopLogger()
	images, err := imagestore.NewLocal(t.TempDir())
	require.NoError(t, err)
	jwt, err := helpers.NewJWTManager("test-secret", 0)
	require.NoError(t, err)

	e := &testEnv{store: memory.NewStore(), images: images, geo: &stubGeocoder{}}
	e.users = application.NewUserService(e.store.Users(), jwt, events.Noop{}, logger, 4, defaultImage)
	e.places = application.NewPlaceService(e.store.Users(), e.store.Places(), e.store, e.geo, images, search.Noop{}, events.Noop{}, logger, defaultImage)

	up := NewUploader(images, 1<<20, defaultImage, logger)
	uh := NewUserHandler(e.users, up, logger)
	ph := NewPlaceHandler(e.places, up, logger)

	r := gin.New()
	r.Use(middleware.RequestIDMiddleware())
	api := r.Group("/api")
	api.GET("/users", uh.GetUsers)
	api.POST("/users/signup", uh.Signup)
	api.POST("/users/login", uh.Login)
	api.GET("/places/search", ph.Search)
	api.GET("/places/user/:uid", ph.GetPlacesByUserID)
	api.GET("/places/:pid", ph.GetPlaceByID)
	auth := api.Group("/places", middleware.Auth(e.users))
	auth.POST("", ph.CreatePlace)
	auth.PATCH("/:pid", ph.UpdatePlace)
	auth.DELETE("/:pid", ph.DeletePlace)
	e.engine = r
	return e
}

func (e *testEnv) signup(t *testing.T, name, email string) application.AuthResult {
	t.Helper()
	res, err := e.users.Signup(context.Background(), application.SignupInput{Name: name, Email: email, Password: "secret1"})
	require.NoError(t, err)
	return res
}

func (e *testEnv) do(req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func (e *testEnv) uploadCount(t *testing.T) int {
	t.Helper()
	entries, err := os.ReadDir(e.images.Dir)
	require.NoError(t, err)
	return len(entries)
}

type envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Error   map[string]string `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func jsonRequest(method, target string, body any) *http.Request {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(method, target, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// multipartRequest builds a form with an optional image part declared as contentType.
func multipartRequest(t *testing.T, target string, fields map[string]string, contentType string, image []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if image != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="image"; filename="pic.png"`)
		h.Set("Content-Type", contentType)
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = io.Copy(part, bytes.NewReader(image))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}
