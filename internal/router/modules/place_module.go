package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/places-api/internal/interface/http"
	"github.com/oksasatya/places-api/internal/interface/middleware"
)

// PlaceModule serves /places. Reads are public, writes need a bearer token.
type PlaceModule struct {
	Handler *handlers.PlaceHandler
	Auth    middleware.TokenAuthenticator
	Redis   *redis.Client
}

func NewPlaceModule(h *handlers.PlaceHandler, auth middleware.TokenAuthenticator, rdb *redis.Client) *PlaceModule {
	return &PlaceModule{Handler: h, Auth: auth, Redis: rdb}
}

func (m *PlaceModule) Register(rg *gin.RouterGroup) {
	places := rg.Group("/places")
	places.GET("/search", middleware.RateLimit(m.Redis, 120, time.Minute, middleware.KeyByIP(), nil), m.Handler.Search)
	places.GET("/user/:uid", m.Handler.GetPlacesByUserID)
	places.GET("/:pid", m.Handler.GetPlaceByID)

	auth := places.Group("")
	auth.Use(middleware.Auth(m.Auth))
	auth.Use(middleware.RateLimit(m.Redis, 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.POST("", middleware.RateLimit(m.Redis, 30, time.Minute, middleware.KeyByUserID(), nil), m.Handler.CreatePlace)
		auth.PATCH("/:pid", m.Handler.UpdatePlace)
		auth.DELETE("/:pid", m.Handler.DeletePlace)
	}
}
