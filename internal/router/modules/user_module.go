package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/places-api/internal/interface/http"
	"github.com/oksasatya/places-api/internal/interface/middleware"
)

// UserModule serves /users. All routes are public.
type UserModule struct {
	Handler *handlers.UserHandler
	Redis   *redis.Client
}

func NewUserModule(h *handlers.UserHandler, rdb *redis.Client) *UserModule {
	return &UserModule{Handler: h, Redis: rdb}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	credLimiter := middleware.RateLimit(m.Redis, 10, time.Minute, middleware.KeyByIPAndPath(), nil) // 10 req/min per IP and path

	users := rg.Group("/users")
	users.GET("", m.Handler.GetUsers)
	users.POST("/signup", credLimiter, m.Handler.Signup)
	users.POST("/login", credLimiter, m.Handler.Login)
}
