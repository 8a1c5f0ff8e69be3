package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/places-api/internal/application"
	"github.com/oksasatya/places-api/pkg/apperror"
	"github.com/oksasatya/places-api/pkg/response"
)

const (
	CtxUserIDKey    = "userID"
	CtxUserEmailKey = "userEmail"
)

// TokenAuthenticator is satisfied by *application.UserService.
type TokenAuthenticator interface {
	Authenticate(token string) (application.Identity, error)
}

// Auth requires "Authorization: Bearer <token>" and sets userID and
// userEmail in the Gin context. Preflight requests pass untouched.
func Auth(auth TokenAuthenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}
		id, err := auth.Authenticate(bearerToken(c.GetHeader("Authorization")))
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, apperror.MessageOf(err), nil)
			return
		}
		c.Set(CtxUserIDKey, id.UserID)
		c.Set(CtxUserEmailKey, id.Email)
		c.Next()
	}
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
