package router

import "github.com/gin-gonic/gin"

// Module registers a feature's routes under /api. Modules receive their
// dependencies at construction; Register must not fail.
type Module interface {
	Register(api *gin.RouterGroup)
}
