package router

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/places-api/pkg/response"
)

const msgRouteNotFound = "Could not find this page"

type Registry struct {
	Engine      *gin.Engine
	API         *gin.RouterGroup
	middlewares []gin.HandlerFunc
	modules     []Module

	// SPADir, when set, holds a built front-end whose index.html answers
	// every unknown non-API GET.
	SPADir string
}

func NewRegistry(engine *gin.Engine) *Registry {
	api := engine.Group("/api")
	return &Registry{Engine: engine, API: api}
}

func (r *Registry) Use(mw ...gin.HandlerFunc) {
	r.middlewares = append(r.middlewares, mw...)
}

func (r *Registry) Add(mod Module) {
	r.modules = append(r.modules, mod)
}

// ServeUploads exposes locally stored images under urlPrefix.
func (r *Registry) ServeUploads(urlPrefix, dir string) {
	r.Engine.Static("/"+strings.Trim(urlPrefix, "/"), dir)
}

func (r *Registry) RegisterAll() {
	if len(r.middlewares) > 0 {
		r.API.Use(r.middlewares...)
	}
	for _, m := range r.modules {
		m.Register(r.API)
	}
	r.Engine.NoRoute(r.noRoute)
}

func (r *Registry) noRoute(c *gin.Context) {
	if r.SPADir != "" && c.Request.Method == http.MethodGet && !strings.HasPrefix(c.Request.URL.Path, "/api/") {
		name := filepath.Join(r.SPADir, filepath.FromSlash(filepath.Clean("/"+c.Request.URL.Path)))
		if fi, err := os.Stat(name); err == nil && !fi.IsDir() {
			c.File(name)
			return
		}
		c.File(filepath.Join(r.SPADir, "index.html"))
		return
	}
	response.Error(c, http.StatusNotFound, msgRouteNotFound, nil)
}
