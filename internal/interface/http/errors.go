package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/places-api/pkg/apperror"
	"github.com/oksasatya/places-api/pkg/response"
	"github.com/oksasatya/places-api/pkg/validation"
)

const msgInvalidInput = "Invalid inputs passed, please check your data."

// statusOverrides lets a route answer a kind with something other than its default status.
type statusOverrides map[apperror.Kind]int

// respondError writes err as an envelope. Server-side failures are attached
// to the context so the request logger records the cause.
func respondError(c *gin.Context, err error, overrides statusOverrides) {
	kind := apperror.KindOf(err)
	status := apperror.HTTPStatus(kind)
	if s, ok := overrides[kind]; ok {
		status = s
	}
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	response.Error(c, status, apperror.MessageOf(err), gin.H{"code": kind})
}

func respondInvalid(c *gin.Context, err error) {
	response.Error(c, http.StatusUnprocessableEntity, msgInvalidInput, validation.ToDetails(err))
}
