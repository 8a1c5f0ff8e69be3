package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/places-api/internal/application"
	"github.com/oksasatya/places-api/internal/interface/middleware"
	"github.com/oksasatya/places-api/pkg/apperror"
	"github.com/oksasatya/places-api/pkg/response"
)

const msgPlaceDeleted = "Place successfully deleted."

type PlaceHandler struct {
	Svc      *application.PlaceService
	Uploader *Uploader
	Logger   *logrus.Logger
}

func NewPlaceHandler(svc *application.PlaceService, uploader *Uploader, logger *logrus.Logger) *PlaceHandler {
	return &PlaceHandler{Svc: svc, Uploader: uploader, Logger: logger}
}

type createPlaceRequest struct {
	Title       string `json:"title" form:"title" binding:"required"`
	Description string `json:"description" form:"description" binding:"required,placedesc"`
	Address     string `json:"address" form:"address" binding:"required"`
}

type updatePlaceRequest struct {
	Title       string `json:"title" form:"title" binding:"required"`
	Description string `json:"description" form:"description" binding:"required,placedesc"`
}

func (h *PlaceHandler) GetPlaceByID(c *gin.Context) {
	p, err := h.Svc.GetPlace(c.Request.Context(), c.Param("pid"))
	if err != nil {
		respondError(c, err, nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"place": p}, "place fetched", nil)
}

func (h *PlaceHandler) GetPlacesByUserID(c *gin.Context) {
	places, err := h.Svc.ListPlacesByUser(c.Request.Context(), c.Param("uid"))
	if err != nil {
		respondError(c, err, nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"places": places}, "places fetched", nil)
}

// Search takes q and an optional numeric size; the indexer clamps size to 1..50.
func (h *PlaceHandler) Search(c *gin.Context) {
	size, err := strconv.Atoi(c.DefaultQuery("size", "10"))
	if err != nil {
		response.Error(c, http.StatusUnprocessableEntity, msgInvalidInput, map[string]string{"size": "size must be a number"})
		return
	}
	places, err := h.Svc.SearchPlaces(c.Request.Context(), c.Query("q"), size)
	if err != nil {
		respondError(c, err, nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"places": places}, "places fetched", nil)
}

// CreatePlace answers 202 on success, as existing clients expect.
func (h *PlaceHandler) CreatePlace(c *gin.Context) {
	var req createPlaceRequest
	if err := c.ShouldBind(&req); err != nil {
		respondInvalid(c, err)
		return
	}

	image, err := h.Uploader.Save(c)
	if err != nil {
		respondError(c, err, nil)
		return
	}

	p, err := h.Svc.CreatePlace(c.Request.Context(), application.CreatePlaceInput{
		CreatorID:   c.GetString(middleware.CtxUserIDKey),
		Title:       req.Title,
		Description: req.Description,
		Address:     req.Address,
		Image:       image,
	})
	if err != nil {
		h.Uploader.Discard(c.Request.Context(), image)
		respondError(c, err, nil)
		return
	}
	response.Success(c, http.StatusAccepted, gin.H{"place": p}, "place created", nil)
}

// UpdatePlace reports a non-owner as 401, unlike DeletePlace.
func (h *PlaceHandler) UpdatePlace(c *gin.Context) {
	var req updatePlaceRequest
	if err := c.ShouldBind(&req); err != nil {
		respondInvalid(c, err)
		return
	}
	p, err := h.Svc.UpdatePlace(c.Request.Context(), c.Param("pid"), c.GetString(middleware.CtxUserIDKey), req.Title, req.Description)
	if err != nil {
		respondError(c, err, statusOverrides{apperror.KindForbidden: http.StatusUnauthorized})
		return
	}
	response.Success(c, http.StatusOK, gin.H{"place": p}, "place updated", nil)
}

func (h *PlaceHandler) DeletePlace(c *gin.Context) {
	if err := h.Svc.DeletePlace(c.Request.Context(), c.Param("pid"), c.GetString(middleware.CtxUserIDKey)); err != nil {
		respondError(c, err, statusOverrides{apperror.KindForbidden: http.StatusForbidden})
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": msgPlaceDeleted}, msgPlaceDeleted, nil)
}
