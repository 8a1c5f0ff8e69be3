package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/places-api/internal/application"
	"github.com/oksasatya/places-api/pkg/response"
)

type UserHandler struct {
	Svc      *application.UserService
	Uploader *Uploader
	Logger   *logrus.Logger
}

func NewUserHandler(svc *application.UserService, uploader *Uploader, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Uploader: uploader, Logger: logger}
}

type signupRequest struct {
	Name     string `json:"name" form:"name" binding:"required"`
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required,pwd"`
}

type loginRequest struct {
	Email    string `json:"email" form:"email" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

func (h *UserHandler) GetUsers(c *gin.Context) {
	users, err := h.Svc.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, err, nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"users": users}, "users fetched", nil)
}

// Signup accepts JSON or a multipart form with an optional "image" file.
func (h *UserHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBind(&req); err != nil {
		respondInvalid(c, err)
		return
	}

	image, err := h.Uploader.Save(c)
	if err != nil {
		respondError(c, err, nil)
		return
	}

	res, err := h.Svc.Signup(c.Request.Context(), application.SignupInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Image:    image,
	})
	if err != nil {
		h.Uploader.Discard(c.Request.Context(), image)
		respondError(c, err, nil)
		return
	}
	response.Success(c, http.StatusCreated, res, "signed up", nil)
}

func (h *UserHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		respondInvalid(c, err)
		return
	}
	res, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err, nil)
		return
	}
	response.Success(c, http.StatusOK, res, "logged in", nil)
}
