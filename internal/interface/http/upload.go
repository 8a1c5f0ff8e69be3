package handlers

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/places-api/internal/domain/service"
	"github.com/oksasatya/places-api/internal/infrastructure/imagestore"
	"github.com/oksasatya/places-api/pkg/apperror"
	"github.com/oksasatya/places-api/pkg/helpers"
)

const imageField = "image"

// Uploader takes the optional "image" part of a multipart request and hands
// it to the image store.
type Uploader struct {
	Store        service.ImageStore
	MaxBytes     int64
	DefaultImage string
	Logger       *logrus.Logger
}

func NewUploader(store service.ImageStore, maxBytes int64, defaultImage string, logger *logrus.Logger) *Uploader {
	return &Uploader{Store: store, MaxBytes: maxBytes, DefaultImage: defaultImage, Logger: logger}
}

// Save stores the uploaded image and returns its reference, or "" when the
// request carries no image. Both the declared and the sniffed content type
// must be PNG or JPEG.
func (u *Uploader) Save(c *gin.Context) (string, error) {
	fh, err := c.FormFile(imageField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return "", nil
		}
		return "", apperror.Wrap(apperror.KindValidationFailed, "Could not read the uploaded image.", err)
	}
	if fh.Size > u.MaxBytes {
		return "", apperror.Validation(fmt.Sprintf("Image must be at most %d bytes.", u.MaxBytes))
	}
	declared := fh.Header.Get("Content-Type")
	if _, ok := imagestore.Extension(declared); !ok {
		return "", apperror.Validation("Invalid mime type!")
	}

	f, err := fh.Open()
	if err != nil {
		return "", apperror.Internal("Could not read the uploaded image.", err)
	}
	defer f.Close()

	br := bufio.NewReaderSize(f, 512)
	head, _ := br.Peek(512)
	if _, ok := imagestore.Extension(http.DetectContentType(head)); !ok {
		return "", apperror.Validation("Invalid mime type!")
	}

	ref, err := u.Store.Save(c.Request.Context(), fh.Filename, declared, br)
	if err != nil {
		return "", apperror.Internal("Could not store the uploaded image.", err)
	}
	return ref, nil
}

// Discard releases an image saved for a request that then failed.
func (u *Uploader) Discard(ctx context.Context, ref string) {
	if ref == "" || ref == u.DefaultImage {
		return
	}
	if err := u.Store.Delete(ctx, ref); err != nil {
		helpers.LogWarn(u.Logger, "discard uploaded image failed", err, logrus.Fields{"image": ref})
	}
}
