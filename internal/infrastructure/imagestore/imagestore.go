// Package imagestore holds the service.ImageStore backends: local disk,
// Google Cloud Storage and MinIO.
package imagestore

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

// ErrUnsupportedType is returned for anything but PNG and JPEG.
var ErrUnsupportedType = errors.New("invalid mime type")

var mimeExt = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpeg",
	"image/jpg":  "jpg",
}

// Extension maps an accepted MIME type to its file extension.
func Extension(contentType string) (string, bool) {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	ext, ok := mimeExt[ct]
	return ext, ok
}

// objectName returns a fresh "<uuid>.<ext>" name; the client's file name is never trusted.
func objectName(contentType string) (string, error) {
	ext, ok := Extension(contentType)
	if !ok {
		return "", ErrUnsupportedType
	}
	return uuid.NewString() + "." + ext, nil
}
