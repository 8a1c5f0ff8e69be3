package imagestore

import (
	"context"
	"fmt"
	"io"
	"path"

	"cloud.google.com/go/storage"

	"github.com/oksasatya/places-api/internal/domain/service"
	"github.com/oksasatya/places-api/pkg/helpers"
)

// GCS stores images in a bucket under Prefix and returns their public URL.
type GCS struct {
	Client *storage.Client
	Bucket string
	Prefix string
}

func NewGCS(client *storage.Client, bucket string) *GCS {
	return &GCS{Client: client, Bucket: bucket, Prefix: "places"}
}

func (g *GCS) Save(ctx context.Context, _ string, contentType string, r io.Reader) (string, error) {
	name, err := objectName(contentType)
	if err != nil {
		return "", err
	}
	url, err := helpers.UploadObject(ctx, g.Client, g.Bucket, path.Join(g.Prefix, name), contentType, r)
	if err != nil {
		return "", fmt.Errorf("upload to gcs: %w", err)
	}
	return url, nil
}

func (g *GCS) Delete(ctx context.Context, ref string) error {
	objectPath, ok := helpers.ObjectPathFromURL(g.Bucket, ref)
	if !ok {
		return fmt.Errorf("image %q is not in bucket %s", ref, g.Bucket)
	}
	return helpers.DeleteObject(ctx, g.Client, g.Bucket, objectPath)
}

var _ service.ImageStore = (*GCS)(nil)
