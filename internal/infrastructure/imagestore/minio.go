package imagestore

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"

	"github.com/oksasatya/places-api/internal/domain/service"
)

// minioAPI is the subset of *minio.Client the store needs; tests fake it.
type minioAPI interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
}

// MinIO stores images as objects in Bucket. References are object keys.
type MinIO struct {
	api    minioAPI
	bucket string
}

func NewMinIO(ctx context.Context, client *minio.Client, bucket string) (*MinIO, error) {
	return newMinIOWithAPI(ctx, client, bucket)
}

func newMinIOWithAPI(ctx context.Context, api minioAPI, bucket string) (*MinIO, error) {
	exists, err := api.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := api.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}
	return &MinIO{api: api, bucket: bucket}, nil
}

func (m *MinIO) Save(ctx context.Context, _ string, contentType string, r io.Reader) (string, error) {
	name, err := objectName(contentType)
	if err != nil {
		return "", err
	}
	if _, err := m.api.PutObject(ctx, m.bucket, name, r, -1, minio.PutObjectOptions{ContentType: contentType}); err != nil {
		return "", fmt.Errorf("failed to upload object: %w", err)
	}
	return name, nil
}

func (m *MinIO) Delete(ctx context.Context, ref string) error {
	if err := m.api.RemoveObject(ctx, m.bucket, ref, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

var _ service.ImageStore = (*MinIO)(nil)
