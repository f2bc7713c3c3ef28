package minio_storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
)

// ImageStorage keeps course cover images in a single bucket.
type ImageStorage struct {
	storage      *MinioStorage
	bucket       string
	presignedTTL time.Duration
}

func NewImageStorage(ctx context.Context, storage *MinioStorage, bucketName string, presignedTTL time.Duration) (*ImageStorage, error) {
	if err := storage.EnsureBucket(ctx, bucketName); err != nil {
		return nil, err
	}
	return &ImageStorage{storage: storage, bucket: bucketName, presignedTTL: presignedTTL}, nil
}

func (s *ImageStorage) UploadImage(
	ctx context.Context,
	courseID uuid.UUID,
	filename string,
	reader io.Reader,
	size int64,
	contentType string,
) (objectKey string, err error) {
	objectKey, contentType = imageObject(courseID, filename, contentType)

	_, err = s.storage.client.PutObject(
		ctx,
		s.bucket,
		objectKey,
		reader,
		size,
		minio.PutObjectOptions{ContentType: contentType},
	)
	if err != nil {
		return "", fmt.Errorf("put course image: %w", err)
	}
	return objectKey, nil
}

func (s *ImageStorage) PresignedURL(ctx context.Context, objectKey string) (string, error) {
	presignedURL, err := s.storage.client.PresignedGetObject(
		ctx,
		s.bucket,
		objectKey,
		s.presignedTTL,
		make(url.Values),
	)
	if err != nil {
		return "", err
	}
	return presignedURL.String(), nil
}

func (s *ImageStorage) DeleteImage(ctx context.Context, objectKey string) error {
	return s.storage.client.RemoveObject(ctx, s.bucket, objectKey, minio.RemoveObjectOptions{})
}

func imageObject(courseID uuid.UUID, filename, contentType string) (objectKey, ct string) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		ext = ".bin"
	}
	objectKey = fmt.Sprintf("courses/%s/cover%s", courseID.String(), ext)

	if contentType == "" {
		contentType = mime.TypeByExtension(ext)
		if contentType == "" {
			contentType = "application/octet-stream"
		}
	}
	return objectKey, contentType
}
