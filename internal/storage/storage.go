// Package storage wraps the object store used for purchase order attachments
// and exported reports.
package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/datphandbplus/financial-be-sub001/internal/config"
)

type Store struct {
	client *minio.Client
	bucket string
}

// New connects to the configured object store. An empty endpoint yields a nil
// client; uploads then keep metadata only, matching local development runs.
func New(cfg config.MinIOConfig) (*Store, error) {
	if cfg.Endpoint == "" {
		return &Store{bucket: cfg.Bucket}, nil
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("connect object store: %w", err)
	}
	return &Store{client: client, bucket: cfg.Bucket}, nil
}

// Upload stores one object under a dated key and returns the key.
func (s *Store) Upload(ctx context.Context, channel, prefix, fileName string, reader io.Reader, fileSize int64, contentType string) (string, error) {
	objectName := fmt.Sprintf("%s/%s/%s/%s%s",
		channel, prefix,
		time.Now().Format("2006/01/02"),
		uuid.New().String()[:8],
		filepath.Ext(fileName),
	)

	if s.client != nil {
		_, err := s.client.PutObject(ctx, s.bucket, objectName, reader, fileSize, minio.PutObjectOptions{
			ContentType: contentType,
		})
		if err != nil {
			return "", fmt.Errorf("upload object: %w", err)
		}
	}
	return objectName, nil
}

// Download streams one stored object.
func (s *Store) Download(ctx context.Context, objectName string) (io.ReadCloser, error) {
	if s.client == nil {
		return nil, fmt.Errorf("object store not configured")
	}
	object, err := s.client.GetObject(ctx, s.bucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("download object: %w", err)
	}
	return object, nil
}

// Remove deletes one stored object. Missing objects are not an error.
func (s *Store) Remove(ctx context.Context, objectName string) error {
	if s.client == nil {
		return nil
	}
	return s.client.RemoveObject(ctx, s.bucket, objectName, minio.RemoveObjectOptions{})
}
