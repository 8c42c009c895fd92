package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	gcs "cloud.google.com/go/storage"
)

var ErrObjectNotFound = errors.New("object not found")

const signedURLTTL = 15 * time.Minute

// Service abstracts the object store so handlers can run against the
// in-memory implementation in tests.
type Service interface {
	Upload(ctx context.Context, key, contentType string, r io.Reader) error
	Download(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	SignedURL(key string) (string, error)
}

type gcsService struct {
	client *gcs.Client
	bucket string
}

// NewGCSService connects to the bucket named by GCS_BUCKET_NAME using
// application default credentials.
func NewGCSService(ctx context.Context) (Service, error) {
	bucket := os.Getenv("GCS_BUCKET_NAME")
	if bucket == "" {
		return nil, errors.New("missing env var GCS_BUCKET_NAME")
	}

	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	return &gcsService{client: client, bucket: bucket}, nil
}

func (s *gcsService) Upload(ctx context.Context, key, contentType string, r io.Reader) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	if contentType != "" {
		w.ContentType = contentType
	}
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return fmt.Errorf("write object %q: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close writer for %q: %w", key, err)
	}
	return nil
}

func (s *gcsService) Download(ctx context.Context, key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	r, err := s.client.Bucket(s.bucket).Object(key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, gcs.ErrObjectNotExist) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("open reader for %q: %w", key, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read object %q: %w", key, err)
	}
	return data, nil
}

func (s *gcsService) Delete(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := s.client.Bucket(s.bucket).Object(key).Delete(ctx); err != nil {
		if errors.Is(err, gcs.ErrObjectNotExist) {
			return ErrObjectNotFound
		}
		return fmt.Errorf("delete object %q: %w", key, err)
	}
	return nil
}

func (s *gcsService) SignedURL(key string) (string, error) {
	url, err := s.client.Bucket(s.bucket).SignedURL(key, &gcs.SignedURLOptions{
		Scheme:  gcs.SigningSchemeV4,
		Method:  "GET",
		Expires: time.Now().Add(signedURLTTL),
	})
	if err != nil {
		return "", fmt.Errorf("sign url for %q: %w", key, err)
	}
	return url, nil
}
