package helpers

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/option"
)

// NewGCSClient creates a Google Cloud Storage client. If credsPath is empty, ADC is used.
func NewGCSClient(ctx context.Context, credsPath string) (*storage.Client, error) {
	if credsPath == "" {
		return storage.NewClient(ctx)
	}
	return storage.NewClient(ctx, option.WithCredentialsFile(credsPath))
}

// GCSUploader stores images in one bucket and returns their public URL.
type GCSUploader struct {
	client *storage.Client
	bucket string
}

func NewGCSUploader(client *storage.Client, bucket string) *GCSUploader {
	return &GCSUploader{client: client, bucket: bucket}
}

// Upload writes r under prefix/<uuid><ext> and returns the public URL.
func (u *GCSUploader) Upload(ctx context.Context, prefix, filename, contentType string, r io.Reader) (string, error) {
	objectPath := ObjectName(prefix, filename)
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	wc := u.client.Bucket(u.bucket).Object(objectPath).NewWriter(ctx)
	wc.ContentType = contentType
	wc.ChunkSize = 0 // disable chunking for small files
	if _, err := io.Copy(wc, r); err != nil {
		_ = wc.Close()
		return "", err
	}
	if err := wc.Close(); err != nil {
		return "", err
	}
	return PublicURL(u.bucket, objectPath), nil
}

// ObjectName builds a collision-free object path keeping the original extension.
func ObjectName(prefix, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return path.Join(strings.Trim(prefix, "/"), uuid.NewString()+ext)
}

// PublicURL builds a public URL for an object (assuming public read access or signed URLs)
func PublicURL(bucket, objectPath string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucket, objectPath)
}
