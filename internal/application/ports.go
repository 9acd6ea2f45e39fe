package application

import (
	"context"
	"io"

	"github.com/aadi90392/yoga-master-full/internal/domain/entity"
)

// PaymentGateway is the card processor.
type PaymentGateway interface {
	CreateIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (entity.PaymentIntent, error)
	GetIntent(ctx context.Context, id string) (entity.PaymentIntent, error)
}

// ImageUploader stores an image and returns its public URL.
type ImageUploader interface {
	Upload(ctx context.Context, prefix, filename, contentType string, r io.Reader) (string, error)
}

// ClassSearcher answers free-text class queries with class ids.
type ClassSearcher interface {
	Search(ctx context.Context, q string, size int) ([]string, error)
}

// JobPublisher queues background work.
type JobPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// Index job operations.
const (
	IndexUpsert = "upsert"
	IndexDelete = "delete"
)

// IndexJob asks the worker to refresh one class in the search index.
type IndexJob struct {
	ClassID string `json:"class_id"`
	Op      string `json:"op"`
}
