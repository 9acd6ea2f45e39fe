package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/aadi90392/yoga-master-full/internal/domain/entity"
	repo "github.com/aadi90392/yoga-master-full/internal/domain/repository"
	"github.com/aadi90392/yoga-master-full/pkg/helpers"
)

// ClassIndexWriter maintains the search index.
type ClassIndexWriter interface {
	Index(ctx context.Context, c *entity.Class) error
	Delete(ctx context.Context, id string) error
}

// IndexService applies queued index jobs against the search backend.
type IndexService struct {
	Classes repo.ClassRepository
	Index   ClassIndexWriter
	Logger  *logrus.Logger
}

func NewIndexService(classes repo.ClassRepository, index ClassIndexWriter, logger *logrus.Logger) *IndexService {
	return &IndexService{Classes: classes, Index: index, Logger: logger}
}

// Handle applies one job. A missing class turns an upsert into a delete.
// Transient backend failures are requeued.
func (s *IndexService) Handle(ctx context.Context, job IndexJob) error {
	log := s.Logger.WithFields(logrus.Fields{"class_id": job.ClassID, "op": job.Op})
	if job.ClassID == "" {
		log.Warn("index job without class id dropped")
		return nil
	}
	switch job.Op {
	case IndexDelete:
		if err := s.Index.Delete(ctx, job.ClassID); err != nil {
			log.WithError(err).Warn("index delete failed")
			return helpers.ErrRequeue
		}
	case IndexUpsert:
		c, err := s.Classes.GetByID(ctx, job.ClassID)
		if errors.Is(err, repo.ErrNotFound) {
			return s.Handle(ctx, IndexJob{ClassID: job.ClassID, Op: IndexDelete})
		}
		if err != nil {
			log.WithError(err).Warn("load class for indexing failed")
			return helpers.ErrRequeue
		}
		if err := s.Index.Index(ctx, c); err != nil {
			log.WithError(err).Warn("index upsert failed")
			return helpers.ErrRequeue
		}
	default:
		log.Warn("unknown index op dropped")
		return nil
	}
	log.Debug("index job applied")
	return nil
}

// Backfill indexes every approved class. Run once at worker start.
func (s *IndexService) Backfill(ctx context.Context) (int, error) {
	list, err := s.Classes.List(ctx, repo.ClassFilter{Status: entity.ClassApproved})
	if err != nil {
		return 0, fmt.Errorf("list approved classes: %w", err)
	}
	for i := range list {
		if err := s.Index.Index(ctx, &list[i]); err != nil {
			return i, fmt.Errorf("index %s: %w", list[i].ID, err)
		}
	}
	return len(list), nil
}
