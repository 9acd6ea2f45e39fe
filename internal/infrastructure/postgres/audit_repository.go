package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aadi90392/yoga-master-full/internal/domain/entity"
	"github.com/aadi90392/yoga-master-full/internal/domain/repository"
)

// AuditRepository persists privileged actions to audit_logs.
type AuditRepository struct {
	pool *pgxpool.Pool
}

func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

func (r *AuditRepository) Record(ctx context.Context, e *entity.AuditEntry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	if e.Metadata == nil {
		e.Metadata = map[string]any{}
	}
	meta, err := json.Marshal(e.Metadata)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO audit_logs (id, actor_email, action, subject, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, e.ID, e.ActorEmail, e.Action, e.Subject, meta, e.CreatedAt)
	return err
}

func (r *AuditRepository) Recent(ctx context.Context, limit int) ([]entity.AuditEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, actor_email, action, subject, metadata, created_at
		FROM audit_logs
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []entity.AuditEntry{}
	for rows.Next() {
		var (
			e    entity.AuditEntry
			id   uuid.UUID
			meta []byte
		)
		if err := rows.Scan(&id, &e.ActorEmail, &e.Action, &e.Subject, &meta, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.ID = id.String()
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &e.Metadata); err != nil {
				return nil, err
			}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

var _ repository.AuditRepository = (*AuditRepository)(nil)
