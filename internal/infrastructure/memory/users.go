package memory

import (
	"context"
	"sync"
	"time"

	"github.com/aadi90392/yoga-master-full/internal/domain/entity"
	repo "github.com/aadi90392/yoga-master-full/internal/domain/repository"
)

type UserRepository struct {
	mu    sync.RWMutex
	items []entity.User
}

func (r *UserRepository) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, x := range r.items {
		if x.Email == u.Email {
			return repo.ErrDuplicate
		}
	}
	if u.ID == "" {
		u.ID = newID()
	}
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	r.items = append(r.items, *u)
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*entity.User, error) {
	return r.first(func(u entity.User) bool { return u.ID == id })
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	return r.first(func(u entity.User) bool { return u.Email == email })
}

func (r *UserRepository) GetManyByEmail(_ context.Context, emails []string) ([]entity.User, error) {
	want := make(map[string]bool, len(emails))
	for _, e := range emails {
		want[e] = true
	}
	return r.filter(func(u entity.User) bool { return want[u.Email] }), nil
}

func (r *UserRepository) List(_ context.Context) ([]entity.User, error) {
	return r.filter(func(entity.User) bool { return true }), nil
}

func (r *UserRepository) ListByRole(_ context.Context, role entity.Role) ([]entity.User, error) {
	return r.filter(func(u entity.User) bool { return u.Role == role }), nil
}

func (r *UserRepository) Update(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.items {
		if r.items[i].ID == u.ID {
			u.UpdatedAt = time.Now().UTC()
			r.items[i] = *u
			return nil
		}
	}
	return repo.ErrNotFound
}

func (r *UserRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.items {
		if r.items[i].ID == id {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return nil
		}
	}
	return repo.ErrNotFound
}

func (r *UserRepository) CountByRole(_ context.Context, role entity.Role) (int64, error) {
	return int64(len(r.filter(func(u entity.User) bool { return u.Role == role }))), nil
}

func (r *UserRepository) first(match func(entity.User) bool) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.items {
		if match(u) {
			out := u
			return &out, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (r *UserRepository) filter(keep func(entity.User) bool) []entity.User {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]entity.User, 0, len(r.items))
	for _, u := range r.items {
		if keep(u) {
			out = append(out, u)
		}
	}
	return out
}

var _ repo.UserRepository = (*UserRepository)(nil)
