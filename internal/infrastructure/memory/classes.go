package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/aadi90392/yoga-master-full/internal/domain/entity"
	repo "github.com/aadi90392/yoga-master-full/internal/domain/repository"
)

type ClassRepository struct {
	mu    sync.RWMutex
	items []entity.Class
	users *UserRepository
}

func cloneClass(c entity.Class) entity.Class {
	c.Chapters = append([]entity.Chapter(nil), c.Chapters...)
	return c
}

func (r *ClassRepository) Create(_ context.Context, c *entity.Class) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.ID == "" {
		c.ID = newID()
	}
	now := time.Now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now
	r.items = append(r.items, cloneClass(*c))
	return nil
}

func (r *ClassRepository) GetByID(_ context.Context, id string) (*entity.Class, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i := r.index(id)
	if i < 0 {
		return nil, repo.ErrNotFound
	}
	out := cloneClass(r.items[i])
	return &out, nil
}

func (r *ClassRepository) GetMany(_ context.Context, ids []string) ([]entity.Class, error) {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	return r.filter(func(c entity.Class) bool { return want[c.ID] }), nil
}

func (r *ClassRepository) List(_ context.Context, f repo.ClassFilter) ([]entity.Class, error) {
	return r.filter(matches(f)), nil
}

func (r *ClassRepository) Count(_ context.Context, f repo.ClassFilter) (int64, error) {
	return int64(len(r.filter(matches(f)))), nil
}

func (r *ClassRepository) Update(_ context.Context, c *entity.Class) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.index(c.ID)
	if i < 0 {
		return repo.ErrNotFound
	}
	c.UpdatedAt = time.Now().UTC()
	// counters are owned by ReserveSeat, ReleaseSeat, SetAvailableSeats and SetTotalEnrolled
	c.AvailableSeats = r.items[i].AvailableSeats
	c.TotalEnrolled = r.items[i].TotalEnrolled
	r.items[i] = cloneClass(*c)
	return nil
}

func (r *ClassRepository) SetStatus(_ context.Context, id string, from, to entity.ClassStatus, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.index(id)
	if i < 0 {
		return repo.ErrNotFound
	}
	if r.items[i].Status != from {
		return repo.ErrStale
	}
	r.items[i].Status = to
	r.items[i].Reason = reason
	r.items[i].UpdatedAt = time.Now().UTC()
	return nil
}

func (r *ClassRepository) SetAvailableSeats(_ context.Context, id string, n int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.index(id)
	if i < 0 {
		return repo.ErrNotFound
	}
	r.items[i].AvailableSeats = n
	return nil
}

func (r *ClassRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.index(id)
	if i < 0 {
		return repo.ErrNotFound
	}
	r.items = append(r.items[:i], r.items[i+1:]...)
	return nil
}

func (r *ClassRepository) ReserveSeat(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.index(id)
	if i < 0 {
		return repo.ErrNotFound
	}
	if r.items[i].AvailableSeats <= 0 {
		return repo.ErrSoldOut
	}
	r.items[i].AvailableSeats--
	r.items[i].TotalEnrolled++
	return nil
}

func (r *ClassRepository) ReleaseSeat(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.index(id)
	if i < 0 {
		return repo.ErrNotFound
	}
	r.items[i].AvailableSeats++
	r.items[i].TotalEnrolled--
	return nil
}

func (r *ClassRepository) SetTotalEnrolled(_ context.Context, id string, n int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.index(id)
	if i < 0 {
		return repo.ErrNotFound
	}
	r.items[i].TotalEnrolled = n
	return nil
}

func (r *ClassRepository) Popular(_ context.Context, limit int) ([]entity.Class, error) {
	out := r.filter(func(c entity.Class) bool { return c.Status == entity.ClassApproved })
	sort.SliceStable(out, func(i, j int) bool { return out[i].TotalEnrolled > out[j].TotalEnrolled })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *ClassRepository) PopularInstructors(ctx context.Context, limit int) ([]entity.InstructorRank, error) {
	totals := map[string]int{}
	var order []string
	for _, c := range r.filter(func(entity.Class) bool { return true }) {
		if _, seen := totals[c.InstructorEmail]; !seen {
			order = append(order, c.InstructorEmail)
		}
		totals[c.InstructorEmail] += c.TotalEnrolled
	}
	out := make([]entity.InstructorRank, 0, len(order))
	for _, email := range order {
		u, err := r.users.GetByEmail(ctx, email)
		if err != nil {
			continue
		}
		out = append(out, entity.InstructorRank{Instructor: *u, TotalEnrolled: totals[email]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TotalEnrolled > out[j].TotalEnrolled })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *ClassRepository) Search(_ context.Context, q string, limit int) ([]entity.Class, error) {
	q = strings.ToLower(strings.TrimSpace(q))
	out := r.filter(func(c entity.Class) bool {
		if c.Status != entity.ClassApproved {
			return false
		}
		return strings.Contains(strings.ToLower(c.Name), q) ||
			strings.Contains(strings.ToLower(c.Description), q) ||
			strings.Contains(strings.ToLower(c.InstructorName), q)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func matches(f repo.ClassFilter) func(entity.Class) bool {
	return func(c entity.Class) bool {
		if f.Status != "" && c.Status != f.Status {
			return false
		}
		if f.InstructorEmail != "" && c.InstructorEmail != f.InstructorEmail {
			return false
		}
		return true
	}
}

func (r *ClassRepository) index(id string) int {
	for i := range r.items {
		if r.items[i].ID == id {
			return i
		}
	}
	return -1
}

func (r *ClassRepository) filter(keep func(entity.Class) bool) []entity.Class {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]entity.Class, 0, len(r.items))
	for _, c := range r.items {
		if keep(c) {
			out = append(out, cloneClass(c))
		}
	}
	return out
}

var _ repo.ClassRepository = (*ClassRepository)(nil)
