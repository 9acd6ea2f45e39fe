package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/aadi90392/yoga-master-full/internal/domain/entity"
	repo "github.com/aadi90392/yoga-master-full/internal/domain/repository"
)

type CartRepository struct {
	mu    sync.RWMutex
	items []entity.CartItem
}

func (r *CartRepository) Add(_ context.Context, item *entity.CartItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, x := range r.items {
		if x.UserEmail == item.UserEmail && x.ClassID == item.ClassID {
			return repo.ErrDuplicate
		}
	}
	item.ID = newID()
	item.CreatedAt = time.Now().UTC()
	r.items = append(r.items, *item)
	return nil
}

func (r *CartRepository) Get(_ context.Context, userEmail, classID string) (*entity.CartItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, x := range r.items {
		if x.UserEmail == userEmail && x.ClassID == classID {
			out := x
			return &out, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (r *CartRepository) ListByUser(_ context.Context, userEmail string) ([]entity.CartItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []entity.CartItem{}
	for _, x := range r.items {
		if x.UserEmail == userEmail {
			out = append(out, x)
		}
	}
	return out, nil
}

func (r *CartRepository) Remove(ctx context.Context, userEmail, classID string) error {
	n, _ := r.RemoveMany(ctx, userEmail, []string{classID})
	if n == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *CartRepository) RemoveMany(_ context.Context, userEmail string, classIDs []string) (int64, error) {
	drop := make(map[string]bool, len(classIDs))
	for _, id := range classIDs {
		drop[id] = true
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.items[:0]
	var n int64
	for _, x := range r.items {
		if x.UserEmail == userEmail && drop[x.ClassID] {
			n++
			continue
		}
		kept = append(kept, x)
	}
	r.items = kept
	return n, nil
}

type PaymentRepository struct {
	mu    sync.RWMutex
	items []entity.Payment
}

func (r *PaymentRepository) Create(_ context.Context, p *entity.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, x := range r.items {
		if x.TransactionID == p.TransactionID {
			return repo.ErrDuplicate
		}
	}
	p.ID = newID()
	if p.Date.IsZero() {
		p.Date = time.Now().UTC()
	}
	p.ClassIDs = append([]string(nil), p.ClassIDs...)
	r.items = append(r.items, *p)
	return nil
}

func (r *PaymentRepository) GetByTransactionID(_ context.Context, txID string) (*entity.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, x := range r.items {
		if x.TransactionID == txID {
			out := x
			return &out, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (r *PaymentRepository) ListByUser(_ context.Context, userEmail string) ([]entity.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []entity.Payment{}
	for _, x := range r.items {
		if x.UserEmail == userEmail {
			out = append(out, x)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (r *PaymentRepository) CountByUser(ctx context.Context, userEmail string) (int64, error) {
	list, _ := r.ListByUser(ctx, userEmail)
	return int64(len(list)), nil
}

func (r *PaymentRepository) Delete(_ context.Context, id string) error {
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

type EnrollmentRepository struct {
	mu    sync.RWMutex
	items []entity.Enrollment
}

func (r *EnrollmentRepository) Create(_ context.Context, e *entity.Enrollment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e.ID = newID()
	e.CreatedAt = time.Now().UTC()
	e.ClassIDs = append([]string(nil), e.ClassIDs...)
	r.items = append(r.items, *e)
	return nil
}

func (r *EnrollmentRepository) ListByUser(_ context.Context, userEmail string) ([]entity.Enrollment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []entity.Enrollment{}
	for _, x := range r.items {
		if x.UserEmail == userEmail {
			out = append(out, x)
		}
	}
	return out, nil
}

func (r *EnrollmentRepository) CountEnrolledIn(_ context.Context, classID string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for _, x := range r.items {
		for _, id := range x.ClassIDs {
			if id == classID {
				n++
			}
		}
	}
	return n, nil
}

func (r *EnrollmentRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.items)), nil
}

func (r *EnrollmentRepository) Delete(_ context.Context, id string) error {
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

type ApplicationRepository struct {
	mu    sync.RWMutex
	items []entity.InstructorApplication
}

func (r *ApplicationRepository) Create(_ context.Context, a *entity.InstructorApplication) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, x := range r.items {
		if x.Email == a.Email {
			return repo.ErrDuplicate
		}
	}
	a.ID = newID()
	r.items = append(r.items, *a)
	return nil
}

func (r *ApplicationRepository) GetByID(_ context.Context, id string) (*entity.InstructorApplication, error) {
	return r.first(func(a entity.InstructorApplication) bool { return a.ID == id })
}

func (r *ApplicationRepository) GetByEmail(_ context.Context, email string) (*entity.InstructorApplication, error) {
	return r.first(func(a entity.InstructorApplication) bool { return a.Email == email })
}

func (r *ApplicationRepository) List(_ context.Context) ([]entity.InstructorApplication, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]entity.InstructorApplication{}, r.items...), nil
}

func (r *ApplicationRepository) Delete(_ context.Context, id string) error {
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

func (r *ApplicationRepository) first(match func(entity.InstructorApplication) bool) (*entity.InstructorApplication, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.items {
		if match(a) {
			out := a
			return &out, nil
		}
	}
	return nil, repo.ErrNotFound
}

// AuditRepository keeps the most recent audit entries in memory.
type AuditRepository struct {
	mu    sync.RWMutex
	items []entity.AuditEntry
}

func (r *AuditRepository) Record(_ context.Context, e *entity.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e.ID == "" {
		e.ID = newID()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	r.items = append(r.items, *e)
	return nil
}

func (r *AuditRepository) Recent(_ context.Context, limit int) ([]entity.AuditEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]entity.AuditEntry, 0, limit)
	for i := len(r.items) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.items[i])
	}
	return out, nil
}

var (
	_ repo.CartRepository        = (*CartRepository)(nil)
	_ repo.PaymentRepository     = (*PaymentRepository)(nil)
	_ repo.EnrollmentRepository  = (*EnrollmentRepository)(nil)
	_ repo.ApplicationRepository = (*ApplicationRepository)(nil)
	_ repo.AuditRepository       = (*AuditRepository)(nil)
)
