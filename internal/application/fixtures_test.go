package application

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aadi90392/yoga-master-full/internal/domain/entity"
	repo "github.com/aadi90392/yoga-master-full/internal/domain/repository"
	"github.com/aadi90392/yoga-master-full/internal/infrastructure/memory"
	"github.com/aadi90392/yoga-master-full/internal/infrastructure/payment"
	"github.com/aadi90392/yoga-master-full/pkg/helpers"
)

var (
	student    = entity.Viewer{Email: "a@x.com", Role: entity.RoleUser}
	otherUser  = entity.Viewer{Email: "b@x.com", Role: entity.RoleUser}
	instructor = entity.Viewer{Email: "guru@x.com", Role: entity.RoleInstructor}
	admin      = entity.Viewer{Email: "root@x.com", Role: entity.RoleAdmin}
)

type recordingJobs struct {
	mu   sync.Mutex
	jobs []IndexJob
}

func (r *recordingJobs) PublishJSON(_ context.Context, body any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs = append(r.jobs, body.(IndexJob))
	return nil
}

func (r *recordingJobs) ops() []IndexJob {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]IndexJob(nil), r.jobs...)
}

type fixture struct {
	store   repo.Store
	audit   *memory.AuditRepository
	auditor *Auditor
	gateway *payment.SandboxGateway
	jobs    *recordingJobs
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	audit := &memory.AuditRepository{}
	f := &fixture{
		store:   store,
		audit:   audit,
		auditor: NewAuditor(audit, helpers.NopLogger()),
		gateway: payment.NewSandboxGateway(),
		jobs:    &recordingJobs{},
	}
	for _, v := range []entity.Viewer{student, otherUser, instructor, admin} {
		require.NoError(t, store.Users.Create(context.Background(), &entity.User{
			Name:  v.Email,
			Email: v.Email,
			Role:  v.Role,
		}))
	}
	return f
}

func (f *fixture) addClass(t *testing.T, name string, price float64, seats int, status entity.ClassStatus) *entity.Class {
	t.Helper()
	c := &entity.Class{
		Name:            name,
		Price:           price,
		AvailableSeats:  seats,
		InstructorName:  "Guru",
		InstructorEmail: instructor.Email,
		Status:          status,
		Chapters: []entity.Chapter{
			{Title: "intro", Video: "free.mp4", IsFree: true},
			{Title: "flow", Video: "paid.mp4"},
		},
	}
	require.NoError(t, f.store.Classes.Create(context.Background(), c))
	return c
}

func (f *fixture) class(t *testing.T, id string) *entity.Class {
	t.Helper()
	c, err := f.store.Classes.GetByID(context.Background(), id)
	require.NoError(t, err)
	return c
}

func (f *fixture) checkout() *CheckoutService {
	return NewCheckoutService(f.store, f.gateway, "usd", nil, time.Second, f.jobs, f.auditor, helpers.NopLogger())
}

func (f *fixture) classes() *ClassService {
	return NewClassService(f.store, nil, f.jobs, nil, f.auditor, helpers.NopLogger())
}

func (f *fixture) user(t *testing.T, email string) *entity.User {
	t.Helper()
	u, err := f.store.Users.GetByEmail(context.Background(), email)
	require.NoError(t, err)
	return u
}
