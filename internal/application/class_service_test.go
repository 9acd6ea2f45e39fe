package application

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aadi90392/yoga-master-full/internal/domain/entity"
	repo "github.com/aadi90392/yoga-master-full/internal/domain/repository"
	"github.com/aadi90392/yoga-master-full/pkg/helpers"
)

func TestClassService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := f.classes()

	_, err := svc.Create(ctx, student, NewClassInput{Name: "Nope", Price: 10, AvailableSeats: 3})
	assert.ErrorIs(t, err, ErrForbidden)

	c, err := svc.Create(ctx, instructor, NewClassInput{Name: " Morning Flow ", Price: 10, AvailableSeats: 3})
	require.NoError(t, err)
	assert.Equal(t, "Morning Flow", c.Name)
	assert.Equal(t, entity.ClassPending, c.Status)
	assert.Equal(t, instructor.Email, c.InstructorEmail)

	_, err = svc.Review(ctx, instructor, c.ID, entity.ClassApproved, "")
	assert.ErrorIs(t, err, ErrForbidden)

	approved, err := svc.Review(ctx, admin, c.ID, entity.ClassApproved, "")
	require.NoError(t, err)
	assert.Equal(t, entity.ClassApproved, approved.Status)

	_, err = svc.Review(ctx, admin, c.ID, entity.ClassDenied, "late")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	// an edit sends the class back to review
	price := 12.5
	updated, err := svc.Update(ctx, instructor, c.ID, entity.ClassPatch{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, entity.ClassPending, updated.Status)
	assert.Equal(t, entity.ClassPending, f.class(t, c.ID).Status)

	_, err = svc.Update(ctx, otherUser, c.ID, entity.ClassPatch{Price: &price})
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, svc.Delete(ctx, admin, c.ID))
	_, err = svc.Detail(ctx, admin, c.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	var ops []string
	for _, j := range f.jobs.ops() {
		ops = append(ops, j.Op)
	}
	assert.Equal(t, []string{IndexUpsert, IndexUpsert, IndexUpsert, IndexDelete}, ops)

	entries, _ := f.audit.Recent(ctx, 10)
	require.Len(t, entries, 2)
	assert.Equal(t, ActionClassDeleted, entries[0].Action)
	assert.Equal(t, ActionClassReviewed, entries[1].Action)
}

func TestClassService_ChapterGating(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := f.classes()
	c := f.addClass(t, "Flow", 10, 5, entity.ClassApproved)
	require.NoError(t, f.store.Enrollments.Create(ctx, &entity.Enrollment{
		UserEmail: otherUser.Email, ClassIDs: []string{c.ID}, TransactionID: "pi_1",
	}))

	tests := []struct {
		name    string
		viewer  entity.Viewer
		idx     int
		wantErr error
	}{
		{name: "free chapter anonymous", viewer: entity.Viewer{}, idx: 0},
		{name: "locked chapter anonymous", viewer: entity.Viewer{}, idx: 1, wantErr: ErrUnauthenticated},
		{name: "locked chapter not enrolled", viewer: student, idx: 1, wantErr: ErrForbidden},
		{name: "locked chapter enrolled", viewer: otherUser, idx: 1},
		{name: "owner", viewer: instructor, idx: 1},
		{name: "admin", viewer: admin, idx: 1},
		{name: "missing chapter", viewer: admin, idx: 7, wantErr: ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ch, err := svc.Chapter(ctx, tt.viewer, c.ID, tt.idx)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, ch.Video)
		})
	}

	detail, err := svc.Detail(ctx, student, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "free.mp4", detail.Chapters[0].Video)
	assert.Empty(t, detail.Chapters[1].Video)
	assert.True(t, detail.Chapters[1].Locked)

	detail, err = svc.Detail(ctx, otherUser, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "paid.mp4", detail.Chapters[1].Video)
}

func TestClassService_UnapprovedHidden(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := f.classes()
	draft := f.addClass(t, "Draft", 10, 5, entity.ClassPending)
	f.addClass(t, "Live", 10, 5, entity.ClassApproved)

	_, err := svc.Detail(ctx, student, draft.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.Detail(ctx, instructor, draft.ID)
	assert.NoError(t, err)

	list, err := svc.Approved(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Live", list[0].Name)
	assert.Empty(t, list[0].Chapters[1].Video)

	_, err = svc.Manage(ctx, instructor)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestClassService_AllListsApprovedOnly(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := f.classes()
	f.addClass(t, "Draft", 10, 5, entity.ClassPending)
	f.addClass(t, "Rejected", 10, 5, entity.ClassDenied)
	f.addClass(t, "Live", 10, 5, entity.ClassApproved)

	list, err := svc.All(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Live", list[0].Name)

	all, err := svc.Manage(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

// seatTakingClasses books a seat right after every read, the way a checkout
// landing between an edit's read and its write would.
type seatTakingClasses struct {
	repo.ClassRepository
}

func (r seatTakingClasses) GetByID(ctx context.Context, id string) (*entity.Class, error) {
	c, err := r.ClassRepository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.ClassRepository.ReserveSeat(ctx, id); err != nil {
		return nil, err
	}
	return c, nil
}

func TestClassService_WritesKeepConcurrentReservations(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	store := f.store
	store.Classes = seatTakingClasses{f.store.Classes}
	svc := NewClassService(store, nil, f.jobs, nil, f.auditor, helpers.NopLogger())

	c := f.addClass(t, "Flow", 10, 5, entity.ClassPending)

	// the read inside Review takes one seat
	reviewed, err := svc.Review(ctx, admin, c.ID, entity.ClassApproved, "ok")
	require.NoError(t, err)
	assert.Equal(t, entity.ClassApproved, reviewed.Status)

	// Update reads twice (owned + reload) and must not restore any seat
	name := "Flow II"
	_, err = svc.Update(ctx, instructor, c.ID, entity.ClassPatch{Name: &name})
	require.NoError(t, err)

	got := f.class(t, c.ID)
	assert.Equal(t, "Flow II", got.Name)
	assert.Equal(t, 5-4, got.AvailableSeats)
	assert.Equal(t, 4, got.TotalEnrolled)

	// an explicit capacity change is applied as given; the reload after it
	// takes one more seat
	seats := 20
	_, err = svc.Update(ctx, instructor, c.ID, entity.ClassPatch{AvailableSeats: &seats})
	require.NoError(t, err)
	got = f.class(t, c.ID)
	assert.Equal(t, 19, got.AvailableSeats)
	assert.Equal(t, 6, got.TotalEnrolled)
}

func TestClassService_ReviewLosesToConcurrentReview(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := f.addClass(t, "Flow", 10, 5, entity.ClassPending)
	require.NoError(t, f.store.Classes.SetStatus(ctx, c.ID, entity.ClassPending, entity.ClassDenied, "first"))

	err := f.store.Classes.SetStatus(ctx, c.ID, entity.ClassPending, entity.ClassApproved, "second")
	assert.ErrorIs(t, err, repo.ErrStale)
	got := f.class(t, c.ID)
	assert.Equal(t, entity.ClassDenied, got.Status)
	assert.Equal(t, "first", got.Reason)
}

type stubSearcher struct {
	ids []string
	err error
}

func (s stubSearcher) Search(context.Context, string, int) ([]string, error) { return s.ids, s.err }

func TestClassService_SearchClasses(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.addClass(t, "Ashtanga Basics", 10, 5, entity.ClassApproved)
	b := f.addClass(t, "Ashtanga Advanced", 10, 5, entity.ClassApproved)
	draft := f.addClass(t, "Ashtanga Draft", 10, 5, entity.ClassPending)

	svc := NewClassService(f.store, stubSearcher{ids: []string{b.ID, draft.ID, a.ID}}, nil, nil, nil, helpers.NopLogger())
	got, err := svc.SearchClasses(ctx, "ashtanga")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, b.ID, got[0].ID)
	assert.Equal(t, a.ID, got[1].ID)

	// a failing index falls back to storage
	svc.Search = stubSearcher{err: errors.New("es down")}
	got, err = svc.SearchClasses(ctx, "ashtanga")
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = svc.SearchClasses(ctx, "  ")
	require.NoError(t, err)
	assert.Empty(t, got)
}
