package application

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aadi90392/yoga-master-full/internal/domain/entity"
	"github.com/aadi90392/yoga-master-full/pkg/helpers"
)

func TestStatsService_Reconcile(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c1 := f.addClass(t, "C1", 20, 5, entity.ClassApproved)
	c2 := f.addClass(t, "C2", 15, 5, entity.ClassApproved)
	require.NoError(t, f.store.Enrollments.Create(ctx, &entity.Enrollment{UserEmail: student.Email, ClassIDs: []string{c1.ID, c2.ID}}))
	require.NoError(t, f.store.Enrollments.Create(ctx, &entity.Enrollment{UserEmail: otherUser.Email, ClassIDs: []string{c1.ID}}))
	require.NoError(t, f.store.Classes.SetTotalEnrolled(ctx, c1.ID, 9))
	require.NoError(t, f.store.Classes.SetTotalEnrolled(ctx, c2.ID, 1))

	svc := NewStatsService(f.store, nil, helpers.NopLogger())
	fixed, err := svc.Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, fixed)
	assert.Equal(t, 2, f.class(t, c1.ID).TotalEnrolled)
	assert.Equal(t, 1, f.class(t, c2.ID).TotalEnrolled)

	fixed, err = svc.Reconcile(ctx)
	require.NoError(t, err)
	assert.Zero(t, fixed)
}

func TestStatsService_InstructorStats(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c1 := f.addClass(t, "C1", 19.99, 5, entity.ClassApproved)
	c2 := f.addClass(t, "C2", 15, 5, entity.ClassPending)
	require.NoError(t, f.store.Classes.SetTotalEnrolled(ctx, c1.ID, 3))
	require.NoError(t, f.store.Classes.SetTotalEnrolled(ctx, c2.ID, 1))

	svc := NewStatsService(f.store, nil, helpers.NopLogger())
	_, err := svc.InstructorStats(ctx, student, instructor.Email)
	assert.ErrorIs(t, err, ErrForbidden)

	st, err := svc.InstructorStats(ctx, instructor, instructor.Email)
	require.NoError(t, err)
	assert.Equal(t, 2, st.TotalClasses)
	assert.Equal(t, 4, st.TotalEnrolled)
	assert.Equal(t, 74.97, st.TotalRevenue)
}

func TestStatsService_AdminAndPopular(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	low := f.addClass(t, "Low", 10, 5, entity.ClassApproved)
	high := f.addClass(t, "High", 10, 5, entity.ClassApproved)
	draft := f.addClass(t, "Draft", 10, 5, entity.ClassPending)
	require.NoError(t, f.store.Classes.SetTotalEnrolled(ctx, draft.ID, 50))
	require.NoError(t, f.store.Classes.SetTotalEnrolled(ctx, low.ID, 1))
	require.NoError(t, f.store.Classes.SetTotalEnrolled(ctx, high.ID, 7))

	svc := NewStatsService(f.store, nil, helpers.NopLogger())
	_, err := svc.AdminStats(ctx, instructor)
	assert.ErrorIs(t, err, ErrForbidden)

	st, err := svc.AdminStats(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, int64(2), st.ApprovedClasses)
	assert.Equal(t, int64(1), st.PendingClasses)
	assert.Equal(t, int64(3), st.TotalClasses)
	assert.Equal(t, int64(1), st.Instructors)

	popular, err := svc.PopularClasses(ctx)
	require.NoError(t, err)
	require.Len(t, popular, 2)
	assert.Equal(t, "High", popular[0].Name)
	assert.Equal(t, "Low", popular[1].Name)
	assert.Empty(t, popular[0].Chapters[1].Video)
}

func TestStatsService_EnrolledClasses(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c1 := f.addClass(t, "C1", 20, 5, entity.ClassApproved)
	require.NoError(t, f.store.Enrollments.Create(ctx, &entity.Enrollment{UserEmail: student.Email, ClassIDs: []string{c1.ID}}))

	svc := NewStatsService(f.store, nil, helpers.NopLogger())
	_, err := svc.EnrolledClasses(ctx, otherUser, student.Email)
	assert.ErrorIs(t, err, ErrForbidden)

	list, err := svc.EnrolledClasses(ctx, student, student.Email)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "paid.mp4", list[0].Class.Chapters[1].Video)
	require.NotNil(t, list[0].Instructor)
	assert.Equal(t, instructor.Email, list[0].Instructor.Email)

	list, err = svc.EnrolledClasses(ctx, otherUser, otherUser.Email)
	require.NoError(t, err)
	assert.Empty(t, list)
}

type recordingIndex struct {
	indexed []string
	deleted []string
	err     error
}

func (r *recordingIndex) Index(_ context.Context, c *entity.Class) error {
	if r.err != nil {
		return r.err
	}
	r.indexed = append(r.indexed, c.ID)
	return nil
}

func (r *recordingIndex) Delete(_ context.Context, id string) error {
	if r.err != nil {
		return r.err
	}
	r.deleted = append(r.deleted, id)
	return nil
}

func TestIndexService_Handle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := f.addClass(t, "C1", 20, 5, entity.ClassApproved)
	idx := &recordingIndex{}
	svc := NewIndexService(f.store.Classes, idx, helpers.NopLogger())

	require.NoError(t, svc.Handle(ctx, IndexJob{ClassID: c.ID, Op: IndexUpsert}))
	require.NoError(t, svc.Handle(ctx, IndexJob{ClassID: "gone", Op: IndexUpsert}))
	require.NoError(t, svc.Handle(ctx, IndexJob{ClassID: c.ID, Op: IndexDelete}))
	require.NoError(t, svc.Handle(ctx, IndexJob{ClassID: c.ID, Op: "bogus"}))
	require.NoError(t, svc.Handle(ctx, IndexJob{Op: IndexUpsert}))

	assert.Equal(t, []string{c.ID}, idx.indexed)
	assert.Equal(t, []string{"gone", c.ID}, idx.deleted)

	idx.err = errors.New("es down")
	assert.ErrorIs(t, svc.Handle(ctx, IndexJob{ClassID: c.ID, Op: IndexUpsert}), helpers.ErrRequeue)
}

func TestIndexService_Backfill(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addClass(t, "A", 10, 5, entity.ClassApproved)
	f.addClass(t, "B", 10, 5, entity.ClassApproved)
	f.addClass(t, "C", 10, 5, entity.ClassDenied)
	idx := &recordingIndex{}

	n, err := NewIndexService(f.store.Classes, idx, helpers.NopLogger()).Backfill(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, idx.indexed, 2)
}
