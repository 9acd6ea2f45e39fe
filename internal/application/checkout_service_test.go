package application

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aadi90392/yoga-master-full/internal/domain/entity"
	repo "github.com/aadi90392/yoga-master-full/internal/domain/repository"
)

func TestCheckout_CartToEnrollment(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c1 := f.addClass(t, "C1", 20, 5, entity.ClassApproved)
	c2 := f.addClass(t, "C2", 15, 5, entity.ClassApproved)

	cart := NewCartService(f.store, nil)
	_, err := cart.Add(ctx, student, c1.ID)
	require.NoError(t, err)
	_, err = cart.Add(ctx, student, c2.ID)
	require.NoError(t, err)

	svc := f.checkout()
	intent, err := svc.CreateIntent(ctx, student, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3500), intent.Amount)
	assert.Equal(t, "usd", intent.Currency)

	res, err := svc.Confirm(ctx, student, ConfirmInput{TransactionID: intent.PaymentIntentID, ClassIDs: []string{c1.ID, c2.ID}})
	require.NoError(t, err)
	assert.False(t, res.Duplicate)
	assert.Equal(t, 35.0, res.Payment.Price)
	assert.Equal(t, 2, res.Payment.Quantity)
	assert.Equal(t, []string{"C1", "C2"}, res.Payment.ClassNames)
	assert.Equal(t, int64(2), res.CartCleared)
	require.NotNil(t, res.Enrollment)
	assert.ElementsMatch(t, []string{c1.ID, c2.ID}, res.Enrollment.ClassIDs)

	items, _ := f.store.Cart.ListByUser(ctx, student.Email)
	assert.Empty(t, items)
	for _, id := range []string{c1.ID, c2.ID} {
		c := f.class(t, id)
		assert.Equal(t, 4, c.AvailableSeats)
		assert.Equal(t, 1, c.TotalEnrolled)
	}

	history, err := svc.History(ctx, student, student.Email)
	require.NoError(t, err)
	assert.Len(t, history, 1)

	entries, _ := f.audit.Recent(ctx, 10)
	require.NotEmpty(t, entries)
	assert.Equal(t, ActionCheckout, entries[0].Action)

	// buying again is refused
	_, err = svc.CreateIntent(ctx, student, []string{c1.ID})
	assert.ErrorIs(t, err, ErrAlreadyEnrolled)
}

func TestCheckout_ReplayIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c1 := f.addClass(t, "C1", 20, 5, entity.ClassApproved)
	svc := f.checkout()

	intent, err := svc.CreateIntent(ctx, student, []string{c1.ID})
	require.NoError(t, err)
	in := ConfirmInput{TransactionID: intent.PaymentIntentID, ClassIDs: []string{c1.ID}}

	first, err := svc.Confirm(ctx, student, in)
	require.NoError(t, err)
	second, err := svc.Confirm(ctx, student, in)
	require.NoError(t, err)

	assert.True(t, second.Duplicate)
	assert.Equal(t, first.Payment.ID, second.Payment.ID)
	n, _ := f.store.Payments.CountByUser(ctx, student.Email)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, 4, f.class(t, c1.ID).AvailableSeats)

	// another account cannot read someone else's transaction
	_, err = svc.Confirm(ctx, otherUser, in)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestCheckout_SoldOutRollsBack(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c1 := f.addClass(t, "C1", 20, 5, entity.ClassApproved)
	c2 := f.addClass(t, "C2", 15, 0, entity.ClassApproved)
	svc := f.checkout()

	intent, err := svc.CreateIntent(ctx, student, []string{c1.ID, c2.ID})
	require.NoError(t, err)

	_, err = svc.Confirm(ctx, student, ConfirmInput{TransactionID: intent.PaymentIntentID, ClassIDs: []string{c1.ID, c2.ID}})
	assert.ErrorIs(t, err, ErrSoldOut)

	c := f.class(t, c1.ID)
	assert.Equal(t, 5, c.AvailableSeats)
	assert.Equal(t, 0, c.TotalEnrolled)
	n, _ := f.store.Payments.CountByUser(ctx, student.Email)
	assert.Zero(t, n)
	enrolled, _ := f.store.Enrollments.ListByUser(ctx, student.Email)
	assert.Empty(t, enrolled)
}

type failingPayments struct {
	repo.PaymentRepository
}

func (failingPayments) Create(context.Context, *entity.Payment) error {
	return errors.New("write concern failed")
}

func TestCheckout_PaymentWriteFailureReleasesSeats(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c1 := f.addClass(t, "C1", 20, 5, entity.ClassApproved)
	svc := f.checkout()
	svc.Payments = failingPayments{PaymentRepository: f.store.Payments}

	intent, err := svc.CreateIntent(ctx, student, []string{c1.ID})
	require.NoError(t, err)
	_, err = svc.Confirm(ctx, student, ConfirmInput{TransactionID: intent.PaymentIntentID, ClassIDs: []string{c1.ID}})
	require.Error(t, err)

	c := f.class(t, c1.ID)
	assert.Equal(t, 5, c.AvailableSeats)
	assert.Equal(t, 0, c.TotalEnrolled)
}

// failingEnrollments fails the first n creates, then behaves normally.
type failingEnrollments struct {
	repo.EnrollmentRepository
	n *int
}

func (r failingEnrollments) Create(ctx context.Context, e *entity.Enrollment) error {
	if *r.n > 0 {
		*r.n--
		return errors.New("write concern failed")
	}
	return r.EnrollmentRepository.Create(ctx, e)
}

func TestCheckout_EnrollmentWriteFailureUndoesPaymentAndSeats(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c1 := f.addClass(t, "C1", 20, 5, entity.ClassApproved)
	c2 := f.addClass(t, "C2", 15, 5, entity.ClassApproved)
	svc := f.checkout()
	failures := 1
	svc.Enrollments = failingEnrollments{EnrollmentRepository: f.store.Enrollments, n: &failures}

	intent, err := svc.CreateIntent(ctx, student, []string{c1.ID, c2.ID})
	require.NoError(t, err)
	in := ConfirmInput{TransactionID: intent.PaymentIntentID, ClassIDs: []string{c1.ID, c2.ID}}

	_, err = svc.Confirm(ctx, student, in)
	require.Error(t, err)

	_, err = f.store.Payments.GetByTransactionID(ctx, intent.PaymentIntentID)
	assert.ErrorIs(t, err, repo.ErrNotFound)
	for _, id := range []string{c1.ID, c2.ID} {
		c := f.class(t, id)
		assert.Equal(t, 5, c.AvailableSeats)
		assert.Equal(t, 0, c.TotalEnrolled)
	}
	enrolled, _ := f.store.Enrollments.ListByUser(ctx, student.Email)
	assert.Empty(t, enrolled)

	// the same transaction goes through once the store recovers
	res, err := svc.Confirm(ctx, student, in)
	require.NoError(t, err)
	assert.False(t, res.Duplicate)
	require.NotNil(t, res.Enrollment)
	for _, id := range []string{c1.ID, c2.ID} {
		c := f.class(t, id)
		assert.Equal(t, 4, c.AvailableSeats)
		assert.Equal(t, 1, c.TotalEnrolled)
	}
	n, _ := f.store.Payments.CountByUser(ctx, student.Email)
	assert.Equal(t, int64(1), n)
}

func TestCheckout_UnconfirmedPayment(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c1 := f.addClass(t, "C1", 20, 5, entity.ClassApproved)
	c2 := f.addClass(t, "C2", 20, 5, entity.ClassApproved)
	svc := f.checkout()

	meta := func(email, classIDs string) map[string]string {
		return map[string]string{"user_email": email, "class_ids": classIDs}
	}
	f.gateway.Put(entity.PaymentIntent{ID: "pi_pending", Amount: 2000, Status: "requires_payment_method",
		Metadata: meta(student.Email, c1.ID)})
	f.gateway.Put(entity.PaymentIntent{ID: "pi_short", Amount: 100, Status: entity.IntentSucceeded,
		Metadata: meta(student.Email, c1.ID)})
	f.gateway.Put(entity.PaymentIntent{ID: "pi_theirs", Amount: 2000, Status: entity.IntentSucceeded,
		Metadata: meta(otherUser.Email, c1.ID)})
	// same total, different class
	f.gateway.Put(entity.PaymentIntent{ID: "pi_swapped", Amount: 2000, Status: entity.IntentSucceeded,
		Metadata: meta(student.Email, c2.ID)})
	f.gateway.Put(entity.PaymentIntent{ID: "pi_no_classes", Amount: 2000, Status: entity.IntentSucceeded,
		Metadata: map[string]string{"user_email": student.Email}})

	for _, tx := range []string{"pi_pending", "pi_short", "pi_theirs", "pi_swapped", "pi_no_classes", "pi_unknown"} {
		t.Run(tx, func(t *testing.T) {
			_, err := svc.Confirm(ctx, student, ConfirmInput{TransactionID: tx, ClassIDs: []string{c1.ID}})
			assert.ErrorIs(t, err, ErrPaymentNotConfirmed)
		})
	}
	assert.Equal(t, 5, f.class(t, c1.ID).AvailableSeats)
	assert.Equal(t, 5, f.class(t, c2.ID).AvailableSeats)
}

func TestCheckout_ClassOrderDoesNotMatter(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c1 := f.addClass(t, "C1", 20, 5, entity.ClassApproved)
	c2 := f.addClass(t, "C2", 15, 5, entity.ClassApproved)
	svc := f.checkout()

	intent, err := svc.CreateIntent(ctx, student, []string{c1.ID, c2.ID})
	require.NoError(t, err)
	_, err = svc.Confirm(ctx, student, ConfirmInput{TransactionID: intent.PaymentIntentID, ClassIDs: []string{c2.ID, c1.ID}})
	assert.NoError(t, err)
}

func TestCheckout_Rejections(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	pending := f.addClass(t, "Draft", 10, 5, entity.ClassPending)
	svc := f.checkout()

	_, err := svc.CreateIntent(ctx, entity.Viewer{}, []string{pending.ID})
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = svc.CreateIntent(ctx, student, nil)
	assert.ErrorIs(t, err, ErrEmptyCheckout)

	_, err = svc.CreateIntent(ctx, student, []string{pending.ID})
	assert.ErrorIs(t, err, ErrClassNotAvailable)

	_, err = svc.CreateIntent(ctx, student, []string{"65a1f0c2e4b0a1b2c3d4e5f6"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Confirm(ctx, student, ConfirmInput{ClassIDs: []string{pending.ID}})
	assert.ErrorIs(t, err, ErrEmptyCheckout)

	_, err = svc.History(ctx, student, otherUser.Email)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestUniqueIDs(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, uniqueIDs([]string{" a", "b", "a", "", "b "}))
	assert.Empty(t, uniqueIDs(nil))
}
