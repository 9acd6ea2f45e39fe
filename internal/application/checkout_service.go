package application

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/aadi90392/yoga-master-full/internal/domain/entity"
	repo "github.com/aadi90392/yoga-master-full/internal/domain/repository"
	"github.com/aadi90392/yoga-master-full/pkg/helpers"
)

// Exposed on /debug/vars.
var checkoutStats = expvar.NewMap("checkout")

const (
	metaUserEmail = "user_email"
	metaClassIDs  = "class_ids"
)

type CheckoutService struct {
	Classes     repo.ClassRepository
	Cart        repo.CartRepository
	Payments    repo.PaymentRepository
	Enrollments repo.EnrollmentRepository
	Gateway     PaymentGateway
	Currency    string
	Redis       *redis.Client
	LockTTL     time.Duration
	Jobs        JobPublisher
	Audit       *Auditor
	Logger      *logrus.Logger
}

func NewCheckoutService(store repo.Store, gateway PaymentGateway, currency string, rdb *redis.Client, lockTTL time.Duration, jobs JobPublisher, audit *Auditor, logger *logrus.Logger) *CheckoutService {
	if currency == "" {
		currency = "usd"
	}
	if lockTTL <= 0 {
		lockTTL = 30 * time.Second
	}
	if logger == nil {
		logger = helpers.NopLogger()
	}
	return &CheckoutService{
		Classes:     store.Classes,
		Cart:        store.Cart,
		Payments:    store.Payments,
		Enrollments: store.Enrollments,
		Gateway:     gateway,
		Currency:    currency,
		Redis:       rdb,
		LockTTL:     lockTTL,
		Jobs:        jobs,
		Audit:       audit,
		Logger:      logger,
	}
}

type IntentResult struct {
	ClientSecret    string `json:"clientSecret"`
	PaymentIntentID string `json:"paymentIntentId"`
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency"`
}

// CreateIntent prices the listed classes, or the caller's cart when none
// are listed, and opens a card payment for that amount.
func (s *CheckoutService) CreateIntent(ctx context.Context, viewer entity.Viewer, classIDs []string) (*IntentResult, error) {
	if viewer.Anonymous() {
		return nil, ErrUnauthenticated
	}
	ids := uniqueIDs(classIDs)
	if len(ids) == 0 {
		items, err := s.Cart.ListByUser(ctx, viewer.Email)
		if err != nil {
			return nil, fmt.Errorf("load cart: %w", err)
		}
		for _, it := range items {
			ids = append(ids, it.ClassID)
		}
		ids = uniqueIDs(ids)
	}
	if len(ids) == 0 {
		return nil, ErrEmptyCheckout
	}
	classes, err := s.purchasable(ctx, viewer.Email, ids)
	if err != nil {
		return nil, err
	}
	amount := totalMinor(classes)
	in, err := s.Gateway.CreateIntent(ctx, amount, s.Currency, map[string]string{
		metaUserEmail: viewer.Email,
		metaClassIDs:  strings.Join(ids, ","),
	})
	if err != nil {
		s.Logger.WithError(err).WithField("user", viewer.Email).Error("create payment intent failed")
		return nil, fmt.Errorf("create payment intent: %w", err)
	}
	return &IntentResult{ClientSecret: in.ClientSecret, PaymentIntentID: in.ID, Amount: amount, Currency: s.Currency}, nil
}

type ConfirmInput struct {
	TransactionID string
	ClassIDs      []string
}

type CheckoutResult struct {
	Payment     *entity.Payment    `json:"payment"`
	Enrollment  *entity.Enrollment `json:"enrollment,omitempty"`
	CartCleared int64              `json:"cartCleared"`
	Duplicate   bool               `json:"duplicate"`
}

// Confirm turns a succeeded payment intent into an enrollment. The writes
// run as a saga: seats, payment, enrollment, cart. A failing step undoes
// the completed ones in reverse order. Replays of the same transaction id
// return the stored payment without writing anything.
func (s *CheckoutService) Confirm(ctx context.Context, viewer entity.Viewer, in ConfirmInput) (*CheckoutResult, error) {
	if viewer.Anonymous() {
		return nil, ErrUnauthenticated
	}
	ids := uniqueIDs(in.ClassIDs)
	if in.TransactionID == "" || len(ids) == 0 {
		return nil, ErrEmptyCheckout
	}
	log := s.Logger.WithFields(logrus.Fields{"user": viewer.Email, "transaction_id": in.TransactionID})

	if res, err := s.replay(ctx, viewer, in.TransactionID); res != nil || err != nil {
		return res, err
	}
	if s.Redis != nil {
		ok, release, err := helpers.RedisLock(ctx, s.Redis, "checkout:lock:"+in.TransactionID, s.LockTTL)
		if err != nil {
			log.WithError(err).Warn("checkout lock unavailable, relying on unique transaction id")
		} else if !ok {
			return nil, ErrCheckoutInProgress
		}
		defer release()
		if res, err := s.replay(ctx, viewer, in.TransactionID); res != nil || err != nil {
			return res, err
		}
	}

	classes, err := s.purchasable(ctx, viewer.Email, ids)
	if err != nil {
		checkoutStats.Add("rejected", 1)
		return nil, err
	}
	if err := s.verifyIntent(ctx, viewer.Email, in.TransactionID, ids, totalMinor(classes)); err != nil {
		checkoutStats.Add("unconfirmed", 1)
		log.WithError(err).Warn("payment intent rejected")
		return nil, err
	}

	sg := &saga{log: log}
	// compensations must run even if the client went away
	cctx := context.WithoutCancel(ctx)

	for _, c := range classes {
		id := c.ID
		if err := s.Classes.ReserveSeat(ctx, id); err != nil {
			sg.rollback(cctx)
			checkoutStats.Add("failed", 1)
			if errors.Is(err, repo.ErrSoldOut) {
				return nil, ErrSoldOut
			}
			log.WithError(err).WithField("step", "reserve_seat").Error("checkout step failed")
			return nil, fmt.Errorf("reserve seat: %w", err)
		}
		sg.push("release_seat:"+id, func(ctx context.Context) error { return s.Classes.ReleaseSeat(ctx, id) })
	}

	names := make([]string, 0, len(classes))
	for _, c := range classes {
		names = append(names, c.Name)
	}
	p := &entity.Payment{
		TransactionID: in.TransactionID,
		UserEmail:     viewer.Email,
		Price:         float64(totalMinor(classes)) / 100,
		Quantity:      len(classes),
		ClassIDs:      ids,
		ClassNames:    names,
		Status:        entity.PaymentStatusCompleted,
		Date:          time.Now().UTC(),
	}
	if err := s.Payments.Create(ctx, p); err != nil {
		sg.rollback(cctx)
		if errors.Is(err, repo.ErrDuplicate) {
			if res, err := s.replay(ctx, viewer, in.TransactionID); res != nil || err != nil {
				return res, err
			}
			return nil, ErrCheckoutInProgress
		}
		checkoutStats.Add("failed", 1)
		log.WithError(err).WithField("step", "payment").Error("checkout step failed")
		return nil, fmt.Errorf("record payment: %w", err)
	}
	sg.push("delete_payment", func(ctx context.Context) error { return s.Payments.Delete(ctx, p.ID) })

	e := &entity.Enrollment{UserEmail: viewer.Email, ClassIDs: ids, TransactionID: in.TransactionID}
	if err := s.Enrollments.Create(ctx, e); err != nil {
		sg.rollback(cctx)
		checkoutStats.Add("failed", 1)
		log.WithError(err).WithField("step", "enrollment").Error("checkout step failed")
		return nil, fmt.Errorf("record enrollment: %w", err)
	}

	cleared, err := s.Cart.RemoveMany(cctx, viewer.Email, ids)
	if err != nil {
		log.WithError(err).WithField("step", "clear_cart").Warn("cart cleanup failed")
	}

	checkoutStats.Add("completed", 1)
	s.Audit.Record(cctx, viewer.Email, ActionCheckout, in.TransactionID, map[string]any{
		"classes": ids,
		"amount":  p.Price,
	})
	for _, id := range ids {
		enqueueIndex(cctx, s.Jobs, s.Logger, id, IndexUpsert)
	}
	return &CheckoutResult{Payment: p, Enrollment: e, CartCleared: cleared}, nil
}

// replay returns the stored outcome of an already processed transaction.
// It yields (nil, nil) when the transaction is new.
func (s *CheckoutService) replay(ctx context.Context, viewer entity.Viewer, txID string) (*CheckoutResult, error) {
	p, err := s.Payments.GetByTransactionID(ctx, txID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load payment: %w", err)
	}
	if p.UserEmail != viewer.Email {
		return nil, ErrForbidden
	}
	checkoutStats.Add("replayed", 1)
	return &CheckoutResult{Payment: p, Duplicate: true}, nil
}

// verifyIntent asks the processor whether the charge went through for the
// expected amount, buyer and classes.
func (s *CheckoutService) verifyIntent(ctx context.Context, email, txID string, ids []string, amount int64) error {
	in, err := s.Gateway.GetIntent(ctx, txID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPaymentNotConfirmed, err)
	}
	switch {
	case in.Status != entity.IntentSucceeded:
		return fmt.Errorf("%w: status %s", ErrPaymentNotConfirmed, in.Status)
	case in.Amount != amount:
		return fmt.Errorf("%w: amount %d, expected %d", ErrPaymentNotConfirmed, in.Amount, amount)
	case in.Metadata[metaUserEmail] != email:
		return fmt.Errorf("%w: intent belongs to another user", ErrPaymentNotConfirmed)
	case !sameIDs(strings.Split(in.Metadata[metaClassIDs], ","), ids):
		return fmt.Errorf("%w: intent was opened for other classes", ErrPaymentNotConfirmed)
	}
	return nil
}

// sameIDs compares two id lists as sets.
func sameIDs(a, b []string) bool {
	a, b = uniqueIDs(a), uniqueIDs(b)
	slices.Sort(a)
	slices.Sort(b)
	return slices.Equal(a, b)
}

// purchasable loads ids in order and checks every class can be bought by email.
func (s *CheckoutService) purchasable(ctx context.Context, email string, ids []string) ([]entity.Class, error) {
	list, err := s.Classes.GetMany(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load classes: %w", err)
	}
	byID := make(map[string]entity.Class, len(list))
	for _, c := range list {
		byID[c.ID] = c
	}
	enrolled, err := repo.EnrolledClassIDs(ctx, s.Enrollments, email)
	if err != nil {
		return nil, fmt.Errorf("load enrollments: %w", err)
	}
	out := make([]entity.Class, 0, len(ids))
	for _, id := range ids {
		c, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("class %s %w", id, ErrNotFound)
		}
		if c.Status != entity.ClassApproved {
			return nil, ErrClassNotAvailable
		}
		if enrolled[id] {
			return nil, ErrAlreadyEnrolled
		}
		out = append(out, c)
	}
	return out, nil
}

// History lists payments newest first, to their owner or an admin.
func (s *CheckoutService) History(ctx context.Context, viewer entity.Viewer, email string) ([]entity.Payment, error) {
	if !viewer.Owns(email) {
		return nil, ErrForbidden
	}
	return s.Payments.ListByUser(ctx, email)
}

func (s *CheckoutService) HistoryLength(ctx context.Context, viewer entity.Viewer, email string) (int64, error) {
	if !viewer.Owns(email) {
		return 0, ErrForbidden
	}
	return s.Payments.CountByUser(ctx, email)
}

func totalMinor(classes []entity.Class) int64 {
	var sum int64
	for _, c := range classes {
		sum += entity.MinorUnits(c.Price)
	}
	return sum
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

type compensation struct {
	name string
	fn   func(context.Context) error
}

// saga collects undo steps for a multi-document write.
type saga struct {
	log   *logrus.Entry
	steps []compensation
}

func (s *saga) push(name string, fn func(context.Context) error) {
	s.steps = append(s.steps, compensation{name: name, fn: fn})
}

func (s *saga) rollback(ctx context.Context) {
	for i := len(s.steps) - 1; i >= 0; i-- {
		st := s.steps[i]
		if err := st.fn(ctx); err != nil {
			s.log.WithError(err).WithField("compensation", st.name).Error("checkout compensation failed")
		}
	}
	s.steps = nil
}
