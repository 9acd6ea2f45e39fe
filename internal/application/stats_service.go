package application

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/aadi90392/yoga-master-full/internal/domain/entity"
	repo "github.com/aadi90392/yoga-master-full/internal/domain/repository"
	"github.com/aadi90392/yoga-master-full/pkg/helpers"
)

const (
	popularLimit    = 6
	popularCacheKey = "cache:popular_classes"
	popularCacheTTL = 60 * time.Second
)

type StatsService struct {
	Users       repo.UserRepository
	Classes     repo.ClassRepository
	Enrollments repo.EnrollmentRepository
	Redis       *redis.Client
	Logger      *logrus.Logger
}

func NewStatsService(store repo.Store, rdb *redis.Client, logger *logrus.Logger) *StatsService {
	if logger == nil {
		logger = helpers.NopLogger()
	}
	return &StatsService{Users: store.Users, Classes: store.Classes, Enrollments: store.Enrollments, Redis: rdb, Logger: logger}
}

type InstructorStats struct {
	TotalClasses  int            `json:"totalClasses"`
	TotalEnrolled int            `json:"totalEnrolled"`
	TotalRevenue  float64        `json:"totalRevenue"`
	ClassesData   []entity.Class `json:"classesData"`
}

// InstructorStats summarises an instructor's catalogue, to that instructor or an admin.
func (s *StatsService) InstructorStats(ctx context.Context, viewer entity.Viewer, email string) (*InstructorStats, error) {
	if !viewer.Owns(email) {
		return nil, ErrForbidden
	}
	list, err := s.Classes.List(ctx, repo.ClassFilter{InstructorEmail: email})
	if err != nil {
		return nil, err
	}
	out := &InstructorStats{TotalClasses: len(list), ClassesData: list}
	var revenueMinor int64
	for _, c := range list {
		out.TotalEnrolled += c.TotalEnrolled
		revenueMinor += entity.MinorUnits(c.Price) * int64(c.TotalEnrolled)
	}
	out.TotalRevenue = float64(revenueMinor) / 100
	return out, nil
}

// PopularClasses returns the most enrolled approved classes, cached briefly in Redis.
func (s *StatsService) PopularClasses(ctx context.Context) ([]entity.Class, error) {
	if s.Redis != nil {
		var cached []entity.Class
		ok, err := helpers.RedisGetJSON(ctx, s.Redis, popularCacheKey, &cached)
		if err != nil {
			s.Logger.WithError(err).Debug("popular classes cache read failed")
		}
		if ok {
			return cached, nil
		}
	}
	list, err := s.Classes.Popular(ctx, popularLimit)
	if err != nil {
		return nil, err
	}
	list = redactAll(list)
	if s.Redis != nil {
		if err := helpers.RedisSetJSON(ctx, s.Redis, popularCacheKey, list, popularCacheTTL); err != nil {
			s.Logger.WithError(err).Debug("popular classes cache write failed")
		}
	}
	return list, nil
}

func (s *StatsService) PopularInstructors(ctx context.Context) ([]entity.InstructorRank, error) {
	return s.Classes.PopularInstructors(ctx, popularLimit)
}

type AdminStats struct {
	ApprovedClasses int64 `json:"approvedClasses"`
	PendingClasses  int64 `json:"pendingClasses"`
	Instructors     int64 `json:"instructors"`
	TotalClasses    int64 `json:"totalClasses"`
	TotalEnrolled   int64 `json:"totalEnrolled"`
}

func (s *StatsService) AdminStats(ctx context.Context, viewer entity.Viewer) (*AdminStats, error) {
	if !viewer.IsAdmin() {
		return nil, ErrForbidden
	}
	var (
		out AdminStats
		err error
	)
	if out.ApprovedClasses, err = s.Classes.Count(ctx, repo.ClassFilter{Status: entity.ClassApproved}); err != nil {
		return nil, err
	}
	if out.PendingClasses, err = s.Classes.Count(ctx, repo.ClassFilter{Status: entity.ClassPending}); err != nil {
		return nil, err
	}
	if out.Instructors, err = s.Users.CountByRole(ctx, entity.RoleInstructor); err != nil {
		return nil, err
	}
	if out.TotalClasses, err = s.Classes.Count(ctx, repo.ClassFilter{}); err != nil {
		return nil, err
	}
	if out.TotalEnrolled, err = s.Enrollments.Count(ctx); err != nil {
		return nil, err
	}
	return &out, nil
}

// EnrolledClasses lists the classes a user bought with their instructors.
// Enrolled viewers see every chapter.
func (s *StatsService) EnrolledClasses(ctx context.Context, viewer entity.Viewer, email string) ([]entity.EnrolledClass, error) {
	if !viewer.Owns(email) {
		return nil, ErrForbidden
	}
	ids, err := repo.EnrolledClassIDs(ctx, s.Enrollments, email)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []entity.EnrolledClass{}, nil
	}
	keys := make([]string, 0, len(ids))
	for id := range ids {
		keys = append(keys, id)
	}
	classes, err := s.Classes.GetMany(ctx, keys)
	if err != nil {
		return nil, err
	}
	emails := make([]string, 0, len(classes))
	for _, c := range classes {
		emails = append(emails, c.InstructorEmail)
	}
	instructors, err := s.Users.GetManyByEmail(ctx, emails)
	if err != nil {
		return nil, err
	}
	byEmail := make(map[string]*entity.User, len(instructors))
	for i := range instructors {
		byEmail[instructors[i].Email] = &instructors[i]
	}
	out := make([]entity.EnrolledClass, 0, len(classes))
	for _, c := range classes {
		out = append(out, entity.EnrolledClass{Class: c, Instructor: byEmail[c.InstructorEmail]})
	}
	return out, nil
}

// Reconcile rewrites each class's totalEnrolled from the enrollment records
// and returns how many classes were corrected.
func (s *StatsService) Reconcile(ctx context.Context) (int, error) {
	list, err := s.Classes.List(ctx, repo.ClassFilter{})
	if err != nil {
		return 0, fmt.Errorf("list classes: %w", err)
	}
	fixed := 0
	for _, c := range list {
		n, err := s.Enrollments.CountEnrolledIn(ctx, c.ID)
		if err != nil {
			return fixed, fmt.Errorf("count enrollments for %s: %w", c.ID, err)
		}
		if int(n) == c.TotalEnrolled {
			continue
		}
		if err := s.Classes.SetTotalEnrolled(ctx, c.ID, int(n)); err != nil {
			return fixed, fmt.Errorf("set total for %s: %w", c.ID, err)
		}
		s.Logger.WithFields(logrus.Fields{"class_id": c.ID, "from": c.TotalEnrolled, "to": n}).Info("totalEnrolled reconciled")
		fixed++
	}
	if fixed > 0 && s.Redis != nil {
		if err := helpers.RedisDel(ctx, s.Redis, popularCacheKey); err != nil {
			s.Logger.WithError(err).Warn("popular cache invalidation failed")
		}
	}
	return fixed, nil
}
