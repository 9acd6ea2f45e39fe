package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/aadi90392/yoga-master-full/internal/domain/entity"
	repo "github.com/aadi90392/yoga-master-full/internal/domain/repository"
)

type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{col: db.Collection(colUsers)}
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	if u.ID == "" {
		u.ID = newID()
	}
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	_, err := r.col.InsertOne(ctx, u)
	return translate(err)
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) GetManyByEmail(ctx context.Context, emails []string) ([]entity.User, error) {
	return findAll[entity.User](ctx, r.col, bson.M{"email": bson.M{"$in": emails}})
}

func (r *UserRepository) List(ctx context.Context) ([]entity.User, error) {
	return findAll[entity.User](ctx, r.col, bson.M{})
}

func (r *UserRepository) ListByRole(ctx context.Context, role entity.Role) ([]entity.User, error) {
	return findAll[entity.User](ctx, r.col, bson.M{"role": role})
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	u.UpdatedAt = time.Now().UTC()
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": u.ID}, bson.M{"$set": bson.M{
		"name":      u.Name,
		"role":      u.Role,
		"photoUrl":  u.PhotoURL,
		"phone":     u.Phone,
		"address":   u.Address,
		"gender":    u.Gender,
		"about":     u.About,
		"skills":    u.Skills,
		"password":  u.PasswordHash,
		"updatedAt": u.UpdatedAt,
	}})
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.col, id)
}

func (r *UserRepository) CountByRole(ctx context.Context, role entity.Role) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{"role": role})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*entity.User, error) {
	u := &entity.User{}
	if err := r.col.FindOne(ctx, filter).Decode(u); err != nil {
		return nil, translate(err)
	}
	return u, nil
}

var _ repo.UserRepository = (*UserRepository)(nil)
