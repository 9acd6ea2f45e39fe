package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/aadi90392/yoga-master-full/internal/domain/entity"
	repo "github.com/aadi90392/yoga-master-full/internal/domain/repository"
)

type CartRepository struct {
	col *mongo.Collection
}

func NewCartRepository(db *mongo.Database) *CartRepository {
	return &CartRepository{col: db.Collection(colCart)}
}

func (r *CartRepository) Add(ctx context.Context, item *entity.CartItem) error {
	item.ID = newID()
	item.CreatedAt = time.Now().UTC()
	_, err := r.col.InsertOne(ctx, item)
	return translate(err)
}

func (r *CartRepository) Get(ctx context.Context, userEmail, classID string) (*entity.CartItem, error) {
	item := &entity.CartItem{}
	err := r.col.FindOne(ctx, bson.M{"userMail": userEmail, "classId": classID}).Decode(item)
	if err != nil {
		return nil, translate(err)
	}
	return item, nil
}

func (r *CartRepository) ListByUser(ctx context.Context, userEmail string) ([]entity.CartItem, error) {
	return findAll[entity.CartItem](ctx, r.col, bson.M{"userMail": userEmail})
}

func (r *CartRepository) Remove(ctx context.Context, userEmail, classID string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"userMail": userEmail, "classId": classID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *CartRepository) RemoveMany(ctx context.Context, userEmail string, classIDs []string) (int64, error) {
	res, err := r.col.DeleteMany(ctx, bson.M{"userMail": userEmail, "classId": bson.M{"$in": classIDs}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

type PaymentRepository struct {
	col *mongo.Collection
}

func NewPaymentRepository(db *mongo.Database) *PaymentRepository {
	return &PaymentRepository{col: db.Collection(colPayments)}
}

func (r *PaymentRepository) Create(ctx context.Context, p *entity.Payment) error {
	p.ID = newID()
	if p.Date.IsZero() {
		p.Date = time.Now().UTC()
	}
	_, err := r.col.InsertOne(ctx, p)
	return translate(err)
}

func (r *PaymentRepository) GetByTransactionID(ctx context.Context, txID string) (*entity.Payment, error) {
	p := &entity.Payment{}
	if err := r.col.FindOne(ctx, bson.M{"transactionId": txID}).Decode(p); err != nil {
		return nil, translate(err)
	}
	return p, nil
}

func (r *PaymentRepository) ListByUser(ctx context.Context, userEmail string) ([]entity.Payment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	return findAll[entity.Payment](ctx, r.col, bson.M{"userEmail": userEmail}, opts)
}

func (r *PaymentRepository) CountByUser(ctx context.Context, userEmail string) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{"userEmail": userEmail})
}

func (r *PaymentRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.col, id)
}

type EnrollmentRepository struct {
	col *mongo.Collection
}

func NewEnrollmentRepository(db *mongo.Database) *EnrollmentRepository {
	return &EnrollmentRepository{col: db.Collection(colEnrolled)}
}

func (r *EnrollmentRepository) Create(ctx context.Context, e *entity.Enrollment) error {
	e.ID = newID()
	e.CreatedAt = time.Now().UTC()
	_, err := r.col.InsertOne(ctx, e)
	return translate(err)
}

func (r *EnrollmentRepository) ListByUser(ctx context.Context, userEmail string) ([]entity.Enrollment, error) {
	return findAll[entity.Enrollment](ctx, r.col, bson.M{"userEmail": userEmail})
}

func (r *EnrollmentRepository) CountEnrolledIn(ctx context.Context, classID string) (int64, error) {
	// an array field equality matches documents containing the element
	return r.col.CountDocuments(ctx, bson.M{"classesId": classID})
}

func (r *EnrollmentRepository) Count(ctx context.Context) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{})
}

func (r *EnrollmentRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.col, id)
}

type ApplicationRepository struct {
	col *mongo.Collection
}

func NewApplicationRepository(db *mongo.Database) *ApplicationRepository {
	return &ApplicationRepository{col: db.Collection(colApplied)}
}

func (r *ApplicationRepository) Create(ctx context.Context, a *entity.InstructorApplication) error {
	a.ID = newID()
	_, err := r.col.InsertOne(ctx, a)
	return translate(err)
}

func (r *ApplicationRepository) GetByID(ctx context.Context, id string) (*entity.InstructorApplication, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *ApplicationRepository) GetByEmail(ctx context.Context, email string) (*entity.InstructorApplication, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *ApplicationRepository) List(ctx context.Context) ([]entity.InstructorApplication, error) {
	opts := options.Find().SetSort(bson.D{{Key: "appliedAt", Value: 1}})
	return findAll[entity.InstructorApplication](ctx, r.col, bson.M{}, opts)
}

func (r *ApplicationRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.col, id)
}

func (r *ApplicationRepository) findOne(ctx context.Context, filter bson.M) (*entity.InstructorApplication, error) {
	a := &entity.InstructorApplication{}
	if err := r.col.FindOne(ctx, filter).Decode(a); err != nil {
		return nil, translate(err)
	}
	return a, nil
}

var (
	_ repo.CartRepository        = (*CartRepository)(nil)
	_ repo.PaymentRepository     = (*PaymentRepository)(nil)
	_ repo.EnrollmentRepository  = (*EnrollmentRepository)(nil)
	_ repo.ApplicationRepository = (*ApplicationRepository)(nil)
)
