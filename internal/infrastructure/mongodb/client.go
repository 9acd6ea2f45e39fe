package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	repo "github.com/aadi90392/yoga-master-full/internal/domain/repository"
)

const (
	colUsers    = "users"
	colClasses  = "classes"
	colCart     = "cart"
	colPayments = "payments"
	colEnrolled = "enrolled"
	colApplied  = "applied"
)

// Connect opens the single client reused for the process lifetime and pings
// the primary before returning.
func Connect(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1)).
		SetTimeout(timeout)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}
	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}

// NewStore builds every repository on top of one database.
func NewStore(db *mongo.Database) repo.Store {
	return repo.Store{
		Users:        NewUserRepository(db),
		Classes:      NewClassRepository(db),
		Cart:         NewCartRepository(db),
		Payments:     NewPaymentRepository(db),
		Enrollments:  NewEnrollmentRepository(db),
		Applications: NewApplicationRepository(db),
	}
}

// EnsureIndexes creates the unique indexes that back the repository
// ErrDuplicate contract, plus lookup indexes for the hot filters.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	unique := options.Index().SetUnique(true)
	specs := map[string][]mongo.IndexModel{
		colUsers: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "role", Value: 1}}},
		},
		colClasses: {
			{Keys: bson.D{{Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "instructorEmail", Value: 1}}},
			{Keys: bson.D{{Key: "totalEnrolled", Value: -1}}},
		},
		colCart: {
			{Keys: bson.D{{Key: "userMail", Value: 1}, {Key: "classId", Value: 1}}, Options: unique},
		},
		colPayments: {
			{Keys: bson.D{{Key: "transactionId", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "userEmail", Value: 1}, {Key: "date", Value: -1}}},
		},
		colEnrolled: {
			{Keys: bson.D{{Key: "userEmail", Value: 1}}},
			{Keys: bson.D{{Key: "classesId", Value: 1}}},
		},
		colApplied: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
		},
	}
	for col, models := range specs {
		if _, err := db.Collection(col).Indexes().CreateMany(ctx, models); err != nil {
			return err
		}
	}
	return nil
}

func newID() string { return primitive.NewObjectID().Hex() }

// translate maps driver errors onto the repository contract.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return repo.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return repo.ErrDuplicate
	default:
		return err
	}
}

func findAll[T any](ctx context.Context, col *mongo.Collection, filter any, opts ...*options.FindOptions) ([]T, error) {
	cur, err := col.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = cur.Close(ctx) }()
	out := []T{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func deleteByID(ctx context.Context, col *mongo.Collection, id string) error {
	res, err := col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repo.ErrNotFound
	}
	return nil
}
