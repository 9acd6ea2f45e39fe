package mongodb

import (
	"context"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/aadi90392/yoga-master-full/internal/domain/entity"
	repo "github.com/aadi90392/yoga-master-full/internal/domain/repository"
)

type ClassRepository struct {
	col *mongo.Collection
}

func NewClassRepository(db *mongo.Database) *ClassRepository {
	return &ClassRepository{col: db.Collection(colClasses)}
}

func classFilter(f repo.ClassFilter) bson.M {
	q := bson.M{}
	if f.Status != "" {
		q["status"] = f.Status
	}
	if f.InstructorEmail != "" {
		q["instructorEmail"] = f.InstructorEmail
	}
	return q
}

func (r *ClassRepository) Create(ctx context.Context, c *entity.Class) error {
	if c.ID == "" {
		c.ID = newID()
	}
	if c.Chapters == nil {
		c.Chapters = []entity.Chapter{}
	}
	now := time.Now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now
	_, err := r.col.InsertOne(ctx, c)
	return translate(err)
}

func (r *ClassRepository) GetByID(ctx context.Context, id string) (*entity.Class, error) {
	c := &entity.Class{}
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(c); err != nil {
		return nil, translate(err)
	}
	return c, nil
}

func (r *ClassRepository) GetMany(ctx context.Context, ids []string) ([]entity.Class, error) {
	return findAll[entity.Class](ctx, r.col, bson.M{"_id": bson.M{"$in": ids}})
}

func (r *ClassRepository) List(ctx context.Context, f repo.ClassFilter) ([]entity.Class, error) {
	return findAll[entity.Class](ctx, r.col, classFilter(f), options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
}

func (r *ClassRepository) Count(ctx context.Context, f repo.ClassFilter) (int64, error) {
	return r.col.CountDocuments(ctx, classFilter(f))
}

// Update writes the editable fields and review state. Seat and enrollment
// counters are left to the $inc and single-field writes below.
func (r *ClassRepository) Update(ctx context.Context, c *entity.Class) error {
	c.UpdatedAt = time.Now().UTC()
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": c.ID}, bson.M{"$set": bson.M{
		"name":        c.Name,
		"description": c.Description,
		"image":       c.Image,
		"price":       c.Price,
		"videoLink":   c.VideoLink,
		"chapters":    c.Chapters,
		"status":      c.Status,
		"reason":      c.Reason,
		"updatedAt":   c.UpdatedAt,
	}})
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *ClassRepository) SetStatus(ctx context.Context, id string, from, to entity.ClassStatus, reason string) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id, "status": from},
		bson.M{"$set": bson.M{"status": to, "reason": reason, "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return repo.ErrStale
	}
	return nil
}

func (r *ClassRepository) SetAvailableSeats(ctx context.Context, id string, n int) error {
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"availableSeats": n}})
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *ClassRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.col, id)
}

func (r *ClassRepository) ReserveSeat(ctx context.Context, id string) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id, "availableSeats": bson.M{"$gt": 0}},
		bson.M{"$inc": bson.M{"availableSeats": -1, "totalEnrolled": 1}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return repo.ErrSoldOut
	}
	return nil
}

func (r *ClassRepository) ReleaseSeat(ctx context.Context, id string) error {
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$inc": bson.M{"availableSeats": 1, "totalEnrolled": -1}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *ClassRepository) SetTotalEnrolled(ctx context.Context, id string, n int) error {
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"totalEnrolled": n}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *ClassRepository) Popular(ctx context.Context, limit int) ([]entity.Class, error) {
	opts := options.Find().SetSort(bson.D{{Key: "totalEnrolled", Value: -1}}).SetLimit(int64(limit))
	return findAll[entity.Class](ctx, r.col, bson.M{"status": entity.ClassApproved}, opts)
}

func (r *ClassRepository) PopularInstructors(ctx context.Context, limit int) ([]entity.InstructorRank, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$instructorEmail"},
			{Key: "totalEnrolled", Value: bson.D{{Key: "$sum", Value: "$totalEnrolled"}}},
		}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: colUsers},
			{Key: "localField", Value: "_id"},
			{Key: "foreignField", Value: "email"},
			{Key: "as", Value: "instructor"},
		}}},
		{{Key: "$match", Value: bson.D{{Key: "instructor", Value: bson.D{{Key: "$ne", Value: bson.A{}}}}}}},
		{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: 0},
			{Key: "instructor", Value: bson.D{{Key: "$arrayElemAt", Value: bson.A{"$instructor", 0}}}},
			{Key: "totalEnrolled", Value: 1},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "totalEnrolled", Value: -1}}}},
		{{Key: "$limit", Value: limit}},
	}
	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer func() { _ = cur.Close(ctx) }()
	var rows []struct {
		Instructor    entity.User `bson:"instructor"`
		TotalEnrolled int         `bson:"totalEnrolled"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	out := make([]entity.InstructorRank, 0, len(rows))
	for _, row := range rows {
		out = append(out, entity.InstructorRank{Instructor: row.Instructor, TotalEnrolled: row.TotalEnrolled})
	}
	return out, nil
}

// Search is the fallback used when Elasticsearch is not configured.
func (r *ClassRepository) Search(ctx context.Context, q string, limit int) ([]entity.Class, error) {
	rx := primitive.Regex{Pattern: regexp.QuoteMeta(q), Options: "i"}
	filter := bson.M{
		"status": entity.ClassApproved,
		"$or": bson.A{
			bson.M{"name": rx},
			bson.M{"description": rx},
			bson.M{"instructorName": rx},
		},
	}
	return findAll[entity.Class](ctx, r.col, filter, options.Find().SetLimit(int64(limit)))
}

var _ repo.ClassRepository = (*ClassRepository)(nil)
