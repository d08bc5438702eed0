// Package mongodb implements the store contracts on MongoDB. Writes use
// the document version as a compare-and-swap guard.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AnshRaj112/graceway-backend/internal/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Repository[T any, PT store.DocumentPtr[T]] struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewRepository[T any, PT store.DocumentPtr[T]](coll *mongo.Collection) *Repository[T, PT] {
	return &Repository[T, PT]{coll: coll, now: time.Now}
}

func (r *Repository[T, PT]) stamp() time.Time {
	return r.now().UTC().Truncate(time.Millisecond)
}

func filterOf(f store.Filter) bson.M {
	if f == nil {
		return bson.M{}
	}
	return f
}

func (r *Repository[T, PT]) Insert(ctx context.Context, doc *T) error {
	meta := PT(doc).Meta()
	if meta.ID.IsZero() {
		meta.ID = primitive.NewObjectID()
	}
	now := r.stamp()
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = now
	}
	meta.UpdatedAt = now
	meta.Version = 1

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("mongodb: insert into %s: %w", r.coll.Name(), store.ErrDuplicate)
		}
		return fmt.Errorf("mongodb: insert into %s: %w", r.coll.Name(), err)
	}
	return nil
}

func (r *Repository[T, PT]) Get(ctx context.Context, id primitive.ObjectID) (*T, error) {
	doc := new(T)
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mongodb: get from %s: %w", r.coll.Name(), err)
	}
	return doc, nil
}

func (r *Repository[T, PT]) GetMany(ctx context.Context, ids []primitive.ObjectID) ([]T, error) {
	if len(ids) == 0 {
		return []T{}, nil
	}
	found, err := r.List(ctx, store.Filter{"_id": bson.M{"$in": ids}}, store.ListOptions{})
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]T, len(found))
	for _, doc := range found {
		byID[PT(&doc).Meta().ID] = doc
	}
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		if doc, ok := byID[id]; ok {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (r *Repository[T, PT]) List(ctx context.Context, filter store.Filter, opts store.ListOptions) ([]T, error) {
	findOpts := options.Find()
	if len(opts.Sort) > 0 {
		sort := bson.D{}
		for _, s := range opts.Sort {
			dir := 1
			if s.Desc {
				dir = -1
			}
			sort = append(sort, bson.E{Key: s.Field, Value: dir})
		}
		findOpts.SetSort(sort)
	}
	if opts.Skip > 0 {
		findOpts.SetSkip(opts.Skip)
	}
	if opts.Limit > 0 {
		findOpts.SetLimit(opts.Limit)
	}

	cursor, err := r.coll.Find(ctx, filterOf(filter), findOpts)
	if err != nil {
		return nil, fmt.Errorf("mongodb: find in %s: %w", r.coll.Name(), err)
	}
	defer cursor.Close(ctx)

	out := []T{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("mongodb: decode %s: %w", r.coll.Name(), err)
	}
	return out, nil
}

func (r *Repository[T, PT]) Count(ctx context.Context, filter store.Filter) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, filterOf(filter))
	if err != nil {
		return 0, fmt.Errorf("mongodb: count %s: %w", r.coll.Name(), err)
	}
	return n, nil
}

func (r *Repository[T, PT]) Mutate(ctx context.Context, id primitive.ObjectID, fn func(*T) error) (*T, error) {
	for attempt := 0; attempt < store.MaxMutateAttempts; attempt++ {
		doc, err := r.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := fn(doc); err != nil {
			return nil, err
		}

		meta := PT(doc).Meta()
		seen := meta.Version
		meta.ID = id
		meta.Version = seen + 1
		meta.UpdatedAt = r.stamp()

		res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": id, "version": seen}, doc)
		if err != nil {
			return nil, fmt.Errorf("mongodb: replace in %s: %w", r.coll.Name(), err)
		}
		if res.MatchedCount == 1 {
			return doc, nil
		}
		if err := store.Backoff(ctx, attempt+1); err != nil {
			return nil, err
		}
	}
	return nil, store.ErrVersionConflict
}

func (r *Repository[T, PT]) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("mongodb: delete from %s: %w", r.coll.Name(), err)
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *Repository[T, PT]) aggregate(ctx context.Context, pipeline mongo.Pipeline, out any) error {
	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return fmt.Errorf("mongodb: aggregate %s: %w", r.coll.Name(), err)
	}
	defer cursor.Close(ctx)
	if err := cursor.All(ctx, out); err != nil {
		return fmt.Errorf("mongodb: decode aggregate %s: %w", r.coll.Name(), err)
	}
	return nil
}

func (r *Repository[T, PT]) CountBy(ctx context.Context, field string, filter store.Filter) ([]store.Bucket, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filterOf(filter)}},
		{{Key: "$group", Value: bson.M{"_id": "$" + field, "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}}}},
	}
	out := []store.Bucket{}
	if err := r.aggregate(ctx, pipeline, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repository[T, PT]) accumulate(ctx context.Context, op, field string, filter store.Filter) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filterOf(filter)}},
		{{Key: "$group", Value: bson.M{"_id": nil, "value": bson.M{op: "$" + field}}}},
	}
	var out []struct {
		Value float64 `bson:"value"`
	}
	if err := r.aggregate(ctx, pipeline, &out); err != nil {
		return 0, err
	}
	if len(out) == 0 {
		return 0, nil
	}
	return out[0].Value, nil
}

func (r *Repository[T, PT]) Sum(ctx context.Context, field string, filter store.Filter) (float64, error) {
	return r.accumulate(ctx, "$sum", field, filter)
}

func (r *Repository[T, PT]) Avg(ctx context.Context, field string, filter store.Filter) (float64, error) {
	return r.accumulate(ctx, "$avg", field, filter)
}

func (r *Repository[T, PT]) CountByMonth(ctx context.Context, field string, filter store.Filter) ([]store.MonthBucket, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filterOf(filter)}},
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{
				"year":  bson.M{"$year": "$" + field},
				"month": bson.M{"$month": "$" + field},
			},
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id.year", Value: 1}, {Key: "_id.month", Value: 1}}}},
	}
	var rows []struct {
		ID struct {
			Year  int `bson:"year"`
			Month int `bson:"month"`
		} `bson:"_id"`
		Count int64 `bson:"count"`
	}
	if err := r.aggregate(ctx, pipeline, &rows); err != nil {
		return nil, err
	}
	out := make([]store.MonthBucket, 0, len(rows))
	for _, row := range rows {
		out = append(out, store.MonthBucket{Year: row.ID.Year, Month: row.ID.Month, Count: row.Count})
	}
	return out, nil
}
