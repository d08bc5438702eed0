package mongodb

import (
	"context"
	"fmt"

	"github.com/AnshRaj112/graceway-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func keys(pairs ...any) bson.D {
	d := bson.D{}
	for i := 0; i+1 < len(pairs); i += 2 {
		d = append(d, bson.E{Key: pairs[i].(string), Value: pairs[i+1]})
	}
	return d
}

var indexes = map[models.Kind][]mongo.IndexModel{
	models.KindUser: {
		{Keys: keys("email", 1), Options: options.Index().SetUnique(true)},
		{Keys: keys("role", 1, "isActive", 1)},
	},
	models.KindDevotional: {
		{Keys: keys("date", -1, "status", 1)},
		{Keys: keys("status", 1, "category", 1)},
	},
	models.KindPrayer: {
		{Keys: keys("user", 1, "status", 1)},
		{Keys: keys("isPrivate", 1, "status", 1)},
		{Keys: keys("category", 1)},
		{Keys: keys("comments.isModerated", 1)},
	},
	models.KindQuest: {
		{Keys: keys("status", 1, "difficulty", 1)},
		{Keys: keys("book", 1)},
	},
	models.KindReadingPlan: {
		{Keys: keys("status", 1, "category", 1)},
		{Keys: keys("topic", 1)},
		{Keys: keys("enrolledUsers.user", 1)},
	},
	models.KindVerseArt: {
		{Keys: keys("user", 1, "status", 1)},
		{Keys: keys("isPublic", 1, "status", 1)},
		{Keys: keys("reference", 1)},
		{Keys: keys("comments.isModerated", 1)},
	},
	models.KindVerseOfDay: {
		{Keys: keys("date", -1, "status", 1)},
		{Keys: keys("date", 1), Options: options.Index().SetUnique(true)},
	},
}

// EnsureIndexes creates the secondary indexes every collection relies on.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	for kind, specs := range indexes {
		if _, err := db.Collection(kind.Collection()).Indexes().CreateMany(ctx, specs); err != nil {
			return fmt.Errorf("mongodb: indexes for %s: %w", kind.Collection(), err)
		}
	}
	return nil
}
