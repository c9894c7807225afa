package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Counters keeps one document per named sequence: {_id: name, value: n}.
type Counters struct {
	coll *mongo.Collection
}

func NewCounters(db *mongo.Database) *Counters {
	return &Counters{coll: db.Collection(CountersCollection)}
}

func (c *Counters) Seed(ctx context.Context, name string, floor int64) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	_, err := c.coll.UpdateOne(ctx,
		bson.M{FieldID: name},
		bson.M{"$max": bson.M{"value": floor}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("seed counter %s: %w", name, err)
	}
	return nil
}

func (c *Counters) Increment(ctx context.Context, name string) (int64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var doc struct {
		Value int64 `bson:"value"`
	}
	err := c.coll.FindOneAndUpdate(ctx,
		bson.M{FieldID: name},
		bson.M{"$inc": bson.M{"value": int64(1)}},
		opts,
	).Decode(&doc)
	if err != nil {
		return 0, fmt.Errorf("increment counter %s: %w", name, err)
	}
	return doc.Value, nil
}
