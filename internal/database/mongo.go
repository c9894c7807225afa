package database

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const defaultTimeout = 5 * time.Second

// Connect opens a client and verifies the primary is reachable.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := Ping(connectCtx, client); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}

// Ping checks the primary with a short deadline.
func Ping(ctx context.Context, client *mongo.Client) error {
	checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := client.Ping(checkCtx, readpref.Primary()); err != nil {
		return fmt.Errorf("mongo ping: %w", err)
	}
	return nil
}

// MongoTransactor wraps fn in a session transaction. Standalone servers do
// not support transactions; after the first such refusal fn runs directly.
type MongoTransactor struct {
	client   *mongo.Client
	disabled atomic.Bool
}

func NewTransactor(client *mongo.Client, enabled bool) *MongoTransactor {
	t := &MongoTransactor{client: client}
	t.disabled.Store(!enabled)
	return t
}

func (t *MongoTransactor) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if t.disabled.Load() {
		return fn(ctx)
	}

	session, err := t.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		return nil, fn(sessCtx)
	})
	if err != nil && transactionsUnsupported(err) {
		t.disabled.Store(true)
		log.Warn().Err(err).Msg("transactions unsupported by server, running without")
		return fn(ctx)
	}
	return err
}

func transactionsUnsupported(err error) bool {
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		// IllegalOperation: transaction numbers require a replica set or mongos.
		return cmdErr.Code == 20
	}
	return false
}

func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, defaultTimeout)
}

// buildListFilter translates a Filter into a query on created_at.
func buildListFilter(filter Filter) bson.M {
	query := bson.M{}
	if filter.Converted != nil {
		if *filter.Converted {
			query["is_converted_to_order"] = true
		} else {
			query["is_converted_to_order"] = bson.M{"$ne": true}
		}
	}

	created := bson.M{}
	if !filter.From.IsZero() {
		created["$gte"] = filter.From
	}
	if !filter.To.IsZero() {
		created["$lte"] = filter.To
	}
	if !filter.Before.IsZero() {
		created["$lt"] = filter.Before
	}
	if len(created) > 0 {
		query["created_at"] = created
	}
	return query
}

var newestFirst = options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

// maxSequence returns the largest numeric part of a "#NNN" field, or 0 when
// the collection holds none. Timestamp-shaped fallback values are skipped so
// they do not take over the sequence.
func maxSequence(ctx context.Context, coll *mongo.Collection, field string) (int64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{field: bson.M{"$regex": `^#[0-9]{1,9}$`}}}},
		{{Key: "$addFields", Value: bson.M{
			"numeric_part": bson.M{"$toLong": bson.M{"$substrBytes": bson.A{"$" + field, 1, -1}}},
		}}},
		{{Key: "$sort", Value: bson.M{"numeric_part": -1}}},
		{{Key: "$limit", Value: 1}},
		{{Key: "$project", Value: bson.M{"_id": 0, "numeric_part": 1}}},
	}

	cursor, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("aggregate %s: %w", field, err)
	}
	defer cursor.Close(ctx)

	var result struct {
		NumericPart int64 `bson:"numeric_part"`
	}
	if !cursor.Next(ctx) {
		return 0, cursor.Err()
	}
	if err := cursor.Decode(&result); err != nil {
		return 0, fmt.Errorf("decode %s: %w", field, err)
	}
	return result.NumericPart, nil
}

func keyFilter(key Key, allowed ...string) (bson.M, error) {
	if key.Field == FieldID {
		return bson.M{FieldID: key.Value}, nil
	}
	for _, field := range allowed {
		if key.Field == field {
			return bson.M{field: key.Value}, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedKey, key.Field)
}
