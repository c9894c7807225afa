package database

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates every index the estimate and order stores rely on.
func EnsureIndexes(db *mongo.Database) error {
	if err := EnsureEstimateIndexes(db); err != nil {
		return err
	}
	return EnsureOrderIndexes(db)
}

func EnsureEstimateIndexes(db *mongo.Database) error {
	return ensure(db, EstimatesCollection, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: FieldEstimateID, Value: 1}},
			Options: options.Index().
				SetName("estimate_id_unique").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{FieldEstimateID: bson.M{"$exists": true}}),
		},
		{
			Keys:    bson.D{{Key: FieldEstimateNumber, Value: 1}},
			Options: options.Index().SetName("estimate_number_index"),
		},
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("created_at_desc"),
		},
		{
			Keys:    bson.D{{Key: "is_converted_to_order", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("converted_created_at"),
		},
	})
}

func EnsureOrderIndexes(db *mongo.Database) error {
	return ensure(db, OrdersCollection, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: FieldOrderID, Value: 1}},
			Options: options.Index().
				SetName("order_id_unique").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{FieldOrderID: bson.M{"$exists": true}}),
		},
		{
			Keys:    bson.D{{Key: FieldSaleNumber, Value: 1}},
			Options: options.Index().SetName("sale_number_index"),
		},
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("created_at_desc"),
		},
		{
			Keys:    bson.D{{Key: "source_estimate_id", Value: 1}},
			Options: options.Index().SetName("source_estimate_id_index").SetSparse(true),
		},
	})
}

func ensure(db *mongo.Database, collection string, models []mongo.IndexModel) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	names, err := db.Collection(collection).Indexes().CreateMany(ctx, models)
	if err != nil {
		log.Error().Err(err).Str("collection", collection).Msg("index creation failed")
		return err
	}
	log.Info().Str("collection", collection).Strs("indexes", names).Msg("indexes ensured")
	return nil
}
