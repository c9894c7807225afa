package database

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"pos-backend/internal/models"
)

// EstimateStore is the Mongo-backed EstimateRepository.
type EstimateStore struct {
	coll *mongo.Collection
}

func NewEstimateStore(db *mongo.Database) *EstimateStore {
	return &EstimateStore{coll: db.Collection(EstimatesCollection)}
}

func (s *EstimateStore) Insert(ctx context.Context, estimate *models.Estimate) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := s.coll.InsertOne(ctx, estimate)
	if err != nil {
		return fmt.Errorf("insert estimate: %w", err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		estimate.ID = id
	}
	return nil
}

func (s *EstimateStore) FindOne(ctx context.Context, key Key) (models.Estimate, error) {
	filter, err := keyFilter(key, FieldEstimateID, FieldEstimateNumber)
	if err != nil {
		return models.Estimate{}, err
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var estimate models.Estimate
	err = s.coll.FindOne(ctx, filter).Decode(&estimate)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Estimate{}, ErrNotFound
	}
	if err != nil {
		return models.Estimate{}, fmt.Errorf("find estimate: %w", err)
	}
	return estimate, nil
}

func (s *EstimateStore) List(ctx context.Context, filter Filter) ([]models.Estimate, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	cursor, err := s.coll.Find(ctx, buildListFilter(filter), newestFirst)
	if err != nil {
		return nil, fmt.Errorf("list estimates: %w", err)
	}
	defer cursor.Close(ctx)

	estimates := make([]models.Estimate, 0)
	if err := cursor.All(ctx, &estimates); err != nil {
		return nil, fmt.Errorf("decode estimates: %w", err)
	}
	return estimates, nil
}

func (s *EstimateStore) MarkConverted(ctx context.Context, estimateID string, link Link) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := s.coll.UpdateOne(ctx,
		bson.M{FieldEstimateID: estimateID, "is_converted_to_order": bson.M{"$ne": true}},
		bson.M{"$set": bson.M{
			"is_converted_to_order": true,
			"linked_order_id":       link.OrderID,
			"linked_order_number":   link.SaleNumber,
		}},
	)
	if err != nil {
		return fmt.Errorf("mark estimate converted: %w", err)
	}
	if res.MatchedCount == 0 {
		return s.missOrConverted(ctx, estimateID)
	}
	return nil
}

func (s *EstimateStore) SetStatus(ctx context.Context, estimateID, status string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := s.coll.UpdateOne(ctx,
		bson.M{FieldEstimateID: estimateID},
		bson.M{"$set": bson.M{"status": status}},
	)
	if err != nil {
		return fmt.Errorf("update estimate status: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *EstimateStore) DeleteUnconverted(ctx context.Context, estimateID string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := s.coll.DeleteOne(ctx, bson.M{
		FieldEstimateID:         estimateID,
		"is_converted_to_order": bson.M{"$ne": true},
	})
	if err != nil {
		return fmt.Errorf("delete estimate: %w", err)
	}
	if res.DeletedCount == 0 {
		return s.missOrConverted(ctx, estimateID)
	}
	return nil
}

func (s *EstimateStore) Delete(ctx context.Context, estimateID string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := s.coll.DeleteOne(ctx, bson.M{FieldEstimateID: estimateID})
	if err != nil {
		return fmt.Errorf("delete estimate: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *EstimateStore) MaxSequence(ctx context.Context) (int64, error) {
	return maxSequence(ctx, s.coll, FieldEstimateNumber)
}

func (s *EstimateStore) missOrConverted(ctx context.Context, estimateID string) error {
	count, err := s.coll.CountDocuments(ctx, bson.M{FieldEstimateID: estimateID})
	if err != nil {
		return fmt.Errorf("count estimate: %w", err)
	}
	if count == 0 {
		return ErrNotFound
	}
	return ErrAlreadyConverted
}
