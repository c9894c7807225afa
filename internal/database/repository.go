package database

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"pos-backend/internal/models"
)

const (
	EstimatesCollection = "estimates"
	OrdersCollection    = "orders"
	CountersCollection  = "counters"

	FieldID             = "_id"
	FieldEstimateID     = "estimate_id"
	FieldEstimateNumber = "estimate_number"
	FieldOrderID        = "order_id"
	FieldSaleNumber     = "sale_number"
)

var (
	ErrNotFound         = errors.New("document not found")
	ErrAlreadyConverted = errors.New("estimate already converted")
	ErrUnsupportedKey   = errors.New("unsupported lookup key")
)

// Key selects a single document by one exact-match field.
type Key struct {
	Field string
	Value any
}

func ByObjectID(id primitive.ObjectID) Key { return Key{Field: FieldID, Value: id} }

func ByField(field, value string) Key { return Key{Field: field, Value: value} }

// Filter narrows a listing. Zero times leave that side open. Converted only
// applies to estimates.
type Filter struct {
	Converted *bool
	From      time.Time // inclusive
	To        time.Time // inclusive
	Before    time.Time // exclusive
}

// Link records the order produced by converting an estimate.
type Link struct {
	OrderID    string
	SaleNumber string
}

type EstimateRepository interface {
	Insert(ctx context.Context, estimate *models.Estimate) error
	FindOne(ctx context.Context, key Key) (models.Estimate, error)
	List(ctx context.Context, filter Filter) ([]models.Estimate, error)
	// MarkConverted links the estimate to an order. It fails with
	// ErrAlreadyConverted when another conversion won.
	MarkConverted(ctx context.Context, estimateID string, link Link) error
	SetStatus(ctx context.Context, estimateID, status string) error
	// DeleteUnconverted refuses converted estimates with ErrAlreadyConverted.
	DeleteUnconverted(ctx context.Context, estimateID string) error
	Delete(ctx context.Context, estimateID string) error
	MaxSequence(ctx context.Context) (int64, error)
}

type OrderRepository interface {
	Insert(ctx context.Context, order *models.Order) error
	FindOne(ctx context.Context, key Key) (models.Order, error)
	List(ctx context.Context, filter Filter) ([]models.Order, error)
	SetStatus(ctx context.Context, orderID string, status models.OrderStatus) error
	Delete(ctx context.Context, orderID string) error
	MaxSequence(ctx context.Context) (int64, error)
}

// CounterStore keeps named monotonic counters.
type CounterStore interface {
	// Seed raises the counter to at least floor.
	Seed(ctx context.Context, name string, floor int64) error
	Increment(ctx context.Context, name string) (int64, error)
}

// Transactor runs fn so that its writes commit or abort together where the
// backing store supports it.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
