// Package memdb is an in-memory implementation of the database repositories,
// used by tests and by `serve --memory`.
package memdb

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"pos-backend/internal/database"
	"pos-backend/internal/models"
)

var sequencePattern = regexp.MustCompile(`^#([0-9]{1,9})$`)

// Store holds both collections and the counters behind one lock.
type Store struct {
	mu        sync.RWMutex
	estimates []models.Estimate
	orders    []models.Order
	counters  map[string]int64
}

func New() *Store {
	return &Store{counters: make(map[string]int64)}
}

func (s *Store) Estimates() *Estimates { return &Estimates{s: s} }

func (s *Store) Orders() *Orders { return &Orders{s: s} }

func (s *Store) Counters() *Counters { return &Counters{s: s} }

// WithTransaction runs fn directly. Writes made before a failure are kept.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type Estimates struct{ s *Store }

func (r *Estimates) Insert(_ context.Context, estimate *models.Estimate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.estimates {
		if existing.EstimateID == estimate.EstimateID {
			return fmt.Errorf("insert estimate: duplicate estimate_id %s", estimate.EstimateID)
		}
	}
	if estimate.ID.IsZero() {
		estimate.ID = primitive.NewObjectID()
	}
	r.s.estimates = append(r.s.estimates, *estimate)
	return nil
}

func (r *Estimates) FindOne(_ context.Context, key database.Key) (models.Estimate, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, estimate := range r.s.estimates {
		ok, err := matchEstimate(estimate, key)
		if err != nil {
			return models.Estimate{}, err
		}
		if ok {
			return estimate, nil
		}
	}
	return models.Estimate{}, database.ErrNotFound
}

func (r *Estimates) List(_ context.Context, filter database.Filter) ([]models.Estimate, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := make([]models.Estimate, 0, len(r.s.estimates))
	for _, estimate := range r.s.estimates {
		if filter.Converted != nil && estimate.IsConvertedToOrder != *filter.Converted {
			continue
		}
		if !inRange(estimate.CreatedAt, filter) {
			continue
		}
		result = append(result, estimate)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt.Time)
	})
	return result, nil
}

func (r *Estimates) MarkConverted(_ context.Context, estimateID string, link database.Link) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	i := r.index(estimateID)
	if i < 0 {
		return database.ErrNotFound
	}
	if r.s.estimates[i].IsConvertedToOrder {
		return database.ErrAlreadyConverted
	}
	orderID, saleNumber := link.OrderID, link.SaleNumber
	r.s.estimates[i].IsConvertedToOrder = true
	r.s.estimates[i].LinkedOrderID = &orderID
	r.s.estimates[i].LinkedOrderNumber = &saleNumber
	return nil
}

func (r *Estimates) SetStatus(_ context.Context, estimateID, status string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	i := r.index(estimateID)
	if i < 0 {
		return database.ErrNotFound
	}
	r.s.estimates[i].Status = status
	return nil
}

func (r *Estimates) DeleteUnconverted(_ context.Context, estimateID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	i := r.index(estimateID)
	if i < 0 {
		return database.ErrNotFound
	}
	if r.s.estimates[i].IsConvertedToOrder {
		return database.ErrAlreadyConverted
	}
	r.s.estimates = append(r.s.estimates[:i], r.s.estimates[i+1:]...)
	return nil
}

func (r *Estimates) Delete(_ context.Context, estimateID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	i := r.index(estimateID)
	if i < 0 {
		return database.ErrNotFound
	}
	r.s.estimates = append(r.s.estimates[:i], r.s.estimates[i+1:]...)
	return nil
}

func (r *Estimates) MaxSequence(_ context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var max int64
	for _, estimate := range r.s.estimates {
		max = maxOf(max, estimate.EstimateNumber)
	}
	return max, nil
}

func (r *Estimates) index(estimateID string) int {
	for i, estimate := range r.s.estimates {
		if estimate.EstimateID == estimateID {
			return i
		}
	}
	return -1
}

type Orders struct{ s *Store }

func (r *Orders) Insert(_ context.Context, order *models.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.orders {
		if existing.OrderID == order.OrderID {
			return fmt.Errorf("insert order: duplicate order_id %s", order.OrderID)
		}
	}
	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}
	r.s.orders = append(r.s.orders, *order)
	return nil
}

func (r *Orders) FindOne(_ context.Context, key database.Key) (models.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, order := range r.s.orders {
		ok, err := matchOrder(order, key)
		if err != nil {
			return models.Order{}, err
		}
		if ok {
			return order, nil
		}
	}
	return models.Order{}, database.ErrNotFound
}

func (r *Orders) List(_ context.Context, filter database.Filter) ([]models.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := make([]models.Order, 0, len(r.s.orders))
	for _, order := range r.s.orders {
		if inRange(order.CreatedAt, filter) {
			result = append(result, order)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt.Time)
	})
	return result, nil
}

func (r *Orders) SetStatus(_ context.Context, orderID string, status models.OrderStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	i := r.index(orderID)
	if i < 0 {
		return database.ErrNotFound
	}
	r.s.orders[i].Status = status
	return nil
}

func (r *Orders) Delete(_ context.Context, orderID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	i := r.index(orderID)
	if i < 0 {
		return database.ErrNotFound
	}
	r.s.orders = append(r.s.orders[:i], r.s.orders[i+1:]...)
	return nil
}

func (r *Orders) MaxSequence(_ context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var max int64
	for _, order := range r.s.orders {
		max = maxOf(max, order.SaleNumber)
	}
	return max, nil
}

func (r *Orders) index(orderID string) int {
	for i, order := range r.s.orders {
		if order.OrderID == orderID {
			return i
		}
	}
	return -1
}

type Counters struct{ s *Store }

func (c *Counters) Seed(_ context.Context, name string, floor int64) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	if c.s.counters[name] < floor {
		c.s.counters[name] = floor
	}
	return nil
}

func (c *Counters) Increment(_ context.Context, name string) (int64, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	c.s.counters[name]++
	return c.s.counters[name], nil
}

func matchEstimate(estimate models.Estimate, key database.Key) (bool, error) {
	switch key.Field {
	case database.FieldID:
		return estimate.ID == key.Value, nil
	case database.FieldEstimateID:
		return estimate.EstimateID == key.Value, nil
	case database.FieldEstimateNumber:
		return estimate.EstimateNumber == key.Value, nil
	}
	return false, fmt.Errorf("%w: %s", database.ErrUnsupportedKey, key.Field)
}

func matchOrder(order models.Order, key database.Key) (bool, error) {
	switch key.Field {
	case database.FieldID:
		return order.ID == key.Value, nil
	case database.FieldOrderID:
		return order.OrderID == key.Value, nil
	case database.FieldSaleNumber:
		return order.SaleNumber == key.Value, nil
	}
	return false, fmt.Errorf("%w: %s", database.ErrUnsupportedKey, key.Field)
}

func inRange(created models.Timestamp, filter database.Filter) bool {
	if !filter.From.IsZero() && created.Before(filter.From) {
		return false
	}
	if !filter.To.IsZero() && created.After(filter.To) {
		return false
	}
	if !filter.Before.IsZero() && !created.Before(filter.Before) {
		return false
	}
	return true
}

func maxOf(current int64, number string) int64 {
	m := sequencePattern.FindStringSubmatch(number)
	if m == nil {
		return current
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil || n <= current {
		return current
	}
	return n
}

var (
	_ database.EstimateRepository = (*Estimates)(nil)
	_ database.OrderRepository    = (*Orders)(nil)
	_ database.CounterStore       = (*Counters)(nil)
	_ database.Transactor         = (*Store)(nil)
)
