package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"pos-backend/internal/database"
	"pos-backend/internal/logger"
	"pos-backend/internal/metrics"
	"pos-backend/internal/models"
	"pos-backend/internal/notify"
	"pos-backend/internal/sequence"
	"pos-backend/internal/timeutil"
)

type OrderService struct {
	orders    database.OrderRepository
	estimates database.EstimateRepository
	numbers   sequence.Allocator
	notifier  Notifier
	log       zerolog.Logger
}

func NewOrderService(deps Deps) *OrderService {
	return &OrderService{
		orders:    deps.Orders,
		estimates: deps.Estimates,
		numbers:   deps.SaleNumbers,
		notifier:  deps.Notifier,
		log:       logger.WithComponent("orders"),
	}
}

// DeleteResult reports what a delete removed. DeletedEstimateID is empty
// unless the linked estimate went with the order.
type DeleteResult struct {
	OrderID           string
	DeletedEstimateID string
}

// Create records a direct sale. The sale is always stamped with the current
// time; a client supplied created_at is ignored.
func (s *OrderService) Create(ctx context.Context, req models.OrderCreate) (models.Order, error) {
	if err := validateBill(req.Bill); err != nil {
		return models.Order{}, err
	}
	mode, err := models.ParsePaymentMode(req.PaymentMode)
	if err != nil {
		return models.Order{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if req.AmountPaid != nil && *req.AmountPaid < 0 {
		return models.Order{}, fmt.Errorf("%w: amount_paid must not be negative", ErrInvalidInput)
	}

	bill := req.Bill
	bill.ResolveDiscount()

	order := models.Order{
		OrderID:     newID(orderIDPrefix),
		SaleNumber:  s.numbers.Next(ctx),
		Bill:        bill,
		AmountPaid:  req.AmountPaid,
		PaymentMode: mode,
		Status:      models.StatusCompleted,
		CreatedAt:   models.NewTimestamp(timeutil.Now()),
	}
	if req.SourceEstimateID != nil && strings.TrimSpace(*req.SourceEstimateID) != "" {
		order.SourceEstimateID = req.SourceEstimateID
		order.SourceEstimateNumber = req.SourceEstimateNumber
		order.IsFromEstimate = true
	}

	if err := s.orders.Insert(ctx, &order); err != nil {
		return models.Order{}, fmt.Errorf("insert order: %w", err)
	}
	metrics.DocumentsCreated.WithLabelValues(eventOrder).Inc()

	publish(s.notifier, notify.Event{
		Type:   eventOrder,
		Action: "create",
		ID:     order.OrderID,
		Data: map[string]any{
			"order_id":      order.OrderID,
			"sale_number":   order.SaleNumber,
			"customer_name": order.CustomerName,
			"total":         order.Total,
			"created_at":    order.CreatedAt,
		},
	})
	return order, nil
}

// Get looks an order up by its order_id.
func (s *OrderService) Get(ctx context.Context, orderID string) (models.Order, error) {
	return s.find(ctx, database.ByField(database.FieldOrderID, orderID))
}

// GetByNumber accepts the sale number with or without its leading '#'.
func (s *OrderService) GetByNumber(ctx context.Context, number string) (models.Order, error) {
	return s.find(ctx, database.ByField(database.FieldSaleNumber, numberKey(number)))
}

func (s *OrderService) GetByObjectID(ctx context.Context, hex string) (models.Order, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return models.Order{}, fmt.Errorf("%w: malformed id %q", ErrInvalidInput, hex)
	}
	return s.find(ctx, database.ByObjectID(id))
}

func (s *OrderService) find(ctx context.Context, key database.Key) (models.Order, error) {
	order, err := s.orders.FindOne(ctx, key)
	if errors.Is(err, database.ErrNotFound) {
		return models.Order{}, ErrOrderNotFound
	}
	if err != nil {
		return models.Order{}, fmt.Errorf("find order: %w", err)
	}
	return withDefaults(order), nil
}

// List returns every order newest first.
func (s *OrderService) List(ctx context.Context) ([]models.Order, error) {
	orders, err := s.orders.List(ctx, database.Filter{})
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	for i := range orders {
		orders[i] = withDefaults(orders[i])
	}
	return orders, nil
}

// UpdateStatus moves an order to a new state. Unknown states and moves the
// transition table does not allow are rejected.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID, raw string) (models.OrderStatus, error) {
	next, err := models.ParseOrderStatus(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	order, err := s.Get(ctx, orderID)
	if err != nil {
		return "", err
	}
	if err := order.Status.ValidateTransition(next); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidTransition, err)
	}

	err = s.orders.SetStatus(ctx, orderID, next)
	if errors.Is(err, database.ErrNotFound) {
		return "", ErrOrderNotFound
	}
	if err != nil {
		return "", fmt.Errorf("update order status: %w", err)
	}

	publish(s.notifier, notify.Event{Type: eventOrder, Action: "status_update", ID: orderID, Data: map[string]any{"status": next}})
	return next, nil
}

// Delete removes an order and then, best effort, the estimate it was
// converted from. A failure on the estimate side is logged only.
func (s *OrderService) Delete(ctx context.Context, orderID string) (DeleteResult, error) {
	order, err := s.Get(ctx, orderID)
	if err != nil {
		return DeleteResult{}, err
	}

	err = s.orders.Delete(ctx, orderID)
	if errors.Is(err, database.ErrNotFound) {
		return DeleteResult{}, ErrOrderNotFound
	}
	if err != nil {
		return DeleteResult{}, fmt.Errorf("delete order: %w", err)
	}

	result := DeleteResult{OrderID: orderID}
	if order.SourceEstimateID != nil && *order.SourceEstimateID != "" {
		estimateID := *order.SourceEstimateID
		switch err := s.estimates.Delete(ctx, estimateID); {
		case err == nil:
			result.DeletedEstimateID = estimateID
		case errors.Is(err, database.ErrNotFound):
			s.log.Debug().Str("order_id", orderID).Str("estimate_id", estimateID).Msg("linked estimate already gone")
		default:
			s.log.Warn().Err(err).Str("order_id", orderID).Str("estimate_id", estimateID).Msg("linked estimate not deleted")
		}
	}

	publish(s.notifier, notify.Event{Type: eventOrder, Action: "delete", ID: orderID})
	if result.DeletedEstimateID != "" {
		publish(s.notifier, notify.Event{Type: eventEstimate, Action: "delete", ID: result.DeletedEstimateID})
	}
	return result, nil
}

// withDefaults fills the fields documents written by older clients lack.
func withDefaults(order models.Order) models.Order {
	order.PaymentMode = order.EffectivePaymentMode()
	order.Status = order.EffectiveStatus()
	return order
}
