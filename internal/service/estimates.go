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

type EstimateService struct {
	estimates   database.EstimateRepository
	orders      database.OrderRepository
	tx          database.Transactor
	numbers     sequence.Allocator
	saleNumbers sequence.Allocator
	notifier    Notifier
	log         zerolog.Logger
}

func NewEstimateService(deps Deps) *EstimateService {
	return &EstimateService{
		estimates:   deps.Estimates,
		orders:      deps.Orders,
		tx:          deps.Tx,
		numbers:     deps.EstimateNumbers,
		saleNumbers: deps.SaleNumbers,
		notifier:    deps.Notifier,
		log:         logger.WithComponent("estimates"),
	}
}

// ConvertOptions carries the query parameters of a conversion. A nil or
// blank SaleBy keeps the estimate's own staff member.
type ConvertOptions struct {
	PaymentMode string
	SaleBy      *string
}

// Conversion is the outcome of turning an estimate into an order.
type Conversion struct {
	Order    models.Order
	Estimate models.Estimate
}

func (s *EstimateService) Create(ctx context.Context, req models.EstimateCreate) (models.Estimate, error) {
	if err := validateBill(req.Bill); err != nil {
		return models.Estimate{}, err
	}

	created := timeutil.Now()
	if req.CreatedAt != nil && strings.TrimSpace(*req.CreatedAt) != "" {
		parsed, err := timeutil.ParseTimestamp(*req.CreatedAt)
		if err != nil {
			return models.Estimate{}, fmt.Errorf("%w: created_at: %v", ErrInvalidInput, err)
		}
		created = parsed
	}

	bill := req.Bill
	bill.ResolveDiscount()

	estimate := models.Estimate{
		EstimateID:     newID(estimateIDPrefix),
		EstimateNumber: s.numbers.Next(ctx),
		Bill:           bill,
		CreatedAt:      models.NewTimestamp(created),
		Status:         models.DefaultEstimateStatus,
	}
	if err := s.estimates.Insert(ctx, &estimate); err != nil {
		return models.Estimate{}, fmt.Errorf("insert estimate: %w", err)
	}
	metrics.DocumentsCreated.WithLabelValues(eventEstimate).Inc()

	publish(s.notifier, notify.Event{
		Type:   eventEstimate,
		Action: "create",
		ID:     estimate.EstimateID,
		Data: map[string]any{
			"estimate_id":     estimate.EstimateID,
			"estimate_number": estimate.EstimateNumber,
			"customer_name":   estimate.CustomerName,
			"total":           estimate.Total,
			"created_at":      estimate.CreatedAt,
		},
	})
	return estimate, nil
}

// Get looks an estimate up by its estimate_id.
func (s *EstimateService) Get(ctx context.Context, estimateID string) (models.Estimate, error) {
	return s.find(ctx, database.ByField(database.FieldEstimateID, estimateID))
}

// GetByNumber accepts the number with or without its leading '#'.
func (s *EstimateService) GetByNumber(ctx context.Context, number string) (models.Estimate, error) {
	return s.find(ctx, database.ByField(database.FieldEstimateNumber, numberKey(number)))
}

// GetByObjectID looks an estimate up by its 24-hex document id.
func (s *EstimateService) GetByObjectID(ctx context.Context, hex string) (models.Estimate, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return models.Estimate{}, fmt.Errorf("%w: malformed id %q", ErrInvalidInput, hex)
	}
	return s.find(ctx, database.ByObjectID(id))
}

func (s *EstimateService) find(ctx context.Context, key database.Key) (models.Estimate, error) {
	estimate, err := s.estimates.FindOne(ctx, key)
	if errors.Is(err, database.ErrNotFound) {
		return models.Estimate{}, ErrEstimateNotFound
	}
	if err != nil {
		return models.Estimate{}, fmt.Errorf("find estimate: %w", err)
	}
	estimate.Status = estimate.EffectiveStatus()
	return estimate, nil
}

// List returns estimates newest first. A nil converted lists all of them.
func (s *EstimateService) List(ctx context.Context, converted *bool) ([]models.Estimate, error) {
	estimates, err := s.estimates.List(ctx, database.Filter{Converted: converted})
	if err != nil {
		return nil, fmt.Errorf("list estimates: %w", err)
	}
	for i := range estimates {
		estimates[i].Status = estimates[i].EffectiveStatus()
	}
	return estimates, nil
}

// Delete removes an estimate that has not been converted.
func (s *EstimateService) Delete(ctx context.Context, estimateID string) error {
	err := s.estimates.DeleteUnconverted(ctx, estimateID)
	switch {
	case errors.Is(err, database.ErrNotFound):
		return ErrEstimateNotFound
	case errors.Is(err, database.ErrAlreadyConverted):
		return ErrEstimateConverted
	case err != nil:
		return fmt.Errorf("delete estimate: %w", err)
	}

	publish(s.notifier, notify.Event{Type: eventEstimate, Action: "delete", ID: estimateID})
	return nil
}

// SetStatus rewrites the free-text status of an estimate.
func (s *EstimateService) SetStatus(ctx context.Context, estimateID, status string) (string, error) {
	status = strings.TrimSpace(status)
	if status == "" {
		return "", fmt.Errorf("%w: status is required", ErrInvalidInput)
	}
	err := s.estimates.SetStatus(ctx, estimateID, status)
	if errors.Is(err, database.ErrNotFound) {
		return "", ErrEstimateNotFound
	}
	if err != nil {
		return "", fmt.Errorf("update estimate status: %w", err)
	}

	publish(s.notifier, notify.Event{Type: eventEstimate, Action: "status_update", ID: estimateID, Data: map[string]any{"status": status}})
	return status, nil
}

// Convert turns an unconverted estimate into a completed order and links the
// two. The order insert and the link update share one transaction; where the
// store cannot roll back, a failed link update deletes the new order again.
func (s *EstimateService) Convert(ctx context.Context, estimateID string, opts ConvertOptions) (Conversion, error) {
	mode, err := models.ParsePaymentMode(opts.PaymentMode)
	if err != nil {
		return Conversion{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	estimate, err := s.Get(ctx, estimateID)
	if err != nil {
		return Conversion{}, err
	}
	if estimate.IsConvertedToOrder {
		metrics.Conversions.WithLabelValues("rejected").Inc()
		return Conversion{}, ErrEstimateConverted
	}

	order := orderFromEstimate(estimate, mode, opts.SaleBy)
	order.OrderID = newID(orderIDPrefix)

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		// Allocated inside the transaction so an aborted conversion on a
		// transactional store does not consume a number.
		order.SaleNumber = s.saleNumbers.Next(ctx)
		if err := s.orders.Insert(ctx, &order); err != nil {
			return fmt.Errorf("insert order: %w", err)
		}
		link := database.Link{OrderID: order.OrderID, SaleNumber: order.SaleNumber}
		if err := s.estimates.MarkConverted(ctx, estimate.EstimateID, link); err != nil {
			s.compensate(ctx, order.OrderID, err)
			return err
		}
		return nil
	})
	switch {
	case errors.Is(err, database.ErrAlreadyConverted):
		metrics.Conversions.WithLabelValues("rejected").Inc()
		return Conversion{}, ErrEstimateConverted
	case errors.Is(err, database.ErrNotFound):
		metrics.Conversions.WithLabelValues("failed").Inc()
		return Conversion{}, ErrEstimateNotFound
	case err != nil:
		metrics.Conversions.WithLabelValues("failed").Inc()
		return Conversion{}, fmt.Errorf("convert estimate: %w", err)
	}
	metrics.Conversions.WithLabelValues("converted").Inc()
	metrics.DocumentsCreated.WithLabelValues(eventOrder).Inc()

	estimate.IsConvertedToOrder = true
	estimate.LinkedOrderID = strPtr(order.OrderID)
	estimate.LinkedOrderNumber = strPtr(order.SaleNumber)

	publish(s.notifier, notify.Event{
		Type:        eventEstimate,
		Action:      "convert_to_order",
		ID:          estimate.EstimateID,
		OrderID:     order.OrderID,
		OrderNumber: order.SaleNumber,
	})
	return Conversion{Order: order, Estimate: estimate}, nil
}

// compensate removes an order whose estimate link could not be written.
// Inside a real transaction the abort already discards it and the delete
// finds nothing.
func (s *EstimateService) compensate(ctx context.Context, orderID string, cause error) {
	err := s.orders.Delete(ctx, orderID)
	if err == nil || errors.Is(err, database.ErrNotFound) {
		return
	}
	s.log.Warn().Err(err).AnErr("cause", cause).Str("order_id", orderID).Msg("orphan order left after failed conversion")
}

func orderFromEstimate(estimate models.Estimate, mode models.PaymentMode, saleBy *string) models.Order {
	bill := estimate.Bill
	if saleBy != nil && strings.TrimSpace(*saleBy) != "" {
		bill.SaleBy = strings.TrimSpace(*saleBy)
	}
	return models.Order{
		Bill:                 bill,
		PaymentMode:          mode,
		Status:               models.StatusCompleted,
		CreatedAt:            models.NewTimestamp(timeutil.Now()),
		SourceEstimateID:     strPtr(estimate.EstimateID),
		SourceEstimateNumber: strPtr(estimate.EstimateNumber),
		IsFromEstimate:       true,
	}
}

func validateBill(bill models.Bill) error {
	if strings.TrimSpace(bill.CustomerName) == "" {
		return fmt.Errorf("%w: customer_name is required", ErrInvalidInput)
	}
	if bill.Items == nil {
		return fmt.Errorf("%w: items are required", ErrInvalidInput)
	}
	if err := bill.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}
