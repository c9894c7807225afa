package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"pos-backend/internal/database"
	"pos-backend/internal/models"
)

// Entry is one row of the merged sales listing. Customer, Amount and Time
// mirror other fields for older point-of-sale screens.
type Entry struct {
	ID                   string             `json:"id"`
	EstimateID           string             `json:"estimate_id,omitempty"`
	EstimateNumber       string             `json:"estimate_number,omitempty"`
	OrderID              string             `json:"order_id,omitempty"`
	SaleNumber           string             `json:"sale_number,omitempty"`
	CustomerName         string             `json:"customer_name"`
	Customer             string             `json:"customer"`
	Total                float64            `json:"total"`
	Amount               float64            `json:"amount"`
	Status               string             `json:"status"`
	Items                []models.Item      `json:"items"`
	ItemsCount           int                `json:"items_count"`
	CreatedAt            models.Timestamp   `json:"created_at"`
	Time                 string             `json:"time"`
	SaleBy               string             `json:"sale_by"`
	CustomerPhone        string             `json:"customer_phone"`
	CustomerAddress      string             `json:"customer_address"`
	Subtotal             float64            `json:"subtotal"`
	DiscountAmount       float64            `json:"discount_amount"`
	IsPercentageDiscount bool               `json:"is_percentage_discount"`
	DiscountPercentage   float64            `json:"discount_percentage"`
	PaymentMode          models.PaymentMode `json:"payment_mode,omitempty"`
	Type                 string             `json:"type"`
}

// Group is a counted slice of entries.
type Group struct {
	Count       int     `json:"count"`
	TotalAmount float64 `json:"total_amount"`
	Items       []Entry `json:"items"`
}

type SeparateView struct {
	Estimates Group `json:"estimates"`
	Orders    Group `json:"orders"`
}

type OrdersOnlyView struct {
	Count       int     `json:"count"`
	TotalAmount float64 `json:"total_amount"`
	Orders      []Entry `json:"orders"`
}

func billEntry(id string, bill models.Bill, created models.Timestamp) Entry {
	items := bill.Items
	if items == nil {
		items = []models.Item{}
	}
	var pct float64
	if bill.DiscountPercentage != nil {
		pct = *bill.DiscountPercentage
	}
	return Entry{
		ID:                   id,
		CustomerName:         bill.CustomerName,
		Customer:             bill.CustomerName,
		Total:                bill.Total,
		Amount:               bill.Total,
		Items:                items,
		ItemsCount:           bill.ItemsCount(),
		CreatedAt:            created,
		Time:                 created.DateKey(),
		SaleBy:               bill.SaleBy,
		CustomerPhone:        bill.CustomerPhone,
		CustomerAddress:      bill.CustomerAddress,
		Subtotal:             bill.Subtotal,
		DiscountAmount:       bill.DiscountAmount,
		IsPercentageDiscount: bill.IsPercentageDiscount,
		DiscountPercentage:   pct,
	}
}

func estimateEntry(estimate models.Estimate) Entry {
	e := billEntry(estimate.ID.Hex(), estimate.Bill, estimate.CreatedAt)
	e.EstimateID = estimate.EstimateID
	e.EstimateNumber = estimate.EstimateNumber
	e.Status = estimate.EffectiveStatus()
	e.Type = eventEstimate
	return e
}

func orderEntry(order models.Order) Entry {
	e := billEntry(order.ID.Hex(), order.Bill, order.CreatedAt)
	e.OrderID = order.OrderID
	e.SaleNumber = order.SaleNumber
	e.Status = string(order.EffectiveStatus())
	e.PaymentMode = order.EffectivePaymentMode()
	e.Type = eventOrder
	return e
}

func group(entries []Entry) Group {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(decimal.NewFromFloat(e.Total))
	}
	return Group{Count: len(entries), TotalAmount: total.InexactFloat64(), Items: entries}
}

func (s *OrderService) entries(ctx context.Context) ([]Entry, []Entry, error) {
	estimates, err := s.estimates.List(ctx, database.Filter{})
	if err != nil {
		return nil, nil, err
	}
	orders, err := s.orders.List(ctx, database.Filter{})
	if err != nil {
		return nil, nil, err
	}

	estimateEntries := make([]Entry, 0, len(estimates))
	for _, estimate := range estimates {
		estimateEntries = append(estimateEntries, estimateEntry(estimate))
	}
	orderEntries := make([]Entry, 0, len(orders))
	for _, order := range orders {
		orderEntries = append(orderEntries, orderEntry(order))
	}
	return estimateEntries, orderEntries, nil
}

// Combined merges estimates and orders into one listing, newest first.
func (s *OrderService) Combined(ctx context.Context) ([]Entry, error) {
	estimates, orders, err := s.entries(ctx)
	if err != nil {
		return nil, wrapList(err)
	}
	all := append(estimates, orders...)
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt.Time)
	})
	return all, nil
}

// Separate lists estimates and orders side by side with their counts.
func (s *OrderService) Separate(ctx context.Context) (SeparateView, error) {
	estimates, orders, err := s.entries(ctx)
	if err != nil {
		return SeparateView{}, wrapList(err)
	}
	return SeparateView{Estimates: group(estimates), Orders: group(orders)}, nil
}

func (s *OrderService) OrdersOnly(ctx context.Context) (OrdersOnlyView, error) {
	orders, err := s.orders.List(ctx, database.Filter{})
	if err != nil {
		return OrdersOnlyView{}, wrapList(err)
	}
	entries := make([]Entry, 0, len(orders))
	for _, order := range orders {
		entries = append(entries, orderEntry(order))
	}
	g := group(entries)
	return OrdersOnlyView{Count: g.Count, TotalAmount: g.TotalAmount, Orders: entries}, nil
}

func wrapList(err error) error {
	return fmt.Errorf("list sales: %w", err)
}
