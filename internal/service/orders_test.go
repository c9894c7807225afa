package service

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"pos-backend/internal/database"
	"pos-backend/internal/database/memdb"
	"pos-backend/internal/models"
	"pos-backend/internal/service/mocks"
	"pos-backend/internal/timeutil"
)

func saleRequest(name, mode string, total float64) models.OrderCreate {
	return models.OrderCreate{
		Bill: models.Bill{
			CustomerName: name,
			SaleBy:       "Asha",
			Items:        []models.Item{{"name": "Soap", "price": total, "quantity": 1}},
			Subtotal:     total,
			Total:        total,
		},
		PaymentMode: mode,
	}
}

func TestOrderCreateStampsNowAndNumbers(t *testing.T) {
	ctrl := gomock.NewController(t)
	notifier := mocks.NewMockNotifier(ctrl)
	events := recordEvents(notifier)

	svc := NewOrderService(newDeps(memdb.New(), notifier))
	ctx := context.Background()

	req := saleRequest("Kiran", "bank transfer", 250)
	old := "2020-01-01T00:00:00"
	req.CreatedAt = &old

	before := time.Now()
	order, err := svc.Create(ctx, req)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if order.SaleNumber != "#001" || order.Status != models.StatusCompleted || order.PaymentMode != models.PaymentBankTransfer {
		t.Fatalf("unexpected order %+v", order)
	}
	if order.CreatedAt.Before(before.Add(-time.Second)) {
		t.Fatalf("created_at must be stamped now, got %s", order.CreatedAt)
	}
	if order.IsFromEstimate || order.SourceEstimateID != nil {
		t.Fatalf("direct sale must not be linked: %+v", order)
	}
	if len(*events) != 1 || (*events)[0].Type != "order" || (*events)[0].Action != "create" {
		t.Fatalf("unexpected events %+v", *events)
	}

	second, _ := svc.Create(ctx, saleRequest("Kiran", "", 10))
	if second.SaleNumber != "#002" || second.PaymentMode != models.PaymentCash {
		t.Fatalf("unexpected second order %+v", second)
	}
}

func TestOrderCreateValidation(t *testing.T) {
	svc := NewOrderService(newDeps(memdb.New(), nil))
	ctx := context.Background()

	if _, err := svc.Create(ctx, saleRequest("Kiran", "IOU", 10)); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for payment mode, got %v", err)
	}
	req := saleRequest("Kiran", "cash", 10)
	req.Items = nil
	if _, err := svc.Create(ctx, req); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for missing items, got %v", err)
	}
	req = saleRequest("Kiran", "cash", 10)
	paid := -1.0
	req.AmountPaid = &paid
	if _, err := svc.Create(ctx, req); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for amount_paid, got %v", err)
	}
}

func TestOrderLookups(t *testing.T) {
	svc := NewOrderService(newDeps(memdb.New(), nil))
	ctx := context.Background()

	order, _ := svc.Create(ctx, saleRequest("Kiran", "card", 10))

	for name, lookup := range map[string]func() (models.Order, error){
		"Get":           func() (models.Order, error) { return svc.Get(ctx, order.OrderID) },
		"GetByNumber":   func() (models.Order, error) { return svc.GetByNumber(ctx, "001") },
		"GetByObjectID": func() (models.Order, error) { return svc.GetByObjectID(ctx, order.ID.Hex()) },
	} {
		found, err := lookup()
		if err != nil || found.OrderID != order.OrderID {
			t.Fatalf("%s: %v %+v", name, err, found)
		}
	}

	if _, err := svc.Get(ctx, "ORDER-MISSING"); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
	if _, err := svc.GetByNumber(ctx, "#999"); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
	if _, err := svc.Delete(ctx, "ORDER-MISSING"); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestOrderUpdateStatus(t *testing.T) {
	svc := NewOrderService(newDeps(memdb.New(), nil))
	ctx := context.Background()
	order, _ := svc.Create(ctx, saleRequest("Kiran", "cash", 10))

	status, err := svc.UpdateStatus(ctx, order.OrderID, "refunded")
	if err != nil || status != models.StatusRefunded {
		t.Fatalf("UpdateStatus: %q %v", status, err)
	}
	stored, _ := svc.Get(ctx, order.OrderID)
	if stored.Status != models.StatusRefunded {
		t.Fatalf("status not persisted: %q", stored.Status)
	}

	if _, err := svc.UpdateStatus(ctx, order.OrderID, "Pending"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if _, err := svc.UpdateStatus(ctx, order.OrderID, "Shipped"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := svc.UpdateStatus(ctx, "ORDER-MISSING", "Completed"); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestOrderDeleteCascadesToSourceEstimate(t *testing.T) {
	store := memdb.New()
	deps := newDeps(store, nil)
	estimates := NewEstimateService(deps)
	orders := NewOrderService(deps)
	ctx := context.Background()

	estimate, _ := estimates.Create(ctx, estimateRequest("Meera", 100, 0, 100))
	conversion, err := estimates.Convert(ctx, estimate.EstimateID, ConvertOptions{})
	if err != nil {
		t.Fatalf("Convert returned error: %v", err)
	}
	direct, _ := orders.Create(ctx, saleRequest("Kiran", "cash", 10))
	other, _ := estimates.Create(ctx, estimateRequest("Other", 5, 0, 5))

	result, err := orders.Delete(ctx, conversion.Order.OrderID)
	if err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if result.DeletedEstimateID != estimate.EstimateID {
		t.Fatalf("expected linked estimate removal, got %+v", result)
	}
	if _, err := estimates.Get(ctx, estimate.EstimateID); !errors.Is(err, ErrEstimateNotFound) {
		t.Fatalf("linked estimate should be gone, got %v", err)
	}

	result, err = orders.Delete(ctx, direct.OrderID)
	if err != nil || result.DeletedEstimateID != "" {
		t.Fatalf("direct delete: %v %+v", err, result)
	}
	if _, err := estimates.Get(ctx, other.EstimateID); err != nil {
		t.Fatalf("unrelated estimate must survive: %v", err)
	}
}

func TestOrderDeleteSucceedsWhenSourceEstimateMissing(t *testing.T) {
	store := memdb.New()
	svc := NewOrderService(newDeps(store, nil))
	ctx := context.Background()

	req := saleRequest("Kiran", "cash", 10)
	source, number := "EST-GONE", "#007"
	req.SourceEstimateID, req.SourceEstimateNumber = &source, &number
	order, err := svc.Create(ctx, req)
	if err != nil || !order.IsFromEstimate {
		t.Fatalf("Create: %v %+v", err, order)
	}

	result, err := svc.Delete(ctx, order.OrderID)
	if err != nil {
		t.Fatalf("Delete must succeed, got %v", err)
	}
	if result.DeletedEstimateID != "" {
		t.Fatalf("nothing was cascaded, got %+v", result)
	}
}

func TestCombinedListing(t *testing.T) {
	store := memdb.New()
	ctx := context.Background()
	base := time.Date(2024, 3, 10, 9, 0, 0, 0, timeutil.Zone)

	_ = store.Estimates().Insert(ctx, &models.Estimate{
		EstimateID: "EST-1", EstimateNumber: "#001", CreatedAt: models.NewTimestamp(base),
		Bill: models.Bill{CustomerName: "Meera", Total: 100, Items: []models.Item{{"name": "a"}, {"name": "b"}}},
	})
	_ = store.Orders().Insert(ctx, &models.Order{
		OrderID: "ORDER-1", SaleNumber: "#001", CreatedAt: models.NewTimestamp(base.Add(time.Hour)),
		Bill: models.Bill{CustomerName: "Kiran", Total: 40.5},
	})

	svc := NewOrderService(newDeps(store, nil))
	all, err := svc.Combined(ctx)
	if err != nil {
		t.Fatalf("Combined returned error: %v", err)
	}
	if len(all) != 2 || all[0].Type != "order" || all[1].Type != "estimate" {
		t.Fatalf("expected order first, got %+v", all)
	}
	order, estimate := all[0], all[1]
	if order.Status != "Completed" || order.PaymentMode != models.PaymentCash || order.Amount != 40.5 || order.Customer != "Kiran" {
		t.Fatalf("order entry defaults/aliases wrong: %+v", order)
	}
	if estimate.Status != "Pending" || estimate.ItemsCount != 2 || estimate.Time != "2024-03-10" || estimate.PaymentMode != "" {
		t.Fatalf("estimate entry wrong: %+v", estimate)
	}
	if order.Items == nil {
		t.Fatal("items must be an empty list, not null")
	}

	view, _ := svc.Separate(ctx)
	if view.Estimates.Count != 1 || view.Orders.Count != 1 || view.Orders.TotalAmount != 40.5 {
		t.Fatalf("unexpected separate view %+v", view)
	}
	only, _ := svc.OrdersOnly(ctx)
	if only.Count != 1 || only.TotalAmount != 40.5 || len(only.Orders) != 1 {
		t.Fatalf("unexpected orders-only view %+v", only)
	}

	orders, _ := store.Orders().List(ctx, database.Filter{})
	if orders[0].Status != "" {
		t.Fatal("listing must not write defaults back to the store")
	}
}

func TestOrderRepeatedLookupsAreIdentical(t *testing.T) {
	store := memdb.New()
	deps := newDeps(store, nil)
	ctx := context.Background()

	direct, err := NewOrderService(deps).Create(ctx, saleRequest("Kiran", "upi", 40))
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	estimates := NewEstimateService(deps)
	estimate, _ := estimates.Create(ctx, estimateRequest("Meera", 100, 0, 100))
	converted, err := estimates.Convert(ctx, estimate.EstimateID, ConvertOptions{})
	if err != nil {
		t.Fatalf("Convert returned error: %v", err)
	}

	svc := NewOrderService(deps)
	for _, order := range []models.Order{direct, converted.Order} {
		for name, lookup := range map[string]func() (models.Order, error){
			"Get":           func() (models.Order, error) { return svc.Get(ctx, order.OrderID) },
			"GetByNumber":   func() (models.Order, error) { return svc.GetByNumber(ctx, order.SaleNumber) },
			"GetByObjectID": func() (models.Order, error) { return svc.GetByObjectID(ctx, order.ID.Hex()) },
		} {
			first, err := lookup()
			if err != nil {
				t.Fatalf("%s(%s) returned error: %v", name, order.OrderID, err)
			}
			second, err := lookup()
			if err != nil {
				t.Fatalf("%s(%s) returned error: %v", name, order.OrderID, err)
			}
			if !reflect.DeepEqual(first, second) {
				t.Fatalf("%s(%s): repeated reads differ:\n%+v\n%+v", name, order.OrderID, first, second)
			}
		}
	}
}
