package database

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestBuildListFilterPending(t *testing.T) {
	pending := false
	query := buildListFilter(Filter{Converted: &pending})

	cond, ok := query["is_converted_to_order"].(bson.M)
	if !ok || cond["$ne"] != true {
		t.Fatalf("expected $ne true for pending estimates, got %v", query)
	}
	if _, ok := query["created_at"]; ok {
		t.Fatalf("expected no date bound, got %v", query)
	}
}

func TestBuildListFilterDateBounds(t *testing.T) {
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	before := from.AddDate(0, 1, 0)
	query := buildListFilter(Filter{From: from, Before: before})

	created, ok := query["created_at"].(bson.M)
	if !ok {
		t.Fatalf("expected created_at bounds, got %v", query)
	}
	if created["$gte"] != from || created["$lt"] != before {
		t.Fatalf("unexpected bounds %v", created)
	}
	if _, ok := created["$lte"]; ok {
		t.Fatalf("unexpected inclusive upper bound %v", created)
	}
}

func TestKeyFilterRejectsForeignField(t *testing.T) {
	if _, err := keyFilter(ByField(FieldSaleNumber, "#001"), FieldEstimateID, FieldEstimateNumber); !errors.Is(err, ErrUnsupportedKey) {
		t.Fatalf("expected ErrUnsupportedKey, got %v", err)
	}
	filter, err := keyFilter(ByField(FieldEstimateNumber, "#001"), FieldEstimateID, FieldEstimateNumber)
	if err != nil || filter[FieldEstimateNumber] != "#001" {
		t.Fatalf("unexpected filter %v (%v)", filter, err)
	}
}

func TestTransactionsUnsupported(t *testing.T) {
	standalone := fmt.Errorf("insert order: %w", mongo.CommandError{Code: 20, Message: "Transaction numbers are only allowed on a replica set member or mongos"})
	if !transactionsUnsupported(standalone) {
		t.Fatal("expected IllegalOperation to be detected")
	}
	if transactionsUnsupported(mongo.CommandError{Code: 11000}) {
		t.Fatal("duplicate key must not disable transactions")
	}
	if transactionsUnsupported(errors.New("boom")) {
		t.Fatal("plain errors must not disable transactions")
	}
}
