package models

import (
	"errors"
	"testing"
)

func TestParsePaymentMode(t *testing.T) {
	cases := map[string]PaymentMode{
		"":              PaymentCash,
		"cash":          PaymentCash,
		"UPI":           PaymentUPI,
		"bank transfer": PaymentBankTransfer,
		"Bank-Transfer": PaymentBankTransfer,
		" cheque ":      PaymentCheque,
	}
	for in, want := range cases {
		got, err := ParsePaymentMode(in)
		if err != nil {
			t.Fatalf("ParsePaymentMode(%q) returned error: %v", in, err)
		}
		if got != want {
			t.Fatalf("ParsePaymentMode(%q): expected %s, got %s", in, want, got)
		}
	}

	if _, err := ParsePaymentMode("barter"); !errors.Is(err, ErrUnknownPaymentMode) {
		t.Fatalf("expected ErrUnknownPaymentMode, got %v", err)
	}
}

func TestPaymentBucketFoldsUnknownModes(t *testing.T) {
	cases := map[string]string{
		"Cash":          "cash",
		"UPI":           "upi",
		"Bank_Transfer": "bank_transfer",
		"Foo":           OtherPaymentBucket,
		"":              OtherPaymentBucket,
	}
	for in, want := range cases {
		if got := PaymentBucket(in); got != want {
			t.Fatalf("PaymentBucket(%q): expected %s, got %s", in, want, got)
		}
	}
}

func TestOrderStatusTransitions(t *testing.T) {
	allowed := [][2]OrderStatus{
		{StatusPending, StatusCompleted},
		{StatusPending, StatusCancelled},
		{StatusCompleted, StatusRefunded},
		{StatusCompleted, StatusCompleted},
		{OrderStatus("Delivered"), StatusCompleted},
	}
	for _, pair := range allowed {
		if err := pair[0].ValidateTransition(pair[1]); err != nil {
			t.Fatalf("expected %s -> %s to be allowed, got %v", pair[0], pair[1], err)
		}
	}

	denied := [][2]OrderStatus{
		{StatusRefunded, StatusCompleted},
		{StatusCancelled, StatusPending},
		{StatusCompleted, StatusPending},
	}
	for _, pair := range denied {
		if err := pair[0].ValidateTransition(pair[1]); !errors.Is(err, ErrStatusTransition) {
			t.Fatalf("expected %s -> %s to be rejected, got %v", pair[0], pair[1], err)
		}
	}
}

func TestParseOrderStatusCaseInsensitive(t *testing.T) {
	got, err := ParseOrderStatus("cancelled")
	if err != nil || got != StatusCancelled {
		t.Fatalf("expected Cancelled, got %q (%v)", got, err)
	}
	if _, err := ParseOrderStatus("Shipped"); !errors.Is(err, ErrUnknownStatus) {
		t.Fatalf("expected ErrUnknownStatus, got %v", err)
	}
}
