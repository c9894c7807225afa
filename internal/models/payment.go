package models

import (
	"errors"
	"fmt"
	"strings"
)

// PaymentMode is the closed set of tender types a sale may record.
type PaymentMode string

const (
	PaymentCash         PaymentMode = "Cash"
	PaymentCard         PaymentMode = "Card"
	PaymentOnline       PaymentMode = "Online"
	PaymentUPI          PaymentMode = "UPI"
	PaymentBankTransfer PaymentMode = "Bank_Transfer"
	PaymentCheque       PaymentMode = "Cheque"
)

// OtherPaymentBucket collects every stored mode outside the known set.
const OtherPaymentBucket = "other"

var ErrUnknownPaymentMode = errors.New("unknown payment mode")

var paymentModes = map[string]PaymentMode{
	"cash":          PaymentCash,
	"card":          PaymentCard,
	"online":        PaymentOnline,
	"upi":           PaymentUPI,
	"bank_transfer": PaymentBankTransfer,
	"cheque":        PaymentCheque,
}

// PaymentBuckets lists the report buckets in presentation order.
var PaymentBuckets = []string{"cash", "card", "online", "upi", "bank_transfer", "cheque", OtherPaymentBucket}

// ParsePaymentMode resolves client input case-insensitively. An empty value
// means Cash.
func ParsePaymentMode(value string) (PaymentMode, error) {
	key := normalizeMode(value)
	if key == "" {
		return PaymentCash, nil
	}
	mode, ok := paymentModes[key]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownPaymentMode, value)
	}
	return mode, nil
}

// PaymentBucket maps a stored mode to its report bucket. Stored documents
// may hold legacy free text, which lands in "other".
func PaymentBucket(mode string) string {
	key := strings.ToLower(mode)
	if _, ok := paymentModes[key]; ok {
		return key
	}
	return OtherPaymentBucket
}

func normalizeMode(value string) string {
	key := strings.ToLower(strings.TrimSpace(value))
	key = strings.ReplaceAll(key, "-", "_")
	return strings.ReplaceAll(key, " ", "_")
}
