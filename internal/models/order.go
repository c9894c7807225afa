package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Order defines the persisted sale document. Orders derived from an estimate
// carry the source estimate identifiers.
type Order struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrderID              string             `bson:"order_id" json:"order_id"`
	SaleNumber           string             `bson:"sale_number" json:"sale_number"`
	Bill                 `bson:",inline"`
	AmountPaid           *float64    `bson:"amount_paid" json:"amount_paid"`
	PaymentMode          PaymentMode `bson:"payment_mode" json:"payment_mode"`
	Status               OrderStatus `bson:"status" json:"status"`
	CreatedAt            Timestamp   `bson:"created_at" json:"created_at"`
	SourceEstimateID     *string     `bson:"source_estimate_id" json:"source_estimate_id"`
	SourceEstimateNumber *string     `bson:"source_estimate_number" json:"source_estimate_number"`
	IsFromEstimate       bool        `bson:"is_from_estimate" json:"is_from_estimate"`
}

// OrderCreate is the request body accepted for a direct sale. CreatedAt is
// accepted for compatibility and ignored; sales are stamped on receipt.
type OrderCreate struct {
	Bill
	AmountPaid           *float64 `json:"amount_paid"`
	PaymentMode          string   `json:"payment_mode"`
	CreatedAt            *string  `json:"created_at"`
	SourceEstimateID     *string  `json:"source_estimate_id"`
	SourceEstimateNumber *string  `json:"source_estimate_number"`
}

// EffectivePaymentMode falls back to Cash for documents without a mode.
func (o Order) EffectivePaymentMode() PaymentMode {
	if o.PaymentMode == "" {
		return PaymentCash
	}
	return o.PaymentMode
}

// EffectiveStatus falls back to Completed for documents without a status.
func (o Order) EffectiveStatus() OrderStatus {
	if o.Status == "" {
		return StatusCompleted
	}
	return o.Status
}
