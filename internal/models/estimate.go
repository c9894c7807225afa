package models

import "go.mongodb.org/mongo-driver/bson/primitive"

const DefaultEstimateStatus = "Pending"

// Estimate is an unpaid quotation. Once converted it is linked to exactly one
// order and can no longer be deleted.
type Estimate struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EstimateID         string             `bson:"estimate_id" json:"estimate_id"`
	EstimateNumber     string             `bson:"estimate_number" json:"estimate_number"`
	Bill               `bson:",inline"`
	CreatedAt          Timestamp `bson:"created_at" json:"created_at"`
	Status             string    `bson:"status,omitempty" json:"status,omitempty"`
	IsConvertedToOrder bool      `bson:"is_converted_to_order" json:"is_converted_to_order"`
	LinkedOrderID      *string   `bson:"linked_order_id" json:"linked_order_id"`
	LinkedOrderNumber  *string   `bson:"linked_order_number" json:"linked_order_number"`
}

// EstimateCreate is the request body accepted when drafting an estimate.
type EstimateCreate struct {
	Bill
	CreatedAt *string `json:"created_at"`
}

// EffectiveStatus reports the stored status, or Pending for documents that
// never had one.
func (e Estimate) EffectiveStatus() string {
	if e.Status == "" {
		return DefaultEstimateStatus
	}
	return e.Status
}
