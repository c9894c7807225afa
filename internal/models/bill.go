package models

// Item is a single bill line. The point-of-sale clients send at least name,
// price and quantity, but no shape is enforced.
type Item map[string]any

// Bill holds the customer, staff and amount fields shared by estimates and
// orders. It is stored inline in both documents.
type Bill struct {
	CustomerName         string   `bson:"customer_name" json:"customer_name" binding:"required"`
	CustomerPhone        string   `bson:"customer_phone" json:"customer_phone"`
	CustomerAddress      string   `bson:"customer_address" json:"customer_address"`
	SaleBy               string   `bson:"sale_by" json:"sale_by"`
	Items                []Item   `bson:"items" json:"items" binding:"required"`
	Subtotal             float64  `bson:"subtotal" json:"subtotal"`
	DiscountAmount       float64  `bson:"discount_amount" json:"discount_amount"`
	IsPercentageDiscount bool     `bson:"is_percentage_discount" json:"is_percentage_discount"`
	DiscountPercentage   *float64 `bson:"discount_percentage" json:"discount_percentage"`
	Total                float64  `bson:"total" json:"total"`
}

// ItemsCount returns the number of bill lines.
func (b Bill) ItemsCount() int {
	return len(b.Items)
}
