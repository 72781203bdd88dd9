package dto

import "github.com/shopspring/decimal"

// Checkout modes.
const (
	CheckoutSale        = "sale"
	CheckoutConditional = "conditional"
)

type CheckoutItemRequest struct {
	ProductID string  `json:"product_id" validate:"required,uuid"`
	Quantity  int     `json:"quantity"   validate:"required,min=1"`
	Size      *string `json:"size"       validate:"omitempty,max=10"`
	Color     *string `json:"color"      validate:"omitempty,max=40"`
}

// CheckoutRequest finalizes a PDV cart either as a sale or as a conditional.
// Conditional mode requires CustomerID and DueDate (YYYY-MM-DD, today or
// later; the conditional is due at the end of that day).
type CheckoutRequest struct {
	Mode          string                `json:"mode"           validate:"required,oneof=sale conditional"`
	Items         []CheckoutItemRequest `json:"items"          validate:"required,min=1,dive"`
	CustomerID    *string               `json:"customer_id"    validate:"omitempty,uuid"`
	PaymentMethod string                `json:"payment_method" validate:"omitempty,oneof=cash debit credit pix transfer"`
	DueDate       string                `json:"due_date"       validate:"omitempty,datetime=2006-01-02"`
	Notes         *string               `json:"notes"          validate:"omitempty,max=500"`
}

// CartCheckoutRequest is CheckoutRequest without items: they come from the
// session cart.
type CartCheckoutRequest struct {
	Mode          string  `json:"mode"           validate:"required,oneof=sale conditional"`
	CustomerID    *string `json:"customer_id"    validate:"omitempty,uuid"`
	PaymentMethod string  `json:"payment_method" validate:"omitempty,oneof=cash debit credit pix transfer"`
	DueDate       string  `json:"due_date"       validate:"omitempty,datetime=2006-01-02"`
	Notes         *string `json:"notes"          validate:"omitempty,max=500"`
}

type CheckoutResponse struct {
	Mode        string               `json:"mode"`
	Total       decimal.Decimal      `json:"total"`
	Order       *OrderResponse       `json:"order,omitempty"`
	Conditional *ConditionalResponse `json:"conditional,omitempty"`
}
