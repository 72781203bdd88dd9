package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type OrderItemRequest struct {
	ProductID string  `json:"product_id" validate:"required,uuid"`
	Quantity  int     `json:"quantity"   validate:"required,min=1"`
	Size      *string `json:"size"       validate:"omitempty,max=10"`
	Color     *string `json:"color"      validate:"omitempty,max=40"`
}

// CreateOrderRequest is a back-office order. Either CustomerID or the inline
// customer name/phone must be present.
type CreateOrderRequest struct {
	CustomerID    *string            `json:"customer_id"    validate:"omitempty,uuid"`
	CustomerName  string             `json:"customer_name"  validate:"required_without=CustomerID,omitempty,min=2,max=120"`
	CustomerPhone string             `json:"customer_phone" validate:"omitempty,min=8,max=20"`
	CustomerEmail *string            `json:"customer_email" validate:"omitempty,email"`
	PaymentMethod string             `json:"payment_method" validate:"required,oneof=cash debit credit pix transfer"`
	Items         []OrderItemRequest `json:"items"          validate:"required,min=1,dive"`
	Notes         *string            `json:"notes"          validate:"omitempty,max=500"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending confirmed shipped delivered cancelled"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

// OrderFilter dates are inclusive YYYY-MM-DD in the store timezone.
type OrderFilter struct {
	Status     string `form:"status"      validate:"omitempty,oneof=pending confirmed shipped delivered cancelled completed"`
	CustomerID string `form:"customer_id" validate:"omitempty,uuid"`
	From       string `form:"from"        validate:"omitempty,datetime=2006-01-02"`
	To         string `form:"to"          validate:"omitempty,datetime=2006-01-02"`
	Search     string `form:"search"`
	Page       int    `form:"page,default=1"   validate:"min=1"`
	Limit      int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type OrderItemResponse struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalPrice  decimal.Decimal `json:"total_price"`
	Size        *string         `json:"size"`
	Color       *string         `json:"color"`
}

type OrderResponse struct {
	ID            string              `json:"id"`
	OrderNumber   string              `json:"order_number"`
	CustomerID    *string             `json:"customer_id"`
	CustomerName  string              `json:"customer_name"`
	CustomerPhone string              `json:"customer_phone"`
	CustomerEmail *string             `json:"customer_email"`
	TotalAmount   decimal.Decimal     `json:"total_amount"`
	PaymentMethod string              `json:"payment_method"`
	Status        string              `json:"status"`
	Notes         *string             `json:"notes"`
	Items         []OrderItemResponse `json:"items"`
	CreatedAt     string              `json:"created_at"`
}

type OrderListResponse struct {
	Data       []OrderResponse `json:"data"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
}
