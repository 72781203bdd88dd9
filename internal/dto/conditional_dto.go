package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// ProcessConditionalRequest decides the fate of a conditional's items.
// For "sell" the selected items are billed and the rest go back to stock;
// for "return" the selected items go back and the rest stay on hold.
// Presence of items and payment method is checked by the service so both the
// HTTP path and internal callers share one set of rules.
type ProcessConditionalRequest struct {
	Action          string   `json:"action"            validate:"required,oneof=sell return"`
	SelectedItemIDs []string `json:"selected_item_ids" validate:"dive,uuid"`
	PaymentMethod   string   `json:"payment_method"    validate:"omitempty,oneof=cash debit credit pix transfer"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

// ConditionalFilter.Status filters on the effective status, so "overdue"
// also matches active conditionals past their due date.
type ConditionalFilter struct {
	Status     string `form:"status"      validate:"omitempty,oneof=active overdue returned sold open"`
	CustomerID string `form:"customer_id" validate:"omitempty,uuid"`
	Page       int    `form:"page,default=1"   validate:"min=1"`
	Limit      int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ConditionalItemResponse struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalPrice  decimal.Decimal `json:"total_price"`
	Size        *string         `json:"size"`
	Color       *string         `json:"color"`
}

type ConditionalResponse struct {
	ID            string                    `json:"id"`
	CustomerID    string                    `json:"customer_id"`
	CustomerName  string                    `json:"customer_name"`
	CustomerPhone string                    `json:"customer_phone"`
	CustomerEmail *string                   `json:"customer_email"`
	TotalValue    decimal.Decimal           `json:"total_value"`
	DueDate       string                    `json:"due_date"`
	Status        string                    `json:"status"` // effective status
	StoredStatus  string                    `json:"stored_status"`
	Notes         *string                   `json:"notes"`
	Items         []ConditionalItemResponse `json:"items"`
	CreatedAt     string                    `json:"created_at"`
}

type ConditionalListResponse struct {
	Data       []ConditionalResponse `json:"data"`
	Total      int64                 `json:"total"`
	Page       int                   `json:"page"`
	Limit      int                   `json:"limit"`
	TotalPages int                   `json:"total_pages"`
}

// ProcessConditionalResponse reports the outcome. For "sell", Sold and
// Returned count items; Order is the order created. For "return", Returned
// and Remaining count items and Status is the conditional's new status.
type ProcessConditionalResponse struct {
	Action    string         `json:"action"`
	Sold      int            `json:"sold"`
	Returned  int            `json:"returned"`
	Remaining int            `json:"remaining"`
	Status    string         `json:"status"`
	Order     *OrderResponse `json:"order,omitempty"`
}
