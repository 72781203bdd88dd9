package dto

import "github.com/shopspring/decimal"

// Cart action types accepted by POST /v1/cart/actions.
const (
	CartAddItem     = "add_item"
	CartSetQuantity = "set_quantity"
	CartRemoveItem  = "remove_item"
	CartClear       = "clear"
)

type CartActionRequest struct {
	Type      string `json:"type"       validate:"required,oneof=add_item set_quantity remove_item clear"`
	ProductID string `json:"product_id" validate:"required_unless=Type clear,omitempty,uuid"`
	Quantity  int    `json:"quantity"   validate:"min=0"`
	Size      string `json:"size"       validate:"max=10"`
	Color     string `json:"color"      validate:"max=40"`
}

type CartLineResponse struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	SKU       string          `json:"sku"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	Size      string          `json:"size,omitempty"`
	Color     string          `json:"color,omitempty"`
	Total     decimal.Decimal `json:"total"`
}

type CartResponse struct {
	Lines     []CartLineResponse `json:"lines"`
	Total     decimal.Decimal    `json:"total"`
	ItemCount int                `json:"item_count"`
	UpdatedAt string             `json:"updated_at,omitempty"`
}
