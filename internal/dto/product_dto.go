package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateProductRequest struct {
	Name      string           `json:"name"       validate:"required,min=2,max=120"`
	SKU       string           `json:"sku"        validate:"required,min=1,max=60"`
	SalePrice decimal.Decimal  `json:"sale_price" validate:"required,gt=0"`
	CostPrice *decimal.Decimal `json:"cost_price"`
	Stock     int              `json:"stock"      validate:"min=0"`
	MinStock  int              `json:"min_stock"  validate:"min=0"`
	Category  *string          `json:"category"   validate:"omitempty,max=60"`
	Brand     *string          `json:"brand"      validate:"omitempty,max=60"`
	Colors    []string         `json:"colors"     validate:"omitempty,dive,min=1,max=40"`
	Sizes     []string         `json:"sizes"      validate:"omitempty,dive,min=1,max=10"`
	Featured  bool             `json:"featured"`
}

// UpdateProductRequest is a partial update; nil fields are left untouched.
// Stock is not updatable here, use AdjustStockRequest.
type UpdateProductRequest struct {
	Name      *string          `json:"name"       validate:"omitempty,min=2,max=120"`
	SKU       *string          `json:"sku"        validate:"omitempty,min=1,max=60"`
	SalePrice *decimal.Decimal `json:"sale_price" validate:"omitempty,gt=0"`
	CostPrice *decimal.Decimal `json:"cost_price"`
	MinStock  *int             `json:"min_stock"  validate:"omitempty,min=0"`
	Category  *string          `json:"category"   validate:"omitempty,max=60"`
	Brand     *string          `json:"brand"      validate:"omitempty,max=60"`
	Colors    []string         `json:"colors"     validate:"omitempty,dive,min=1,max=40"`
	Sizes     []string         `json:"sizes"      validate:"omitempty,dive,min=1,max=10"`
	Featured  *bool            `json:"featured"`
}

// AdjustStockRequest applies a signed delta. The result may not go below zero.
type AdjustStockRequest struct {
	Delta  int    `json:"delta"  validate:"required,ne=0"`
	Reason string `json:"reason" validate:"required,min=3,max=200"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type ProductFilter struct {
	Search   string `form:"search"`
	Category string `form:"category"`
	Brand    string `form:"brand"`
	Status   string `form:"status,default=active" validate:"omitempty,oneof=active inactive all"`
	Featured *bool  `form:"featured"`
	LowStock bool   `form:"low_stock"`
	Page     int    `form:"page,default=1"   validate:"min=1"`
	Limit    int    `form:"limit,default=20" validate:"min=1,max=100"`
}

type MovementFilter struct {
	Kind  string `form:"kind"`
	Page  int    `form:"page,default=1"   validate:"min=1"`
	Limit int    `form:"limit,default=50" validate:"min=1,max=500"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductResponse struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	SKU        string           `json:"sku"`
	SalePrice  decimal.Decimal  `json:"sale_price"`
	CostPrice  *decimal.Decimal `json:"cost_price"`
	Stock      int              `json:"stock"`
	MinStock   int              `json:"min_stock"`
	Category   *string          `json:"category"`
	Brand      *string          `json:"brand"`
	Colors     []string         `json:"colors"`
	Sizes      []string         `json:"sizes"`
	Status     string           `json:"status"`
	Featured   bool             `json:"featured"`
	LowStock   bool             `json:"low_stock"`
	OutOfStock bool             `json:"out_of_stock"`
	CreatedAt  string           `json:"created_at"`
}

type ProductListResponse struct {
	Data       []ProductResponse `json:"data"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
}

type StockAlertsResponse struct {
	LowStock   []ProductResponse `json:"low_stock"`
	OutOfStock []ProductResponse `json:"out_of_stock"`
}

type StockMovementResponse struct {
	ID          string  `json:"id"`
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name,omitempty"`
	Kind        string  `json:"kind"`
	Quantity    int     `json:"quantity"`
	StockBefore int     `json:"stock_before"`
	StockAfter  int     `json:"stock_after"`
	Reason      string  `json:"reason"`
	ReferenceID *string `json:"reference_id"`
	CreatedAt   string  `json:"created_at"`
}

type StockMovementListResponse struct {
	Data  []StockMovementResponse `json:"data"`
	Total int64                   `json:"total"`
	Page  int                     `json:"page"`
	Limit int                     `json:"limit"`
}
