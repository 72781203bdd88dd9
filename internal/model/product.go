package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

const (
	ProductActive   = "active"
	ProductInactive = "inactive"
)

// Product is a sellable catalog entry. Colors and Sizes are the variants a
// seller can pick at the PDV; stock is tracked per product, not per variant.
type Product struct {
	ID        uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string           `gorm:"index;not null"`
	SKU       string           `gorm:"column:sku;uniqueIndex;not null"`
	SalePrice decimal.Decimal  `gorm:"type:decimal(10,2);not null"`
	CostPrice *decimal.Decimal `gorm:"type:decimal(10,2)"`
	// Stock is guarded by a CHECK (stock >= 0) constraint in the migrations.
	Stock     int            `gorm:"not null;default:0"`
	MinStock  int            `gorm:"not null;default:0"`
	Category  *string        `gorm:"index"`
	Brand     *string
	Colors    pq.StringArray `gorm:"type:text[]"`
	Sizes     pq.StringArray `gorm:"type:text[]"`
	Status    string         `gorm:"type:varchar(20);not null;default:'active'"`
	Featured  bool           `gorm:"not null;default:false"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsLowStock reports 0 < stock <= min_stock. Out of stock is not low stock.
func (p *Product) IsLowStock() bool {
	return p.Stock > 0 && p.Stock <= p.MinStock
}

func (p *Product) IsOutOfStock() bool { return p.Stock <= 0 }
