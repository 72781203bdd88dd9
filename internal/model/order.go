package model

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order status values.
const (
	OrderPending   = "pending"
	OrderConfirmed = "confirmed"
	OrderShipped   = "shipped"
	OrderDelivered = "delivered"
	OrderCancelled = "cancelled"
	// OrderCompleted is not assigned by this backend but rows imported from
	// the legacy store carry it and reporting counts it as revenue.
	OrderCompleted = "completed"
)

// Order number prefixes.
const (
	OrderPrefixBackOffice = "VEND"
	OrderPrefixPDV        = "PDV"
)

// Order is a finalized sale. Customer fields are denormalized at creation.
type Order struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderNumber   string     `gorm:"uniqueIndex;not null"`
	CustomerID    *uuid.UUID `gorm:"type:uuid;index"`
	CustomerName  string     `gorm:"not null"`
	CustomerPhone string
	CustomerEmail *string
	// TotalAmount = Σ items.TotalPrice, enforced by the writer.
	TotalAmount   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PaymentMethod string          `gorm:"type:varchar(30);not null"`
	Status        string          `gorm:"type:varchar(20);not null;default:'pending';index"`
	Notes         *string
	CreatedAt     time.Time `gorm:"index"`
	UpdatedAt     time.Time

	Items []OrderItem `gorm:"foreignKey:OrderID"`
}

type OrderItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderID     uuid.UUID       `gorm:"type:uuid;index;not null"`
	ProductID   uuid.UUID       `gorm:"type:uuid;index;not null"`
	ProductName string          `gorm:"not null"`
	Quantity    int             `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	TotalPrice  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Size        *string
	Color       *string
}

// LineTotal is unit_price × quantity.
func LineTotal(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}

// NewOrderNumber formats "<prefix>-<epoch millis>".
func NewOrderNumber(prefix string, now time.Time) string {
	return prefix + "-" + strconv.FormatInt(now.UnixMilli(), 10)
}

var orderTransitions = map[string][]string{
	OrderPending:   {OrderConfirmed, OrderCancelled},
	OrderConfirmed: {OrderShipped, OrderCancelled},
	OrderShipped:   {OrderDelivered, OrderCancelled},
}

// CanTransitionOrder reports whether an order may move from one status to
// another: forward one step along pending → confirmed → shipped → delivered,
// or to cancelled from any non-terminal status.
func CanTransitionOrder(from, to string) bool {
	for _, s := range orderTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminalOrderStatus reports statuses with no outgoing transition.
func IsTerminalOrderStatus(status string) bool {
	_, ok := orderTransitions[status]
	return !ok
}
