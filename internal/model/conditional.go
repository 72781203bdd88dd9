package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Conditional status values. sold and returned are terminal.
const (
	ConditionalActive   = "active"
	ConditionalOverdue  = "overdue"
	ConditionalReturned = "returned"
	ConditionalSold     = "sold"
)

// Conditional is a consignment hold: items left inventory at checkout and the
// customer later keeps (sell) or brings back (return) some or all of them.
type Conditional struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CustomerID    uuid.UUID `gorm:"type:uuid;index;not null"`
	CustomerName  string    `gorm:"not null"`
	CustomerPhone string    `gorm:"not null"`
	CustomerEmail *string
	// TotalValue = Σ items unit_price × quantity; recomputed when items leave.
	TotalValue decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	DueDate    time.Time       `gorm:"not null;index"`
	Status     string          `gorm:"type:varchar(20);not null;default:'active';index"`
	Notes      *string
	CreatedAt  time.Time `gorm:"index"`
	UpdatedAt  time.Time

	Items []ConditionalItem `gorm:"foreignKey:ConditionalID"`
}

type ConditionalItem struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ConditionalID uuid.UUID       `gorm:"type:uuid;index;not null"`
	ProductID     uuid.UUID       `gorm:"type:uuid;index;not null"`
	ProductName   string          `gorm:"not null"`
	Quantity      int             `gorm:"not null"`
	UnitPrice     decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Size          *string
	Color         *string
}

// EffectiveStatus is the single overdue rule used everywhere: a stored
// "overdue", or an "active" conditional whose due date has passed.
func (c *Conditional) EffectiveStatus(now time.Time) string {
	if c.IsOverdue(now) {
		return ConditionalOverdue
	}
	return c.Status
}

func (c *Conditional) IsOverdue(now time.Time) bool {
	return IsConditionalOverdue(c.Status, c.DueDate, now)
}

// IsConditionalOverdue is the canonical overdue computation shared by the
// list views, the dashboard and the maintenance cron.
func IsConditionalOverdue(status string, dueDate, now time.Time) bool {
	return status == ConditionalOverdue ||
		(status == ConditionalActive && dueDate.Before(now))
}

// IsOpen reports whether the conditional still awaits a decision.
func (c *Conditional) IsOpen() bool {
	return c.Status == ConditionalActive || c.Status == ConditionalOverdue
}

// SumConditionalItems returns Σ unit_price × quantity.
func SumConditionalItems(items []ConditionalItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(LineTotal(it.UnitPrice, it.Quantity))
	}
	return total
}
