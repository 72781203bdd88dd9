package model

import (
	"time"

	"github.com/google/uuid"
)

// StockMovement kinds.
const (
	MovementSale              = "sale"
	MovementConditionalOut    = "conditional_out"
	MovementConditionalReturn = "conditional_return"
	MovementOrderCancel       = "order_cancel"
	MovementManualAdjust      = "manual_adjust"
)

// StockMovement is an immutable ledger entry written for every stock change.
type StockMovement struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Kind        string    `gorm:"type:varchar(30);not null"`
	Quantity    int       `gorm:"not null"` // positive = in, negative = out
	StockBefore int       `gorm:"not null"`
	StockAfter  int       `gorm:"not null"`
	Reason      string
	// ReferenceID points at the order or conditional that caused the change.
	ReferenceID *uuid.UUID `gorm:"type:uuid"`
	CreatedAt   time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}
