package model

import (
	"time"

	"github.com/google/uuid"
)

// Receipt kinds and status values.
const (
	ReceiptOrder       = "order"
	ReceiptConditional = "conditional"

	ReceiptPending = "pending"
	ReceiptIssued  = "issued"
	ReceiptError   = "error"
)

// Receipt tracks the PDF rendered for an order or a conditional.
// Exactly one of OrderID / ConditionalID is set.
type Receipt struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Kind          string     `gorm:"type:varchar(20);not null"`
	OrderID       *uuid.UUID `gorm:"type:uuid;index"`
	ConditionalID *uuid.UUID `gorm:"type:uuid;index"`
	Status        string     `gorm:"type:varchar(20);not null;default:'pending'"`
	// PDFPath is relative to RECEIPT_STORAGE_PATH
	PDFPath *string
	// Retry fields, driven by the maintenance cron
	RetryCount  int `gorm:"not null;default:0"`
	NextRetryAt *time.Time
	LastError   *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
