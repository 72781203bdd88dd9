package repository

import (
	"context"
	"time"

	"modapos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReceiptRepository interface {
	Create(ctx context.Context, r *model.Receipt) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Receipt, error)
	FindByOrderID(ctx context.Context, orderID uuid.UUID) (*model.Receipt, error)
	FindByConditionalID(ctx context.Context, conditionalID uuid.UUID) (*model.Receipt, error)
	Update(ctx context.Context, r *model.Receipt) error
	// ListPendingRetries returns receipts in error whose next retry is due.
	ListPendingRetries(ctx context.Context, now time.Time, maxRetries, limit int) ([]model.Receipt, error)
}

type receiptRepo struct{ db *gorm.DB }

func NewReceiptRepository(db *gorm.DB) ReceiptRepository {
	return &receiptRepo{db: db}
}

func (r *receiptRepo) Create(ctx context.Context, rc *model.Receipt) error {
	return r.db.WithContext(ctx).Create(rc).Error
}

func (r *receiptRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Receipt, error) {
	var rc model.Receipt
	err := r.db.WithContext(ctx).First(&rc, "id = ?", id).Error
	return &rc, err
}

func (r *receiptRepo) FindByOrderID(ctx context.Context, orderID uuid.UUID) (*model.Receipt, error) {
	var rc model.Receipt
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&rc).Error
	return &rc, err
}

func (r *receiptRepo) FindByConditionalID(ctx context.Context, conditionalID uuid.UUID) (*model.Receipt, error) {
	var rc model.Receipt
	err := r.db.WithContext(ctx).Where("conditional_id = ?", conditionalID).
		Order("created_at DESC").First(&rc).Error
	return &rc, err
}

func (r *receiptRepo) Update(ctx context.Context, rc *model.Receipt) error {
	return r.db.WithContext(ctx).Save(rc).Error
}

func (r *receiptRepo) ListPendingRetries(ctx context.Context, now time.Time, maxRetries, limit int) ([]model.Receipt, error) {
	var receipts []model.Receipt
	err := r.db.WithContext(ctx).
		Where("status = ? AND retry_count < ? AND (next_retry_at IS NULL OR next_retry_at <= ?)",
			model.ReceiptError, maxRetries, now).
		Order("next_retry_at ASC NULLS FIRST").
		Limit(limit).
		Find(&receipts).Error
	return receipts, err
}
