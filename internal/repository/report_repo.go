package repository

import (
	"context"
	"time"

	"modapos/internal/model"
	"modapos/internal/report"

	"gorm.io/gorm"
)

// ReportRepository feeds the dashboard with plain rows created in [from, to).
type ReportRepository interface {
	OrdersInRange(ctx context.Context, from, to time.Time) ([]report.OrderRow, error)
	ConditionalsInRange(ctx context.Context, from, to time.Time) ([]report.ConditionalRow, error)
	// SoldItemsInRange returns items of revenue-qualifying orders only.
	SoldItemsInRange(ctx context.Context, from, to time.Time) ([]report.ItemRow, error)
}

type reportRepo struct{ db *gorm.DB }

func NewReportRepository(db *gorm.DB) ReportRepository { return &reportRepo{db: db} }

func (r *reportRepo) OrdersInRange(ctx context.Context, from, to time.Time) ([]report.OrderRow, error) {
	var rows []report.OrderRow
	err := r.db.WithContext(ctx).Model(&model.Order{}).
		Select("created_at, total_amount, payment_method, status").
		Where("created_at >= ? AND created_at < ?", from, to).
		Scan(&rows).Error
	return rows, err
}

func (r *reportRepo) ConditionalsInRange(ctx context.Context, from, to time.Time) ([]report.ConditionalRow, error) {
	var rows []report.ConditionalRow
	err := r.db.WithContext(ctx).Model(&model.Conditional{}).
		Select("created_at, due_date, status").
		Where("created_at >= ? AND created_at < ?", from, to).
		Scan(&rows).Error
	return rows, err
}

func (r *reportRepo) SoldItemsInRange(ctx context.Context, from, to time.Time) ([]report.ItemRow, error) {
	var rows []report.ItemRow
	err := r.db.WithContext(ctx).Table("order_items AS oi").
		Select("oi.product_id, oi.product_name, oi.quantity, oi.total_price").
		Joins("JOIN orders o ON o.id = oi.order_id").
		Where("o.created_at >= ? AND o.created_at < ? AND o.status IN ?", from, to, report.QualifyingStatuses()).
		Scan(&rows).Error
	return rows, err
}
