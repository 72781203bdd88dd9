package repository

import (
	"context"
	"time"

	"modapos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderQuery filters GET /v1/orders. From/To are already resolved to
// instants by the service.
type OrderQuery struct {
	Status     string
	CustomerID *uuid.UUID
	From       *time.Time
	To         *time.Time
	Search     string
	Page       int
	Limit      int
}

type OrderRepository interface {
	// CreateTx inserts the order and its items.
	CreateTx(tx *gorm.DB, o *model.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	// FindForUpdateTx loads the order with items and locks its row.
	FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Order, error)
	// UpdateStatusTx moves the order from one status to another, failing with
	// ErrStaleState when the stored status is no longer from.
	UpdateStatusTx(tx *gorm.DB, id uuid.UUID, from, to string) error
	List(ctx context.Context, q OrderQuery) ([]model.Order, int64, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID, limit int) ([]model.Order, error)
	DB() *gorm.DB
}

type orderRepo struct{ db *gorm.DB }

func NewOrderRepository(db *gorm.DB) OrderRepository { return &orderRepo{db: db} }

func (r *orderRepo) DB() *gorm.DB { return r.db }

func (r *orderRepo) CreateTx(tx *gorm.DB, o *model.Order) error {
	return tx.Create(o).Error
}

func (r *orderRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).Preload("Items").First(&o, "id = ?", id).Error
	return &o, err
}

func (r *orderRepo) FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Order, error) {
	var o model.Order
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Preload("Items").First(&o, "id = ?", id).Error
	return &o, err
}

func (r *orderRepo) UpdateStatusTx(tx *gorm.DB, id uuid.UUID, from, to string) error {
	res := tx.Model(&model.Order{}).Where("id = ? AND status = ?", id, from).Update("status", to)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleState
	}
	return nil
}

func (r *orderRepo) List(ctx context.Context, q OrderQuery) ([]model.Order, int64, error) {
	var orders []model.Order
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Order{})
	if q.Status != "" {
		db = db.Where("status = ?", q.Status)
	}
	if q.CustomerID != nil {
		db = db.Where("customer_id = ?", *q.CustomerID)
	}
	if q.From != nil {
		db = db.Where("created_at >= ?", *q.From)
	}
	if q.To != nil {
		db = db.Where("created_at < ?", *q.To)
	}
	if q.Search != "" {
		like := "%" + q.Search + "%"
		db = db.Where("order_number ILIKE ? OR customer_name ILIKE ?", like, like)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset, limit := pageOffset(q.Page, q.Limit)
	err := db.Preload("Items").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&orders).Error
	return orders, total, err
}

func (r *orderRepo) ListByCustomer(ctx context.Context, customerID uuid.UUID, limit int) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.WithContext(ctx).Preload("Items").
		Where("customer_id = ?", customerID).
		Order("created_at DESC").Limit(limit).
		Find(&orders).Error
	return orders, err
}
