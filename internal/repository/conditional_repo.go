package repository

import (
	"context"
	"time"

	"modapos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Status values ConditionalQuery accepts besides the stored ones.
const ConditionalStatusOpen = "open"

// ConditionalQuery filters on the effective status as of Now.
type ConditionalQuery struct {
	Status     string
	CustomerID *uuid.UUID
	Now        time.Time
	Page       int
	Limit      int
}

type ConditionalRepository interface {
	CreateTx(tx *gorm.DB, c *model.Conditional) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Conditional, error)
	// FindForUpdateTx loads the conditional with items and locks its row so
	// two concurrent process calls serialize.
	FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Conditional, error)
	// DeleteItemsTx removes the given items, or every item when ids is nil.
	DeleteItemsTx(tx *gorm.DB, conditionalID uuid.UUID, ids []uuid.UUID) error
	UpdateStatusTx(tx *gorm.DB, id uuid.UUID, status string) error
	UpdateTotalTx(tx *gorm.DB, id uuid.UUID, total decimal.Decimal) error
	List(ctx context.Context, q ConditionalQuery) ([]model.Conditional, int64, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID, limit int) ([]model.Conditional, error)
	// MarkOverdue persists active → overdue for conditionals due before now.
	MarkOverdue(ctx context.Context, now time.Time) (int64, error)
	DB() *gorm.DB
}

type conditionalRepo struct{ db *gorm.DB }

func NewConditionalRepository(db *gorm.DB) ConditionalRepository { return &conditionalRepo{db: db} }

func (r *conditionalRepo) DB() *gorm.DB { return r.db }

func (r *conditionalRepo) CreateTx(tx *gorm.DB, c *model.Conditional) error {
	return tx.Create(c).Error
}

func (r *conditionalRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Conditional, error) {
	var c model.Conditional
	err := r.db.WithContext(ctx).Preload("Items").First(&c, "id = ?", id).Error
	return &c, err
}

func (r *conditionalRepo) FindForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Conditional, error) {
	var c model.Conditional
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Preload("Items").First(&c, "id = ?", id).Error
	return &c, err
}

func (r *conditionalRepo) DeleteItemsTx(tx *gorm.DB, conditionalID uuid.UUID, ids []uuid.UUID) error {
	q := tx.Where("conditional_id = ?", conditionalID)
	if ids != nil {
		q = q.Where("id IN ?", ids)
	}
	return q.Delete(&model.ConditionalItem{}).Error
}

func (r *conditionalRepo) UpdateStatusTx(tx *gorm.DB, id uuid.UUID, status string) error {
	return tx.Model(&model.Conditional{}).Where("id = ?", id).Update("status", status).Error
}

func (r *conditionalRepo) UpdateTotalTx(tx *gorm.DB, id uuid.UUID, total decimal.Decimal) error {
	return tx.Model(&model.Conditional{}).Where("id = ?", id).Update("total_value", total).Error
}

func (r *conditionalRepo) List(ctx context.Context, q ConditionalQuery) ([]model.Conditional, int64, error) {
	var conds []model.Conditional
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Conditional{})
	switch q.Status {
	case "":
	case model.ConditionalOverdue:
		db = db.Where("status = ? OR (status = ? AND due_date < ?)",
			model.ConditionalOverdue, model.ConditionalActive, q.Now)
	case model.ConditionalActive:
		db = db.Where("status = ? AND due_date >= ?", model.ConditionalActive, q.Now)
	case ConditionalStatusOpen:
		db = db.Where("status IN ?", []string{model.ConditionalActive, model.ConditionalOverdue})
	default:
		db = db.Where("status = ?", q.Status)
	}
	if q.CustomerID != nil {
		db = db.Where("customer_id = ?", *q.CustomerID)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset, limit := pageOffset(q.Page, q.Limit)
	err := db.Preload("Items").
		Order("due_date ASC, created_at DESC").
		Offset(offset).Limit(limit).
		Find(&conds).Error
	return conds, total, err
}

func (r *conditionalRepo) ListByCustomer(ctx context.Context, customerID uuid.UUID, limit int) ([]model.Conditional, error) {
	var conds []model.Conditional
	err := r.db.WithContext(ctx).Preload("Items").
		Where("customer_id = ?", customerID).
		Order("created_at DESC").Limit(limit).
		Find(&conds).Error
	return conds, err
}

func (r *conditionalRepo) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Conditional{}).
		Where("status = ? AND due_date < ?", model.ConditionalActive, now).
		Update("status", model.ConditionalOverdue)
	return res.RowsAffected, res.Error
}
