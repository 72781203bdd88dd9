package repository

import (
	"context"

	"modapos/internal/dto"
	"modapos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductRepository defines the data access contract for products.
// Services depend on this interface, not on the concrete GORM implementation,
// enabling clean unit testing via stubs.
type ProductRepository interface {
	CreateTx(tx *gorm.DB, p *model.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	FindBySKU(ctx context.Context, sku string) (*model.Product, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error)
	List(ctx context.Context, filter dto.ProductFilter) ([]model.Product, int64, error)
	Update(ctx context.Context, p *model.Product) error
	SetStatus(ctx context.Context, id uuid.UUID, status string) error
	ListAlerts(ctx context.Context) (low []model.Product, out []model.Product, err error)
	CountAlerts(ctx context.Context) (low int64, out int64, err error)

	// AddStockTx applies delta atomically and returns the resulting stock.
	// Negative deltas are guarded: the update only matches when
	// stock >= -delta, otherwise ErrInsufficientStock.
	AddStockTx(tx *gorm.DB, id uuid.UUID, delta int) (int, error)

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type productRepo struct{ db *gorm.DB }

func NewProductRepository(db *gorm.DB) ProductRepository { return &productRepo{db: db} }

func (r *productRepo) DB() *gorm.DB { return r.db }

func (r *productRepo) CreateTx(tx *gorm.DB, p *model.Product) error {
	return tx.Create(p).Error
}

func (r *productRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	return &p, err
}

func (r *productRepo) FindBySKU(ctx context.Context, sku string) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).Where("sku = ?", sku).First(&p).Error
	return &p, err
}

func (r *productRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error) {
	var products []model.Product
	if len(ids) == 0 {
		return products, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error
	return products, err
}

func (r *productRepo) List(ctx context.Context, filter dto.ProductFilter) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Product{})

	// Status filter: "inactive", "all", anything else = active (default)
	switch filter.Status {
	case model.ProductInactive:
		q = q.Where("status = ?", model.ProductInactive)
	case "all":
	default:
		q = q.Where("status = ?", model.ProductActive)
	}

	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		q = q.Where("name ILIKE ? OR sku ILIKE ?", like, like)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.Brand != "" {
		q = q.Where("brand = ?", filter.Brand)
	}
	if filter.Featured != nil {
		q = q.Where("featured = ?", *filter.Featured)
	}
	if filter.LowStock {
		q = q.Where("stock > 0 AND stock <= min_stock")
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset, limit := pageOffset(filter.Page, filter.Limit)
	err := q.Order("name ASC").Limit(limit).Offset(offset).Find(&products).Error
	return products, total, err
}

func (r *productRepo) Update(ctx context.Context, p *model.Product) error {
	// Stock is owned by AddStockTx; a full Save here would race with it.
	return r.db.WithContext(ctx).Model(p).Select("*").Omit("stock", "created_at").Updates(p).Error
}

func (r *productRepo) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	return r.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", id).Update("status", status).Error
}

func (r *productRepo) ListAlerts(ctx context.Context) ([]model.Product, []model.Product, error) {
	var low, out []model.Product
	base := r.db.WithContext(ctx).Where("status = ?", model.ProductActive)
	if err := base.Session(&gorm.Session{}).Where("stock > 0 AND stock <= min_stock").
		Order("stock ASC, name ASC").Find(&low).Error; err != nil {
		return nil, nil, err
	}
	if err := base.Session(&gorm.Session{}).Where("stock <= 0").
		Order("name ASC").Find(&out).Error; err != nil {
		return nil, nil, err
	}
	return low, out, nil
}

func (r *productRepo) CountAlerts(ctx context.Context) (int64, int64, error) {
	var counts struct {
		LowCount int64
		OutCount int64
	}
	err := r.db.WithContext(ctx).Model(&model.Product{}).
		Select("COUNT(*) FILTER (WHERE stock > 0 AND stock <= min_stock) AS low_count, "+
			"COUNT(*) FILTER (WHERE stock <= 0) AS out_count").
		Where("status = ?", model.ProductActive).
		Scan(&counts).Error
	return counts.LowCount, counts.OutCount, err
}

func (r *productRepo) AddStockTx(tx *gorm.DB, id uuid.UUID, delta int) (int, error) {
	var p model.Product
	q := tx.Model(&p).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "stock"}}}).
		Where("id = ?", id)
	if delta < 0 {
		q = q.Where("stock >= ?", -delta)
	}
	res := q.Update("stock", gorm.Expr("stock + ?", delta))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		if delta < 0 {
			return 0, ErrInsufficientStock
		}
		return 0, gorm.ErrRecordNotFound
	}
	return p.Stock, nil
}
