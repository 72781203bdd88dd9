package service

import (
	"context"
	"sort"
	"time"

	"modapos/internal/dto"
	"modapos/internal/model"
	"modapos/internal/repository"
	"modapos/internal/worker"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// memDB backs every repository stub so services that share rows (stock,
// orders, conditionals) see each other's writes, like they would in one
// database.
type memDB struct {
	products  map[uuid.UUID]*model.Product
	movements []model.StockMovement
	orders    map[uuid.UUID]*model.Order
	conds     map[uuid.UUID]*model.Conditional
	customers map[uuid.UUID]*model.Customer
	users     map[uuid.UUID]*model.User

	// uniqueOrderNumbers makes order inserts behave like the UNIQUE index.
	uniqueOrderNumbers bool
}

func newMemDB() *memDB {
	return &memDB{
		products:  make(map[uuid.UUID]*model.Product),
		orders:    make(map[uuid.UUID]*model.Order),
		conds:     make(map[uuid.UUID]*model.Conditional),
		customers: make(map[uuid.UUID]*model.Customer),
		users:     make(map[uuid.UUID]*model.User),
	}
}

func (m *memDB) addProduct(name string, price string, stock int) *model.Product {
	p := &model.Product{
		ID:        uuid.New(),
		Name:      name,
		SKU:       "SKU-" + name,
		SalePrice: decimal.RequireFromString(price),
		Stock:     stock,
		MinStock:  2,
		Status:    model.ProductActive,
	}
	m.products[p.ID] = p
	return p
}

func (m *memDB) addCustomer(name string) *model.Customer {
	email := name + "@example.com"
	c := &model.Customer{ID: uuid.New(), Name: name, Phone: "11999990000", Email: &email}
	m.customers[c.ID] = c
	return c
}

func (m *memDB) stockOf(id uuid.UUID) int { return m.products[id].Stock }

// ── ProductRepository stub ───────────────────────────────────────────────────

type stubProductRepo struct{ m *memDB }

var _ repository.ProductRepository = (*stubProductRepo)(nil)

func (r *stubProductRepo) CreateTx(_ *gorm.DB, p *model.Product) error {
	cp := *p
	r.m.products[p.ID] = &cp
	return nil
}

func (r *stubProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := r.m.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *stubProductRepo) FindBySKU(_ context.Context, sku string) (*model.Product, error) {
	for _, p := range r.m.products {
		if p.SKU == sku {
			cp := *p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubProductRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]model.Product, error) {
	var out []model.Product
	for _, id := range ids {
		if p, ok := r.m.products[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubProductRepo) List(_ context.Context, f dto.ProductFilter) ([]model.Product, int64, error) {
	var out []model.Product
	for _, p := range r.m.products {
		if f.Status != "all" && p.Status != model.ProductActive {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, int64(len(out)), nil
}

func (r *stubProductRepo) Update(_ context.Context, p *model.Product) error {
	cur, ok := r.m.products[p.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *p
	cp.Stock = cur.Stock
	r.m.products[p.ID] = &cp
	return nil
}

func (r *stubProductRepo) SetStatus(_ context.Context, id uuid.UUID, status string) error {
	p, ok := r.m.products[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Status = status
	return nil
}

func (r *stubProductRepo) ListAlerts(_ context.Context) ([]model.Product, []model.Product, error) {
	var low, out []model.Product
	for _, p := range r.m.products {
		switch {
		case p.IsOutOfStock():
			out = append(out, *p)
		case p.IsLowStock():
			low = append(low, *p)
		}
	}
	return low, out, nil
}

func (r *stubProductRepo) CountAlerts(ctx context.Context) (int64, int64, error) {
	low, out, _ := r.ListAlerts(ctx)
	return int64(len(low)), int64(len(out)), nil
}

func (r *stubProductRepo) AddStockTx(_ *gorm.DB, id uuid.UUID, delta int) (int, error) {
	p, ok := r.m.products[id]
	if !ok {
		return 0, gorm.ErrRecordNotFound
	}
	if p.Stock+delta < 0 {
		return 0, repository.ErrInsufficientStock
	}
	p.Stock += delta
	return p.Stock, nil
}

func (r *stubProductRepo) DB() *gorm.DB { return nil }

// ── StockMovementRepository stub ─────────────────────────────────────────────

type stubMovementRepo struct{ m *memDB }

var _ repository.StockMovementRepository = (*stubMovementRepo)(nil)

func (r *stubMovementRepo) CreateTx(_ *gorm.DB, mv *model.StockMovement) error {
	r.m.movements = append(r.m.movements, *mv)
	return nil
}

func (r *stubMovementRepo) List(_ context.Context, f repository.StockMovementFilter) ([]model.StockMovement, int64, error) {
	var out []model.StockMovement
	for _, mv := range r.m.movements {
		if f.ProductID != nil && mv.ProductID != *f.ProductID {
			continue
		}
		if f.Kind != "" && mv.Kind != f.Kind {
			continue
		}
		out = append(out, mv)
	}
	return out, int64(len(out)), nil
}

// ── OrderRepository stub ─────────────────────────────────────────────────────

type stubOrderRepo struct{ m *memDB }

var _ repository.OrderRepository = (*stubOrderRepo)(nil)

func copyOrder(o *model.Order) *model.Order {
	cp := *o
	cp.Items = append([]model.OrderItem(nil), o.Items...)
	return &cp
}

func (r *stubOrderRepo) CreateTx(_ *gorm.DB, o *model.Order) error {
	if r.m.uniqueOrderNumbers {
		for _, existing := range r.m.orders {
			if existing.OrderNumber == o.OrderNumber {
				return gorm.ErrDuplicatedKey
			}
		}
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	r.m.orders[o.ID] = copyOrder(o)
	return nil
}

func (r *stubOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Order, error) {
	o, ok := r.m.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return copyOrder(o), nil
}

func (r *stubOrderRepo) FindForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.Order, error) {
	return r.FindByID(context.Background(), id)
}

func (r *stubOrderRepo) UpdateStatusTx(_ *gorm.DB, id uuid.UUID, from, to string) error {
	o, ok := r.m.orders[id]
	if !ok || o.Status != from {
		return repository.ErrStaleState
	}
	o.Status = to
	return nil
}

func (r *stubOrderRepo) List(_ context.Context, q repository.OrderQuery) ([]model.Order, int64, error) {
	var out []model.Order
	for _, o := range r.m.orders {
		if q.Status != "" && o.Status != q.Status {
			continue
		}
		if q.From != nil && o.CreatedAt.Before(*q.From) {
			continue
		}
		if q.To != nil && !o.CreatedAt.Before(*q.To) {
			continue
		}
		out = append(out, *copyOrder(o))
	}
	return out, int64(len(out)), nil
}

func (r *stubOrderRepo) ListByCustomer(_ context.Context, customerID uuid.UUID, _ int) ([]model.Order, error) {
	var out []model.Order
	for _, o := range r.m.orders {
		if o.CustomerID != nil && *o.CustomerID == customerID {
			out = append(out, *copyOrder(o))
		}
	}
	return out, nil
}

func (r *stubOrderRepo) DB() *gorm.DB { return nil }

// ── ConditionalRepository stub ───────────────────────────────────────────────

type stubConditionalRepo struct{ m *memDB }

var _ repository.ConditionalRepository = (*stubConditionalRepo)(nil)

func copyConditional(c *model.Conditional) *model.Conditional {
	cp := *c
	cp.Items = append([]model.ConditionalItem(nil), c.Items...)
	return &cp
}

func (r *stubConditionalRepo) CreateTx(_ *gorm.DB, c *model.Conditional) error {
	r.m.conds[c.ID] = copyConditional(c)
	return nil
}

func (r *stubConditionalRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Conditional, error) {
	c, ok := r.m.conds[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return copyConditional(c), nil
}

func (r *stubConditionalRepo) FindForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.Conditional, error) {
	return r.FindByID(context.Background(), id)
}

func (r *stubConditionalRepo) DeleteItemsTx(_ *gorm.DB, conditionalID uuid.UUID, ids []uuid.UUID) error {
	c := r.m.conds[conditionalID]
	if ids == nil {
		c.Items = nil
		return nil
	}
	drop := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	var kept []model.ConditionalItem
	for _, it := range c.Items {
		if !drop[it.ID] {
			kept = append(kept, it)
		}
	}
	c.Items = kept
	return nil
}

func (r *stubConditionalRepo) UpdateStatusTx(_ *gorm.DB, id uuid.UUID, status string) error {
	r.m.conds[id].Status = status
	return nil
}

func (r *stubConditionalRepo) UpdateTotalTx(_ *gorm.DB, id uuid.UUID, total decimal.Decimal) error {
	r.m.conds[id].TotalValue = total
	return nil
}

func (r *stubConditionalRepo) List(_ context.Context, q repository.ConditionalQuery) ([]model.Conditional, int64, error) {
	var out []model.Conditional
	for _, c := range r.m.conds {
		eff := c.EffectiveStatus(q.Now)
		switch {
		case q.Status == "":
		case q.Status == repository.ConditionalStatusOpen && c.IsOpen():
		case q.Status == eff:
		default:
			continue
		}
		out = append(out, *copyConditional(c))
	}
	return out, int64(len(out)), nil
}

func (r *stubConditionalRepo) ListByCustomer(_ context.Context, customerID uuid.UUID, _ int) ([]model.Conditional, error) {
	var out []model.Conditional
	for _, c := range r.m.conds {
		if c.CustomerID == customerID {
			out = append(out, *copyConditional(c))
		}
	}
	return out, nil
}

func (r *stubConditionalRepo) MarkOverdue(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for _, c := range r.m.conds {
		if c.Status == model.ConditionalActive && c.DueDate.Before(now) {
			c.Status = model.ConditionalOverdue
			n++
		}
	}
	return n, nil
}

func (r *stubConditionalRepo) DB() *gorm.DB { return nil }

// ── CustomerRepository stub ──────────────────────────────────────────────────

type stubCustomerRepo struct{ m *memDB }

var _ repository.CustomerRepository = (*stubCustomerRepo)(nil)

func (r *stubCustomerRepo) Create(_ context.Context, c *model.Customer) error {
	cp := *c
	r.m.customers[c.ID] = &cp
	return nil
}

func (r *stubCustomerRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Customer, error) {
	c, ok := r.m.customers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *stubCustomerRepo) List(_ context.Context, _ dto.CustomerFilter) ([]model.Customer, int64, error) {
	var out []model.Customer
	for _, c := range r.m.customers {
		out = append(out, *c)
	}
	return out, int64(len(out)), nil
}

func (r *stubCustomerRepo) Update(_ context.Context, c *model.Customer) error {
	cp := *c
	r.m.customers[c.ID] = &cp
	return nil
}

func (r *stubCustomerRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.m.customers, id)
	return nil
}

func (r *stubCustomerRepo) CountReferences(_ context.Context, id uuid.UUID) (int64, error) {
	var n int64
	for _, o := range r.m.orders {
		if o.CustomerID != nil && *o.CustomerID == id {
			n++
		}
	}
	for _, c := range r.m.conds {
		if c.CustomerID == id {
			n++
		}
	}
	return n, nil
}

// ── Job queue and cache stubs ────────────────────────────────────────────────

type stubJobs struct {
	receipts []worker.ReceiptJobPayload
	err      error
}

func (j *stubJobs) EnqueueReceipt(_ context.Context, p worker.ReceiptJobPayload) error {
	if j.err != nil {
		return j.err
	}
	j.receipts = append(j.receipts, p)
	return nil
}

type stubCache struct {
	invalidated []string
}

func (c *stubCache) GetJSON(context.Context, string, any) bool { return false }
func (c *stubCache) SetJSON(context.Context, string, any)      {}
func (c *stubCache) Invalidate(_ context.Context, prefixes ...string) {
	c.invalidated = append(c.invalidated, prefixes...)
}

// ── fixture ──────────────────────────────────────────────────────────────────

type fixture struct {
	db        *memDB
	products  *stubProductRepo
	movements *stubMovementRepo
	orders    *stubOrderRepo
	conds     *stubConditionalRepo
	customers *stubCustomerRepo
	jobs      *stubJobs
	cache     *stubCache
	now       time.Time
}

func newFixture() *fixture {
	m := newMemDB()
	return &fixture{
		db:        m,
		products:  &stubProductRepo{m},
		movements: &stubMovementRepo{m},
		orders:    &stubOrderRepo{m},
		conds:     &stubConditionalRepo{m},
		customers: &stubCustomerRepo{m},
		jobs:      &stubJobs{},
		cache:     &stubCache{},
		now:       time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC),
	}
}

func (f *fixture) clock() time.Time { return f.now }

// openConditional stores an active conditional holding the given products,
// as checkout would have left it (stock already taken out).
func (f *fixture) openConditional(customer *model.Customer, lines map[*model.Product]int) *model.Conditional {
	c := &model.Conditional{
		ID:            uuid.New(),
		CustomerID:    customer.ID,
		CustomerName:  customer.Name,
		CustomerPhone: customer.Phone,
		CustomerEmail: customer.Email,
		DueDate:       f.now.Add(72 * time.Hour),
		Status:        model.ConditionalActive,
		CreatedAt:     f.now.Add(-time.Hour),
	}
	for p, qty := range lines {
		c.Items = append(c.Items, model.ConditionalItem{
			ID:            uuid.New(),
			ConditionalID: c.ID,
			ProductID:     p.ID,
			ProductName:   p.Name,
			Quantity:      qty,
			UnitPrice:     p.SalePrice,
		})
	}
	sort.Slice(c.Items, func(i, j int) bool { return c.Items[i].ProductName < c.Items[j].ProductName })
	c.TotalValue = model.SumConditionalItems(c.Items)
	f.db.conds[c.ID] = c
	return c
}
