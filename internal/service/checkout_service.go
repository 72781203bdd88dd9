package service

import (
	"context"
	"fmt"
	"time"

	"modapos/internal/apierror"
	"modapos/internal/dto"
	"modapos/internal/infra"
	"modapos/internal/model"
	"modapos/internal/repository"
	"modapos/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// WalkInCustomer names a sale made without a registered customer.
const WalkInCustomer = "Cliente balcão"

type CheckoutService interface {
	Checkout(ctx context.Context, req dto.CheckoutRequest) (*dto.CheckoutResponse, error)
}

type checkoutService struct {
	products  repository.ProductRepository
	customers repository.CustomerRepository
	orders    repository.OrderRepository
	conds     repository.ConditionalRepository
	ledger    stockLedger
	jobs      JobQueue
	cache     Cache
	loc       *time.Location
	now       func() time.Time
}

func NewCheckoutService(
	products repository.ProductRepository,
	customers repository.CustomerRepository,
	orders repository.OrderRepository,
	conds repository.ConditionalRepository,
	movements repository.StockMovementRepository,
	jobs JobQueue,
	cache Cache,
	loc *time.Location,
) CheckoutService {
	if loc == nil {
		loc = time.UTC
	}
	return &checkoutService{
		products:  products,
		customers: customers,
		orders:    orders,
		conds:     conds,
		ledger:    stockLedger{products: products, movements: movements},
		jobs:      jobs,
		cache:     cache,
		loc:       loc,
		now:       time.Now,
	}
}

// Checkout finalizes a PDV sale or opens a conditional. Every line is taken
// out of stock with a guarded decrement inside one transaction; if any line
// is short the whole checkout rolls back with a Conflict.
func (s *checkoutService) Checkout(ctx context.Context, req dto.CheckoutRequest) (*dto.CheckoutResponse, error) {
	now := s.now()

	var (
		customer *model.Customer
		due      time.Time
		err      error
	)
	switch req.Mode {
	case dto.CheckoutSale:
		if req.PaymentMethod == "" {
			return nil, apierror.Validation("no payment method")
		}
	case dto.CheckoutConditional:
		if req.CustomerID == nil || *req.CustomerID == "" {
			return nil, apierror.Validation("a customer is required for a conditional")
		}
		due, err = s.dueDate(req.DueDate, now)
		if err != nil {
			return nil, err
		}
	default:
		return nil, apierror.Validation(fmt.Sprintf("unknown checkout mode %q", req.Mode))
	}

	reqs := make([]lineRequest, len(req.Items))
	for i, it := range req.Items {
		reqs[i] = lineRequest{ProductID: it.ProductID, Quantity: it.Quantity, Size: it.Size, Color: it.Color}
	}
	lines, err := resolveLines(ctx, s.products, reqs)
	if err != nil {
		return nil, err
	}

	if req.CustomerID != nil && *req.CustomerID != "" {
		customer, err = s.findCustomer(ctx, *req.CustomerID)
		if err != nil {
			return nil, err
		}
	}

	resp := &dto.CheckoutResponse{Mode: req.Mode, Total: sumLines(lines)}
	var job worker.ReceiptJobPayload

	if req.Mode == dto.CheckoutSale {
		order := s.buildOrder(lines, customer, req.PaymentMethod, req.Notes, now)
		err = runTx(ctx, s.orders.DB(), func(tx *gorm.DB) error {
			if err := s.ledger.takeTx(tx, lines, model.MovementSale, "pdv sale "+order.OrderNumber, order.ID); err != nil {
				return err
			}
			return createOrderTx(tx, s.orders, order, model.OrderPrefixPDV, s.now)
		})
		if err != nil {
			return nil, dbErr(err, "product not found")
		}
		o := toOrderResponse(order)
		resp.Order = &o
		job = worker.ReceiptJobPayload{Kind: model.ReceiptOrder, OrderID: order.ID.String()}
	} else {
		cond := buildConditional(lines, customer, due, req.Notes)
		err = runTx(ctx, s.conds.DB(), func(tx *gorm.DB) error {
			if err := s.ledger.takeTx(tx, lines, model.MovementConditionalOut, "conditional opened", cond.ID); err != nil {
				return err
			}
			return s.conds.CreateTx(tx, cond)
		})
		if err != nil {
			return nil, dbErr(err, "product not found")
		}
		c := toConditionalResponse(cond, now)
		resp.Conditional = &c
		job = worker.ReceiptJobPayload{Kind: model.ReceiptConditional, ConditionalID: cond.ID.String()}
	}

	s.cache.Invalidate(ctx, infra.CacheProducts, infra.CacheOrders, infra.CacheConditionals, infra.CacheDashboard)
	if s.jobs != nil {
		if err := s.jobs.EnqueueReceipt(ctx, job); err != nil {
			log.Warn().Err(err).Str("kind", job.Kind).Msg("failed to enqueue receipt")
		}
	}
	log.Info().Str("mode", req.Mode).Str("total", resp.Total.String()).Int("lines", len(lines)).Msg("checkout completed")
	return resp, nil
}

// dueDate resolves a YYYY-MM-DD date to the last second of that day in the
// store timezone. It must lie in the future.
func (s *checkoutService) dueDate(raw string, now time.Time) (time.Time, error) {
	if raw == "" {
		return time.Time{}, apierror.Validation("a due date is required for a conditional")
	}
	d, err := time.ParseInLocation("2006-01-02", raw, s.loc)
	if err != nil {
		return time.Time{}, apierror.Validation(fmt.Sprintf("invalid due date %q", raw))
	}
	due := d.Add(24*time.Hour - time.Second)
	if !due.After(now) {
		return time.Time{}, apierror.Validation("due date must be in the future")
	}
	return due, nil
}

func (s *checkoutService) findCustomer(ctx context.Context, raw string) (*model.Customer, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, apierror.Validation("invalid customer_id")
	}
	c, err := s.customers.FindByID(ctx, id)
	if err != nil {
		return nil, dbErr(err, "customer not found")
	}
	return c, nil
}

func (s *checkoutService) buildOrder(lines []pricedLine, customer *model.Customer, payment string, notes *string, now time.Time) *model.Order {
	order := &model.Order{
		ID:            uuid.New(),
		OrderNumber:   model.NewOrderNumber(model.OrderPrefixPDV, now),
		CustomerName:  WalkInCustomer,
		TotalAmount:   sumLines(lines),
		PaymentMethod: payment,
		Status:        model.OrderConfirmed,
		Notes:         notes,
	}
	if customer != nil {
		order.CustomerID = &customer.ID
		order.CustomerName = customer.Name
		order.CustomerPhone = customer.Phone
		order.CustomerEmail = customer.Email
	}
	order.Items = orderItems(order.ID, lines)
	return order
}

func buildConditional(lines []pricedLine, customer *model.Customer, due time.Time, notes *string) *model.Conditional {
	cond := &model.Conditional{
		ID:            uuid.New(),
		CustomerID:    customer.ID,
		CustomerName:  customer.Name,
		CustomerPhone: customer.Phone,
		CustomerEmail: customer.Email,
		DueDate:       due,
		Status:        model.ConditionalActive,
		Notes:         notes,
	}
	for _, l := range lines {
		cond.Items = append(cond.Items, model.ConditionalItem{
			ID:            uuid.New(),
			ConditionalID: cond.ID,
			ProductID:     l.product.ID,
			ProductName:   l.product.Name,
			Quantity:      l.quantity,
			UnitPrice:     l.product.SalePrice,
			Size:          l.size,
			Color:         l.color,
		})
	}
	cond.TotalValue = model.SumConditionalItems(cond.Items)
	return cond
}

func orderItems(orderID uuid.UUID, lines []pricedLine) []model.OrderItem {
	items := make([]model.OrderItem, len(lines))
	for i, l := range lines {
		items[i] = model.OrderItem{
			ID:          uuid.New(),
			OrderID:     orderID,
			ProductID:   l.product.ID,
			ProductName: l.product.Name,
			Quantity:    l.quantity,
			UnitPrice:   l.product.SalePrice,
			TotalPrice:  l.total(),
			Size:        l.size,
			Color:       l.color,
		}
	}
	return items
}
