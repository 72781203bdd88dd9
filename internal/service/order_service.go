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

type OrderService interface {
	Create(ctx context.Context, req dto.CreateOrderRequest) (*dto.OrderResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.OrderResponse, error)
	List(ctx context.Context, f dto.OrderFilter) (*dto.OrderListResponse, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, req dto.UpdateOrderStatusRequest) (*dto.OrderResponse, error)
}

type orderService struct {
	orders    repository.OrderRepository
	products  repository.ProductRepository
	customers repository.CustomerRepository
	ledger    stockLedger
	jobs      JobQueue
	cache     Cache
	loc       *time.Location
	now       func() time.Time
}

func NewOrderService(
	orders repository.OrderRepository,
	products repository.ProductRepository,
	customers repository.CustomerRepository,
	movements repository.StockMovementRepository,
	jobs JobQueue,
	cache Cache,
	loc *time.Location,
) OrderService {
	if loc == nil {
		loc = time.UTC
	}
	return &orderService{
		orders:    orders,
		products:  products,
		customers: customers,
		ledger:    stockLedger{products: products, movements: movements},
		jobs:      jobs,
		cache:     cache,
		loc:       loc,
		now:       time.Now,
	}
}

// Create registers a back-office order. Stock leaves inventory now, with the
// same guarded decrement the PDV uses; the order starts pending.
func (s *orderService) Create(ctx context.Context, req dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	reqs := make([]lineRequest, len(req.Items))
	for i, it := range req.Items {
		reqs[i] = lineRequest{ProductID: it.ProductID, Quantity: it.Quantity, Size: it.Size, Color: it.Color}
	}
	lines, err := resolveLines(ctx, s.products, reqs)
	if err != nil {
		return nil, err
	}

	order := &model.Order{
		ID:            uuid.New(),
		OrderNumber:   model.NewOrderNumber(model.OrderPrefixBackOffice, s.now()),
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		CustomerEmail: req.CustomerEmail,
		TotalAmount:   sumLines(lines),
		PaymentMethod: req.PaymentMethod,
		Status:        model.OrderPending,
		Notes:         req.Notes,
	}
	if req.CustomerID != nil && *req.CustomerID != "" {
		id, err := uuid.Parse(*req.CustomerID)
		if err != nil {
			return nil, apierror.Validation("invalid customer_id")
		}
		c, err := s.customers.FindByID(ctx, id)
		if err != nil {
			return nil, dbErr(err, "customer not found")
		}
		order.CustomerID = &c.ID
		order.CustomerName = c.Name
		order.CustomerPhone = c.Phone
		if order.CustomerEmail == nil {
			order.CustomerEmail = c.Email
		}
	}
	if order.CustomerName == "" {
		return nil, apierror.Validation("customer name is required")
	}
	order.Items = orderItems(order.ID, lines)

	err = runTx(ctx, s.orders.DB(), func(tx *gorm.DB) error {
		if err := s.ledger.takeTx(tx, lines, model.MovementSale, "order "+order.OrderNumber, order.ID); err != nil {
			return err
		}
		return createOrderTx(tx, s.orders, order, model.OrderPrefixBackOffice, s.now)
	})
	if err != nil {
		return nil, dbErr(err, "product not found")
	}

	s.cache.Invalidate(ctx, infra.CacheProducts, infra.CacheOrders, infra.CacheDashboard)
	if s.jobs != nil {
		if err := s.jobs.EnqueueReceipt(ctx, worker.ReceiptJobPayload{Kind: model.ReceiptOrder, OrderID: order.ID.String()}); err != nil {
			log.Warn().Err(err).Str("order_id", order.ID.String()).Msg("failed to enqueue receipt")
		}
	}
	resp := toOrderResponse(order)
	return &resp, nil
}

func (s *orderService) Get(ctx context.Context, id uuid.UUID) (*dto.OrderResponse, error) {
	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, dbErr(err, "order not found")
	}
	resp := toOrderResponse(o)
	return &resp, nil
}

// List filters by inclusive calendar dates in the store timezone.
func (s *orderService) List(ctx context.Context, f dto.OrderFilter) (*dto.OrderListResponse, error) {
	q := repository.OrderQuery{Status: f.Status, Search: f.Search, Page: f.Page, Limit: f.Limit}
	if f.CustomerID != "" {
		id, err := uuid.Parse(f.CustomerID)
		if err != nil {
			return nil, apierror.Validation("invalid customer_id")
		}
		q.CustomerID = &id
	}
	if f.From != "" {
		from, err := time.ParseInLocation("2006-01-02", f.From, s.loc)
		if err != nil {
			return nil, apierror.Validation("invalid from date")
		}
		q.From = &from
	}
	if f.To != "" {
		to, err := time.ParseInLocation("2006-01-02", f.To, s.loc)
		if err != nil {
			return nil, apierror.Validation("invalid to date")
		}
		to = to.AddDate(0, 0, 1)
		q.To = &to
	}
	if q.From != nil && q.To != nil && !q.From.Before(*q.To) {
		return nil, apierror.Validation("from must not be after to")
	}

	key := fmt.Sprintf("%slist:%s:%s:%s:%s:%s:%d:%d", infra.CacheOrders, f.Status, f.CustomerID, f.From, f.To, f.Search, f.Page, f.Limit)
	var cached dto.OrderListResponse
	if s.cache.GetJSON(ctx, key, &cached) {
		return &cached, nil
	}

	orders, total, err := s.orders.List(ctx, q)
	if err != nil {
		return nil, dbErr(err, "order not found")
	}
	data := make([]dto.OrderResponse, len(orders))
	for i := range orders {
		data[i] = toOrderResponse(&orders[i])
	}
	resp := &dto.OrderListResponse{
		Data: data, Total: total, Page: f.Page, Limit: f.Limit,
		TotalPages: totalPages(total, f.Limit),
	}
	s.cache.SetJSON(ctx, key, resp)
	return resp, nil
}

// UpdateStatus moves an order along pending → confirmed → shipped →
// delivered. Any non-terminal order may be cancelled, which puts every item
// back in stock.
func (s *orderService) UpdateStatus(ctx context.Context, id uuid.UUID, req dto.UpdateOrderStatusRequest) (*dto.OrderResponse, error) {
	var order *model.Order
	err := runTx(ctx, s.orders.DB(), func(tx *gorm.DB) error {
		o, err := s.orders.FindForUpdateTx(tx, id)
		if err != nil {
			return dbErr(err, "order not found")
		}
		if !model.CanTransitionOrder(o.Status, req.Status) {
			return apierror.Conflict(fmt.Sprintf("cannot move order from %s to %s", o.Status, req.Status))
		}
		if req.Status == model.OrderCancelled {
			for _, it := range o.Items {
				if _, err := s.ledger.apply(tx, stockChange{
					productID: it.ProductID,
					name:      it.ProductName,
					delta:     it.Quantity,
					kind:      model.MovementOrderCancel,
					reason:    "order " + o.OrderNumber + " cancelled",
					ref:       &o.ID,
				}); err != nil {
					return err
				}
			}
		}
		if err := s.orders.UpdateStatusTx(tx, o.ID, o.Status, req.Status); err != nil {
			return err
		}
		o.Status = req.Status
		order = o
		return nil
	})
	if err != nil {
		return nil, dbErr(err, "order not found")
	}

	s.cache.Invalidate(ctx, infra.CacheOrders, infra.CacheDashboard)
	if req.Status == model.OrderCancelled {
		s.cache.Invalidate(ctx, infra.CacheProducts)
	}
	log.Info().Str("order_id", id.String()).Str("status", req.Status).Msg("order status updated")
	resp := toOrderResponse(order)
	return &resp, nil
}
