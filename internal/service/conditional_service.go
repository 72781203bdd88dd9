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

const (
	ActionSell   = "sell"
	ActionReturn = "return"
)

type ConditionalService interface {
	Get(ctx context.Context, id uuid.UUID) (*dto.ConditionalResponse, error)
	List(ctx context.Context, f dto.ConditionalFilter) (*dto.ConditionalListResponse, error)
	Process(ctx context.Context, id uuid.UUID, req dto.ProcessConditionalRequest) (*dto.ProcessConditionalResponse, error)
}

type conditionalService struct {
	conds  repository.ConditionalRepository
	orders repository.OrderRepository
	ledger stockLedger
	jobs   JobQueue
	cache  Cache
	now    func() time.Time
}

func NewConditionalService(
	conds repository.ConditionalRepository,
	orders repository.OrderRepository,
	products repository.ProductRepository,
	movements repository.StockMovementRepository,
	jobs JobQueue,
	cache Cache,
) ConditionalService {
	return &conditionalService{
		conds:  conds,
		orders: orders,
		ledger: stockLedger{products: products, movements: movements},
		jobs:   jobs,
		cache:  cache,
		now:    time.Now,
	}
}

func (s *conditionalService) Get(ctx context.Context, id uuid.UUID) (*dto.ConditionalResponse, error) {
	c, err := s.conds.FindByID(ctx, id)
	if err != nil {
		return nil, dbErr(err, "conditional not found")
	}
	resp := toConditionalResponse(c, s.now())
	return &resp, nil
}

func (s *conditionalService) List(ctx context.Context, f dto.ConditionalFilter) (*dto.ConditionalListResponse, error) {
	q := repository.ConditionalQuery{Status: f.Status, Now: s.now(), Page: f.Page, Limit: f.Limit}
	if f.CustomerID != "" {
		id, err := uuid.Parse(f.CustomerID)
		if err != nil {
			return nil, apierror.Validation("invalid customer_id")
		}
		q.CustomerID = &id
	}

	key := fmt.Sprintf("%slist:%s:%v:%d:%d", infra.CacheConditionals, f.Status, q.CustomerID, f.Page, f.Limit)
	var cached dto.ConditionalListResponse
	if s.cache.GetJSON(ctx, key, &cached) {
		return &cached, nil
	}

	conds, total, err := s.conds.List(ctx, q)
	if err != nil {
		return nil, dbErr(err, "conditional not found")
	}
	data := make([]dto.ConditionalResponse, len(conds))
	for i := range conds {
		data[i] = toConditionalResponse(&conds[i], q.Now)
	}
	resp := &dto.ConditionalListResponse{
		Data: data, Total: total, Page: f.Page, Limit: f.Limit,
		TotalPages: totalPages(total, f.Limit),
	}
	s.cache.SetJSON(ctx, key, resp)
	return resp, nil
}

// Process sells or returns the selected items of an open conditional. All
// of it (stock restores, ledger rows, the order, item deletion and the
// status change) commits or rolls back together.
func (s *conditionalService) Process(ctx context.Context, id uuid.UUID, req dto.ProcessConditionalRequest) (*dto.ProcessConditionalResponse, error) {
	if req.Action != ActionSell && req.Action != ActionReturn {
		return nil, apierror.Validation(fmt.Sprintf("unknown action %q", req.Action))
	}
	if len(req.SelectedItemIDs) == 0 {
		return nil, apierror.Validation("no items selected")
	}
	if req.Action == ActionSell && req.PaymentMethod == "" {
		return nil, apierror.Validation("no payment method")
	}
	selected := make(map[uuid.UUID]bool, len(req.SelectedItemIDs))
	for _, raw := range req.SelectedItemIDs {
		itemID, err := uuid.Parse(raw)
		if err != nil {
			return nil, apierror.Validation(fmt.Sprintf("invalid item id %q", raw))
		}
		selected[itemID] = true
	}

	now := s.now()
	resp := &dto.ProcessConditionalResponse{Action: req.Action}
	var order *model.Order

	err := runTx(ctx, s.conds.DB(), func(tx *gorm.DB) error {
		c, err := s.conds.FindForUpdateTx(tx, id)
		if err != nil {
			return dbErr(err, "conditional not found")
		}
		if !c.IsOpen() {
			return apierror.Conflict(fmt.Sprintf("conditional is already %s", c.Status))
		}

		owned := make(map[uuid.UUID]bool, len(c.Items))
		for _, it := range c.Items {
			owned[it.ID] = true
		}
		for itemID := range selected {
			if !owned[itemID] {
				return apierror.Validation(fmt.Sprintf("item %s does not belong to this conditional", itemID))
			}
		}

		var picked, rest []model.ConditionalItem
		for _, it := range c.Items {
			if selected[it.ID] {
				picked = append(picked, it)
			} else {
				rest = append(rest, it)
			}
		}

		if req.Action == ActionSell {
			order, err = s.sellTx(tx, c, picked, rest, req.PaymentMethod, now)
			if err != nil {
				return err
			}
			resp.Sold = len(picked)
			resp.Returned = len(rest)
			resp.Status = model.ConditionalSold
			return nil
		}

		status, err := s.returnTx(tx, c, picked, rest, now)
		if err != nil {
			return err
		}
		resp.Returned = len(picked)
		resp.Remaining = len(rest)
		resp.Status = status
		return nil
	})
	if err != nil {
		return nil, dbErr(err, "conditional not found")
	}

	s.cache.Invalidate(ctx, infra.CacheProducts, infra.CacheOrders, infra.CacheConditionals, infra.CacheDashboard)
	if order != nil {
		o := toOrderResponse(order)
		resp.Order = &o
		s.enqueueReceipt(ctx, order.ID)
	}
	log.Info().
		Str("conditional_id", id.String()).
		Str("action", req.Action).
		Str("status", resp.Status).
		Msg("conditional processed")
	return resp, nil
}

// sellTx returns the unselected items to stock, bills the selected ones as a
// confirmed PDV order and closes the conditional.
func (s *conditionalService) sellTx(tx *gorm.DB, c *model.Conditional, picked, rest []model.ConditionalItem, payment string, now time.Time) (*model.Order, error) {
	for _, it := range rest {
		if _, err := s.ledger.apply(tx, stockChange{
			productID: it.ProductID,
			name:      it.ProductName,
			delta:     it.Quantity,
			kind:      model.MovementConditionalReturn,
			reason:    "conditional sold, item not kept",
			ref:       &c.ID,
		}); err != nil {
			return nil, err
		}
	}

	customerID := c.CustomerID
	order := &model.Order{
		ID:            uuid.New(),
		OrderNumber:   model.NewOrderNumber(model.OrderPrefixPDV, now),
		CustomerID:    &customerID,
		CustomerName:  c.CustomerName,
		CustomerPhone: c.CustomerPhone,
		CustomerEmail: c.CustomerEmail,
		PaymentMethod: payment,
		Status:        model.OrderConfirmed,
		Notes:         c.Notes,
	}
	total := model.SumConditionalItems(picked)
	order.TotalAmount = total
	for _, it := range picked {
		order.Items = append(order.Items, model.OrderItem{
			ID:          uuid.New(),
			OrderID:     order.ID,
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			TotalPrice:  model.LineTotal(it.UnitPrice, it.Quantity),
			Size:        it.Size,
			Color:       it.Color,
		})
	}
	if err := createOrderTx(tx, s.orders, order, model.OrderPrefixPDV, s.now); err != nil {
		return nil, err
	}
	if err := s.conds.DeleteItemsTx(tx, c.ID, nil); err != nil {
		return nil, err
	}
	if err := s.conds.UpdateStatusTx(tx, c.ID, model.ConditionalSold); err != nil {
		return nil, err
	}
	return order, nil
}

// returnTx puts the selected items back in stock. The conditional closes
// when nothing is left, otherwise its total follows the remaining items and
// the reported status is the effective one.
func (s *conditionalService) returnTx(tx *gorm.DB, c *model.Conditional, picked, rest []model.ConditionalItem, now time.Time) (string, error) {
	ids := make([]uuid.UUID, 0, len(picked))
	for _, it := range picked {
		if _, err := s.ledger.apply(tx, stockChange{
			productID: it.ProductID,
			name:      it.ProductName,
			delta:     it.Quantity,
			kind:      model.MovementConditionalReturn,
			reason:    "conditional item returned",
			ref:       &c.ID,
		}); err != nil {
			return "", err
		}
		ids = append(ids, it.ID)
	}
	if err := s.conds.DeleteItemsTx(tx, c.ID, ids); err != nil {
		return "", err
	}
	if len(rest) == 0 {
		if err := s.conds.UpdateStatusTx(tx, c.ID, model.ConditionalReturned); err != nil {
			return "", err
		}
		return model.ConditionalReturned, nil
	}
	if err := s.conds.UpdateTotalTx(tx, c.ID, model.SumConditionalItems(rest)); err != nil {
		return "", err
	}
	return c.EffectiveStatus(now), nil
}

func (s *conditionalService) enqueueReceipt(ctx context.Context, orderID uuid.UUID) {
	if s.jobs == nil {
		return
	}
	err := s.jobs.EnqueueReceipt(ctx, worker.ReceiptJobPayload{Kind: model.ReceiptOrder, OrderID: orderID.String()})
	if err != nil {
		log.Warn().Err(err).Str("order_id", orderID.String()).Msg("failed to enqueue receipt")
	}
}
