package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"modapos/internal/apierror"
	"modapos/internal/cart"
	"modapos/internal/dto"
	"modapos/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// CartService keeps one PDV cart per session (the authenticated user id).
type CartService interface {
	Get(ctx context.Context, sessionID string) (*dto.CartResponse, error)
	Apply(ctx context.Context, sessionID string, req dto.CartActionRequest) (*dto.CartResponse, error)
	Clear(ctx context.Context, sessionID string) error
	Checkout(ctx context.Context, sessionID string, req dto.CartCheckoutRequest) (*dto.CheckoutResponse, error)
}

type cartService struct {
	store    cart.Store
	products repository.ProductRepository
	checkout CheckoutService
	now      func() time.Time
}

func NewCartService(store cart.Store, products repository.ProductRepository, checkout CheckoutService) CartService {
	return &cartService{store: store, products: products, checkout: checkout, now: time.Now}
}

func (s *cartService) Get(ctx context.Context, sessionID string) (*dto.CartResponse, error) {
	c, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	resp := toCartResponse(c)
	return &resp, nil
}

// Apply runs one action against the session cart. Adding or raising a
// quantity snapshots the product and checks the cart never holds more of it
// than is in stock right now; checkout re-checks atomically.
func (s *cartService) Apply(ctx context.Context, sessionID string, req dto.CartActionRequest) (*dto.CartResponse, error) {
	c, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	action, product, err := s.toAction(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := c.Apply(action, s.now()); err != nil {
		return nil, cartErr(err)
	}
	if product != nil {
		if held := c.QuantityOf(product.ID); held > product.Stock {
			return nil, apierror.Conflict(fmt.Sprintf("insufficient stock for %s: %d available", product.Name, product.Stock))
		}
	}

	if err := s.store.Save(ctx, c); err != nil {
		return nil, apierror.Transient("cart store unavailable", err)
	}
	resp := toCartResponse(c)
	return &resp, nil
}

func (s *cartService) Clear(ctx context.Context, sessionID string) error {
	if err := s.store.Delete(ctx, sessionID); err != nil {
		return apierror.Transient("cart store unavailable", err)
	}
	return nil
}

// Checkout finalizes the session cart and empties it on success. A failed
// checkout leaves the cart as it was.
func (s *cartService) Checkout(ctx context.Context, sessionID string, req dto.CartCheckoutRequest) (*dto.CheckoutResponse, error) {
	c, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if c.IsEmpty() {
		return nil, apierror.Validation("cart is empty")
	}

	items := make([]dto.CheckoutItemRequest, len(c.Lines))
	for i, l := range c.Lines {
		items[i] = dto.CheckoutItemRequest{
			ProductID: l.ProductID.String(),
			Quantity:  l.Quantity,
			Size:      optional(l.Size),
			Color:     optional(l.Color),
		}
	}
	resp, err := s.checkout.Checkout(ctx, dto.CheckoutRequest{
		Mode:          req.Mode,
		Items:         items,
		CustomerID:    req.CustomerID,
		PaymentMethod: req.PaymentMethod,
		DueDate:       req.DueDate,
		Notes:         req.Notes,
	})
	if err != nil {
		return nil, err
	}

	if err := s.store.Delete(ctx, sessionID); err != nil {
		log.Warn().Err(err).Str("session", sessionID).Msg("checkout done but cart not cleared")
	}
	return resp, nil
}

func (s *cartService) load(ctx context.Context, sessionID string) (*cart.Cart, error) {
	c, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, apierror.Transient("cart store unavailable", err)
	}
	return c, nil
}

// toAction builds the typed cart action. For actions that can grow the cart
// it also returns the product so the caller can check stock.
func (s *cartService) toAction(ctx context.Context, req dto.CartActionRequest) (cart.Action, *productSnapshot, error) {
	if req.Type == dto.CartClear {
		return cart.Clear{}, nil, nil
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, nil, apierror.Validation("invalid product_id")
	}

	switch req.Type {
	case dto.CartAddItem:
		p, err := s.products.FindByID(ctx, productID)
		if err != nil {
			return nil, nil, dbErr(err, "product not found")
		}
		if err := checkSellable(p, &req.Size, &req.Color); err != nil {
			return nil, nil, err
		}
		line := cart.Line{
			ProductID: p.ID,
			Name:      p.Name,
			SKU:       p.SKU,
			UnitPrice: p.SalePrice,
			Quantity:  req.Quantity,
			Size:      req.Size,
			Color:     req.Color,
		}
		return cart.AddItem{Line: line}, &productSnapshot{ID: p.ID, Name: p.Name, Stock: p.Stock}, nil
	case dto.CartSetQuantity:
		p, err := s.products.FindByID(ctx, productID)
		if err != nil {
			return nil, nil, dbErr(err, "product not found")
		}
		action := cart.SetQuantity{ProductID: productID, Size: req.Size, Color: req.Color, Quantity: req.Quantity}
		return action, &productSnapshot{ID: p.ID, Name: p.Name, Stock: p.Stock}, nil
	case dto.CartRemoveItem:
		return cart.RemoveItem{ProductID: productID, Size: req.Size, Color: req.Color}, nil, nil
	default:
		return nil, nil, apierror.Validation(fmt.Sprintf("unknown cart action %q", req.Type))
	}
}

type productSnapshot struct {
	ID    uuid.UUID
	Name  string
	Stock int
}

func cartErr(err error) error {
	switch {
	case errors.Is(err, cart.ErrLineNotFound):
		return apierror.NotFound(err.Error())
	case errors.Is(err, cart.ErrInvalidQuantity), errors.Is(err, cart.ErrUnknownAction):
		return apierror.Validation(err.Error())
	default:
		return err
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
