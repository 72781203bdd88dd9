package service

import (
	"time"

	"modapos/internal/cart"
	"modapos/internal/dto"
	"modapos/internal/model"
)

func toProductResponse(p *model.Product) dto.ProductResponse {
	colors := []string(p.Colors)
	if colors == nil {
		colors = []string{}
	}
	sizes := []string(p.Sizes)
	if sizes == nil {
		sizes = []string{}
	}
	return dto.ProductResponse{
		ID:         p.ID.String(),
		Name:       p.Name,
		SKU:        p.SKU,
		SalePrice:  p.SalePrice,
		CostPrice:  p.CostPrice,
		Stock:      p.Stock,
		MinStock:   p.MinStock,
		Category:   p.Category,
		Brand:      p.Brand,
		Colors:     colors,
		Sizes:      sizes,
		Status:     p.Status,
		Featured:   p.Featured,
		LowStock:   p.IsLowStock(),
		OutOfStock: p.IsOutOfStock(),
		CreatedAt:  p.CreatedAt.Format(timeLayout),
	}
}

func toProductResponses(ps []model.Product) []dto.ProductResponse {
	out := make([]dto.ProductResponse, len(ps))
	for i := range ps {
		out[i] = toProductResponse(&ps[i])
	}
	return out
}

func toCustomerResponse(c *model.Customer) dto.CustomerResponse {
	return dto.CustomerResponse{
		ID:    c.ID.String(),
		Name:  c.Name,
		Phone: c.Phone,
		Email: c.Email,
		CPF:   c.CPF,
		Address: dto.Address{
			Street:     c.Street,
			Number:     c.Number,
			Complement: c.Complement,
			District:   c.District,
			City:       c.City,
			State:      c.State,
			ZipCode:    c.ZipCode,
		},
		Notes:     c.Notes,
		CreatedAt: c.CreatedAt.Format(timeLayout),
	}
}

func toOrderResponse(o *model.Order) dto.OrderResponse {
	items := make([]dto.OrderItemResponse, len(o.Items))
	for i, it := range o.Items {
		items[i] = dto.OrderItemResponse{
			ID:          it.ID.String(),
			ProductID:   it.ProductID.String(),
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			TotalPrice:  it.TotalPrice,
			Size:        it.Size,
			Color:       it.Color,
		}
	}
	var customerID *string
	if o.CustomerID != nil {
		s := o.CustomerID.String()
		customerID = &s
	}
	return dto.OrderResponse{
		ID:            o.ID.String(),
		OrderNumber:   o.OrderNumber,
		CustomerID:    customerID,
		CustomerName:  o.CustomerName,
		CustomerPhone: o.CustomerPhone,
		CustomerEmail: o.CustomerEmail,
		TotalAmount:   o.TotalAmount,
		PaymentMethod: o.PaymentMethod,
		Status:        o.Status,
		Notes:         o.Notes,
		Items:         items,
		CreatedAt:     o.CreatedAt.Format(timeLayout),
	}
}

// toConditionalResponse reports the effective status as of now alongside
// the stored one.
func toConditionalResponse(c *model.Conditional, now time.Time) dto.ConditionalResponse {
	items := make([]dto.ConditionalItemResponse, len(c.Items))
	for i, it := range c.Items {
		items[i] = dto.ConditionalItemResponse{
			ID:          it.ID.String(),
			ProductID:   it.ProductID.String(),
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			TotalPrice:  model.LineTotal(it.UnitPrice, it.Quantity),
			Size:        it.Size,
			Color:       it.Color,
		}
	}
	return dto.ConditionalResponse{
		ID:            c.ID.String(),
		CustomerID:    c.CustomerID.String(),
		CustomerName:  c.CustomerName,
		CustomerPhone: c.CustomerPhone,
		CustomerEmail: c.CustomerEmail,
		TotalValue:    c.TotalValue,
		DueDate:       c.DueDate.Format(timeLayout),
		Status:        c.EffectiveStatus(now),
		StoredStatus:  c.Status,
		Notes:         c.Notes,
		Items:         items,
		CreatedAt:     c.CreatedAt.Format(timeLayout),
	}
}

func toStockMovementResponse(m *model.StockMovement) dto.StockMovementResponse {
	r := dto.StockMovementResponse{
		ID:          m.ID.String(),
		ProductID:   m.ProductID.String(),
		Kind:        m.Kind,
		Quantity:    m.Quantity,
		StockBefore: m.StockBefore,
		StockAfter:  m.StockAfter,
		Reason:      m.Reason,
		CreatedAt:   m.CreatedAt.Format(timeLayout),
	}
	if m.Product != nil {
		r.ProductName = m.Product.Name
	}
	if m.ReferenceID != nil {
		s := m.ReferenceID.String()
		r.ReferenceID = &s
	}
	return r
}

func toUserResponse(u *model.User) dto.UserResponse {
	return dto.UserResponse{
		ID:       u.ID.String(),
		Username: u.Username,
		Name:     u.Name,
		Email:    u.Email,
		Role:     u.Role,
		Active:   u.Active,
	}
}

func toCartResponse(c *cart.Cart) dto.CartResponse {
	lines := make([]dto.CartLineResponse, len(c.Lines))
	count := 0
	for i, l := range c.Lines {
		lines[i] = dto.CartLineResponse{
			ProductID: l.ProductID.String(),
			Name:      l.Name,
			SKU:       l.SKU,
			UnitPrice: l.UnitPrice,
			Quantity:  l.Quantity,
			Size:      l.Size,
			Color:     l.Color,
			Total:     l.Total(),
		}
		count += l.Quantity
	}
	resp := dto.CartResponse{Lines: lines, Total: c.Total(), ItemCount: count}
	if !c.UpdatedAt.IsZero() {
		resp.UpdatedAt = c.UpdatedAt.Format(timeLayout)
	}
	return resp
}
