// Package cart is the PDV session cart: a value type mutated only through
// typed actions, persisted per session by a Store.
package cart

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrLineNotFound    = errors.New("item not in cart")
	ErrUnknownAction   = errors.New("unknown cart action")
)

// Line is one product variant in the cart. Name and UnitPrice are snapshots
// taken when the line was added.
type Line struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	SKU       string          `json:"sku"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	Size      string          `json:"size,omitempty"`
	Color     string          `json:"color,omitempty"`
}

func (l Line) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

func (l Line) matches(productID uuid.UUID, size, color string) bool {
	return l.ProductID == productID && l.Size == size && l.Color == color
}

type Cart struct {
	SessionID string    `json:"session_id"`
	Lines     []Line    `json:"lines"`
	UpdatedAt time.Time `json:"updated_at"`
}

func New(sessionID string) *Cart {
	return &Cart{SessionID: sessionID, Lines: []Line{}}
}

func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.Total())
	}
	return total
}

// QuantityOf sums every line of a product across variants.
func (c *Cart) QuantityOf(productID uuid.UUID) int {
	n := 0
	for _, l := range c.Lines {
		if l.ProductID == productID {
			n += l.Quantity
		}
	}
	return n
}

func (c *Cart) IsEmpty() bool { return len(c.Lines) == 0 }

func (c *Cart) find(productID uuid.UUID, size, color string) int {
	for i, l := range c.Lines {
		if l.matches(productID, size, color) {
			return i
		}
	}
	return -1
}

// Action is a cart mutation. The set of actions is closed.
type Action interface {
	apply(c *Cart) error
}

// AddItem merges into an existing line with the same product, size and color.
type AddItem struct{ Line Line }

type SetQuantity struct {
	ProductID uuid.UUID
	Size      string
	Color     string
	Quantity  int // 0 removes the line
}

type RemoveItem struct {
	ProductID uuid.UUID
	Size      string
	Color     string
}

type Clear struct{}

func (a AddItem) apply(c *Cart) error {
	if a.Line.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	if i := c.find(a.Line.ProductID, a.Line.Size, a.Line.Color); i >= 0 {
		c.Lines[i].Quantity += a.Line.Quantity
		return nil
	}
	c.Lines = append(c.Lines, a.Line)
	return nil
}

func (a SetQuantity) apply(c *Cart) error {
	if a.Quantity < 0 {
		return ErrInvalidQuantity
	}
	i := c.find(a.ProductID, a.Size, a.Color)
	if i < 0 {
		return ErrLineNotFound
	}
	if a.Quantity == 0 {
		c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
		return nil
	}
	c.Lines[i].Quantity = a.Quantity
	return nil
}

func (a RemoveItem) apply(c *Cart) error {
	i := c.find(a.ProductID, a.Size, a.Color)
	if i < 0 {
		return ErrLineNotFound
	}
	c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
	return nil
}

func (Clear) apply(c *Cart) error {
	c.Lines = []Line{}
	return nil
}

// Apply runs a on the cart. On error the cart is left untouched.
func (c *Cart) Apply(a Action, now time.Time) error {
	if a == nil {
		return ErrUnknownAction
	}
	next := c.clone()
	if err := a.apply(next); err != nil {
		return err
	}
	next.UpdatedAt = now
	*c = *next
	return nil
}

func (c *Cart) clone() *Cart {
	lines := make([]Line, len(c.Lines))
	copy(lines, c.Lines)
	return &Cart{SessionID: c.SessionID, Lines: lines, UpdatedAt: c.UpdatedAt}
}
