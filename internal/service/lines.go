package service

import (
	"context"
	"fmt"

	"modapos/internal/apierror"
	"modapos/internal/model"
	"modapos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// lineRequest is the common shape of order, checkout and cart lines.
type lineRequest struct {
	ProductID string
	Quantity  int
	Size      *string
	Color     *string
}

// pricedLine is a requested line resolved against the catalog, with the
// product name and sale price snapshotted.
type pricedLine struct {
	product  model.Product
	quantity int
	size     *string
	color    *string
}

func (l pricedLine) total() decimal.Decimal {
	return model.LineTotal(l.product.SalePrice, l.quantity)
}

// resolveLines loads every referenced product in one query and checks it can
// be sold: it exists, is active, and the variant is one the product offers.
// Stock is not checked here; the guarded decrement does that atomically.
func resolveLines(ctx context.Context, products repository.ProductRepository, reqs []lineRequest) ([]pricedLine, error) {
	if len(reqs) == 0 {
		return nil, apierror.Validation("no items")
	}
	ids := make([]uuid.UUID, len(reqs))
	for i, r := range reqs {
		id, err := uuid.Parse(r.ProductID)
		if err != nil {
			return nil, apierror.Validation(fmt.Sprintf("invalid product id %q", r.ProductID))
		}
		if r.Quantity <= 0 {
			return nil, apierror.Validation("quantity must be positive")
		}
		ids[i] = id
	}

	found, err := products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, dbErr(err, "product not found")
	}
	byID := make(map[uuid.UUID]model.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}

	lines := make([]pricedLine, len(reqs))
	for i, r := range reqs {
		p, ok := byID[ids[i]]
		if !ok {
			return nil, apierror.NotFound(fmt.Sprintf("product %s not found", ids[i]))
		}
		if err := checkSellable(&p, r.Size, r.Color); err != nil {
			return nil, err
		}
		lines[i] = pricedLine{product: p, quantity: r.Quantity, size: r.Size, color: r.Color}
	}
	return lines, nil
}

func checkSellable(p *model.Product, size, color *string) error {
	if p.Status != model.ProductActive {
		return apierror.Validation(fmt.Sprintf("product %s is inactive", p.Name))
	}
	if size != nil && *size != "" && len(p.Sizes) > 0 && !contains(p.Sizes, *size) {
		return apierror.Validation(fmt.Sprintf("size %s is not offered for %s", *size, p.Name))
	}
	if color != nil && *color != "" && len(p.Colors) > 0 && !contains(p.Colors, *color) {
		return apierror.Validation(fmt.Sprintf("color %s is not offered for %s", *color, p.Name))
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func sumLines(lines []pricedLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.total())
	}
	return total
}

// takeTx moves every line out of stock. The first line that cannot be
// covered aborts the caller's transaction with a Conflict naming the product.
func (l stockLedger) takeTx(tx *gorm.DB, lines []pricedLine, kind, reason string, ref uuid.UUID) error {
	for _, line := range lines {
		if _, err := l.apply(tx, stockChange{
			productID: line.product.ID,
			name:      line.product.Name,
			delta:     -line.quantity,
			kind:      kind,
			reason:    reason,
			ref:       &ref,
		}); err != nil {
			return err
		}
	}
	return nil
}
