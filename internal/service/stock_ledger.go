package service

import (
	"errors"
	"fmt"

	"modapos/internal/apierror"
	"modapos/internal/model"
	"modapos/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// stockLedger is the only path that changes Product.stock. Every change is a
// single guarded UPDATE followed by an immutable StockMovement row, both in
// the caller's transaction.
type stockLedger struct {
	products  repository.ProductRepository
	movements repository.StockMovementRepository
}

type stockChange struct {
	productID uuid.UUID
	name      string // for error messages
	delta     int
	kind      string
	reason    string
	ref       *uuid.UUID
}

// apply returns the stock after the change.
func (l stockLedger) apply(tx *gorm.DB, ch stockChange) (int, error) {
	after, err := l.products.AddStockTx(tx, ch.productID, ch.delta)
	if err != nil {
		if ch.delta < 0 && errors.Is(err, repository.ErrInsufficientStock) {
			label := ch.name
			if label == "" {
				label = ch.productID.String()
			}
			return 0, apierror.Conflict(fmt.Sprintf("insufficient stock for %s", label))
		}
		return 0, err
	}
	err = l.movements.CreateTx(tx, &model.StockMovement{
		ID:          uuid.New(),
		ProductID:   ch.productID,
		Kind:        ch.kind,
		Quantity:    ch.delta,
		StockBefore: after - ch.delta,
		StockAfter:  after,
		Reason:      ch.reason,
		ReferenceID: ch.ref,
	})
	return after, err
}
