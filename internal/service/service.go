// Package service holds the business rules. Services depend on repository
// interfaces and translate storage failures into apierror kinds; handlers
// never see a raw gorm error.
package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"modapos/internal/apierror"
	"modapos/internal/model"
	"modapos/internal/repository"
	"modapos/internal/worker"

	"gorm.io/gorm"
)

// JobQueue is satisfied by *worker.Dispatcher.
type JobQueue interface {
	EnqueueReceipt(ctx context.Context, payload worker.ReceiptJobPayload) error
}

// Cache is satisfied by *infra.Cache (including a nil one).
type Cache interface {
	GetJSON(ctx context.Context, key string, dst any) bool
	SetJSON(ctx context.Context, key string, v any)
	Invalidate(ctx context.Context, prefixes ...string)
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

const orderNumberSavepoint = "order_number"

// createOrderTx inserts o and, when another sale took the same millisecond,
// retries once with a later number. The savepoint keeps the surrounding
// transaction usable after the unique violation.
func createOrderTx(tx *gorm.DB, orders repository.OrderRepository, o *model.Order, prefix string, clock func() time.Time) error {
	if tx != nil {
		if err := tx.SavePoint(orderNumberSavepoint).Error; err != nil {
			return err
		}
	}
	err := orders.CreateTx(tx, o)
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return err
	}
	if tx != nil {
		if err := tx.RollbackTo(orderNumberSavepoint).Error; err != nil {
			return err
		}
	}
	retry := model.NewOrderNumber(prefix, clock())
	if retry <= o.OrderNumber {
		retry = nextOrderNumber(prefix, o.OrderNumber)
	}
	o.OrderNumber = retry
	return orders.CreateTx(tx, o)
}

// nextOrderNumber is the number one millisecond after taken.
func nextOrderNumber(prefix, taken string) string {
	ms, err := strconv.ParseInt(strings.TrimPrefix(taken, prefix+"-"), 10, 64)
	if err != nil {
		return model.NewOrderNumber(prefix, time.Now())
	}
	return model.NewOrderNumber(prefix, time.UnixMilli(ms+1))
}

// dbErr maps repository errors onto the domain taxonomy. Domain errors pass
// through unchanged so it is safe to apply twice.
func dbErr(err error, notFound string) error {
	switch {
	case err == nil:
		return nil
	case apierror.KindOf(err) != 0:
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apierror.NotFound(notFound)
	case errors.Is(err, repository.ErrInsufficientStock):
		return apierror.Conflict("insufficient stock")
	case errors.Is(err, repository.ErrStaleState):
		return apierror.Conflict("record changed concurrently, reload and retry")
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apierror.Conflict("a record with the same unique value already exists")
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return apierror.Conflict("record is referenced by other records")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return apierror.Transient("request cancelled", err)
	default:
		return apierror.Transient("database unavailable", err)
	}
}

func totalPages(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

const timeLayout = time.RFC3339
