package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"modapos/internal/apierror"
	"modapos/internal/dto"
	"modapos/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newCheckoutSvc(f *fixture) *checkoutService {
	svc := NewCheckoutService(f.products, f.customers, f.orders, f.conds, f.movements, f.jobs, f.cache, time.UTC).(*checkoutService)
	svc.now = f.clock
	return svc
}

func item(p *model.Product, qty int) dto.CheckoutItemRequest {
	return dto.CheckoutItemRequest{ProductID: p.ID.String(), Quantity: qty}
}

func TestCheckout_SaleWalkIn(t *testing.T) {
	f := newFixture()
	blouse := f.db.addProduct("Blusa", "59.90", 5)
	belt := f.db.addProduct("Cinto", "45.00", 1)

	resp, err := newCheckoutSvc(f).Checkout(context.Background(), dto.CheckoutRequest{
		Mode:          dto.CheckoutSale,
		Items:         []dto.CheckoutItemRequest{item(blouse, 2), item(belt, 1)},
		PaymentMethod: "debit",
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Order)
	assert.Equal(t, "164.8", resp.Total.String())
	assert.Equal(t, WalkInCustomer, resp.Order.CustomerName)
	assert.Nil(t, resp.Order.CustomerID)
	assert.Equal(t, model.OrderConfirmed, resp.Order.Status)
	assert.Equal(t, "PDV-1710513000000", resp.Order.OrderNumber)

	assert.Equal(t, 3, f.db.stockOf(blouse.ID))
	assert.Equal(t, 0, f.db.stockOf(belt.ID))
	require.Len(t, f.db.movements, 2)
	for _, mv := range f.db.movements {
		assert.Equal(t, model.MovementSale, mv.Kind)
		assert.Negative(t, mv.Quantity)
	}
	require.Len(t, f.jobs.receipts, 1)
	assert.Equal(t, resp.Order.ID, f.jobs.receipts[0].OrderID)
}

func TestCheckout_ConditionalHoldsStockUntilDueDate(t *testing.T) {
	f := newFixture()
	blouse := f.db.addProduct("Blusa", "59.90", 5)
	jana := f.db.addCustomer("jana")
	customerID := jana.ID.String()

	resp, err := newCheckoutSvc(f).Checkout(context.Background(), dto.CheckoutRequest{
		Mode:       dto.CheckoutConditional,
		Items:      []dto.CheckoutItemRequest{item(blouse, 2)},
		CustomerID: &customerID,
		DueDate:    "2024-03-18",
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Conditional)
	assert.Equal(t, model.ConditionalActive, resp.Conditional.Status)
	assert.Equal(t, "119.8", resp.Conditional.TotalValue.String())
	assert.Equal(t, "2024-03-18T23:59:59Z", resp.Conditional.DueDate)
	assert.Equal(t, 3, f.db.stockOf(blouse.ID))
	assert.Equal(t, model.MovementConditionalOut, f.db.movements[0].Kind)
	assert.Equal(t, model.ReceiptConditional, f.jobs.receipts[0].Kind)
}

func TestCheckout_ShortStockRejectsWithConflict(t *testing.T) {
	f := newFixture()
	blouse := f.db.addProduct("Blusa", "59.90", 1)

	_, err := newCheckoutSvc(f).Checkout(context.Background(), dto.CheckoutRequest{
		Mode:          dto.CheckoutSale,
		Items:         []dto.CheckoutItemRequest{item(blouse, 2)},
		PaymentMethod: "cash",
	})
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindConflict))
	assert.Contains(t, err.Error(), "Blusa")
	assert.Equal(t, 1, f.db.stockOf(blouse.ID))
	assert.Empty(t, f.db.orders)
	assert.Empty(t, f.jobs.receipts)
}

func TestCheckout_Validation(t *testing.T) {
	f := newFixture()
	blouse := f.db.addProduct("Blusa", "59.90", 5)
	blouse.Sizes = []string{"P", "M"}
	gone := f.db.addProduct("Vestido", "99.00", 5)
	gone.Status = model.ProductInactive
	customerID := f.db.addCustomer("kika").ID.String()
	large := "G"

	cases := []struct {
		name string
		req  dto.CheckoutRequest
		msg  string
	}{
		{"sale without payment", dto.CheckoutRequest{Mode: dto.CheckoutSale, Items: []dto.CheckoutItemRequest{item(blouse, 1)}}, "no payment method"},
		{"conditional without customer", dto.CheckoutRequest{Mode: dto.CheckoutConditional, Items: []dto.CheckoutItemRequest{item(blouse, 1)}, DueDate: "2024-03-20"}, "customer is required"},
		{"conditional due yesterday", dto.CheckoutRequest{Mode: dto.CheckoutConditional, Items: []dto.CheckoutItemRequest{item(blouse, 1)}, CustomerID: &customerID, DueDate: "2024-03-14"}, "must be in the future"},
		{"inactive product", dto.CheckoutRequest{Mode: dto.CheckoutSale, Items: []dto.CheckoutItemRequest{item(gone, 1)}, PaymentMethod: "pix"}, "inactive"},
		{"size not offered", dto.CheckoutRequest{Mode: dto.CheckoutSale, Items: []dto.CheckoutItemRequest{{ProductID: blouse.ID.String(), Quantity: 1, Size: &large}}, PaymentMethod: "pix"}, "size G"},
		{"no items", dto.CheckoutRequest{Mode: dto.CheckoutSale, PaymentMethod: "pix"}, "no items"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := newCheckoutSvc(f).Checkout(context.Background(), tc.req)
			require.Error(t, err)
			assert.True(t, apierror.IsKind(err, apierror.KindValidation), err.Error())
			assert.Contains(t, err.Error(), tc.msg)
			assert.Equal(t, 5, f.db.stockOf(blouse.ID))
		})
	}
}

func TestCheckout_QueueFailureDoesNotFailSale(t *testing.T) {
	f := newFixture()
	f.jobs.err = errors.New("redis down")
	blouse := f.db.addProduct("Blusa", "59.90", 1)

	resp, err := newCheckoutSvc(f).Checkout(context.Background(), dto.CheckoutRequest{
		Mode: dto.CheckoutSale, Items: []dto.CheckoutItemRequest{item(blouse, 1)}, PaymentMethod: "cash",
	})
	require.NoError(t, err)
	assert.NotNil(t, resp.Order)
}

func TestCheckout_SameMillisecondSalesGetDistinctNumbers(t *testing.T) {
	f := newFixture()
	f.db.uniqueOrderNumbers = true
	blouse := f.db.addProduct("Blusa", "59.90", 5)
	jeans := f.db.addProduct("Calça", "189.90", 3)
	svc := newCheckoutSvc(f)

	first, err := svc.Checkout(context.Background(), dto.CheckoutRequest{
		Mode: dto.CheckoutSale, Items: []dto.CheckoutItemRequest{item(blouse, 1)}, PaymentMethod: "pix",
	})
	require.NoError(t, err)

	// frozen clock: the second terminal lands on the same millisecond
	second, err := svc.Checkout(context.Background(), dto.CheckoutRequest{
		Mode: dto.CheckoutSale, Items: []dto.CheckoutItemRequest{item(jeans, 1)}, PaymentMethod: "cash",
	})
	require.NoError(t, err)

	assert.Equal(t, "PDV-1710513000000", first.Order.OrderNumber)
	assert.Equal(t, "PDV-1710513000001", second.Order.OrderNumber)
	assert.Len(t, f.db.orders, 2)
	assert.Equal(t, 2, f.db.stockOf(jeans.ID))
}

func TestCreateOrderTx_GivesUpAfterOneRetry(t *testing.T) {
	f := newFixture()
	f.db.uniqueOrderNumbers = true
	for _, n := range []string{"PDV-1710513000000", "PDV-1710513000001"} {
		require.NoError(t, f.orders.CreateTx(nil, &model.Order{ID: uuid.New(), OrderNumber: n}))
	}

	o := &model.Order{ID: uuid.New(), OrderNumber: model.NewOrderNumber(model.OrderPrefixPDV, f.now)}
	err := createOrderTx(nil, f.orders, o, model.OrderPrefixPDV, f.clock)
	require.ErrorIs(t, err, gorm.ErrDuplicatedKey)
	assert.True(t, apierror.IsKind(dbErr(err, ""), apierror.KindConflict))
	assert.Len(t, f.db.orders, 2)
}
