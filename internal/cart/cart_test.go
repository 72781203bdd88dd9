package cart

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func line(id uuid.UUID, size string, qty int, price int64) Line {
	return Line{ProductID: id, Name: "Vestido", UnitPrice: decimal.NewFromInt(price), Quantity: qty, Size: size}
}

func TestApply_AddMergesSameVariant(t *testing.T) {
	c := New("s1")
	id := uuid.New()
	now := time.Now()

	require.NoError(t, c.Apply(AddItem{Line: line(id, "M", 1, 120)}, now))
	require.NoError(t, c.Apply(AddItem{Line: line(id, "M", 2, 120)}, now))
	require.NoError(t, c.Apply(AddItem{Line: line(id, "G", 1, 120)}, now))

	require.Len(t, c.Lines, 2)
	assert.Equal(t, 3, c.Lines[0].Quantity)
	assert.Equal(t, 4, c.QuantityOf(id))
	assert.Equal(t, "480", c.Total().String())
	assert.Equal(t, now, c.UpdatedAt)
}

func TestApply_SetQuantityZeroRemoves(t *testing.T) {
	c := New("s1")
	id := uuid.New()
	require.NoError(t, c.Apply(AddItem{Line: line(id, "P", 2, 50)}, time.Now()))

	require.NoError(t, c.Apply(SetQuantity{ProductID: id, Size: "P", Quantity: 5}, time.Now()))
	assert.Equal(t, 5, c.Lines[0].Quantity)

	require.NoError(t, c.Apply(SetQuantity{ProductID: id, Size: "P", Quantity: 0}, time.Now()))
	assert.True(t, c.IsEmpty())
}

func TestApply_ErrorsLeaveCartUntouched(t *testing.T) {
	c := New("s1")
	id := uuid.New()
	require.NoError(t, c.Apply(AddItem{Line: line(id, "", 1, 10)}, time.Now()))
	before := *c

	assert.ErrorIs(t, c.Apply(AddItem{Line: line(id, "", 0, 10)}, time.Now()), ErrInvalidQuantity)
	assert.ErrorIs(t, c.Apply(SetQuantity{ProductID: id, Quantity: -1}, time.Now()), ErrInvalidQuantity)
	assert.ErrorIs(t, c.Apply(RemoveItem{ProductID: uuid.New()}, time.Now()), ErrLineNotFound)
	assert.ErrorIs(t, c.Apply(nil, time.Now()), ErrUnknownAction)

	assert.Equal(t, before.Lines, c.Lines)
	assert.Equal(t, before.UpdatedAt, c.UpdatedAt)
}

func TestApply_RemoveAndClear(t *testing.T) {
	c := New("s1")
	a, b := uuid.New(), uuid.New()
	require.NoError(t, c.Apply(AddItem{Line: line(a, "", 1, 10)}, time.Now()))
	require.NoError(t, c.Apply(AddItem{Line: line(b, "", 1, 10)}, time.Now()))

	require.NoError(t, c.Apply(RemoveItem{ProductID: a}, time.Now()))
	require.Len(t, c.Lines, 1)
	assert.Equal(t, b, c.Lines[0].ProductID)

	require.NoError(t, c.Apply(Clear{}, time.Now()))
	assert.True(t, c.IsEmpty())
	assert.NotNil(t, c.Lines)
}
