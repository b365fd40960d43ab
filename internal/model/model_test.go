package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestIsLowStock(t *testing.T) {
	cases := []struct {
		current, minimum int
		low              bool
	}{
		{current: 2, minimum: 5, low: true},
		{current: 5, minimum: 5, low: false},
		{current: 9, minimum: 5, low: false},
		{current: 0, minimum: 0, low: false},
	}
	for _, c := range cases {
		item := InventoryItem{CurrentQuantity: c.current, MinimumQuantity: c.minimum}
		assert.Equal(t, c.low, item.IsLowStock(), "current=%d minimum=%d", c.current, c.minimum)
	}
}

func TestTransactionDelta(t *testing.T) {
	in := Transaction{Type: TxIn, Quantity: 7}
	out := Transaction{Type: TxOut, Quantity: 3}
	assert.Equal(t, 7, in.Delta())
	assert.Equal(t, -3, out.Delta())
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(POStatusDraft, POStatusPending))
	assert.True(t, CanTransition(POStatusPending, POStatusApproved))
	assert.True(t, CanTransition(POStatusApproved, POStatusOrdered))
	assert.True(t, CanTransition(POStatusOrdered, POStatusReceived))
	assert.True(t, CanTransition(POStatusReceived, POStatusCanceled))
	assert.True(t, CanTransition(POStatusDraft, POStatusCanceled))
	assert.True(t, CanTransition(POStatusOrdered, POStatusOrdered))

	assert.False(t, CanTransition(POStatusDraft, POStatusReceived))
	assert.False(t, CanTransition(POStatusApproved, POStatusPending))
	assert.False(t, CanTransition(POStatusCanceled, POStatusDraft))
	assert.False(t, CanTransition(POStatusDraft, "shipped"))
}

func TestComputeAmount(t *testing.T) {
	price := decimal.NewFromInt(1000)
	line := PurchaseOrderItem{Quantity: 3, UnitPrice: &price}
	line.ComputeAmount()
	assert.True(t, line.Amount.Equal(decimal.NewFromInt(3000)))

	line.UnitPrice = nil
	line.ComputeAmount()
	assert.True(t, line.Amount.IsZero())
}
