package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartAddMergesDuplicateItems(t *testing.T) {
	cart := Cart{}
	cart = cart.Add(7, 2)
	cart = cart.Add(7, 3)

	require.Len(t, cart, 1)
	assert.Equal(t, 7, cart[0].ItemID)
	assert.Equal(t, 5, cart[0].Quantity)
}

func TestCartAddKeepsInsertionOrder(t *testing.T) {
	cart := Cart{}
	cart = cart.Add(3, 1)
	cart = cart.Add(1, 1)
	cart = cart.Add(3, 1)
	cart = cart.Add(2, 4)

	require.Len(t, cart, 3)
	assert.Equal(t, []CartLine{{3, 2}, {1, 1}, {2, 4}}, []CartLine(cart))
}

func TestCartRemove(t *testing.T) {
	cart := Cart{{ItemID: 1, Quantity: 2}, {ItemID: 2, Quantity: 1}}

	cart = cart.Remove(1)
	require.Len(t, cart, 1)
	assert.Equal(t, 2, cart[0].ItemID)

	// removing an absent item is a no-op
	cart = cart.Remove(99)
	require.Len(t, cart, 1)
}

func TestCartQuantity(t *testing.T) {
	cart := Cart{{ItemID: 4, Quantity: 6}}
	assert.Equal(t, 6, cart.Quantity(4))
	assert.Equal(t, 0, cart.Quantity(5))
}

func TestCartRequestLinesForExcludesUnresolvedItems(t *testing.T) {
	cart := Cart{{ItemID: 1, Quantity: 2}, {ItemID: 9, Quantity: 1}, {ItemID: 4, Quantity: 3}}

	// item 9 dropped out of the catalog, its line must not be allocated
	lines := cart.RequestLinesFor([]int{1, 4})
	require.Len(t, lines, 2)
	assert.Equal(t, LoanRequestLine{ItemID: 1, Quantity: 2}, lines[0])
	assert.Equal(t, LoanRequestLine{ItemID: 4, Quantity: 3}, lines[1])

	assert.Empty(t, cart.RequestLinesFor(nil))
}

func TestCheckoutWindowUsesShortestLoanPeriod(t *testing.T) {
	now := time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)
	items := []CartItem{
		{Item: Item{ID: 1, MaxTimeOut: 14}},
		{Item: Item{ID: 2, MaxTimeOut: 7}},
		{Item: Item{ID: 3, MaxTimeOut: 30}},
	}

	min, maxDate := CheckoutWindow(items, now)
	assert.Equal(t, 7, min)
	assert.Equal(t, "2024-03-17", maxDate)
}

func TestCheckoutWindowEmptyCart(t *testing.T) {
	min, maxDate := CheckoutWindow(nil, time.Now())
	assert.Zero(t, min)
	assert.Empty(t, maxDate)
}
