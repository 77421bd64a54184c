package book

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Prices here are in cents (tick size $0.01) to mirror the dollar
// figures used in the literal end-to-end scenarios.

func buildPassiveBook(t *testing.T) *Book {
	t.Helper()
	b := New(0)
	require.NoError(t, b.SubmitPassive(1, Buy, 10000, 10, 1))
	require.NoError(t, b.SubmitPassive(2, Buy, 9950, 15, 2))
	require.NoError(t, b.SubmitPassive(3, Sell, 10100, 10, 3))
	require.NoError(t, b.SubmitPassive(4, Sell, 10150, 15, 4))
	return b
}

func TestScenario1_PassiveBookBuilds(t *testing.T) {
	b := buildPassiveBook(t)

	bid, ok := b.BestBidPrice()
	require.True(t, ok)
	assert.Equal(t, int64(10000), bid)

	ask, ok := b.BestAskPrice()
	require.True(t, ok)
	assert.Equal(t, int64(10100), ask)

	spread, ok := b.Spread()
	require.True(t, ok)
	assert.Equal(t, int64(100), spread)

	mid, ok := b.Mid()
	require.True(t, ok)
	assert.Equal(t, int64(10050), mid)

	assert.Equal(t, 4, b.Size())
	assert.Equal(t, uint64(0), b.TotalTrades())
}

func TestScenario2_CrossingBuyWalksBothAskLevels(t *testing.T) {
	b := buildPassiveBook(t)

	res, err := b.Submit(5, Buy, Limit, 10150, 25, 5)
	require.NoError(t, err)
	require.Len(t, res.Trades, 2)
	assert.Equal(t, int64(10100), res.Trades[0].Price)
	assert.Equal(t, uint64(10), res.Trades[0].Quantity)
	assert.Equal(t, int64(10150), res.Trades[1].Price)
	assert.Equal(t, uint64(15), res.Trades[1].Quantity)

	assert.Equal(t, Filled, res.Status)
	assert.Equal(t, uint64(25), res.FilledQuantity)
	assert.Equal(t, uint64(0), res.RemainingQty)

	_, ok := b.BestAskPrice()
	assert.False(t, ok)
	assert.Equal(t, 2, b.Size())
}

func TestScenario3_NonCrossingBuyRestsAndMovesBestBid(t *testing.T) {
	b := buildPassiveBook(t)

	res, err := b.Submit(5, Buy, Limit, 10050, 10, 5)
	require.NoError(t, err)
	assert.Empty(t, res.Trades)

	bid, ok := b.BestBidPrice()
	require.True(t, ok)
	assert.Equal(t, int64(10050), bid)
	assert.Equal(t, 5, b.Size())
}

func TestScenario4_FIFOWithinPriceLevel(t *testing.T) {
	b := New(0)
	require.NoError(t, b.SubmitPassive(1, Buy, 10000, 5, 1))
	require.NoError(t, b.SubmitPassive(2, Buy, 10000, 7, 2))
	require.NoError(t, b.SubmitPassive(3, Buy, 10000, 9, 3))

	res, err := b.Submit(4, Sell, Limit, 9900, 8, 4)
	require.NoError(t, err)
	require.Len(t, res.Trades, 2)
	assert.Equal(t, int64(10000), res.Trades[0].Price)
	assert.Equal(t, uint64(5), res.Trades[0].Quantity)
	assert.Equal(t, uint64(1), res.Trades[0].MakerOrderID)
	assert.Equal(t, uint64(3), res.Trades[1].Quantity)
	assert.Equal(t, uint64(2), res.Trades[1].MakerOrderID)

	snap, err := b.Lookup(2)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), snap.Remaining())

	// The incoming sell (id 4, qty 8) is itself fully filled by this
	// match (5 against order 1, 3 against order 2) and, per
	// Book.Submit's fully-filled case, is never inserted into the
	// directory or index. Only orders 2 (partially filled) and 3
	// (untouched) remain resting, so size is 2, not 3 — spec.md §8
	// scenario 4's prose ("the first Buy gone, middle partially
	// filled, last untouched") names exactly these two survivors.
	assert.Equal(t, 2, b.Size())

	_, err = b.Lookup(1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestScenario5_CancelAfterPartialFill(t *testing.T) {
	b := New(0)
	require.NoError(t, b.SubmitPassive(1, Buy, 10000, 5, 1))
	require.NoError(t, b.SubmitPassive(2, Buy, 10000, 7, 2))
	require.NoError(t, b.SubmitPassive(3, Buy, 10000, 9, 3))
	_, err := b.Submit(4, Sell, Limit, 9900, 8, 4)
	require.NoError(t, err)

	// Two orders rest after scenario 4 (order 2 partially filled, order
	// 3 untouched); cancelling order 3 leaves exactly one.
	require.NoError(t, b.Cancel(3))
	assert.Equal(t, 1, b.Size())

	err = b.Cancel(3)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 1, b.Size())
}

func TestScenario6_ModifyLosesPriorityAndBFillsFirst(t *testing.T) {
	b := New(0)
	require.NoError(t, b.SubmitPassive(1, Buy, 10000, 5, 1)) // A
	require.NoError(t, b.SubmitPassive(2, Buy, 10000, 5, 2)) // B

	require.NoError(t, b.Modify(1, 6, 3))

	res, err := b.Submit(3, Sell, Limit, 9900, 5, 4)
	require.NoError(t, err)
	require.Len(t, res.Trades, 1)
	assert.Equal(t, uint64(2), res.Trades[0].MakerOrderID)
}
