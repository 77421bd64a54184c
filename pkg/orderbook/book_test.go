package orderbook

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdoElHodaky/matchbook/bookerrors"
)

func TestBook_SubmitAndMatch(t *testing.T) {
	b := New(DefaultConfig("BTC-USD"), nil)

	id1 := b.NextOrderID()
	_, err := b.Submit(id1, Buy, Limit, 1000, 10, 1)
	require.NoError(t, err)

	id2 := b.NextOrderID()
	res, err := b.Submit(id2, Sell, Limit, 1000, 10, 2)
	require.NoError(t, err)
	require.Len(t, res.Trades, 1)
	assert.Equal(t, uint64(1), b.TotalTrades())
	assert.Equal(t, uint64(10), b.TotalVolume())
}

func TestBook_DuplicateIDClassifiedAsBookError(t *testing.T) {
	b := New(DefaultConfig("DUP-USD"), nil)
	id := b.NextOrderID()
	_, err := b.Submit(id, Buy, Limit, 1000, 10, 1)
	require.NoError(t, err)

	_, err = b.Submit(id, Sell, Limit, 1000, 10, 2)
	require.Error(t, err)
	assert.Equal(t, bookerrors.ErrDuplicateID, bookerrors.Code(err))
}

func TestBook_RateLimiting(t *testing.T) {
	cfg := DefaultConfig("RATE-USD")
	cfg.MaxOrdersPerSec = 1
	b := New(cfg, nil)

	_, err := b.Submit(b.NextOrderID(), Buy, Limit, 1000, 10, 1)
	require.NoError(t, err)

	_, err = b.Submit(b.NextOrderID(), Buy, Limit, 1000, 10, 2)
	require.Error(t, err)
	assert.Equal(t, bookerrors.ErrRateLimited, bookerrors.Code(err))
}

func TestBook_RateLimitingWithTimeoutWaitsForToken(t *testing.T) {
	cfg := DefaultConfig("WAIT-USD")
	cfg.MaxOrdersPerSec = 1
	cfg.SubmitTimeout = 2 * time.Second
	b := New(cfg, nil)

	_, err := b.Submit(b.NextOrderID(), Buy, Limit, 1000, 10, 1)
	require.NoError(t, err)

	// The one-token bucket is now empty; it refills within the timeout
	// (about one second at this rate), so the bounded wait succeeds
	// where TestBook_RateLimiting's non-blocking check rejects.
	_, err = b.Submit(b.NextOrderID(), Buy, Limit, 1000, 10, 2)
	require.NoError(t, err)
}

func TestRegistry_CreatesOnFirstUse(t *testing.T) {
	reg := NewRegistry(nil, DefaultConfig)

	_, ok := reg.Lookup("ETH-USD")
	assert.False(t, ok)

	b := reg.Get("ETH-USD")
	require.NotNil(t, b)
	assert.Equal(t, "ETH-USD", b.Symbol())

	again := reg.Get("ETH-USD")
	assert.Same(t, b, again, "the same symbol always returns the same book")

	_, err := reg.MustLookup("DOES-NOT-EXIST")
	require.Error(t, err)
	assert.Equal(t, bookerrors.ErrSymbolNotFound, bookerrors.Code(err))
}
