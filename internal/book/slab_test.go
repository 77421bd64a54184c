package book

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlab_AllocateDeallocateReusesSlot(t *testing.T) {
	s := NewSlab(4)

	h1, rec1, err := s.Allocate()
	require.NoError(t, err)
	rec1.OrderID = 42
	assert.Equal(t, 1, s.AllocatedCount())

	s.Deallocate(h1)

	h2, rec2, err := s.Allocate()
	require.NoError(t, err)
	assert.Equal(t, h1, h2, "a freed slot is reused before a new one is claimed")
	assert.Equal(t, uint64(0), rec2.OrderID, "a reused slot is zeroed before reuse")
	assert.Equal(t, 1, s.AllocatedCount(), "reuse must not grow the never-used counter")
}

func TestSlab_GrowsAcrossBlockBoundary(t *testing.T) {
	s := NewSlab(2)

	var handles []handle
	for i := 0; i < 5; i++ {
		h, rec, err := s.Allocate()
		require.NoError(t, err)
		rec.OrderID = uint64(i)
		handles = append(handles, h)
	}
	assert.Equal(t, 5, s.AllocatedCount())
	assert.Len(t, s.blocks, 3, "5 slots at block size 2 spans 3 blocks")

	for i, h := range handles {
		assert.Equal(t, uint64(i), s.Get(h).OrderID)
	}
}

func TestSlab_FixedCapacityExhausts(t *testing.T) {
	s := NewFixedSlab(4, 2)

	_, _, err := s.Allocate()
	require.NoError(t, err)
	_, _, err = s.Allocate()
	require.NoError(t, err)

	_, _, err = s.Allocate()
	assert.ErrorIs(t, err, ErrAllocationExhausted)
	assert.Equal(t, 2, s.AllocatedCount(), "a failed claim must roll back nextUnused")
}

func TestSlab_NilHandleResolvesToNil(t *testing.T) {
	s := NewSlab(4)
	assert.Nil(t, s.Get(nilHandle))
}
