package bookasync

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRingBuffer_PushAndRead(t *testing.T) {
	r := NewRingBuffer[int]()

	assert.True(t, r.TryPush(1))
	assert.True(t, r.TryPush(2))
	assert.Equal(t, 2, r.Len())

	out := make([]int, 4)
	n := r.TryRead(out)
	assert.Equal(t, 2, n)
	assert.Equal(t, []int{1, 2}, out[:n])
	assert.Equal(t, 0, r.Len())
}

func TestRingBuffer_ReadOnEmptyReturnsZero(t *testing.T) {
	r := NewRingBuffer[int]()
	out := make([]int, 2)
	assert.Equal(t, 0, r.TryRead(out))
}

func TestRingBuffer_PushFailsWhenFull(t *testing.T) {
	r := NewRingBuffer[int]()
	for i := 0; i < ringSize; i++ {
		requireTrue(t, r.TryPush(i))
	}
	assert.False(t, r.TryPush(ringSize), "ring at capacity must reject rather than overwrite")
}

func requireTrue(t *testing.T, ok bool) {
	t.Helper()
	if !ok {
		t.Fatalf("expected push to succeed")
	}
}
