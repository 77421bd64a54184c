package bookerrors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrap_PreservesCauseAndClassifies(t *testing.T) {
	cause := fmt.Errorf("underlying")
	err := Wrap(cause, ErrNotFound, "order missing").WithSymbol("BTC-USD")

	assert.Equal(t, ErrNotFound, Code(err))
	assert.True(t, Is(err, ErrNotFound))
	assert.False(t, Is(err, ErrDuplicateID))
	assert.Equal(t, SeverityMedium, err.Severity)
	assert.Equal(t, "BTC-USD", err.Symbol)
	assert.Contains(t, err.Error(), "caused by")
}

func TestWrap_NilReturnsNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrNotFound, "unused"))
}

func TestSeverity_BookInconsistencyIsCritical(t *testing.T) {
	err := New(ErrBookInconsistency, "invariant violated")
	assert.True(t, IsCritical(err))

	err2 := New(ErrNotFound, "not found")
	assert.False(t, IsCritical(err2))
}

func TestCode_NonBookErrorReturnsEmpty(t *testing.T) {
	assert.Equal(t, ErrorCode(""), Code(fmt.Errorf("plain")))
}
