package assert

import (
	"errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestCollector_Unwrap(t *testing.T) {
	var (
		ErrA = errors.New("A")
		ErrB = errors.New("B")
		err  = CollectErrors().Add(ErrA).Add(nil).Add(ErrB).Result()
		as   = new(Collector)
	)

	require.NotNil(t, err)
	assert.ErrorIs(t, err, ErrA)
	assert.ErrorIs(t, err, ErrB)
	assert.ErrorAs(t, err, &as)
	assert.Equal(t, 2, as.Len())
}

func TestCollector_Check(t *testing.T) {
	c := CollectErrors("; ").
		Check(true, "not added").
		Check(false, "value %d is out of range", 5)
	require.Error(t, c.Result())
	assert.Equal(t, "value 5 is out of range", c.Error())
	assert.NoError(t, CollectErrors().Check(true, "fine").Result())
}

func TestCollector_Error(t *testing.T) {
	var (
		ErrA = errors.New("A")
		ErrB = errors.New("B")
		err  = CollectErrors(" ").Add(ErrA).Add(ErrB).AddString("C: %w", ErrA).Result()
	)
	require.NotNil(t, err)
	assert.Equal(t, "A B C: A", err.Error())
}
