package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestManualClock(t *testing.T) {
	require := require.New(t)

	c := NewManualClock(5)
	require.Equal(uint64(5), c.Now())

	c.Advance(10)
	require.Equal(uint64(15), c.Now())

	c.Set(20)
	require.Equal(uint64(20), c.Now())

	// Never goes backwards.
	c.Set(3)
	require.Equal(uint64(20), c.Now())
}

func TestSystemClock(t *testing.T) {
	require := require.New(t)

	c := NewSystemClock(time.Now().Add(-10 * time.Second))
	now := c.Now()
	require.GreaterOrEqual(now, uint64(10))
	require.Less(now, uint64(12))

	// Epoch in the future clamps to zero.
	future := NewSystemClock(time.Now().Add(time.Hour))
	require.Equal(uint64(0), future.Now())
}
