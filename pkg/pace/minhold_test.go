package pace

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMinHold_DefersUntilFloorElapses(t *testing.T) {
	ms := NewManualScheduler()
	h := NewMinHold(ms, 500*time.Millisecond)

	var fired int
	ms.Advance(100 * time.Millisecond)
	h.Complete(func() { fired++ })
	require.Equal(t, 0, fired)

	ms.Advance(399 * time.Millisecond)
	require.Equal(t, 0, fired)

	ms.Advance(1 * time.Millisecond)
	require.Equal(t, 1, fired)
}

func TestMinHold_ImmediateWhenFloorAlreadyMet(t *testing.T) {
	ms := NewManualScheduler()
	h := NewMinHold(ms, 500*time.Millisecond)

	ms.Advance(600 * time.Millisecond)

	var fired int
	h.Complete(func() { fired++ })
	require.Equal(t, 1, fired)
	require.Equal(t, 0, ms.PendingCount())
}

func TestMinHold_FiresAtMostOnce(t *testing.T) {
	ms := NewManualScheduler()
	h := NewMinHold(ms, 100*time.Millisecond)

	var fired int
	h.Complete(func() { fired++ })
	h.Complete(func() { fired++ })
	ms.Advance(time.Second)
	h.Complete(func() { fired++ })

	require.Equal(t, 1, fired)
}

func TestMinHold_ZeroFloorCollapses(t *testing.T) {
	ms := NewManualScheduler()
	h := NewMinHold(ms, 0)

	var fired int
	h.Complete(func() { fired++ })
	require.Equal(t, 1, fired)
	require.Equal(t, 0, ms.PendingCount())
}

func TestMinHold_CloseCancelsPendingCallback(t *testing.T) {
	ms := NewManualScheduler()
	h := NewMinHold(ms, 500*time.Millisecond)

	var fired int
	h.Complete(func() { fired++ })
	require.Equal(t, 1, ms.PendingCount())

	h.Close()
	require.Equal(t, 0, ms.PendingCount())

	ms.Advance(time.Second)
	require.Equal(t, 0, fired)
}
