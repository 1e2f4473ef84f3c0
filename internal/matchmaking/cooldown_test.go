package matchmaking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCooldown_WindowBoundary(t *testing.T) {
	window := 8 * time.Second
	now := time.Unix(1000, 0)
	tracker := NewMemoryCooldown(window)
	tracker.now = func() time.Time { return now }

	ctx := context.Background()

	require.NoError(t, tracker.Mark(ctx, "p1"))

	// window − ε: 거의 끝났지만 아직 거부
	now = now.Add(window - 100*time.Millisecond)
	remaining, err := tracker.Remaining(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 100*time.Millisecond, remaining)

	// window + ε: 통과
	now = now.Add(200 * time.Millisecond)
	remaining, err = tracker.Remaining(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), remaining)
}

func TestMemoryCooldown_UnknownParticipant(t *testing.T) {
	tracker := NewMemoryCooldown(8 * time.Second)

	remaining, err := tracker.Remaining(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), remaining)
}

func TestMemoryCooldown_MarkIsMonotonic(t *testing.T) {
	window := 8 * time.Second
	now := time.Unix(2000, 0)
	tracker := NewMemoryCooldown(window)
	tracker.now = func() time.Time { return now }

	ctx := context.Background()

	require.NoError(t, tracker.Mark(ctx, "p1"))

	// 시계가 뒤로 가도 마크는 뒤로 가지 않는다.
	now = now.Add(-1 * time.Second)
	require.NoError(t, tracker.Mark(ctx, "p1"))

	now = time.Unix(2000, 0).Add(window - time.Second)
	remaining, err := tracker.Remaining(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, time.Second, remaining)
}
