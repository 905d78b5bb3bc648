package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRateLimiterBlocksOverLimit(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(3, time.Minute)
	defer rl.Close()

	userID := int64(777)
	for i := 0; i < 3; i++ {
		require.True(t, rl.Allow(userID), "message %d should pass", i+1)
	}
	require.False(t, rl.Allow(userID))

	// Лимит на пользователя: другого не трогаем
	require.True(t, rl.Allow(int64(888)))
}

func TestRateLimiterWindowSlides(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(1, 10*time.Millisecond)
	defer rl.Close()

	userID := int64(777)
	require.True(t, rl.Allow(userID))
	require.False(t, rl.Allow(userID))

	time.Sleep(20 * time.Millisecond)
	require.True(t, rl.Allow(userID))
}

func TestPruneOlder(t *testing.T) {
	t.Parallel()

	now := time.Now()
	times := []time.Time{now.Add(-2 * time.Hour), now.Add(-time.Minute), now}

	recent := pruneOlder(times, now.Add(-time.Hour))
	require.Len(t, recent, 2)

	require.Empty(t, pruneOlder(times, now))
	require.Empty(t, pruneOlder(nil, now))
}
