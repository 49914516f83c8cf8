package ratelimit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(t time.Time) *fakeClock { return &fakeClock{now: t} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Add(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestKeyedLimiter_BurstThenBlocksThenRefills(t *testing.T) {
	t.Parallel()

	clk := newFakeClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	l := NewKeyedLimiter(clk.Now, Config{Rate: 1, Burst: 2})

	require.True(t, l.Allow("ip1"))
	require.True(t, l.Allow("ip1"))
	require.False(t, l.Allow("ip1"), "bucket empty")

	clk.Add(time.Second)
	require.True(t, l.Allow("ip1"), "one token refilled")
	require.False(t, l.Allow("ip1"))

	clk.Add(10 * time.Second)
	require.True(t, l.Allow("ip1"))
	require.True(t, l.Allow("ip1"))
	require.False(t, l.Allow("ip1"), "refill is capped at burst")
}

func TestKeyedLimiter_IsPerKey(t *testing.T) {
	t.Parallel()

	clk := newFakeClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	l := NewKeyedLimiter(clk.Now, Config{Rate: 1, Burst: 1})

	require.True(t, l.Allow("keyA"))
	require.False(t, l.Allow("keyA"))
	require.True(t, l.Allow("keyB"))
}

func TestKeyedLimiter_TTLCleanupRemovesIdleClients(t *testing.T) {
	t.Parallel()

	clk := newFakeClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	l := NewKeyedLimiter(clk.Now, Config{Rate: 10, Burst: 1, TTL: 2 * time.Second})

	_ = l.Allow("A")
	_ = l.Allow("B")
	require.Equal(t, 2, l.Len())

	clk.Add(59 * time.Second)
	_ = l.Allow("B")
	clk.Add(2 * time.Second)
	_ = l.Allow("B")

	l.mu.Lock()
	_, hasA := l.clients["A"]
	_, hasB := l.clients["B"]
	l.mu.Unlock()
	require.False(t, hasA)
	require.True(t, hasB)
}

func TestKeyedLimiter_MaxClients(t *testing.T) {
	t.Parallel()

	l := NewKeyedLimiter(newFakeClock(time.Unix(0, 0)).Now, Config{Rate: 1, Burst: 5, MaxClients: 1})

	require.True(t, l.Allow("first"))
	require.False(t, l.Allow("second"), "new clients over the cap are rejected")
	require.True(t, l.Allow("first"))
}
