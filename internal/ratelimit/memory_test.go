package ratelimit

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func TestMemory_AllowsExactlyLimitPerWindow(t *testing.T) {
	clock := newFakeClock()
	l := NewMemory(WithClock(clock.Now))

	for i := 1; i <= 5; i++ {
		assert.False(t, l.Check("1.2.3.4", 5, time.Minute), "attempt %d must pass", i)
	}
	assert.True(t, l.Check("1.2.3.4", 5, time.Minute), "attempt 6 must be limited")
}

func TestMemory_WindowResetsAfterExpiry(t *testing.T) {
	clock := newFakeClock()
	l := NewMemory(WithClock(clock.Now))

	for range 6 {
		l.Check("1.2.3.4", 5, time.Minute)
	}
	require.True(t, l.Check("1.2.3.4", 5, time.Minute))

	clock.Advance(time.Minute + time.Millisecond)

	assert.False(t, l.Check("1.2.3.4", 5, time.Minute))
	for range 4 {
		assert.False(t, l.Check("1.2.3.4", 5, time.Minute))
	}
	assert.True(t, l.Check("1.2.3.4", 5, time.Minute))
}

func TestMemory_SaturatedWindowIsNotExtended(t *testing.T) {
	clock := newFakeClock()
	l := NewMemory(WithClock(clock.Now))

	for range 5 {
		l.Check("k", 5, time.Minute)
	}

	// отклонённые попытки в середине окна не сдвигают его конец
	clock.Advance(50 * time.Second)
	assert.True(t, l.Check("k", 5, time.Minute))
	clock.Advance(9 * time.Second)
	assert.True(t, l.Check("k", 5, time.Minute))

	clock.Advance(time.Second + time.Millisecond)
	assert.False(t, l.Check("k", 5, time.Minute))
}

func TestMemory_BoundaryIsInclusive(t *testing.T) {
	clock := newFakeClock()
	l := NewMemory(WithClock(clock.Now))

	for range 5 {
		l.Check("k", 5, time.Minute)
	}

	// ровно в момент expiresAt окно ещё действует
	clock.Advance(time.Minute)
	assert.True(t, l.Check("k", 5, time.Minute))
}

func TestMemory_KeysAreIndependent(t *testing.T) {
	l := NewMemory()

	for range 5 {
		l.Check("a", 5, time.Minute)
	}
	assert.True(t, l.Check("a", 5, time.Minute))
	assert.False(t, l.Check("b", 5, time.Minute))
}

func TestMemory_SweepRemovesOnlyExpired(t *testing.T) {
	clock := newFakeClock()
	l := NewMemory(WithClock(clock.Now))

	l.Check("old", 5, time.Minute)
	clock.Advance(30 * time.Second)
	l.Check("fresh", 5, time.Minute)
	require.Equal(t, 2, l.Len())

	clock.Advance(31 * time.Second)
	removed := l.Sweep()

	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, l.Len())
}

func TestMemory_Reset(t *testing.T) {
	l := NewMemory()
	for range 6 {
		l.Check("k", 5, time.Minute)
	}

	l.Reset()

	assert.Equal(t, 0, l.Len())
	assert.False(t, l.Check("k", 5, time.Minute))
}

func TestMemory_ConcurrentAttemptsNeverExceedLimit(t *testing.T) {
	l := NewMemory()

	var allowed atomic.Int64
	var wg sync.WaitGroup
	for range 200 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			limited, err := l.IsLimited(context.Background(), "shared", 5, time.Minute)
			assert.NoError(t, err)
			if !limited {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(5), allowed.Load())
}

func TestMemory_RunSweepsUntilCancelled(t *testing.T) {
	clock := newFakeClock()
	l := NewMemory(WithClock(clock.Now))
	l.Check("k", 5, time.Millisecond)
	clock.Advance(time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		l.Run(ctx, 5*time.Millisecond, slog.New(slog.NewTextHandler(io.Discard, nil)))
		close(done)
	}()

	assert.Eventually(t, func() bool { return l.Len() == 0 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestClientKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	assert.Equal(t, UnknownClient, ClientKey(req))

	req.Header.Set(ForwardedForHeader, "10.0.0.1, 10.0.0.2")
	assert.Equal(t, "10.0.0.1, 10.0.0.2", ClientKey(req))
}
