package cache

import (
	"context"
	"errors"
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

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestCache(ttl time.Duration) (*PageCache, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	store := NewMemoryStore()
	store.now = clock.Now
	return NewPageCache(store, ttl), clock
}

func TestPageCache_HitSkipsRender(t *testing.T) {
	c, _ := newTestCache(20 * time.Second)
	ctx := context.Background()
	var calls int32
	render := func(context.Context) ([]byte, error) {
		n := atomic.AddInt32(&calls, 1)
		return []byte{byte('0' + n)}, nil
	}

	first, err := c.GetOrRender(ctx, Key("index", 1), render)
	require.NoError(t, err)
	second, err := c.GetOrRender(ctx, Key("index", 1), render)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	// 不同页码是不同的键
	_, err = c.GetOrRender(ctx, Key("index", 2), render)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestPageCache_ExpiryRerenders(t *testing.T) {
	c, clock := newTestCache(20 * time.Second)
	ctx := context.Background()
	body := "v1"
	render := func(context.Context) ([]byte, error) { return []byte(body), nil }

	b, err := c.GetOrRender(ctx, "index:1", render)
	require.NoError(t, err)
	assert.Equal(t, "v1", string(b))

	body = "v2"
	clock.Advance(19 * time.Second)
	b, err = c.GetOrRender(ctx, "index:1", render)
	require.NoError(t, err)
	assert.Equal(t, "v1", string(b), "still inside the ttl window")

	clock.Advance(time.Second)
	b, err = c.GetOrRender(ctx, "index:1", render)
	require.NoError(t, err)
	assert.Equal(t, "v2", string(b))
}

func TestPageCache_InvalidateAll(t *testing.T) {
	c, _ := newTestCache(time.Hour)
	ctx := context.Background()
	body := "with post"
	render := func(context.Context) ([]byte, error) { return []byte(body), nil }

	_, err := c.GetOrRender(ctx, "index:1", render)
	require.NoError(t, err)
	body = "without post"

	b, err := c.GetOrRender(ctx, "index:1", render)
	require.NoError(t, err)
	assert.Equal(t, "with post", string(b))

	require.NoError(t, c.InvalidateAll(ctx))
	b, err = c.GetOrRender(ctx, "index:1", render)
	require.NoError(t, err)
	assert.Equal(t, "without post", string(b))
}

func TestPageCache_RenderErrorIsNotStored(t *testing.T) {
	c, _ := newTestCache(time.Hour)
	ctx := context.Background()
	boom := errors.New("db down")

	_, err := c.GetOrRender(ctx, "index:1", func(context.Context) ([]byte, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)

	b, err := c.GetOrRender(ctx, "index:1", func(context.Context) ([]byte, error) { return []byte("ok"), nil })
	require.NoError(t, err)
	assert.Equal(t, "ok", string(b))
}

func TestPageCache_ConcurrentMisses(t *testing.T) {
	c, _ := newTestCache(time.Hour)
	ctx := context.Background()
	render := func(context.Context) ([]byte, error) { return []byte("page"), nil }

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b, err := c.GetOrRender(ctx, "index:1", render)
			assert.NoError(t, err)
			assert.Equal(t, "page", string(b))
		}()
	}
	wg.Wait()
}
