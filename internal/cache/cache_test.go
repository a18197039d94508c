package cache_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamrail/ua-classifier/internal/cache"
	"github.com/streamrail/ua-classifier/uaparser"
)

func result(ua string) *uaparser.Result {
	return &uaparser.Result{
		UA:      ua,
		Browser: &uaparser.Browser{Name: "Chrome", Version: "91.0", Major: "91"},
		Device:  &uaparser.Device{Vendor: "Apple", Model: "iPhone", Type: uaparser.DeviceMobile},
	}
}

func TestKey(t *testing.T) {
	t.Parallel()

	a := cache.Key("uap:", "Mozilla/5.0 A")
	b := cache.Key("uap:", "Mozilla/5.0 B")

	assert.Equal(t, a, cache.Key("uap:", "Mozilla/5.0 A"))
	assert.NotEqual(t, a, b)
	assert.Regexp(t, `^uap:[0-9a-f]+$`, a)
}

func TestNop(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	var c cache.Cache = cache.Nop{}

	require.NoError(t, c.Set(ctx, "ua", result("ua")))
	_, err := c.Get(ctx, "ua")
	assert.ErrorIs(t, err, cache.ErrMiss)
	assert.NoError(t, c.Ping(ctx))
	assert.NoError(t, c.Close())
}

func TestMemory(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := cache.NewMemory(2, 0)

	_, err := c.Get(ctx, "a")
	assert.ErrorIs(t, err, cache.ErrMiss)

	require.NoError(t, c.Set(ctx, "a", result("a")))
	require.NoError(t, c.Set(ctx, "b", result("b")))

	got, err := c.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "a", got.UA)

	// "b" is now the least recently used entry
	require.NoError(t, c.Set(ctx, "c", result("c")))
	assert.Equal(t, 2, c.Len())

	_, err = c.Get(ctx, "b")
	assert.ErrorIs(t, err, cache.ErrMiss)
	_, err = c.Get(ctx, "a")
	assert.NoError(t, err)
	_, err = c.Get(ctx, "c")
	assert.NoError(t, err)

	require.NoError(t, c.Set(ctx, "c", result("c2")))
	got, err = c.Get(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, "c2", got.UA)
	assert.Equal(t, 2, c.Len())

	require.NoError(t, c.Close())
	assert.Equal(t, 0, c.Len())
}

func TestMemory_TTL(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	c := cache.NewMemory(10, time.Minute)
	c.SetClock(func() time.Time { return now })

	require.NoError(t, c.Set(ctx, "a", result("a")))
	_, err := c.Get(ctx, "a")
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = c.Get(ctx, "a")
	assert.ErrorIs(t, err, cache.ErrMiss)
	assert.Equal(t, 0, c.Len())
}

func TestNewMemory_InvalidCapacity(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { cache.NewMemory(0, time.Minute) })
}

func TestConnect_InvalidURL(t *testing.T) {
	t.Parallel()

	_, err := cache.Connect(context.Background(), "not a url", "uap:", time.Minute)
	assert.ErrorIs(t, err, cache.ErrFailedToParseRedisURL)
}

// TestRedis runs against the server named by UAP_TEST_REDIS_URL.
func TestRedis(t *testing.T) {
	redisURL := os.Getenv("UAP_TEST_REDIS_URL")
	if redisURL == "" {
		t.Skip("UAP_TEST_REDIS_URL is not set")
	}

	ctx := context.Background()
	c, err := cache.Connect(ctx, redisURL, "uap-test:", time.Minute)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	require.NoError(t, c.Ping(ctx))

	ua := "Mozilla/5.0 redis test " + time.Now().String()
	_, err = c.Get(ctx, ua)
	assert.ErrorIs(t, err, cache.ErrMiss)

	want := result(ua)
	require.NoError(t, c.Set(ctx, ua, want))

	got, err := c.Get(ctx, ua)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
