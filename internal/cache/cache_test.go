package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	Address string `json:"address"`
	Count   uint8  `json:"count"`
}

var (
	devnet  = Scope{Cluster: "devnet", Endpoint: "https://api.devnet.solana.com", Program: "BbDVPD53NemX9wCk4Xie8A2jv8NrjNcUre9ruX9BW7TQ"}
	testnet = Scope{Cluster: "testnet", Endpoint: "https://api.testnet.solana.com", Program: "BbDVPD53NemX9wCk4Xie8A2jv8NrjNcUre9ruX9BW7TQ"}
)

func TestAccountsKey(t *testing.T) {
	key := accountsKey(devnet, "counter")
	assert.Regexp(t, `^accounts:devnet:[0-9a-f]{16}:BbDVPD53NemX9wCk4Xie8A2jv8NrjNcUre9ruX9BW7TQ:counter$`, key)
	assert.Equal(t, key, accountsKey(devnet, "counter"))

	withToken := devnet
	withToken.Endpoint = "https://rpc.example.com/?api-key=secret"
	assert.NotContains(t, accountsKey(withToken, "counter"), "secret")

	for _, other := range []Scope{
		{Cluster: "devnet", Endpoint: "http://127.0.0.1:8899", Program: devnet.Program},
		{Cluster: "devnet", Endpoint: devnet.Endpoint, Program: "JAVuBXeBZqXNtS73azhBDAoYaaAFfo4gWXoZe2e7Jf8H"},
		testnet,
	} {
		assert.NotEqual(t, key, accountsKey(other, "counter"), other)
	}
}

func TestMemoryAccountsCache(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1_700_000_000, 0)
	c := NewMemoryAccountsCache(time.Minute)
	c.now = func() time.Time { return now }

	var got []record
	hit, err := c.Get(ctx, devnet, "counter", &got)
	require.NoError(t, err)
	assert.False(t, hit)

	want := []record{{Address: "a", Count: 1}, {Address: "b", Count: 2}}
	require.NoError(t, c.Set(ctx, devnet, "counter", want))

	hit, err = c.Get(ctx, devnet, "counter", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, want, got)

	// 不同作用域互不影响
	hit, _ = c.Get(ctx, testnet, "counter", &got)
	assert.False(t, hit)

	require.NoError(t, c.Invalidate(ctx, devnet, "counter"))
	hit, _ = c.Get(ctx, devnet, "counter", &got)
	assert.False(t, hit)

	require.NoError(t, c.Set(ctx, devnet, "counter", want))
	now = now.Add(time.Minute)
	hit, _ = c.Get(ctx, devnet, "counter", &got)
	assert.False(t, hit, "过期后不命中")
	assert.Empty(t, c.entries)
}

// 需要本地 Redis：REDIS_ADDR=127.0.0.1:6379
func TestRedisAccountsCache(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx := context.Background()
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	defer rdb.Close()

	c := NewRedisAccountsCache(rdb, time.Minute)
	scope := devnet
	scope.Cluster = "test-" + time.Now().Format("150405.000")
	defer c.Invalidate(ctx, scope, "counter")

	var got []record
	hit, err := c.Get(ctx, scope, "counter", &got)
	require.NoError(t, err)
	assert.False(t, hit)

	want := []record{{Address: "a", Count: 7}}
	require.NoError(t, c.Set(ctx, scope, "counter", want))
	hit, err = c.Get(ctx, scope, "counter", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, want, got)

	ttl, err := rdb.TTL(ctx, accountsKey(scope, "counter")).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, c.Invalidate(ctx, scope, "counter"))
	hit, _ = c.Get(ctx, scope, "counter", &got)
	assert.False(t, hit)
}
