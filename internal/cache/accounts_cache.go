package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spaolacci/murmur3"
)

// Redis key 前缀
const accountsPrefix = "accounts"

const defaultTTL = 30 * time.Second

// Scope 缓存作用域，集群、RPC 节点、程序任意一项不同都不共用缓存
type Scope struct {
	Cluster  string
	Endpoint string // 只参与 hash，节点地址可能带 api key
	Program  string
}

// RedisAccountsCache 用 Redis 缓存解码后的账户列表，key 形如 accounts:<cluster>:<endpoint hash>:<program>:<kind>
type RedisAccountsCache struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewRedisAccountsCache(rdb redis.Cmdable, ttl time.Duration) *RedisAccountsCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &RedisAccountsCache{rdb: rdb, ttl: ttl}
}

func accountsKey(scope Scope, kind string) string {
	return fmt.Sprintf("%s:%s:%016x:%s:%s", accountsPrefix, scope.Cluster, murmur3.Sum64([]byte(scope.Endpoint)), scope.Program, kind)
}

// Get 命中时将缓存值反序列化到 out
func (c *RedisAccountsCache) Get(ctx context.Context, scope Scope, kind string, out any) (bool, error) {
	val, err := c.rdb.Get(ctx, accountsKey(scope, kind)).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("redis get error: %w", err)
	}
	if err := json.Unmarshal(val, out); err != nil {
		return false, fmt.Errorf("decode cached %s: %w", kind, err)
	}
	return true, nil
}

func (c *RedisAccountsCache) Set(ctx context.Context, scope Scope, kind string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", kind, err)
	}
	return c.rdb.Set(ctx, accountsKey(scope, kind), data, c.ttl).Err()
}

// Invalidate 删除缓存，下次读取会重新走 RPC
func (c *RedisAccountsCache) Invalidate(ctx context.Context, scope Scope, kind string) error {
	return c.rdb.Del(ctx, accountsKey(scope, kind)).Err()
}
