package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryAccountsCache 进程内缓存，未配置 Redis 时使用；与 Redis 版本一样存 JSON，读取时拷贝
type MemoryAccountsCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryAccountsCache(ttl time.Duration) *MemoryAccountsCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &MemoryAccountsCache{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (c *MemoryAccountsCache) Get(_ context.Context, scope Scope, kind string, out any) (bool, error) {
	key := accountsKey(scope, kind)

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if !c.now().Before(entry.expiresAt) {
		c.mu.Lock()
		// 只删除仍然是同一条的过期记录
		if cur, ok := c.entries[key]; ok && cur.expiresAt.Equal(entry.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return false, nil
	}

	if err := json.Unmarshal(entry.data, out); err != nil {
		return false, fmt.Errorf("decode cached %s: %w", kind, err)
	}
	return true, nil
}

func (c *MemoryAccountsCache) Set(_ context.Context, scope Scope, kind string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", kind, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[accountsKey(scope, kind)] = memoryEntry{data: data, expiresAt: c.now().Add(c.ttl)}
	return nil
}

func (c *MemoryAccountsCache) Invalidate(_ context.Context, scope Scope, kind string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, accountsKey(scope, kind))
	return nil
}
