package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryCache 是Cache的进程内实现，用于测试和无Redis的开发环境。
type MemoryCache struct {
	mu       sync.Mutex
	entries  map[string]memoryEntry
	versions map[string]int64
}

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// NewMemoryCache 创建一个空的进程内缓存。
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries:  make(map[string]memoryEntry),
		versions: make(map[string]int64),
	}
}

// Get 实现Cache接口。
func (c *MemoryCache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok {
		return "", false, nil
	}
	if time.Now().After(entry.expiresAt) {
		delete(c.entries, key)
		return "", false, nil
	}
	return entry.value, true, nil
}

// Set 实现Cache接口。
func (c *MemoryCache) Set(_ context.Context, key string, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = memoryEntry{value: value, expiresAt: time.Now().Add(ttl)}
	return nil
}

// InvalidateMediaType 实现Cache接口。
func (c *MemoryCache) InvalidateMediaType(_ context.Context, mediaType string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.versions[mediaType]++
	return nil
}

// Version 实现Cache接口。
func (c *MemoryCache) Version(_ context.Context, mediaType string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.versions[mediaType], nil
}
