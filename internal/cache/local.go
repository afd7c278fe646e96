package cache

import (
	"sync"
	"time"
)

type localEntry struct {
	data      []byte
	expiresAt time.Time
	tags      []string
}

// localCache : cache de secours en mémoire, TTL + balayage périodique
type localCache struct {
	mu      sync.RWMutex
	entries map[string]localEntry
	tags    map[string]map[string]bool // tag → clés
}

func newLocalCache(sweepInterval time.Duration) *localCache {
	c := &localCache{
		entries: make(map[string]localEntry),
		tags:    make(map[string]map[string]bool),
	}
	go func() {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for range ticker.C {
			c.sweep()
		}
	}()
	return c
}

func (c *localCache) get(key string) ([]byte, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.data, true
}

func (c *localCache) set(key string, data []byte, ttl time.Duration, tags []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = localEntry{data: data, expiresAt: time.Now().Add(ttl), tags: tags}
	for _, tag := range tags {
		if c.tags[tag] == nil {
			c.tags[tag] = make(map[string]bool)
		}
		c.tags[tag][key] = true
	}
}

func (c *localCache) delete(keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		c.removeLocked(key)
	}
}

func (c *localCache) deleteTag(tag string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.tags[tag] {
		c.removeLocked(key)
	}
	delete(c.tags, tag)
}

func (c *localCache) sweep() {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			c.removeLocked(key)
		}
	}
}

func (c *localCache) removeLocked(key string) {
	entry, ok := c.entries[key]
	if !ok {
		return
	}
	delete(c.entries, key)
	for _, tag := range entry.tags {
		if keys := c.tags[tag]; keys != nil {
			delete(keys, key)
			if len(keys) == 0 {
				delete(c.tags, tag)
			}
		}
	}
}
