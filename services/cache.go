package services

import (
	"errors"
	"log"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
)

// memcached rejects longer keys.
const maxMemcacheKey = 250

// MemcacheCache stores public user profiles for a short TTL.
type MemcacheCache struct {
	client *memcache.Client
	ttl    int32
}

func NewMemcacheCache(addr string, ttl time.Duration) *MemcacheCache {
	return &MemcacheCache{
		client: memcache.New(addr),
		ttl:    int32(ttl / time.Second),
	}
}

func (c *MemcacheCache) Get(key string) ([]byte, bool) {
	if len(key) > maxMemcacheKey {
		return nil, false
	}
	item, err := c.client.Get(key)
	if err != nil {
		if !errors.Is(err, memcache.ErrCacheMiss) {
			log.Printf("[Cache] get %s failed: %v", key, err)
		}
		return nil, false
	}
	return item.Value, true
}

func (c *MemcacheCache) Set(key string, value []byte) {
	if len(key) > maxMemcacheKey {
		return
	}
	err := c.client.Set(&memcache.Item{
		Key:        key,
		Value:      value,
		Expiration: c.ttl,
	})
	if err != nil {
		log.Printf("[Cache] set %s failed: %v", key, err)
	}
}
