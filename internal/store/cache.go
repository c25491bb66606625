package store

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Cache is a byte cache with per-entry TTL
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

// ErrCacheMiss is returned when a key is not found in the cache
type ErrCacheMiss struct {
	Key string
}

func (e ErrCacheMiss) Error() string {
	return "cache miss: " + e.Key
}

// IsCacheMiss checks if an error is a cache miss
func IsCacheMiss(err error) bool {
	var miss ErrCacheMiss
	return errors.As(err, &miss)
}

// MemoryCache is an in-process Cache. Expired entries are dropped on read
// and by a background sweep.
type MemoryCache struct {
	data   sync.Map
	prefix string
	cancel context.CancelFunc
}

type memoryEntry struct {
	value      []byte
	expiration time.Time
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiration.IsZero() && now.After(e.expiration)
}

// NewMemoryCache creates a memory cache and starts its sweeper. Call Close
// to stop it.
func NewMemoryCache(prefix string, sweep time.Duration) *MemoryCache {
	ctx, cancel := context.WithCancel(context.Background())
	mc := &MemoryCache{prefix: prefix, cancel: cancel}
	if sweep > 0 {
		go mc.sweep(ctx, sweep)
	}
	return mc
}

func (m *MemoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	full := m.prefix + key
	value, ok := m.data.Load(full)
	if !ok {
		return nil, ErrCacheMiss{Key: key}
	}
	entry := value.(memoryEntry)
	if entry.expired(time.Now()) {
		m.data.Delete(full)
		return nil, ErrCacheMiss{Key: key}
	}
	return entry.value, nil
}

func (m *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	entry := memoryEntry{value: value}
	if ttl > 0 {
		entry.expiration = time.Now().Add(ttl)
	}
	m.data.Store(m.prefix+key, entry)
	return nil
}

func (m *MemoryCache) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.data.Delete(m.prefix + key)
	return nil
}

func (m *MemoryCache) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.data.Range(func(key, _ any) bool {
		m.data.Delete(key)
		return true
	})
	return nil
}

// Close stops the sweeper
func (m *MemoryCache) Close() error {
	m.cancel()
	return nil
}

func (m *MemoryCache) sweep(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			m.data.Range(func(key, value any) bool {
				if value.(memoryEntry).expired(now) {
					m.data.Delete(key)
				}
				return true
			})
		}
	}
}

// RedisCache is a Cache backed by redis
type RedisCache struct {
	client *redis.Client
	prefix string
}

// DialRedis connects to addr and pings it
func DialRedis(ctx context.Context, addr, prefix string) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return NewRedisCache(client, prefix), nil
}

// NewRedisCache wraps an existing client
func NewRedisCache(client *redis.Client, prefix string) *RedisCache {
	return &RedisCache{client: client, prefix: prefix}
}

func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss{Key: key}
		}
		return nil, err
	}
	return value, nil
}

func (r *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.client.Set(ctx, r.prefix+key, value, ttl).Err()
}

func (r *RedisCache) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.prefix+key).Err()
}

// Clear removes every key under the cache prefix
func (r *RedisCache) Clear(ctx context.Context) error {
	iter := r.client.Scan(ctx, 0, r.prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

// Close closes the redis connection
func (r *RedisCache) Close() error {
	return r.client.Close()
}

// Cached puts a Cache in front of a Documents store. Reads fill the cache;
// writes invalidate it. Cache failures are logged and never fail a call.
type Cached struct {
	docs  Documents
	cache Cache
	ttl   time.Duration
	log   *zap.Logger
}

// NewCached wraps docs with cache
func NewCached(docs Documents, cache Cache, ttl time.Duration, log *zap.Logger) *Cached {
	if log == nil {
		log = zap.NewNop()
	}
	return &Cached{docs: docs, cache: cache, ttl: ttl, log: log}
}

func idKey(id uuid.UUID) string  { return "doc:id:" + id.String() }
func nameKey(name string) string { return "doc:name:" + name }

func (c *Cached) load(ctx context.Context, key string) (*Document, bool) {
	raw, err := c.cache.Get(ctx, key)
	if err != nil {
		if !IsCacheMiss(err) {
			c.log.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		c.log.Warn("dropping undecodable cache entry", zap.String("key", key), zap.Error(err))
		c.cache.Delete(ctx, key)
		return nil, false
	}
	return &doc, true
}

func (c *Cached) store(ctx context.Context, doc *Document) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return
	}
	for _, key := range []string{idKey(doc.ID), nameKey(doc.Name)} {
		if err := c.cache.Set(ctx, key, raw, c.ttl); err != nil {
			c.log.Warn("cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
}

// invalidate drops the id entry and every name entry the document may be
// cached under
func (c *Cached) invalidate(ctx context.Context, id uuid.UUID, names ...string) {
	if old, ok := c.load(ctx, idKey(id)); ok {
		names = append(names, old.Name)
	}
	keys := []string{idKey(id)}
	for _, name := range names {
		keys = append(keys, nameKey(name))
	}
	for _, key := range keys {
		if err := c.cache.Delete(ctx, key); err != nil {
			c.log.Warn("cache invalidation failed", zap.String("key", key), zap.Error(err))
		}
	}
}

func (c *Cached) Create(ctx context.Context, doc *Document) error {
	if err := c.docs.Create(ctx, doc); err != nil {
		return err
	}
	c.invalidate(ctx, doc.ID, doc.Name)
	return nil
}

func (c *Cached) Save(ctx context.Context, doc *Document) error {
	if doc.ID != uuid.Nil {
		c.invalidate(ctx, doc.ID, doc.Name)
	}
	if err := c.docs.Save(ctx, doc); err != nil {
		return err
	}
	c.invalidate(ctx, doc.ID, doc.Name)
	return nil
}

func (c *Cached) Get(ctx context.Context, id uuid.UUID) (*Document, error) {
	if doc, ok := c.load(ctx, idKey(id)); ok {
		return doc, nil
	}
	doc, err := c.docs.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	c.store(ctx, doc)
	return doc, nil
}

func (c *Cached) GetByName(ctx context.Context, name string) (*Document, error) {
	if doc, ok := c.load(ctx, nameKey(name)); ok {
		return doc, nil
	}
	doc, err := c.docs.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	c.store(ctx, doc)
	return doc, nil
}

// List always reads through to the store
func (c *Cached) List(ctx context.Context) ([]Document, error) {
	return c.docs.List(ctx)
}

func (c *Cached) Delete(ctx context.Context, id uuid.UUID) error {
	c.invalidate(ctx, id)
	return c.docs.Delete(ctx, id)
}

func (c *Cached) Replace(ctx context.Context, oldID uuid.UUID, doc *Document) error {
	c.invalidate(ctx, oldID, doc.Name)
	if err := c.docs.Replace(ctx, oldID, doc); err != nil {
		return err
	}
	c.invalidate(ctx, doc.ID, doc.Name)
	return nil
}
