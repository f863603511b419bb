package cache

import (
	"context"
	"sync"
	"time"
)

type CacheEntry struct {
	Value      interface{}
	Expiration time.Time
	Version    int64
}

type CacheConfig struct {
	DefaultTTL      time.Duration
	MaxSize         int
	CleanupInterval time.Duration
}

func DefaultConfig() CacheConfig {
	return CacheConfig{
		DefaultTTL:      5 * time.Minute,
		MaxSize:         1000,
		CleanupInterval: 10 * time.Minute,
	}
}

type Cache struct {
	mu      sync.RWMutex
	entries map[string]*CacheEntry
	config  CacheConfig
	version int64
}

func NewCache(cfg CacheConfig) *Cache {
	if cfg.DefaultTTL == 0 {
		cfg.DefaultTTL = 5 * time.Minute
	}
	if cfg.MaxSize == 0 {
		cfg.MaxSize = 1000
	}
	if cfg.CleanupInterval == 0 {
		cfg.CleanupInterval = 10 * time.Minute
	}

	c := &Cache{
		entries: make(map[string]*CacheEntry),
		config:  cfg,
	}

	go c.startCleanup()
	return c
}

func (c *Cache) startCleanup() {
	ticker := time.NewTicker(c.config.CleanupInterval)
	defer ticker.Stop()

	for range ticker.C {
		c.cleanup()
	}
}

func (c *Cache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	expired := 0
	size := len(c.entries)

	for key, entry := range c.entries {
		if now.After(entry.Expiration) {
			delete(c.entries, key)
			expired++
		}
	}

	if expired > 0 || size > c.config.MaxSize {
		size = len(c.entries)
	}
}

func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}

	if time.Now().After(entry.Expiration) {
		return nil, false
	}

	return entry.Value, true
}

func (c *Cache) GetVersion(key string) (interface{}, int64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, 0, false
	}

	if time.Now().After(entry.Expiration) {
		return nil, 0, false
	}

	return entry.Value, entry.Version, true
}

func (c *Cache) Set(key string, value interface{}, ttl time.Duration) {
	if ttl == 0 {
		ttl = c.config.DefaultTTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = &CacheEntry{
		Value:      value,
		Expiration: time.Now().Add(ttl),
		Version:    c.version,
	}
}

func (c *Cache) SetVersioned(key string, value interface{}, ttl time.Duration) {
	if ttl == 0 {
		ttl = c.config.DefaultTTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = &CacheEntry{
		Value:      value,
		Expiration: time.Now().Add(ttl),
		Version:    c.version,
	}
}

func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
}

func (c *Cache) InvalidatePattern(pattern string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.entries {
		if len(key) >= len(pattern) && key[:len(pattern)] == pattern {
			delete(c.entries, key)
		}
	}
}

func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*CacheEntry)
}

func (c *Cache) InvalidateVersion() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.version++
	c.entries = make(map[string]*CacheEntry)
}

func (c *Cache) InvalidateByVersion(targetVersion int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if targetVersion >= c.version {
		return
	}

	c.version = targetVersion
	c.entries = make(map[string]*CacheEntry)
}

func (c *Cache) GetCurrentVersion() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.version
}

func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

// DashboardCache holds per-portfolio dashboard snapshots. Snapshots are
// cheap to recompute but expensive to assemble (schedule + budget + variance
// rollups in one call), so a short fixed TTL is enough to absorb repeated
// polling from the portfolio overview screen.
type DashboardCache struct {
	cache     *Cache
	keyPrefix string
}

// NewDashboardCache builds a dashboard snapshot cache with a 60 second TTL.
func NewDashboardCache() *DashboardCache {
	return &DashboardCache{
		cache:     NewCache(CacheConfig{DefaultTTL: 60 * time.Second}),
		keyPrefix: "dashboard:",
	}
}

func (c *DashboardCache) Get(portfolioID string) (interface{}, bool) {
	return c.cache.Get(c.keyPrefix + portfolioID)
}

func (c *DashboardCache) Set(portfolioID string, snapshot interface{}) {
	c.cache.Set(c.keyPrefix+portfolioID, snapshot, 0)
}

func (c *DashboardCache) Invalidate(portfolioID string) {
	c.cache.Invalidate(c.keyPrefix + portfolioID)
}

func (c *DashboardCache) InvalidateAll() {
	c.cache.InvalidatePattern(c.keyPrefix)
}

// RAGResponseCache caches help-chat answers keyed by the (query, user,
// context, language) tuple the caller assembles into a single key. TTL
// scales with the response's confidence score: a well-grounded answer
// is worth serving stale for longer than a shaky one.
type RAGResponseCache struct {
	cache     *Cache
	keyPrefix string
}

// NewRAGResponseCache builds a help-chat response cache.
func NewRAGResponseCache() *RAGResponseCache {
	return &RAGResponseCache{
		cache:     NewCache(CacheConfig{DefaultTTL: 5 * time.Minute}),
		keyPrefix: "rag:",
	}
}

func (c *RAGResponseCache) Get(key string) (interface{}, bool) {
	return c.cache.Get(c.keyPrefix + key)
}

// Set stores a response with a TTL between 5 and 10 minutes, scaled
// linearly by confidence (confidence is clamped to [0, 1]).
func (c *RAGResponseCache) Set(key string, value interface{}, confidence float64) {
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}
	ttl := 5*time.Minute + time.Duration(confidence*float64(5*time.Minute))
	c.cache.Set(c.keyPrefix+key, value, ttl)
}

func (c *RAGResponseCache) InvalidateAll() {
	c.cache.InvalidatePattern(c.keyPrefix)
}

// ConfigTestCache caches the result of a financial-system connectivity test
// (ERP/accounting adapter credential check) for 5 minutes so the settings
// screen doesn't re-trigger a live round trip on every render.
type ConfigTestCache struct {
	cache     *Cache
	keyPrefix string
}

// NewConfigTestCache builds a connection-test result cache with a 5 minute TTL.
func NewConfigTestCache() *ConfigTestCache {
	return &ConfigTestCache{
		cache:     NewCache(CacheConfig{DefaultTTL: 5 * time.Minute}),
		keyPrefix: "configtest:",
	}
}

func (c *ConfigTestCache) Get(systemID string) (interface{}, bool) {
	return c.cache.Get(c.keyPrefix + systemID)
}

func (c *ConfigTestCache) Set(systemID string, result interface{}) {
	c.cache.Set(c.keyPrefix+systemID, result, 0)
}

func (c *ConfigTestCache) Invalidate(systemID string) {
	c.cache.Invalidate(c.keyPrefix + systemID)
}

type TTLCache struct {
	cache     *Cache
	keyPrefix string
}

func NewTTLCache(ttl time.Duration) *TTLCache {
	return &TTLCache{
		cache:     NewCache(CacheConfig{DefaultTTL: ttl}),
		keyPrefix: "ttl:",
	}
}

func (c *TTLCache) Get(ctx context.Context, key string) (interface{}, bool) {
	return c.cache.Get(c.keyPrefix + key)
}

func (c *TTLCache) Set(ctx context.Context, key string, value interface{}) {
	c.cache.Set(c.keyPrefix+key, value, 0)
}

func (c *TTLCache) Delete(ctx context.Context, key string) {
	c.cache.Invalidate(c.keyPrefix + key)
}

func (c *TTLCache) InvalidateAll() {
	c.cache.InvalidatePattern(c.keyPrefix)
}
