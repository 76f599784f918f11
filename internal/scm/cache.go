// ABOUTME: In-memory caching for alert lookups to reduce source-control API calls.
// ABOUTME: Uses TTL-based expiration to balance data freshness with API rate limits.

package scm

import (
	"sync"
	"time"

	"github.com/jfeddern/RiskRelay/internal/types"

	"github.com/sirupsen/logrus"
)

type cacheEntry struct {
	Alerts    []types.Vulnerability
	ExpiresAt time.Time
}

// AlertCache memoizes alert lookups keyed by "owner/repo@ref"
type AlertCache struct {
	cache  map[string]*cacheEntry
	mutex  sync.RWMutex
	ttl    time.Duration
	logger *logrus.Logger
}

// NewAlertCache creates an alert cache with the given TTL and starts its
// background cleanup
func NewAlertCache(ttl time.Duration, logger *logrus.Logger) *AlertCache {
	cache := &AlertCache{
		cache:  make(map[string]*cacheEntry),
		ttl:    ttl,
		logger: logger,
	}

	go cache.startCleanup()

	return cache
}

// Get returns the cached alerts for key, or (nil, false) on a miss.
// A cached empty list is a valid hit; absence of alerts is worth caching.
func (c *AlertCache) Get(key string) ([]types.Vulnerability, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	entry, exists := c.cache[key]
	if !exists {
		return nil, false
	}

	// Expired entries are skipped here and removed by cleanup, which
	// avoids taking a write lock in the read path
	if time.Now().After(entry.ExpiresAt) {
		return nil, false
	}

	c.logger.WithField("key", key).Debug("Alert cache hit")
	return entry.Alerts, true
}

// Set stores alerts for key with the configured TTL
func (c *AlertCache) Set(key string, alerts []types.Vulnerability) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.cache[key] = &cacheEntry{
		Alerts:    alerts,
		ExpiresAt: time.Now().Add(c.ttl),
	}

	c.logger.WithFields(logrus.Fields{
		"key":    key,
		"alerts": len(alerts),
	}).Debug("Cached alert lookup")
}

func (c *AlertCache) startCleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		c.cleanup()
	}
}

func (c *AlertCache) cleanup() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := time.Now()
	expiredCount := 0

	for key, entry := range c.cache {
		if now.After(entry.ExpiresAt) {
			delete(c.cache, key)
			expiredCount++
		}
	}

	if expiredCount > 0 {
		c.logger.WithFields(logrus.Fields{
			"expired_entries":   expiredCount,
			"remaining_entries": len(c.cache),
		}).Debug("Alert cache cleanup completed")
	}
}

// Stats reports total and expired entry counts
func (c *AlertCache) Stats() (total int, expired int) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	now := time.Now()
	total = len(c.cache)

	for _, entry := range c.cache {
		if now.After(entry.ExpiresAt) {
			expired++
		}
	}

	return total, expired
}
