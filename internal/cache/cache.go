// Package cache содержит кэш результатов запросов с явной инвалидацией.
package cache

import (
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/mmeshcher/san-gateway/internal/metrics"
)

// Ключи запросов. Персональные ключи дополняются идентификатором сессии.
const (
	KeyAvailableSans  = "availableSan"
	KeyBanks          = "banks"
	KeyAccount        = "myAccount"
	KeyPaymentMethods = "paymentMethods"
)

// SessionKey строит ключ запроса, привязанный к сессии.
func SessionKey(base, sessionID string) string {
	return base + ":" + sessionID
}

// Cache представляет LRU-кэш с ограниченным временем жизни записей.
type Cache struct {
	lru *expirable.LRU[string, any]
}

// New создаёт кэш на size записей со временем жизни ttl.
func New(size int, ttl time.Duration) *Cache {
	return &Cache{
		lru: expirable.NewLRU[string, any](size, nil, ttl),
	}
}

// Get возвращает значение по ключу.
func (c *Cache) Get(key string) (any, bool) {
	v, ok := c.lru.Get(key)
	metrics.RecordCacheLookup(ok)
	return v, ok
}

// Set сохраняет значение.
func (c *Cache) Set(key string, value any) {
	c.lru.Add(key, value)
}

// Invalidate удаляет значение по ключу.
func (c *Cache) Invalidate(key string) {
	c.lru.Remove(key)
}

// InvalidatePrefix удаляет все ключи с указанным префиксом.
func (c *Cache) InvalidatePrefix(prefix string) {
	for _, k := range c.lru.Keys() {
		if strings.HasPrefix(k, prefix) {
			c.lru.Remove(k)
		}
	}
}

// InvalidateSession удаляет все ключи сессии.
func (c *Cache) InvalidateSession(sessionID string) {
	suffix := ":" + sessionID
	for _, k := range c.lru.Keys() {
		if strings.HasSuffix(k, suffix) {
			c.lru.Remove(k)
		}
	}
}

// Lookup выполняет типизированное чтение из кэша.
func Lookup[T any](c *Cache, key string) (T, bool) {
	var zero T
	v, ok := c.Get(key)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	if !ok {
		return zero, false
	}
	return t, true
}
