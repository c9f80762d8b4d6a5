package zmanim

import "sync"

// dateCache is a small date-keyed cache. Keys are ISO calendar dates, so
// lexical order is chronological order and eviction is a string compare.
// It is bounded in practice by the trailing-window eviction the daily
// refresh performs.
type dateCache[V any] struct {
	mu      sync.Mutex
	entries map[string]V
}

func newDateCache[V any]() *dateCache[V] {
	return &dateCache[V]{entries: make(map[string]V)}
}

func (c *dateCache[V]) get(day string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[day]
	return v, ok
}

func (c *dateCache[V]) put(day string, v V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[day] = v
}

// evictBefore removes every entry strictly older than cutoffDay and returns
// how many were dropped.
func (c *dateCache[V]) evictBefore(cutoffDay string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for day := range c.entries {
		if day < cutoffDay {
			delete(c.entries, day)
			n++
		}
	}
	return n
}

func (c *dateCache[V]) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
