// Package fetchcache is a key-scoped request/response cache.  Values
// never auto-expire; they are valid until overwritten.  Concurrent
// fetches for one key are collapsed into a single backend call.
package fetchcache

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// FetchFunc loads the value for a key from the backend.
type FetchFunc func(ctx context.Context) (interface{}, error)

// Cache is safe for concurrent use.  It is meant to be constructed once
// and passed by reference to everything that needs it.
type Cache struct {
	group singleflight.Group

	mu      sync.Mutex
	values  map[string]interface{}
	subs    map[string]map[int]func(interface{})
	nextSub int
}

func New() *Cache {
	return &Cache{
		values: map[string]interface{}{},
		subs:   map[string]map[int]func(interface{}){},
	}
}

// Get returns the cached value for key, or runs fetch to populate it.
// Concurrent Gets for the same uncached key share one fetch.  A fetch
// error is returned to every waiter and nothing is cached.
func (c *Cache) Get(ctx context.Context, key string, fetch FetchFunc) (interface{}, error) {
	c.mu.Lock()
	if v, ok := c.values[key]; ok {
		c.mu.Unlock()
		return v, nil
	}
	c.mu.Unlock()

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		// A Set may have landed between the check above and here.
		c.mu.Lock()
		if v, ok := c.values[key]; ok {
			c.mu.Unlock()
			return v, nil
		}
		c.mu.Unlock()

		v, err := fetch(ctx)
		if err != nil {
			return nil, err
		}

		c.Set(key, v)
		return v, nil
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Peek returns the cached value without triggering a fetch.
func (c *Cache) Peek(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.values[key]
	return v, ok
}

// Set overwrites the value for key and notifies that key's subscribers.
// Updates are whole-value replacements, so readers never observe a
// partially written value.
func (c *Cache) Set(key string, v interface{}) {
	c.mu.Lock()
	c.values[key] = v
	var fns []func(interface{})
	for _, fn := range c.subs[key] {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(v)
	}
}

// Invalidate drops the value for key so the next Get fetches again.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.values, key)
}

// Subscribe registers fn to run on every Set of key.  The returned func
// removes the registration; calling it more than once is safe.
func (c *Cache) Subscribe(key string, fn func(interface{})) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.subs[key] == nil {
		c.subs[key] = map[int]func(interface{}){}
	}
	id := c.nextSub
	c.nextSub++
	c.subs[key][id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs[key], id)
			c.mu.Unlock()
		})
	}
}
