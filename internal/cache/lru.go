package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// LRUCache keeps per-account views in process memory. An entry lives until
// its TTL passes, the account is invalidated, or it is the least recently
// read entry when the cache is full.
//
// Instances behind a load balancer each hold their own LRUCache; they learn
// about each other's writes from the ledger event stream. RedisCache is the
// shared alternative.
type LRUCache[T any] struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	now      func() time.Time

	index map[string]*list.Element
	// order runs from most to least recently used.
	order *list.List
}

type entry[T any] struct {
	key     string
	view    T
	expires time.Time
}

func (e *entry[T]) expired(now time.Time) bool {
	return now.After(e.expires)
}

// NewLRUCache holds at most capacity views, each for ttl. A capacity below
// one is treated as one.
func NewLRUCache[T any](capacity int, ttl time.Duration) *LRUCache[T] {
	return &LRUCache[T]{
		capacity: max(capacity, 1),
		ttl:      ttl,
		now:      time.Now,
		index:    make(map[string]*list.Element),
		order:    list.New(),
	}
}

func (c *LRUCache[T]) Get(_ context.Context, key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	elem, ok := c.index[key]
	if !ok {
		return zero, false
	}
	e := elem.Value.(*entry[T])
	if e.expired(c.now()) {
		c.drop(elem)
		return zero, false
	}
	c.order.MoveToFront(elem)
	return e.view, true
}

// Set stores view under key and restarts its TTL.
func (c *LRUCache[T]) Set(_ context.Context, key string, view T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := &entry[T]{key: key, view: view, expires: c.now().Add(c.ttl)}
	if elem, ok := c.index[key]; ok {
		elem.Value = e
		c.order.MoveToFront(elem)
		return
	}

	c.index[key] = c.order.PushFront(e)
	for c.order.Len() > c.capacity {
		c.drop(c.order.Back())
	}
}

func (c *LRUCache[T]) Delete(_ context.Context, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.index[key]; ok {
		c.drop(elem)
	}
}

// drop unlinks elem; the caller holds mu.
func (c *LRUCache[T]) drop(elem *list.Element) {
	delete(c.index, elem.Value.(*entry[T]).key)
	c.order.Remove(elem)
}

// CleanExpired drops every expired view and reports how many went. Reads
// reorder entries without extending their TTL, so the whole list is walked.
func (c *LRUCache[T]) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for elem := c.order.Front(); elem != nil; {
		next := elem.Next()
		if elem.Value.(*entry[T]).expired(now) {
			c.drop(elem)
			removed++
		}
		elem = next
	}
	return removed
}

// Size is the number of views held, expired ones included until cleaned.
func (c *LRUCache[T]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.index)
}
