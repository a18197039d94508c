package cache

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/streamrail/ua-classifier/uaparser"
)

type memoryEntry struct {
	ua      string
	res     *uaparser.Result
	expires time.Time
}

// Memory is a thread-safe in-process LRU cache. When it reaches its
// capacity the least recently used result is evicted.
type Memory struct {
	capacity int
	ttl      time.Duration
	now      func() time.Time

	mu       sync.Mutex
	items    map[string]*list.Element
	eviction *list.List
}

// NewMemory creates a cache holding up to capacity results for ttl each.
// A zero ttl keeps results until they are evicted. The capacity must be
// positive, otherwise it panics.
func NewMemory(capacity int, ttl time.Duration) *Memory {
	if capacity <= 0 {
		panic("memory cache capacity must be positive")
	}
	return &Memory{
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
		items:    make(map[string]*list.Element),
		eviction: list.New(),
	}
}

func (c *Memory) Get(_ context.Context, ua string) (*uaparser.Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[ua]
	if !ok {
		return nil, ErrMiss
	}
	entry := elem.Value.(*memoryEntry)
	if !entry.expires.IsZero() && c.now().After(entry.expires) {
		c.removeElement(elem)
		return nil, ErrMiss
	}
	c.eviction.MoveToFront(elem)
	return entry.res, nil
}

func (c *Memory) Set(_ context.Context, ua string, res *uaparser.Result) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var expires time.Time
	if c.ttl > 0 {
		expires = c.now().Add(c.ttl)
	}

	if elem, ok := c.items[ua]; ok {
		c.eviction.MoveToFront(elem)
		entry := elem.Value.(*memoryEntry)
		entry.res = res
		entry.expires = expires
		return nil
	}

	c.items[ua] = c.eviction.PushFront(&memoryEntry{ua: ua, res: res, expires: expires})
	if c.eviction.Len() > c.capacity {
		if oldest := c.eviction.Back(); oldest != nil {
			c.removeElement(oldest)
		}
	}
	return nil
}

// Len returns the number of stored results, expired ones included.
func (c *Memory) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.eviction.Len()
}

func (c *Memory) Ping(context.Context) error { return nil }

func (c *Memory) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*list.Element)
	c.eviction.Init()
	return nil
}

func (c *Memory) removeElement(elem *list.Element) {
	c.eviction.Remove(elem)
	delete(c.items, elem.Value.(*memoryEntry).ua)
}
