// Package cache provides the compiled-pattern cache.
//
// Entries are keyed by pattern text plus compile options and ordered by
// insertion. The cache tracks the total program size of its entries and
// evicts the oldest insertions until a new entry fits the byte budget. Hits
// do not refresh an entry's position: eviction is FIFO, not LRU.
package cache

import (
	"container/list"
	"sync"

	"github.com/coregx/bregex/bytecode"
)

// DefaultBudget is the byte budget of the process-wide cache.
const DefaultBudget = 1 << 20

// Key identifies a compiled pattern. Pattern text is compared byte for byte
// and Options by value; nothing is normalized.
type Key struct {
	Pattern string
	Options bytecode.Options

	// Build distinguishes programs of the same pattern built under different
	// compiler or prefilter settings.
	Build uint64
}

// Value is anything the cache can account for.
type Value interface {
	// ByteSize returns the size charged against the budget.
	ByteSize() int
}

// Logger receives cache activity. It matches the Debugf method of common
// leveled loggers.
type Logger interface {
	Debugf(format string, args ...any)
}

// Cache stores compiled patterns. Implementations are safe for concurrent use.
type Cache interface {
	// Lookup returns the value stored under key.
	Lookup(key Key) (Value, bool)

	// Insert stores v under key, evicting the oldest entries until it fits.
	// It returns false when v was not stored, either because it is larger
	// than the whole budget or because key is already present.
	Insert(key Key, v Value) bool

	// EvictOldest removes the oldest entry and reports whether there was one.
	EvictOldest() bool

	// Len returns the number of entries.
	Len() int

	// Size returns the total byte size of the entries.
	Size() int

	// Purge removes every entry.
	Purge()
}

// Options configures a FIFO cache.
type Options struct {
	// Budget is the maximum total byte size of the entries.
	// Default: DefaultBudget
	Budget int

	// Logger, when set, is told about evictions and skipped entries.
	Logger Logger
}

type entry struct {
	key   Key
	value Value
	size  int
}

// FIFO is a Cache bounded by total byte size with first-in first-out eviction.
type FIFO struct {
	mu      sync.Mutex
	order   *list.List // oldest at the front
	entries map[Key]*list.Element
	size    int
	budget  int
	log     Logger
}

// NewFIFO creates an empty FIFO cache.
func NewFIFO(opts Options) *FIFO {
	if opts.Budget <= 0 {
		opts.Budget = DefaultBudget
	}
	return &FIFO{
		order:   list.New(),
		entries: make(map[Key]*list.Element),
		budget:  opts.Budget,
		log:     opts.Logger,
	}
}

// Lookup implements Cache.
func (c *FIFO) Lookup(key Key) (Value, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	return e.Value.(*entry).value, true
}

// Insert implements Cache.
func (c *FIFO) Insert(key Key, v Value) bool {
	size := v.ByteSize()

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; ok {
		return false
	}
	if size > c.budget {
		c.debugf("cache: not storing %q (%s): %d bytes exceeds budget %d", key.Pattern, key.Options, size, c.budget)
		return false
	}
	for c.size+size > c.budget && c.evictOldest() {
	}
	c.entries[key] = c.order.PushBack(&entry{key: key, value: v, size: size})
	c.size += size
	return true
}

// EvictOldest implements Cache.
func (c *FIFO) EvictOldest() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.evictOldest()
}

func (c *FIFO) evictOldest() bool {
	front := c.order.Front()
	if front == nil {
		return false
	}
	e := front.Value.(*entry)
	c.order.Remove(front)
	delete(c.entries, e.key)
	c.size -= e.size
	c.debugf("cache: evicted %q (%s), %d bytes", e.key.Pattern, e.key.Options, e.size)
	return true
}

// Len implements Cache.
func (c *FIFO) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Size implements Cache.
func (c *FIFO) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

// Budget returns the byte budget.
func (c *FIFO) Budget() int {
	return c.budget
}

// Keys returns the keys from oldest to newest.
func (c *FIFO) Keys() []Key {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]Key, 0, c.order.Len())
	for e := c.order.Front(); e != nil; e = e.Next() {
		keys = append(keys, e.Value.(*entry).key)
	}
	return keys
}

// Purge implements Cache.
func (c *FIFO) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order.Init()
	clear(c.entries)
	c.size = 0
}

func (c *FIFO) debugf(format string, args ...any) {
	if c.log != nil {
		c.log.Debugf(format, args...)
	}
}

// Nop is a Cache that stores nothing.
type Nop struct{}

func (Nop) Lookup(Key) (Value, bool) { return nil, false }
func (Nop) Insert(Key, Value) bool   { return false }
func (Nop) EvictOldest() bool        { return false }
func (Nop) Len() int                 { return 0 }
func (Nop) Size() int                { return 0 }
func (Nop) Purge()                   {}

var (
	defaultOnce  sync.Once
	defaultCache *FIFO
)

// Default returns the process-wide cache with a DefaultBudget budget.
func Default() *FIFO {
	defaultOnce.Do(func() {
		defaultCache = NewFIFO(Options{})
	})
	return defaultCache
}
