package screen

import (
	"strconv"
	"strings"
	"sync"

	"github.com/newthinker/premia/internal/core"
)

// cacheKey identifies one scan input tuple by value. Two requests with
// the same strategy, moneyness, bounds, ticker set and expiration set
// share one cache slot; any change produces a new key.
type cacheKey struct {
	strategy    core.Strategy
	moneyness   float64
	minPrice    float64
	maxPrice    float64
	tickers     string
	expirations string
}

func keyFor(req core.ScanRequest) cacheKey {
	exps := make([]string, len(req.Expirations))
	for i, e := range req.Expirations {
		exps[i] = strconv.FormatInt(e.Unix(), 10)
	}
	return cacheKey{
		strategy:    req.Strategy,
		moneyness:   req.MoneynessPct,
		minPrice:    req.MinPrice,
		maxPrice:    req.MaxPrice,
		tickers:     strings.Join(req.Tickers, ","),
		expirations: strings.Join(exps, ","),
	}
}

// Cache memoizes scan results for the lifetime of the process. There is
// no expiry policy; new inputs produce a new key and miss.
type Cache struct {
	mu      sync.RWMutex
	entries map[cacheKey][]core.ResultRow
}

// NewCache creates an empty scan result cache
func NewCache() *Cache {
	return &Cache{entries: make(map[cacheKey][]core.ResultRow)}
}

// Get returns the cached rows for a request, if present
func (c *Cache) Get(req core.ScanRequest) ([]core.ResultRow, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rows, ok := c.entries[keyFor(req)]
	if !ok {
		return nil, false
	}
	out := make([]core.ResultRow, len(rows))
	copy(out, rows)
	return out, true
}

// Put stores the rows for a request
func (c *Cache) Put(req core.ScanRequest, rows []core.ResultRow) {
	stored := make([]core.ResultRow, len(rows))
	copy(stored, rows)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[keyFor(req)] = stored
}

// Len returns the number of cached input tuples
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
