// Package sigcache caches aggregation results keyed by an order-independent
// structural signature of the book collection. Re-fetching the same logical
// collection in a different order yields the same signature, so reordering
// never invalidates the cache; any structural change does.
package sigcache

import (
	"fmt"
	"sort"
	"sync"

	"github.com/mitchellh/hashstructure/v2"

	"github.com/julianstephens/readlit/internal/models"
)

// Signature is the combined structural hash of a collection. XOR and sum are
// both order-independent accumulators; carrying the pair makes collisions
// from swapped contributions much less likely than either alone.
type Signature struct {
	XOR uint64
	Sum uint64
}

// bookDigest is the exact set of fields a book contributes to the signature.
// Read bounds stay at day resolution so sub-day jitter cannot invalidate the
// cache, and sessions contribute only their count: full session content is
// excluded to bound cost, so callers must invalidate through a coarser path
// when sessions change.
type bookDigest struct {
	ID           string
	Status       string
	ReadFrom     string
	ReadTo       string
	PageCount    int
	Author       string
	Publisher    string
	Language     string
	MainCategory string
	Ratings      [6]int
	Categories   []string
	Tags         []string
	SessionCount int
}

// Compute derives the collection signature. sessionCounts maps book ID to
// its session count; missing entries count as zero.
func Compute(books []models.Book, sessionCounts map[string]int) (Signature, error) {
	var sig Signature
	for _, b := range books {
		h, err := bookHash(b, sessionCounts[b.ID])
		if err != nil {
			return Signature{}, fmt.Errorf("hashing book %s: %w", b.ID, err)
		}
		sig.XOR ^= h
		sig.Sum += h
	}
	return sig, nil
}

func bookHash(b models.Book, sessionCount int) (uint64, error) {
	d := bookDigest{
		ID:           b.ID,
		Status:       string(b.Status),
		PageCount:    b.PageCount,
		Author:       b.Author,
		Publisher:    b.Publisher,
		Language:     b.Language,
		MainCategory: b.MainCategory,
		Ratings:      b.Ratings.Criteria(),
		Categories:   sortedCopy(b.Categories),
		Tags:         sortedCopy(b.Tags),
		SessionCount: sessionCount,
	}
	if b.ReadFrom != nil {
		d.ReadFrom = *b.ReadFrom
	}
	if b.ReadTo != nil {
		d.ReadTo = *b.ReadTo
	}
	return hashstructure.Hash(d, hashstructure.FormatV2, nil)
}

func sortedCopy(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	sort.Strings(out)
	return out
}

// Params identify one cached aggregation independent of the data signature.
type Params struct {
	Scope  string
	Year   int
	Metric string
}

type entry struct {
	sig   Signature
	value any
}

// Cache holds at most one result per parameter set. A signature mismatch
// replaces the whole entry; there is no partial or incremental invalidation.
type Cache struct {
	mu      sync.Mutex
	entries map[Params]entry
}

func NewCache() *Cache {
	return &Cache{entries: make(map[Params]entry)}
}

// Get returns the cached value for the parameters when the signature still
// matches.
func (c *Cache) Get(p Params, sig Signature) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[p]
	if !ok || e.sig != sig {
		return nil, false
	}
	return e.value, true
}

// Put stores a freshly computed value, replacing any previous entry for the
// parameters.
func (c *Cache) Put(p Params, sig Signature, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[p] = entry{sig: sig, value: value}
}

// GetOrCompute returns the cached value on a signature match, otherwise runs
// compute, stores the result, and returns it.
func (c *Cache) GetOrCompute(p Params, sig Signature, compute func() (any, error)) (any, error) {
	if v, ok := c.Get(p, sig); ok {
		return v, nil
	}
	v, err := compute()
	if err != nil {
		return nil, err
	}
	c.Put(p, sig, v)
	return v, nil
}

// Invalidate drops every cached entry. This is the coarser invalidation path
// callers use after session mutations, which the signature deliberately does
// not observe beyond counts.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[Params]entry)
}
