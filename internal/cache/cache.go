// Package cache implements the Engine's parsed-AST cache (spec §3
// "SourceKey"/"Script cache entry", §4.1 "Parse + cache"): a bounded,
// concurrent-safe map from a (feature-set, source-text) identity to a
// parsed *ast.Script, with concurrent identical parses coalesced through
// golang.org/x/sync/singleflight the way the teacher leans on the same
// package wherever concurrent callers might duplicate work.
package cache

import (
	"fmt"
	"sync"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/singleflight"

	"github.com/jexl-go/jexl/internal/ast"
)

// SourceKey identifies one cache entry: a feature set plus the exact
// source text parsed under it (spec §3). Two keys are equal iff both
// fields match exactly — no source normalization is performed here,
// mirroring the source's "normalized_source_text" being the raw text
// itself for this engine (no whitespace folding defined anywhere else
// in the spec).
type SourceKey struct {
	Features ast.Features
	Source   string
}

type entry struct {
	script *ast.Script
	size   int
}

// ScriptCache is a bounded map of SourceKey to parsed Script, safe for
// concurrent use (spec §5 "the AST cache is concurrent-safe"). Capacity
// is soft: once Len() would exceed MaxEntries, Put evicts an arbitrary
// entry (map iteration order) rather than implementing a precise LRU —
// acceptable because the spec only requires "bounded... capacity", not
// a specific eviction policy (see DESIGN.md).
type ScriptCache struct {
	mu         sync.RWMutex
	entries    map[SourceKey]entry
	group      singleflight.Group
	MaxEntries int
	// Threshold is the max source length eligible for caching at all
	// (spec's cacheThreshold); sources longer than this are parsed fresh
	// every time and never stored.
	Threshold int
}

// New creates a ScriptCache with the given soft capacity and source-length
// threshold. A non-positive maxEntries disables storage (every Get misses,
// every Put is a no-op), which is how Engine.ClearCache-adjacent "caching
// disabled" configurations are expressed.
func New(maxEntries, threshold int) *ScriptCache {
	return &ScriptCache{
		entries:    make(map[SourceKey]entry),
		MaxEntries: maxEntries,
		Threshold: threshold,
	}
}

// Get returns the cached Script for key, if present and caching is
// enabled for a source of this length.
func (c *ScriptCache) Get(key SourceKey) (*ast.Script, bool) {
	if c.MaxEntries <= 0 {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	return e.script, true
}

// Put stores script under key, evicting an arbitrary entry first if the
// cache is at capacity. Sources longer than Threshold (when Threshold is
// positive) are never stored, matching the spec's cacheThreshold option.
func (c *ScriptCache) Put(key SourceKey, script *ast.Script) {
	if c.MaxEntries <= 0 {
		return
	}
	if c.Threshold > 0 && len(key.Source) > c.Threshold {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.MaxEntries {
		for k := range c.entries {
			delete(c.entries, k)
			break
		}
	}
	c.entries[key] = entry{script: script, size: len(key.Source)}
}

// Clear removes every cached entry (Engine.clear_cache, spec §6).
func (c *ScriptCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[SourceKey]entry)
}

// Len reports the number of entries currently cached.
func (c *ScriptCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// TotalSourceBytes sums the cached sources' lengths, used by Stats to
// report a human-scale cache size.
func (c *ScriptCache) TotalSourceBytes() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	total := 0
	for _, e := range c.entries {
		total += e.size
	}
	return total
}

// Stats is a point-in-time snapshot of cache occupancy, for host
// diagnostics (spec §6 Engine introspection).
type Stats struct {
	Entries     int
	SourceBytes int
}

// String renders Stats at human scale ("1,024 entries, 48 kB
// source") rather than raw counts, the way a host log line or REPL
// `:cache` command wants it.
func (s Stats) String() string {
	return fmt.Sprintf("%s entries, %s source", humanize.Comma(int64(s.Entries)), humanize.Bytes(uint64(s.SourceBytes)))
}

// Stats reports the cache's current entry count and total cached
// source size in one snapshot.
func (c *ScriptCache) Stats() Stats {
	return Stats{Entries: c.Len(), SourceBytes: c.TotalSourceBytes()}
}

// Parse returns the cached Script for key if present; otherwise it calls
// parse, coalescing concurrent calls for the identical key into one
// underlying parse (the source's "acquire the shared parser, or build a
// one-shot parser on contention" is replaced here by singleflight, which
// gives the same "don't redo identical concurrent work" property without
// needing a busy-flag/one-shot-parser distinction — see DESIGN.md).
func (c *ScriptCache) Parse(key SourceKey, parse func() (*ast.Script, error)) (*ast.Script, error) {
	if script, ok := c.Get(key); ok {
		return script, nil
	}

	groupKey := fmt.Sprintf("%d\x00%s", key.Features, key.Source)
	v, err, _ := c.group.Do(groupKey, func() (interface{}, error) {
		if script, ok := c.Get(key); ok {
			return script, nil
		}
		script, err := parse()
		if err != nil {
			return nil, err
		}
		c.Put(key, script)
		return script, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*ast.Script), nil
}
