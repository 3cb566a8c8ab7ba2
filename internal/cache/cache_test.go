package cache

import (
	"strings"
	"sync"
	"testing"

	"github.com/jexl-go/jexl/internal/ast"
)

func parseStub(src string) (*ast.Script, error) {
	return ast.NewScript(ast.Info{}, nil, nil), nil
}

func TestPutGetRoundTrips(t *testing.T) {
	c := New(10, 0)
	key := SourceKey{Source: "1 + 1"}
	script, _ := parseStub(key.Source)
	c.Put(key, script)

	got, ok := c.Get(key)
	if !ok || got != script {
		t.Fatalf("Get after Put: ok=%v got=%p want=%p", ok, got, script)
	}
}

func TestZeroCapacityDisablesCaching(t *testing.T) {
	c := New(0, 0)
	key := SourceKey{Source: "1 + 1"}
	script, _ := parseStub(key.Source)
	c.Put(key, script)
	if _, ok := c.Get(key); ok {
		t.Fatalf("Get hit despite a non-positive MaxEntries")
	}
}

func TestThresholdRejectsLongSources(t *testing.T) {
	c := New(10, 5)
	key := SourceKey{Source: strings.Repeat("x", 100)}
	script, _ := parseStub(key.Source)
	c.Put(key, script)
	if _, ok := c.Get(key); ok {
		t.Fatalf("Get hit for a source longer than Threshold")
	}
}

func TestEvictsWhenOverCapacity(t *testing.T) {
	c := New(2, 0)
	for i, src := range []string{"a", "b", "c"} {
		key := SourceKey{Source: src}
		script, _ := parseStub(src)
		c.Put(key, script)
		if c.Len() > 2 {
			t.Fatalf("after Put #%d: Len() = %d, want <= 2", i, c.Len())
		}
	}
}

func TestParseCoalescesConcurrentIdenticalKeys(t *testing.T) {
	c := New(10, 0)
	key := SourceKey{Source: "1 + 1"}

	var calls int
	var mu sync.Mutex
	parse := func() (*ast.Script, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		return ast.NewScript(ast.Info{}, nil, nil), nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.Parse(key, parse); err != nil {
				t.Errorf("Parse: %v", err)
			}
		}()
	}
	wg.Wait()

	if calls != 1 {
		t.Fatalf("parse callback ran %d times, want 1 (singleflight should coalesce concurrent identical keys)", calls)
	}
}

func TestStatsReportsEntriesAndSourceBytes(t *testing.T) {
	c := New(10, 0)
	for _, src := range []string{"abc", "de"} {
		key := SourceKey{Source: src}
		script, _ := parseStub(src)
		c.Put(key, script)
	}
	stats := c.Stats()
	if stats.Entries != 2 {
		t.Fatalf("Entries = %d, want 2", stats.Entries)
	}
	if stats.SourceBytes != 5 {
		t.Fatalf("SourceBytes = %d, want 5", stats.SourceBytes)
	}
	if !strings.Contains(stats.String(), "entries") {
		t.Fatalf("Stats.String() = %q, missing humanized entry count", stats.String())
	}
}

func TestClearRemovesEntries(t *testing.T) {
	c := New(10, 0)
	key := SourceKey{Source: "1 + 1"}
	script, _ := parseStub(key.Source)
	c.Put(key, script)
	c.Clear()
	if c.Len() != 0 {
		t.Fatalf("Len() after Clear = %d, want 0", c.Len())
	}
}
