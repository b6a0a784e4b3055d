package cache

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/ppiankov/scriptcorpus/internal/model"
)

func TestCacheKey(t *testing.T) {
	a := CacheKey("e01.txt", "false", "NED: Winter is coming.")
	b := CacheKey("e01.txt", "false", "NED: Winter is coming.")
	if a != b {
		t.Errorf("expected stable key, got %s and %s", a, b)
	}
	if c := CacheKey("e01.txt", "true", "NED: Winter is coming."); c == a {
		t.Error("expected strict flag to change the key")
	}
	// Part boundaries matter
	if CacheKey("ab", "c") == CacheKey("a", "bc") {
		t.Error("expected distinct keys for distinct part boundaries")
	}
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)
	value := []byte("<eoepisode>")
	if err := c.Set("k", value, 0); err != nil {
		t.Fatalf("set: %v", err)
	}

	// Stored and returned values are independent copies
	value[0] = 'X'
	got, ok := c.Get("k")
	if !ok || string(got) != "<eoepisode>" {
		t.Fatalf("expected unchanged hit, got %q %v", got, ok)
	}
	got[0] = 'Y'
	if again, _ := c.Get("k"); string(again) != "<eoepisode>" {
		t.Errorf("expected cached value to survive caller mutation, got %q", again)
	}
	if c.Len() != 1 {
		t.Errorf("expected 1 entry, got %d", c.Len())
	}

	_ = c.Delete("k")
	if _, ok := c.Get("k"); ok {
		t.Error("expected miss after delete")
	}
}

func TestDiskCache_Expiry(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Minute)

	if err := c.Set("fresh", []byte("a"), 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := c.Set("stale", []byte("b"), -time.Second); err != nil {
		t.Fatalf("set: %v", err)
	}

	if v, ok := c.Get("fresh"); !ok || string(v) != "a" {
		t.Errorf("expected fresh hit, got %q %v", v, ok)
	}
	if _, ok := c.Get("stale"); ok {
		t.Error("expected stale entry to expire")
	}
	if err := c.Delete("missing"); err != nil {
		t.Errorf("delete of missing key should succeed, got %v", err)
	}
}

func TestLayeredCache_PromotesDiskHits(t *testing.T) {
	dir := t.TempDir()

	first := NewDocumentLayers(dir, time.Hour)
	if err := first.Set("k", []byte("v"), 0); err != nil {
		t.Fatalf("set: %v", err)
	}

	// A new process sees only the disk layer
	second := NewDocumentLayers(dir, time.Hour)
	if v, ok := second.Get("k"); !ok || string(v) != "v" {
		t.Fatalf("expected disk hit, got %q %v", v, ok)
	}
	if v, ok := second.fast.Get("k"); !ok || string(v) != "v" {
		t.Errorf("expected promotion into memory, got %q %v", v, ok)
	}

	second.Get("k")
	second.Get("missing")
	want := LayerStats{MemoryHits: 1, DiskHits: 1, Misses: 1}
	if got := second.Stats(); got != want {
		t.Errorf("expected stats %+v, got %+v", want, got)
	}
}

// failingCache rejects every write
type failingCache struct{}

func (failingCache) Get(string) ([]byte, bool) { return nil, false }
func (failingCache) Set(string, []byte, time.Duration) error {
	return errors.New("disk full")
}
func (failingCache) Delete(string) error { return nil }
func (failingCache) Clear() error { return nil }

func TestLayeredCache_PersistentFailureSkipsFastTier(t *testing.T) {
	fast := NewMemoryCache(time.Minute, time.Minute)
	c := NewLayeredCache(fast, failingCache{}, time.Minute)

	if err := c.Set("k", []byte("v"), 0); err == nil {
		t.Fatal("expected persistent write error")
	}
	if _, ok := fast.Get("k"); ok {
		t.Error("expected fast tier to stay empty when the persistent write fails")
	}
}

func TestDocumentCache(t *testing.T) {
	backend := NewDiskCache(filepath.Join(t.TempDir(), "docs"), time.Hour)
	c := NewDocumentCache(backend, time.Hour)

	raw := model.RawDocument{ID: "e01.txt", Lines: []string{"NED: Winter is coming."}}
	doc := &model.Document{
		ID:    "e01.txt",
		Lines: []string{"<boname> NED <eoname> Winter is coming <eos>", "<eoepisode>"},
		Stats: model.LineStats{Raw: 1, Character: 1},
	}

	if _, ok := c.Get(raw, false); ok {
		t.Fatal("expected miss before put")
	}
	if err := c.Put(raw, false, doc); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, ok := c.Get(raw, false)
	if !ok {
		t.Fatal("expected hit after put")
	}
	if got.Text() != doc.Text() || got.Stats != doc.Stats {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if _, ok := c.Get(raw, true); ok {
		t.Error("expected strict lookup to miss")
	}
}
