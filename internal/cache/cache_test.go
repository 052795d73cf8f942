package cache

import (
	"testing"
	"time"

	"github.com/avetrov/claimsift/internal/model"
)

func TestBatchKey_Deterministic(t *testing.T) {
	texts := []string{"claim one", "claim two"}

	if BatchKey(texts) != BatchKey([]string{"claim one", "claim two"}) {
		t.Error("expected identical keys for identical texts")
	}
	if BatchKey(texts) == BatchKey([]string{"claim two", "claim one"}) {
		t.Error("expected order-sensitive keys")
	}
	// Element boundaries matter, not just concatenation
	if BatchKey([]string{"ab", "c"}) == BatchKey([]string{"a", "bc"}) {
		t.Error("expected boundary-sensitive keys")
	}
}

func TestMemoryCache_SetGet(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	if _, found := c.Get("missing"); found {
		t.Error("expected miss for absent key")
	}

	if err := c.Set("key", []byte("value"), time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}

	val, found := c.Get("key")
	if !found || string(val) != "value" {
		t.Errorf("expected hit with value, got %q found=%v", val, found)
	}

	if err := c.Delete("key"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, found := c.Get("key"); found {
		t.Error("expected miss after delete")
	}
}

func TestDiskCache_SetGet(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Minute)

	if err := c.Set("claimsift:v1:abc", []byte("value"), time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}

	val, found := c.Get("claimsift:v1:abc")
	if !found || string(val) != "value" {
		t.Errorf("expected hit with value, got %q found=%v", val, found)
	}
}

func TestDiskCache_Expiry(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Minute)

	if err := c.Set("key", []byte("value"), -time.Second); err != nil {
		t.Fatalf("set: %v", err)
	}

	if _, found := c.Get("key"); found {
		t.Error("expected expired entry to miss")
	}
}

func TestLayeredCache_PromotesDiskHits(t *testing.T) {
	dir := t.TempDir()
	c := NewLayeredCache(time.Minute, dir, time.Minute)

	if err := c.Set("key", []byte("value"), time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}

	// Simulate a cold memory layer by building a fresh layered cache over
	// the same disk directory
	cold := NewLayeredCache(time.Minute, dir, time.Minute)
	val, found := cold.Get("key")
	if !found || string(val) != "value" {
		t.Fatalf("expected disk hit, got %q found=%v", val, found)
	}

	// Now in memory too
	if _, found := cold.memory.Get("key"); !found {
		t.Error("expected disk hit promoted to memory")
	}
}

func TestResultCache_RoundTrip(t *testing.T) {
	c := NewResultCache(NewMemoryCache(time.Minute, time.Minute), time.Minute)

	texts := []string{"claim one", "claim two"}
	results := []model.VerificationResult{
		{ClaimIndex: 0, Verified: true, Confidence: 0.9},
		{ClaimIndex: 1, Verified: false, Confidence: 0.3, Note: "vague"},
	}

	if _, found := c.Get(texts); found {
		t.Error("expected miss before set")
	}

	if err := c.Set(texts, results); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, found := c.Get(texts)
	if !found {
		t.Fatal("expected hit after set")
	}
	if len(got) != 2 || got[0].Verified != true || got[1].Note != "vague" {
		t.Errorf("unexpected cached results: %+v", got)
	}
}

func TestResultCache_RejectsLengthMismatch(t *testing.T) {
	backend := NewMemoryCache(time.Minute, time.Minute)
	c := NewResultCache(backend, time.Minute)

	texts := []string{"claim one", "claim two"}
	if err := c.Set(texts, []model.VerificationResult{{ClaimIndex: 0}}); err != nil {
		t.Fatalf("set: %v", err)
	}

	// A stored entry whose length does not match the batch is ignored
	if _, found := c.Get(texts); found {
		t.Error("expected mismatched entry treated as miss")
	}
}
