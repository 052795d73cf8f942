package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/avetrov/claimsift/internal/model"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// BatchKey generates a cache key for a batch of claim texts. Two batches with
// the same texts in the same order share a key.
func BatchKey(texts []string) string {
	h := sha256.New()
	for _, text := range texts {
		h.Write([]byte(text))
		h.Write([]byte{0})
	}
	return "claimsift:v1:" + hex.EncodeToString(h.Sum(nil))
}

// ResultCache stores verification results for whole batches so identical
// re-runs skip provider calls
type ResultCache struct {
	backend Cache
	ttl     time.Duration
}

// NewResultCache creates a result cache over the given backend
func NewResultCache(backend Cache, ttl time.Duration) *ResultCache {
	return &ResultCache{backend: backend, ttl: ttl}
}

// Get returns the cached results for a batch of claim texts
func (c *ResultCache) Get(texts []string) ([]model.VerificationResult, bool) {
	data, found := c.backend.Get(BatchKey(texts))
	if !found {
		return nil, false
	}

	var results []model.VerificationResult
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, false
	}
	if len(results) != len(texts) {
		// Stale or corrupted entry, ignore it
		return nil, false
	}
	return results, true
}

// Set stores the results for a batch of claim texts
func (c *ResultCache) Set(texts []string, results []model.VerificationResult) error {
	data, err := json.Marshal(results)
	if err != nil {
		return err
	}
	return c.backend.Set(BatchKey(texts), data, c.ttl)
}
