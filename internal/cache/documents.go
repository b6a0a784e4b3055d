package cache

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/ppiankov/scriptcorpus/internal/model"
)

// DocumentCache stores normalized documents keyed by their raw content
type DocumentCache struct {
	backend Cache
	ttl     time.Duration
}

// NewDocumentCache wraps a byte cache
func NewDocumentCache(backend Cache, ttl time.Duration) *DocumentCache {
	return &DocumentCache{backend: backend, ttl: ttl}
}

// DocumentKey identifies the normalized form of raw under the given strictness.
// The document ID is part of the key because it is part of the output.
func DocumentKey(raw model.RawDocument, strict bool) string {
	return CacheKey(raw.ID, strconv.FormatBool(strict), strings.Join(raw.Lines, "\n"))
}

// Get returns the cached normalized form of raw, if any
func (c *DocumentCache) Get(raw model.RawDocument, strict bool) (*model.Document, bool) {
	data, ok := c.backend.Get(DocumentKey(raw, strict))
	if !ok {
		return nil, false
	}
	var doc model.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, false
	}
	return &doc, true
}

// Put stores the normalized form of raw
func (c *DocumentCache) Put(raw model.RawDocument, strict bool, doc *model.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return c.backend.Set(DocumentKey(raw, strict), data, c.ttl)
}
