package text

import (
	"fmt"
	"os"
	"time"

	"github.com/patrickmn/go-cache"
)

// Source opens documents from the filesystem with a short-lived content
// cache, so concurrent definition lookups touching the same file read it
// from disk once. The cache is identity-keyed by path; entries expire so a
// file edited between pipeline runs is re-read.
type Source struct {
	cache *cache.Cache
}

// NewSource creates a Source whose cached contents expire after ttl.
func NewSource(ttl time.Duration) *Source {
	return &Source{cache: cache.New(ttl, 2*ttl)}
}

// Open reads the document at path. Cached contents are returned as-is; a
// cache miss reads the file from disk.
func (s *Source) Open(path string) (*Document, error) {
	if v, found := s.cache.Get(path); found {
		return v.(*Document), nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open document %s: %w", path, err)
	}
	doc := NewDocument(path, string(content))
	s.cache.SetDefault(path, doc)
	return doc, nil
}

// Invalidate drops the cached content for path, if any.
func (s *Source) Invalidate(path string) {
	s.cache.Delete(path)
}
