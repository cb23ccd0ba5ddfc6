package composer

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CachedComposer memoizes composed prompts keyed by a hash of the input.
// Safe for concurrent use.
type CachedComposer struct {
	*Composer
	cache *lru.Cache[string, string]
}

// NewCached wraps c with an LRU of the given size.
func NewCached(c *Composer, size int) (*CachedComposer, error) {
	cache, err := lru.New[string, string](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create prompt cache: %w", err)
	}
	return &CachedComposer{Composer: c, cache: cache}, nil
}

// Compose returns the cached prompt for in, composing it on a miss. Errors
// are never cached.
func (c *CachedComposer) Compose(in Input) (string, error) {
	key, err := cacheKey(in)
	if err != nil {
		return "", err
	}
	if prompt, ok := c.cache.Get(key); ok {
		return prompt, nil
	}

	prompt, err := c.Composer.Compose(in)
	if err != nil {
		return "", err
	}
	c.cache.Add(key, prompt)
	return prompt, nil
}

// Len returns the number of cached prompts.
func (c *CachedComposer) Len() int {
	return c.cache.Len()
}

// cacheKey hashes the JSON encoding of in. encoding/json sorts map keys, so
// equal inputs always hash the same.
func cacheKey(in Input) (string, error) {
	data, err := json.Marshal(in)
	if err != nil {
		return "", fmt.Errorf("failed to encode composer input: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
