// Package referents holds the read-only registry of named style influences.
package referents

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/jonathan/voicedna/internal/types"
	"gopkg.in/yaml.v3"
)

//go:embed referents.yaml
var defaultCatalogYAML []byte

// catalogFile is the YAML layout of a referent catalog.
//
// Example:
//
//	referents:
//	  - id: ref-coach
//	    name: The Coach
//	    slug: coach
//	    key_characteristics: ["Short imperative sentences"]
type catalogFile struct {
	Referents []types.ReferentStyleProfile `yaml:"referents"`
}

// Catalog is an immutable set of referent profiles indexed by id and slug.
type Catalog struct {
	ordered []types.ReferentStyleProfile
	byID    map[string]int
	bySlug  map[string]int
}

// NewCatalog validates the profiles and builds the indexes. Ids and slugs must
// be unique and tonal attributes must lie in [0,1].
func NewCatalog(profiles []types.ReferentStyleProfile) (*Catalog, error) {
	c := &Catalog{
		ordered: make([]types.ReferentStyleProfile, 0, len(profiles)),
		byID:    make(map[string]int, len(profiles)),
		bySlug:  make(map[string]int, len(profiles)),
	}
	for i, p := range profiles {
		if p.ID == "" || p.Slug == "" || p.Name == "" {
			return nil, fmt.Errorf("referents: entry %d: id, slug and name are required", i)
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("referents: duplicate id %q", p.ID)
		}
		if _, dup := c.bySlug[p.Slug]; dup {
			return nil, fmt.Errorf("referents: duplicate slug %q", p.Slug)
		}
		for _, dim := range types.TonalOrder {
			if v := p.TonalAttributes.Get(dim); v < 0 || v > 1 {
				return nil, fmt.Errorf("referents: %s: %s must be in [0,1], got %v", p.ID, dim, v)
			}
		}
		c.byID[p.ID] = len(c.ordered)
		c.bySlug[p.Slug] = len(c.ordered)
		c.ordered = append(c.ordered, cloneProfile(p))
	}
	return c, nil
}

// LoadCatalogFromReader parses catalog YAML. Unknown keys are rejected.
func LoadCatalogFromReader(r io.Reader) (*Catalog, error) {
	var f catalogFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("referents: decode catalog yaml: %w", err)
	}
	return NewCatalog(f.Referents)
}

// LoadCatalogFile reads a catalog from disk.
func LoadCatalogFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("referents: open catalog %q: %w", path, err)
	}
	defer f.Close()
	return LoadCatalogFromReader(f)
}

var (
	defaultCatalog     *Catalog
	defaultCatalogOnce sync.Once
)

// Default returns the catalog embedded in the binary.
func Default() *Catalog {
	defaultCatalogOnce.Do(func() {
		c, err := LoadCatalogFromReader(bytes.NewReader(defaultCatalogYAML))
		if err != nil {
			panic(fmt.Sprintf("embedded referent catalog is invalid: %v", err))
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// ByID returns the referent with the given id.
func (c *Catalog) ByID(id string) (types.ReferentStyleProfile, bool) {
	i, ok := c.byID[id]
	if !ok {
		return types.ReferentStyleProfile{}, false
	}
	return cloneProfile(c.ordered[i]), true
}

// BySlug returns the referent with the given slug.
func (c *Catalog) BySlug(slug string) (types.ReferentStyleProfile, bool) {
	i, ok := c.bySlug[slug]
	if !ok {
		return types.ReferentStyleProfile{}, false
	}
	return cloneProfile(c.ordered[i]), true
}

// Lookup resolves key as an id first, then as a slug.
func (c *Catalog) Lookup(key string) (types.ReferentStyleProfile, bool) {
	if p, ok := c.ByID(key); ok {
		return p, true
	}
	return c.BySlug(key)
}

// All returns every referent in catalog order.
func (c *Catalog) All() []types.ReferentStyleProfile {
	out := make([]types.ReferentStyleProfile, len(c.ordered))
	for i, p := range c.ordered {
		out[i] = cloneProfile(p)
	}
	return out
}

// Len returns the number of referents.
func (c *Catalog) Len() int {
	return len(c.ordered)
}

// cloneProfile copies the slices so callers cannot mutate catalog state.
func cloneProfile(p types.ReferentStyleProfile) types.ReferentStyleProfile {
	p.KeyCharacteristics = append([]string(nil), p.KeyCharacteristics...)
	p.LinguisticPatterns.SignaturePhrases = append([]string(nil), p.LinguisticPatterns.SignaturePhrases...)
	return p
}
