// Package blend resolves requested referent weights into a ReferentInfluences
// that always leaves the user's own voice dominant.
package blend

import (
	"fmt"
	"sort"

	"github.com/jonathan/voicedna/internal/config"
	"github.com/jonathan/voicedna/internal/types"
)

// Catalog resolves a referent id or slug.
type Catalog interface {
	Lookup(key string) (types.ReferentStyleProfile, bool)
}

// Resolver normalizes referent selections against a catalog.
type Resolver struct {
	catalog Catalog
	cfg     config.BlendConfig
}

// NewResolver creates a Resolver. Zero config fields take defaults.
func NewResolver(catalog Catalog, cfg config.BlendConfig) *Resolver {
	merged := (&config.Config{Blend: cfg}).MergeWithDefaults(config.Default())
	return &Resolver{catalog: catalog, cfg: merged.Blend}
}

// Resolve validates the selections and scales them so referents never exceed
// the configured share. The user weight is whatever remains of 100.
func (r *Resolver) Resolve(selections []types.ReferentSelection) (*types.ReferentInfluences, error) {
	if len(selections) > r.cfg.MaxReferents {
		return nil, types.NewValidationError("referents",
			fmt.Sprintf("at most %d referents can be blended, got %d", r.cfg.MaxReferents, len(selections)))
	}

	influences := make([]types.ReferentInfluence, 0, len(selections))
	seen := make(map[string]bool, len(selections))
	total := 0
	for i, sel := range selections {
		field := fmt.Sprintf("referents[%d]", i)
		if sel.Weight <= 0 {
			return nil, types.NewValidationError(field, "weight must be positive")
		}
		ref, ok := r.catalog.Lookup(sel.ReferentID)
		if !ok {
			return nil, types.NewValidationError(field, fmt.Sprintf("unknown referent %q", sel.ReferentID))
		}
		if seen[ref.ID] {
			return nil, types.NewValidationError(field, fmt.Sprintf("referent %q selected twice", ref.ID))
		}
		seen[ref.ID] = true

		traits := ref.KeyCharacteristics
		if len(traits) > r.cfg.MaxActiveTraits {
			traits = traits[:r.cfg.MaxActiveTraits]
		}
		influences = append(influences, types.ReferentInfluence{
			ID:           ref.ID,
			Name:         ref.Name,
			Weight:       sel.Weight,
			ActiveTraits: append([]string{}, traits...),
		})
		total += sel.Weight
	}

	if total > r.cfg.MaxReferentSum {
		scale(influences, total, r.cfg.MaxReferentSum)
		influences = dropEmpty(influences)
	}

	out := &types.ReferentInfluences{Referents: influences}
	out.UserWeight = 100 - out.ReferentTotal()
	return out, nil
}

// Dropped lists the catalog ids of selections that are absent from a
// resolved blend because scaling rounded their weight to zero.
func (r *Resolver) Dropped(selections []types.ReferentSelection, resolved *types.ReferentInfluences) []string {
	kept := make(map[string]bool, len(resolved.Referents))
	for _, ref := range resolved.Referents {
		kept[ref.ID] = true
	}
	var dropped []string
	for _, sel := range selections {
		if ref, ok := r.catalog.Lookup(sel.ReferentID); ok && !kept[ref.ID] {
			dropped = append(dropped, ref.ID)
		}
	}
	return dropped
}

// scale rescales weights to sum to exactly target using the largest
// remainder method. Equal remainders favor the earlier selection.
func scale(influences []types.ReferentInfluence, total, target int) {
	type share struct {
		index     int
		remainder int
	}
	shares := make([]share, len(influences))
	assigned := 0
	for i := range influences {
		num := influences[i].Weight * target
		influences[i].Weight = num / total
		assigned += influences[i].Weight
		shares[i] = share{index: i, remainder: num % total}
	}

	sort.SliceStable(shares, func(a, b int) bool {
		return shares[a].remainder > shares[b].remainder
	})
	for k := 0; k < target-assigned; k++ {
		influences[shares[k].index].Weight++
	}
}

func dropEmpty(influences []types.ReferentInfluence) []types.ReferentInfluence {
	out := influences[:0]
	for _, inf := range influences {
		if inf.Weight > 0 {
			out = append(out, inf)
		}
	}
	return out
}
