package referents

import (
	"strings"
	"testing"

	"github.com/jonathan/voicedna/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c := Default()
	require.Equal(t, 6, c.Len())

	all := c.All()
	assert.Equal(t, "ref-essayist", all[0].ID)
	for _, p := range all {
		assert.NotEmpty(t, p.PromptGuidance, p.ID)
		assert.GreaterOrEqual(t, len(p.KeyCharacteristics), 3, p.ID)
		byID, ok := c.ByID(p.ID)
		require.True(t, ok)
		bySlug, ok := c.BySlug(p.Slug)
		require.True(t, ok)
		assert.Equal(t, byID, bySlug)
	}
}

func TestLookup(t *testing.T) {
	c := Default()

	p, ok := c.Lookup("coach")
	require.True(t, ok)
	assert.Equal(t, "ref-coach", p.ID)

	p, ok = c.Lookup("ref-analyst")
	require.True(t, ok)
	assert.Equal(t, "analyst", p.Slug)
	assert.InDelta(t, 0.9, p.TonalAttributes.Authority, 1e-9)

	_, ok = c.Lookup("nobody")
	assert.False(t, ok)
}

func TestCatalogIsReadOnly(t *testing.T) {
	c := Default()
	p, _ := c.ByID("ref-teacher")
	p.KeyCharacteristics[0] = "mutated"
	p.LinguisticPatterns.SignaturePhrases = nil

	again, _ := c.ByID("ref-teacher")
	assert.Equal(t, "Explains through analogy", again.KeyCharacteristics[0])
	assert.NotEmpty(t, again.LinguisticPatterns.SignaturePhrases)
}

func TestNewCatalog_Validation(t *testing.T) {
	valid := types.ReferentStyleProfile{ID: "a", Slug: "a", Name: "A"}

	tests := []struct {
		name     string
		profiles []types.ReferentStyleProfile
		wantErr  string
	}{
		{"missing id", []types.ReferentStyleProfile{{Slug: "x", Name: "X"}}, "required"},
		{"duplicate id", []types.ReferentStyleProfile{valid, {ID: "a", Slug: "b", Name: "B"}}, "duplicate id"},
		{"duplicate slug", []types.ReferentStyleProfile{valid, {ID: "b", Slug: "a", Name: "B"}}, "duplicate slug"},
		{
			"tone out of range",
			[]types.ReferentStyleProfile{{ID: "a", Slug: "a", Name: "A", TonalAttributes: types.TonalAttributes{Humor: 1.5}}},
			"humor",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCatalog(tt.profiles)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	c, err := NewCatalog(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, c.Len())
	assert.Empty(t, c.All())
}

func TestLoadCatalogFromReader(t *testing.T) {
	yml := `
referents:
  - id: ref-x
    name: X
    slug: x
    key_characteristics: [one, two]
    tonal_attributes:
      warmth: 0.5
`
	c, err := LoadCatalogFromReader(strings.NewReader(yml))
	require.NoError(t, err)
	p, ok := c.BySlug("x")
	require.True(t, ok)
	assert.InDelta(t, 0.5, p.TonalAttributes.Warmth, 1e-9)
	assert.Equal(t, []string{"one", "two"}, p.KeyCharacteristics)

	_, err = LoadCatalogFromReader(strings.NewReader("referents: []\nextra: true\n"))
	assert.Error(t, err)
}

func TestLoadCatalogFile_Missing(t *testing.T) {
	_, err := LoadCatalogFile("/nonexistent/referents.yaml")
	assert.Error(t, err)
}
