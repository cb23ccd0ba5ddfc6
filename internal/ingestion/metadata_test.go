package ingestion

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFingerprint(t *testing.T) {
	a := fingerprint(strings.Fields("test content"))
	b := fingerprint(strings.Fields("different content"))

	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, fingerprint(strings.Fields("  test\n\tcontent ")))
}

func TestNewMetadata(t *testing.T) {
	before := time.Now().UTC()
	metadata := NewMetadata("three little words", "https://example.com/post")

	assert.Equal(t, "https://example.com/post", metadata.URL)
	assert.Equal(t, fingerprint([]string{"three", "little", "words"}), metadata.Hash)
	assert.Equal(t, 3, metadata.WordCount)
	assert.False(t, metadata.ImportedAt.Before(before))
}

func TestMetadata_ContributionID(t *testing.T) {
	a := NewMetadata("same text", "")
	b := NewMetadata("same text", "https://example.com")
	rewrapped := NewMetadata("same\n   text", "")
	c := NewMetadata("other text", "")

	assert.Equal(t, "sample:"+a.Hash[:16], a.ContributionID())
	assert.Equal(t, a.ContributionID(), b.ContributionID())
	assert.Equal(t, a.ContributionID(), rewrapped.ContributionID())
	assert.NotEqual(t, a.ContributionID(), c.ContributionID())
	assert.Equal(t, "sample:ab", (&Metadata{Hash: "ab"}).ContributionID())
}
