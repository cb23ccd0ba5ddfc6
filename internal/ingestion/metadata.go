package ingestion

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Metadata describes where an imported writing sample came from.
type Metadata struct {
	URL        string    `json:"url,omitempty"`
	Path       string    `json:"path,omitempty"`
	Title      string    `json:"title,omitempty"`
	Platform   string    `json:"platform,omitempty"`
	ImportedAt time.Time `json:"imported_at"`
	Hash       string    `json:"hash"` // sha256 of the whitespace-normalized text
	WordCount  int       `json:"word_count"`
}

// NewMetadata fingerprints cleaned sample text.
func NewMetadata(content string, url string) *Metadata {
	words := strings.Fields(content)
	return &Metadata{
		URL:        url,
		ImportedAt: time.Now().UTC(),
		Hash:       fingerprint(words),
		WordCount:  len(words),
	}
}

// ContributionID derives a stable contribution id from the content hash, so
// importing the same text twice is recognized as a retry.
func (m *Metadata) ContributionID() string {
	h := m.Hash
	if len(h) > 16 {
		h = h[:16]
	}
	return "sample:" + h
}

// fingerprint hashes words joined by single spaces, so re-wrapped or
// re-indented copies of a sample hash the same.
func fingerprint(words []string) string {
	sum := sha256.Sum256([]byte(strings.Join(words, " ")))
	return hex.EncodeToString(sum[:])
}
