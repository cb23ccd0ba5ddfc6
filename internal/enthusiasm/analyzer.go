// Package enthusiasm scores how energized a speaker sounds over the course of a recording.
package enthusiasm

import (
	"math"
	"strings"

	"github.com/jonathan/voicedna/internal/config"
	"github.com/jonathan/voicedna/internal/types"
)

// Signal weights sum to 1.
const (
	weightPace       = 0.35
	weightDensity    = 0.25
	weightEmphasis   = 0.25
	weightRepetition = 0.15
)

// Analyzer segments a word stream and scores each segment's energy.
// It holds no state between calls and is safe for concurrent use.
type Analyzer struct {
	cfg config.EnthusiasmConfig
}

// NewAnalyzer creates an Analyzer. Zero config fields take defaults.
func NewAnalyzer(cfg config.EnthusiasmConfig) *Analyzer {
	merged := (&config.Config{Enthusiasm: cfg}).MergeWithDefaults(config.Default())
	return &Analyzer{cfg: merged.Enthusiasm}
}

// Analyze produces the enthusiasm map for one transcript. An empty word list
// yields a zero-energy analysis; malformed timing yields a MalformedTimestampsError.
func (a *Analyzer) Analyze(transcript types.Transcript) (*types.EnthusiasmAnalysis, error) {
	words := transcript.Words
	if err := validateTimestamps(words); err != nil {
		return nil, err
	}

	result := &types.EnthusiasmAnalysis{
		Segments:    []types.EnergySegment{},
		PeakMoments: []types.PeakMoment{},
	}
	if len(words) == 0 {
		return result, nil
	}

	groups := a.segment(words)
	sessionWPS := speakingRate(groups)

	var weighted, totalDuration float64
	for _, g := range groups {
		seg := scoreSegment(g, sessionWPS)
		result.Segments = append(result.Segments, seg)

		d := seg.EndTime - seg.StartTime
		weighted += seg.EnergyScore * d
		totalDuration += d
	}
	if totalDuration > 0 {
		result.OverallEnergy = round3(weighted / totalDuration)
	}

	result.PeakMoments = a.selectPeaks(result.Segments, words[0].Start, words[len(words)-1].End)
	return result, nil
}

// segment splits words into runs at long silences, pace shifts, or the size cap.
func (a *Analyzer) segment(words []types.WordTimestamp) [][]types.WordTimestamp {
	var groups [][]types.WordTimestamp
	start := 0
	for i := 1; i < len(words); i++ {
		if a.isBoundary(words, start, i) {
			groups = append(groups, words[start:i])
			start = i
		}
	}
	return append(groups, words[start:])
}

// isBoundary reports whether a new segment should begin at word i given the
// current segment starts at word start.
func (a *Analyzer) isBoundary(words []types.WordTimestamp, start, i int) bool {
	if words[i].Start-words[i-1].End > a.cfg.SilenceGap {
		return true
	}

	size := i - start
	if size >= a.cfg.MaxSegmentWords {
		return true
	}
	if size < a.cfg.MinSegmentWords {
		return false
	}

	from := max(start, i-a.cfg.PaceWindow+1)
	local := float64(i-from+1) / (words[i].End - words[from].Start)
	running := float64(size) / (words[i-1].End - words[start].Start)
	return math.Abs(local-running) > a.cfg.PaceDelta
}

// speakingRate is words per second of speech, ignoring the silences between segments.
func speakingRate(groups [][]types.WordTimestamp) float64 {
	var n int
	var seconds float64
	for _, g := range groups {
		n += len(g)
		seconds += g[len(g)-1].End - g[0].Start
	}
	if seconds <= 0 {
		return 0
	}
	return float64(n) / seconds
}

func segmentText(words []types.WordTimestamp) string {
	parts := make([]string, 0, len(words))
	for _, w := range words {
		if t := strings.TrimSpace(w.Word); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
