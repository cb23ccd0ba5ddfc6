package enthusiasm

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jonathan/voicedna/internal/lexicon"
	"github.com/jonathan/voicedna/internal/types"
)

const (
	hookZone       = 0.15
	conclusionZone = 0.85
	quoteMinWords  = 4
	quoteMaxWords  = 14
	summaryTopics  = 5
)

var indicatorReasons = map[types.Indicator]string{
	types.IndicatorPaceIncrease:  "speaking faster than usual",
	types.IndicatorDenseSpeech:   "information-dense",
	types.IndicatorEmphasisWords: "emphatic language",
	types.IndicatorRepetition:    "repeats the key idea",
}

// selectPeaks keeps the top-scoring segments at or above the session mean,
// capped at MaxPeaks and returned in timestamp order.
func (a *Analyzer) selectPeaks(segments []types.EnergySegment, sessionStart, sessionEnd float64) []types.PeakMoment {
	if len(segments) == 0 {
		return []types.PeakMoment{}
	}

	var mean float64
	for _, s := range segments {
		mean += s.EnergyScore
	}
	mean /= float64(len(segments))

	candidates := make([]int, 0, len(segments))
	for i, s := range segments {
		if s.EnergyScore > 0 && s.EnergyScore >= mean {
			candidates = append(candidates, i)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return segments[candidates[i]].EnergyScore > segments[candidates[j]].EnergyScore
	})
	if len(candidates) > a.cfg.MaxPeaks {
		candidates = candidates[:a.cfg.MaxPeaks]
	}
	sort.Ints(candidates)

	span := sessionEnd - sessionStart
	peaks := make([]types.PeakMoment, 0, len(candidates))
	for _, idx := range candidates {
		seg := segments[idx]
		peaks = append(peaks, types.PeakMoment{
			Timestamp: seg.StartTime,
			Text:      seg.Text,
			Reason:    reasonFor(seg),
			UseAs:     classifyUse(seg, sessionStart, span),
		})
	}
	return peaks
}

func classifyUse(seg types.EnergySegment, sessionStart, span float64) types.UseAs {
	position := 0.5
	if span > 0 {
		position = ((seg.StartTime+seg.EndTime)/2 - sessionStart) / span
	}
	switch {
	case position <= hookZone:
		return types.UseAsHook
	case position >= conclusionZone:
		return types.UseAsConclusion
	case isQuotable(seg.Text):
		return types.UseAsQuote
	default:
		return types.UseAsKeyPoint
	}
}

// isQuotable accepts short declarative fragments that stand on their own.
func isQuotable(text string) bool {
	tokens := lexicon.Tokenize(text)
	if len(tokens) < quoteMinWords || len(tokens) > quoteMaxWords {
		return false
	}
	if strings.HasSuffix(strings.TrimSpace(text), "?") {
		return false
	}
	return !lexicon.IsDependentOpener(tokens[0])
}

func reasonFor(seg types.EnergySegment) string {
	parts := make([]string, 0, len(seg.Indicators))
	for _, ind := range seg.Indicators {
		parts = append(parts, indicatorReasons[ind])
	}
	if len(parts) == 0 {
		return fmt.Sprintf("high relative energy (%.2f)", seg.EnergyScore)
	}
	return fmt.Sprintf("high energy (%.2f): %s", seg.EnergyScore, strings.Join(parts, ", "))
}

// Summarize reduces an analysis to what the profile keeps: the overall energy and
// the content words that dominate the peak moments.
func Summarize(analysis *types.EnthusiasmAnalysis) *types.EnthusiasmSummary {
	if analysis == nil {
		return nil
	}
	counts := make(map[string]int)
	for _, p := range analysis.PeakMoments {
		for _, tok := range lexicon.Tokenize(p.Text) {
			if lexicon.IsContent(tok) {
				counts[tok]++
			}
		}
	}

	topics := make([]string, 0, len(counts))
	for w := range counts {
		topics = append(topics, w)
	}
	sort.Slice(topics, func(i, j int) bool {
		if counts[topics[i]] != counts[topics[j]] {
			return counts[topics[i]] > counts[topics[j]]
		}
		return topics[i] < topics[j]
	})
	if len(topics) > summaryTopics {
		topics = topics[:summaryTopics]
	}

	return &types.EnthusiasmSummary{
		OverallEnergy: analysis.OverallEnergy,
		Topics:        topics,
	}
}
