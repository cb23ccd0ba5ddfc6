package calibration

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/jonathan/voicedna/internal/llm"
	"github.com/jonathan/voicedna/internal/prompts"
	"github.com/jonathan/voicedna/internal/types"
	"go.uber.org/zap"
)

const (
	maxInsights        = 5
	cueConfidence      = 0.8
	verbatimConfidence = 0.6
)

// feedbackCue maps phrases in free-text feedback to a reusable rule.
type feedbackCue struct {
	phrases  []string
	ruleType types.RuleType
	insight  string
	// negated is emitted when every mention is negated ("no stories"). Empty
	// drops the cue, since "not too formal" says nothing about direction.
	negated string
}

var feedbackCues = []feedbackCue{
	{[]string{"too formal", "stiff", "corporate"}, types.RuleToneAdjustment, "Use a more conversational, less formal tone", ""},
	{[]string{"too casual", "too informal", "sloppy"}, types.RuleToneAdjustment, "Use a more polished, professional tone", ""},
	{[]string{"too long", "wordy", "verbose", "shorter", "rambl"}, types.RuleStructure, "Keep it shorter and cut filler", ""},
	{[]string{"too short", "more detail", "expand on"}, types.RuleStructure, "Add more detail and concrete specifics", ""},
	{[]string{"jargon", "buzzword"}, types.RuleVocabulary, "Avoid jargon and buzzwords in favor of plain words", "Avoid jargon and buzzwords in favor of plain words"},
	{[]string{"not my voice", "doesn't sound like me", "does not sound like me", "never sounds like me", "never sound like me", "not how i talk"}, types.RuleStylePreference, "Stay closer to the person's own phrasing", ""},
	{[]string{"story", "stories", "example"}, types.RuleStructure, "Use concrete stories and examples", "Leave out stories and examples and state the point directly"},
	{[]string{"bullet", "a list"}, types.RuleStructure, "Use bullet points to break up ideas", "Write in prose rather than bullet points"},
	{[]string{"emoji"}, types.RuleStylePreference, "Do not use emoji", "Do not use emoji"},
	{[]string{"exclamation"}, types.RuleStylePreference, "Use fewer exclamation marks", "Use fewer exclamation marks"},
	{[]string{"sounds like me", "perfect", "spot on", "nailed"}, types.RuleStylePreference, "Keep the current style, it matches the person's voice", ""},
}

// negationWindow is how many words before a cue phrase are checked for a
// negator. The window never crosses clause punctuation.
const negationWindow = 3

var negators = map[string]bool{
	"not": true, "no": true, "never": true, "without": true,
	"nor": true, "hardly": true, "cannot": true, "nothing": true,
}

type cueMatch int

const (
	cueAbsent cueMatch = iota
	cuePresent
	cueNegated
)

// matchCue reports whether any phrase occurs un-negated. cueNegated means the
// phrases occur but every occurrence follows a negator.
func matchCue(text string, phrases []string) cueMatch {
	result := cueAbsent
	for _, phrase := range phrases {
		for from := 0; from < len(text); {
			i := strings.Index(text[from:], phrase)
			if i < 0 {
				break
			}
			at := from + i
			if !negatedBefore(text[:at]) {
				return cuePresent
			}
			result = cueNegated
			from = at + len(phrase)
		}
	}
	return result
}

func negatedBefore(prefix string) bool {
	if i := strings.LastIndexAny(prefix, ".,;:!?"); i >= 0 {
		prefix = prefix[i+1:]
	}
	words := strings.Fields(prefix)
	if len(words) > negationWindow {
		words = words[len(words)-negationWindow:]
	}
	for _, w := range words {
		w = strings.Trim(w, `"'()`)
		if negators[w] || strings.HasSuffix(w, "n't") {
			return true
		}
	}
	return false
}

// ratingWeight scales insight confidence by how strongly the user felt.
func ratingWeight(rating int) float64 {
	switch rating {
	case 1, 5:
		return 1.0
	case 2, 4:
		return 0.85
	default:
		return 0.7
	}
}

var insightSchema = llm.ExtractionSchema{
	Name: "CalibrationInsights",
	Fields: []llm.SchemaField{
		{
			Name:        "insights",
			Type:        `[{"type": "string", "insight": "string", "confidence": number}]`,
			Description: "style rules supported by the feedback",
			Required:    true,
		},
	},
	Rules: []string{
		"type is one of tone_adjustment, vocabulary, structure, style_preference.",
		"confidence is between 0 and 1.",
		"At most five insights.",
	},
}

type insightResponse struct {
	Insights []types.CalibrationInsight `json:"insights"`
}

// ExtractInsights turns rating feedback into learned-rule candidates. The LLM
// is tried first when configured; any failure falls back to the cue table.
func (s *Service) ExtractInsights(ctx context.Context, rating int, feedback, sample string) []types.CalibrationInsight {
	if strings.TrimSpace(feedback) == "" {
		return []types.CalibrationInsight{}
	}
	if s.client != nil {
		insights, err := s.extractWithLLM(ctx, rating, feedback, sample)
		if err == nil {
			return insights
		}
		s.logger.Warn("insight extraction fell back to heuristics", zap.Error(err))
	}
	return HeuristicInsights(rating, feedback)
}

func (s *Service) extractWithLLM(ctx context.Context, rating int, feedback, sample string) ([]types.CalibrationInsight, error) {
	schema := insightSchema
	schema.Description = prompts.Format(s.insightTask, map[string]string{"Rating": strconv.Itoa(rating)})

	input := "Feedback: " + feedback
	if sample != "" {
		input = "Sample:\n" + sample + "\n\n" + input
	}

	raw, err := s.client.GenerateJSON(ctx, llm.BuildExtractionPrompt(schema, input), llm.TierLite)
	if err != nil {
		return nil, err
	}

	var resp insightResponse
	if err := json.Unmarshal([]byte(llm.CleanJSONBlock(raw)), &resp); err != nil {
		return nil, fmt.Errorf("failed to parse insight JSON: %w", err)
	}

	weight := ratingWeight(rating)
	out := []types.CalibrationInsight{}
	for _, in := range resp.Insights {
		in.Insight = strings.TrimSpace(in.Insight)
		if in.Insight == "" || !types.ValidRuleType(in.Type) {
			continue
		}
		in.Confidence = round2(clamp01(in.Confidence) * weight)
		out = append(out, in)
		if len(out) == maxInsights {
			break
		}
	}
	return out, nil
}

// HeuristicInsights matches feedback against the cue table. Negated mentions
// use the cue's negated rule or are skipped. Feedback that yields no rule is
// kept verbatim as a lower-confidence style preference.
func HeuristicInsights(rating int, feedback string) []types.CalibrationInsight {
	feedback = strings.TrimSpace(feedback)
	if feedback == "" {
		return []types.CalibrationInsight{}
	}
	lower := strings.ToLower(strings.ReplaceAll(feedback, "’", "'"))
	weight := ratingWeight(rating)

	out := []types.CalibrationInsight{}
	seen := make(map[string]bool)
	for _, cue := range feedbackCues {
		var insight string
		switch matchCue(lower, cue.phrases) {
		case cuePresent:
			insight = cue.insight
		case cueNegated:
			insight = cue.negated
		}
		if insight == "" || seen[insight] {
			continue
		}
		seen[insight] = true
		out = append(out, types.CalibrationInsight{
			Type:       cue.ruleType,
			Insight:    insight,
			Confidence: round2(cueConfidence * weight),
		})
		if len(out) == maxInsights {
			break
		}
	}
	if len(out) == 0 {
		out = append(out, types.CalibrationInsight{
			Type:       types.RuleStylePreference,
			Insight:    feedback,
			Confidence: round2(verbatimConfidence * weight),
		})
	}
	return out
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return math.Min(v, 1)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
