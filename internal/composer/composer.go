// Package composer renders a VoiceDNA profile and a piece of source content
// into a single generation prompt. Output is byte-identical for identical input.
package composer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jonathan/voicedna/internal/prompts"
	"github.com/jonathan/voicedna/internal/types"
)

const (
	promptFile     = "composer.json"
	generationFile = "generation.json"

	maxRenderedWords = 10
	sectionSeparator = "\n\n"
)

// ReferentSource resolves referents named in a profile's influences.
type ReferentSource interface {
	Lookup(key string) (types.ReferentStyleProfile, bool)
}

// Input is everything a prompt is built from.
type Input struct {
	Profile    *types.VoiceDNA           `json:"profile"`
	Transcript string                    `json:"transcript"`
	Enthusiasm *types.EnthusiasmAnalysis `json:"enthusiasm,omitempty"`
	Outline    *types.ContentOutline     `json:"outline,omitempty"`
	FollowUps  []types.FollowUp          `json:"follow_ups,omitempty"`
}

// Composer builds generation prompts. It performs no I/O after construction.
type Composer struct {
	referents ReferentSource
	text      map[string]string
	system    string
}

var templateKeys = []string{
	"critical-instruction",
	"voice-profile-header",
	"referent-header",
	"content-header",
	"followups-header",
	"enthusiasm-header",
	"structure-header",
	"structure-default",
	"output-requirements",
	"length-requirement",
}

// New loads the prompt templates and returns a Composer.
func New(referents ReferentSource) (*Composer, error) {
	text := make(map[string]string, len(templateKeys))
	for _, key := range templateKeys {
		t, err := prompts.Get(promptFile, key)
		if err != nil {
			return nil, fmt.Errorf("failed to load composer template: %w", err)
		}
		text[key] = t
	}
	system, err := prompts.Get(generationFile, "system-prompt")
	if err != nil {
		return nil, fmt.Errorf("failed to load system prompt: %w", err)
	}
	return &Composer{referents: referents, text: text, system: system}, nil
}

// SystemPrompt returns the fixed generation persona.
func (c *Composer) SystemPrompt() string {
	return c.system
}

// Compose renders the prompt for in.
func (c *Composer) Compose(in Input) (string, error) {
	if in.Profile == nil {
		return "", &InputIncompleteError{Field: "profile", Reason: "a voice profile is required"}
	}
	if strings.TrimSpace(in.Transcript) == "" {
		return "", &InputIncompleteError{Field: "transcript", Reason: "original content is required"}
	}

	sections := []string{
		c.text["critical-instruction"],
		c.voiceProfile(in.Profile),
	}
	if ri := in.Profile.ReferentInfluences; ri != nil && len(ri.Referents) > 0 {
		s, err := c.referentInfluences(ri)
		if err != nil {
			return "", err
		}
		sections = append(sections, s)
	}
	sections = append(sections, c.originalContent(in.Transcript, in.FollowUps))
	if in.Enthusiasm != nil {
		sections = append(sections, c.enthusiasmMap(in.Enthusiasm))
	}
	sections = append(sections,
		c.structureGuidance(in.Profile, in.Outline),
		c.outputRequirements(in.Outline),
	)

	return strings.Join(sections, sectionSeparator) + "\n", nil
}

func (c *Composer) voiceProfile(p *types.VoiceDNA) string {
	var b strings.Builder
	b.WriteString(prompts.Format(c.text["voice-profile-header"], map[string]string{
		"Score": strconv.Itoa(p.CalibrationScore),
	}))

	sp := p.SpokenPatterns
	spoken := []string{}
	spoken = appendField(spoken, "Sentence length", string(sp.Rhythm.AvgSentenceLength))
	spoken = append(spoken, fmt.Sprintf("- Pace variation: %.2f", sp.Rhythm.PaceVariation))
	spoken = append(spoken, "- Asks rhetorical questions: "+yesNo(sp.Rhetoric.UsesQuestions))
	spoken = append(spoken, "- Uses analogies: "+yesNo(sp.Rhetoric.UsesAnalogies))
	spoken = appendField(spoken, "Storytelling", humanize(string(sp.Rhetoric.StorytellingStyle)))
	if words := topWords(sp.Vocabulary.FrequentWords); words != "" {
		spoken = append(spoken, "- Frequent words: "+words)
	}
	if len(sp.Vocabulary.SignaturePhrases) > 0 {
		spoken = append(spoken, "- Signature phrases: "+quoteAll(sp.Vocabulary.SignaturePhrases))
	}
	if len(sp.Enthusiasm.ExcitedTopics) > 0 {
		spoken = append(spoken, "- Gets excited about: "+strings.Join(sp.Enthusiasm.ExcitedTopics, ", "))
	}
	spoken = append(spoken, fmt.Sprintf("- Average energy: %.2f", sp.Enthusiasm.AverageEnergy))
	writeBlock(&b, "Spoken patterns", spoken)

	wp := p.WrittenPatterns
	written := []string{}
	written = appendField(written, "Structure", string(wp.StructurePreference))
	written = append(written, fmt.Sprintf("- Formality: %.2f (%s)", wp.Formality, formalityLabel(wp.Formality)))
	written = appendField(written, "Paragraph length", string(wp.ParagraphLength))
	written = appendField(written, "Opens with", string(wp.OpeningStyle))
	written = appendField(written, "Closes with", string(wp.ClosingStyle))
	writeBlock(&b, "Written patterns", written)

	tone := make([]string, 0, len(types.TonalOrder))
	for _, dim := range types.TonalOrder {
		tone = append(tone, fmt.Sprintf("- %s: %.2f", dim, p.TonalAttributes.Get(dim)))
	}
	writeBlock(&b, "Tone", tone)

	if len(p.LearnedRules) > 0 {
		rules := make([]string, 0, len(p.LearnedRules))
		for _, r := range p.LearnedRules {
			rules = append(rules, fmt.Sprintf("- [%s] %s (confidence %.2f)", r.Type, r.Content, r.Confidence))
		}
		writeBlock(&b, "Learned preferences", rules)
	}
	return b.String()
}

func (c *Composer) referentInfluences(ri *types.ReferentInfluences) (string, error) {
	var b strings.Builder
	b.WriteString(prompts.Format(c.text["referent-header"], map[string]string{
		"UserWeight": strconv.Itoa(ri.UserWeight),
	}))
	for _, inf := range ri.Referents {
		ref, ok := c.referents.Lookup(inf.ID)
		if !ok {
			return "", &InputIncompleteError{Field: "referent_influences", Reason: fmt.Sprintf("referent %q is not in the catalog", inf.ID)}
		}
		fmt.Fprintf(&b, "\n- %s (%d%%)", ref.Name, inf.Weight)
		if len(inf.ActiveTraits) > 0 {
			b.WriteString(": " + strings.Join(inf.ActiveTraits, "; "))
		}
		if ref.PromptGuidance != "" {
			b.WriteString("\n  Guidance: " + strings.TrimSpace(ref.PromptGuidance))
		}
	}
	return b.String(), nil
}

func (c *Composer) originalContent(transcript string, followUps []types.FollowUp) string {
	var b strings.Builder
	b.WriteString(c.text["content-header"])
	b.WriteString(sectionSeparator)
	b.WriteString(strings.TrimSpace(transcript))
	if len(followUps) > 0 {
		b.WriteString(sectionSeparator)
		b.WriteString(c.text["followups-header"])
		for _, f := range followUps {
			fmt.Fprintf(&b, "\nQ: %s\nA: %s", strings.TrimSpace(f.Question), strings.TrimSpace(f.Answer))
		}
	}
	return b.String()
}

func (c *Composer) enthusiasmMap(e *types.EnthusiasmAnalysis) string {
	var b strings.Builder
	b.WriteString(prompts.Format(c.text["enthusiasm-header"], map[string]string{
		"Energy": fmt.Sprintf("%.2f", e.OverallEnergy),
	}))
	if len(e.PeakMoments) == 0 {
		b.WriteString("\n- No distinct peaks; keep the energy even.")
	}
	for _, m := range e.PeakMoments {
		fmt.Fprintf(&b, "\n- [%.1fs] %q, use as %s (%s)", m.Timestamp, m.Text, humanize(string(m.UseAs)), m.Reason)
	}
	return b.String()
}

func (c *Composer) structureGuidance(p *types.VoiceDNA, o *types.ContentOutline) string {
	var b strings.Builder
	b.WriteString(c.text["structure-header"])
	b.WriteString("\n")

	if o == nil || len(o.Sections) == 0 {
		b.WriteString(c.text["structure-default"])
		wp := p.WrittenPatterns
		if wp.StructurePreference != "" {
			fmt.Fprintf(&b, "\n- Preferred structure: %s", wp.StructurePreference)
		}
		if wp.OpeningStyle != "" {
			fmt.Fprintf(&b, "\n- Open with a %s", wp.OpeningStyle)
		}
		if wp.ClosingStyle != "" {
			fmt.Fprintf(&b, "\n- Close with a %s", closingLabel(wp.ClosingStyle))
		}
		return b.String()
	}

	if o.Title != "" {
		fmt.Fprintf(&b, "Title: %s\n", o.Title)
	}
	if o.Format != "" {
		fmt.Fprintf(&b, "Format: %s\n", o.Format)
	}
	for i, s := range o.Sections {
		fmt.Fprintf(&b, "%d. %s", i+1, s.Heading)
		for _, kp := range s.KeyPoints {
			fmt.Fprintf(&b, "\n   - %s", kp)
		}
		if i < len(o.Sections)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (c *Composer) outputRequirements(o *types.ContentOutline) string {
	out := c.text["output-requirements"]
	if o != nil && o.TargetWords > 0 {
		out += "\n" + prompts.Format(c.text["length-requirement"], map[string]string{
			"TargetWords": strconv.Itoa(o.TargetWords),
		})
	}
	return out
}

func writeBlock(b *strings.Builder, title string, lines []string) {
	fmt.Fprintf(b, "\n\n### %s", title)
	for _, l := range lines {
		b.WriteString("\n" + l)
	}
}

func appendField(lines []string, label, value string) []string {
	if value == "" {
		return lines
	}
	return append(lines, fmt.Sprintf("- %s: %s", label, value))
}

func topWords(words []types.WordFrequency) string {
	if len(words) > maxRenderedWords {
		words = words[:maxRenderedWords]
	}
	parts := make([]string, len(words))
	for i, w := range words {
		parts[i] = w.Word
	}
	return strings.Join(parts, ", ")
}

func quoteAll(phrases []string) string {
	parts := make([]string, len(phrases))
	for i, p := range phrases {
		parts[i] = strconv.Quote(p)
	}
	return strings.Join(parts, ", ")
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func humanize(s string) string {
	return strings.ReplaceAll(s, "_", " ")
}

func formalityLabel(f float64) string {
	switch {
	case f < 0.35:
		return "casual"
	case f > 0.65:
		return "formal"
	default:
		return "balanced"
	}
}

func closingLabel(c types.ClosingStyle) string {
	if c == types.ClosingCTA {
		return "call to action"
	}
	return string(c)
}
