// Package observability provides logging, metrics and formatted output for
// verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/voicedna/internal/profile"
	"github.com/jonathan/voicedna/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintVoiceDNA outputs the learned patterns of a profile.
func (p *Printer) PrintVoiceDNA(dna *types.VoiceDNA) {
	if dna == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Calibration score: %d/100\n", dna.CalibrationScore))
	sb.WriteString(fmt.Sprintf("Sessions: %d  Samples: %d  Rounds: %d\n",
		dna.VoiceSessionsAnalyzed, dna.WritingSamplesAnalyzed, dna.CalibrationRoundsCompleted))
	sb.WriteString("\n")

	rhythm := dna.SpokenPatterns.Rhythm
	if rhythm.AvgSentenceLength != "" {
		sb.WriteString(fmt.Sprintf("Sentences:  %s (pace variation %.2f)\n", rhythm.AvgSentenceLength, rhythm.PaceVariation))
	}
	if s := dna.WrittenPatterns.StructurePreference; s != "" {
		sb.WriteString(fmt.Sprintf("Structure:  %s\n", s))
	}
	sb.WriteString(fmt.Sprintf("Formality:  %.2f\n", dna.WrittenPatterns.Formality))
	sb.WriteString("\n")

	sb.WriteString("Tone:\n")
	for _, dim := range types.TonalOrder {
		sb.WriteString(fmt.Sprintf("  %-11s %.2f\n", dim, dna.TonalAttributes.Get(dim)))
	}

	words := dna.SpokenPatterns.Vocabulary.FrequentWords
	if len(words) > 0 {
		sb.WriteString("\nFrequent words:\n")
		count := min(len(words), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s (%d)\n", words[i].Word, words[i].Count))
		}
		if len(words) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(words)-maxItemsToShow))
		}
	}

	if len(dna.LearnedRules) > 0 {
		sb.WriteString("\nLearned rules:\n")
		count := min(len(dna.LearnedRules), 3)
		for i := 0; i < count; i++ {
			rule := dna.LearnedRules[i]
			sb.WriteString(fmt.Sprintf("  • %s (%.2f)\n", rule.Content, rule.Confidence))
		}
		if len(dna.LearnedRules) > 3 {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(dna.LearnedRules)-3))
		}
	}

	p.printBox("VOICE DNA", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintSummary outputs the dashboard view of a profile.
func (p *Printer) PrintSummary(s *profile.Summary) {
	if s == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("State:    %s\n", s.State))
	sb.WriteString(fmt.Sprintf("Level:    %s (%d/100)\n", s.CalibrationLevel, s.CalibrationScore))
	sb.WriteString(fmt.Sprintf("Rules:    %d learned\n", s.LearnedRuleCount))

	if len(s.Strengths) > 0 {
		sb.WriteString("\nStrengths:\n")
		for _, strength := range s.Strengths {
			sb.WriteString(fmt.Sprintf("  • %s\n", strength))
		}
	}
	if len(s.SignaturePhrases) > 0 {
		sb.WriteString("\nSignature phrases:\n")
		count := min(len(s.SignaturePhrases), 3)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %q\n", s.SignaturePhrases[i]))
		}
	}

	p.printBox("VOICE PROFILE SUMMARY", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintEnthusiasm outputs the energy map of one session.
func (p *Printer) PrintEnthusiasm(a *types.EnthusiasmAnalysis) {
	if a == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Overall energy: %.2f\n", a.OverallEnergy))
	sb.WriteString(fmt.Sprintf("Segments:       %d\n", len(a.Segments)))

	if len(a.PeakMoments) > 0 {
		sb.WriteString("\n")
		count := min(len(a.PeakMoments), maxItemsToShow)
		for i := 0; i < count; i++ {
			peak := a.PeakMoments[i]
			text := peak.Text
			if len(text) > 40 {
				text = text[:37] + "..."
			}
			sb.WriteString(fmt.Sprintf("⚡ %6.1fs  %s\n", peak.Timestamp, text))
			sb.WriteString(fmt.Sprintf("  use as %s\n", peak.UseAs))
		}
	}

	p.printBox("ENTHUSIASM MAP", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintBlend outputs a resolved referent blend.
func (p *Printer) PrintBlend(ri *types.ReferentInfluences) {
	if ri == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Your voice: %d%%\n", ri.UserWeight))
	for _, ref := range ri.Referents {
		sb.WriteString(fmt.Sprintf("\n%s: %d%%\n", ref.Name, ref.Weight))
		for _, trait := range ref.ActiveTraits {
			sb.WriteString(fmt.Sprintf("  • %s\n", trait))
		}
	}

	p.printBox("REFERENT BLEND", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintCalibrationRound outputs the state of a calibration round.
func (p *Printer) PrintCalibrationRound(r *types.CalibrationRound) {
	if r == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Round %d\n", r.RoundNumber))
	sb.WriteString(fmt.Sprintf("Prompt: %s\n", r.PromptText))
	if r.Rating != nil {
		sb.WriteString(fmt.Sprintf("Rating: %d/5\n", *r.Rating))
	}
	if len(r.InsightsExtracted) > 0 {
		sb.WriteString("\nInsights:\n")
		for _, in := range r.InsightsExtracted {
			sb.WriteString(fmt.Sprintf("  • [%s] %s\n", in.Type, in.Insight))
		}
	}

	p.printBox("CALIBRATION ROUND", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintReferents outputs the referent catalog.
func (p *Printer) PrintReferents(refs []types.ReferentStyleProfile) {
	if len(refs) == 0 {
		return
	}

	var sb strings.Builder
	for i, ref := range refs {
		sb.WriteString(fmt.Sprintf("%s (%s)\n", ref.Name, ref.Slug))
		if len(ref.KeyCharacteristics) > 0 {
			sb.WriteString(fmt.Sprintf("  %s\n", ref.KeyCharacteristics[0]))
		}
		if i < len(refs)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("REFERENT CATALOG", strings.TrimSuffix(sb.String(), "\n"))
}
