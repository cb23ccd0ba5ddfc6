// Package profile merges per-contribution features into the persistent
// VoiceDNA profile and maintains its calibration score.
package profile

import (
	"strconv"
	"strings"
	"time"

	"github.com/antzucaro/matchr"
	"github.com/jonathan/voicedna/internal/config"
	"github.com/jonathan/voicedna/internal/linguistics"
	"github.com/jonathan/voicedna/internal/types"
)

// Result is the outcome of one merge.
type Result struct {
	Profile                *types.VoiceDNA
	IsNewProfile           bool
	CalibrationScoreChange int
}

// Aggregator merges contributions into profiles. It holds no per-user state;
// callers serialize merges for the same user.
type Aggregator struct {
	cfg config.AggregatorConfig
	now func() time.Time
}

// NewAggregator creates an Aggregator. Zero config fields take defaults.
func NewAggregator(cfg config.AggregatorConfig) *Aggregator {
	merged := (&config.Config{Aggregator: cfg}).MergeWithDefaults(config.Default())
	return &Aggregator{cfg: merged.Aggregator, now: time.Now}
}

// Merge folds one contribution into existing, which may be nil. existing is
// never modified.
func (a *Aggregator) Merge(existing *types.VoiceDNA, c types.Contribution) (*Result, error) {
	if err := validateContribution(c); err != nil {
		return nil, err
	}

	at := c.OccurredAt
	if at.IsZero() {
		at = a.now()
	}
	at = at.UTC()

	isNew := existing == nil
	var p *types.VoiceDNA
	oldScore := 0
	if isNew {
		p = &types.VoiceDNA{CreatedAt: at}
	} else {
		p = Clone(existing)
		oldScore = existing.CalibrationScore
	}

	if c.Features != nil {
		a.mergeFeatures(p, c.Features)
	}
	if c.Enthusiasm != nil {
		a.mergeEnthusiasm(p, c.Enthusiasm)
	}
	for _, in := range c.Insights {
		a.addRule(p, in, c.Round)
	}

	switch c.Kind {
	case types.ContributionVoiceSession:
		p.VoiceSessionsAnalyzed++
	case types.ContributionWritingSample:
		p.WritingSamplesAnalyzed++
	case types.ContributionCalibration:
		p.CalibrationRoundsCompleted++
	}

	p.History = append(p.History, types.ContributionRecord{ContributionID: c.ID, Kind: c.Kind, At: at})
	if over := len(p.History) - a.cfg.HistoryLimit; over > 0 {
		p.History = append([]types.ContributionRecord(nil), p.History[over:]...)
	}

	computed := a.Score(p)
	if isNew || computed > oldScore {
		p.CalibrationScore = computed
	} else {
		p.CalibrationScore = oldScore
	}
	p.UpdatedAt = at

	if err := CheckInvariants(p); err != nil {
		return nil, err
	}

	return &Result{
		Profile:                p,
		IsNewProfile:           isNew,
		CalibrationScoreChange: p.CalibrationScore - oldScore,
	}, nil
}

// Recalibrate recomputes the calibration score from scratch. Unlike Merge it
// may lower the score.
func (a *Aggregator) Recalibrate(existing *types.VoiceDNA) (*Result, error) {
	if existing == nil {
		return nil, types.NewValidationError("profile", "no profile to recalibrate")
	}
	p := Clone(existing)
	p.CalibrationScore = a.Score(p)
	p.UpdatedAt = a.now().UTC()

	if err := CheckInvariants(p); err != nil {
		return nil, err
	}
	return &Result{
		Profile:                p,
		CalibrationScoreChange: p.CalibrationScore - existing.CalibrationScore,
	}, nil
}

func validateContribution(c types.Contribution) error {
	switch c.Kind {
	case types.ContributionVoiceSession, types.ContributionWritingSample:
		if c.Features == nil {
			return types.NewValidationError("features", "required for "+string(c.Kind))
		}
	case types.ContributionCalibration:
	default:
		return types.NewValidationError("kind", "unknown contribution kind "+strconv.Quote(string(c.Kind)))
	}
	for i, in := range c.Insights {
		field := "insights[" + strconv.Itoa(i) + "]"
		if !types.ValidRuleType(in.Type) {
			return types.NewValidationError(field, "unknown rule type "+strconv.Quote(string(in.Type)))
		}
		if strings.TrimSpace(in.Insight) == "" {
			return types.NewValidationError(field, "insight text is empty")
		}
		if in.Confidence < 0 || in.Confidence > 1 {
			return types.NewValidationError(field, "confidence must be within [0,1]")
		}
	}
	return nil
}

// runningAverage weighs the stored value by min(prior, cap) and the new one by 1.
func (a *Aggregator) runningAverage(old, incoming float64, prior int) float64 {
	w := float64(min(prior, a.cfg.PriorWeightCap))
	return round3((old*w + incoming) / (w + 1))
}

func (a *Aggregator) mergeFeatures(p *types.VoiceDNA, f *types.Features) {
	prior := p.FeatureContributions()

	p.SpokenPatterns.Rhythm.PaceVariation = a.runningAverage(p.SpokenPatterns.Rhythm.PaceVariation, f.PaceVariation, prior)
	p.WrittenPatterns.Formality = a.runningAverage(p.WrittenPatterns.Formality, f.Formality, prior)
	for _, dim := range types.TonalOrder {
		p.TonalAttributes.Set(dim, a.runningAverage(p.TonalAttributes.Get(dim), f.Tonal.Get(dim), prior))
	}

	v := &p.Votes
	p.SpokenPatterns.Rhythm.AvgSentenceLength = types.SentenceLength(vote(&v.SentenceLength, string(f.SentenceLength)))
	p.SpokenPatterns.Rhetoric.StorytellingStyle = types.StorytellingStyle(vote(&v.StorytellingStyle, string(f.StorytellingStyle)))
	p.SpokenPatterns.Rhetoric.UsesQuestions = vote(&v.UsesQuestions, strconv.FormatBool(f.UsesQuestions)) == "true"
	p.SpokenPatterns.Rhetoric.UsesAnalogies = vote(&v.UsesAnalogies, strconv.FormatBool(f.UsesAnalogies)) == "true"
	p.WrittenPatterns.StructurePreference = types.StructurePreference(vote(&v.StructurePreference, string(f.StructurePreference)))
	p.WrittenPatterns.ParagraphLength = types.ParagraphLength(vote(&v.ParagraphLength, string(f.ParagraphLength)))
	p.WrittenPatterns.OpeningStyle = types.OpeningStyle(vote(&v.OpeningStyle, string(f.OpeningStyle)))
	p.WrittenPatterns.ClosingStyle = types.ClosingStyle(vote(&v.ClosingStyle, string(f.ClosingStyle)))

	vocab := &p.SpokenPatterns.Vocabulary
	counts := make(map[string]int, len(vocab.FrequentWords)+len(f.FrequentWords))
	for _, wf := range vocab.FrequentWords {
		counts[wf.Word] += wf.Count
	}
	for _, wf := range f.FrequentWords {
		counts[wf.Word] += wf.Count
	}
	vocab.FrequentWords = linguistics.RankWords(counts, a.cfg.VocabularyLimit)
	vocab.SignaturePhrases = union(vocab.SignaturePhrases, f.SignaturePhrases, a.cfg.PhraseLimit)
}

func (a *Aggregator) mergeEnthusiasm(p *types.VoiceDNA, e *types.EnthusiasmSummary) {
	ep := &p.SpokenPatterns.Enthusiasm
	ep.AverageEnergy = a.runningAverage(ep.AverageEnergy, e.OverallEnergy, p.VoiceSessionsAnalyzed)
	ep.ExcitedTopics = union(ep.ExcitedTopics, e.Topics, a.cfg.ExcitedTopicsLimit)
}

// addRule appends an insight as a learned rule. With a merge threshold set, a
// near-duplicate rule of the same type absorbs it and gains confidence instead.
func (a *Aggregator) addRule(p *types.VoiceDNA, in types.CalibrationInsight, round int) {
	content := strings.TrimSpace(in.Insight)
	if a.cfg.RuleMergeThreshold > 0 {
		for i := range p.LearnedRules {
			r := &p.LearnedRules[i]
			if r.Type != in.Type {
				continue
			}
			if matchr.JaroWinkler(strings.ToLower(r.Content), strings.ToLower(content), false) >= a.cfg.RuleMergeThreshold {
				r.Confidence = round3(1 - (1-r.Confidence)*(1-in.Confidence))
				r.SourceRound = round
				return
			}
		}
	}
	p.LearnedRules = append(p.LearnedRules, types.LearnedRule{
		Type:        in.Type,
		Content:     content,
		Confidence:  round3(in.Confidence),
		SourceRound: round,
	})
}

// vote records value and returns the majority, ties going to the most recent.
// An empty value casts no vote.
func vote(t *types.VoteTally, value string) string {
	if value != "" {
		if t.Counts == nil {
			t.Counts = make(map[string]int)
		}
		t.Counts[value]++
		recent := []string{value}
		for _, v := range t.Recent {
			if v != value {
				recent = append(recent, v)
			}
		}
		t.Recent = recent
	}
	return winner(t)
}

func winner(t *types.VoteTally) string {
	best, bestCount := "", 0
	for _, v := range t.Recent {
		if c := t.Counts[v]; c > bestCount {
			best, bestCount = v, c
		}
	}
	return best
}

// union appends unseen items in order, stopping at limit.
func union(existing, incoming []string, limit int) []string {
	out := append([]string(nil), existing...)
	seen := make(map[string]bool, len(out))
	for _, s := range out {
		seen[s] = true
	}
	for _, s := range incoming {
		if limit > 0 && len(out) >= limit {
			break
		}
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
