package profile

import (
	"github.com/jonathan/voicedna/internal/types"
)

// State is the derived lifecycle stage of a profile. It is never stored.
type State string

const (
	StateNone       State = "none"
	StateNascent    State = "nascent"
	StateCalibrated State = "calibrated"
)

const (
	summaryTopWords  = 10
	strengthMinValue = 0.6
)

// DeriveState classifies a profile from its counters and score.
func DeriveState(p *types.VoiceDNA, calibratedThreshold int) State {
	switch {
	case p == nil || p.TotalContributions() == 0:
		return StateNone
	case p.CalibrationScore >= calibratedThreshold:
		return StateCalibrated
	default:
		return StateNascent
	}
}

// State classifies p using the configured threshold.
func (a *Aggregator) State(p *types.VoiceDNA) State {
	return DeriveState(p, a.cfg.CalibratedThreshold)
}

// Summary is the read-only dashboard view of a profile.
type Summary struct {
	State                      State                     `json:"state"`
	CalibrationLevel           string                    `json:"calibration_level"`
	CalibrationScore           int                       `json:"calibration_score"`
	Strengths                  []string                  `json:"strengths"`
	VoiceSessionsAnalyzed      int                       `json:"voice_sessions_analyzed"`
	WritingSamplesAnalyzed     int                       `json:"writing_samples_analyzed"`
	CalibrationRoundsCompleted int                       `json:"calibration_rounds_completed"`
	TopWords                   []string                  `json:"top_words"`
	SignaturePhrases           []string                  `json:"signature_phrases"`
	ExcitedTopics              []string                  `json:"excited_topics"`
	LearnedRuleCount           int                       `json:"learned_rule_count"`
	ReferentInfluences         *types.ReferentInfluences `json:"referent_influences,omitempty"`
}

var toneStrengths = map[types.TonalDimension]string{
	types.ToneWarmth:     "warm and personable",
	types.ToneAuthority:  "speaks with authority",
	types.ToneHumor:      "brings humor",
	types.ToneDirectness: "direct and to the point",
	types.ToneEmpathy:    "empathetic toward the audience",
}

// Summarize projects a profile into a Summary. A nil profile yields the
// empty "none" summary.
func (a *Aggregator) Summarize(p *types.VoiceDNA) *Summary {
	s := &Summary{
		State:            a.State(p),
		Strengths:        []string{},
		TopWords:         []string{},
		SignaturePhrases: []string{},
		ExcitedTopics:    []string{},
	}
	if p == nil {
		s.CalibrationLevel = calibrationLevel(0)
		return s
	}

	s.CalibrationScore = p.CalibrationScore
	s.CalibrationLevel = calibrationLevel(p.CalibrationScore)
	s.VoiceSessionsAnalyzed = p.VoiceSessionsAnalyzed
	s.WritingSamplesAnalyzed = p.WritingSamplesAnalyzed
	s.CalibrationRoundsCompleted = p.CalibrationRoundsCompleted
	s.LearnedRuleCount = len(p.LearnedRules)
	s.SignaturePhrases = append(s.SignaturePhrases, p.SpokenPatterns.Vocabulary.SignaturePhrases...)
	s.ExcitedTopics = append(s.ExcitedTopics, p.SpokenPatterns.Enthusiasm.ExcitedTopics...)
	s.ReferentInfluences = CloneInfluences(p.ReferentInfluences)

	for i, wf := range p.SpokenPatterns.Vocabulary.FrequentWords {
		if i == summaryTopWords {
			break
		}
		s.TopWords = append(s.TopWords, wf.Word)
	}

	if p.FeatureContributions() > 0 {
		for _, dim := range types.TonalOrder {
			if p.TonalAttributes.Get(dim) >= strengthMinValue {
				s.Strengths = append(s.Strengths, toneStrengths[dim])
			}
		}
		if p.SpokenPatterns.Rhetoric.UsesAnalogies {
			s.Strengths = append(s.Strengths, "explains through analogies")
		}
		if p.SpokenPatterns.Rhetoric.UsesQuestions {
			s.Strengths = append(s.Strengths, "engages with questions")
		}
		if p.SpokenPatterns.Rhetoric.StorytellingStyle == types.StorytellingAnecdoteFirst {
			s.Strengths = append(s.Strengths, "natural storyteller")
		}
	}
	return s
}

func calibrationLevel(score int) string {
	switch {
	case score >= 85:
		return "excellent"
	case score >= 70:
		return "good"
	case score >= 40:
		return "developing"
	default:
		return "learning"
	}
}
